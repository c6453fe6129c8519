package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// DailyScheduler runs jobs once a day at a wall-clock time in a fixed
// location. A run that is still going when the next one fires is skipped,
// and a panicking job is logged instead of taking the server down.
type DailyScheduler struct {
	cron *cron.Cron
}

func NewDailyScheduler(loc *time.Location, logger *log.Logger) *DailyScheduler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	cronLogger := cron.PrintfLogger(logger.WithField("component", "scheduler"))
	return &DailyScheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
	}
}

// ScheduleDaily registers job at an HH:MM time.
func (s *DailyScheduler) ScheduleDaily(at string, job func()) (cron.EntryID, error) {
	spec, err := dailySpec(at)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, job)
}

// NextRun reports when the entry fires next. It is zero until Start is called
// or when id is unknown.
func (s *DailyScheduler) NextRun(id cron.EntryID) time.Time {
	return s.cron.Entry(id).Next
}

func (s *DailyScheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *DailyScheduler) Stop() {
	<-s.cron.Stop().Done()
}

// dailySpec turns "HH:MM" into a six-field cron spec.
func dailySpec(at string) (string, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(at), ":")
	if !ok {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", at)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", at)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", at)
	}
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
