package service

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDailySpec(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "07:30", want: "0 30 7 * * *"},
		{in: " 23:59 ", want: "0 59 23 * * *"},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "1:2:3", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := dailySpec(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestDailySchedulerNextRun(t *testing.T) {
	s := NewDailyScheduler(time.UTC, quietLogger())
	id, err := s.ScheduleDaily("06:00", func() {})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if !s.NextRun(id).IsZero() {
		t.Fatalf("next run set before start")
	}
	s.Start()
	defer s.Stop()

	next := s.NextRun(id).In(time.UTC)
	if next.Hour() != 6 || next.Minute() != 0 || next.Second() != 0 {
		t.Fatalf("unexpected next run %v", next)
	}
	if !next.After(time.Now()) || next.Sub(time.Now()) > 24*time.Hour {
		t.Fatalf("next run %v not within the coming day", next)
	}
	if !s.NextRun(id + 1).IsZero() {
		t.Fatalf("unknown entry should have no next run")
	}
}

func TestDailySchedulerRejectsBadTime(t *testing.T) {
	s := NewDailyScheduler(time.UTC, quietLogger())
	var ran atomic.Bool
	if _, err := s.ScheduleDaily("25:00", func() { ran.Store(true) }); err == nil {
		t.Fatalf("expected error")
	}
	if ran.Load() {
		t.Fatalf("job ran")
	}
}
