// Package cli is the dailytodo command line: it runs the server and the
// Telegram bot, and drives the task list from a terminal.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"daily-todo/internal/client"
	"daily-todo/internal/config"
	"daily-todo/internal/history"
	"daily-todo/internal/syncer"
)

type App struct {
	ServerURL string
	Debug     bool

	// loadConfig is swapped in tests.
	loadConfig func() (config.Config, error)
	logger     *log.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{loadConfig: config.Load}

	cmd := &cobra.Command{
		Use:          "dailytodo",
		Short:        "Daily to-do list with snapshot history",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Run the REST server
  dailytodo serve

  # Work with the list from a terminal
  dailytodo add Buy milk
  dailytodo toggle 1
  dailytodo save

  # Browse saved snapshots
  dailytodo history
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		app.logger = newLogger(cmd.ErrOrStderr(), app.Debug)
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", envOr("DAILYTODO_SERVER", ""), "Server base URL (default: SERVER_URL or http://localhost:3000)")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newBotCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newToggleCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newSaveCmd(app))
	cmd.AddCommand(newHistoryCmd(app))

	return cmd
}

func (app *App) config() (config.Config, error) {
	cfg, err := app.loadConfig()
	if err != nil {
		return cfg, err
	}
	if app.Debug {
		cfg.Debug = true
	}
	if cfg.Debug && app.logger != nil {
		app.logger.SetLevel(log.DebugLevel)
	}
	return cfg, nil
}

func (app *App) client() (*client.Client, error) {
	url := app.ServerURL
	if url == "" {
		cfg, err := app.config()
		if err != nil {
			return nil, err
		}
		url = cfg.ServerURL
	}
	c := client.New(url)
	c.Logger = app.logger
	return c, nil
}

// controller returns a Sync Controller loaded with the server's list. Alerts
// go to stderr; the caller prints the list when it is done.
func (app *App) controller(ctx context.Context, cmd *cobra.Command) (*syncer.Controller, error) {
	c, err := app.client()
	if err != nil {
		return nil, err
	}
	ctrl := syncer.New(c, c, nil, &textNotifier{out: cmd.OutOrStdout(), err: cmd.ErrOrStderr()}, app.logger)
	if err := ctrl.Load(ctx); err != nil {
		return nil, err
	}
	return ctrl, nil
}

func (app *App) viewer(cmd *cobra.Command) (*history.Viewer, error) {
	c, err := app.client()
	if err != nil {
		return nil, err
	}
	return history.NewViewer(c, &textPresenter{out: cmd.OutOrStdout()}, app.logger), nil
}

func newLogger(out io.Writer, debug bool) *log.Logger {
	logger := log.New()
	logger.SetOutput(out)
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
