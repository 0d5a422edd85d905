package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"remindme/internal/audio"
	"remindme/internal/clock"
	"remindme/internal/config"
	"remindme/internal/logging"
	"remindme/internal/notify"
	"remindme/internal/reminder"
)

type options struct {
	configPath string
	date       string
	logLevel   string
	logFile    string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "⏰ Pick a day, name a task, get a notification and an alarm before it starts",
		Long: `remindme is a single-screen terminal reminder app.

Select a date on the calendar, type a task title, pick a time and press enter.
A notification fires one hour before the event and an alarm sounds fifteen
minutes before it. Reminders live in memory for as long as the app runs.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath(), "path to config file (yaml or json)")
	rootCmd.Flags().StringVarP(&opts.date, "date", "d", "", "preselect a date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", `override logging.file ("-" for stderr)`)

	rootCmd.AddCommand(newConfigCmd(opts))
	return rootCmd
}

func newConfigCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func loadConfig(opts *options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFile != "" {
		cfg.Logging.File = opts.logFile
	}
	if cfg.Logging.File == "" {
		if dir, err := config.Dir(); err == nil {
			cfg.Logging.File = filepath.Join(dir, config.AppName+".log")
		}
	}
	return cfg, nil
}

// programSender posts timer callbacks to the running program.
type programSender struct {
	p atomic.Pointer[tea.Program]
}

func (s *programSender) post(fn func()) {
	if p := s.p.Load(); p != nil {
		p.Send(callbackMsg{fn: fn})
	}
}

// soundLoader adapts the audio loader to the scheduler's collaborator interface.
type soundLoader struct {
	loader *audio.Loader
}

func (l soundLoader) Load(ctx context.Context, locator string) (reminder.Sound, error) {
	snd, err := l.loader.Load(ctx, locator)
	if err != nil {
		return nil, err
	}
	return snd, nil
}

func run(ctx context.Context, opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	timings, err := cfg.Timings()
	if err != nil {
		return err
	}

	log, closer, err := logging.New(logging.Config{Level: cfg.Logging.Level, File: cfg.Logging.File})
	if err != nil {
		return err
	}
	defer closer.Close()

	box := &inbox{}
	sender := &programSender{}
	clk := clock.Dispatch{Clock: clock.Real{}, Post: sender.post}

	notifier := newNotifier(cfg, clk, box, log)
	sched := reminder.New(reminder.Options{
		NotifyOffset:      timings.NotifyOffset,
		AlarmOffset:       timings.AlarmOffset,
		AlarmCeiling:      timings.AlarmCeiling,
		NotificationTitle: cfg.Notification.Title,
		SoundLocator:      cfg.Alarm.Source,
		Location:          time.Local,
	}, reminder.Deps{
		Clock:    clk,
		Notifier: notifier,
		Loader:   newSoundLoader(cfg, timings, log),
		Alerter:  box,
		Logger:   log,
	})

	m := initialModel(sched, box, clock.Real{}, timings.LoadTimeout)
	if opts.date != "" {
		day, err := time.ParseInLocation(reminder.DateLayout, opts.date, time.Local)
		if err != nil {
			return fmt.Errorf("--date: %w", err)
		}
		m.cal.jump(day)
		m.selectedDate = m.cal.key()
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	sender.p.Store(p)
	log.Info().Str("config", opts.configPath).Msg("starting")

	_, runErr := p.Run()
	sender.p.Store(nil)

	notifier.Stop()
	if err := sched.Close(); err != nil {
		log.Warn().Err(err).Msg("closing scheduler")
	}
	log.Info().Msg("stopped")
	return runErr
}

func newNotifier(cfg config.Config, clk clock.Clock, box *inbox, log zerolog.Logger) *notify.Service {
	deliverers := []notify.Deliverer{box}
	if len(cfg.Notification.Command) > 0 {
		deliverers = append(deliverers, notify.Command{Argv: cfg.Notification.Command, Log: log})
	}
	return notify.New(cfg.Notification.Enabled, clk, log, deliverers...)
}

func newSoundLoader(cfg config.Config, timings config.Timings, log zerolog.Logger) soundLoader {
	var backend audio.Backend = audio.Bell{}
	if len(cfg.Alarm.Player) > 0 {
		backend = audio.Command{Argv: cfg.Alarm.Player}
	}
	return soundLoader{loader: &audio.Loader{
		Backend:  backend,
		Client:   &http.Client{Timeout: timings.LoadTimeout},
		CacheDir: cfg.Alarm.CacheDir,
		Log:      log.With().Str("component", "audio").Logger(),
	}}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
