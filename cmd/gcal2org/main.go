// gcal2org regenerates a rolling window of monthly org-agenda files from
// Google Calendar (and optional ICS feeds). Single-shot by default, so it
// slots into an external cron; --cron keeps it running on its own schedule.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"gcal2org/internal/config"
	"gcal2org/internal/gcal"
	"gcal2org/internal/ics"
	appLog "gcal2org/internal/log"
	"gcal2org/internal/pipeline"
)

type flagConfig struct {
	configPath  string
	outputDir   string
	credentials string
	token       string
	cronSpec    string
	debug       bool
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "", "Path to optional YAML config file")
	flag.StringVar(&cfg.outputDir, "output-dir", "", "Directory to write .org files (default: current directory)")
	flag.StringVar(&cfg.credentials, "credentials", "", "Path to OAuth client secret JSON (default: credentials.json)")
	flag.StringVar(&cfg.token, "token", "", "Path to cached OAuth token (default: token.json)")
	flag.StringVar(&cfg.cronSpec, "cron", "", "Cron schedule; when set, keep running and regenerate on this schedule")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()
	return cfg
}

func main() {
	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	conf, err := config.Load(flags.configPath, flags.configPath != "")
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// Flags beat the config file.
	if flags.outputDir != "" {
		conf.OutputDir = flags.outputDir
	}
	if flags.credentials != "" {
		conf.Credentials = flags.credentials
	}
	if flags.token != "" {
		conf.Token = flags.token
	}
	if flags.cronSpec != "" {
		conf.Refresh = flags.cronSpec
	}

	loc, err := conf.Location()
	if err != nil {
		appLog.Error("failed to resolve timezone", err, "timezone", conf.Timezone)
		os.Exit(1)
	}

	if err := os.MkdirAll(conf.OutputDir, 0o755); err != nil {
		appLog.Error("failed to create output directory", err, "output_dir", conf.OutputDir)
		os.Exit(1)
	}

	appLog.Info("effective config",
		"output_dir", conf.OutputDir,
		"credentials", conf.Credentials,
		"timezone", conf.Timezone,
		"calendars", len(conf.Calendars),
		"ics_feeds", len(conf.ICS),
		"months", conf.Months,
		"refresh", conf.Refresh,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	httpClient, err := gcal.Authorize(ctx, conf.Credentials, conf.Token)
	if err != nil {
		appLog.Error("authorization failed", err)
		os.Exit(1)
	}

	client, err := gcal.NewClient(ctx, httpClient)
	if err != nil {
		appLog.Error("failed to create calendar client", err)
		os.Exit(1)
	}

	pipe := &pipeline.Pipeline{
		Sources:   buildSources(client, conf),
		OutputDir: conf.OutputDir,
		Location:  loc,
		Months:    conf.Months,
	}

	if conf.Refresh == "" {
		if err := pipe.Run(ctx); err != nil {
			appLog.Error("run failed", err)
			os.Exit(1)
		}
		return
	}

	// Scheduled mode: run once now, then on the cron cadence until a signal.
	if err := pipe.Run(ctx); err != nil {
		appLog.Error("run failed", err)
	}

	sched := cron.New()
	if _, err := sched.AddFunc(conf.Refresh, func() {
		if err := pipe.Run(ctx); err != nil {
			appLog.Error("scheduled run failed", err)
		}
	}); err != nil {
		appLog.Error("invalid cron schedule", err, "cron", conf.Refresh)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	<-ctx.Done()
	appLog.Info("gcal2org exiting")
}

// buildSources assembles the run's calendar sources: one per configured
// Google calendar name (or the primary calendar when none are named),
// followed by any ICS subscriptions.
func buildSources(client *gcal.Client, conf *config.Config) []pipeline.Source {
	names := conf.Calendars
	if len(names) == 0 {
		names = []string{gcal.Primary}
	}

	sources := make([]pipeline.Source, 0, len(names)+len(conf.ICS))
	for _, name := range names {
		sources = append(sources, gcal.CalendarSource{Client: client, Calendar: name})
	}
	for _, feed := range conf.ICS {
		sources = append(sources, &ics.Subscription{URL: feed.URL, Label: feed.Name})
	}
	return sources
}
