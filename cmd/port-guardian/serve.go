package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ZSanhu/port-guardian/pkg/alerts"
	"github.com/ZSanhu/port-guardian/pkg/checker"
	"github.com/ZSanhu/port-guardian/pkg/config"
	"github.com/ZSanhu/port-guardian/pkg/lifecycle"
	"github.com/ZSanhu/port-guardian/pkg/logging"
	"github.com/ZSanhu/port-guardian/pkg/monitor"
	"github.com/ZSanhu/port-guardian/pkg/state"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the port monitor",
	Long: `Start the port monitor daemon.

The daemon probes every configured endpoint on the check interval and
posts a webhook notification whenever an endpoint transitions between
up and down. It runs until interrupted (Ctrl+C) or SIGTERM.

Example:
  port-guardian serve -c config.yaml
  port-guardian serve --config /etc/port-guardian/config.json`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, _ []string) error {
	configFile, _ := cmd.Flags().GetString("config")

	var cfg config.Config
	if err := config.LoadAndValidate(configFile, &cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	defer func() { _ = logger.Sync() }()

	logger.Info("config loaded",
		zap.String("file", configFile),
		zap.Int("servers", len(cfg.Servers)),
		zap.Duration("check_interval", cfg.CheckInterval.Duration()),
		zap.Bool("webhook_enabled", cfg.Webhook.Enabled))

	return lifecycle.Run(cmd.Context(), &lifecycle.Options{
		ServiceName: "port-guardian",
		Service:     newGuardian(&cfg, logger),
		Logger:      logger,
	})
}

// guardian wires the monitor and the notification queue into one service.
type guardian struct {
	monitor *monitor.Monitor
	queue   *alerts.Queue
}

func newGuardian(cfg *config.Config, logger *zap.Logger) *guardian {
	alerter := alerts.NewWebhookAlerter(cfg.Webhook, logger)
	formatter := alerts.NewFormatter(cfg.Webhook.URL, cfg.Webhook.MsgType)
	queue := alerts.NewQueue(alerter, formatter, logger)

	endpoints := cfg.Endpoints()
	prober := checker.New(cfg.Timeout.Duration(), logger)
	tracker := state.New(endpoints, cfg.NotifyOnFirstDown, logger)

	mon := monitor.New(monitor.Config{
		Interval:    cfg.CheckInterval.Duration(),
		Concurrency: cfg.Concurrency,
		ProbeRate:   cfg.ProbeRate,
	}, endpoints, prober, tracker, queue, logger)

	return &guardian{monitor: mon, queue: queue}
}

func (g *guardian) Start(ctx context.Context) error {
	return g.monitor.Start(ctx)
}

func (g *guardian) Stop(context.Context) error {
	if err := g.monitor.Stop(); err != nil {
		return err
	}

	// Notifications still queued at this point are abandoned.
	g.queue.Stop()

	return nil
}
