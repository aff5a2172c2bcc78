package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sentrybot/guard/internal/approval"
	"github.com/sentrybot/guard/internal/audit"
	"github.com/sentrybot/guard/internal/classify"
	"github.com/sentrybot/guard/internal/config"
	"github.com/sentrybot/guard/internal/injection"
	"github.com/sentrybot/guard/internal/maintenance"
	"github.com/sentrybot/guard/internal/observability"
	"github.com/sentrybot/guard/internal/orchestrator"
	"github.com/sentrybot/guard/internal/pathguard"
	"github.com/sentrybot/guard/internal/ratelimit"
	"github.com/sentrybot/guard/internal/telegram"
	"github.com/sentrybot/guard/internal/userlock"

	tgbot "github.com/go-telegram/bot"
)

func newServeCmd() *cobra.Command {
	var settingsPath, patternsPath, httpAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the guard's HTTP API and, if a bot token is configured, send approval prompts through Telegram",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), settingsPath, patternsPath, httpAddr)
		},
	}
	cmd.Flags().StringVar(&settingsPath, "settings", "configs/settings.yaml", "path to the settings YAML file")
	cmd.Flags().StringVar(&patternsPath, "patterns", "configs/patterns.yaml", "path to the command/path/injection pattern YAML file")
	cmd.Flags().StringVar(&httpAddr, "addr", ":8080", "address the HTTP API listens on")
	return cmd
}

func runServe(ctx context.Context, settingsPath, patternsPath, httpAddr string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := observability.New(observability.Config{Level: slog.LevelInfo})

	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	patterns, err := config.LoadPatternFile(patternsPath)
	if err != nil {
		slog.Warn("serve: falling back to built-in pattern table", "patterns_path", patternsPath, "error", err)
		patterns = config.DefaultPatterns()
	}

	reg := newRegistry()
	metrics := observability.NewMetrics(reg)
	auditLogger := audit.New(nil, nil)

	tracer, shutdownTracer := observability.NewTracer(observability.TraceConfig{ServiceName: "sentryguard"})
	defer func() { _ = shutdownTracer(context.Background()) }()

	var notifier orchestrator.ApprovalNotifier = orchestrator.NoopNotifier{}
	var sender *telegram.Sender
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		limiter := ratelimit.New(ratelimit.Config{
			GlobalMinInterval: settings.GlobalMinInterval,
			GroupMinInterval:  settings.GroupMinInterval,
			MaxRetries:        settings.MaxRetries,
			RetryBuffer:       settings.RetryBuffer,
		}, nil)

		b, err := tgbot.New(token)
		if err != nil {
			return fmt.Errorf("create telegram bot: %w", err)
		}
		sender = telegram.NewSender(telegram.NewRealBotClient(b), limiter)
		notifier = newTelegramNotifier(sender)
	} else {
		slog.Warn("serve: TELEGRAM_BOT_TOKEN not set, approval prompts will only be logged")
	}

	approvals := approval.New(settings.ApprovalTTL)

	orch := orchestrator.New(orchestrator.Deps{
		Classifier: classify.New(patterns),
		PathGuard:  pathguard.New(),
		Approvals:  approvals,
		Serializer: userlock.New(settings.MaxConcurrentUsers),
		Injection:  injection.New(patterns),
		Notifier:   notifier,
		Audit:      auditLogger,
		Metrics:    metrics,
		Logger:     logger,
		Tracer:     tracer,
		Settings:   settings,
	})
	defer orch.Close()

	sched := maintenance.NewScheduler()
	if err := sched.AddSweep("@every 1m", "approval_ttl_sweep", approvals.Sweep); err != nil {
		return fmt.Errorf("schedule approval sweep: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	srv := newAPIServer(orch, reg, settings)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(httpAddr)
	}()
	logger.Info(ctx, "serve: guard listening", "addr", httpAddr)

	select {
	case <-ctx.Done():
		slog.Info("serve: shutdown signal received")
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
