package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"question_cycle_service/internal/app"
	"question_cycle_service/internal/infra/cache"
	"question_cycle_service/internal/infra/config"
	idb "question_cycle_service/internal/infra/database"
	"question_cycle_service/internal/infra/httpapi"
	"question_cycle_service/internal/infra/logger"
	"question_cycle_service/internal/infra/metrics"
	"question_cycle_service/internal/infra/scheduler"
	"question_cycle_service/internal/infra/telegram"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/telebot.v3"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the rollover scheduler and the optional Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve()
		},
	}
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("could not load application configuration: %w", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment":    cfg.Environment,
		"driver":         cfg.DatabaseDriver,
		"cycle_start":    cfg.Cycle.StartDate.Format(time.DateOnly),
		"cycle_days":     cfg.Cycle.DurationDays,
		"cycle_timezone": cfg.Cycle.Location.String(),
	}).Info("Configuration loaded.")

	// Initialize Database Connection
	db, err := idb.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}
	defer db.Close()
	if err := idb.Migrate(context.Background(), db, cfg.DatabaseDriver); err != nil {
		return err
	}
	mainLogger.Info("Database connection established and schema verified.")

	repo := idb.NewQuestionRepository(db, cfg.DatabaseDriver)
	assignments, err := cache.NewAssignmentCache(cfg.CacheMaxEntries)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	opts := []app.Option{
		app.WithMetrics(metrics.NewPrometheus(registry, metrics.DefaultNamespace)),
		app.WithLogger(logger.Component("assignments")),
	}
	if cfg.CacheCoalesceMisses {
		opts = append(opts, app.WithMissCoalescing())
	}
	svc := app.NewAssignmentService(repo, assignments, cfg.Cycle, cfg.CacheTTL, opts...)
	mainLogger.WithFields(logrus.Fields{
		"cache_ttl":         cfg.CacheTTL.String(),
		"cache_max_entries": cfg.CacheMaxEntries,
		"current_cycle":     svc.CurrentCycle(),
	}).Info("Assignment service initialized.")

	rollover := scheduler.NewRolloverScheduler(svc, logger.Component("scheduler"), cfg.CronSpecRollover, cfg.Cycle.Location)

	var bot *telebot.Bot
	if cfg.TelegramToken != "" {
		bot, err = newBot(cfg, svc)
		if err != nil {
			return err
		}
		rollover.SetAnnouncer(telegram.NewRolloverAnnouncer(telegram.NewTelebotAdapter(bot), cfg.AdminTelegramID))
		mainLogger.Info("Telegram bot handlers registered.")
	} else {
		mainLogger.Info("TELEGRAM_TOKEN not set, Telegram bot disabled.")
	}

	if err := rollover.Start(); err != nil {
		return err
	}

	if logger.IsProduction(cfg.Environment) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(svc, logger.Component("http"), promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := httpapi.NewServer(cfg.HTTPAddr, router, logger.Component("http"))
	serverErr := server.Start()

	if bot != nil {
		// Start bot in a goroutine so it doesn't block graceful shutdown handling
		go bot.Start()
	}
	mainLogger.Info("Application setup complete.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	var runErr error
	select {
	case sig := <-quit:
		mainLogger.WithField("signal", sig.String()).Info("Shutting down application...")
	case err, ok := <-serverErr:
		if ok && err != nil {
			runErr = err
			mainLogger.WithError(err).Error("HTTP server failed, shutting down application...")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
		mainLogger.WithError(err).Warn("HTTP server did not shut down cleanly")
	}
	if bot != nil {
		bot.Stop()
	}
	rollover.Stop()
	mainLogger.Info("Application shut down gracefully.")
	return runErr
}

func newBot(cfg *config.AppConfig, svc telegram.QuestionService) (*telebot.Bot, error) {
	botLogger := logger.Component("telegram")
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := botLogger.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
			}
			entry.Error("Telegram handler error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("could not create Telegram bot: %w", err)
	}

	ctx := context.Background()
	telegram.RegisterBotCommands(ctx, bot, svc, cfg.AdminTelegramID, botLogger)
	telegram.RegisterAdminHandlers(ctx, bot, svc, cfg.AdminTelegramID, botLogger)
	return bot, nil
}
