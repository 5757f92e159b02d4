package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/listpilot/internal/api"
	"github.com/ignite/listpilot/internal/config"
	"github.com/ignite/listpilot/internal/dispatch"
	"github.com/ignite/listpilot/internal/pkg/logger"
	"github.com/ignite/listpilot/internal/repository/postgres"
	"github.com/ignite/listpilot/internal/service/campaign"
	"github.com/ignite/listpilot/internal/service/list"
	"github.com/ignite/listpilot/internal/service/subscriber"
	"github.com/ignite/listpilot/internal/service/subscription"
	"github.com/ignite/listpilot/internal/service/template"
	"github.com/ignite/listpilot/internal/stats"
	"github.com/ignite/listpilot/internal/targeting"
	"github.com/ignite/listpilot/internal/worker"
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		logger.Error("load config", "error", err.Error())
		os.Exit(1)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	if cfg.Logging.RedactPII != nil {
		logger.SetRedactPII(*cfg.Logging.RedactPII)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.Error("open database", "error", err.Error())
		os.Exit(1)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "error", err.Error())
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Error("ping redis", "error", err.Error())
		os.Exit(1)
	}

	// Repositories
	subscriberRepo := postgres.NewSubscriberRepo(db)
	listRepo := postgres.NewListRepo(db)
	subscriptionRepo := postgres.NewSubscriptionRepo(db)
	templateRepo := postgres.NewTemplateRepo(db)
	campaignRepo := postgres.NewCampaignRepo(db)
	eventRepo := postgres.NewEventRepo(db)
	audienceQueue := postgres.NewAudienceQueue(db)

	// Services
	renderer := template.NewRenderer()
	subscribers := subscriber.NewService(subscriberRepo)
	lists := list.NewService(listRepo)
	subscriptions := subscription.NewService(subscriptionRepo)
	templates := template.NewService(templateRepo, renderer)
	resolver := targeting.NewResolver(listRepo, subscriptionRepo, subscriberRepo)
	campaigns := campaign.NewService(campaignRepo, resolver)
	aggregator := stats.New(rdb, eventRepo, campaignRepo, campaigns,
		subscriptions, subscribers, cfg.Bounce.HardThreshold)

	// Workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Scheduler.Enabled {
		scheduler := worker.NewCampaignScheduler(campaigns, rdb, db, cfg.Scheduler.PollInterval())
		if err := scheduler.Start(); err != nil {
			logger.Error("start scheduler", "error", err.Error())
			os.Exit(1)
		}
		defer scheduler.Stop()
	}

	if cfg.Dispatch.Enabled {
		var sender dispatch.Sender
		switch cfg.Dispatch.Sender {
		case "ses":
			sender, err = dispatch.NewSESSender(ctx, cfg.Dispatch.SESRegion)
			if err != nil {
				logger.Error("init ses sender", "error", err.Error())
				os.Exit(1)
			}
		default:
			sender = dispatch.LogSender{}
		}
		dispatcher := dispatch.NewDispatcher(audienceQueue, campaignRepo, templateRepo,
			subscriberRepo, renderer, sender, aggregator, dispatch.Config{
				BatchSize:    cfg.Dispatch.BatchSize,
				PollInterval: cfg.Dispatch.PollInterval(),
				ReclaimAfter: cfg.Dispatch.ReclaimAfter(),
			})
		go dispatcher.Run(ctx)
	}

	// HTTP API
	handlers := api.NewHandlers(subscribers, lists, subscriptions, templates, campaigns, aggregator)
	server := api.NewServer(cfg.Server, handlers, cfg.Auth.Tokens)

	errc := make(chan error, 1)
	go func() {
		logger.Info("listpilot server listening", "addr", cfg.Server.Addr())
		errc <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errc:
		logger.Error("server error", "error", err.Error())
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err.Error())
	}
	logger.Info("server stopped")
}
