// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"smm-storefront/internal/catalog"
	"smm-storefront/internal/config"
	"smm-storefront/internal/domain/ports/adapter"
	pg "smm-storefront/internal/infra/db/postgres"
	webhookapi "smm-storefront/internal/infra/http"
	"smm-storefront/internal/infra/logging"
	"smm-storefront/internal/infra/metrics"
	"smm-storefront/internal/infra/notify"
	"smm-storefront/internal/infra/provider"
	red "smm-storefront/internal/infra/redis"
	"smm-storefront/internal/infra/sched"
	"smm-storefront/internal/infra/web"
	"smm-storefront/internal/infra/worker"
	"smm-storefront/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop notifiers, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis (optional: rate limiting and sweep single-flight) ----
	var rateLimiter *red.RateLimiter
	var locker red.Locker
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		rateLimiter = red.NewRateLimiter(redisClient)
		locker = red.NewLocker(redisClient)
	} else {
		logger.Warn().Msg("redis.url not set; rate limiting and sweep lock disabled")
	}

	// ---- Repositories ----
	orderRepo := pg.NewOrderRepo(pool)
	trialRepo := pg.NewFreeTrialRepo(pool)
	txMgr := pg.NewTxManager(pool)

	// ---- Providers ----
	providers := map[string]adapter.EngagementProvider{
		"boostapi": provider.NewPanelClient(provider.PanelConfig{
			Name:    "boostapi",
			BaseURL: cfg.Providers.BoostAPI.BaseURL,
			APIKey:  cfg.Providers.BoostAPI.APIKey,
			Timeout: cfg.Providers.BoostAPI.Timeout,
		}, logger),
		"smmglow": provider.NewPanelClient(provider.PanelConfig{
			Name:    "smmglow",
			BaseURL: cfg.Providers.SMMGlow.BaseURL,
			APIKey:  cfg.Providers.SMMGlow.APIKey,
			Timeout: cfg.Providers.SMMGlow.Timeout,
		}, logger),
	}
	activeProvider := providers[cfg.Providers.Active]

	// ---- Notification & alerting ----
	var notifier adapter.Notifier
	if cfg.Notify.SMTP.Host != "" && !cfg.Runtime.Dev {
		notifier = notify.NewSMTPNotifier(cfg.Notify.SMTP)
	} else {
		notifier = notify.NewNoopNotifier(logger)
	}
	var alerter adapter.Alerter
	if cfg.Notify.Telegram.Token != "" && !cfg.Runtime.Dev {
		alerter, err = notify.NewTelegramAlerter(cfg.Notify.Telegram)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram alerter")
		}
	} else {
		alerter = notify.NewNoopAlerter(logger)
	}

	// ---- Use cases ----
	cat := catalog.Default()
	fulUC := usecase.NewFulfillmentUseCase(orderRepo, txMgr, cat, providers, cfg.Providers.Active, notifier, alerter, logger)
	reconUC := usecase.NewReconcileUseCase(orderRepo, providers, fulUC, cfg.Sweep.StaleAfter, cfg.Sweep.BatchSize, logger)
	trialUC := usecase.NewFreeTrialUseCase(trialRepo, cat, activeProvider, alerter, usecase.TrialSpec{
		Platform: cfg.FreeTrial.Platform,
		Service:  cfg.FreeTrial.Service,
		Quantity: cfg.FreeTrial.Quantity,
	}, logger)
	statsUC := usecase.NewStatsUseCase(orderRepo)

	// ---- Worker pool (async fulfillment after webhook ack) ----
	wpool := worker.NewPool(cfg.Webhook.Workers, logger)
	wpool.Start(ctx)
	defer wpool.Stop()

	// ---- Public server: webhook + free trial ----
	pubSrv := webhookapi.NewServer(fulUC, trialUC, wpool, rateLimiter, cfg, logger)
	pubMux := http.NewServeMux()
	pubSrv.Register(pubMux)
	publicServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Webhook.Port), Handler: pubMux}
	go func() {
		logger.Info().Str("addr", publicServer.Addr).Msg("public server listening")
		if err := publicServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("public server error")
		}
	}()

	// ---- Admin server: stats, order lookup, metrics ----
	authMgr := web.NewAuthManager(cfg.Admin.JWTSecret, !cfg.Runtime.Dev, cfg.Admin.TokenTTL)
	adminSrv := web.NewServer(statsUC, orderRepo, authMgr, cfg.Admin.Password, logger)
	adminServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Admin.Port), Handler: adminSrv.Router()}
	go func() {
		logger.Info().Str("addr", adminServer.Addr).Msg("admin server listening")
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("admin server error")
		}
	}()

	// ---- Reconciliation sweep ----
	sweeper := sched.NewSweepWorker(cfg.Sweep.Interval, reconUC, locker, logger)
	go func() { _ = sweeper.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()
	_ = publicServer.Shutdown(context.Background())
	_ = adminServer.Shutdown(context.Background())
}
