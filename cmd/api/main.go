package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"furnit-storefront/internal/assertion"
	"furnit-storefront/internal/checkout"
	"furnit-storefront/internal/client"
	"furnit-storefront/internal/config"
	"furnit-storefront/internal/email"
	"furnit-storefront/internal/logger"
	"furnit-storefront/internal/notify"
	"furnit-storefront/internal/repository"
	"furnit-storefront/internal/server"
	"furnit-storefront/internal/service"
)

const resetSweepInterval = time.Minute

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logs := logger.NewFactory(cfg.Log)
	log := logs.New("api")

	db, err := client.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	if err := productRepo.Seed(context.Background()); err != nil {
		log.Fatalf("seed catalog: %v", err)
	}

	var (
		resetTokens repository.ResetTokenRepository
		guard       repository.AssertionGuard
		cartRepo    repository.CartRepository
		redisClient *redis.Client
	)
	if cfg.Redis.Addr != "" {
		redisClient, err = client.InitRedis(&cfg.Redis)
		if err != nil {
			log.Fatalf("init redis: %v", err)
		}
		resetTokens = repository.NewRedisResetTokenRepository(redisClient, time.Now)
		guard = repository.NewRedisAssertionGuard(redisClient, time.Now)
		cartRepo = repository.NewRedisCartRepository(redisClient)
	} else {
		log.Warn("REDIS_ADDR not set; reset tokens and carts live in process memory")
		memTokens := repository.NewMemoryResetTokenRepository(time.Now)
		memTokens.StartSweeper(resetSweepInterval)
		defer memTokens.Close()
		resetTokens = memTokens
		guard = repository.NewMemoryAssertionGuard(time.Now)
		cartRepo = repository.NewMemoryCartRepository()
	}

	secret := cfg.Reset.AssertionSecret
	if secret == "" {
		log.Warn("RESET_ASSERTION_SECRET not set; password change assertions will not survive a restart")
		if secret, err = assertion.EphemeralSecret(); err != nil {
			log.Fatalf("generate assertion secret: %v", err)
		}
	}

	renderer, err := email.NewRenderer(cfg.FrontendURL, time.Now)
	if err != nil {
		log.Fatalf("load email templates: %v", err)
	}

	transport := client.NewSMTPTransport(&cfg.SMTP)
	verifyCtx, verifyCancel := context.WithTimeout(context.Background(), cfg.SMTP.Timeout)
	if err := transport.Verify(verifyCtx); err != nil {
		log.Warnf("smtp server %s:%d not reachable, emails will fail until it is: %v", cfg.SMTP.Host, cfg.SMTP.Port, err)
	} else {
		log.Info("smtp server is ready to send emails")
	}
	verifyCancel()

	mailerService := service.NewMailerService(
		client.NewAuthDirectory(&cfg.AuthBackend, logs.New("auth-backend")),
		transport,
		renderer,
		resetTokens,
		assertion.NewIssuer(secret, guard, time.Now),
		logs.New("mailer"),
		service.MailerOptions{DiscloseUnknownAccount: cfg.Reset.DiscloseUnknownAccount},
	)

	useOutbox := cfg.Notify.Mode == "outbox"
	orderService := service.NewOrderService(db, orderRepo, outboxRepo, useOutbox)
	cartService := service.NewCartService(cartRepo, productRepo)

	relayCtx, stopRelay := context.WithCancel(context.Background())
	defer stopRelay()

	var (
		notifier checkout.Notifier
		relay    *notify.Relay
		direct   *notify.Direct
	)
	if useOutbox {
		relay = notify.NewRelay(outboxRepo, mailerService, &cfg.Notify, logs.New("outbox-relay"))
		go relay.Run(relayCtx)
		notifier = relay
	} else {
		direct = notify.NewDirect(mailerService, cfg.Notify.SendTimeout, logs.New("notify"))
		notifier = direct
	}

	checkoutService := service.NewCheckoutService(
		cartService,
		orderService,
		notifier,
		checkout.DefaultSubmitTimeout,
		logs.New("checkout"),
	)

	// Init HTTP server
	srv := server.NewServer(cfg, server.Services{
		Mailer:   mailerService,
		Catalog:  service.NewCatalogService(productRepo),
		Cart:     cartService,
		Checkout: checkoutService,
		Order:    orderService,
	}, logs.New("http"))

	log.Infof("Starting HTTP server on %s (%s)", cfg.Addr(), cfg.Environment.Name)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("Signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	}

	stopRelay()
	if relay != nil {
		select {
		case <-relay.Done():
		case <-shutdownCtx.Done():
			log.Warn("outbox relay did not stop in time")
		}
	}
	if direct != nil {
		direct.Wait()
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Errorf("close redis: %v", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("shutdown complete")
}
