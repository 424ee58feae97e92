package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"harambee/internal/events"
	"harambee/internal/jwttoken"
	"harambee/internal/ledger"
	ledgerhandler "harambee/internal/ledger/handler"
	ledgersvc "harambee/internal/ledger/service"
	"harambee/internal/message"
	messagehandler "harambee/internal/message/handler"
	messagesvc "harambee/internal/message/service"
	"harambee/internal/notify"
	"harambee/internal/otp"
	otphandler "harambee/internal/otp/handler"
	otpsvc "harambee/internal/otp/service"
	"harambee/internal/payment/gateway"
	paymenthandler "harambee/internal/payment/handler"
	paymentsvc "harambee/internal/payment/service"
	"harambee/internal/platform/config"
	"harambee/internal/platform/httpserver"
	"harambee/internal/platform/logger"
	"harambee/internal/platform/metrics"
	"harambee/internal/platform/middleware"
	"harambee/internal/platform/postgres"
	platformredis "harambee/internal/platform/redis"
	"harambee/internal/progress"
	progresshandler "harambee/internal/progress/handler"
	progresssvc "harambee/internal/progress/service"
	"harambee/internal/slot"
	slothandler "harambee/internal/slot/handler"
	slotsvc "harambee/internal/slot/service"
	statshandler "harambee/internal/stats/handler"
	statssvc "harambee/internal/stats/service"
	"harambee/pkg/platform/audit"
)

// main wires stores, services, and handlers, then runs the HTTP server until
// interrupted. Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens := jwttoken.NewService(cfg.JWTSigningKey, "harambee", "harambee")

	// Stores: Postgres when DATABASE_URL is set, in-memory otherwise. The
	// in-memory ledger needs the slot store so completed contributions move
	// slot totals atomically under the same lock.
	var (
		slotStore     slot.Store
		ledgerStore   ledger.Store
		otpStore      otp.Store
		messageStore  message.Store
		progressStore progress.Store
		auditStore    audit.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("opening postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Error("applying migrations", "error", err)
			os.Exit(1)
		}
		slotStore, err = slot.NewPostgres(ctx, db, cfg.SlotCapacity)
		if err != nil {
			log.Error("initializing slot capacity", "error", err)
			os.Exit(1)
		}
		ledgerStore = ledger.NewPostgres(db)
		otpStore = otp.NewPostgres(db)
		messageStore = message.NewPostgres(db)
		progressStore = progress.NewPostgres(db)
		auditStore = audit.NewPostgresStore(db)
		log.Info("using postgres stores")
	} else {
		memSlots := slot.NewMemory(cfg.SlotCapacity)
		slotStore = memSlots
		ledgerStore = ledger.NewMemory(memSlots)
		otpStore = otp.NewMemory()
		messageStore = message.NewMemory()
		progressStore = progress.NewMemory()
		auditStore = audit.NewInMemoryStore()
		log.Info("using in-memory stores")
	}

	// An optional Redis instance takes over challenge storage; codes then
	// expire by native TTL instead of sweep.
	rc, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	if rc != nil {
		defer rc.Close()
		otpStore = otp.NewRedis(rc.Client)
		log.Info("using redis challenge store")
	}

	// Redis expires challenges natively; the relational store needs a sweep.
	if pgOTP, ok := otpStore.(*otp.PostgresStore); ok {
		go sweepExpiredChallenges(ctx, pgOTP, cfg.OTPTTL, log)
	}

	trail := audit.NewTrail(auditStore, log)
	defer trail.Close()

	var publisher events.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := events.NewKafka(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("connecting to kafka", "error", err)
			os.Exit(1)
		}
		publisher = kp
		log.Info("publishing funding events to kafka", "topic", cfg.Kafka.Topic)
	} else {
		publisher = events.NewLog(log)
	}
	publisher = events.WithAudit(publisher, trail)
	defer publisher.Close()

	gatewayClient := gateway.NewHTTPClient(cfg.Gateway.BaseURL, cfg.Gateway.SecretKey, cfg.Gateway.Timeout, log)

	slotService := slotsvc.New(slotStore, log, m)
	ledgerService := ledgersvc.New(ledgerStore, log)
	paymentService := paymentsvc.New(slotStore, ledgerService, gatewayClient, publisher, log, m)
	otpService := otpsvc.New(otpStore, notify.NewLogSender(log), log, m, otpsvc.WithTTL(cfg.OTPTTL))
	statsService := statssvc.New(slotStore, ledgerStore, log)
	messageService := messagesvc.New(messageStore, slotStore, log)
	progressService := progresssvc.New(progressStore, slotService, log)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.Latency(m))

	otphandler.New(otpService, tokens, log).Register(router)
	slothandler.New(slotService, ledgerService, log, tokens).Register(router)
	ledgerhandler.New(ledgerService, log, tokens).Register(router)
	paymenthandler.New(paymentService, log, tokens, cfg.Gateway.WebhookSecret).Register(router)
	statshandler.New(statsService, log).Register(router)
	messagehandler.New(messageService, log, tokens).Register(router)
	progresshandler.New(progressService, log, tokens).Register(router)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting harambee server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	if err := httpserver.Shutdown(srv); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

func sweepExpiredChallenges(ctx context.Context, store *otp.PostgresStore, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.DeleteExpired(context.Background(), time.Now())
			if err != nil {
				log.Error("sweep expired challenges", "error", err)
				continue
			}
			if n > 0 {
				log.Info("swept expired challenges", "count", n)
			}
		}
	}
}
