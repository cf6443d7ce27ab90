package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"linkup/internal/config"
	"linkup/internal/observability/logging"
	"linkup/internal/observability/metrics"
	"linkup/internal/realtime"
	"linkup/internal/service"
	"linkup/internal/store"
	httpx "linkup/internal/transport/http"
	"linkup/pkg/db"
)

func main() {
	_ = godotenv.Load()

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: "linkup",
		Environment: env,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	slog.SetDefault(logger)

	cfg := config.Load()
	metrics.MustRegister("linkup")

	gdb, err := db.OpenGorm(db.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}
	st := store.New(gdb)
	if err := st.AutoMigrate(context.Background()); err != nil {
		logger.Error("migrate", "error", err)
		os.Exit(1)
	}

	var broker realtime.Broker
	switch cfg.RealtimeBackend {
	case "nats":
		nc, err := nats.Connect(cfg.NATSURL, nats.Name("linkup"))
		if err != nil {
			logger.Error("nats connect", "url", cfg.NATSURL, "error", err)
			os.Exit(1)
		}
		defer func() { _ = nc.Drain() }()
		broker = realtime.NewNATSBroker(nc)
	default:
		broker = realtime.NewMemoryBroker()
	}
	defer func() { _ = broker.Close() }()

	tokens := service.NewTokenService(service.TokenConfig{
		Issuer:     cfg.Issuer,
		Audience:   cfg.Audience,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
		SigningKey: []byte(cfg.SigningKey),
	}, st)

	auth := service.NewAuthService(st, service.NewPasswordHasher(), tokens)
	profiles := service.NewProfileService(st)
	friends := service.NewFriendService(st, broker)
	chat := service.NewChatService(st, broker)

	handler := httpx.NewRouter(httpx.RouterConfig{
		CORSOrigins:     cfg.CORSOrigins,
		LoginRateLimit:  cfg.LoginRateLimit,
		LoginRateWindow: cfg.LoginRateWindow,
	}, auth, profiles, friends, chat, tokens, broker)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("linkup listening", "addr", srv.Addr, "realtime", cfg.RealtimeBackend)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
