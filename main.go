package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/meridian-advisory/insights-api/internal/api"
	"github.com/meridian-advisory/insights-api/internal/config"
	"github.com/meridian-advisory/insights-api/internal/content"
	"github.com/meridian-advisory/insights-api/internal/handler"
	"github.com/meridian-advisory/insights-api/internal/logger"
	"github.com/meridian-advisory/insights-api/internal/middleware"
	"github.com/meridian-advisory/insights-api/internal/notify"
	"github.com/meridian-advisory/insights-api/internal/objectstore"
	"github.com/meridian-advisory/insights-api/internal/ratelimit"
	redisconn "github.com/meridian-advisory/insights-api/internal/redis"
	"github.com/meridian-advisory/insights-api/internal/search"
	"github.com/meridian-advisory/insights-api/internal/storage"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log := logger.Must(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Service.Debug,
	}).With(logger.String("service", cfg.Service.Name))
	defer func() { _ = log.Sync() }()

	idx, err := content.Load(cfg.Content.IndexDir)
	if err != nil {
		log.Error("Failed to load content indexes", logger.Error(err))
		return 1
	}
	log.Info("Content indexes loaded",
		logger.Int("reports", len(idx.Reports())),
		logger.Int("articles", len(idx.Articles())),
	)

	db, err := storage.Connect(cfg.Database.DSN())
	if err != nil {
		log.Error("Failed to connect to database", logger.Error(err))
		return 1
	}
	defer func() { _ = db.Close() }()

	redisClient := connectRedis(cfg, log)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	signer := buildSigner(cfg, log)

	return runServer(cfg, log, idx, db, redisClient, signer)
}

// loadConfig loads and validates configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.GetConfigPath("config.yml"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// connectRedis connects to Redis when configured. Rate limiting and the CRM
// queue degrade to no-ops without it.
func connectRedis(cfg *config.Config, log logger.Logger) *goredis.Client {
	if !cfg.Redis.Enabled() {
		log.Warn("Redis not configured, rate limiting and CRM sync disabled")
		return nil
	}

	client, err := redisconn.NewClient(cfg.Redis.Addr, cfg.Redis.Password)
	if err != nil {
		log.Warn("Redis unavailable, rate limiting and CRM sync disabled", logger.Error(err))
		return nil
	}

	log.Info("Redis connected", logger.String("addr", cfg.Redis.Addr))
	return client
}

// buildSigner creates the object-store signer, or a disabled one when the
// store is not configured. Signed downloads then fail with a server error.
func buildSigner(cfg *config.Config, log logger.Logger) objectstore.Signer {
	if !cfg.Storage.Enabled() {
		log.Warn("Object store not configured, signed downloads disabled")
		return objectstore.Disabled()
	}

	signer, err := objectstore.New(context.Background(), objectstore.Config{
		Endpoint:        cfg.Storage.Endpoint,
		Region:          cfg.Storage.Region,
		Bucket:          cfg.Storage.Bucket,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		SignExpiry:      time.Duration(cfg.Storage.SignExpiryMin) * time.Minute,
	})
	if err != nil {
		log.Warn("Object store setup failed, signed downloads disabled", logger.Error(err))
		return objectstore.Disabled()
	}
	return signer
}

// runServer creates all dependencies and starts the HTTP server.
func runServer(
	cfg *config.Config,
	log logger.Logger,
	idx *content.Index,
	db *sqlx.DB,
	redisClient *goredis.Client,
	signer objectstore.Signer,
) int {
	metrics := middleware.NewMetrics(prometheus.DefaultRegisterer)
	repo := storage.NewRepository(db)

	engine := search.NewEngine(idx)
	suggester := search.NewSuggester(idx)

	queue := notify.NewCRMQueue(redisClient, cfg.CRM.QueueKey)
	mailer := notify.NewMailer(cfg.Mail.Endpoint, cfg.Mail.APIKey, cfg.Mail.From, cfg.Mail.To)
	notifier := notify.NewNotifier(queue, mailer, log)

	window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	limiters := api.Limiters{
		Lead:     ratelimit.New(redisClient, "rl:lead", cfg.RateLimit.LeadPerMinute, window),
		Download: ratelimit.New(redisClient, "rl:download", cfg.RateLimit.DownloadPerMinute, window),
	}

	tokenTTL := time.Duration(cfg.Service.TokenTTLMinutes) * time.Minute
	handlers := api.Handlers{
		Search:   handler.NewSearchHandler(engine, suggester, log),
		Lead:     handler.NewLeadHandler(idx, repo, notifier, metrics, log, tokenTTL),
		Download: handler.NewDownloadHandler(repo, signer, metrics, log, cfg.Service.MediaKitKey),
		Health:   handler.NewHealthHandler(cfg.Service.Version, db.Ping),
	}

	server := api.NewServer(cfg.Service.Port, cfg.Service.Debug, handlers, limiters, metrics, log)

	log.Info("Insights API starting", logger.Int("port", cfg.Service.Port))

	if err := server.Run(); err != nil {
		log.Error("Server error", logger.Error(err))
		return 1
	}

	log.Info("Insights API exited cleanly")
	return 0
}
