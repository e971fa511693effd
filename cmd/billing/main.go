package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/scholarastudy-create/scholarastudy/internal/billing"
	"github.com/scholarastudy-create/scholarastudy/internal/notify"
	"github.com/scholarastudy-create/scholarastudy/internal/profile"
	"github.com/scholarastudy-create/scholarastudy/pkg/config"
	"github.com/scholarastudy-create/scholarastudy/pkg/email"
	"github.com/scholarastudy-create/scholarastudy/pkg/httpserver"
	"github.com/scholarastudy-create/scholarastudy/pkg/logger"
	"github.com/scholarastudy-create/scholarastudy/pkg/pg"
	"github.com/scholarastudy-create/scholarastudy/pkg/redis"
)

type appConfig struct {
	Log    logger.Config
	HTTP   httpserver.Config
	PG     pg.Config
	Redis  redis.Config
	Stripe billing.StripeConfig
	Email  email.Config

	// CatalogPath points at an optional YAML price table; empty keeps the
	// compiled-in catalog.
	CatalogPath string        `env:"BILLING_CATALOG_PATH"`
	DedupTTL    time.Duration `env:"BILLING_DEDUP_TTL" envDefault:"96h"`
	PortalURL   string        `env:"BILLING_PORTAL_URL" envDefault:"https://scholarastudy.com/account"`
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.NewFromConfig(cfg.Log, logger.WithService("billing"))
	logger.SetAsDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("service stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		return err
	}

	catalog := billing.DefaultCatalog()
	if cfg.CatalogPath != "" {
		catalog, err = billing.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			return err
		}
		log.InfoContext(ctx, "price catalog loaded from file",
			"path", cfg.CatalogPath, "prices", catalog.Len())
	}

	gateway, err := billing.NewStripeGateway(cfg.Stripe)
	if err != nil {
		return err
	}

	store := profile.NewPostgresStore(pool)

	opts := []billing.Option{billing.WithLogger(log)}
	probes := []func(context.Context) error{pg.Healthcheck(pool)}

	if cfg.Redis.ConnectionURL != "" {
		redisClient, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		opts = append(opts, billing.WithDuplicateChecker(billing.NewRedisDeduper(redisClient, cfg.DedupTTL)))
		probes = append(probes, redis.Healthcheck(redisClient))
	} else {
		log.InfoContext(ctx, "redis not configured, duplicate deliveries rely on idempotent transitions")
	}

	sender, err := newSender(cfg.Email, log)
	if err != nil {
		return err
	}
	opts = append(opts, billing.WithNotifier(
		notify.NewEmailNotifier(sender, cfg.PortalURL, cfg.Email.SupportEmail)))

	svc := billing.NewService(catalog, store, gateway, opts...)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/health", httpserver.HealthCheckHandler(log, probes...))
	r.Mount("/", billing.NewHandler(svc, log).Handle())

	return httpserver.New(cfg.HTTP, log).Run(ctx, r)
}

// newSender picks the Postmark sender when a server token is configured and
// the log-only sender otherwise, so local runs never touch the provider.
func newSender(cfg email.Config, log *slog.Logger) (email.Sender, error) {
	if cfg.PostmarkServerToken == "" {
		log.Info("postmark not configured, using dev email sender")
		return email.NewDevSender(log), nil
	}
	return email.NewPostmarkClient(cfg)
}
