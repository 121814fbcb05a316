package main

import (
	"commonroom/auth"
	"commonroom/config"
	"commonroom/media"
	"commonroom/monitoring"
	"commonroom/server"
	"commonroom/service"
	"commonroom/storage"
	"commonroom/storage/cache"
	"commonroom/validation"
	"context"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "commonroom",
		Short:         "Social network API with denormalized follow and reaction graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (defaults to $CONFIG)")
	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.SetupLogging()
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and indexes for the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// Opening a store brings its schema up to date.
			store, err := storage.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			log.Infof("Store %s is up to date", cfg.StoreDriver)
			return store.Close(cmd.Context())
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Errorf("Error closing store: %v", err)
		}
	}()

	var identities cache.IdentityCache = cache.NopIdentityCache{}
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisIdentityCache(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.IdentityCacheTTL)
		defer redisCache.Close()
		identities = redisCache
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	monitoring.Register(registry)

	tokens := auth.NewTokenService(cfg.SecretKey, cfg.TokenValidity)
	deps := service.Deps{
		Store:     store,
		Cache:     identities,
		Hasher:    auth.NewBcryptHasher(cfg.BcryptCost),
		Tokens:    tokens,
		Validator: validation.New(),
	}
	if cfg.S3Bucket != "" {
		deps.Media = media.NewService(media.Options{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			URLValidity:  cfg.MediaURLValidity,
		})
	} else {
		log.Warn("S3_BUCKET not set, media uploads are disabled")
	}

	srv := server.NewServer(service.New(deps), tokens, registry, cfg.IsProduction())

	return srv.Run(ctx, cfg.HTTPAddr)
}
