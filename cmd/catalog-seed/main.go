// Command catalog-seed writes a synthetic product catalog into the Redis
// catalog cache, so a storefront pointed at the same Redis starts without
// reaching the upstream catalog.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/utafrali/storefront/internal/catalog"
	pkgconfig "github.com/utafrali/storefront/pkg/config"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/logger"
)

type seedConfig struct {
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	RedisAddr    string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass    string `env:"REDIS_PASSWORD"`
	RedisDB      int    `env:"REDIS_DB" envDefault:"0"`
	CacheTTLMins int    `env:"CATALOG_CACHE_TTL_MINUTES" envDefault:"60"`
	ProductCount int    `env:"SEED_PRODUCT_COUNT" envDefault:"200"`
	RandomSeed   int64  `env:"SEED_RANDOM_SEED" envDefault:"42"`
}

func main() {
	var cfg seedConfig
	if err := pkgconfig.Load(&cfg); err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("catalog-seed", cfg.LogLevel)
	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg seedConfig, log *slog.Logger) error {
	if cfg.ProductCount < 1 {
		return fmt.Errorf("SEED_PRODUCT_COUNT must be positive, got %d", cfg.ProductCount)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	redisCfg := database.DefaultRedisConfig(cfg.RedisAddr)
	redisCfg.Password = cfg.RedisPass
	redisCfg.DB = cfg.RedisDB

	rdb, err := database.NewRedisClient(ctx, redisCfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()

	products := generateProducts(cfg.ProductCount, cfg.RandomSeed)

	ttl := time.Duration(cfg.CacheTTLMins) * time.Minute
	if err := catalog.NewRedisCache(rdb, ttl).StoreProducts(ctx, products); err != nil {
		return err
	}

	log.Info("catalog seeded",
		slog.String("redis", cfg.RedisAddr),
		slog.Int("products", len(products)),
		slog.Duration("ttl", ttl),
	)
	return nil
}
