package cli

import (
	"context"
	"fmt"
	"time"

	"quizmaster-service/internal/app"
	"quizmaster-service/internal/config"
	"quizmaster-service/internal/infra/memory"
	"quizmaster-service/internal/infra/postgres"
	redisinfra "quizmaster-service/internal/infra/redis"
	"quizmaster-service/internal/infra/sqlite"
	"quizmaster-service/internal/seed"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type store interface {
	app.Repository
	seed.Target
}

// backend bundles the storage the service runs on. Postgres wins over SQLite;
// with neither configured the service runs on a seeded in-memory store.
type backend struct {
	store   store
	durable bool
	redis   *redis.Client
	closers []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackend(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*backend, error) {
	b := &backend{}

	switch {
	case cfg.Postgres.URL != "":
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		b.store = postgres.NewStore(pool)
		b.durable = true
		log.Info("using postgres store")
	case cfg.SQLite.Path != "":
		st, err := sqlite.NewStore(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		b.closers = append(b.closers, func() { _ = st.Close() })
		b.store = st
		b.durable = true
		log.WithField("path", cfg.SQLite.Path).Info("using sqlite store")
	default:
		st := memory.NewStore()
		if err := seed.Load(ctx, st); err != nil {
			return nil, err
		}
		b.store = st
		log.Info("using seeded in-memory store")
	}

	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = b.redis.Close() })
	}
	return b, nil
}

// quizLoader puts a cache in front of durable stores.
func (b *backend) quizLoader(ttl time.Duration) app.QuizLoader {
	switch {
	case b.redis != nil:
		return redisinfra.NewQuizCache(b.redis, b.store, ttl)
	case b.durable:
		return memory.NewQuizCache(b.store, ttl)
	default:
		return b.store
	}
}

func (b *backend) attemptStore(ttl time.Duration) app.AttemptRepository {
	if b.redis != nil {
		return redisinfra.NewAttemptStore(b.redis, ttl)
	}
	return memory.NewAttemptStore(ttl)
}
