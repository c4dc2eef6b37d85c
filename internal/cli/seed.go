package cli

import (
	"context"
	"fmt"
	"time"

	"quizmaster-service/internal/config"
	redisinfra "quizmaster-service/internal/infra/redis"
	"quizmaster-service/internal/logger"
	"quizmaster-service/internal/seed"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewSeedCmd loads the demo users, quizzes and scores into the configured store.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo data into the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath)
		},
	}
}

func runSeed(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(serviceName, cfg.Log.Level)

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	if !b.durable {
		return fmt.Errorf("seed needs postgres.url or sqlite.path configured")
	}
	if err := seed.Load(ctx, b.store); err != nil {
		return err
	}

	if b.redis != nil {
		cache := redisinfra.NewQuizCache(b.redis, b.store, time.Minute)
		for _, quiz := range seed.Quizzes() {
			if err := cache.Invalidate(ctx, quiz.ID); err != nil {
				log.WithError(err).WithField("quiz_id", quiz.ID).Warn("cache invalidation failed")
			}
		}
	}

	log.WithFields(logrus.Fields{
		"users":   len(seed.Users()),
		"quizzes": len(seed.Quizzes()),
		"scores":  len(seed.Scores()),
	}).Info("seed data loaded")
	return nil
}
