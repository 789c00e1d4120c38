package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-hrms/internal/config"
	"go-hrms/internal/events"
	"go-hrms/internal/funtask"
	"go-hrms/internal/messaging/kafka/consumer"
	"go-hrms/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const funTaskLeaderboardGroup = "go-hrms-funtask-leaderboard"

// RunConsumer feeds completed fun tasks into the Redis leaderboard until
// SIGINT or SIGTERM, rebuilding it from the database on start and every
// LeaderboardSync.
func RunConsumer(cfg config.Config) error {
	logger := zap.L().Named("app.consumer")

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database, cfg.ConnectRetries)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	redisClient, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.RedisPassword, cfg.ConnectRetries)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	board := funtask.NewLeaderboard(redisClient, funtask.NewRepository(gormDB))

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		Topic:          events.FunTaskLifecycleTopic,
		GroupID:        funTaskLeaderboardGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go board.Sync(ctx, cfg.LeaderboardSync)
	consumer.ConsumeFunTaskCompleted(ctx, reader, board, logger)

	logger.Info("consumer shut down")
	return nil
}
