package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/k-obata-3/leave-connect-api/internal/events"
	"github.com/k-obata-3/leave-connect-api/internal/messaging/kafka/consumer"
	"github.com/k-obata-3/leave-connect-api/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.ApplicationWorkflowTopic,
		GroupID:        "leave-connect-pending-counters",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeApplicationWorkflow(ctx, reader, redisClient, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
