package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"slotline/internal/notifier"
	"slotline/pkg/config"
	"slotline/pkg/kafka"
	kafka_config "slotline/pkg/kafka/config"
	kafka_middleware "slotline/pkg/kafka/middleware"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	worker := notifier.New(cfg.Log)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.KafkaTopic,
		ServiceName,
		cfg.KafkaTopic+"-dlq",
		worker.Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		cfg.Log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	cfg.Log.Info("Starting notifier worker", "topic", cfg.KafkaTopic, "group_id", ServiceName)

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Notifier worker stopped")
}
