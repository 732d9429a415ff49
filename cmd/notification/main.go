package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Kalpesh-Vala/movie-ticket-booking-system/config"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/consumer"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/idempotency"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/notifier"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/repository"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/pkg/database"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/pkg/rabbitmq"
	"github.com/redis/go-redis/v9"
)

const queueName = "notification.booking_events"

var bindings = []string{"booking.*", "payment.*"}

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())
	logRepo := repository.NewNotificationLogRepository(db)

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(opts)
	defer redisClient.Close()

	store := idempotency.NewRedisStore(redisClient, idempotency.DefaultTTLs())

	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL, queueName, bindings, cfg.ConsumerPrefetch)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer mqConsumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := mqConsumer.Consume(ctx)
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}

	worker := consumer.NewNotificationConsumer(store, logRepo, notifier.NewConsole())
	go worker.Run(ctx, msgs)

	log.Printf("Notification Service consuming queue=%s bindings=%v prefetch=%d",
		queueName, bindings, cfg.ConsumerPrefetch)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("Notification Service shutting down")
	cancel()
}
