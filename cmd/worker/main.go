package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kartikey004/resume-parser-ai/internal/bootstrap"
	"github.com/kartikey004/resume-parser-ai/internal/queue"
	"github.com/kartikey004/resume-parser-ai/internal/shared/config"
	"github.com/kartikey004/resume-parser-ai/internal/shared/storage/db"
	"github.com/kartikey004/resume-parser-ai/internal/shared/telemetry"
	"github.com/kartikey004/resume-parser-ai/internal/workerproc"
)

const (
	defaultWorkerConcurrency  = 4
	defaultShutdownTimeoutSec = 30
)

func main() {
	cfg := config.Load()

	if strings.TrimSpace(cfg.RabbitURL) == "" {
		log.Fatal("RABBITMQ_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	concurrency := envInt("WORKER_CONCURRENCY", defaultWorkerConcurrency)
	if concurrency < 1 {
		concurrency = 1
	}
	shutdownTimeout := time.Duration(envInt("SHUTDOWN_TIMEOUT_SECONDS", defaultShutdownTimeoutSec)) * time.Second

	app, err := bootstrap.Build(cfg, bootstrap.Options{
		DBOptions: db.DefaultWorkerOptions(),
	})
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}

	client, ok := app.Queue.(*queue.RabbitClient)
	if !ok || client == nil {
		log.Fatal("queue client is not RabbitMQ; check RABBITMQ_URL")
	}
	defer client.Close()

	deliveries, err := client.Consume(concurrency)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	log.Printf("worker started queue=%s concurrency=%d", cfg.QueueName, concurrency)

consumeLoop:
	for {
		select {
		case <-ctx.Done():
			break consumeLoop
		case delivery, open := <-deliveries:
			if !open {
				log.Printf("delivery channel closed; shutting down")
				break consumeLoop
			}
			select {
			case <-ctx.Done():
				// Unacked delivery is requeued by the broker on close.
				break consumeLoop
			case sem <- struct{}{}:
			}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer wg.Done()
				defer func() { <-sem }()
				handleDelivery(ctx, app, d)
			}(delivery)
		}
	}

	log.Printf("shutdown requested, waiting up to %s for in-flight jobs", shutdownTimeout)
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(shutdownTimeout):
		log.Printf("shutdown timeout reached; exiting with in-flight jobs")
	}
}

func handleDelivery(ctx context.Context, app *bootstrap.App, d amqp.Delivery) {
	body := string(d.Body)

	decoded, meta, err := workerproc.ParseMessage(body)
	if err != nil {
		// Malformed payloads can never succeed; drop without requeue.
		telemetry.Error("worker.job.unroutable", map[string]any{
			"body_len":    meta.BodyLen,
			"body_sha256": meta.BodySHA,
			"error":       err.Error(),
		})
		if nackErr := d.Nack(false, false); nackErr != nil {
			telemetry.Error("worker.job.nack_failed", map[string]any{"error": nackErr.Error()})
		}
		return
	}

	fields := map[string]any{
		"kind":       decoded.Kind,
		"resume_id":  decoded.ResumeID,
		"match_id":   decoded.MatchID,
		"request_id": decoded.RequestID,
	}
	telemetry.Info("worker.job.received", fields)

	ctxWithParsed := workerproc.WithParsedMessage(ctx, decoded)
	if err := workerproc.HandleMessage(ctxWithParsed, app, body); err != nil {
		fields["error"] = err.Error()
		telemetry.Error("worker.job.failed", fields)
		if nackErr := d.Nack(false, false); nackErr != nil {
			telemetry.Error("worker.job.nack_failed", map[string]any{"error": nackErr.Error()})
		}
		return
	}

	if err := d.Ack(false); err != nil {
		fields["error"] = err.Error()
		telemetry.Error("worker.job.ack_failed", fields)
		return
	}
	telemetry.Info("worker.job.completed", fields)
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
