// Package scheduler runs background workers
package scheduler

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/amirphl/collab-market/app/services"
	"github.com/amirphl/collab-market/repository"
	"github.com/amirphl/collab-market/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	relayPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notification_relay_published_total",
		Help: "Notifications relayed to the event bus",
	})
	relayFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notification_relay_failures_total",
		Help: "Failed relay attempts; the row is retried on the next tick",
	})
)

// NotificationRelay periodically moves unpublished notifications to the event bus.
// Rows are relayed oldest first and a failed row stops the batch so per-recipient
// order is kept.
type NotificationRelay struct {
	repo      repository.NotificationRepository
	publisher services.NotificationPublisher
	logger    *log.Logger
	interval  time.Duration
	batchSize int
}

func NewNotificationRelay(
	repo repository.NotificationRepository,
	publisher services.NotificationPublisher,
	logOutput io.Writer,
	interval time.Duration,
	batchSize int,
) *NotificationRelay {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if logOutput == nil {
		logOutput = io.Discard
	}
	return &NotificationRelay{
		repo:      repo,
		publisher: publisher,
		logger:    log.New(logOutput, "", log.LstdFlags|log.LUTC),
		interval:  interval,
		batchSize: batchSize,
	}
}

// Start launches the relay loop in a background goroutine and returns a stop function
func (r *NotificationRelay) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		r.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.runOnce(ctx)
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// runOnce relays one batch and returns how many rows were published
func (r *NotificationRelay) runOnce(ctx context.Context) int {
	rows, err := r.repo.ListUnpublished(ctx, r.batchSize)
	if err != nil {
		r.logger.Printf("relay: list unpublished failed: %v", err)
		return 0
	}
	if len(rows) == 0 {
		return 0
	}

	published := make([]uint, 0, len(rows))
	for _, n := range rows {
		if ctx.Err() != nil {
			break
		}
		if err := r.publisher.Publish(ctx, n); err != nil {
			relayFailuresTotal.Inc()
			r.logger.Printf("relay: publish notification id=%d type=%s failed: %v", n.ID, n.Type, err)
			break
		}
		published = append(published, n.ID)
	}
	if len(published) == 0 {
		return 0
	}

	// a crash between publish and mark re-sends the batch; consumers dedupe on the event id
	if err := r.repo.MarkPublished(context.WithoutCancel(ctx), published, utils.UTCNow()); err != nil {
		r.logger.Printf("relay: mark %d notifications published failed: %v", len(published), err)
		return 0
	}
	relayPublishedTotal.Add(float64(len(published)))
	r.logger.Printf("relay: published %d of %d notifications", len(published), len(rows))
	return len(published)
}
