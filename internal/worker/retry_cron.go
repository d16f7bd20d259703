package worker

// Background goroutine that periodically re-attempts WhatsApp sends for
// notifications stuck in status='error' with a next_retry_at in the past.
// Uses the circuit breaker to avoid hammering a downed gateway.

import (
	"context"
	"fmt"
	"time"

	"github.com/bedouifedy-oss/dima-voyage/internal/infra"
	"github.com/bedouifedy-oss/dima-voyage/internal/model"
	"github.com/bedouifedy-oss/dima-voyage/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10

	// MaxNotificationRetries bounds total attempts before a notification
	// is parked in the DLQ for manual inspection.
	MaxNotificationRetries = 5
)

// computeRetryBackoff returns the delay before attempt n (1-based):
// 1m, 2m, 4m, 8m, capped at 30m.
func computeRetryBackoff(retryCount int) time.Duration {
	backoff := time.Minute << uint(retryCount-1)
	if backoff > 30*time.Minute {
		backoff = 30 * time.Minute
	}
	return backoff
}

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	NotificationRepo repository.NotificationRepository
	WAClient         *infra.WhatsAppClient
	CB               *infra.CircuitBreaker
	RDB              *redis.Client
}

// StartRetryCron launches a background goroutine that ticks every 30s,
// queries errored notifications, and re-attempts sends through the CB.
// It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// If CB is open, skip entirely
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	now := time.Now()
	pending, err := cfg.NotificationRepo.ListPendingRetries(ctx, now, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}
	if len(pending) == 0 {
		return
	}

	log.Info().Int("count", len(pending)).Msg("retry_cron: processing errored notifications")

	for i := range pending {
		n := &pending[i]

		// The CB may have tripped mid-batch
		if cfg.CB.State() == infra.CBOpen {
			log.Debug().Msg("retry_cron: circuit breaker opened mid-batch, stopping")
			return
		}

		cbErr := cfg.CB.Execute(func() error {
			_, err := cfg.WAClient.Send(ctx, n.Phone, n.Body)
			return err
		})

		if cbErr != nil {
			n.RetryCount++
			msg := cbErr.Error()
			n.LastError = &msg

			if n.RetryCount >= MaxNotificationRetries {
				n.Status = model.NotificationStatusError
				n.NextRetryAt = nil
				log.Error().
					Str("notification_id", n.ID.String()).
					Int("retries", n.RetryCount).
					Msg("retry_cron: max retries exceeded, moving to DLQ")

				payload := fmt.Sprintf(`{"notification_id":"%s"}`, n.ID)
				SendToDLQ(ctx, cfg.RDB, QueueNotifications, "notification", []byte(payload),
					fmt.Sprintf("max retries (%d) exceeded: %s", MaxNotificationRetries, msg),
					n.RetryCount)
			} else {
				next := time.Now().Add(computeRetryBackoff(n.RetryCount))
				n.NextRetryAt = &next
				log.Warn().
					Str("notification_id", n.ID.String()).
					Int("retry_count", n.RetryCount).
					Time("next_retry_at", next).
					Msg("retry_cron: send failed, scheduled next attempt")
			}

			_ = cfg.NotificationRepo.Update(ctx, n)
			continue
		}

		sentAt := time.Now()
		n.Status = model.NotificationStatusSent
		n.SentAt = &sentAt
		n.NextRetryAt = nil
		n.LastError = nil
		_ = cfg.NotificationRepo.Update(ctx, n)

		log.Info().
			Str("notification_id", n.ID.String()).
			Int("total_retries", n.RetryCount).
			Msg("retry_cron: message sent after retry")
	}
}
