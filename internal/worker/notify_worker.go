package worker

// Processes WhatsApp jobs from QueueNotifications. Each job references a
// persisted Notification row; the send result (sent / error + diagnostic)
// is written back to that row so the retry cron can pick up failures.
// A send failure never touches any booking or ledger state.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bedouifedy-oss/dima-voyage/internal/infra"
	"github.com/bedouifedy-oss/dima-voyage/internal/model"
	"github.com/bedouifedy-oss/dima-voyage/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// NotificationJobPayload is the job envelope sent to QueueNotifications.
type NotificationJobPayload struct {
	NotificationID string `json:"notification_id"`
}

type NotifyWorker struct {
	waClient         *infra.WhatsAppClient
	notificationRepo repository.NotificationRepository
	cb               *infra.CircuitBreaker
}

func NewNotifyWorker(waClient *infra.WhatsAppClient, notificationRepo repository.NotificationRepository, cb *infra.CircuitBreaker) *NotifyWorker {
	return &NotifyWorker{waClient: waClient, notificationRepo: notificationRepo, cb: cb}
}

// Process sends one pending notification through the circuit breaker
// with in-process backoff, then records the outcome on the row.
func (w *NotifyWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload NotificationJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("notify_worker: invalid payload")
		return
	}

	id, err := uuid.Parse(payload.NotificationID)
	if err != nil {
		log.Error().Str("notification_id", payload.NotificationID).Msg("notify_worker: invalid id")
		return
	}

	n, err := w.notificationRepo.FindByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("notification_id", payload.NotificationID).Msg("notify_worker: notification not found")
		return
	}
	if n.Status == model.NotificationStatusSent {
		return
	}

	sendErr := withRetry(ctx, 3, func(attempt int) error {
		return w.cb.Execute(func() error {
			_, err := w.waClient.Send(ctx, n.Phone, n.Body)
			if err != nil {
				log.Warn().
					Err(err).
					Int("attempt", attempt+1).
					Str("notification_id", n.ID.String()).
					Msg("notify_worker: send attempt failed")
			}
			return err
		})
	})

	now := time.Now()
	if sendErr != nil {
		// Hand over to the retry cron
		n.Status = model.NotificationStatusError
		n.RetryCount++
		msg := sendErr.Error()
		n.LastError = &msg
		next := now.Add(computeRetryBackoff(n.RetryCount))
		n.NextRetryAt = &next
		if err := w.notificationRepo.Update(ctx, n); err != nil {
			log.Error().Err(err).Str("notification_id", n.ID.String()).Msg("notify_worker: failed to record error")
		}
		return
	}

	n.Status = model.NotificationStatusSent
	n.SentAt = &now
	n.LastError = nil
	n.NextRetryAt = nil
	if err := w.notificationRepo.Update(ctx, n); err != nil {
		log.Error().Err(err).Str("notification_id", n.ID.String()).Msg("notify_worker: failed to record success")
		return
	}
	log.Info().Str("notification_id", n.ID.String()).Str("phone", n.Phone).Msg("notify_worker: message sent")
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
