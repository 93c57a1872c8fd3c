package services

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/database"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/models"
	"github.com/mertDonmezler/woocommerce-loyalty-referral-gamification-sub002/internal/utils"
)

// Event is what notification/audit/badge collaborators receive.
type Event struct {
	ID      string                 `json:"id"`
	Name    string                 `json:"name"`
	UserID  uint                   `json:"user_id"`
	Payload map[string]interface{} `json:"payload"`
	At      time.Time              `json:"at"`
}

// EventSubscriber receives every published event, in registration order.
// Subscribers must not block; slow consumers should hand off to their own
// queue.
type EventSubscriber func(Event)

var eventSubscribers []EventSubscriber

// SubscribeEvents registers a subscriber. Registration order is delivery
// order.
func SubscribeEvents(fn EventSubscriber) {
	eventSubscribers = append(eventSubscribers, fn)
}

// ResetEventSubscribers drops all subscribers. Test helper.
func ResetEventSubscribers() {
	eventSubscribers = nil
}

// PublishEvent persists an outbox record, logs the event and fans it out to
// subscribers. Outbox failures are logged and swallowed: an event must never
// fail the business operation that produced it.
func PublishEvent(name string, userID uint, payload map[string]interface{}) {
	evt := Event{
		ID:      uuid.New().String(),
		Name:    name,
		UserID:  userID,
		Payload: payload,
		At:      timeNow(),
	}

	if database.DB != nil {
		data, err := json.Marshal(payload)
		if err == nil {
			rec := models.EventRecord{
				ID:        evt.ID,
				CreatedAt: evt.At,
				Name:      name,
				UserID:    userID,
				Payload:   datatypes.JSON(data),
			}
			if err := database.DB.Create(&rec).Error; err != nil {
				zap.L().Warn("failed to persist event record",
					zap.String("event", name), zap.Error(err))
			}
		}
	}

	zap.L().Info("loyalty event",
		zap.String("event", name),
		zap.Uint("user_id", userID),
		zap.Any("payload", payload))

	for _, fn := range eventSubscribers {
		fn(evt)
	}
}

// RegisterWebhookSubscriber forwards every event to an external collaborator
// over HTTP. Delivery is fire-and-forget; the webhook endpoint is expected to
// be idempotent on the event ID.
func RegisterWebhookSubscriber(url string) {
	client := utils.NewHTTPClient(10 * time.Second)
	SubscribeEvents(func(evt Event) {
		body, err := json.Marshal(evt)
		if err != nil {
			return
		}
		go func() {
			resp, err := client.Post(url, "application/json", bytes.NewReader(body))
			if err != nil {
				zap.L().Warn("event webhook delivery failed",
					zap.String("event", evt.Name), zap.Error(err))
				return
			}
			resp.Body.Close()
		}()
	})
}
