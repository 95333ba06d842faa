package messaging

import (
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pkg/errors"

	"github.com/flamexyy/bloemige-storefront/internal/entity"
)

// TopicCartUpdated carries the serialized cart after every mutation; the
// persister applies it to durable storage (write-behind).
const TopicCartUpdated = "cart.updated"

// CartUpdated is the write-behind payload. An empty Items list means the
// persisted record should be deleted.
type CartUpdated struct {
	CartID    string            `json:"cart_id"`
	Items     []entity.CartItem `json:"items"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewCartUpdatedMessage marshals the event into a Watermill message keyed by
// cart id.
func NewCartUpdatedMessage(event CartUpdated) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal CartUpdated")
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("cart_id", event.CartID)
	return msg, nil
}

// DecodeCartUpdated unmarshals a CartUpdated event from a message payload.
func DecodeCartUpdated(msg *message.Message) (CartUpdated, error) {
	var event CartUpdated
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return CartUpdated{}, errors.Wrap(err, "failed to unmarshal CartUpdated")
	}
	return event, nil
}
