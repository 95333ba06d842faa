package service

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/sirupsen/logrus"

	"github.com/flamexyy/bloemige-storefront/internal/messaging"
	"github.com/flamexyy/bloemige-storefront/internal/repository"
)

// CartPersister consumes cart updates off the bus and applies them to
// durable storage: a non-empty cart is saved under its expiry window, an
// empty one has its record deleted. Messages are handled in order on a
// single subscription, so the last mutation always wins.
type CartPersister struct {
	subscriber message.Subscriber
	repo       repository.CartRecordRepository
	log        *logrus.Logger
}

func NewCartPersister(subscriber message.Subscriber, repo repository.CartRecordRepository, log *logrus.Logger) *CartPersister {
	return &CartPersister{
		subscriber: subscriber,
		repo:       repo,
		log:        log,
	}
}

// Run consumes until the context is cancelled.
func (p *CartPersister) Run(ctx context.Context) error {
	msgs, err := p.subscriber.Subscribe(ctx, messaging.TopicCartUpdated)
	if err != nil {
		return err
	}

	for msg := range msgs {
		p.handle(ctx, msg)
		msg.Ack()
	}
	return nil
}

func (p *CartPersister) handle(ctx context.Context, msg *message.Message) {
	event, err := messaging.DecodeCartUpdated(msg)
	if err != nil {
		p.log.WithError(err).Error("Failed to decode cart update")
		return
	}

	logger := p.log.WithField("cart_id", event.CartID)
	if len(event.Items) == 0 {
		if err := p.repo.Delete(ctx, event.CartID); err != nil {
			logger.WithError(err).Error("Failed to delete cart record")
		}
		return
	}
	if err := p.repo.Save(ctx, event.CartID, event.Items); err != nil {
		logger.WithError(err).Error("Failed to save cart record")
	}
}
