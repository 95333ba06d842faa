package service

import (
	"context"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/flamexyy/bloemige-storefront/internal/entity"
	"github.com/flamexyy/bloemige-storefront/internal/messaging"
	"github.com/flamexyy/bloemige-storefront/internal/repository"
)

// CartView is the read-only snapshot handed to callers. Total and ItemCount
// are recomputed from the items on every snapshot, never cached.
type CartView struct {
	Items     []entity.CartItem `json:"items"`
	Total     entity.Money      `json:"total"`
	ItemCount int               `json:"itemCount"`
	Open      bool              `json:"open"`
}

// cartSession pairs one session's cart with its own lock. The restore from
// persistence happens under this lock on first touch, so a slow storage
// call stalls only the session being restored.
type cartSession struct {
	mu     sync.Mutex
	loaded bool
	cart   *entity.Cart
}

// CartService owns the in-memory carts, one per client session. Mutations
// on one cart are serialized by that cart's lock; the service-wide lock
// guards only the session map. After every mutation the serialized cart is
// published on the in-process bus while the cart's lock is held, so
// persisted states apply in mutation order; the persister consumes them
// without blocking the caller on storage.
type CartService struct {
	mu    sync.Mutex
	carts map[string]*cartSession

	repo      repository.CartRecordRepository
	publisher message.Publisher
	log       *logrus.Logger
}

func NewCartService(repo repository.CartRecordRepository, publisher message.Publisher, log *logrus.Logger) *CartService {
	return &CartService{
		carts:     make(map[string]*cartSession),
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// session returns the cart session for the id, creating an empty unloaded
// one when absent. Only the map access runs under the service lock.
func (s *CartService) session(cartID string) *cartSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, ok := s.carts[cartID]
	if !ok {
		cs = &cartSession{}
		s.carts[cartID] = cs
	}
	return cs
}

// restore loads the session's cart from persistence on first touch, under
// the session's own lock. Restore never fails: a missing record starts
// empty, a corrupt one has already been discarded by the repository, and a
// storage outage degrades to an empty cart with a logged error.
func (s *CartService) restore(ctx context.Context, cartID string, cs *cartSession) {
	if cs.loaded {
		return
	}

	items, err := s.repo.Load(ctx, cartID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
	case errors.Is(err, repository.ErrCorruptRecord):
		s.log.WithField("cart_id", cartID).Warn("Discarded corrupt cart record, starting empty")
	default:
		s.log.WithError(err).WithField("cart_id", cartID).Error("Failed to restore cart, starting empty")
	}

	cs.cart = entity.RestoreCart(items)
	cs.loaded = true
}

// Add merges the item into the cart and opens it.
func (s *CartService) Add(ctx context.Context, cartID string, item entity.CartItem) CartView {
	cs := s.session(cartID)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	s.restore(ctx, cartID, cs)
	cs.cart.Add(item)
	s.publishState(cartID, cs.cart)
	return snapshot(cs.cart)
}

// UpdateQuantity sets an exact quantity; zero or below removes the item.
func (s *CartService) UpdateQuantity(ctx context.Context, cartID, variantID string, quantity int) CartView {
	cs := s.session(cartID)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	s.restore(ctx, cartID, cs)
	cs.cart.UpdateQuantity(variantID, quantity)
	s.publishState(cartID, cs.cart)
	return snapshot(cs.cart)
}

// Remove deletes the item; removing the last one closes the cart.
func (s *CartService) Remove(ctx context.Context, cartID, variantID string) CartView {
	cs := s.session(cartID)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	s.restore(ctx, cartID, cs)
	cs.cart.Remove(variantID)
	s.publishState(cartID, cs.cart)
	return snapshot(cs.cart)
}

// Clear empties the cart and erases its persisted record.
func (s *CartService) Clear(ctx context.Context, cartID string) CartView {
	cs := s.session(cartID)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	s.restore(ctx, cartID, cs)
	cs.cart.Clear()
	s.publishState(cartID, cs.cart)
	return snapshot(cs.cart)
}

// Snapshot returns the current cart state without mutating it.
func (s *CartService) Snapshot(ctx context.Context, cartID string) CartView {
	cs := s.session(cartID)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	s.restore(ctx, cartID, cs)
	return snapshot(cs.cart)
}

// Items returns a copy of the cart's item list.
func (s *CartService) Items(ctx context.Context, cartID string) []entity.CartItem {
	cs := s.session(cartID)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	s.restore(ctx, cartID, cs)
	return cs.cart.Items()
}

// QuantityOf sums the in-cart quantity for a variant.
func (s *CartService) QuantityOf(ctx context.Context, cartID, variantID string) int {
	cs := s.session(cartID)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	s.restore(ctx, cartID, cs)
	return cs.cart.QuantityOf(variantID)
}

// CloseCart clears the transient open flag.
func (s *CartService) CloseCart(ctx context.Context, cartID string) {
	cs := s.session(cartID)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	s.restore(ctx, cartID, cs)
	cs.cart.Close()
}

// publishState is the fire-and-forget half of the write-behind policy. It
// runs under the cart's lock so states reach the persister in mutation
// order. A publish failure loses at most the latest mutation; it is logged,
// never returned. Should the bus buffer ever fill behind a stalled
// persister, the wait is confined to this one cart.
func (s *CartService) publishState(cartID string, cart *entity.Cart) {
	msg, err := messaging.NewCartUpdatedMessage(messaging.CartUpdated{
		CartID:    cartID,
		Items:     cart.Items(),
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.WithError(err).WithField("cart_id", cartID).Error("Failed to build cart update message")
		return
	}
	if err := s.publisher.Publish(messaging.TopicCartUpdated, msg); err != nil {
		s.log.WithError(err).WithField("cart_id", cartID).Error("Failed to publish cart update")
	}
}

func snapshot(cart *entity.Cart) CartView {
	return CartView{
		Items:     cart.Items(),
		Total:     cart.Total(),
		ItemCount: cart.ItemCount(),
		Open:      cart.IsOpen(),
	}
}
