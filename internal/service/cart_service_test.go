package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flamexyy/bloemige-storefront/internal/entity"
	"github.com/flamexyy/bloemige-storefront/internal/messaging"
	"github.com/flamexyy/bloemige-storefront/internal/repository"
)

func setupCartService(t *testing.T) (*CartService, *mockCartRepository, *mockPublisher) {
	repo := newMockCartRepository()
	publisher := &mockPublisher{}
	log, _ := logrustest.NewNullLogger()
	return NewCartService(repo, publisher, log), repo, publisher
}

func testItem(variantID, price string, quantity, available int) entity.CartItem {
	return entity.CartItem{
		VariantID:         variantID,
		Title:             "Item " + variantID,
		Price:             entity.MustMoney(price, "EUR"),
		Quantity:          quantity,
		QuantityAvailable: available,
	}
}

func TestCartServiceAdd(t *testing.T) {
	svc, _, publisher := setupCartService(t)
	ctx := context.Background()

	view := svc.Add(ctx, "cart-1", testItem("a", "10.00", 2, 5))

	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.ItemCount)
	assert.Equal(t, "20.00", view.Total.String())
	assert.True(t, view.Open)

	// Every mutation publishes the full serialized cart.
	events := publisher.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, "cart-1", events[0].CartID)
	require.Len(t, events[0].Items, 1)
	assert.Equal(t, 2, events[0].Items[0].Quantity)
}

func TestCartServiceRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("Restores persisted items on first touch", func(t *testing.T) {
		svc, repo, _ := setupCartService(t)
		repo.records["cart-1"] = []entity.CartItem{testItem("a", "10.00", 2, 5)}

		view := svc.Snapshot(ctx, "cart-1")
		require.Len(t, view.Items, 1)
		assert.Equal(t, "a", view.Items[0].VariantID)
		assert.False(t, view.Open)
	})

	t.Run("Corrupt record degrades to an empty cart", func(t *testing.T) {
		svc, repo, _ := setupCartService(t)
		repo.loadErr = repository.ErrCorruptRecord

		view := svc.Snapshot(ctx, "cart-1")
		assert.Empty(t, view.Items)
	})

	t.Run("Storage outage degrades to an empty cart", func(t *testing.T) {
		svc, repo, _ := setupCartService(t)
		repo.loadErr = assert.AnError

		view := svc.Snapshot(ctx, "cart-1")
		assert.Empty(t, view.Items)
	})
}

func TestCartServiceClearPublishesEmptyState(t *testing.T) {
	svc, _, publisher := setupCartService(t)
	ctx := context.Background()

	svc.Add(ctx, "cart-1", testItem("a", "10.00", 1, 5))
	svc.Clear(ctx, "cart-1")

	events := publisher.events(t)
	require.Len(t, events, 2)
	assert.Empty(t, events[1].Items)
}

func TestCartServiceRemoveLastClosesCart(t *testing.T) {
	svc, _, _ := setupCartService(t)
	ctx := context.Background()

	svc.Add(ctx, "cart-1", testItem("a", "10.00", 1, 5))
	svc.Add(ctx, "cart-1", testItem("b", "5.00", 1, 5))

	view := svc.Remove(ctx, "cart-1", "a")
	assert.True(t, view.Open)

	view = svc.Remove(ctx, "cart-1", "b")
	assert.False(t, view.Open)
	assert.Empty(t, view.Items)
}

func TestCartServiceSlowRestoreDoesNotBlockOtherCarts(t *testing.T) {
	svc, repo, _ := setupCartService(t)
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	repo.loadHook = func(cartID string) {
		if cartID == "stalled" {
			close(started)
			<-release
		}
	}

	done := make(chan struct{})
	go func() {
		svc.Snapshot(ctx, "stalled")
		close(done)
	}()
	<-started

	// While "stalled" waits on storage, another session's mutation completes.
	finished := make(chan CartView, 1)
	go func() {
		finished <- svc.Add(ctx, "other", testItem("a", "10.00", 1, 5))
	}()
	select {
	case view := <-finished:
		require.Len(t, view.Items, 1)
	case <-time.After(time.Second):
		t.Fatal("mutation on an unrelated cart blocked behind another session's restore")
	}

	close(release)
	<-done
}

func TestCartServiceQuantityOf(t *testing.T) {
	svc, _, _ := setupCartService(t)
	ctx := context.Background()

	svc.Add(ctx, "cart-1", testItem("a", "10.00", 3, 5))
	assert.Equal(t, 3, svc.QuantityOf(ctx, "cart-1", "a"))
	assert.Equal(t, 0, svc.QuantityOf(ctx, "cart-1", "b"))
}

func TestCartPersisterHandle(t *testing.T) {
	ctx := context.Background()
	repo := newMockCartRepository()
	log, _ := logrustest.NewNullLogger()
	persister := NewCartPersister(nil, repo, log)

	t.Run("Non-empty cart is saved", func(t *testing.T) {
		msg, err := messaging.NewCartUpdatedMessage(messaging.CartUpdated{
			CartID: "cart-1",
			Items:  []entity.CartItem{testItem("a", "10.00", 1, 5)},
		})
		require.NoError(t, err)

		persister.handle(ctx, msg)
		require.Len(t, repo.records["cart-1"], 1)
	})

	t.Run("Empty cart deletes the record", func(t *testing.T) {
		msg, err := messaging.NewCartUpdatedMessage(messaging.CartUpdated{CartID: "cart-1"})
		require.NoError(t, err)

		persister.handle(ctx, msg)
		_, ok := repo.records["cart-1"]
		assert.False(t, ok)
	})
}

func TestCartWriteBehindRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := newMockCartRepository()
	log, _ := logrustest.NewNullLogger()
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, watermill.NopLogger{})
	defer pubSub.Close()

	persister := NewCartPersister(pubSub, repo, log)
	go persister.Run(ctx)
	time.Sleep(50 * time.Millisecond) // let the subscription register

	svc := NewCartService(repo, pubSub, log)
	svc.Add(ctx, "cart-1", testItem("a", "10.00", 2, 5))

	require.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return len(repo.records["cart-1"]) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// A second service instance restores the exact item list.
	restored := NewCartService(repo, pubSub, log)
	view := restored.Snapshot(ctx, "cart-1")
	require.Len(t, view.Items, 1)
	assert.Equal(t, "a", view.Items[0].VariantID)
	assert.Equal(t, 2, view.Items[0].Quantity)

	svc.Clear(ctx, "cart-1")
	require.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		_, ok := repo.records["cart-1"]
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

type mockCartRepository struct {
	mu       sync.Mutex
	records  map[string][]entity.CartItem
	loadErr  error
	loadHook func(cartID string)
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{records: make(map[string][]entity.CartItem)}
}

func (m *mockCartRepository) Load(_ context.Context, cartID string) ([]entity.CartItem, error) {
	if m.loadHook != nil {
		m.loadHook(cartID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	items, ok := m.records[cartID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return items, nil
}

func (m *mockCartRepository) Save(_ context.Context, cartID string, items []entity.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[cartID] = items
	return nil
}

func (m *mockCartRepository) Delete(_ context.Context, cartID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, cartID)
	return nil
}

type mockPublisher struct {
	mu       sync.Mutex
	messages []*message.Message
}

func (m *mockPublisher) Publish(topic string, msgs ...*message.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) events(t *testing.T) []messaging.CartUpdated {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]messaging.CartUpdated, 0, len(m.messages))
	for _, msg := range m.messages {
		event, err := messaging.DecodeCartUpdated(msg)
		require.NoError(t, err)
		out = append(out, event)
	}
	return out
}
