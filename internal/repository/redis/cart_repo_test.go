package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flamexyy/bloemige-storefront/internal/entity"
	"github.com/flamexyy/bloemige-storefront/internal/repository"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestCartRepositoryRoundTrip(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewCartRepository(client, "test", time.Hour)
	ctx := context.Background()

	items := []entity.CartItem{{
		VariantID: "v-1",
		Title:     "Rose Bouquet",
		Price:     entity.MustMoney("24.95", "EUR"),
		Quantity:  2,
	}}
	require.NoError(t, repo.Save(ctx, "cart-1", items))

	loaded, err := repo.Load(ctx, "cart-1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "v-1", loaded[0].VariantID)
	assert.Equal(t, "24.95", loaded[0].Price.String())

	// The record carries the expiry window.
	assert.Equal(t, time.Hour, mr.TTL("test:cart:cart-1"))
}

func TestCartRepositoryLoadMissing(t *testing.T) {
	_, client := setupRedis(t)
	repo := NewCartRepository(client, "test", time.Hour)

	_, err := repo.Load(context.Background(), "absent")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCartRepositoryCorruptRecordIsDeleted(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewCartRepository(client, "test", time.Hour)
	ctx := context.Background()

	require.NoError(t, mr.Set("test:cart:cart-1", "not-json"))

	_, err := repo.Load(ctx, "cart-1")
	assert.ErrorIs(t, err, repository.ErrCorruptRecord)
	// Self-heal: the corrupt key is gone, so the next load starts clean.
	assert.False(t, mr.Exists("test:cart:cart-1"))

	_, err = repo.Load(ctx, "cart-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCartRepositoryDelete(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewCartRepository(client, "test", time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "cart-1", []entity.CartItem{{VariantID: "v-1", Quantity: 1}}))
	require.NoError(t, repo.Delete(ctx, "cart-1"))
	assert.False(t, mr.Exists("test:cart:cart-1"))
}

func TestFavoritesRepositoryRoundTrip(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewFavoritesRepository(client, "test", time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "session-1", []string{"rose-bouquet", "tulip-mix"}))

	loaded, err := repo.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"rose-bouquet", "tulip-mix"}, loaded)
	assert.Equal(t, time.Hour, mr.TTL("test:favorites:session-1"))
}

func TestFavoritesRepositoryCorruptRecordIsDeleted(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewFavoritesRepository(client, "test", time.Hour)
	ctx := context.Background()

	require.NoError(t, mr.Set("test:favorites:session-1", "{broken"))

	_, err := repo.Load(ctx, "session-1")
	assert.ErrorIs(t, err, repository.ErrCorruptRecord)
	assert.False(t, mr.Exists("test:favorites:session-1"))
}

func TestFavoritesRepositoryLoadMissing(t *testing.T) {
	_, client := setupRedis(t)
	repo := NewFavoritesRepository(client, "test", time.Hour)

	_, err := repo.Load(context.Background(), "absent")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
