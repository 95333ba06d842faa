package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/flamexyy/bloemige-storefront/internal/entity"
	"github.com/flamexyy/bloemige-storefront/internal/repository"
)

type cartRepository struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCartRepository creates a CartRecordRepository backed by Redis. Records
// live under "<prefix>:cart:<cartID>" as a JSON array of cart items with the
// given expiry window.
func NewCartRepository(rdb *redis.Client, prefix string, ttl time.Duration) repository.CartRecordRepository {
	return &cartRepository{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *cartRepository) key(cartID string) string {
	return fmt.Sprintf("%s:cart:%s", r.prefix, cartID)
}

func (r *cartRepository) Load(ctx context.Context, cartID string) ([]entity.CartItem, error) {
	payload, err := r.rdb.Get(ctx, r.key(cartID)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load cart record")
	}

	var items []entity.CartItem
	if err := json.Unmarshal(payload, &items); err != nil {
		// Self-heal: discard the corrupt record so the next load starts clean.
		r.rdb.Del(ctx, r.key(cartID))
		return nil, errors.Wrap(repository.ErrCorruptRecord, err.Error())
	}
	return items, nil
}

func (r *cartRepository) Save(ctx context.Context, cartID string, items []entity.CartItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "failed to marshal cart record")
	}
	if err := r.rdb.Set(ctx, r.key(cartID), payload, r.ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to save cart record")
	}
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, cartID string) error {
	if err := r.rdb.Del(ctx, r.key(cartID)).Err(); err != nil {
		return errors.Wrap(err, "failed to delete cart record")
	}
	return nil
}
