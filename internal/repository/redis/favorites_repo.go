package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/flamexyy/bloemige-storefront/internal/repository"
)

type favoritesRepository struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewFavoritesRepository creates a FavoritesRepository backed by Redis,
// storing handles under "<prefix>:favorites:<id>" with the same expiry
// window as the cart record.
func NewFavoritesRepository(rdb *redis.Client, prefix string, ttl time.Duration) repository.FavoritesRepository {
	return &favoritesRepository{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *favoritesRepository) key(id string) string {
	return fmt.Sprintf("%s:favorites:%s", r.prefix, id)
}

func (r *favoritesRepository) Load(ctx context.Context, id string) ([]string, error) {
	payload, err := r.rdb.Get(ctx, r.key(id)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load favorites record")
	}

	var handles []string
	if err := json.Unmarshal(payload, &handles); err != nil {
		r.rdb.Del(ctx, r.key(id))
		return nil, errors.Wrap(repository.ErrCorruptRecord, err.Error())
	}
	return handles, nil
}

func (r *favoritesRepository) Save(ctx context.Context, id string, handles []string) error {
	payload, err := json.Marshal(handles)
	if err != nil {
		return errors.Wrap(err, "failed to marshal favorites record")
	}
	if err := r.rdb.Set(ctx, r.key(id), payload, r.ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to save favorites record")
	}
	return nil
}

func (r *favoritesRepository) Delete(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, r.key(id)).Err(); err != nil {
		return errors.Wrap(err, "failed to delete favorites record")
	}
	return nil
}
