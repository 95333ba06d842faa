package repository

import (
	"context"
	"errors"

	"github.com/flamexyy/bloemige-storefront/internal/entity"
)

var (
	// ErrNotFound means no record exists under the key.
	ErrNotFound = errors.New("record not found")
	// ErrCorruptRecord means a stored record failed to deserialize. The
	// implementation has already deleted it; callers start from empty state.
	ErrCorruptRecord = errors.New("corrupt record")
)

// CartRecordRepository persists the serialized cart item list under a
// per-cart key with a fixed expiry window.
type CartRecordRepository interface {
	Load(ctx context.Context, cartID string) ([]entity.CartItem, error)
	Save(ctx context.Context, cartID string, items []entity.CartItem) error
	Delete(ctx context.Context, cartID string) error
}

// FavoritesRepository persists the favorited product handles, same medium
// and expiry as the cart record.
type FavoritesRepository interface {
	Load(ctx context.Context, id string) ([]string, error)
	Save(ctx context.Context, id string, handles []string) error
	Delete(ctx context.Context, id string) error
}
