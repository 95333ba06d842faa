package service

import (
	"context"
	"testing"

	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flamexyy/bloemige-storefront/internal/repository"
)

func TestFavoritesToggle(t *testing.T) {
	ctx := context.Background()
	repo := newMockFavoritesRepository()
	log, _ := logrustest.NewNullLogger()
	svc := NewFavoritesService(repo, log)

	assert.True(t, svc.Toggle(ctx, "s1", "rose-bouquet"))
	assert.True(t, svc.Contains(ctx, "s1", "rose-bouquet"))
	assert.Equal(t, []string{"rose-bouquet"}, repo.records["s1"])

	assert.False(t, svc.Toggle(ctx, "s1", "rose-bouquet"))
	assert.False(t, svc.Contains(ctx, "s1", "rose-bouquet"))
	// Emptying the list erases the persisted record.
	_, ok := repo.records["s1"]
	assert.False(t, ok)
}

func TestFavoritesRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("Restores persisted handles", func(t *testing.T) {
		repo := newMockFavoritesRepository()
		repo.records["s1"] = []string{"a", "b"}
		log, _ := logrustest.NewNullLogger()
		svc := NewFavoritesService(repo, log)

		assert.Equal(t, []string{"a", "b"}, svc.List(ctx, "s1"))
	})

	t.Run("Corrupt record starts empty", func(t *testing.T) {
		repo := newMockFavoritesRepository()
		repo.loadErr = repository.ErrCorruptRecord
		log, _ := logrustest.NewNullLogger()
		svc := NewFavoritesService(repo, log)

		require.Empty(t, svc.List(ctx, "s1"))
	})
}

type mockFavoritesRepository struct {
	records map[string][]string
	loadErr error
}

func newMockFavoritesRepository() *mockFavoritesRepository {
	return &mockFavoritesRepository{records: make(map[string][]string)}
}

func (m *mockFavoritesRepository) Load(_ context.Context, id string) ([]string, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	handles, ok := m.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return handles, nil
}

func (m *mockFavoritesRepository) Save(_ context.Context, id string, handles []string) error {
	m.records[id] = handles
	return nil
}

func (m *mockFavoritesRepository) Delete(_ context.Context, id string) error {
	delete(m.records, id)
	return nil
}
