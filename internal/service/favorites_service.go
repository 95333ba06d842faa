package service

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/flamexyy/bloemige-storefront/internal/repository"
)

// FavoritesService owns the per-session favorites lists. It shares the
// cart's persistence medium and self-heal policy: a corrupt record is
// discarded and the list starts empty. Persistence errors after a toggle
// are logged, never returned; losing the latest toggle is accepted.
type FavoritesService struct {
	mu     sync.Mutex
	lists  map[string][]string
	loaded map[string]bool

	repo repository.FavoritesRepository
	log  *logrus.Logger
}

func NewFavoritesService(repo repository.FavoritesRepository, log *logrus.Logger) *FavoritesService {
	return &FavoritesService{
		lists:  make(map[string][]string),
		loaded: make(map[string]bool),
		repo:   repo,
		log:    log,
	}
}

func (s *FavoritesService) list(ctx context.Context, id string) []string {
	if s.loaded[id] {
		return s.lists[id]
	}

	handles, err := s.repo.Load(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
	case errors.Is(err, repository.ErrCorruptRecord):
		s.log.WithField("id", id).Warn("Discarded corrupt favorites record, starting empty")
	default:
		s.log.WithError(err).WithField("id", id).Error("Failed to restore favorites, starting empty")
	}

	s.lists[id] = handles
	s.loaded[id] = true
	return handles
}

// Toggle flips a handle's favorite state and reports whether it is now a
// favorite.
func (s *FavoritesService) Toggle(ctx context.Context, id, handle string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	handles := s.list(ctx, id)
	for idx, h := range handles {
		if h == handle {
			s.lists[id] = append(handles[:idx], handles[idx+1:]...)
			s.persist(ctx, id)
			return false
		}
	}
	s.lists[id] = append(handles, handle)
	s.persist(ctx, id)
	return true
}

// Contains reports whether the handle is favorited.
func (s *FavoritesService) Contains(ctx context.Context, id, handle string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range s.list(ctx, id) {
		if h == handle {
			return true
		}
	}
	return false
}

// List returns a copy of the favorited handles.
func (s *FavoritesService) List(ctx context.Context, id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	handles := s.list(ctx, id)
	out := make([]string, len(handles))
	copy(out, handles)
	return out
}

func (s *FavoritesService) persist(ctx context.Context, id string) {
	handles := s.lists[id]
	var err error
	if len(handles) == 0 {
		err = s.repo.Delete(ctx, id)
	} else {
		err = s.repo.Save(ctx, id, handles)
	}
	if err != nil {
		s.log.WithError(err).WithField("id", id).Error("Failed to persist favorites")
	}
}
