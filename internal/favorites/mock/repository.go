// Package favoritesmock is an in-memory favorites repository for tests and
// database-free development runs.
package favoritesmock

import (
	"context"
	"sort"
	"sync"

	"github.com/flipsidefm/flipside/internal/favorites"
	"github.com/flipsidefm/flipside/internal/serviceerr"
)

var _ = favorites.Repository(&Repository{})

type Repository struct {
	mu sync.Mutex

	// crates maps user ID to album ID to the stored favorite.
	crates map[string]map[string]favorites.Favorite

	listErr, addErr, removeErr error
}

type Option func(*Repository)

func WithListError(err error) Option {
	return func(r *Repository) { r.listErr = err }
}

func WithAddError(err error) Option {
	return func(r *Repository) { r.addErr = err }
}

func WithRemoveError(err error) Option {
	return func(r *Repository) { r.removeErr = err }
}

func NewRepository(opts ...Option) *Repository {
	r := &Repository{
		crates: make(map[string]map[string]favorites.Favorite),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Repository) List(_ context.Context, userID string) ([]favorites.Favorite, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var result []favorites.Favorite
	for _, f := range r.crates[userID] {
		result = append(result, f)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].AddedAt.Equal(result[j].AddedAt) {
			return result[i].AddedAt.After(result[j].AddedAt)
		}

		return result[i].AlbumID < result[j].AlbumID
	})

	return result, nil
}

func (r *Repository) Add(_ context.Context, favorite favorites.Favorite) error {
	if r.addErr != nil {
		return r.addErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	crate, ok := r.crates[favorite.UserID]
	if !ok {
		crate = make(map[string]favorites.Favorite)
		r.crates[favorite.UserID] = crate
	}

	if _, exists := crate[favorite.AlbumID]; exists {
		return serviceerr.ErrConflict
	}

	crate[favorite.AlbumID] = favorite

	return nil
}

func (r *Repository) Remove(_ context.Context, userID, albumID string) error {
	if r.removeErr != nil {
		return r.removeErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	crate, ok := r.crates[userID]
	if !ok {
		return serviceerr.ErrNotFound
	}
	if _, exists := crate[albumID]; !exists {
		return serviceerr.ErrNotFound
	}

	delete(crate, albumID)

	return nil
}
