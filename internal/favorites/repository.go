package favorites

import "context"

// Repository stores favorites per user. List returns the crate newest-first.
// Add returns serviceerr.ErrConflict when the album is already in the crate;
// Remove returns serviceerr.ErrNotFound when it never was.
type Repository interface {
	List(ctx context.Context, userID string) ([]Favorite, error)
	Add(ctx context.Context, favorite Favorite) error
	Remove(ctx context.Context, userID, albumID string) error
}
