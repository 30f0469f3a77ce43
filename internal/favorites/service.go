package favorites

import (
	"context"
	"errors"
	"fmt"

	"github.com/flipsidefm/flipside/internal/serviceerr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID string) ([]Favorite, error) {
	favorites, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}

	return favorites, nil
}

// Add puts an album into the user's crate. Adding an album that is already
// there is reported as serviceerr.ErrConflict so the HTTP layer can answer
// with the right status.
func (s *Service) Add(ctx context.Context, favorite Favorite) error {
	if favorite.AlbumID == "" {
		return &serviceerr.Error{Err: serviceerr.CodeInvalidRequest, Description: "albumId must not be empty"}
	}

	if err := s.repo.Add(ctx, favorite); err != nil {
		if errors.Is(err, serviceerr.ErrConflict) {
			return serviceerr.ErrConflict
		}

		return fmt.Errorf("adding favorite: %w", err)
	}

	return nil
}

func (s *Service) Remove(ctx context.Context, userID, albumID string) error {
	if err := s.repo.Remove(ctx, userID, albumID); err != nil {
		if errors.Is(err, serviceerr.ErrNotFound) {
			return serviceerr.ErrNotFound
		}

		return fmt.Errorf("removing favorite: %w", err)
	}

	return nil
}
