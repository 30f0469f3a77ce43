package favoritessql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flipsidefm/flipside/internal/favorites"
	"github.com/flipsidefm/flipside/internal/serviceerr"
)

var _ = favorites.Repository(&Repository{})

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) List(ctx context.Context, userID string) ([]favorites.Favorite, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id, album_id, name, artist, cover_url, added_at
			 FROM favorites
			 WHERE user_id = $1
			 ORDER BY added_at DESC, album_id;`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("executing sql query: %w", err)
	}
	defer rows.Close()

	var result []favorites.Favorite
	for rows.Next() {
		var f favorites.Favorite
		if err := rows.Scan(&f.UserID, &f.AlbumID, &f.Name, &f.Artist, &f.CoverURL, &f.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning rows: %w", err)
		}

		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	return result, nil
}

func (r *Repository) Add(ctx context.Context, favorite favorites.Favorite) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO favorites (user_id, album_id, name, artist, cover_url, added_at)
			 VALUES ($1, $2, $3, $4, $5, $6);`,
		favorite.UserID, favorite.AlbumID, favorite.Name, favorite.Artist, favorite.CoverURL, favorite.AddedAt,
	); err != nil {
		if err, ok := handlePgError(err); ok {
			return err
		}

		return fmt.Errorf("inserting into favorites: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (r *Repository) Remove(ctx context.Context, userID, albumID string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `DELETE FROM favorites WHERE user_id = $1 AND album_id = $2;`, userID, albumID)
	if err != nil {
		return fmt.Errorf("executing sql query: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return serviceerr.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing tx: %w", err)
	}

	return nil
}
