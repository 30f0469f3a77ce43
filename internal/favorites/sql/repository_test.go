package favoritessql_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipsidefm/flipside/internal/dbtest/postgrestest"
	"github.com/flipsidefm/flipside/internal/favorites"
	favoritessql "github.com/flipsidefm/flipside/internal/favorites/sql"
	"github.com/flipsidefm/flipside/internal/serviceerr"
)

var dbPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	pool, _, terminate := postgrestest.Start(ctx)
	defer terminate(ctx)

	dbPool = pool

	code := m.Run()
	os.Exit(code)
}

func TestRepository_List(t *testing.T) {
	tests := []struct {
		name          string
		userID        string
		wantFavorites []favorites.Favorite
		assertErr     assert.ErrorAssertionFunc
	}{
		{
			name:   "Pre-inserted crate",
			userID: "user-one",
			wantFavorites: []favorites.Favorite{
				{
					UserID:   "user-one",
					AlbumID:  "album-one",
					Name:     "Album One",
					Artist:   "Artist One",
					CoverURL: "https://img.example/one",
					AddedAt:  postgrestest.AddedTime,
				},
				{
					UserID:   "user-one",
					AlbumID:  "album-two",
					Name:     "Album Two",
					Artist:   "Artist Two",
					CoverURL: "https://img.example/two",
					AddedAt:  postgrestest.AddedTime,
				},
			},
			assertErr: assert.NoError,
		},
		{
			name:      "Unknown user has an empty crate",
			userID:    "user-unknown",
			assertErr: assert.NoError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := favoritessql.NewRepository(dbPool)

			got, err := r.List(t.Context(), tt.userID)
			if !tt.assertErr(t, err, "Repository.List() error") || err != nil {
				return
			}

			require.Len(t, got, len(tt.wantFavorites))
			for i := range got {
				assert.Equal(t, tt.wantFavorites[i].AlbumID, got[i].AlbumID)
				assert.Equal(t, tt.wantFavorites[i].Name, got[i].Name)
				assert.Equal(t, tt.wantFavorites[i].Artist, got[i].Artist)
				assert.Equal(t, tt.wantFavorites[i].CoverURL, got[i].CoverURL)
				assert.WithinDuration(t, tt.wantFavorites[i].AddedAt, got[i].AddedAt, time.Second)
			}
		})
	}
}

func TestRepository_Add(t *testing.T) {
	r := favoritessql.NewRepository(dbPool)

	now := time.Now().Truncate(time.Microsecond)

	f := favorites.Favorite{
		UserID:   "user-add",
		AlbumID:  "album-add",
		Name:     "Added Album",
		Artist:   "Added Artist",
		CoverURL: "https://img.example/add",
		AddedAt:  now,
	}

	require.NoError(t, r.Add(t.Context(), f))

	crate, err := r.List(t.Context(), "user-add")
	require.NoError(t, err)
	require.Len(t, crate, 1)
	assert.Equal(t, f.AlbumID, crate[0].AlbumID)
	assert.Equal(t, f.Name, crate[0].Name)

	t.Run("Duplicate insert is a conflict", func(t *testing.T) {
		err := r.Add(t.Context(), f)
		assert.ErrorIs(t, err, serviceerr.ErrConflict)
	})

	t.Run("Same album for another user is fine", func(t *testing.T) {
		other := f
		other.UserID = "user-add-other"
		assert.NoError(t, r.Add(t.Context(), other))
	})
}

func TestRepository_Remove(t *testing.T) {
	r := favoritessql.NewRepository(dbPool)

	f := favorites.Favorite{
		UserID:  "user-remove",
		AlbumID: "album-remove",
		Name:    "Removed Album",
		Artist:  "Removed Artist",
		AddedAt: time.Now(),
	}
	require.NoError(t, r.Add(t.Context(), f))

	require.NoError(t, r.Remove(t.Context(), "user-remove", "album-remove"))

	crate, err := r.List(t.Context(), "user-remove")
	require.NoError(t, err)
	assert.Empty(t, crate)

	t.Run("Removing a missing album", func(t *testing.T) {
		err := r.Remove(t.Context(), "user-remove", "album-remove")
		assert.ErrorIs(t, err, serviceerr.ErrNotFound)
	})
}
