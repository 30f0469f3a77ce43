package sessionvalkey_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go"

	"github.com/flipsidefm/flipside/internal/dbtest/valkeytest"
	"github.com/flipsidefm/flipside/internal/serviceerr"
	"github.com/flipsidefm/flipside/internal/session"
	sessionvalkey "github.com/flipsidefm/flipside/internal/session/valkey"
)

var client valkey.Client
var testTime time.Time

func init() {
	now := time.Now()
	testTime = time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location()).Add(30 * 24 * time.Hour)
}

func init() {
	// There's a little inconsistency with the timezone when RFC3339 is parsed from a JSON object.
	// So we do a workaround here
	t, _ := testTime.MarshalJSON()
	_ = testTime.UnmarshalJSON(t)
}

func TestMain(m *testing.M) {
	ctx := context.Background()

	valkeyClient, _, terminate := valkeytest.Start(ctx)
	client = valkeyClient

	code := m.Run()
	terminate(ctx)

	os.Exit(code)
}

func prepareSession(t *testing.T, prefix string, s session.Session) {
	t.Helper()

	key := fmt.Sprintf("%s:session:%s", prefix, s.ID)
	err := client.Do(t.Context(), client.B().Set().Key(key).Value(valkey.JSON(s)).Build()).Error()
	require.NoError(t, err, "inserting session")
}

func TestRepository_ConsumeVerifier(t *testing.T) {
	const prefix = "flipside-consume-verifier-test"

	r := sessionvalkey.NewRepository(client, prefix)

	t.Run("Consume is single-shot", func(t *testing.T) {
		err := r.StoreVerifier(t.Context(), "state-one", "verifier-one", time.Minute)
		require.NoError(t, err)

		verifier, err := r.ConsumeVerifier(t.Context(), "state-one")
		require.NoError(t, err)
		assert.Equal(t, "verifier-one", verifier)

		_, err = r.ConsumeVerifier(t.Context(), "state-one")
		assert.ErrorIs(t, err, serviceerr.ErrNotFound)
	})

	t.Run("Unknown state", func(t *testing.T) {
		_, err := r.ConsumeVerifier(t.Context(), "never-stored")
		assert.ErrorIs(t, err, serviceerr.ErrNotFound)
	})

	t.Run("Expired verifier", func(t *testing.T) {
		err := r.StoreVerifier(t.Context(), "state-expired", "verifier-expired", time.Second)
		require.NoError(t, err)

		time.Sleep(1100 * time.Millisecond)

		_, err = r.ConsumeVerifier(t.Context(), "state-expired")
		assert.ErrorIs(t, err, serviceerr.ErrNotFound)
	})
}

func TestRepository_LoadSession(t *testing.T) {
	const prefix = "flipside-load-session-test"

	prepareSession(t, prefix, session.Session{
		ID:             "sessionid-one",
		UserID:         "user-one",
		CSRFToken:      "csrf-one",
		AccessToken:    "access-token-one",
		RefreshToken:   "refresh-token-one",
		TokenExpiresAt: testTime,
		Expiry:         testTime,
	})

	tests := []struct {
		name        string
		sessionID   string
		wantSession session.Session
		assertErr   assert.ErrorAssertionFunc
	}{
		{
			name:      "Select existing session",
			sessionID: "sessionid-one",
			wantSession: session.Session{
				ID:             "sessionid-one",
				UserID:         "user-one",
				CSRFToken:      "csrf-one",
				AccessToken:    "access-token-one",
				RefreshToken:   "refresh-token-one",
				TokenExpiresAt: testTime,
				Expiry:         testTime,
			},
			assertErr: assert.NoError,
		},
		{
			name:      "Error does not exist",
			sessionID: "does-not-exist",
			assertErr: assert.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sessionvalkey.NewRepository(client, prefix)

			gotSession, err := r.LoadSession(t.Context(), tt.sessionID)
			if !tt.assertErr(t, err, fmt.Sprintf("Repository.LoadSession() error %v", err)) || err != nil {
				return
			}

			assert.Equal(t, tt.wantSession, gotSession, "Repository.LoadSession()")
		})
	}
}

func TestRepository_StoreSession(t *testing.T) {
	const prefix = "flipside-store-session-test"

	upsertSession := session.Session{
		ID:             "sessionid-to-upsert",
		UserID:         "user-upsert",
		CSRFToken:      "csrf-upsert",
		AccessToken:    "access-token-upsert",
		RefreshToken:   "refresh-token-upsert",
		TokenExpiresAt: testTime,
		Expiry:         testTime,
	}

	prepareSession(t, prefix, upsertSession)

	tests := []struct {
		name      string
		session   session.Session
		assertErr assert.ErrorAssertionFunc
	}{
		{
			name: "Success",
			session: session.Session{
				ID:             "sessionid-store-success",
				UserID:         "user-store-success",
				CSRFToken:      "csrf-one",
				AccessToken:    "access-token-one",
				RefreshToken:   "refresh-token-one",
				TokenExpiresAt: testTime,
				Expiry:         testTime,
			},
			assertErr: assert.NoError,
		},
		{
			name: "Upsert successfully",
			session: session.Session{
				ID:             upsertSession.ID,
				UserID:         upsertSession.UserID,
				CSRFToken:      "csrf-upsert-new",
				AccessToken:    "access-token-upsert-new",
				RefreshToken:   "refresh-token-upsert-new",
				TokenExpiresAt: testTime,
				Expiry:         testTime,
			},
			assertErr: assert.NoError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sessionvalkey.NewRepository(client, prefix)
			err := r.StoreSession(t.Context(), tt.session)
			if !tt.assertErr(t, err, fmt.Sprintf("Repository.StoreSession() error %v", err)) || err != nil {
				return
			}

			stored, err := r.LoadSession(t.Context(), tt.session.ID)
			require.NoError(t, err)

			assert.Equal(t, tt.session, stored, "Inserted session is not equal")
		})
	}
}

func TestRepository_StoreSession_TTL(t *testing.T) {
	const prefix = "flipside-store-session-ttl-test"

	r := sessionvalkey.NewRepository(client, prefix)

	s := session.Session{
		ID:          "sessionid-short-lived",
		UserID:      "user-short-lived",
		AccessToken: "access-token",
		Expiry:      time.Now().Add(2 * time.Second),
	}

	require.NoError(t, r.StoreSession(t.Context(), s))

	_, err := r.LoadSession(t.Context(), s.ID)
	require.NoError(t, err)

	time.Sleep(2200 * time.Millisecond)

	_, err = r.LoadSession(t.Context(), s.ID)
	assert.ErrorIs(t, err, serviceerr.ErrNotFound)
}

func TestRepository_StoreSession_RewriteKeepsExpiry(t *testing.T) {
	const prefix = "flipside-store-session-rewrite-test"

	r := sessionvalkey.NewRepository(client, prefix)

	s := session.Session{
		ID:           "sessionid-rewritten",
		UserID:       "user-rewritten",
		AccessToken:  "access-token-old",
		RefreshToken: "refresh-token",
		Expiry:       time.Now().Add(3 * time.Second),
	}

	require.NoError(t, r.StoreSession(t.Context(), s))

	// A token refresh rewrites the record with the same Expiry; the session
	// must still die at the original absolute expiry.
	time.Sleep(1100 * time.Millisecond)
	s.AccessToken = "access-token-new"
	require.NoError(t, r.StoreSession(t.Context(), s))

	stored, err := r.LoadSession(t.Context(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, "access-token-new", stored.AccessToken)

	time.Sleep(2200 * time.Millisecond)

	_, err = r.LoadSession(t.Context(), s.ID)
	assert.ErrorIs(t, err, serviceerr.ErrNotFound)
}

func TestRepository_DeleteSession(t *testing.T) {
	const prefix = "flipside-delete-session-test"

	prepareSession(t, prefix, session.Session{
		ID:     "sessionid-delete",
		UserID: "user-delete",
		Expiry: testTime,
	})

	tests := []struct {
		name      string
		sessionID string
		assertErr assert.ErrorAssertionFunc
	}{
		{
			name:      "Delete existing session",
			sessionID: "sessionid-delete",
			assertErr: assert.NoError,
		},
		{
			name:      "Delete non-existing session",
			sessionID: "non-existent-session",
			assertErr: assert.Error,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sessionvalkey.NewRepository(client, prefix)
			err := r.DeleteSession(t.Context(), tt.sessionID)
			tt.assertErr(t, err, "Repository.DeleteSession() error")

			_, err = r.LoadSession(t.Context(), tt.sessionID)
			assert.Error(t, err, "Session should not exist after deletion")
		})
	}
}
