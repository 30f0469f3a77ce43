package pkce

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSource_PKCE(t *testing.T) {
	p := Source{}
	pkce := p.PKCE()
	assert.NotEmpty(t, pkce.Verifier, "Empty pkce verifier")
	assert.NotEmpty(t, pkce.Challenge, "Empty pkce challenge")
	assert.Equal(t, MethodS256, pkce.Method, "Unexpected PKCE method")
	assert.GreaterOrEqual(t, len(pkce.Verifier), 43, "Verifier shorter than the RFC7636 minimum")

	sum := sha256.Sum256([]byte(pkce.Verifier))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), pkce.Challenge,
		"Challenge is not the S256 transform of the verifier")
}

func TestSource_PKCEUnique(t *testing.T) {
	p := Source{}
	seen := make(map[string]bool)
	for range 64 {
		pkce := p.PKCE()
		assert.False(t, seen[pkce.Verifier], "Verifier generated twice")
		seen[pkce.Verifier] = true
	}
}

func TestSource_State(t *testing.T) {
	p := Source{}
	state := p.State()
	assert.NotEmpty(t, state, "Empty state generated")
	assert.NotEqual(t, state, p.State(), "State generated twice")
}
