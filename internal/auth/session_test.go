// internal/auth/session_test.go
package auth

import (
	"crypto/ed25519"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	Init()

	token, err := CreateJWT("dana", "Defender")
	require.NoError(t, err)

	claims, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "dana", claims.Subject)
	assert.Equal(t, "Defender", claims.Role)
}

func TestInitFromPathValidatesExternallyIssuedTokens(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "jwt.key")
	pubPath := filepath.Join(dir, "jwt.pub")
	require.NoError(t, os.WriteFile(privPath, priv, 0o600))
	require.NoError(t, os.WriteFile(pubPath, pub, 0o644))

	require.NoError(t, InitFromPath(privPath, pubPath))
	token, err := CreateJWT("prof", "Instructor")
	require.NoError(t, err)

	// Reloading the same key material must still validate the token, the way
	// a restart sharing the identity service's keys would.
	require.NoError(t, InitFromPath(privPath, pubPath))
	claims, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "prof", claims.Subject)
	assert.Equal(t, "Instructor", claims.Role)
}

func TestInitFromPathMissingFile(t *testing.T) {
	err := InitFromPath(filepath.Join(t.TempDir(), "absent.key"), filepath.Join(t.TempDir(), "absent.pub"))
	assert.Error(t, err)
}

func TestAuthenticateJWTRejectsGarbage(t *testing.T) {
	Init()
	_, err := AuthenticateJWT("not-a-token")
	assert.Error(t, err)
}

func TestTokenFromRequest(t *testing.T) {
	Init()
	token, err := CreateJWT("olive", "Observer")
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/ws/alpha", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, token, TokenFromRequest(r))

	// Browser WebSocket clients fall back to the query parameter.
	r = httptest.NewRequest("GET", "/ws/alpha?token="+token, nil)
	assert.Equal(t, token, TokenFromRequest(r))

	r = httptest.NewRequest("GET", "/ws/alpha", nil)
	assert.Empty(t, TokenFromRequest(r))
}

func TestRequireRole(t *testing.T) {
	Init()

	instructorToken, err := CreateJWT("prof", "Instructor")
	require.NoError(t, err)
	defenderToken, err := CreateJWT("dana", "Defender")
	require.NoError(t, err)

	r := httptest.NewRequest("POST", "/lobby/create/alpha", nil)
	r.Header.Set("Authorization", "Bearer "+instructorToken)
	claims, err := RequireRole(r, "Instructor")
	require.NoError(t, err)
	assert.Equal(t, "prof", claims.Subject)

	r = httptest.NewRequest("POST", "/lobby/create/alpha", nil)
	r.Header.Set("Authorization", "Bearer "+defenderToken)
	_, err = RequireRole(r, "Instructor")
	assert.Error(t, err)

	r = httptest.NewRequest("POST", "/lobby/create/alpha", nil)
	_, err = RequireRole(r, "Instructor")
	assert.Error(t, err, "missing token is rejected")
}
