package google

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  "ya29.access",
		TokenType:    "Bearer",
		RefreshToken: "1//refresh",
		Expiry:       time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestTokenPath(t *testing.T) {
	got := TokenPath(filepath.Join("home", "alex"))
	assert.Equal(t, filepath.Join("home", "alex", ".credentials", "reserver-it.json"), got)
}

func TestFileTokenStore_LoadMissing(t *testing.T) {
	store := NewFileTokenStore(TokenPath(t.TempDir()), nil)

	token, err := store.LoadToken()
	assert.Nil(t, token)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestFileTokenStore_StoreAndLoad(t *testing.T) {
	home := t.TempDir()
	store := NewFileTokenStore(TokenPath(home), nil)

	require.NoError(t, store.StoreToken(testToken()))

	info, err := os.Stat(filepath.Join(home, ".credentials"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	loaded, err := store.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "ya29.access", loaded.AccessToken)
	assert.Equal(t, "1//refresh", loaded.RefreshToken)
	assert.Equal(t, "Bearer", loaded.TokenType)
	assert.True(t, loaded.Expiry.Equal(testToken().Expiry))
}

func TestFileTokenStore_StoreIsIdempotent(t *testing.T) {
	store := NewFileTokenStore(TokenPath(t.TempDir()), nil)

	require.NoError(t, store.StoreToken(testToken()))
	require.NoError(t, store.StoreToken(testToken()))

	loaded, err := store.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "ya29.access", loaded.AccessToken)
}

func TestFileTokenStore_StoreOverwrites(t *testing.T) {
	store := NewFileTokenStore(TokenPath(t.TempDir()), nil)

	require.NoError(t, store.StoreToken(testToken()))
	require.NoError(t, store.StoreToken(&oauth2.Token{AccessToken: "second"}))

	loaded, err := store.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "second", loaded.AccessToken)
	assert.Empty(t, loaded.RefreshToken, "tokens are replaced, never merged")
}

func TestFileTokenStore_StoreDirectoryFailure(t *testing.T) {
	home := t.TempDir()
	// A regular file where the cache directory should be
	writeFile(t, home, ".credentials", "not a directory")

	store := NewFileTokenStore(TokenPath(home), nil)
	err := store.StoreToken(testToken())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create token directory")
}

func TestFileTokenStore_StoreNil(t *testing.T) {
	store := NewFileTokenStore(TokenPath(t.TempDir()), nil)
	assert.Error(t, store.StoreToken(nil))
}

func TestFileTokenStore_LoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "ya29.access 1//refresh"},
		{"empty object", "{}"},
		{"truncated", `{"access_token": "ya29`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			require.NoError(t, os.MkdirAll(filepath.Join(home, ".credentials"), 0700))
			writeFile(t, filepath.Join(home, ".credentials"), "reserver-it.json", tt.content)

			store := NewFileTokenStore(TokenPath(home), nil)
			token, err := store.LoadToken()
			assert.Nil(t, token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}
