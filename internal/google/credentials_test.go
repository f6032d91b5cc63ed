package google

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	calendar "google.golang.org/api/calendar/v3"
)

const installedClientSecret = `{
  "installed": {
    "client_id": "1234.apps.googleusercontent.com",
    "client_secret": "s3cret",
    "redirect_uris": ["urn:ietf:wg:oauth:2.0:oob", "http://localhost"],
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token"
  }
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadClientSecret(t *testing.T) {
	path := writeFile(t, t.TempDir(), DefaultClientSecretFile, installedClientSecret)

	conf, err := LoadClientSecret(path)
	require.NoError(t, err)

	assert.Equal(t, "1234.apps.googleusercontent.com", conf.ClientID)
	assert.Equal(t, "s3cret", conf.ClientSecret)
	assert.Equal(t, "urn:ietf:wg:oauth:2.0:oob", conf.RedirectURL)
	assert.Equal(t, []string{calendar.CalendarReadonlyScope}, conf.Scopes)
	assert.Equal(t, "https://oauth2.googleapis.com/token", conf.Endpoint.TokenURL)
}

func TestLoadClientSecret_Missing(t *testing.T) {
	_, err := LoadClientSecret(filepath.Join(t.TempDir(), DefaultClientSecretFile))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "failed to read client secret file")
}

func TestLoadClientSecret_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "client_id=abc"},
		{"no client section", `{"other": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), DefaultClientSecretFile, tt.content)

			_, err := LoadClientSecret(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to parse client secret file")
		})
	}
}
