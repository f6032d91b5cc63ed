package google

import (
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultClientSecretFile is the OAuth client descriptor read from the working directory.
const DefaultClientSecretFile = "client_secret.json"

// LoadClientSecret reads a Google OAuth client descriptor, as downloaded from
// the Cloud Console, and returns the OAuth2 configuration for it.
// The redirect URL is the first redirect URI of the descriptor.
func LoadClientSecret(path string) (*oauth2.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read client secret file: %w", err)
	}

	conf, err := google.ConfigFromJSON(b, DefaultOAuthScopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secret file: %w", err)
	}

	return conf, nil
}
