package google

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	"github.com/teemow/reserve-it/internal/logging"
)

const (
	tokenDirName  = ".credentials"
	tokenFileName = "reserver-it.json"
)

var (
	// ErrTokenNotFound is returned when no token has been cached yet.
	ErrTokenNotFound = errors.New("no cached OAuth token")

	// ErrTokenInvalid is returned when the cache file exists but does not hold a token.
	ErrTokenInvalid = errors.New("cached OAuth token is invalid")
)

// TokenStore persists the single OAuth token of the process.
type TokenStore interface {
	// LoadToken returns the cached token, ErrTokenNotFound when there is
	// none, or ErrTokenInvalid when the cache cannot be decoded.
	LoadToken() (*oauth2.Token, error)

	// StoreToken replaces the cached token.
	StoreToken(token *oauth2.Token) error
}

// TokenPath returns the token cache location under the given home directory.
func TokenPath(homeDir string) string {
	return filepath.Join(homeDir, tokenDirName, tokenFileName)
}

// FileTokenStore keeps the token as JSON in a single file.
type FileTokenStore struct {
	path   string
	logger *slog.Logger
}

var _ TokenStore = (*FileTokenStore)(nil)

// NewFileTokenStore creates a token store backed by the file at path.
// If logger is nil, slog.Default() is used.
func NewFileTokenStore(path string, logger *slog.Logger) *FileTokenStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileTokenStore{
		path:   path,
		logger: logging.WithOperation(logger, "oauth.token_store"),
	}
}

// Path returns the token file location.
func (s *FileTokenStore) Path() string {
	return s.path
}

// LoadToken reads the cached token from disk.
func (s *FileTokenStore) LoadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, fmt.Errorf("%w: no access or refresh token", ErrTokenInvalid)
	}

	return &token, nil
}

// StoreToken writes the token to disk, creating the cache directory when needed.
// Any previous token is overwritten.
func (s *FileTokenStore) StoreToken(token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	s.logger.Info("Token stored to "+s.path, logging.Path(s.path))
	return nil
}
