package google

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"

	"github.com/teemow/reserve-it/internal/instrumentation"
	"github.com/teemow/reserve-it/internal/logging"
)

// authState is sent with the authorization URL. The code is pasted back by
// hand, so there is no redirect to check it against.
const authState = "state-token"

// ErrTokenExchange is returned when the authorization code could not be
// exchanged for a token.
var ErrTokenExchange = errors.New("failed to exchange auth code")

// AuthCodeFlow is the part of an OAuth2 client the Authorizer needs.
// *oauth2.Config implements it.
type AuthCodeFlow interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
	Client(ctx context.Context, t *oauth2.Token) *http.Client
}

var _ AuthCodeFlow = (*oauth2.Config)(nil)

// AuthorizerConfig holds the collaborators of an Authorizer.
type AuthorizerConfig struct {
	// Flow builds authorization URLs, exchanges codes and signs requests.
	Flow AuthCodeFlow

	// Store caches the token between runs.
	Store TokenStore

	// In provides the authorization code typed by the user (default: os.Stdin).
	In io.Reader

	// Out receives the authorization prompt (default: os.Stdout).
	Out io.Writer

	// Logger receives diagnostics (default: slog.Default()).
	Logger *slog.Logger

	// Metrics records the authorization outcome. Optional.
	Metrics *instrumentation.Metrics
}

// Authorizer produces an authenticated HTTP client, prompting the user for
// an authorization code only when no token is cached.
type Authorizer struct {
	flow    AuthCodeFlow
	store   TokenStore
	in      *bufio.Reader
	out     io.Writer
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// NewAuthorizer creates an Authorizer from the given configuration.
func NewAuthorizer(config AuthorizerConfig) (*Authorizer, error) {
	if config.Flow == nil {
		return nil, fmt.Errorf("auth code flow cannot be nil")
	}
	if config.Store == nil {
		return nil, fmt.Errorf("token store cannot be nil")
	}
	if config.In == nil {
		config.In = os.Stdin
	}
	if config.Out == nil {
		config.Out = os.Stdout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Authorizer{
		flow:    config.Flow,
		store:   config.Store,
		in:      bufio.NewReader(config.In),
		out:     config.Out,
		logger:  logging.WithOperation(config.Logger, "oauth.authorize"),
		metrics: config.Metrics,
	}, nil
}

// Authorize returns an HTTP client carrying the cached token, or runs the
// interactive authorization-code flow when no usable token is cached.
// The interactive flow is attempted once; a failed exchange is not retried.
func (a *Authorizer) Authorize(ctx context.Context) (*http.Client, error) {
	token, err := a.store.LoadToken()
	if err == nil {
		a.logger.Debug("using cached token",
			slog.String("access_token", logging.SanitizeToken(token.AccessToken)))
		a.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultCached)
		return a.client(ctx, token), nil
	}
	if !errors.Is(err, ErrTokenNotFound) {
		a.logger.Warn("ignoring cached token", logging.Err(err))
	}

	token, err = a.tokenFromTerminal(ctx)
	if err != nil {
		a.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		return nil, err
	}
	a.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)

	if err := a.store.StoreToken(token); err != nil {
		return nil, err
	}

	return a.client(ctx, token), nil
}

// tokenFromTerminal prints the authorization URL and exchanges the code the
// user pastes back.
func (a *Authorizer) tokenFromTerminal(ctx context.Context) (*oauth2.Token, error) {
	authURL := a.flow.AuthCodeURL(authState, oauth2.AccessTypeOffline)
	fmt.Fprintf(a.out, "Authorize this app by visiting this url: %s\n", authURL)
	fmt.Fprint(a.out, "Enter the code from that page here: ")

	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return nil, fmt.Errorf("failed to read authorization code: %w", err)
	}
	code := strings.TrimSpace(line)

	token, err := a.flow.Exchange(ctx, code)
	if err != nil {
		a.logger.Error("Error while trying to retrieve access token", logging.Err(err))
		return nil, fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}

	return token, nil
}

// client builds the authenticated client and forces HTTP/1.1 by disabling
// HTTP/2 on the base transport.
func (a *Authorizer) client(ctx context.Context, token *oauth2.Token) *http.Client {
	client := a.flow.Client(ctx, token)
	if transport, ok := client.Transport.(*oauth2.Transport); ok && transport.Base == nil {
		transport.Base = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		}
	}
	return client
}
