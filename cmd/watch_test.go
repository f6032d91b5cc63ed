package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/teemow/reserve-it/internal/calendar"
	"github.com/teemow/reserve-it/internal/google"
)

const testInterval = 20 * time.Millisecond

// syncBuffer collects console output written by concurrent ticks.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) count(line string) int {
	n := 0
	for _, l := range strings.Split(b.String(), "\n") {
		if strings.HasPrefix(l, line) {
			n++
		}
	}
	return n
}

// fakeGoogle serves the OAuth token endpoint and the events.list endpoint.
type fakeGoogle struct {
	*httptest.Server

	mu       sync.Mutex
	events   http.HandlerFunc
	tokenErr bool

	exchanges atomic.Int32
	lists     atomic.Int32
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	t.Helper()
	f := &fakeGoogle{}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		f.exchanges.Add(1)
		w.Header().Set("Content-Type", "application/json")
		f.mu.Lock()
		failing := f.tokenErr
		f.mu.Unlock()
		if failing {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant","error_description":"Bad Request"}`)
			return
		}
		fmt.Fprint(w, `{"access_token":"ya29.e2e","token_type":"Bearer","refresh_token":"1//e2e","expires_in":3600}`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		f.lists.Add(1)
		f.mu.Lock()
		handler := f.events
		f.mu.Unlock()
		handler(w, r)
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)

	f.respondWith(`{"items":[]}`)
	return f
}

func (f *fakeGoogle) respondWith(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}
}

func (f *fakeGoogle) dropConnections() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = func(w http.ResponseWriter, _ *http.Request) {
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			_ = conn.Close()
		}
	}
}

// watchEnv prepares a working directory, a home directory and the
// environment for one run of the watch command.
type watchEnv struct {
	t       *testing.T
	google  *fakeGoogle
	workDir string
	home    string
}

func newWatchEnv(t *testing.T) *watchEnv {
	t.Helper()
	env := &watchEnv{
		t:       t,
		google:  newFakeGoogle(t),
		workDir: t.TempDir(),
		home:    t.TempDir(),
	}

	t.Setenv("HOME", env.home)
	t.Setenv("CALENDAR_ID", "room@example.com")
	t.Setenv("INSTRUMENTATION_ENABLED", "false")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "")

	secret := fmt.Sprintf(`{"installed":{
		"client_id":"client.apps.googleusercontent.com",
		"client_secret":"secret",
		"auth_uri":"%[1]s/auth",
		"token_uri":"%[1]s/token",
		"redirect_uris":["urn:ietf:wg:oauth:2.0:oob"]
	}}`, env.google.URL)
	require.NoError(t, os.WriteFile(filepath.Join(env.workDir, google.DefaultClientSecretFile), []byte(secret), 0600))
	return env
}

func (e *watchEnv) cacheToken() {
	e.t.Helper()
	store := google.NewFileTokenStore(google.TokenPath(e.home), nil)
	require.NoError(e.t, store.StoreToken(&oauth2.Token{
		AccessToken:  "ya29.cached",
		TokenType:    "Bearer",
		RefreshToken: "1//cached",
		Expiry:       time.Now().Add(time.Hour),
	}))
}

// start runs the watch command in the background and returns a function
// that stops it and returns its error.
func (e *watchEnv) start(in io.Reader, out io.Writer) func() error {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runWatch(ctx, watchOptions{
			workDir:      e.workDir,
			in:           in,
			out:          out,
			logOut:       io.Discard,
			interval:     testInterval,
			calendarOpts: []calendar.ClientOption{calendar.WithEndpoint(e.google.URL + "/")},
		})
	}()

	return func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			e.t.Fatal("watch did not stop")
			return nil
		}
	}
}

func TestWatch_Availability(t *testing.T) {
	tests := []struct {
		name string
		body func() string
		want string
	}{
		{
			name: "no events",
			body: func() string { return `{"items":[]}` },
			want: "Available",
		},
		{
			name: "all-day event",
			body: func() string { return `{"items":[{"id":"a","start":{"date":"2024-01-01"}}]}` },
			want: "Busy",
		},
		{
			name: "event started five seconds ago",
			body: func() string {
				return fmt.Sprintf(`{"items":[{"id":"a","start":{"dateTime":%q}}]}`,
					time.Now().Add(-5*time.Second).Format(time.RFC3339))
			},
			want: "Busy",
		},
		{
			name: "event starting in five seconds",
			body: func() string {
				return fmt.Sprintf(`{"items":[{"id":"a","start":{"dateTime":%q}}]}`,
					time.Now().Add(5*time.Second).Format(time.RFC3339))
			},
			want: "Available",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newWatchEnv(t)
			env.cacheToken()
			env.google.respondWith(tt.body())

			out := &syncBuffer{}
			stop := env.start(strings.NewReader(""), out)

			require.Eventually(t, func() bool { return out.count(tt.want) >= 2 }, 5*time.Second, testInterval)
			require.NoError(t, stop())

			assert.NotContains(t, out.String(), "Authorize this app")
			assert.Zero(t, env.google.exchanges.Load())
			for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
				assert.Equal(t, tt.want, line)
			}
		})
	}
}

func TestWatch_TransportErrorKeepsPolling(t *testing.T) {
	env := newWatchEnv(t)
	env.cacheToken()
	env.google.dropConnections()

	out := &syncBuffer{}
	stop := env.start(strings.NewReader(""), out)

	require.Eventually(t, func() bool {
		return out.count("The API returned an error:") >= 2
	}, 5*time.Second, testInterval)

	env.google.respondWith(`{"items":[]}`)
	require.Eventually(t, func() bool { return out.count("Available") >= 1 }, 5*time.Second, testInterval)
	require.NoError(t, stop())
}

func TestWatch_InteractiveAuthorization(t *testing.T) {
	env := newWatchEnv(t)

	out := &syncBuffer{}
	stop := env.start(strings.NewReader("4/0Abc\n"), out)

	require.Eventually(t, func() bool { return out.count("Available") >= 1 }, 5*time.Second, testInterval)
	require.NoError(t, stop())

	assert.Contains(t, out.String(), "Authorize this app by visiting this url: "+env.google.URL+"/auth?")
	assert.Contains(t, out.String(), "Enter the code from that page here: ")
	assert.Equal(t, int32(1), env.google.exchanges.Load())

	token, err := google.NewFileTokenStore(google.TokenPath(env.home), nil).LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "ya29.e2e", token.AccessToken)

	info, err := os.Stat(google.TokenPath(env.home))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestWatch_ExchangeFailureIdles(t *testing.T) {
	env := newWatchEnv(t)
	env.google.mu.Lock()
	env.google.tokenErr = true
	env.google.mu.Unlock()

	out := &syncBuffer{}
	stop := env.start(strings.NewReader("bad-code\n"), out)

	require.Eventually(t, func() bool { return env.google.exchanges.Load() >= 1 }, 5*time.Second, testInterval)
	time.Sleep(5 * testInterval)
	require.NoError(t, stop())

	assert.Zero(t, env.google.lists.Load())
	assert.NotContains(t, out.String(), "Available")
	assert.NotContains(t, out.String(), "Busy")

	_, err := os.Stat(google.TokenPath(env.home))
	assert.True(t, os.IsNotExist(err))
}

func TestWatch_MissingClientSecret(t *testing.T) {
	env := newWatchEnv(t)
	require.NoError(t, os.Remove(filepath.Join(env.workDir, google.DefaultClientSecretFile)))

	err := runWatch(context.Background(), watchOptions{
		workDir:  env.workDir,
		in:       strings.NewReader(""),
		out:      io.Discard,
		logOut:   io.Discard,
		interval: testInterval,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read client secret file")
}

func TestVersionCmd(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	out := &bytes.Buffer{}
	cmd := newVersionCmd()
	cmd.SetOut(out)
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "reserve-it version 1.2.3\n", out.String())
}
