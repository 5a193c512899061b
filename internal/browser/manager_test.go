package browser_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neboloop/walletpilot/internal/browser"
	"github.com/neboloop/walletpilot/internal/browser/browsertest"
)

// fakeCDP answers /json/version the way a browser started with
// --remote-debugging-port does.
func fakeCDP(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/version" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Browser":"Chrome/126.0","webSocketDebuggerUrl":"ws://127.0.0.1:9222/devtools/browser/abc"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestManagerAttach(t *testing.T) {
	srv := fakeCDP(t)
	runner := browsertest.NewDriver(browser.DriverRunner)
	runner.Open(dappURL)
	extension := browsertest.NewDriver(browser.DriverExtension)
	extension.Open(extensionURL)

	var gotWS, gotCDP string
	m := browser.NewManager(browser.Config{CDPUrl: srv.URL}, browser.WithConnectors(
		func(ctx context.Context, endpoint string, _ time.Duration) (browser.Driver, error) {
			gotWS = endpoint
			return runner, nil
		},
		func(ctx context.Context, endpoint string, _ time.Duration) (browser.Driver, error) {
			gotCDP = endpoint
			return extension, nil
		},
	))

	s, err := m.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/abc", gotWS)
	assert.Equal(t, srv.URL, gotCDP)
	assert.Equal(t, extensionURL, s.ExtensionURL())
	assert.Nil(t, m.Running())

	again, err := m.Start(context.Background())
	require.NoError(t, err)
	assert.Same(t, s, again)

	require.NoError(t, m.Stop())
	assert.True(t, runner.IsClosed())
	assert.True(t, extension.IsClosed())
	assert.Nil(t, m.Session())
}

func TestManagerAttachUnreachable(t *testing.T) {
	srv := fakeCDP(t)
	srv.Close()

	m := browser.NewManager(browser.Config{CDPUrl: srv.URL})
	_, err := m.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no browser answering")
}

func TestManagerConnectFailure(t *testing.T) {
	srv := fakeCDP(t)
	runner := browsertest.NewDriver(browser.DriverRunner)
	boom := errors.New("boom")

	m := browser.NewManager(browser.Config{CDPUrl: srv.URL}, browser.WithConnectors(
		func(context.Context, string, time.Duration) (browser.Driver, error) { return runner, nil },
		func(context.Context, string, time.Duration) (browser.Driver, error) { return nil, boom },
	))

	_, err := m.Start(context.Background())
	require.ErrorIs(t, err, boom)
	assert.True(t, runner.IsClosed())
	assert.Nil(t, m.Session())
}
