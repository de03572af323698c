package app

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplicationServesClients(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "error"
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "clientdesk.db")
	cfg.DatabaseSource = SourceEnv

	application, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Shutdown() })

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/clients", "application/json",
		strings.NewReader(`{"name":"Ada Lovelace","email":"ada@example.com"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOpenStoreRejectsUnknownScheme(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DatabaseURL = "mysql://db/clients"

	_, err := OpenStore(context.Background(), cfg)
	require.Error(t, err)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "error"
	cfg.Port = freePort(t)
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "clientdesk.db")

	application, err := New(context.Background(), cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, application.Run(ctx))
}

func freePort(t *testing.T) int {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	return srv.Listener.Addr().(*net.TCPAddr).Port
}
