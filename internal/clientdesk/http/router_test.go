package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/domain"
	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/service"
	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/store"
	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/store/drivers/sqlite"
	"github.com/aussiebroadwan/clientdesk/pkg/clientsdk"
)

func newTestRouter(t *testing.T, st store.Store, origins ...string) *Router {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewRouter("test", st, logger, origins)
	r.ClientService = &service.ClientService{Store: st, QueryTimeout: time.Second}
	r.ApplyRoutes()
	return r
}

func newSQLiteStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "clients.db"), store.PoolOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())
	return st
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "203.0.113.7:4242"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestClientLifecycle(t *testing.T) {
	r := newTestRouter(t, newSQLiteStore(t))

	before := time.Now()
	rec := do(t, r, http.MethodPost, "/clients", `{"name":"Ada Lovelace","email":"ada@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	created := decodeBody[clientsdk.Client](t, rec)
	require.Positive(t, created.ID)
	require.False(t, created.CreatedAt.Before(before), "createdAt %s precedes call at %s", created.CreatedAt, before)
	require.Nil(t, created.Phone)

	path := fmt.Sprintf("/clients/%d", created.ID)

	rec = do(t, r, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[clientsdk.Client](t, rec)
	require.Equal(t, "Ada Lovelace", got.Name)
	require.Equal(t, "ada@example.com", got.Email)
	require.True(t, created.CreatedAt.Equal(got.CreatedAt))

	rec = do(t, r, http.MethodDelete, path, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())

	rec = do(t, r, http.MethodGet, path, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Client not found", decodeBody[clientsdk.ErrorResponse](t, rec).Message)
}

func TestCreateClientValidation(t *testing.T) {
	r := newTestRouter(t, newSQLiteStore(t))

	t.Run("reports every failing field", func(t *testing.T) {
		rec := do(t, r, http.MethodPost, "/clients", `{"name":"  ","email":"not-an-email"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := decodeBody[clientsdk.ErrorResponse](t, rec)
		require.Equal(t, "Validation failed", body.Message)
		require.Len(t, body.Errors, 2)
		require.Equal(t, "name", body.Errors[0].Field)
		require.Equal(t, clientsdk.FieldError{Field: "email", Message: "Please enter a valid email address"}, body.Errors[1])
	})

	t.Run("malformed json", func(t *testing.T) {
		for _, body := range []string{`{"name":`, `[]`, `not json`} {
			rec := do(t, r, http.MethodPost, "/clients", body)
			require.Equal(t, http.StatusBadRequest, rec.Code, body)
			require.Equal(t, "Invalid JSON in request body", decodeBody[clientsdk.ErrorResponse](t, rec).Message)
		}
	})

	t.Run("nothing is stored on failure", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/clients", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, decodeBody[[]clientsdk.Client](t, rec))
	})
}

func TestListClients(t *testing.T) {
	r := newTestRouter(t, newSQLiteStore(t))

	rec := do(t, r, http.MethodGet, "/clients", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	for _, name := range []string{"Ada Lovelace", "Grace Hopper", "Alan Turing"} {
		rec := do(t, r, http.MethodPost, "/clients", fmt.Sprintf(`{"name":%q,"email":"x@example.com","phone":"555"}`, name))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	t.Run("newest first", func(t *testing.T) {
		clients := decodeBody[[]clientsdk.Client](t, do(t, r, http.MethodGet, "/clients", ""))
		require.Len(t, clients, 3)
		require.Equal(t, "Alan Turing", clients[0].Name)
		require.Equal(t, "Ada Lovelace", clients[2].Name)
	})

	t.Run("search ignores case", func(t *testing.T) {
		clients := decodeBody[[]clientsdk.Client](t, do(t, r, http.MethodGet, "/clients?search=HOPPER", ""))
		require.Len(t, clients, 1)
		require.Equal(t, "Grace Hopper", clients[0].Name)
	})

	t.Run("blank search lists all", func(t *testing.T) {
		clients := decodeBody[[]clientsdk.Client](t, do(t, r, http.MethodGet, "/clients?search=%20%20", ""))
		require.Len(t, clients, 3)
	})

	t.Run("api alias serves the same data", func(t *testing.T) {
		clients := decodeBody[[]clientsdk.Client](t, do(t, r, http.MethodGet, "/api/clients?search=ada", ""))
		require.Len(t, clients, 1)
		require.Equal(t, "Ada Lovelace", clients[0].Name)
	})
}

func TestUpdateClient(t *testing.T) {
	r := newTestRouter(t, newSQLiteStore(t))

	rec := do(t, r, http.MethodPost, "/clients", `{"name":"Ada Lovelace","email":"ada@example.com","phone":"555-0100"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[clientsdk.Client](t, rec)
	path := fmt.Sprintf("/clients/%d", created.ID)

	t.Run("partial update keeps other fields", func(t *testing.T) {
		rec := do(t, r, http.MethodPut, path, `{"name":"Ada King"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		updated := decodeBody[clientsdk.Client](t, rec)
		require.Equal(t, "Ada King", updated.Name)
		require.Equal(t, "ada@example.com", updated.Email)
		require.Equal(t, "555-0100", *updated.Phone)
		require.Equal(t, created.ID, updated.ID)
	})

	t.Run("empty body returns the record unchanged", func(t *testing.T) {
		rec := do(t, r, http.MethodPut, path, `{}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "Ada King", decodeBody[clientsdk.Client](t, rec).Name)
	})

	t.Run("null phone clears it", func(t *testing.T) {
		rec := do(t, r, http.MethodPut, path, `{"phone":null}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Nil(t, decodeBody[clientsdk.Client](t, rec).Phone)
	})

	t.Run("invalid email", func(t *testing.T) {
		rec := do(t, r, http.MethodPut, path, `{"email":"nope"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Validation failed", decodeBody[clientsdk.ErrorResponse](t, rec).Message)
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := do(t, r, http.MethodPut, "/clients/999999", `{"name":"Nobody"}`)
		require.Equal(t, http.StatusNotFound, rec.Code)

		rec = do(t, r, http.MethodPut, "/clients/999999", `{}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestInvalidClientID(t *testing.T) {
	r := newTestRouter(t, newSQLiteStore(t))

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/clients/abc", ""},
		{http.MethodGet, "/clients/0", ""},
		{http.MethodPut, "/clients/1.5", `{}`},
		{http.MethodDelete, "/clients/-3", ""},
		{http.MethodDelete, "/clients/99999999999999999999", ""},
	} {
		rec := do(t, r, tc.method, tc.path, tc.body)
		require.Equal(t, http.StatusBadRequest, rec.Code, "%s %s", tc.method, tc.path)
		require.Equal(t, "Invalid client ID", decodeBody[clientsdk.ErrorResponse](t, rec).Message)
	}
}

func TestDeleteUnknownClient(t *testing.T) {
	r := newTestRouter(t, newSQLiteStore(t))

	for _, body := range []string{
		`{"name":"Ada Lovelace","email":"ada@example.com"}`,
		`{"name":"Grace Hopper","email":"grace@example.com","phone":"555-0100"}`,
	} {
		rec := do(t, r, http.MethodPost, "/clients", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := do(t, r, http.MethodGet, "/clients", "")
	require.Equal(t, http.StatusOK, rec.Code)
	before := rec.Body.String()

	rec = do(t, r, http.MethodDelete, "/clients/12345", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Client not found", decodeBody[clientsdk.ErrorResponse](t, rec).Message)

	rec = do(t, r, http.MethodGet, "/clients", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, before, rec.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	r := newTestRouter(t, newSQLiteStore(t))

	rec := do(t, r, http.MethodPatch, "/clients/1", `{}`)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// brokenStore fails every operation so the 500 paths can be exercised.
type brokenStore struct{}

var errDown = errors.New("connection refused")

func (brokenStore) Clients() store.Clients         { return brokenClients{} }
func (brokenStore) ApplyMigrations() error         { return nil }
func (brokenStore) Close() error                   { return nil }
func (brokenStore) Ping(ctx context.Context) error { return errDown }

type brokenClients struct{}

func (brokenClients) ListClients(context.Context, string) ([]domain.Client, error) {
	return nil, errDown
}

func (brokenClients) GetClientByID(context.Context, int64) (domain.Client, error) {
	return domain.Client{}, errDown
}

func (brokenClients) CreateClient(context.Context, domain.ClientFields) (domain.Client, error) {
	return domain.Client{}, errDown
}

func (brokenClients) UpdateClient(context.Context, int64, domain.ClientPatch) (domain.Client, error) {
	return domain.Client{}, errDown
}

func (brokenClients) DeleteClient(context.Context, int64) (bool, error) {
	return false, errDown
}

func TestPersistenceFailures(t *testing.T) {
	r := newTestRouter(t, brokenStore{})

	for _, tc := range []struct{ method, path, body, message string }{
		{http.MethodGet, "/clients", "", "Failed to fetch clients"},
		{http.MethodGet, "/clients/1", "", "Failed to fetch client"},
		{http.MethodPost, "/clients", `{"name":"Ada","email":"ada@example.com"}`, "Failed to create client"},
		{http.MethodPut, "/clients/1", `{"name":"Ada"}`, "Failed to update client"},
		{http.MethodDelete, "/clients/1", "", "Failed to delete client"},
	} {
		rec := do(t, r, tc.method, tc.path, tc.body)
		require.Equal(t, http.StatusInternalServerError, rec.Code, "%s %s", tc.method, tc.path)

		body := decodeBody[clientsdk.ErrorResponse](t, rec)
		require.Equal(t, tc.message, body.Message)
		require.NotContains(t, rec.Body.String(), errDown.Error())
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Run("ready with a working database", func(t *testing.T) {
		r := newTestRouter(t, newSQLiteStore(t))

		rec := do(t, r, http.MethodGet, "/livez", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "ok", decodeBody[clientsdk.HealthResponse](t, rec).Status)

		rec = do(t, r, http.MethodGet, "/readyz", "")
		require.Equal(t, http.StatusOK, rec.Code)
		health := decodeBody[clientsdk.HealthResponse](t, rec)
		require.Equal(t, "ok", health.Checks.Database)
		require.Equal(t, "test", health.Version)
	})

	t.Run("degraded without one", func(t *testing.T) {
		r := newTestRouter(t, brokenStore{})

		rec := do(t, r, http.MethodGet, "/readyz", "")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		health := decodeBody[clientsdk.HealthResponse](t, rec)
		require.Equal(t, "degraded", health.Status)
		require.Equal(t, "error", health.Checks.Database)
		require.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestCORS(t *testing.T) {
	r := newTestRouter(t, newSQLiteStore(t), "http://localhost:5173")

	req := httptest.NewRequest(http.MethodOptions, "/clients", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/clients", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
