package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/domain"
	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/store"
	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/store/drivers/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "clients.db"), store.PoolOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func ptr(s string) *string { return &s }

func TestNormalizeDSN(t *testing.T) {
	require.Equal(t, ":memory:", sqlite.NormalizeDSN(":memory:"))
	require.Equal(t, "file:x.db?mode=ro", sqlite.NormalizeDSN("file:x.db?mode=ro"))
	require.Contains(t, sqlite.NormalizeDSN("sqlite://data/clients.db"), "file:data/clients.db?")
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.Ping(context.Background()))
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:", store.PoolOptions{MaxOpenConns: 10})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	created, err := st.Clients().CreateClient(ctx, domain.ClientFields{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	got, err := st.Clients().GetClientByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)
}

func TestClientsCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t).Clients()

	before := time.Now()
	created, err := repo.CreateClient(ctx, domain.ClientFields{
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
		Phone: ptr("555-0100"),
	})
	require.NoError(t, err)
	require.Positive(t, created.ID)
	require.Equal(t, "Ada Lovelace", created.Name)
	require.Equal(t, "ada@example.com", created.Email)
	require.NotNil(t, created.Phone)
	require.Equal(t, "555-0100", *created.Phone)
	require.False(t, created.CreatedAt.Before(before), "createdAt %s precedes call at %s", created.CreatedAt, before)

	got, err := repo.GetClientByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)

	t.Run("created at is never before the call", func(t *testing.T) {
		for i := range 50 {
			before := time.Now()
			c, err := repo.CreateClient(ctx, domain.ClientFields{
				Name:  fmt.Sprintf("Burst %d", i),
				Email: "burst@example.com",
			})
			require.NoError(t, err)
			require.False(t, c.CreatedAt.Before(before), "createdAt %s precedes call at %s", c.CreatedAt, before)
		}
	})

	t.Run("absent phone is stored as null", func(t *testing.T) {
		c, err := repo.CreateClient(ctx, domain.ClientFields{Name: "Grace", Email: "grace@example.com"})
		require.NoError(t, err)
		require.Nil(t, c.Phone)
	})

	t.Run("ids are never reused", func(t *testing.T) {
		c, err := repo.CreateClient(ctx, domain.ClientFields{Name: "Temp", Email: "temp@example.com"})
		require.NoError(t, err)
		deleted, err := repo.DeleteClient(ctx, c.ID)
		require.NoError(t, err)
		require.True(t, deleted)

		next, err := repo.CreateClient(ctx, domain.ClientFields{Name: "Next", Email: "next@example.com"})
		require.NoError(t, err)
		require.Greater(t, next.ID, c.ID)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := repo.GetClientByID(ctx, 999999)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestClientsList(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t).Clients()

	t.Run("empty store lists nothing", func(t *testing.T) {
		clients, err := repo.ListClients(ctx, "")
		require.NoError(t, err)
		require.NotNil(t, clients)
		require.Empty(t, clients)
	})

	for i := 0; i < store.ListLimit+5; i++ {
		_, err := repo.CreateClient(ctx, domain.ClientFields{
			Name:  fmt.Sprintf("Client %03d", i),
			Email: fmt.Sprintf("client%d@example.com", i),
		})
		require.NoError(t, err)
	}

	t.Run("results are capped and newest first", func(t *testing.T) {
		clients, err := repo.ListClients(ctx, "")
		require.NoError(t, err)
		require.Len(t, clients, store.ListLimit)
		require.Equal(t, fmt.Sprintf("Client %03d", store.ListLimit+4), clients[0].Name)

		for i := 1; i < len(clients); i++ {
			require.False(t, clients[i].CreatedAt.After(clients[i-1].CreatedAt))
			require.Less(t, clients[i].ID, clients[i-1].ID)
		}
	})
}

func TestClientsSearch(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t).Clients()

	for _, name := range []string{"Ada Lovelace", "Grace Hopper", "Alan Turing", "100% Club", "snake_case", "Zoë Ångström", "Émile Zola"} {
		_, err := repo.CreateClient(ctx, domain.ClientFields{Name: name, Email: "x@example.com"})
		require.NoError(t, err)
	}

	names := func(cs []domain.Client) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = c.Name
		}
		return out
	}

	t.Run("case-insensitive substring", func(t *testing.T) {
		clients, err := repo.ListClients(ctx, "LOVE")
		require.NoError(t, err)
		require.Equal(t, []string{"Ada Lovelace"}, names(clients))

		clients, err = repo.ListClients(ctx, "a")
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"Ada Lovelace", "Grace Hopper", "Alan Turing", "snake_case", "Émile Zola"}, names(clients))
	})

	t.Run("non-ascii letters ignore case", func(t *testing.T) {
		for search, want := range map[string]string{
			"ZOË":      "Zoë Ångström",
			"ångström": "Zoë Ångström",
			"ÅNGSTRÖM": "Zoë Ångström",
			"émile":    "Émile Zola",
		} {
			clients, err := repo.ListClients(ctx, search)
			require.NoError(t, err, search)
			require.Equal(t, []string{want}, names(clients), search)
		}
	})

	t.Run("repeated searches agree", func(t *testing.T) {
		first, err := repo.ListClients(ctx, "an")
		require.NoError(t, err)
		second, err := repo.ListClients(ctx, "an")
		require.NoError(t, err)
		require.Equal(t, first, second)
	})

	t.Run("wildcards are literal", func(t *testing.T) {
		clients, err := repo.ListClients(ctx, "%")
		require.NoError(t, err)
		require.Equal(t, []string{"100% Club"}, names(clients))

		clients, err = repo.ListClients(ctx, "_")
		require.NoError(t, err)
		require.Equal(t, []string{"snake_case"}, names(clients))
	})

	t.Run("no match is empty", func(t *testing.T) {
		clients, err := repo.ListClients(ctx, "zzz")
		require.NoError(t, err)
		require.Empty(t, clients)
	})
}

func TestClientsUpdate(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t).Clients()

	created, err := repo.CreateClient(ctx, domain.ClientFields{
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
		Phone: ptr("555-0100"),
	})
	require.NoError(t, err)

	t.Run("only supplied fields change", func(t *testing.T) {
		updated, err := repo.UpdateClient(ctx, created.ID, domain.ClientPatch{Email: ptr("ada@analytical.engine")})
		require.NoError(t, err)
		require.Equal(t, created.ID, updated.ID)
		require.Equal(t, "Ada Lovelace", updated.Name)
		require.Equal(t, "ada@analytical.engine", updated.Email)
		require.Equal(t, created.Phone, updated.Phone)
		require.Equal(t, created.CreatedAt, updated.CreatedAt)
	})

	t.Run("empty phone clears it", func(t *testing.T) {
		updated, err := repo.UpdateClient(ctx, created.ID, domain.ClientPatch{Phone: ptr("")})
		require.NoError(t, err)
		require.Nil(t, updated.Phone)
	})

	t.Run("empty patch returns the record", func(t *testing.T) {
		before, err := repo.GetClientByID(ctx, created.ID)
		require.NoError(t, err)

		after, err := repo.UpdateClient(ctx, created.ID, domain.ClientPatch{})
		require.NoError(t, err)
		require.Equal(t, before, after)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := repo.UpdateClient(ctx, 999999, domain.ClientPatch{Name: ptr("Nobody")})
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = repo.UpdateClient(ctx, 999999, domain.ClientPatch{})
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestClientsDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t).Clients()

	created, err := repo.CreateClient(ctx, domain.ClientFields{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	deleted, err := repo.DeleteClient(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = repo.GetClientByID(ctx, created.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	deleted, err = repo.DeleteClient(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestClientsDeleteUnknownLeavesRowsAlone(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t).Clients()

	for _, name := range []string{"Ada Lovelace", "Grace Hopper", "Alan Turing"} {
		_, err := repo.CreateClient(ctx, domain.ClientFields{Name: name, Email: "x@example.com", Phone: ptr("555-0100")})
		require.NoError(t, err)
	}

	before, err := repo.ListClients(ctx, "")
	require.NoError(t, err)
	require.Len(t, before, 3)

	deleted, err := repo.DeleteClient(ctx, 999999)
	require.NoError(t, err)
	require.False(t, deleted)

	after, err := repo.ListClients(ctx, "")
	require.NoError(t, err)
	require.Equal(t, before, after)
}
