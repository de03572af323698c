package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/domain"
)

var ErrNotFound = errors.New("store: not found")

// ListLimit is the hard cap on rows returned by ListClients.
const ListLimit = 100

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this and own the connection pool behind it.
type Store interface {
	Clients() Clients

	ApplyMigrations() error

	// Close releases the connection pool.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Clients interface {
	// ListClients returns at most ListLimit clients, newest first. A non-empty
	// search keeps only clients whose name contains it, ignoring case.
	ListClients(ctx context.Context, search string) ([]domain.Client, error)

	// GetClientByID returns ErrNotFound when no row matches.
	GetClientByID(ctx context.Context, id int64) (domain.Client, error)

	// CreateClient inserts a row and returns it with the generated id and created_at.
	CreateClient(ctx context.Context, f domain.ClientFields) (domain.Client, error)

	// UpdateClient applies the supplied fields only. An empty patch returns
	// the current row unchanged. ErrNotFound when no row matches.
	UpdateClient(ctx context.Context, id int64, p domain.ClientPatch) (domain.Client, error)

	// DeleteClient reports whether a row was removed.
	DeleteClient(ctx context.Context, id int64) (bool, error)
}

// PoolOptions tunes the database/sql connection pool owned by a driver.
// Zero values keep the database/sql defaults.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// LikePattern turns a search term into a LIKE pattern that matches the term
// as a literal substring. Wildcards in the term are escaped with a backslash,
// so queries must use ESCAPE '\'.
func LikePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(search) + "%"
}
