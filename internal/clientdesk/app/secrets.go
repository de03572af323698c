package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	KeyringService = "clientdesk"
	KeyringKey     = "database-url"

	// DefaultSQLitePath is used when no database URL is configured. A local
	// SQLite file needs no credentials.
	DefaultSQLitePath = "clientdesk.db"
)

// SecretSource records where the database URL came from. Only the source is
// ever logged, never the URL.
type SecretSource string

const (
	SourceEnv     SecretSource = "env"
	SourceFile    SecretSource = "file"
	SourceKeyring SecretSource = "keyring"
	SourceDefault SecretSource = "default"
)

// ResolveDatabaseURL finds the connection string, in order: DATABASE_URL,
// the file named by DATABASE_URL_FILE, the OS keyring, then a local SQLite
// file. An unreachable keyring (e.g. no secret service in a container) is
// treated like an empty one.
func ResolveDatabaseURL() (string, SecretSource, error) {
	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		return dsn, SourceEnv, nil
	}

	if path := os.Getenv("DATABASE_URL_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", "", fmt.Errorf("read DATABASE_URL_FILE: %w", err)
		}
		dsn := strings.TrimSpace(string(data))
		if dsn == "" {
			return "", "", fmt.Errorf("DATABASE_URL_FILE %s is empty", path)
		}
		return dsn, SourceFile, nil
	}

	if dsn, err := keyring.Get(KeyringService, KeyringKey); err == nil && strings.TrimSpace(dsn) != "" {
		return strings.TrimSpace(dsn), SourceKeyring, nil
	}

	return DefaultSQLitePath, SourceDefault, nil
}

// StoreDatabaseURL saves dsn in the OS keyring.
func StoreDatabaseURL(dsn string) error {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return errors.New("database url cannot be empty")
	}
	if _, err := DriverFor(dsn); err != nil {
		return err
	}

	if err := keyring.Set(KeyringService, KeyringKey, dsn); err != nil {
		return fmt.Errorf("failed to store database url in keyring: %w", err)
	}
	return nil
}

// DeleteDatabaseURL removes the keyring entry. Deleting a missing entry is
// not an error.
func DeleteDatabaseURL() error {
	err := keyring.Delete(KeyringService, KeyringKey)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete database url from keyring: %w", err)
	}
	return nil
}

// Driver names a store implementation.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// DriverFor picks the store driver from the DSN scheme. Anything without a
// scheme is taken as a SQLite file path.
func DriverFor(dsn string) (Driver, error) {
	scheme, _, found := strings.Cut(dsn, "://")
	if !found {
		return DriverSQLite, nil
	}

	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return DriverPostgres, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database scheme %q", scheme)
	}
}
