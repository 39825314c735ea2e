package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Get when no value is stored under the key.
	ErrNotFound = errors.New("key not found")
	// ErrQuotaExceeded is returned by Set when a value does not fit the store.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Store is a string key-value store holding whole-value blobs. Set always
// replaces the previous value.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and configures a Store backend.
type Options struct {
	Driver         string
	Path           string // sqlite: directory holding store.db
	DSN            string // postgres
	MigrationsPath string // postgres
}

// Open creates the Store named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverMemory:
		return NewMemoryStore(0), nil
	case DriverSQLite, "":
		return OpenSQLite(opts.Path)
	case DriverPostgres:
		if err := RunMigrations(opts.DSN, opts.MigrationsPath); err != nil {
			return nil, err
		}
		return NewPostgres(ctx, opts.DSN)
	}
	return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
}
