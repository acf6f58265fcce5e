// internal/store/store.go
//
// Keyed byte storage for persisted progress records.
//
// The progress tracker serialises records to JSON itself; a Store only moves
// opaque blobs by key, the way browser localStorage would. Engines:
//   - memory:   process-local map (tests, ephemeral play).
//   - json:     one JSON file on disk.
//   - sqlite:   SQLite via mattn/go-sqlite3 (default).
//   - postgres: Postgres via lib/pq.
//   - dynamodb: AWS DynamoDB table with a string "key" partition key.

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Load for keys with no stored value.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for progress blobs.
type Store interface {
	// Load returns the value stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save stores data under key, replacing any previous value.
	Save(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

const (
	EngineMemory   = "memory"
	EngineJSON     = "json"
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"
	EngineDynamoDB = "dynamodb"
)

// Options selects and configures an engine.
type Options struct {
	Engine string
	Path   string // json file or sqlite database path
	DSN    string // postgres connection string
	Table  string // dynamodb table name
	Region string // dynamodb region (empty: SDK default chain)
}

// Open builds the Store selected by opts.Engine. Callers should close the
// result when it implements io.Closer.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Engine)) {
	case EngineMemory:
		return NewMemoryStore(), nil
	case EngineJSON:
		return NewJSONStore(opts.Path)
	case "", EngineSQLite:
		return NewSQLiteStore(opts.Path)
	case EnginePostgres:
		return NewPostgresStore(ctx, opts.DSN)
	case EngineDynamoDB:
		return NewDynamoStore(ctx, opts.Table, opts.Region)
	default:
		return nil, fmt.Errorf("unsupported store engine: %q", opts.Engine)
	}
}

// Engines lists the accepted engine names.
func Engines() []string {
	return []string{EngineMemory, EngineJSON, EngineSQLite, EnginePostgres, EngineDynamoDB}
}
