package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	// Database drivers registered for OpenBunDB.
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

type StoreFactory struct {
	db *bun.DB

	webhookStateStore *WebhookStateStore
}

func NewStoreFactory() *StoreFactory {
	return &StoreFactory{}
}

// NewStoreFactoryFromClient builds the stores from a persistence client or a
// raw bun DB.
func NewStoreFactoryFromClient(persistenceClient any) (*StoreFactory, error) {
	factory := NewStoreFactory()
	if err := factory.BuildStores(persistenceClient); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *StoreFactory) BuildStores(persistenceClient any) error {
	if f == nil {
		return fmt.Errorf("sqlstore: store factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return err
		}
		f.db = db
	}
	if f.webhookStateStore != nil {
		return nil
	}

	webhookStateStore, err := NewWebhookStateStore(f.db)
	if err != nil {
		return err
	}
	f.webhookStateStore = webhookStateStore
	return nil
}

func (f *StoreFactory) WebhookStateStore() *WebhookStateStore {
	if f == nil {
		return nil
	}
	return f.webhookStateStore
}

func (f *StoreFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}

// OpenBunDB opens a bun DB for the given driver. Supported drivers are
// "sqlite3" and "postgres".
func OpenBunDB(driver, dsn string) (*bun.DB, error) {
	driver = strings.TrimSpace(strings.ToLower(driver))
	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s database: %w", driver, err)
	}
	switch driver {
	case "sqlite3":
		// Shared-cache in-memory databases need a single connection or the
		// schema vanishes between sessions.
		sqlDB.SetMaxOpenConns(1)
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	case "postgres":
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
}
