package app

import (
	"fmt"

	"github.com/klokku/pocketbudget/internal/config"
	"github.com/klokku/pocketbudget/internal/database"
	"github.com/klokku/pocketbudget/internal/utils"
	"github.com/klokku/pocketbudget/pkg/kvstore"
	log "github.com/sirupsen/logrus"
)

// OpenStorage opens and migrates the configured key-value backend. The returned close function
// releases the underlying database.
func OpenStorage(cfg config.Storage, clock utils.Clock) (kvstore.Store, func() error, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		log.Warn("Using in-memory storage, nothing will survive a restart")
		return kvstore.NewMemoryStore(), func() error { return nil }, nil

	case config.BackendSQLite:
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := database.MigrateSQLite(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Infof("Using SQLite storage at %s", cfg.SQLitePath)
		return kvstore.NewSQLiteStore(db, clock), db.Close, nil

	case config.BackendPostgres:
		if err := database.Migrate(cfg.Postgres); err != nil {
			return nil, nil, err
		}
		pool, err := database.Open(cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("Using Postgres storage at %s:%d/%s", cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.Name)
		return kvstore.NewPostgresStore(pool), func() error { pool.Close(); return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
