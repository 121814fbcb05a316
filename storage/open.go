package storage

import (
	"commonroom/config"
	"context"
	"fmt"
	log "github.com/sirupsen/logrus"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Open connects the store selected by cfg.StoreDriver. Postgres schemas are
// migrated before the store is returned.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case DriverMongo:
		log.Infof("Connecting to mongo database %s", cfg.DatabaseName)
		return NewMongoManager(ctx, cfg.DatabaseURI, cfg.DatabaseName)
	case DriverPostgres:
		log.Info("Connecting to postgres")
		m, err := NewPostgresManager(ctx, cfg.DatabaseURI)
		if err != nil {
			return nil, err
		}
		if err = m.RunMigrations(ctx); err != nil {
			m.pool.Close()
			return nil, err
		}
		return m, nil
	case DriverMemory:
		log.Warn("Using in-memory store, data will not survive a restart")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
