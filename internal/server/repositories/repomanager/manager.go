// Package repomanager vends GORM-backed repositories bound to a handle (the
// root *gorm.DB or a transaction) and prepares the schema for the configured
// database driver.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/eventhub/internal/dbx"
	"github.com/dmitrijs2005/eventhub/internal/server/config"
	"github.com/dmitrijs2005/eventhub/internal/server/repositories/events"
	"github.com/dmitrijs2005/eventhub/internal/server/repositories/registrations"
	"github.com/dmitrijs2005/eventhub/internal/server/repositories/users"
	"gorm.io/gorm"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *gorm.DB) error
	Users(db *gorm.DB) users.Repository
	Events(db *gorm.DB) events.Repository
	Registrations(db *gorm.DB) registrations.Repository
}

// gormRepositories is shared by every driver: repository code is dialect-free.
type gormRepositories struct{}

func (gormRepositories) Users(db *gorm.DB) users.Repository {
	return users.NewGormRepository(db)
}

func (gormRepositories) Events(db *gorm.DB) events.Repository {
	return events.NewGormRepository(db)
}

func (gormRepositories) Registrations(db *gorm.DB) registrations.Repository {
	return registrations.NewGormRepository(db)
}

// Open connects to the configured database and returns the matching manager.
func Open(driver, dsn string) (*gorm.DB, RepositoryManager, error) {
	switch driver {
	case config.DriverPostgres:
		db, _, err := dbx.OpenPostgres(dsn)
		if err != nil {
			return nil, nil, err
		}
		return db, NewPostgresRepositoryManager(), nil
	case config.DriverSQLite:
		db, err := dbx.OpenSQLite(dsn)
		if err != nil {
			return nil, nil, err
		}
		return db, NewSQLiteRepositoryManager(), nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
