package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/eventhub/internal/server/models"
	"gorm.io/gorm"
)

// SQLiteRepositoryManager derives the schema from the models with
// AutoMigrate. Used for local development and tests.
type SQLiteRepositoryManager struct {
	gormRepositories
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func NewSQLiteRepositoryManager() RepositoryManager {
	return &SQLiteRepositoryManager{}
}
