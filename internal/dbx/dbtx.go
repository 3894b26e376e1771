// Package dbx provides tiny DB helpers shared by repositories: opening a
// GORM handle for the supported drivers and running a function inside a
// transaction.
package dbx

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// Typical use:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx *gorm.DB) error {
//	    // use tx instead of db
//	    return repos.Users(tx).RotateRefreshSession(ctx, ...)
//	})
func WithTx(ctx context.Context, db *gorm.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx *gorm.DB) error) (err error) {
	tx := db.WithContext(ctx).Begin(opts)
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit().Error
	}()

	err = fn(ctx, tx)
	return err
}
