// Package gormtx binds gorm calls to a database/sql transaction opened by a
// service, so repositories and raw SQL collaborators share one tx.
package gormtx

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Conn returns db scoped to ctx. When tx is non-nil every statement built from
// the returned handle runs on tx.
func Conn(ctx context.Context, db *gorm.DB, tx *sql.Tx) *gorm.DB {
	conn := db.WithContext(ctx)
	if tx != nil {
		conn.Statement.ConnPool = tx
	}
	return conn
}
