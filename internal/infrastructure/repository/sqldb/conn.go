package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	qb "github.com/riskibarqy/gaa-fixtures/internal/platform/querybuilder"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// Conn is a database handle plus the placeholder style its driver expects.
type Conn struct {
	db      *sqlx.DB
	dialect Dialect
}

func NewConn(db *sqlx.DB, dialect Dialect) *Conn {
	return &Conn{db: db, dialect: dialect}
}

func (c *Conn) DB() *sqlx.DB {
	return c.db
}

func (c *Conn) Dialect() Dialect {
	return c.dialect
}

func (c *Conn) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", c.dialect, err)
	}
	return nil
}

func (c *Conn) Close() error {
	return c.db.Close()
}

func (c *Conn) rebind(query string) string {
	if c.dialect == DialectSQLite {
		return qb.ToQuestion(query)
	}
	return query
}

func (c *Conn) selectContext(ctx context.Context, dest any, query string, args ...any) error {
	return c.db.SelectContext(ctx, dest, c.rebind(query), args...)
}

func (c *Conn) getContext(ctx context.Context, dest any, query string, args ...any) error {
	return c.db.GetContext(ctx, dest, c.rebind(query), args...)
}

func (c *Conn) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.db.ExecContext(ctx, c.rebind(query), args...)
}

func (c *Conn) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullMillis(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(t), Valid: true}
}

func fromNullMillis(v sql.NullInt64) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return fromMillis(v.Int64)
}

func nullMinute(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func fromNullMinute(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	m := int(v.Int64)
	return &m
}
