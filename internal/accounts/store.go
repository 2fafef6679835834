package accounts

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/cmgshare/internal/accounts/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavour of the credential store.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// Store is an open credential database with its repository factory.
type Store struct {
	DB      *sql.DB
	Dialect Dialect
	Repos   RepositoryFactory
}

// DialectFor picks PostgreSQL for postgres:// DSNs and SQLite otherwise.
func DialectFor(dsn string) Dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations for dialect.
func RunMigrations(ctx context.Context, db *sql.DB, dialect Dialect) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	gooseDialect := "sqlite3"
	if dialect == DialectPostgres {
		gooseDialect = "pgx"
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, string(dialect)); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

// OpenStore opens dsn, migrates it, and returns the matching repositories.
func OpenStore(ctx context.Context, dsn string) (*Store, error) {
	dialect := DialectFor(dsn)

	driver := "sqlite"
	repos := NewSQLiteRepository
	if dialect == DialectPostgres {
		driver = "pgx"
		repos = NewPostgresRepository
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if dialect == DialectSQLite {
		// One writer keeps SQLite from reporting SQLITE_BUSY under WithTx.
		db.SetMaxOpenConns(1)
	}

	if err := RunMigrations(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{DB: db, Dialect: dialect, Repos: repos}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}
