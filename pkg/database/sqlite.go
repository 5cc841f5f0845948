package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/repositories/database/sqlstore"
)

// OpenSQLite opens (creating if needed) a SQLite database file and bootstraps the schema.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}
	return openSQLite(ctx, "file:"+path)
}

// OpenSQLiteInMemory opens a private in-memory database. Connections opened
// with the same name share it.
func OpenSQLiteInMemory(ctx context.Context, name string) (*sql.DB, error) {
	return openSQLite(ctx, "file:"+url.PathEscape(name)+"?mode=memory&cache=shared")
}

func openSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection keeps transactions serialized
	// instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if err := sqlstore.Bootstrap(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	slog.Debug("Opened SQLite database", slog.String("dsn", dsn))
	return db, nil
}

func withPragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
