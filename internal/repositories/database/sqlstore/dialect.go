package sqlstore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/apperrors"
)

// Dialect captures the differences between the supported SQL engines.
// Queries are written with ? placeholders and rebound per dialect.
type Dialect struct {
	name string
	// numbered placeholders ($1, $2, ...) instead of ?
	numbered bool
	// suffix appended to SELECTs that must lock their rows
	lockSuffix string
	// times are stored as RFC3339 text instead of a native type
	timeAsText bool
	classify   func(error) error
}

// Postgres is the production dialect, used through the pgx stdlib driver.
var Postgres = Dialect{
	name:       "postgres",
	numbered:   true,
	lockSuffix: " FOR UPDATE",
	classify:   classifyPgError,
}

// SQLite serializes writers itself, so it needs no row locks.
var SQLite = Dialect{
	name:       "sqlite",
	timeAsText: true,
	classify:   classifySQLiteError,
}

// Name returns the dialect identifier.
func (d Dialect) Name() string {
	return d.name
}

func (d Dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) locking(query string) string {
	return query + d.lockSuffix
}

// timeArg converts a time into the value bound for this dialect.
func (d Dialect) timeArg(t time.Time) any {
	if d.timeAsText {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t.UTC()
}

func (d Dialect) nullTimeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return d.timeArg(*t)
}

// mapError translates constraint violations into sentinel errors and leaves
// everything else wrapped with op for context.
func (d Dialect) mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if sentinel := d.classify(err); sentinel != nil {
		return fmt.Errorf("%w: %s: %v", sentinel, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func classifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case "23505": // unique_violation
		return apperrors.ErrConflict
	case "23503", "23514": // foreign_key_violation, check_violation
		return apperrors.ErrValidation
	}
	return nil
}

func classifySQLiteError(err error) error {
	var sqlErr *sqlite.Error
	if !errors.As(err, &sqlErr) {
		return nil
	}
	switch sqlErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return apperrors.ErrConflict
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return apperrors.ErrValidation
	}
	return nil
}
