// Package store persists employers and vacancies and answers the fixed
// reports. SQLite and PostgreSQL backends share one schema; NopStore backs
// dry runs.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amishk599/hhvacancies/internal/model"
)

// DefaultBatchSize is the number of vacancy rows sent per chunk.
const DefaultBatchSize = 500

// ErrEmptyKeyword is returned by keyword search for a blank keyword.
var ErrEmptyKeyword = errors.New("keyword must not be empty")

// Store is a full backend: batch writes, report reads and inspection.
type Store interface {
	model.VacancyStore
	model.ReportReader
	ListEmployers(ctx context.Context) ([]model.EmployerRow, error)
	ListVacancies(ctx context.Context) ([]model.StoredVacancy, error)
	Close() error
}

// Driver selects the database backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ParseDriver validates a driver name from configuration.
func ParseDriver(s string) (Driver, error) {
	switch d := Driver(strings.ToLower(s)); d {
	case DriverSQLite, DriverPostgres:
		return d, nil
	}
	return "", fmt.Errorf("unknown database driver %q (want %q or %q)", s, DriverSQLite, DriverPostgres)
}

// Options describes how to reach the database.
type Options struct {
	Driver    Driver
	Name      string // database name; for SQLite the file is <SQLiteDir>/<Name>.db
	Host      string
	Port      int
	User      string
	Password  string
	SSLMode   string
	SQLiteDir string
	BatchSize int
}

// Open connects to the configured backend. When recreate is set the named
// database is dropped and created empty first; the caller still has to call
// CreateSchema.
func Open(ctx context.Context, opts Options, recreate bool) (Store, error) {
	if opts.Name == "" {
		return nil, errors.New("database name is required")
	}
	switch opts.Driver {
	case DriverSQLite:
		path := opts.sqlitePath()
		if recreate {
			if err := removeSQLiteFile(path); err != nil {
				return nil, err
			}
		}
		return NewSQLiteStore(path, opts.BatchSize)
	case DriverPostgres:
		if recreate {
			if err := RecreateDatabase(ctx, opts); err != nil {
				return nil, err
			}
		}
		return NewPostgresStore(ctx, opts.postgresDSN(opts.Name), opts.BatchSize)
	default:
		return nil, fmt.Errorf("unknown database driver %q", opts.Driver)
	}
}

// chunks splits rows into consecutive slices of at most size elements.
func chunks[T any](rows []T, size int) [][]T {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][]T
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		out = append(out, rows[start:end])
	}
	return out
}

func normalizeKeyword(keyword string) (string, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return "", ErrEmptyKeyword
	}
	return keyword, nil
}
