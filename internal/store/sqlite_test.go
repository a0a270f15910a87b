package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amishk599/hhvacancies/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath, 2)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.CreateSchema(context.Background()))
	return s
}

func TestSQLiteStore(t *testing.T) {
	exerciseStore(t, newTestStore(t))
}

func TestSQLiteStore_ForeignKeysEnforced(t *testing.T) {
	s := newTestStore(t)
	err := s.WriteVacancies(context.Background(), []model.VacancyRow{{EmployerID: "missing", Name: "x"}})
	require.Error(t, err)
}

func TestOpen_SQLiteRecreate(t *testing.T) {
	ctx := context.Background()
	opts := Options{Driver: DriverSQLite, Name: "hh", SQLiteDir: filepath.Join(t.TempDir(), "data")}

	s, err := Open(ctx, opts, true)
	require.NoError(t, err)
	require.NoError(t, s.CreateSchema(ctx))
	seed(t, s)
	require.NoError(t, s.Close())

	_, err = os.Stat(filepath.Join(opts.SQLiteDir, "hh.db"))
	require.NoError(t, err)

	// Reopening without recreate keeps the data.
	s, err = Open(ctx, opts, false)
	require.NoError(t, err)
	got, err := s.ListEmployers(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NoError(t, s.Close())

	// Recreate starts from an empty file with no tables.
	s, err = Open(ctx, opts, true)
	require.NoError(t, err)
	defer s.Close()
	_, err = s.ListEmployers(ctx)
	require.Error(t, err)
}

func TestOpen_RequiresName(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: DriverSQLite}, false)
	require.Error(t, err)
}
