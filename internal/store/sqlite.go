package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"modernc.org/sqlite"

	"github.com/amishk599/hhvacancies/internal/model"
)

func init() {
	// lower() in SQLite only folds ASCII; titles are mostly Cyrillic.
	sqlite.MustRegisterDeterministicScalarFunction("casefold", 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case nil:
				return nil, nil
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			default:
				return v, nil
			}
		})
}

var sqliteSchema = []string{
	`DROP TABLE IF EXISTS vacancies`,
	`DROP TABLE IF EXISTS employers`,
	`CREATE TABLE employers (
		id      TEXT PRIMARY KEY,
		name    TEXT NOT NULL,
		link    TEXT,
		address TEXT
	)`,
	`CREATE TABLE vacancies (
		vacancy_id       INTEGER PRIMARY KEY AUTOINCREMENT,
		employer_id      TEXT NOT NULL REFERENCES employers(id),
		name             TEXT NOT NULL,
		link             TEXT,
		bottom_salary    INTEGER DEFAULT NULL,
		top_salary       INTEGER DEFAULT NULL,
		currency         TEXT DEFAULT NULL,
		gross            BOOLEAN DEFAULT NULL,
		responsibilities TEXT,
		requirements     TEXT
	)`,
}

// SQLiteStore keeps the vacancy database in a single SQLite file.
type SQLiteStore struct {
	db        *sql.DB
	batchSize int
}

// NewSQLiteStore opens (or creates) the SQLite database at dbPath with
// foreign keys enforced.
func NewSQLiteStore(dbPath string, batchSize int) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &SQLiteStore{db: db, batchSize: batchSize}, nil
}

func (o Options) sqlitePath() string {
	return filepath.Join(o.SQLiteDir, o.Name+".db")
}

func removeSQLiteFile(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing sqlite db %s: %w", p, err)
		}
	}
	return nil
}

// CreateSchema drops and recreates both tables.
func (s *SQLiteStore) CreateSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning schema tx: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range sqliteSchema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema: %w", err)
	}
	return nil
}

// WriteEmployers inserts all employers in one transaction. Ids already
// present are left untouched.
func (s *SQLiteStore) WriteEmployers(ctx context.Context, employers []model.EmployerRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning employers tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO employers (id, name, link, address) VALUES (?, ?, ?, ?) ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("preparing employer insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range employers {
		if _, err := stmt.ExecContext(ctx, e.ID, e.Name, e.Link, e.Address); err != nil {
			return fmt.Errorf("inserting employer %s: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing employers: %w", err)
	}
	return nil
}

// WriteVacancies inserts the batch in chunks inside a single transaction.
// Any failure, including cancellation between chunks, rolls back every row.
func (s *SQLiteStore) WriteVacancies(ctx context.Context, vacancies []model.VacancyRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning vacancies tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO vacancies
		(employer_id, name, link, bottom_salary, top_salary, currency, gross, responsibilities, requirements)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing vacancy insert: %w", err)
	}
	defer stmt.Close()

	for i, chunk := range chunks(vacancies, s.batchSize) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("writing vacancy chunk %d: %w", i, err)
		}
		for _, v := range chunk {
			_, err := stmt.ExecContext(ctx,
				v.EmployerID, v.Name, v.Link,
				nullable(v.BottomSalary), nullable(v.TopSalary), nullable(v.Currency), nullable(v.Gross),
				v.Responsibilities, v.Requirements,
			)
			if err != nil {
				return fmt.Errorf("inserting vacancy %q: %w", v.Link, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing vacancies: %w", err)
	}
	return nil
}

// CompaniesAndVacanciesCount returns the number of vacancies per employer
// name, largest first.
func (s *SQLiteStore) CompaniesAndVacanciesCount(ctx context.Context) ([]model.EmployerVacancyCount, error) {
	rows, err := s.db.QueryContext(ctx, queryCompaniesCount)
	if err != nil {
		return nil, fmt.Errorf("querying vacancies per employer: %w", err)
	}
	defer rows.Close()

	var out []model.EmployerVacancyCount
	for rows.Next() {
		var r model.EmployerVacancyCount
		if err := rows.Scan(&r.Employer, &r.Vacancies); err != nil {
			return nil, fmt.Errorf("scanning vacancies per employer: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TopSalaryVacancies returns the 15 vacancies with the highest top salary.
func (s *SQLiteStore) TopSalaryVacancies(ctx context.Context) ([]model.TopSalaryVacancy, error) {
	rows, err := s.db.QueryContext(ctx, queryTopSalaries)
	if err != nil {
		return nil, fmt.Errorf("querying top salaries: %w", err)
	}
	defer rows.Close()

	var out []model.TopSalaryVacancy
	for rows.Next() {
		var r model.TopSalaryVacancy
		var link sql.NullString
		if err := rows.Scan(&r.Employer, &r.Title, &r.TopSalary, &link); err != nil {
			return nil, fmt.Errorf("scanning top salaries: %w", err)
		}
		r.Link = link.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// AverageSalaries returns the 15 titles with the highest average top salary.
func (s *SQLiteStore) AverageSalaries(ctx context.Context) ([]model.TitleAverageSalary, error) {
	rows, err := s.db.QueryContext(ctx, sqliteQueryAverageSalaries)
	if err != nil {
		return nil, fmt.Errorf("querying average salaries: %w", err)
	}
	defer rows.Close()

	var out []model.TitleAverageSalary
	for rows.Next() {
		var r model.TitleAverageSalary
		if err := rows.Scan(&r.Title, &r.Average); err != nil {
			return nil, fmt.Errorf("scanning average salaries: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// VacanciesAboveAverage returns full rows whose top salary exceeds the
// average over all vacancies.
func (s *SQLiteStore) VacanciesAboveAverage(ctx context.Context) ([]model.StoredVacancy, error) {
	return s.queryVacancies(ctx, queryAboveAverage)
}

// VacanciesWithKeyword finds vacancies whose title contains keyword,
// ignoring case.
func (s *SQLiteStore) VacanciesWithKeyword(ctx context.Context, keyword string) ([]model.KeywordMatch, error) {
	keyword, err := normalizeKeyword(keyword)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name, link, responsibilities, requirements FROM vacancies
		WHERE instr(casefold(name), casefold(?)) > 0
		ORDER BY vacancy_id`, keyword)
	if err != nil {
		return nil, fmt.Errorf("querying vacancies by keyword: %w", err)
	}
	defer rows.Close()

	var out []model.KeywordMatch
	for rows.Next() {
		var r model.KeywordMatch
		var link, resp, req sql.NullString
		if err := rows.Scan(&r.Title, &link, &resp, &req); err != nil {
			return nil, fmt.Errorf("scanning vacancies by keyword: %w", err)
		}
		r.Link, r.Responsibilities, r.Requirements = link.String, resp.String, req.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListEmployers returns every employer ordered by id.
func (s *SQLiteStore) ListEmployers(ctx context.Context) ([]model.EmployerRow, error) {
	rows, err := s.db.QueryContext(ctx, queryListEmployers)
	if err != nil {
		return nil, fmt.Errorf("listing employers: %w", err)
	}
	defer rows.Close()

	var out []model.EmployerRow
	for rows.Next() {
		var r model.EmployerRow
		var link, address sql.NullString
		if err := rows.Scan(&r.ID, &r.Name, &link, &address); err != nil {
			return nil, fmt.Errorf("scanning employers: %w", err)
		}
		r.Link, r.Address = link.String, address.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListVacancies returns every vacancy in insertion order.
func (s *SQLiteStore) ListVacancies(ctx context.Context) ([]model.StoredVacancy, error) {
	return s.queryVacancies(ctx, queryListVacancies)
}

func (s *SQLiteStore) queryVacancies(ctx context.Context, query string) ([]model.StoredVacancy, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying vacancies: %w", err)
	}
	defer rows.Close()

	var out []model.StoredVacancy
	for rows.Next() {
		var (
			v              model.StoredVacancy
			link, currency sql.NullString
			resp, req      sql.NullString
			bottom, top    sql.NullInt64
			gross          sql.NullBool
		)
		err := rows.Scan(&v.ID, &v.EmployerID, &v.Name, &link, &bottom, &top, &currency, &gross, &resp, &req)
		if err != nil {
			return nil, fmt.Errorf("scanning vacancy: %w", err)
		}
		v.Link, v.Responsibilities, v.Requirements = link.String, resp.String, req.String
		if bottom.Valid {
			v.BottomSalary = &bottom.Int64
		}
		if top.Valid {
			v.TopSalary = &top.Int64
		}
		if currency.Valid {
			v.Currency = &currency.String
		}
		if gross.Valid {
			v.Gross = &gross.Bool
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// nullable turns a nil pointer into SQL NULL and dereferences the rest.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
