package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amishk599/hhvacancies/internal/model"
)

// maintenanceDB is the database used to drop and create the target database.
const maintenanceDB = "postgres"

var postgresSchema = []string{
	`DROP TABLE IF EXISTS vacancies`,
	`DROP TABLE IF EXISTS employers`,
	`CREATE TABLE employers (
		id      TEXT PRIMARY KEY,
		name    TEXT NOT NULL,
		link    TEXT,
		address TEXT
	)`,
	`CREATE TABLE vacancies (
		vacancy_id       SERIAL PRIMARY KEY,
		employer_id      TEXT NOT NULL,
		name             TEXT NOT NULL,
		link             TEXT,
		bottom_salary    BIGINT DEFAULT NULL,
		top_salary       BIGINT DEFAULT NULL,
		currency         VARCHAR(10) DEFAULT NULL,
		gross            BOOLEAN DEFAULT NULL,
		responsibilities TEXT,
		requirements     TEXT,
		CONSTRAINT fk_employer_id FOREIGN KEY (employer_id) REFERENCES employers(id)
	)`,
}

// PostgresStore keeps the vacancy database in PostgreSQL.
type PostgresStore struct {
	pool      *pgxpool.Pool
	batchSize int
}

// NewPostgresStore creates and verifies a connection pool for dsn.
func NewPostgresStore(ctx context.Context, dsn string, batchSize int) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &PostgresStore{pool: pool, batchSize: batchSize}, nil
}

func (o Options) postgresDSN(database string) string {
	port := o.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(o.Host, strconv.Itoa(port)),
		Path:   "/" + database,
	}
	if o.User != "" {
		u.User = url.UserPassword(o.User, o.Password)
	}
	if o.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {o.SSLMode}}.Encode()
	}
	return u.String()
}

// RecreateDatabase drops the database named in opts, if it exists, and
// creates it empty. It connects through the maintenance database.
func RecreateDatabase(ctx context.Context, opts Options) error {
	conn, err := pgx.Connect(ctx, opts.postgresDSN(maintenanceDB))
	if err != nil {
		return fmt.Errorf("connecting to %s database: %w", maintenanceDB, err)
	}
	defer conn.Close(ctx)

	name := pgx.Identifier{opts.Name}.Sanitize()
	if _, err := conn.Exec(ctx, "DROP DATABASE IF EXISTS "+name); err != nil {
		return fmt.Errorf("dropping database %s: %w", opts.Name, err)
	}
	if _, err := conn.Exec(ctx, "CREATE DATABASE "+name); err != nil {
		return fmt.Errorf("creating database %s: %w", opts.Name, err)
	}
	return nil
}

// CreateSchema drops and recreates both tables.
func (s *PostgresStore) CreateSchema(ctx context.Context) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, stmt := range postgresSchema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("creating schema: %w", err)
			}
		}
		return nil
	})
}

// WriteEmployers inserts all employers as one batch in one transaction.
func (s *PostgresStore) WriteEmployers(ctx context.Context, employers []model.EmployerRow) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, e := range employers {
			batch.Queue(`INSERT INTO employers (id, name, link, address) VALUES ($1, $2, $3, $4)
				ON CONFLICT (id) DO NOTHING`, e.ID, e.Name, e.Link, e.Address)
		}
		if err := execBatch(ctx, tx, batch); err != nil {
			return fmt.Errorf("inserting employers: %w", err)
		}
		return nil
	})
}

// WriteVacancies sends the rows in chunked batches inside one transaction.
// Any failure, including cancellation between chunks, rolls back every row.
func (s *PostgresStore) WriteVacancies(ctx context.Context, vacancies []model.VacancyRow) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for i, chunk := range chunks(vacancies, s.batchSize) {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("writing vacancy chunk %d: %w", i, err)
			}
			batch := &pgx.Batch{}
			for _, v := range chunk {
				batch.Queue(`INSERT INTO vacancies
					(employer_id, name, link, bottom_salary, top_salary, currency, gross, responsibilities, requirements)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
					v.EmployerID, v.Name, v.Link, v.BottomSalary, v.TopSalary, v.Currency, v.Gross,
					v.Responsibilities, v.Requirements)
			}
			if err := execBatch(ctx, tx, batch); err != nil {
				return fmt.Errorf("inserting vacancy chunk %d: %w", i, err)
			}
		}
		return nil
	})
}

func execBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return errors.Join(err, br.Close())
		}
	}
	return br.Close()
}

// CompaniesAndVacanciesCount returns the number of vacancies per employer
// name, largest first.
func (s *PostgresStore) CompaniesAndVacanciesCount(ctx context.Context) ([]model.EmployerVacancyCount, error) {
	rows, err := s.pool.Query(ctx, queryCompaniesCount)
	if err != nil {
		return nil, fmt.Errorf("querying vacancies per employer: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.EmployerVacancyCount])
	if err != nil {
		return nil, fmt.Errorf("scanning vacancies per employer: %w", err)
	}
	return out, nil
}

// TopSalaryVacancies returns the 15 vacancies with the highest top salary.
func (s *PostgresStore) TopSalaryVacancies(ctx context.Context) ([]model.TopSalaryVacancy, error) {
	rows, err := s.pool.Query(ctx, queryTopSalaries)
	if err != nil {
		return nil, fmt.Errorf("querying top salaries: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.TopSalaryVacancy, error) {
		var r model.TopSalaryVacancy
		var link *string
		err := row.Scan(&r.Employer, &r.Title, &r.TopSalary, &link)
		if link != nil {
			r.Link = *link
		}
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning top salaries: %w", err)
	}
	return out, nil
}

// AverageSalaries returns the 15 titles with the highest average top salary.
func (s *PostgresStore) AverageSalaries(ctx context.Context) ([]model.TitleAverageSalary, error) {
	rows, err := s.pool.Query(ctx, postgresQueryAverageSalaries)
	if err != nil {
		return nil, fmt.Errorf("querying average salaries: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.TitleAverageSalary])
	if err != nil {
		return nil, fmt.Errorf("scanning average salaries: %w", err)
	}
	return out, nil
}

// VacanciesAboveAverage returns full rows whose top salary exceeds the
// average over all vacancies.
func (s *PostgresStore) VacanciesAboveAverage(ctx context.Context) ([]model.StoredVacancy, error) {
	return s.queryVacancies(ctx, queryAboveAverage)
}

// VacanciesWithKeyword finds vacancies whose title contains keyword,
// ignoring case. Folding uses the ICU root collation so Cyrillic titles match
// even in databases created with the C locale.
func (s *PostgresStore) VacanciesWithKeyword(ctx context.Context, keyword string) ([]model.KeywordMatch, error) {
	keyword, err := normalizeKeyword(keyword)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `SELECT name, COALESCE(link, ''), COALESCE(responsibilities, ''), COALESCE(requirements, '')
		FROM vacancies
		WHERE strpos(lower(name COLLATE "und-x-icu"), lower($1::text COLLATE "und-x-icu")) > 0
		ORDER BY vacancy_id`, keyword)
	if err != nil {
		return nil, fmt.Errorf("querying vacancies by keyword: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.KeywordMatch])
	if err != nil {
		return nil, fmt.Errorf("scanning vacancies by keyword: %w", err)
	}
	return out, nil
}

// ListEmployers returns every employer ordered by id.
func (s *PostgresStore) ListEmployers(ctx context.Context) ([]model.EmployerRow, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, COALESCE(link, ''), COALESCE(address, '') FROM employers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing employers: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.EmployerRow])
	if err != nil {
		return nil, fmt.Errorf("scanning employers: %w", err)
	}
	return out, nil
}

// ListVacancies returns every vacancy in insertion order.
func (s *PostgresStore) ListVacancies(ctx context.Context) ([]model.StoredVacancy, error) {
	return s.queryVacancies(ctx, queryListVacancies)
}

func (s *PostgresStore) queryVacancies(ctx context.Context, query string) ([]model.StoredVacancy, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying vacancies: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.StoredVacancy, error) {
		var v model.StoredVacancy
		var link, resp, req *string
		err := row.Scan(&v.ID, &v.EmployerID, &v.Name, &link, &v.BottomSalary, &v.TopSalary,
			&v.Currency, &v.Gross, &resp, &req)
		v.Link, v.Responsibilities, v.Requirements = deref(link), deref(resp), deref(req)
		return v, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning vacancies: %w", err)
	}
	return out, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
