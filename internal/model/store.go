package model

import "context"

// SearchQuery selects which listings to fetch. It is passed explicitly on every
// call so repeated or concurrent runs never share request state.
type SearchQuery struct {
	Text        string
	EmployerIDs []string // optional allow-list
}

// PageFetcher fetches a single page of raw listings.
type PageFetcher interface {
	FetchPage(ctx context.Context, q SearchQuery, page int) ([]RawRecord, error)
}

// EmployerRow is one row of the employers table.
type EmployerRow struct {
	ID      string
	Name    string
	Link    string
	Address string
}

// VacancyRow is one row of the vacancies table, as written by the pipeline.
// Nil pointers are stored as NULL.
type VacancyRow struct {
	EmployerID       string
	Name             string
	Link             string
	BottomSalary     *int64
	TopSalary        *int64
	Currency         *string
	Gross            *bool
	Responsibilities string
	Requirements     string
}

// StoredVacancy is a full vacancies row read back from the store.
type StoredVacancy struct {
	ID int64
	VacancyRow
}

// EmployerVacancyCount is one line of the vacancies-per-employer report.
type EmployerVacancyCount struct {
	Employer  string
	Vacancies int
}

// TopSalaryVacancy is one line of the top-salary report.
type TopSalaryVacancy struct {
	Employer  string
	Title     string
	TopSalary int64
	Link      string
}

// TitleAverageSalary is one line of the average-salary report.
type TitleAverageSalary struct {
	Title   string
	Average float64
}

// KeywordMatch is one line of the keyword search report.
type KeywordMatch struct {
	Title            string
	Link             string
	Responsibilities string
	Requirements     string
}

// VacancyStore persists one ingestion batch. WriteEmployers must have returned
// before WriteVacancies is called for vacancies referencing those employers.
type VacancyStore interface {
	CreateSchema(ctx context.Context) error
	WriteEmployers(ctx context.Context, employers []EmployerRow) error
	WriteVacancies(ctx context.Context, vacancies []VacancyRow) error
}

// ReportReader answers the fixed read queries.
type ReportReader interface {
	CompaniesAndVacanciesCount(ctx context.Context) ([]EmployerVacancyCount, error)
	TopSalaryVacancies(ctx context.Context) ([]TopSalaryVacancy, error)
	AverageSalaries(ctx context.Context) ([]TitleAverageSalary, error)
	VacanciesAboveAverage(ctx context.Context) ([]StoredVacancy, error)
	VacanciesWithKeyword(ctx context.Context, keyword string) ([]KeywordMatch, error)
}
