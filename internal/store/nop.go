package store

import (
	"context"

	"github.com/amishk599/hhvacancies/internal/model"
)

// NopStore is used in dry-run mode. Writes are counted but discarded and every
// report is empty.
type NopStore struct {
	Employers int
	Vacancies int
}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) CreateSchema(context.Context) error { return nil }

func (s *NopStore) WriteEmployers(_ context.Context, employers []model.EmployerRow) error {
	s.Employers += len(employers)
	return nil
}

func (s *NopStore) WriteVacancies(_ context.Context, vacancies []model.VacancyRow) error {
	s.Vacancies += len(vacancies)
	return nil
}

func (s *NopStore) CompaniesAndVacanciesCount(context.Context) ([]model.EmployerVacancyCount, error) {
	return nil, nil
}
func (s *NopStore) TopSalaryVacancies(context.Context) ([]model.TopSalaryVacancy, error) {
	return nil, nil
}
func (s *NopStore) AverageSalaries(context.Context) ([]model.TitleAverageSalary, error) {
	return nil, nil
}
func (s *NopStore) VacanciesAboveAverage(context.Context) ([]model.StoredVacancy, error) {
	return nil, nil
}
func (s *NopStore) VacanciesWithKeyword(_ context.Context, keyword string) ([]model.KeywordMatch, error) {
	if _, err := normalizeKeyword(keyword); err != nil {
		return nil, err
	}
	return nil, nil
}
func (s *NopStore) ListEmployers(context.Context) ([]model.EmployerRow, error)   { return nil, nil }
func (s *NopStore) ListVacancies(context.Context) ([]model.StoredVacancy, error) { return nil, nil }
func (s *NopStore) Close() error                                                 { return nil }

var (
	_ Store = (*NopStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
