package ingest

import (
	"fmt"
	"log/slog"

	"github.com/amishk599/hhvacancies/internal/model"
)

// DedupKey selects which employer attribute identifies "the same employer"
// within one run.
type DedupKey string

const (
	DedupByName DedupKey = "name"
	DedupByID   DedupKey = "id"
)

// ParseDedupKey validates a dedup key from configuration. Empty means name.
func ParseDedupKey(s string) (DedupKey, error) {
	switch k := DedupKey(s); k {
	case DedupByName, DedupByID:
		return k, nil
	case "":
		return DedupByName, nil
	}
	return "", fmt.Errorf("unknown dedup key %q (want %q or %q)", s, DedupByName, DedupByID)
}

func (k DedupKey) of(e model.Employer) string {
	if k == DedupByID {
		return e.ID
	}
	return e.Name
}

// BuildRows derives the distinct employer rows and one vacancy row per
// vacancy. The first employer seen for a key wins; later vacancies sharing the
// key point at the winner's id so every foreign key resolves.
func BuildRows(vacancies []model.Vacancy, key DedupKey, logger *slog.Logger) ([]model.EmployerRow, []model.VacancyRow) {
	canonical := make(map[string]model.Employer)
	var employers []model.EmployerRow
	rows := make([]model.VacancyRow, 0, len(vacancies))

	for _, v := range vacancies {
		k := key.of(v.Employer)
		winner, ok := canonical[k]
		if !ok {
			winner = v.Employer
			canonical[k] = winner
			employers = append(employers, model.EmployerRow{
				ID:      winner.ID,
				Name:    winner.Name,
				Link:    winner.URL,
				Address: v.Address.String(),
			})
		} else if winner.ID != v.Employer.ID {
			logger.Warn("distinct employer ids collapsed under one name",
				"employer", k,
				"kept_id", winner.ID,
				"dropped_id", v.Employer.ID,
			)
		}
		rows = append(rows, vacancyRow(v, winner.ID))
	}
	return employers, rows
}

func vacancyRow(v model.Vacancy, employerID string) model.VacancyRow {
	row := model.VacancyRow{
		EmployerID:       employerID,
		Name:             v.Name.Text,
		Link:             v.Link.URL,
		Responsibilities: v.Description.Responsibility(),
		Requirements:     v.Description.Requirement(),
	}
	if v.Salary != nil {
		row.BottomSalary = v.Salary.From
		row.TopSalary = v.Salary.To
		row.Currency = v.Salary.Currency
		row.Gross = v.Salary.Gross
	}
	return row
}
