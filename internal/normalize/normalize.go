package normalize

import (
	"errors"
	"log/slog"

	"github.com/amishk599/hhvacancies/internal/model"
)

// Rejection records a raw record that could not be normalized.
type Rejection struct {
	Index int    // position in the fetched batch
	ID    string // listing id, empty if the record has none
	Err   error
}

// Normalize runs every extractor in field order and assembles the vacancy.
// A record either normalizes completely or returns an error.
func Normalize(raw model.RawRecord) (model.Vacancy, error) {
	var v model.Vacancy
	for _, f := range model.Fields {
		switch f {
		case model.FieldName:
			v.Name = ExtractName(raw)
		case model.FieldLink:
			v.Link = ExtractLink(raw)
		case model.FieldSalary:
			v.Salary = ExtractSalary(raw)
		case model.FieldEmployer:
			employer, err := ExtractEmployer(raw)
			if err != nil {
				return model.Vacancy{}, err
			}
			v.Employer = employer
		case model.FieldDescription:
			v.Description = ExtractDescription(raw)
		case model.FieldAddress:
			v.Address = ExtractAddress(raw)
		}
	}
	return v, nil
}

// NormalizeAll normalizes a batch, skipping records that fail. Each skipped
// record is logged and reported; output order follows input order.
func NormalizeAll(raws []model.RawRecord, logger *slog.Logger) ([]model.Vacancy, []Rejection) {
	vacancies := make([]model.Vacancy, 0, len(raws))
	var rejected []Rejection
	for i, raw := range raws {
		v, err := Normalize(raw)
		if err != nil {
			id, _ := raw.String("id")
			rejected = append(rejected, Rejection{Index: i, ID: id, Err: err})

			var missing *model.MissingEmployerError
			if errors.As(err, &missing) {
				logger.Warn("skipping vacancy without employer", "index", i, "vacancy_id", id, "error", err)
			} else {
				logger.Error("skipping vacancy", "index", i, "vacancy_id", id, "error", err)
			}
			continue
		}
		vacancies = append(vacancies, v)
	}
	return vacancies, rejected
}
