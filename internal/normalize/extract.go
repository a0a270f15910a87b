// Package normalize turns raw listing records into vacancy entities.
// Extractors are pure: they never touch the network or the store, and every
// absent field except the employer is replaced by a documented default.
package normalize

import (
	"github.com/amishk599/hhvacancies/internal/model"
)

// ExtractName returns the vacancy title, defaulting to "не указано".
func ExtractName(raw model.RawRecord) model.Name {
	if name, ok := raw.String("name"); ok {
		return model.Name{Text: name}
	}
	return model.Name{Text: model.NotSpecified}
}

// ExtractLink returns the human-facing vacancy link: alternate_url first,
// then the API url, then "не указано".
func ExtractLink(raw model.RawRecord) model.Link {
	return model.Link{URL: firstString(raw, model.NotSpecified, "alternate_url", "url")}
}

// ExtractSalary returns nil when the record has no salary block. Bounds that
// are absent, null or zero stay nil.
func ExtractSalary(raw model.RawRecord) *model.Salary {
	block, ok := raw.Object("salary")
	if !ok {
		return nil
	}
	var s model.Salary
	if gross, ok := block.Bool("gross"); ok {
		s.Gross = &gross
	}
	if currency, ok := block.String("currency"); ok {
		s.Currency = &currency
	}
	if from, ok := block.Int("from"); ok {
		s.From = &from
	}
	if to, ok := block.Int("to"); ok {
		s.To = &to
	}
	return &s
}

// ExtractDescription reads snippet.responsibility and snippet.requirement.
// Cleaning happens in the Description accessors.
func ExtractDescription(raw model.RawRecord) model.Description {
	snippet, ok := raw.Object("snippet")
	if !ok {
		return model.NewDescription("", "")
	}
	responsibility, _ := snippet.String("responsibility")
	requirement, _ := snippet.String("requirement")
	return model.NewDescription(responsibility, requirement)
}

// ExtractEmployer reads the employer block. It is the only extractor without
// a default: a record without an employer (or without an employer id) cannot
// be persisted and yields *model.MissingEmployerError.
func ExtractEmployer(raw model.RawRecord) (model.Employer, error) {
	block, ok := raw.Object("employer")
	if !ok {
		return model.Employer{}, &model.MissingEmployerError{}
	}
	id, ok := block.String("id")
	if !ok {
		return model.Employer{}, &model.MissingEmployerError{Field: "id"}
	}
	name, _ := block.String("name")
	return model.Employer{
		ID:   id,
		Name: name,
		URL:  firstString(block, "", "alternate_url", "url"),
	}, nil
}

// ExtractAddress returns nil when the record has no address block. Parts are
// left nil when absent.
func ExtractAddress(raw model.RawRecord) *model.Address {
	block, ok := raw.Object("address")
	if !ok {
		return nil
	}
	var a model.Address
	a.City = optionalString(block, "city")
	a.Street = optionalString(block, "street")
	a.Building = optionalString(block, "building")
	return &a
}

func firstString(r model.RawRecord, fallback string, keys ...string) string {
	for _, k := range keys {
		if v, ok := r.String(k); ok {
			return v
		}
	}
	return fallback
}

func optionalString(r model.RawRecord, key string) *string {
	v, ok := r.String(key)
	if !ok {
		return nil
	}
	return &v
}
