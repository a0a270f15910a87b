package model

import (
	"fmt"
	"strings"
)

// Placeholders used when the listing API omits a field.
const (
	NotSpecified        = "не указано"
	NotSpecifiedPlural  = "не указаны"
	SalaryNotSpecified  = "Зарплата не указана"
	AddressNotSpecified = "Адрес не указан"
)

// Name is the vacancy title.
type Name struct {
	Text string
}

func (n Name) String() string { return n.Text }

// Link is the human-facing vacancy URL.
type Link struct {
	URL string
}

func (l Link) String() string { return l.URL }

// Salary is a structured salary block. A vacancy without a salary block has a
// nil *Salary instead. From and To are nil when the bound is not specified;
// they are never zero.
type Salary struct {
	Gross    *bool
	Currency *string
	From     *int64
	To       *int64
}

func (s *Salary) String() string {
	if s == nil {
		return SalaryNotSpecified
	}
	currency := NotSpecified
	if s.Currency != nil {
		currency = *s.Currency
	}
	tax := "до вычета налогов"
	if s.Gross != nil && *s.Gross {
		tax = "за вычетом налогов"
	}
	return fmt.Sprintf("Заработная плата в %s %s от %s -> до %s.", currency, tax, amount(s.From), amount(s.To))
}

func amount(v *int64) string {
	if v == nil {
		return NotSpecified
	}
	return fmt.Sprintf("%d", *v)
}

// Description holds the raw snippet text. Accessors sanitize on every read,
// so the stored text is never exposed unclean.
type Description struct {
	responsibility string
	requirement    string
}

// NewDescription wraps raw snippet text. Empty strings mean "not specified".
func NewDescription(responsibility, requirement string) Description {
	return Description{responsibility: responsibility, requirement: requirement}
}

// Responsibility returns the cleaned responsibility text.
func (d Description) Responsibility() string { return cleanOrDefault(d.responsibility) }

// Requirement returns the cleaned requirement text.
func (d Description) Requirement() string { return cleanOrDefault(d.requirement) }

func (d Description) String() string {
	return d.Responsibility() + " " + d.Requirement()
}

func cleanOrDefault(s string) string {
	if s == "" {
		return NotSpecifiedPlural
	}
	if cleaned := CleanText(s); cleaned != "" {
		return cleaned
	}
	return NotSpecifiedPlural
}

// Employer is the company offering a vacancy.
type Employer struct {
	ID   string
	Name string
	URL  string
}

func (e Employer) String() string { return e.Name + " " + e.URL }

// Address is where the job is located. A vacancy without an address block has
// a nil *Address. Each part may be nil independently.
type Address struct {
	City     *string
	Street   *string
	Building *string
}

func (a *Address) String() string {
	if a == nil {
		return AddressNotSpecified
	}
	var parts []string
	for _, p := range []*string{a.City, a.Street, a.Building} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	if len(parts) == 0 {
		return AddressNotSpecified
	}
	return strings.Join(parts, ", ")
}

// Field identifies one slot of a normalized vacancy. The numeric order is the
// order in which fields are extracted from a raw record.
type Field int

const (
	FieldName Field = iota
	FieldLink
	FieldSalary
	FieldEmployer
	FieldDescription
	FieldAddress
)

// Fields lists every vacancy slot in extraction order.
var Fields = []Field{FieldName, FieldLink, FieldSalary, FieldEmployer, FieldDescription, FieldAddress}

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldLink:
		return "link"
	case FieldSalary:
		return "salary"
	case FieldEmployer:
		return "employer"
	case FieldDescription:
		return "description"
	case FieldAddress:
		return "address"
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// Vacancy is one normalized listing, built once per raw record.
type Vacancy struct {
	Name        Name
	Link        Link
	Salary      *Salary // nil: salary not specified
	Employer    Employer
	Description Description
	Address     *Address // nil: address not specified
}

// Field returns the value stored in slot f. Sentinel slots return the nil
// pointer, so callers must type-switch before reading fields.
func (v Vacancy) Field(f Field) any {
	switch f {
	case FieldName:
		return v.Name
	case FieldLink:
		return v.Link
	case FieldSalary:
		return v.Salary
	case FieldEmployer:
		return v.Employer
	case FieldDescription:
		return v.Description
	case FieldAddress:
		return v.Address
	}
	return nil
}

func (v Vacancy) String() string {
	return fmt.Sprintf("%s. %s. %s. %s. %s.", v.Name, v.Link, v.Salary, v.Description, v.Employer)
}
