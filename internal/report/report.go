// Package report turns the fixed store queries into printable output, either
// as one line per row or as a table.
package report

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/amishk599/hhvacancies/internal/model"
)

// Result is the rendered output of one report.
type Result struct {
	Header table.Row
	Rows   []table.Row
	Lines  []string
}

// Report is one of the fixed queries.
type Report struct {
	ID           string
	Slug         string
	Title        string
	NeedsKeyword bool
	run          func(ctx context.Context, r model.ReportReader, keyword string) (Result, error)
}

// Run executes the report against r. keyword is ignored unless NeedsKeyword.
func (rep Report) Run(ctx context.Context, r model.ReportReader, keyword string) (Result, error) {
	res, err := rep.run(ctx, r, keyword)
	if err != nil {
		return Result{}, fmt.Errorf("report %s: %w", rep.Slug, err)
	}
	return res, nil
}

// Reports lists the fixed reports in menu order.
var Reports = []Report{
	{ID: "1", Slug: "companies", Title: "Список вакансий для каждой компании", run: companies},
	{ID: "2", Slug: "top", Title: "Список вакансий с самой высокой зарплатой", run: topSalaries},
	{ID: "3", Slug: "average", Title: "Средняя зарплата по должностям", run: averageSalaries},
	{ID: "4", Slug: "above-average", Title: "Список вакансий с зарплатой выше средней", run: aboveAverage},
	{ID: "5", Slug: "keyword", Title: "Список вакансий с ключевым словом", NeedsKeyword: true, run: withKeyword},
}

// Lookup finds a report by id ("1"…"5") or slug.
func Lookup(idOrSlug string) (Report, bool) {
	for _, r := range Reports {
		if r.ID == idOrSlug || r.Slug == idOrSlug {
			return r, true
		}
	}
	return Report{}, false
}

// Render writes res to w as plain lines, or as a rounded table when asTable
// is set. An empty result prints a single notice.
func Render(w io.Writer, res Result, asTable bool) {
	if len(res.Lines) == 0 {
		fmt.Fprintln(w, "Нет данных")
		return
	}
	if !asTable {
		for _, line := range res.Lines {
			fmt.Fprintln(w, line)
		}
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(res.Header)
	t.AppendRows(res.Rows)
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func companies(ctx context.Context, r model.ReportReader, _ string) (Result, error) {
	rows, err := r.CompaniesAndVacanciesCount(ctx)
	if err != nil {
		return Result{}, err
	}
	res := Result{Header: table.Row{"Компания", "Вакансий"}}
	for _, row := range rows {
		res.Rows = append(res.Rows, table.Row{row.Employer, row.Vacancies})
		res.Lines = append(res.Lines, fmt.Sprintf("Компания: %s, количество вакансий: %d", row.Employer, row.Vacancies))
	}
	return res, nil
}

func topSalaries(ctx context.Context, r model.ReportReader, _ string) (Result, error) {
	rows, err := r.TopSalaryVacancies(ctx)
	if err != nil {
		return Result{}, err
	}
	res := Result{Header: table.Row{"Компания", "Должность", "Зарплата до", "Ссылка"}}
	for _, row := range rows {
		res.Rows = append(res.Rows, table.Row{row.Employer, row.Title, row.TopSalary, row.Link})
		res.Lines = append(res.Lines, fmt.Sprintf("Компания: %s, Должность %s, Зарплата до: %d, Ссылка: %s",
			row.Employer, row.Title, row.TopSalary, row.Link))
	}
	return res, nil
}

func averageSalaries(ctx context.Context, r model.ReportReader, _ string) (Result, error) {
	rows, err := r.AverageSalaries(ctx)
	if err != nil {
		return Result{}, err
	}
	res := Result{Header: table.Row{"Должность", "Средняя зарплата"}}
	for _, row := range rows {
		avg := strconv.FormatFloat(row.Average, 'f', 2, 64)
		res.Rows = append(res.Rows, table.Row{row.Title, avg})
		res.Lines = append(res.Lines, fmt.Sprintf("Должность: %s, Средняя зарплата: %s", row.Title, avg))
	}
	return res, nil
}

func aboveAverage(ctx context.Context, r model.ReportReader, _ string) (Result, error) {
	rows, err := r.VacanciesAboveAverage(ctx)
	if err != nil {
		return Result{}, err
	}
	res := Result{Header: table.Row{
		"id", "employer_id", "Должность", "Ссылка", "Зарплата от", "Зарплата до",
		"Валюта", "До вычета налогов", "Обязанности", "Требования",
	}}
	for _, v := range rows {
		bottom, top := optionalInt(v.BottomSalary), optionalInt(v.TopSalary)
		currency, gross := optionalString(v.Currency), optionalBool(v.Gross)
		res.Rows = append(res.Rows, table.Row{
			v.ID, v.EmployerID, v.Name, v.Link, bottom, top, currency, gross, v.Responsibilities, v.Requirements,
		})
		res.Lines = append(res.Lines, fmt.Sprintf(
			"id: %d, employer_id: %s, Должность: %s, Ссылка: %s, Зарплата от %s до %s, Валюта: %s, До вычета налогов: %s, Обязанности: %s, Требования: %s",
			v.ID, v.EmployerID, v.Name, v.Link, bottom, top, currency, gross, v.Responsibilities, v.Requirements,
		))
	}
	return res, nil
}

func withKeyword(ctx context.Context, r model.ReportReader, keyword string) (Result, error) {
	rows, err := r.VacanciesWithKeyword(ctx, keyword)
	if err != nil {
		return Result{}, err
	}
	res := Result{Header: table.Row{"Должность", "Ссылка", "Обязанности", "Требования"}}
	for _, row := range rows {
		res.Rows = append(res.Rows, table.Row{row.Title, row.Link, row.Responsibilities, row.Requirements})
		res.Lines = append(res.Lines, fmt.Sprintf("Должность: %s, Ссылка: %s, Обязанности: %s, Требования: %s",
			row.Title, row.Link, row.Responsibilities, row.Requirements))
	}
	return res, nil
}

func optionalInt(v *int64) string {
	if v == nil {
		return model.NotSpecified
	}
	return strconv.FormatInt(*v, 10)
}

func optionalString(v *string) string {
	if v == nil {
		return model.NotSpecified
	}
	return *v
}

// optionalBool renders the gross flag: "да" when the salary is before tax.
func optionalBool(v *bool) string {
	switch {
	case v == nil:
		return model.NotSpecified
	case *v:
		return "да"
	default:
		return "нет"
	}
}
