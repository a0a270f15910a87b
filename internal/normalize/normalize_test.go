package normalize

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/amishk599/hhvacancies/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func raw(t *testing.T, s string) model.RawRecord {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var r model.RawRecord
	if err := dec.Decode(&r); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return r
}

func ptr[T any](v T) *T { return &v }

const fullRecord = `{
	"id": "93353083",
	"name": "Тестировщик комфорта квартир",
	"salary": {"from": 350000, "to": 450000, "currency": "RUR", "gross": false},
	"address": null,
	"url": "https://api.hh.ru/vacancies/93353083?host=hh.ru",
	"alternate_url": "https://hh.ru/vacancy/93353083",
	"employer": {
		"id": "3499705",
		"name": "Специализированный застройщик BM GROUP",
		"url": "https://api.hh.ru/employers/3499705",
		"alternate_url": "https://hh.ru/employer/3499705"
	},
	"snippet": {
		"requirement": "Уметь активно <highlighttext>танцевать</highlighttext> и громко петь.",
		"responsibility": "Оценивать вид из окна: встречать рассветы на кухне."
	}
}`

func TestNormalize_FullRecord(t *testing.T) {
	v, err := Normalize(raw(t, fullRecord))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if v.Name.Text != "Тестировщик комфорта квартир" {
		t.Errorf("Name = %q", v.Name.Text)
	}
	if v.Link.URL != "https://hh.ru/vacancy/93353083" {
		t.Errorf("Link = %q", v.Link.URL)
	}
	wantSalary := &model.Salary{
		Gross:    ptr(false),
		Currency: ptr("RUR"),
		From:     ptr(int64(350000)),
		To:       ptr(int64(450000)),
	}
	if diff := cmp.Diff(wantSalary, v.Salary); diff != "" {
		t.Errorf("Salary mismatch (-want +got):\n%s", diff)
	}
	wantEmployer := model.Employer{
		ID:   "3499705",
		Name: "Специализированный застройщик BM GROUP",
		URL:  "https://hh.ru/employer/3499705",
	}
	if diff := cmp.Diff(wantEmployer, v.Employer); diff != "" {
		t.Errorf("Employer mismatch (-want +got):\n%s", diff)
	}
	if got := v.Description.Requirement(); got != "Уметь активно танцевать и громко петь." {
		t.Errorf("Requirement = %q", got)
	}
	if v.Address != nil {
		t.Errorf("expected address sentinel (nil), got %+v", v.Address)
	}
}

func TestExtractName_Default(t *testing.T) {
	if got := ExtractName(raw(t, `{}`)); got.Text != model.NotSpecified {
		t.Errorf("Name = %q, want %q", got.Text, model.NotSpecified)
	}
}

func TestExtractLink_Fallbacks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"alternate_url preferred", `{"url": "api", "alternate_url": "web"}`, "web"},
		{"url when no alternate", `{"url": "api"}`, "api"},
		{"default", `{"alternate_url": null}`, model.NotSpecified},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractLink(raw(t, tc.input)); got.URL != tc.want {
				t.Errorf("Link = %q, want %q", got.URL, tc.want)
			}
		})
	}
}

func TestExtractSalary_MissingBlockIsSentinel(t *testing.T) {
	for _, input := range []string{`{}`, `{"salary": null}`} {
		if s := ExtractSalary(raw(t, input)); s != nil {
			t.Errorf("ExtractSalary(%s) = %+v, want nil sentinel", input, s)
		}
	}
}

func TestExtractSalary_FalsyBoundsUnspecified(t *testing.T) {
	s := ExtractSalary(raw(t, `{"salary": {"from": 0, "to": null, "currency": "USD", "gross": true}}`))
	if s == nil {
		t.Fatal("expected structured salary")
	}
	if s.From != nil {
		t.Errorf("From = %d, want unspecified", *s.From)
	}
	if s.To != nil {
		t.Errorf("To = %d, want unspecified", *s.To)
	}
	if s.Gross == nil || !*s.Gross {
		t.Errorf("Gross = %v, want true", s.Gross)
	}
}

func TestExtractDescription_DefaultsAndIdempotentReads(t *testing.T) {
	d := ExtractDescription(raw(t, `{"snippet": {"responsibility": "<b>Don't</b> panic", "requirement": null}}`))

	first := d.Responsibility()
	second := d.Responsibility()
	if first != "Don’t panic" {
		t.Errorf("Responsibility = %q", first)
	}
	if first != second {
		t.Errorf("repeated reads differ: %q vs %q", first, second)
	}
	if got := d.Requirement(); got != model.NotSpecifiedPlural {
		t.Errorf("Requirement = %q, want %q", got, model.NotSpecifiedPlural)
	}

	empty := ExtractDescription(raw(t, `{}`))
	if empty.Responsibility() != model.NotSpecifiedPlural || empty.Requirement() != model.NotSpecifiedPlural {
		t.Errorf("missing snippet = %q / %q", empty.Responsibility(), empty.Requirement())
	}
}

func TestExtractEmployer_Missing(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantField string
	}{
		{"no block", `{"name": "x"}`, ""},
		{"null block", `{"employer": null}`, ""},
		{"no id", `{"employer": {"name": "Anonymous"}}`, "id"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExtractEmployer(raw(t, tc.input))
			var missing *model.MissingEmployerError
			if !errors.As(err, &missing) {
				t.Fatalf("expected MissingEmployerError, got %v", err)
			}
			if missing.Field != tc.wantField {
				t.Errorf("Field = %q, want %q", missing.Field, tc.wantField)
			}
		})
	}
}

func TestExtractAddress(t *testing.T) {
	if a := ExtractAddress(raw(t, `{"address": null}`)); a != nil {
		t.Errorf("expected nil sentinel, got %+v", a)
	}

	a := ExtractAddress(raw(t, `{"address": {"city": "Москва", "street": null}}`))
	want := &model.Address{City: ptr("Москва")}
	if diff := cmp.Diff(want, a); diff != "" {
		t.Errorf("Address mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeAll_SkipsMissingEmployer(t *testing.T) {
	raws := []model.RawRecord{
		raw(t, fullRecord),
		raw(t, `{"id": "1", "name": "orphan"}`),
		raw(t, `{"id": "2", "name": "second", "employer": {"id": "9", "name": "Acme"}}`),
	}

	vacancies, rejected := NormalizeAll(raws, discardLogger())
	if len(vacancies) != 2 {
		t.Fatalf("expected 2 vacancies, got %d", len(vacancies))
	}
	if vacancies[1].Name.Text != "second" {
		t.Errorf("order not preserved: %q", vacancies[1].Name.Text)
	}
	if len(rejected) != 1 {
		t.Fatalf("expected 1 rejection, got %d", len(rejected))
	}
	if rejected[0].Index != 1 || rejected[0].ID != "1" {
		t.Errorf("unexpected rejection: %+v", rejected[0])
	}
	for _, v := range vacancies {
		if v.Name.Text == "orphan" {
			t.Error("rejected record leaked into output")
		}
	}
}

func TestVacancyField_PositionalAccess(t *testing.T) {
	v, err := Normalize(raw(t, fullRecord))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if name, ok := v.Field(model.FieldName).(model.Name); !ok || name != v.Name {
		t.Errorf("Field(FieldName) = %v", v.Field(model.FieldName))
	}
	if addr, ok := v.Field(model.FieldAddress).(*model.Address); !ok || addr != nil {
		t.Errorf("Field(FieldAddress) = %v, want nil *Address", v.Field(model.FieldAddress))
	}
}
