// Package menu is the interactive report session: pick a report, enter a
// keyword when the report needs one, see the result, repeat until quit.
package menu

import (
	"context"
	"fmt"
	"io"

	"github.com/amishk599/hhvacancies/internal/model"
	"github.com/amishk599/hhvacancies/internal/report"
)

// Session holds the terminal prompts used by Run. The prompt fields default
// to the bubbletea programs in this package.
type Session struct {
	reader  model.ReportReader
	out     io.Writer
	asTable bool

	pick   func(reports []report.Report) (int, error)
	prompt func(title string) (string, bool, error)
	load   func(ctx context.Context, title string, fn func(ctx context.Context) (report.Result, error)) (report.Result, error)
}

// NewSession creates a session over reader. Results are written to out.
func NewSession(reader model.ReportReader, out io.Writer, asTable bool) *Session {
	return &Session{
		reader:  reader,
		out:     out,
		asTable: asTable,
		pick:    RunReportPicker,
		prompt:  RunKeywordPrompt,
		load:    RunLoader,
	}
}

// Run loops until the user quits or ctx is cancelled. Query errors are
// printed and the session continues; only terminal failures are returned.
func (s *Session) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		idx, err := s.pick(report.Reports)
		if err != nil {
			return fmt.Errorf("report picker: %w", err)
		}
		if idx < 0 || idx >= len(report.Reports) {
			return nil
		}
		rep := report.Reports[idx]

		var keyword string
		if rep.NeedsKeyword {
			kw, ok, err := s.prompt(rep.Title)
			if err != nil {
				return fmt.Errorf("keyword prompt: %w", err)
			}
			if !ok {
				continue
			}
			keyword = kw
		}

		res, err := s.load(ctx, rep.Title, func(ctx context.Context) (report.Result, error) {
			return rep.Run(ctx, s.reader, keyword)
		})
		if err != nil {
			fmt.Fprintf(s.out, "Ошибка: %v\n", err)
			continue
		}
		report.Render(s.out, res, s.asTable)
	}
	return nil
}
