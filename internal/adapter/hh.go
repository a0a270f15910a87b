package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/amishk599/hhvacancies/internal/model"
)

const (
	hhBaseURL          = "https://api.hh.ru"
	hhVacanciesPath    = "/vacancies"
	hhMaxPerPage       = 100
	hhDefaultTimeout   = 90 * time.Second
	hhDefaultUserAgent = "hhvacancies/dev (+https://github.com/amishk599/hhvacancies)"
)

// Ensure HHAdapter implements model.PageFetcher.
var _ model.PageFetcher = (*HHAdapter)(nil)

// hhResponse is the top-level hh.ru vacancy search response. Items are kept
// untyped: the normalizer owns the field rules.
type hhResponse struct {
	Items []model.RawRecord `json:"items"`
	Found int               `json:"found"`
	Pages int               `json:"pages"`
	Page  int               `json:"page"`
}

// HHConfig configures the hh.ru client. Zero values fall back to defaults.
type HHConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	PerPage   int
}

// HHAdapter fetches single pages from the hh.ru public vacancy search API.
type HHAdapter struct {
	client  *resty.Client
	perPage int
}

// NewHHAdapter creates a client for the hh.ru vacancy search endpoint.
func NewHHAdapter(cfg HHConfig) *HHAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = hhBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = hhDefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = hhDefaultTimeout
	}
	if cfg.PerPage <= 0 || cfg.PerPage > hhMaxPerPage {
		cfg.PerPage = hhMaxPerPage
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json")

	return &HHAdapter{client: client, perPage: cfg.PerPage}
}

// FetchPage retrieves one page of listings matching q. Non-200 responses are
// returned as *model.HTTPError so the retry layer can classify them.
func (a *HHAdapter) FetchPage(ctx context.Context, q model.SearchQuery, page int) ([]model.RawRecord, error) {
	params := url.Values{}
	params.Set("text", q.Text)
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(a.perPage))
	for _, id := range q.EmployerIDs {
		params.Add("employer_id", id)
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		Get(hhVacanciesPath)
	if err != nil {
		return nil, fmt.Errorf("hh fetch page %d: %w", page, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode(),
			RetryAfter: parseRetryAfter(resp.Header().Get("Retry-After")),
			Err:        fmt.Errorf("hh fetch page %d: unexpected status %d", page, resp.StatusCode()),
		}
	}

	dec := json.NewDecoder(bytes.NewReader(resp.Body()))
	dec.UseNumber()
	var hhResp hhResponse
	if err := dec.Decode(&hhResp); err != nil {
		return nil, fmt.Errorf("hh fetch page %d: decoding response: %w", page, err)
	}

	return hhResp.Items, nil
}
