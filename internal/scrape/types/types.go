package types

import (
	"context"
	"time"

	"seace-engine/internal/domain"
)

// Query is one crawl request: an inclusive publication-date range, an
// optional cap (<= 0 means unbounded) and whether to fetch secondary codes.
type Query struct {
	Range      domain.DateRange
	MaxResults int
	Enrich     bool
}

func (q Query) CapReached(n int) bool {
	return q.MaxResults > 0 && n >= q.MaxResults
}

type StopReason string

const (
	StopCap       StopReason = "cap"
	StopEarly     StopReason = "early_stop"
	StopEmptyPage StopReason = "empty_page"
	StopExhausted StopReason = "exhausted"
	StopPageLimit StopReason = "page_limit"
)

type SkipReason string

const (
	SkipParseError SkipReason = "parse_error"
	SkipNoLink     SkipReason = "no_link"
	SkipNoDate     SkipReason = "no_date"
	SkipTooNew     SkipReason = "too_new"
	SkipTooOld     SkipReason = "too_old"
)

type EnrichStats struct {
	Found       int `json:"found"`
	NotFound    int `json:"not_found"`
	NoLink      int `json:"no_link"`
	FetchErrors int `json:"fetch_errors"`
}

// Report describes how a crawl went. It is returned next to the notices and
// stored as run history.
type Report struct {
	Pages              int                `json:"pages"`
	CardsSeen          int                `json:"cards_seen"`
	Accepted           int                `json:"accepted"`
	Skipped            map[SkipReason]int `json:"skipped"`
	Stop               StopReason         `json:"stop_reason"`
	PageSizeNegotiated bool               `json:"page_size_negotiated"`
	Enrichment         *EnrichStats       `json:"enrichment,omitempty"`
	Duration           time.Duration      `json:"-"`
	DurationMS         int64              `json:"duration_ms"`
}

func NewReport() Report {
	return Report{Skipped: make(map[SkipReason]int)}
}

func (r *Report) Skip(reason SkipReason) {
	if r.Skipped == nil {
		r.Skipped = make(map[SkipReason]int)
	}
	r.Skipped[reason]++
}

func (r *Report) Finish(started time.Time) {
	r.Duration = time.Since(started)
	r.DurationMS = r.Duration.Milliseconds()
}

// Progress is emitted after every listing page and once at the end.
type Progress struct {
	Page      int        `json:"page"`
	CardsSeen int        `json:"cards_seen"`
	Accepted  int        `json:"accepted"`
	Done      bool       `json:"done"`
	Stop      StopReason `json:"stop_reason,omitempty"`
}

type Result struct {
	Notices []domain.Notice
	Report  Report
}

// Scraper is a notice source. A call owns one rendering session from start
// to finish and releases it on every return path.
type Scraper interface {
	Name() string
	Scrape(ctx context.Context, q Query, onProgress func(Progress)) (Result, error)
}

type ScrapeStatus struct {
	Running   int    `json:"running"`
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	LastCount int    `json:"last_count"`
	LastRunID string `json:"last_run_id"`
}
