package seace

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"seace-engine/internal/config"
	"seace-engine/internal/domain"
	"seace-engine/internal/logger"
	"seace-engine/internal/render"
	"seace-engine/internal/scrape/types"
	"seace-engine/internal/scrape/util"
)

type EnrichOptions struct {
	DetailTimeout     time.Duration
	BodyWait          time.Duration
	CellClassPattern  string
	MinDigits         int
	MaxDigits         int
	RequestsPerSecond float64
	Burst             int
}

func EnrichOptionsFromConfig(cfg config.Config) EnrichOptions {
	e := cfg.Enrichment
	return EnrichOptions{
		DetailTimeout:     cfg.DetailTimeout(),
		BodyWait:          cfg.BodyWait(),
		CellClassPattern:  e.CellClassPattern,
		MinDigits:         e.MinDigits,
		MaxDigits:         e.MaxDigits,
		RequestsPerSecond: e.RequestsPerSecond,
		Burst:             e.Burst,
	}
}

// Enricher looks up the CUBSO code on a notice's detail page.
type Enricher struct {
	opts    EnrichOptions
	cell    *regexp.Regexp
	digits  *regexp.Regexp
	run     *regexp.Regexp
	limiter *util.HostLimiter
	log     logger.Logger
}

func NewEnricher(opts EnrichOptions, log logger.Logger) (*Enricher, error) {
	if opts.MinDigits < 1 || opts.MaxDigits < opts.MinDigits {
		return nil, fmt.Errorf("enrichment digits: min %d max %d", opts.MinDigits, opts.MaxDigits)
	}
	cell, err := regexp.Compile("(?i)" + opts.CellClassPattern)
	if err != nil {
		return nil, fmt.Errorf("enrichment cell_class_pattern: %w", err)
	}
	return &Enricher{
		opts:    opts,
		cell:    cell,
		digits:  regexp.MustCompile(fmt.Sprintf(`^\d{%d,%d}$`, opts.MinDigits, opts.MaxDigits)),
		run:     regexp.MustCompile(fmt.Sprintf(`\b\d{%d,%d}\b`, opts.MinDigits, opts.MaxDigits)),
		limiter: util.NewHostLimiter(opts.RequestsPerSecond, opts.Burst),
		log:     logger.OrNop(log),
	}, nil
}

// Code visits link and returns the code or one of the sentinels. It never
// fails: a broken detail page only affects its own notice.
func (e *Enricher) Code(ctx context.Context, r render.Renderer, link string) string {
	if strings.TrimSpace(link) == "" {
		return domain.CodeNoLink
	}
	if err := e.limiter.WaitURL(ctx, link); err != nil {
		return domain.CodeFetchError
	}
	if err := r.Navigate(ctx, link, e.opts.DetailTimeout); err != nil {
		e.log.Debug("detail fetch failed", logger.String("url", link), logger.Err(err))
		return domain.CodeFetchError
	}
	_ = r.WaitFor(ctx, "body", e.opts.BodyWait)
	html, err := r.Content(ctx)
	if err != nil {
		e.log.Debug("detail content unreadable", logger.String("url", link), logger.Err(err))
		return domain.CodeFetchError
	}
	return e.Extract(html)
}

// Extract finds the code in detail-page markup: first a table cell whose
// class matches the configured pattern and holds only digits, then any
// standalone digit run of the right length in the visible page text.
func (e *Enricher) Extract(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.CodeNotFound
	}

	var code string
	doc.Find("td[class]").EachWithBreak(func(_ int, td *goquery.Selection) bool {
		class, _ := td.Attr("class")
		if !e.cell.MatchString(class) {
			return true
		}
		if t := util.CleanText(td.Text()); e.digits.MatchString(t) {
			code = t
			return false
		}
		return true
	})
	if code != "" {
		return code
	}

	// Only visible text counts: scripts carry millisecond timestamps and
	// attributes carry ids of the same length.
	doc.Find("script, style, noscript").Remove()
	if m := e.run.FindString(textContent(doc.Selection)); m != "" {
		return m
	}
	return domain.CodeNotFound
}

// textContent joins every text node under sel with spaces, so neighbouring
// cells never merge into one digit run.
func textContent(sel *goquery.Selection) string {
	var parts []string
	sel.Find("*").Contents().Each(func(_ int, n *goquery.Selection) {
		if goquery.NodeName(n) != "#text" {
			return
		}
		if t := strings.TrimSpace(n.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " ")
}

// Enrich sets SecondaryCode on every notice, one detail page at a time over
// the same session.
func (e *Enricher) Enrich(ctx context.Context, r render.Renderer, notices []domain.Notice) types.EnrichStats {
	var st types.EnrichStats
	for i := range notices {
		code := e.Code(ctx, r, notices[i].Link)
		notices[i].SecondaryCode = code
		switch code {
		case domain.CodeNoLink:
			st.NoLink++
		case domain.CodeFetchError:
			st.FetchErrors++
		case domain.CodeNotFound:
			st.NotFound++
		default:
			st.Found++
		}
	}
	return st
}
