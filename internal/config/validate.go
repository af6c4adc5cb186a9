package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return fmt.Errorf("config validation failed:\n- %s", strings.Join(v.Errors, "\n- "))
}

func trimList(xs []string) []string {
	seen := map[string]bool{}
	var ys []string
	for _, x := range xs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		key := strings.ToLower(x)
		if seen[key] {
			continue
		}
		seen[key] = true
		ys = append(ys, x)
	}
	return ys
}

func trimRules(rs []Rule) []Rule {
	out := make([]Rule, 0, len(rs))
	for _, r := range rs {
		r.Tag = strings.TrimSpace(r.Tag)
		r.Any = trimList(r.Any)
		out = append(out, r)
	}
	return out
}

// NormalizeAndValidate returns a normalized copy plus the problems found.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	tx := &out.Taxonomy
	tx.Statuses = trimList(tx.Statuses)
	tx.LocationLabel = trimList(tx.LocationLabel)
	tx.PublicationLabels = trimList(tx.PublicationLabels)
	tx.ScheduleStartLabels = trimList(tx.ScheduleStartLabels)
	tx.ScheduleEndLabels = trimList(tx.ScheduleEndLabels)
	tx.ConsultingMarkers = trimList(tx.ConsultingMarkers)
	tx.TypeMarkers = trimRules(tx.TypeMarkers)
	tx.TypeKeywords = trimRules(tx.TypeKeywords)
	// Department order is significant (ties resolve by list position): trim
	// and dedupe without reordering.
	tx.Departments = trimList(tx.Departments)
	out.Browser.Args = trimList(out.Browser.Args)

	// ---- app ----
	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if out.App.MaxSessions < 1 {
		res.addErr("app.max_sessions must be >= 1")
	} else if out.App.MaxSessions > 8 {
		res.addWarn("app.max_sessions is %d; every session is a full browser context.", out.App.MaxSessions)
	}
	if out.App.CrawlTimeoutSeconds <= 0 {
		res.addErr("app.crawl_timeout_seconds must be > 0")
	}
	if out.App.QueueTimeoutSeconds < 0 {
		res.addErr("app.queue_timeout_seconds must be >= 0")
	}

	// ---- source ----
	if strings.TrimSpace(out.Source.ListingURL) == "" {
		res.addErr("source.listing_url is required")
	}
	if strings.TrimSpace(out.Source.CardSelector) == "" {
		res.addErr("source.card_selector is required")
	}
	if strings.TrimSpace(out.Source.NextSelector) == "" {
		res.addErr("source.next_selector is required")
	}
	if strings.TrimSpace(out.Source.DetailPath) == "" {
		res.addWarn("source.detail_path is empty; the first link of every card will be used.")
	}
	if out.Source.Timezone != "" {
		if _, err := time.LoadLocation(out.Source.Timezone); err != nil {
			res.addErr("source.timezone %q: %v", out.Source.Timezone, err)
		}
	}

	// ---- crawl ----
	if out.Crawl.MaxPages < 1 {
		res.addErr("crawl.max_pages must be >= 1")
	} else if out.Crawl.MaxPages > 1000 {
		res.addWarn("crawl.max_pages is %d; the page ceiling is meant as a runaway guard.", out.Crawl.MaxPages)
	}
	if !out.Crawl.EarlyStop {
		res.addWarn("crawl.early_stop is false; every crawl scans up to crawl.max_pages pages.")
	}
	if out.Crawl.NavTimeoutSeconds <= 0 || out.Crawl.NextWaitSeconds <= 0 {
		res.addErr("crawl.nav_timeout_seconds and crawl.next_wait_seconds must be > 0")
	}
	if out.Crawl.SettleMillis < 0 {
		res.addErr("crawl.settle_ms must be >= 0")
	}

	// ---- enrichment ----
	if out.Enrichment.MinDigits < 1 || out.Enrichment.MinDigits > out.Enrichment.MaxDigits {
		res.addErr("enrichment.min_digits must be >= 1 and <= enrichment.max_digits")
	}
	if _, err := regexp.Compile("(?i)" + out.Enrichment.CellClassPattern); err != nil {
		res.addErr("enrichment.cell_class_pattern: %v", err)
	}
	if out.Enrichment.DetailTimeoutSeconds <= 0 {
		res.addErr("enrichment.detail_timeout_seconds must be > 0")
	}

	// ---- taxonomy ----
	if len(tx.Departments) == 0 {
		res.addErr("taxonomy.departments must not be empty")
	}
	if len(tx.PublicationLabels) == 0 {
		res.addWarn("taxonomy.publication_labels is empty; dates fall back to the first dd/mm/yyyy token.")
	}
	checkRules := func(name string, rules []Rule) {
		for i, r := range rules {
			if r.Tag == "" {
				res.addErr("%s[%d].tag is required", name, i)
			}
			if len(r.Any) == 0 {
				res.addErr("%s[%d].any must have at least 1 term", name, i)
			}
		}
	}
	checkRules("taxonomy.type_markers", tx.TypeMarkers)
	checkRules("taxonomy.type_keywords", tx.TypeKeywords)

	return out, res
}
