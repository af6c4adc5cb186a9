// Package classify derives object type and region from notice text using an
// immutable, configuration-built taxonomy.
package classify

import (
	"fmt"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"seace-engine/internal/config"
	"seace-engine/internal/domain"
	"seace-engine/internal/scrape/util"
)

// Taxonomy is built once from configuration and never mutated, so one value
// can be shared by any number of concurrent crawl sessions.
//
// Region names match on word boundaries by default. With WholeWordRegions off
// they match as plain substrings of the folded text, the older behaviour.
type Taxonomy struct {
	statuses map[string]bool

	departments []string
	deptMatcher *ahocorasick.Matcher
	wholeWord   bool

	locationLabels    []string
	publicationLabels []string
	startLabels       []string
	endLabels         []string

	markers   []TypeRule
	typeRules []TypeRule
}

// NewTaxonomy folds and copies every list in cfg and compiles the matchers.
func NewTaxonomy(cfg config.Taxonomy) (*Taxonomy, error) {
	t := &Taxonomy{
		statuses:          make(map[string]bool, len(cfg.Statuses)),
		wholeWord:         cfg.WholeWordRegions,
		locationLabels:    foldAll(cfg.LocationLabel),
		publicationLabels: foldAll(cfg.PublicationLabels),
		startLabels:       foldAll(cfg.ScheduleStartLabels),
		endLabels:         foldAll(cfg.ScheduleEndLabels),
	}
	for _, s := range cfg.Statuses {
		if f := util.FoldClean(s); f != "" {
			t.statuses[f] = true
		}
	}

	t.departments = foldAll(cfg.Departments)
	if len(t.departments) == 0 {
		return nil, fmt.Errorf("taxonomy: no departments configured")
	}
	t.deptMatcher = ahocorasick.NewStringMatcher(t.departments)

	for _, m := range cfg.TypeMarkers {
		ot, err := ParseObjectType(m.Tag)
		if err != nil {
			return nil, fmt.Errorf("taxonomy type_markers: %w", err)
		}
		t.markers = append(t.markers, prefixRule(ot, foldAll(m.Any)))
	}
	t.typeRules = append(t.typeRules, t.markers...)

	if cons := foldAll(cfg.ConsultingMarkers); len(cons) > 0 {
		t.typeRules = append(t.typeRules, keywordRule("marker:consulting", domain.ObjectConsulting, cons))
	}
	for _, k := range cfg.TypeKeywords {
		ot, err := ParseObjectType(k.Tag)
		if err != nil {
			return nil, fmt.Errorf("taxonomy type_keywords: %w", err)
		}
		if kws := foldAll(k.Any); len(kws) > 0 {
			t.typeRules = append(t.typeRules, keywordRule("keywords:"+string(ot), ot, kws))
		}
	}
	return t, nil
}

// MustTaxonomy panics on error. Meant for defaults and tests.
func MustTaxonomy(cfg config.Taxonomy) *Taxonomy {
	t, err := NewTaxonomy(cfg)
	if err != nil {
		panic(err)
	}
	return t
}

func foldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSuffix(util.FoldClean(s), ":")
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ParseObjectType maps a configured tag (Spanish or English, any case or
// accents) onto one of the five object types.
func ParseObjectType(tag string) (domain.ObjectType, error) {
	switch util.FoldClean(tag) {
	case "BIEN", "GOOD":
		return domain.ObjectGood, nil
	case "SERVICIO", "SERVICE":
		return domain.ObjectService, nil
	case "OBRA", "WORK":
		return domain.ObjectWork, nil
	case "CONSULTORIA", "CONSULTING":
		return domain.ObjectConsulting, nil
	case "OTRO", "OTHER":
		return domain.ObjectOther, nil
	}
	return "", fmt.Errorf("unknown object type %q", tag)
}

// IsStatus reports whether line is only a status token ("Vigente", ...).
func (t *Taxonomy) IsStatus(line string) bool {
	return t.statuses[util.FoldClean(line)]
}

func (t *Taxonomy) Departments() []string       { return append([]string(nil), t.departments...) }
func (t *Taxonomy) PublicationLabels() []string { return append([]string(nil), t.publicationLabels...) }
func (t *Taxonomy) ScheduleStartLabels() []string {
	return append([]string(nil), t.startLabels...)
}
func (t *Taxonomy) ScheduleEndLabels() []string { return append([]string(nil), t.endLabels...) }
