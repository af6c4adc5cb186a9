package seace

import (
	"regexp"
	"strings"
	"time"

	"seace-engine/internal/classify"
	"seace-engine/internal/domain"
	"seace-engine/internal/scrape/util"
)

// dd/mm/yyyy with an optional HH:MM or HH:MM:SS right after it.
var dateToken = regexp.MustCompile(`\b(\d{2}/\d{2}/\d{4})\b(?:[ \t]+(\d{1,2}:\d{2}(?::\d{2})?)\b)?`)

type DateOutcome int

const (
	NoMatch DateOutcome = iota
	Matched
	// Invalid means a token was found but is not a real date; the card is
	// treated as dateless and no later rule is tried.
	Invalid
)

type DateResult struct {
	At      time.Time
	HasTime bool
	Outcome DateOutcome
}

// DateRule is one step of the publication-date cascade. It receives folded
// card text.
type DateRule struct {
	Name string
	Find func(folded string, loc *time.Location) DateResult
}

// DateExtractor reads publication dates and the submission window from card
// text. Rules run in order; the first one that does not return NoMatch wins.
type DateExtractor struct {
	rules       []DateRule
	startLabels []string
	endLabels   []string
	loc         *time.Location
}

func NewDateExtractor(tx *classify.Taxonomy, loc *time.Location) *DateExtractor {
	if loc == nil {
		loc = time.UTC
	}
	return &DateExtractor{
		rules: []DateRule{
			labeledDateRule("labeled", tx.PublicationLabels()),
			{Name: "first-token", Find: firstToken},
		},
		startLabels: tx.ScheduleStartLabels(),
		endLabels:   tx.ScheduleEndLabels(),
		loc:         loc,
	}
}

// labeledDateRule takes the first date token after any of the labels.
func labeledDateRule(name string, labels []string) DateRule {
	return DateRule{
		Name: name,
		Find: func(folded string, loc *time.Location) DateResult {
			for _, lab := range labels {
				i := strings.Index(folded, lab)
				if i < 0 {
					continue
				}
				if r := firstToken(folded[i+len(lab):], loc); r.Outcome != NoMatch {
					return r
				}
			}
			return DateResult{}
		},
	}
}

func firstToken(s string, loc *time.Location) DateResult {
	m := dateToken.FindStringSubmatch(s)
	if m == nil {
		return DateResult{}
	}
	return parseToken(m[1], m[2], loc)
}

func parseToken(date, clock string, loc *time.Location) DateResult {
	if clock == "" {
		t, err := time.ParseInLocation(domain.DateLayout, date, loc)
		if err != nil {
			return DateResult{Outcome: Invalid}
		}
		return DateResult{At: t, Outcome: Matched}
	}

	layout := domain.DateLayout + " 15:04"
	if strings.Count(clock, ":") == 2 {
		layout = domain.DateTimeLayout
	}
	if len(clock) < len("00:00") || clock[1] == ':' {
		clock = "0" + clock
	}
	t, err := time.ParseInLocation(layout, date+" "+clock, loc)
	if err != nil {
		return DateResult{Outcome: Invalid}
	}
	return DateResult{At: t, HasTime: true, Outcome: Matched}
}

// Publication returns the card's publication date. ok is false when no rule
// produced a valid date.
func (x *DateExtractor) Publication(text string) (at time.Time, hasTime bool, ok bool) {
	r, _ := x.Explain(text)
	return r.At, r.HasTime, r.Outcome == Matched
}

// Explain is Publication plus the name of the deciding rule ("" if none).
func (x *DateExtractor) Explain(text string) (DateResult, string) {
	folded := util.Fold(text)
	for _, rule := range x.rules {
		r := rule.Find(folded, x.loc)
		if r.Outcome != NoMatch {
			return r, rule.Name
		}
	}
	return DateResult{}, ""
}

func (x *DateExtractor) Rules() []string {
	out := make([]string, len(x.rules))
	for i, r := range x.rules {
		out[i] = r.Name
	}
	return out
}

// Schedule looks, line by line, for a date preceded by a start or end label.
// Either bound may be missing. When a start and an end label both lead to the
// same date token ("fecha limite de presentacion: ..."), the date is the end.
func (x *DateExtractor) Schedule(text string) (start, end *time.Time) {
	for _, line := range util.Lines(util.Fold(text)) {
		s, sAt := x.afterLabel(line, x.startLabels)
		e, eAt := x.afterLabel(line, x.endLabels)
		if s != nil && e != nil && sAt == eAt {
			s = nil
		}
		if start == nil {
			start = s
		}
		if end == nil {
			end = e
		}
	}
	return start, end
}

// afterLabel returns the first valid date following any of labels and the
// byte offset of its token in line.
func (x *DateExtractor) afterLabel(line string, labels []string) (*time.Time, int) {
	for _, lab := range labels {
		i := util.IndexWord(line, lab)
		if i < 0 {
			continue
		}
		rest := i + len(lab)
		m := dateToken.FindStringSubmatchIndex(line[rest:])
		if m == nil {
			continue
		}
		clock := ""
		if m[4] >= 0 {
			clock = line[rest+m[4] : rest+m[5]]
		}
		if r := parseToken(line[rest+m[2]:rest+m[3]], clock, x.loc); r.Outcome == Matched {
			t := r.At
			return &t, rest + m[0]
		}
	}
	return nil, -1
}

func (r DateResult) String() string {
	switch r.Outcome {
	case Matched:
		return r.At.Format(domain.DateTimeLayout)
	case Invalid:
		return "invalid"
	}
	return "no match"
}
