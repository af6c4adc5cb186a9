package classify

import (
	"strings"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"seace-engine/internal/domain"
	"seace-engine/internal/scrape/util"
)

// TypeRule is one named step of the object-type cascade. Match receives
// folded text (uppercase, no accents, collapsed spaces).
type TypeRule struct {
	Name  string
	Match func(folded string) (domain.ObjectType, bool)
}

// prefixRule matches descriptions that open with an administrative marker
// such as "OBRA:" or "SERVICIOS DE". A plural "S"/"ES" is tolerated, any other
// trailing letter is not ("WORKSHOP" is not "WORK").
func prefixRule(ot domain.ObjectType, markers []string) TypeRule {
	return TypeRule{
		Name: "marker:" + string(ot),
		Match: func(folded string) (domain.ObjectType, bool) {
			for _, m := range markers {
				if !strings.HasPrefix(folded, m) {
					continue
				}
				rest := folded[len(m):]
				if r := strings.TrimPrefix(rest, "ES"); r != rest {
					rest = r
				} else {
					rest = strings.TrimPrefix(rest, "S")
				}
				if rest == "" {
					return ot, true
				}
				if r := []rune(rest)[0]; !unicode.IsLetter(r) && !unicode.IsDigit(r) {
					return ot, true
				}
			}
			return "", false
		},
	}
}

func keywordRule(name string, ot domain.ObjectType, keywords []string) TypeRule {
	m := ahocorasick.NewStringMatcher(keywords)
	return TypeRule{
		Name: name,
		Match: func(folded string) (domain.ObjectType, bool) {
			if len(m.MatchThreadSafe([]byte(folded))) > 0 {
				return ot, true
			}
			return "", false
		},
	}
}

// ObjectType classifies a description. Explicit markers win over keywords;
// keyword sets are tried in configured order (work, service, good); the
// default is Other.
func (t *Taxonomy) ObjectType(description string) domain.ObjectType {
	ot, _ := t.Explain(description)
	return ot
}

// Explain is ObjectType plus the name of the rule that decided it.
func (t *Taxonomy) Explain(description string) (domain.ObjectType, string) {
	folded := util.FoldClean(description)
	if folded == "" {
		return domain.ObjectOther, "default"
	}
	for _, r := range t.typeRules {
		if ot, ok := r.Match(folded); ok {
			return ot, r.Name
		}
	}
	return domain.ObjectOther, "default"
}

// HasTypeMarker reports whether line opens with an explicit type marker.
func (t *Taxonomy) HasTypeMarker(line string) bool {
	folded := util.FoldClean(line)
	for _, r := range t.markers {
		if _, ok := r.Match(folded); ok {
			return true
		}
	}
	return false
}

// Rules lists the cascade in evaluation order.
func (t *Taxonomy) Rules() []string {
	out := make([]string, 0, len(t.typeRules)+1)
	for _, r := range t.typeRules {
		out = append(out, r.Name)
	}
	return append(out, "default")
}
