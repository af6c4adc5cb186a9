package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CleanText collapses every whitespace run (newlines included) into a single
// space and trims the ends.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// Lines splits rendered text on line breaks and returns the cleaned,
// non-empty lines in order.
func Lines(s string) []string {
	raw := strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' })
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = CleanText(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Fold uppercases s and strips diacritics, so "Publicación" and "PUBLICACION"
// compare equal. Rune count is preserved for Latin text.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(out)
}

// FoldClean is Fold over CleanText.
func FoldClean(s string) string {
	return Fold(CleanText(s))
}

// IsWordBoundary reports whether the match s[i:j] is not glued to a letter or
// digit on either side.
func IsWordBoundary(s string, i, j int) bool {
	if i > 0 {
		r := lastRune(s[:i])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if j < len(s) {
		r := []rune(s[j:])[0]
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func lastRune(s string) rune {
	rs := []rune(s)
	return rs[len(rs)-1]
}

// ContainsWord reports whether needle occurs in s on word boundaries.
func ContainsWord(s, needle string) bool {
	return IndexWord(s, needle) >= 0
}

// IndexWord is strings.Index restricted to matches on word boundaries.
func IndexWord(s, needle string) int {
	if needle == "" {
		return -1
	}
	from := 0
	for from < len(s) {
		i := strings.Index(s[from:], needle)
		if i < 0 {
			return -1
		}
		start := from + i
		if IsWordBoundary(s, start, start+len(needle)) {
			return start
		}
		from = start + 1
	}
	return -1
}

// ExtractLabeled returns the phrase following the first "<label>:" found in s
// (labels are tried in order). The phrase stops at the first '|' or line
// break and is capped at maxRunes. Matching is done on folded text.
func ExtractLabeled(s string, labels []string, maxRunes int) string {
	folded := Fold(s)
	for _, lab := range labels {
		lab = Fold(strings.TrimSuffix(strings.TrimSpace(lab), ":"))
		if lab == "" {
			continue
		}
		i := strings.Index(folded, lab+":")
		if i < 0 {
			continue
		}
		rest := folded[i+len(lab)+1:]
		for _, cut := range []string{"\n", "\r", "|"} {
			if j := strings.Index(rest, cut); j >= 0 {
				rest = rest[:j]
			}
		}
		rest = CleanText(rest)
		if maxRunes > 0 {
			if rs := []rune(rest); len(rs) > maxRunes {
				rest = string(rs[:maxRunes])
			}
		}
		if rest != "" {
			return rest
		}
	}
	return ""
}
