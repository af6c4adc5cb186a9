package classify

import (
	"seace-engine/internal/domain"
	"seace-engine/internal/scrape/util"
)

const maxLocationRunes = 80

// Region infers the department from the entity name and the card text. A
// department inside an explicit "Ubicación:"/"Location:" phrase wins over one
// mentioned anywhere else; ties go to the earlier department in the list.
func (t *Taxonomy) Region(entity, text string) string {
	blob := util.Fold(entity + "\n" + text)

	if phrase := util.ExtractLabeled(blob, t.locationLabels, maxLocationRunes); phrase != "" {
		if d := t.findDepartment(phrase); d != "" {
			return d
		}
	}
	if d := t.findDepartment(util.CleanText(blob)); d != "" {
		return d
	}
	return domain.RegionUnidentified
}

func (t *Taxonomy) findDepartment(s string) string {
	hits := t.deptMatcher.MatchThreadSafe([]byte(s))
	if len(hits) == 0 {
		return ""
	}
	hit := make(map[int]bool, len(hits))
	for _, h := range hits {
		hit[h] = true
	}
	for i, d := range t.departments {
		if !hit[i] {
			continue
		}
		if !t.wholeWord || util.ContainsWord(s, d) {
			return d
		}
	}
	return ""
}
