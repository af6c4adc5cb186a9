package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange_EndIsEndOfDay(t *testing.T) {
	r, err := ParseDateRange("01/01/2025", "31/01/2025", time.UTC)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC), r.End)

	assert.True(t, r.Contains(time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC)))
	assert.True(t, r.Contains(r.Start))
	assert.True(t, r.IsOlder(time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)))
	assert.True(t, r.IsNewer(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseDateRange_Rejects(t *testing.T) {
	cases := map[string][2]string{
		"inverted":    {"02/01/2025", "01/01/2025"},
		"iso":         {"2025-01-01", "31/01/2025"},
		"short":       {"1/1/2025", "31/01/2025"},
		"bad day":     {"32/01/2025", "31/01/2025"},
		"bad end day": {"01/01/2025", "30/02/2025"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDateRange(c[0], c[1], time.UTC)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRange))
		})
	}
}

func TestNotice_MarshalJSON(t *testing.T) {
	start := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	n := Notice{
		Code:          "LP-SM-1-2025",
		Entity:        "MUNICIPALIDAD DE LIMA",
		Description:   "OBRA: MEJORAMIENTO DE PISTA",
		ObjectType:    ObjectWork,
		Region:        "LIMA",
		PublishedAt:   time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
		HasTime:       true,
		ScheduleStart: &start,
		Link:          "https://example.org/x",
	}
	b, err := n.MarshalJSON()
	require.NoError(t, err)

	s := string(b)
	assert.Contains(t, s, `"fecha_publicacion":"15/01/2025 10:30:00"`)
	assert.Contains(t, s, `"fecha_inicio":"20/01/2025"`)
	assert.Contains(t, s, `"tipo":"Obra"`)
	assert.NotContains(t, s, "fecha_fin")
	assert.NotContains(t, s, "cubso")
}
