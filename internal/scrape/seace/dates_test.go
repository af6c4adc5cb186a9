package seace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seace-engine/internal/classify"
)

func newDates(t *testing.T) *DateExtractor {
	t.Helper()
	cfg := testConfig()
	return NewDateExtractor(classify.MustTaxonomy(cfg.Taxonomy), cfg.Location())
}

func TestPublication(t *testing.T) {
	x := newDates(t)
	loc := lima(t)

	cases := []struct {
		name    string
		text    string
		want    time.Time
		hasTime bool
		rule    string
	}{
		{
			name:    "label with time",
			text:    "LP-1-2025\nFecha de publicación: 15/01/2025 10:30:00",
			want:    time.Date(2025, 1, 15, 10, 30, 0, 0, loc),
			hasTime: true,
			rule:    "labeled",
		},
		{
			name: "label without accent, date only",
			text: "FECHA DE PUBLICACION:\n03/01/2025",
			want: time.Date(2025, 1, 3, 0, 0, 0, 0, loc),
			rule: "labeled",
		},
		{
			name: "label wins over an earlier token",
			text: "Inicio: 01/02/2025\nFecha de publicación: 15/01/2025",
			want: time.Date(2025, 1, 15, 0, 0, 0, 0, loc),
			rule: "labeled",
		},
		{
			name: "english label",
			text: "Publication date 20/01/2025",
			want: time.Date(2025, 1, 20, 0, 0, 0, 0, loc),
			rule: "labeled",
		},
		{
			name: "any token when unlabeled",
			text: "Convocatoria del 07/01/2025",
			want: time.Date(2025, 1, 7, 0, 0, 0, 0, loc),
			rule: "first-token",
		},
		{
			name:    "short hour",
			text:    "Fecha de publicación: 15/01/2025 9:05",
			want:    time.Date(2025, 1, 15, 9, 5, 0, 0, loc),
			hasTime: true,
			rule:    "labeled",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, hasTime, ok := x.Publication(c.text)
			require.True(t, ok)
			assert.True(t, c.want.Equal(got), "got %s", got)
			assert.Equal(t, c.hasTime, hasTime)
			_, rule := x.Explain(c.text)
			assert.Equal(t, c.rule, rule)
		})
	}
}

func TestPublication_NotFound(t *testing.T) {
	x := newDates(t)

	for name, text := range map[string]string{
		"empty":                 "",
		"no token":              "Fecha de publicación: pendiente",
		"impossible day":        "Fecha de publicación: 31/02/2025\nFin: 10/03/2025",
		"bad time":              "Fecha de publicación: 15/01/2025 25:61",
		"unlabeled bad token":   "Registro 45/13/2025",
		"year glued to a digit": "Ref 01/01/20251",
	} {
		t.Run(name, func(t *testing.T) {
			_, _, ok := x.Publication(text)
			assert.False(t, ok)
		})
	}
}

func TestSchedule(t *testing.T) {
	x := newDates(t)
	loc := lima(t)

	start, end := x.Schedule("Fecha de publicación: 15/01/2025\nDesde: 16/01/2025 Hasta: 20/01/2025")
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.True(t, time.Date(2025, 1, 16, 0, 0, 0, 0, loc).Equal(*start))
	assert.True(t, time.Date(2025, 1, 20, 0, 0, 0, 0, loc).Equal(*end))

	// a deadline for submissions is an end date, not a start date
	start, end = x.Schedule("Submission deadline: 02/02/2025")
	assert.Nil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, 2, end.Day())

	start, end = x.Schedule("Fecha límite de presentación de ofertas: 20/01/2025")
	assert.Nil(t, start)
	require.NotNil(t, end)
	assert.True(t, time.Date(2025, 1, 20, 0, 0, 0, 0, loc).Equal(*end))

	start, end = x.Schedule("Presentación de ofertas: 10/01/2025\nCierre: 20/01/2025")
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, 10, start.Day())
	assert.Equal(t, 20, end.Day())

	start, end = x.Schedule("Financiamiento 01/02/2025")
	assert.Nil(t, start)
	assert.Nil(t, end)

	start, end = x.Schedule("Fin: 31/02/2025")
	assert.Nil(t, start)
	assert.Nil(t, end)
}

func TestDateRules_Order(t *testing.T) {
	assert.Equal(t, []string{"labeled", "first-token"}, newDates(t).Rules())
}
