package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seace-engine/internal/config"
	"seace-engine/internal/domain"
)

func newTaxonomy(t *testing.T) *Taxonomy {
	t.Helper()
	tx, err := NewTaxonomy(config.DefaultTaxonomy())
	require.NoError(t, err)
	return tx
}

func TestObjectType(t *testing.T) {
	tx := newTaxonomy(t)

	cases := []struct {
		desc string
		want domain.ObjectType
		rule string
	}{
		{"OBRA: MEJORAMIENTO DE PISTA", domain.ObjectWork, "marker:Obra"},
		{"Bien: Adquisición de útiles", domain.ObjectGood, "marker:Bien"},
		{"SERVICIOS DE LIMPIEZA", domain.ObjectService, "marker:Servicio"},
		{"servicio de consultoría de obra", domain.ObjectService, "marker:Servicio"},
		{"ELABORACION DE EXPEDIENTE - CONSULTORIA", domain.ObjectConsulting, "marker:consulting"},
		{"ADQUISICION DE COMBUSTIBLE", domain.ObjectGood, "keywords:Bien"},
		{"MANTENIMIENTO DE LOCAL", domain.ObjectService, "keywords:Servicio"},
		// work keywords outrank good keywords
		{"CONSTRUCCION Y EQUIPAMIENTO DE AULAS", domain.ObjectWork, "keywords:Obra"},
		{"XYZ 12345", domain.ObjectOther, "default"},
		{"", domain.ObjectOther, "default"},
		{"WORKSHOP MATERIALS", domain.ObjectGood, "keywords:Bien"},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			got, rule := tx.Explain(c.desc)
			assert.Equal(t, c.want, got)
			assert.Equal(t, c.rule, rule)
			// idempotent
			assert.Equal(t, got, tx.ObjectType(c.desc))
			assert.Equal(t, got, tx.ObjectType(c.desc))
		})
	}
}

func TestHasTypeMarker(t *testing.T) {
	tx := newTaxonomy(t)
	assert.True(t, tx.HasTypeMarker("Obra: Creación del puente"))
	assert.True(t, tx.HasTypeMarker("BIENES: ARROZ"))
	assert.False(t, tx.HasTypeMarker("MUNICIPALIDAD PROVINCIAL"))
	assert.False(t, tx.HasTypeMarker("OBRADOR"))
}

func TestRules_Order(t *testing.T) {
	tx := newTaxonomy(t)
	assert.Equal(t, []string{
		"marker:Bien", "marker:Servicio", "marker:Obra", "marker:consulting",
		"keywords:Obra", "keywords:Servicio", "keywords:Bien", "default",
	}, tx.Rules())
}

func TestRegion(t *testing.T) {
	tx := newTaxonomy(t)

	cases := []struct {
		name, entity, text, want string
	}{
		{"label beats elsewhere", "GOBIERNO REGIONAL", "Sede en CUSCO\nLocation: LIMA", "LIMA"},
		{"spanish label with accent", "", "Ubicación: Junín - Huancayo\nApoyo desde AREQUIPA", "JUNIN"},
		{"entity fallback", "MUNICIPALIDAD PROVINCIAL DE PIURA", "Fecha de publicación: 01/01/2025", "PIURA"},
		{"list order breaks ties", "", "CUSCO y AREQUIPA", "AREQUIPA"},
		{"label without department falls back", "", "Ubicación: sede central\nproyecto en Tacna", "TACNA"},
		{"no substring false positive", "ENTIDAD PUBLICA", "Fecha de publicación", domain.RegionUnidentified},
		{"multi word department", "", "Ubicación: MADRE DE DIOS", "MADRE DE DIOS"},
		{"nothing", "", "", domain.RegionUnidentified},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, tx.Region(c.entity, c.text))
		})
	}
}

func TestRegion_SubstringMode(t *testing.T) {
	cfg := config.DefaultTaxonomy()
	cfg.WholeWordRegions = false
	tx, err := NewTaxonomy(cfg)
	require.NoError(t, err)

	assert.Equal(t, "ICA", tx.Region("ENTIDAD PUBLICA", ""))

	assert.True(t, config.DefaultTaxonomy().WholeWordRegions)
	assert.Equal(t, domain.RegionUnidentified, newTaxonomy(t).Region("ENTIDAD PUBLICA", ""))
}

func TestIsStatus(t *testing.T) {
	tx := newTaxonomy(t)
	assert.True(t, tx.IsStatus("  En evaluacion "))
	assert.True(t, tx.IsStatus("VIGENTE"))
	assert.False(t, tx.IsStatus("Vigente hasta 2025"))
}

func TestNewTaxonomy_Errors(t *testing.T) {
	cfg := config.DefaultTaxonomy()
	cfg.Departments = nil
	_, err := NewTaxonomy(cfg)
	assert.Error(t, err)

	cfg = config.DefaultTaxonomy()
	cfg.TypeKeywords = append(cfg.TypeKeywords, config.Rule{Tag: "Mueble", Any: []string{"SILLA"}})
	_, err = NewTaxonomy(cfg)
	assert.Error(t, err)
}

func TestTaxonomy_AccessorsReturnCopies(t *testing.T) {
	tx := newTaxonomy(t)
	d := tx.Departments()
	d[0] = "MUTATED"
	assert.Equal(t, "AMAZONAS", tx.Departments()[0])
}
