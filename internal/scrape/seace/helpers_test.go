package seace

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"seace-engine/internal/classify"
	"seace-engine/internal/config"
	"seace-engine/internal/domain"
	"seace-engine/internal/render/rendertest"
	"seace-engine/internal/scrape/types"
)

const listingURL = "https://prod6.seace.gob.pe/buscador-publico/contrataciones"

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Crawl.SettleMillis = 0
	cfg.Crawl.RefreshTimeoutSeconds = 0
	cfg.Enrichment.RequestsPerSecond = 0
	return cfg
}

func lima(t *testing.T) *time.Location {
	t.Helper()
	return testConfig().Location()
}

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	cfg := testConfig()
	tx := classify.MustTaxonomy(cfg.Taxonomy)
	return NewBuilder(tx, NewDateExtractor(tx, cfg.Location()), cfg.Source.ListingURL, cfg.Source.DetailPath)
}

func newSite(pages []string) *rendertest.Site {
	cfg := testConfig()
	return &rendertest.Site{
		ListingURL:             cfg.Source.ListingURL,
		Listing:                pages,
		Pages:                  map[string]string{},
		NavErrors:              map[string]error{},
		NextSelector:           cfg.Source.NextSelector,
		PageSizeOptionSelector: cfg.Source.PageSizeOptionSelector,
	}
}

// card returns a well formed card published on date with detail id n.
func card(n int, date string) string {
	return rendertest.CardHTML(rendertest.CardSpec{
		Code:        fmt.Sprintf("AS-SM-%d-2025-MPC/CS", n),
		Status:      "Vigente",
		Entity:      "MUNICIPALIDAD PROVINCIAL DE CUSCO",
		Description: "Servicio: MANTENIMIENTO DE VIAS",
		Published:   date,
		Href:        fmt.Sprintf("/buscador-publico/contrataciones/%d", n),
	})
}

func detailURL(n int) string {
	return fmt.Sprintf("%s/%d", listingURL, n)
}

func january(t *testing.T) types.Query {
	t.Helper()
	r, err := domain.ParseDateRange("01/01/2025", "31/01/2025", lima(t))
	require.NoError(t, err)
	return types.Query{Range: r}
}
