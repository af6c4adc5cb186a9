package seace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seace-engine/internal/classify"
	"seace-engine/internal/domain"
	"seace-engine/internal/logger"
	"seace-engine/internal/render"
	"seace-engine/internal/render/rendertest"
	"seace-engine/internal/scrape/types"
)

func newScraper(t *testing.T, p render.Provider) *Scraper {
	t.Helper()
	cfg := testConfig()
	s, err := New(cfg, classify.MustTaxonomy(cfg.Taxonomy), p, logger.NewNop())
	require.NoError(t, err)
	return s
}

func TestScrape_WithEnrichment(t *testing.T) {
	site := newSite(rendertest.Paginate([]string{
		card(1, "20/01/2025"),
		card(2, "19/01/2025"),
		card(3, "30/12/2024"),
	}, 2))
	site.Pages[detailURL(1)] = `<td class="codCubso">4215180000004567</td>`
	site.Pages[detailURL(2)] = `<p>nada</p>`

	q := january(t)
	q.Enrich = true
	res, err := newScraper(t, site).Scrape(context.Background(), q, nil)
	require.NoError(t, err)

	require.Len(t, res.Notices, 2)
	assert.Equal(t, "4215180000004567", res.Notices[0].SecondaryCode)
	assert.Equal(t, domain.CodeNotFound, res.Notices[1].SecondaryCode)
	require.NotNil(t, res.Report.Enrichment)
	assert.Equal(t, 1, res.Report.Enrichment.Found)
	assert.Equal(t, types.StopEarly, res.Report.Stop)

	sessions := site.Sessions()
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].Closed())
}

func TestScrape_WithoutEnrichmentLeavesCodeEmpty(t *testing.T) {
	site := newSite(rendertest.Paginate([]string{card(1, "20/01/2025")}, 10))

	res, err := newScraper(t, site).Scrape(context.Background(), january(t), nil)
	require.NoError(t, err)
	require.Len(t, res.Notices, 1)
	assert.Empty(t, res.Notices[0].SecondaryCode)
	assert.Nil(t, res.Report.Enrichment)
	assert.Equal(t, []string{listingURL}, site.Navigations())
}

func TestScrape_FatalErrorStillClosesSession(t *testing.T) {
	site := newSite(rendertest.Paginate([]string{card(1, "20/01/2025")}, 10))
	site.NavErrors[listingURL] = errors.New("net::ERR_NAME_NOT_RESOLVED")

	_, err := newScraper(t, site).Scrape(context.Background(), january(t), nil)
	require.ErrorIs(t, err, ErrListingUnavailable)

	sessions := site.Sessions()
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].Closed())
}

type brokenProvider struct{}

func (brokenProvider) NewSession(context.Context) (render.Renderer, error) {
	return nil, errors.New("chromium not installed")
}

func TestScrape_SessionUnavailable(t *testing.T) {
	_, err := newScraper(t, brokenProvider{}).Scrape(context.Background(), january(t), nil)
	assert.ErrorIs(t, err, ErrSession)
}

func TestScrape_Name(t *testing.T) {
	assert.Equal(t, "seace", newScraper(t, brokenProvider{}).Name())
}
