// Package seace reads procurement notices from the SEACE public search
// portal: it pages through the listing, builds notices from the cards and
// optionally looks up each notice's CUBSO code on its detail page.
package seace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seace-engine/internal/classify"
	"seace-engine/internal/config"
	"seace-engine/internal/logger"
	"seace-engine/internal/render"
	"seace-engine/internal/scrape/types"
)

var ErrSession = errors.New("rendering session unavailable")

type Scraper struct {
	provider render.Provider
	crawler  *Crawler
	enricher *Enricher
	log      logger.Logger
}

var _ types.Scraper = (*Scraper)(nil)

// New wires a scraper from configuration. tx is shared and read-only.
func New(cfg config.Config, tx *classify.Taxonomy, provider render.Provider, log logger.Logger) (*Scraper, error) {
	log = logger.OrNop(log).With(logger.String("source", "seace"))
	enr, err := NewEnricher(EnrichOptionsFromConfig(cfg), log)
	if err != nil {
		return nil, err
	}
	dates := NewDateExtractor(tx, cfg.Location())
	b := NewBuilder(tx, dates, cfg.Source.ListingURL, cfg.Source.DetailPath)
	return &Scraper{
		provider: provider,
		crawler:  NewCrawler(OptionsFromConfig(cfg), b, log),
		enricher: enr,
		log:      log,
	}, nil
}

func (s *Scraper) Name() string { return "seace" }

// Scrape runs one crawl on a fresh session, then the enrichment pass on the
// same session. The session is closed on every return path.
func (s *Scraper) Scrape(ctx context.Context, q types.Query, onProgress func(types.Progress)) (types.Result, error) {
	started := time.Now()
	sess, err := s.provider.NewSession(ctx)
	if err != nil {
		return types.Result{Report: types.NewReport()}, fmt.Errorf("%w: %v", ErrSession, err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			s.log.Warn("close session", logger.Err(cerr))
		}
	}()

	notices, rep, err := s.crawler.Crawl(ctx, sess, q, onProgress)
	if err != nil {
		s.log.Error("crawl failed", logger.Err(err), logger.Int("pages", rep.Pages))
		return types.Result{Report: rep}, err
	}

	if q.Enrich && len(notices) > 0 {
		st := s.enricher.Enrich(ctx, sess, notices)
		rep.Enrichment = &st
		s.log.Info("enrichment finished",
			logger.Int("found", st.Found),
			logger.Int("not_found", st.NotFound),
			logger.Int("fetch_errors", st.FetchErrors),
		)
	}
	rep.Finish(started)
	return types.Result{Notices: notices, Report: rep}, nil
}
