package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"seace-engine/internal/config"
	"seace-engine/internal/events"
	"seace-engine/internal/logger"
	"seace-engine/internal/metrics"
	"seace-engine/internal/scrape"
	"seace-engine/internal/scrape/types"
)

type Deps struct {
	DB  *sql.DB
	Hub *events.Hub
	Log logger.Logger

	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string

	// Sessions bounds concurrent crawls (one browser context each).
	Sessions *semaphore.Weighted
	Metrics  *metrics.Metrics
	// Token guards POST /scrape; empty disables auth.
	Token string

	// Crawl entrypoint (inject for testability)
	Crawl  func(ctx context.Context, reqID string, q types.Query) (scrape.RunResult, error)
	Status func() types.ScrapeStatus
}

func (d Deps) config() config.Config {
	cfg, _ := d.CfgVal.Load().(config.Config)
	return cfg
}

func (d Deps) metricsHandler() http.Handler {
	if d.Metrics == nil {
		return http.NotFoundHandler()
	}
	return d.Metrics.Handler()
}
