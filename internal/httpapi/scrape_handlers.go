package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"seace-engine/internal/config"
	"seace-engine/internal/domain"
	"seace-engine/internal/metrics"
	"seace-engine/internal/scrape"
	"seace-engine/internal/scrape/types"
)

type ScrapeHandler struct {
	CfgVal   *atomic.Value // config.Config
	Sessions *semaphore.Weighted
	Metrics  *metrics.Metrics
	Crawl    func(ctx context.Context, reqID string, q types.Query) (scrape.RunResult, error)
	Status   func() types.ScrapeStatus
}

type scrapeRequest struct {
	FechaInicio   string `json:"fecha_inicio"`
	FechaFin      string `json:"fecha_fin"`
	MaxResultados *int   `json:"max_resultados"`
	IncluirCubso  bool   `json:"incluir_cubso"`
}

type scrapeResponse struct {
	Cantidad   int             `json:"cantidad"`
	Resultados []domain.Notice `json:"resultados"`
	RunID      string          `json:"run_id"`
	Reporte    types.Report    `json:"reporte"`
}

func (req scrapeRequest) query(loc *time.Location) (types.Query, error) {
	rng, err := domain.ParseDateRange(req.FechaInicio, req.FechaFin, loc)
	if err != nil {
		return types.Query{}, err
	}
	q := types.Query{Range: rng, Enrich: req.IncluirCubso}
	if req.MaxResultados != nil && *req.MaxResultados > 0 {
		q.MaxResults = *req.MaxResultados
	}
	return q, nil
}

// Scrape runs one crawl and answers with every notice found. The crawl is
// detached from the client connection and bounded only by the crawl timeout.
func (h ScrapeHandler) Scrape(w http.ResponseWriter, r *http.Request) {
	cfg, _ := h.CfgVal.Load().(config.Config)

	var req scrapeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.Metrics.Reject("bad_request")
		WriteError(w, r, http.StatusBadRequest, codeInvalidJSON, "invalid JSON: "+err.Error())
		return
	}
	q, err := req.query(cfg.Location())
	if err != nil {
		h.Metrics.Reject("bad_request")
		WriteError(w, r, http.StatusBadRequest, codeInvalidRange, err.Error())
		return
	}

	if h.Sessions != nil {
		if !acquire(r.Context(), h.Sessions, cfg.QueueTimeout()) {
			h.Metrics.Reject("busy")
			w.Header().Set("Retry-After", "30")
			WriteError(w, r, http.StatusServiceUnavailable, codeBusy, "all crawl sessions are in use, retry later")
			return
		}
		defer h.Sessions.Release(1)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), cfg.CrawlTimeout())
	defer cancel()

	res, err := h.Crawl(ctx, RequestIDFrom(r.Context()), q)
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, codeCrawlFailed, "the SEACE listing could not be read")
		return
	}

	notices := res.Notices
	if notices == nil {
		notices = []domain.Notice{}
	}
	WriteJSON(w, http.StatusOK, scrapeResponse{
		Cantidad:   len(notices),
		Resultados: notices,
		RunID:      res.RunID,
		Reporte:    res.Report,
	})
}

func (h ScrapeHandler) StatusJSON(w http.ResponseWriter, r *http.Request) {
	var st types.ScrapeStatus
	if h.Status != nil {
		st = h.Status()
	}
	WriteJSON(w, http.StatusOK, st)
}

// acquire waits up to wait for a crawl slot. A zero wait only takes a free slot.
func acquire(ctx context.Context, sem *semaphore.Weighted, wait time.Duration) bool {
	if wait <= 0 {
		return sem.TryAcquire(1)
	}
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	return sem.Acquire(ctx, 1) == nil
}
