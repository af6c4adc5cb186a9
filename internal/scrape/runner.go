package scrape

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"seace-engine/internal/domain"
	"seace-engine/internal/events"
	"seace-engine/internal/logger"
	"seace-engine/internal/metrics"
	"seace-engine/internal/scrape/types"
	"seace-engine/internal/store"
)

// Runner wraps a Scraper with the bookkeeping every crawl gets: a run id,
// run history, SSE events, metrics and the status snapshot served at
// /scrape/status. DB, Hub and Metrics are optional.
type Runner struct {
	Scraper types.Scraper
	DB      *sql.DB
	Hub     *events.Hub
	Metrics *metrics.Metrics
	Log     logger.Logger

	statusMu sync.Mutex
	status   atomic.Value // types.ScrapeStatus
}

type RunResult struct {
	RunID   string
	Notices []domain.Notice
	Report  types.Report
}

func (r *Runner) Status() types.ScrapeStatus {
	st, _ := r.status.Load().(types.ScrapeStatus)
	return st
}

func (r *Runner) updateStatus(fn func(*types.ScrapeStatus)) {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	st := r.Status()
	fn(&st)
	r.status.Store(st)
}

type startedData struct {
	From       string `json:"fecha_inicio"`
	To         string `json:"fecha_fin"`
	MaxResults int    `json:"max_resultados"`
	Enrich     bool   `json:"incluir_cubso"`
}

type finishedData struct {
	Count  int          `json:"cantidad"`
	Report types.Report `json:"reporte"`
	Error  string       `json:"error,omitempty"`
}

// Run executes one crawl. ctx bounds the whole crawl; history is written on a
// context of its own so a timed-out crawl is still recorded.
func (r *Runner) Run(ctx context.Context, reqID string, q types.Query) (RunResult, error) {
	runID := uuid.NewString()
	log := logger.OrNop(r.Log).With(logger.String("run_id", runID), logger.String("request_id", reqID))
	started := time.Now()

	sd := startedData{
		From:       q.Range.Start.Format(domain.DateLayout),
		To:         q.Range.End.Format(domain.DateLayout),
		MaxResults: q.MaxResults,
		Enrich:     q.Enrich,
	}
	if r.DB != nil {
		err := store.StartRun(context.WithoutCancel(ctx), r.DB, store.Run{
			ID: runID, RequestID: reqID, From: sd.From, To: sd.To,
			MaxResults: q.MaxResults, Enrich: q.Enrich, StartedAt: started,
		})
		if err != nil {
			log.Warn("run history unavailable", logger.Err(err))
		}
	}
	r.updateStatus(func(st *types.ScrapeStatus) {
		st.Running++
		st.LastRunAt = started.Format(time.RFC3339)
		st.LastRunID = runID
	})
	if r.Metrics != nil {
		r.Metrics.CrawlsRunning.Inc()
		defer r.Metrics.CrawlsRunning.Dec()
	}
	r.Hub.Emit(reqID, runID, events.CrawlStarted, sd)
	log.Info("crawl started", logger.String("range", q.Range.String()), logger.Int("max", q.MaxResults), logger.Bool("cubso", q.Enrich))

	res, err := r.Scraper.Scrape(ctx, q, func(p types.Progress) {
		if !p.Done {
			r.Hub.Emit(reqID, runID, events.CrawlPage, p)
		}
		log.Debug("crawl progress", logger.Int("page", p.Page), logger.Int("accepted", p.Accepted))
	})
	dur := time.Since(started)
	r.Metrics.Observe(res.Report, dur, err)

	fd := finishedData{Count: len(res.Notices), Report: res.Report}
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
		fd.Error = errMsg
	}
	if r.DB != nil {
		hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		ferr := store.FinishRun(hctx, r.DB, runID, len(res.Notices), res.Report.Pages,
			string(res.Report.Stop), errMsg, dur, res.Report)
		cancel()
		if ferr != nil {
			log.Warn("run history not updated", logger.Err(ferr))
		}
	}

	now := time.Now().Format(time.RFC3339)
	r.updateStatus(func(st *types.ScrapeStatus) {
		st.Running--
		st.LastCount = len(res.Notices)
		if err != nil {
			st.LastError = errMsg
			return
		}
		st.LastError = ""
		st.LastOkAt = now
	})

	if err != nil {
		r.Hub.Emit(reqID, runID, events.CrawlFailed, fd)
		log.Error("crawl failed", logger.Err(err), logger.Duration("took", dur))
		return RunResult{RunID: runID, Report: res.Report}, err
	}
	r.Hub.Emit(reqID, runID, events.CrawlFinished, fd)
	log.Info("crawl finished",
		logger.Int("count", len(res.Notices)),
		logger.String("stop_reason", string(res.Report.Stop)),
		logger.Duration("took", dur),
	)
	return RunResult{RunID: runID, Notices: res.Notices, Report: res.Report}, nil
}
