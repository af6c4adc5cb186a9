package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/semaphore"

	"seace-engine/internal/config"
	"seace-engine/internal/metrics"
	"seace-engine/internal/scrape"
	"seace-engine/internal/scrape/types"
)

func testDeps(t *testing.T, crawl func(ctx context.Context, reqID string, q types.Query) (scrape.RunResult, error)) Deps {
	t.Helper()
	cfg := config.Default()
	cfg.App.QueueTimeoutSeconds = 0
	cfg.App.CrawlTimeoutSeconds = 60

	var v atomic.Value
	v.Store(cfg)
	return Deps{
		CfgVal:      &v,
		UserCfgPath: "config.yml",
		Sessions:    semaphore.NewWeighted(1),
		Metrics:     metrics.New(prometheus.NewRegistry()),
		Crawl:       crawl,
		Status:      func() types.ScrapeStatus { return types.ScrapeStatus{LastCount: 7} },
	}
}

func do(h http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}
