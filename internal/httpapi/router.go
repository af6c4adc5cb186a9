package httpapi

import "net/http"

// NewMux registers every route on a plain ServeMux.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Health
	hh := HealthHandler{}
	mux.HandleFunc("/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Root,
	}))
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// Scrape
	sch := ScrapeHandler{
		CfgVal:   d.CfgVal,
		Sessions: d.Sessions,
		Metrics:  d.Metrics,
		Crawl:    d.Crawl,
		Status:   d.Status,
	}
	mux.Handle("/scrape", RequireToken(d.Token)(methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sch.Scrape,
	})))
	mux.HandleFunc("/scrape/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sch.StatusJSON,
	}))

	// Run history
	rh := RunsHandler{DB: d.DB}
	mux.HandleFunc("/runs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.List,
	}))
	mux.HandleFunc("/runs/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.GetByPath, // expects /runs/{id}
	}))

	// Config (read only; edit the file and restart)
	ch := ConfigHandler{CfgVal: d.CfgVal, UserCfgPath: d.UserCfgPath}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	mux.Handle("/metrics", d.metricsHandler())

	return mux
}

// NewHandler is NewMux wrapped in the standard middleware chain.
func NewHandler(d Deps) http.Handler {
	return Chain(NewMux(d),
		Recover(d.Log),
		RequestID,
		AccessLog(d.Log),
		Cors,
	)
}
