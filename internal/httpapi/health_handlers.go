package httpapi

import "net/http"

type HealthHandler struct{}

// Root answers only the exact "/" path; everything unmatched falls here.
func (h HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteError(w, r, http.StatusNotFound, codeNotFound, "no such route")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"msg":    "SEACE scraper API. POST /scrape with fecha_inicio and fecha_fin (dd/mm/yyyy).",
	})
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
