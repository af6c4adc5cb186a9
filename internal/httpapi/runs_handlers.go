package httpapi

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"seace-engine/internal/store"
)

type RunsHandler struct {
	DB *sql.DB
}

func (h RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.DB == nil {
		WriteError(w, r, http.StatusServiceUnavailable, codeNoStore, "run history is disabled")
		return
	}
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			WriteError(w, r, http.StatusBadRequest, codeInvalidLimit, "limit must be a positive integer")
			return
		}
		limit = n
	}
	runs, err := store.ListRuns(r.Context(), h.DB, limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, codeStoreError, err.Error())
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (h RunsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	if h.DB == nil {
		WriteError(w, r, http.StatusServiceUnavailable, codeNoStore, "run history is disabled")
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/runs/"), "/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, r, http.StatusNotFound, codeNotFound, "no such run")
		return
	}
	run, err := store.GetRun(r.Context(), h.DB, id)
	if errors.Is(err, store.ErrRunNotFound) {
		WriteError(w, r, http.StatusNotFound, codeNotFound, "no such run")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, codeStoreError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, run)
}
