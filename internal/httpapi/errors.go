package httpapi

import (
	"encoding/json"
	"net/http"
)

// Error codes carried in APIError.Error.Code.
const (
	codeInvalidJSON   = "invalid_json"
	codeInvalidRange  = "invalid_range"
	codeInvalidLimit  = "invalid_limit"
	codeBusy          = "busy"
	codeCrawlFailed   = "crawl_failed"
	codeUnauthorized  = "unauthorized"
	codeNotFound      = "not_found"
	codeNoStore       = "no_store"
	codeStoreError    = "store_error"
	codeMethod        = "method_not_allowed"
	codeInternal      = "internal_error"
	codeStreamUnsup   = "stream_unsupported"
	codeEventsOffline = "no_events"
)

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

// WriteJSON writes v with status. HTML escaping is off: descriptions carry
// characters like & and < that clients should see as is.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}
