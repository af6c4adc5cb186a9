package events

import (
	"encoding/json"
	"time"
)

const (
	CrawlStarted  = "crawl_started"
	CrawlPage     = "crawl_page"
	CrawlFinished = "crawl_finished"
	CrawlFailed   = "crawl_failed"
	Ping          = "ping"
)

// Version of the event envelope.
const Version = 1

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	RunID     string          `json:"run_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(reqID, runID, typ string, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   Version,
		At:        time.Now().UTC(),
		RequestID: reqID,
		RunID:     runID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
