package storage

import "time"

// Event is the audit record of one completed exchange: the question, the
// query the model generated for it and the answer that was delivered.
// Events are appended in chronological order.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Question  string    `json:"question"`
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
}

// Recorder abstracts persistence of exchange events.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendExchange(event Event) error
	LoadExchanges() ([]Event, error)
}
