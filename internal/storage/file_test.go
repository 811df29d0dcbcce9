package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileRecorder_AppendAndLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "exchanges.jsonl")
	rec, err := NewFileRecorder(p)
	if err != nil {
		t.Fatalf("init recorder: %v", err)
	}

	ev1 := Event{Timestamp: time.Unix(1, 0).UTC(), SessionID: "a", Question: "q1", Query: "SELECT 1", Answer: "a1"}
	ev2 := Event{Timestamp: time.Unix(2, 0).UTC(), SessionID: "b", Question: "q2", Query: "I don't know", Answer: "a2"}
	if err := rec.AppendExchange(ev1); err != nil {
		t.Fatalf("append1: %v", err)
	}
	if err := rec.AppendExchange(ev2); err != nil {
		t.Fatalf("append2: %v", err)
	}

	events, err := rec.LoadExchanges()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("want 2, got %d", len(events))
	}
	if events[0].SessionID != "a" || events[1].SessionID != "b" {
		t.Fatalf("order mismatch: %+v", events)
	}
	if events[1].Query != "I don't know" {
		t.Fatalf("query not round-tripped: %+v", events[1])
	}

	// ensure file exists and non-empty
	st, err := os.Stat(p)
	if err != nil || st.Size() == 0 {
		t.Fatalf("file not written")
	}
}
