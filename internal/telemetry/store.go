// Package telemetry reads the housekeeping table from Supabase and renders
// result sets into text the language model can consume.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/supabase-community/supabase-go"
)

// Table is the fixed telemetry table; the schema is not enforced
// programmatically, only described to the model.
const Table = "telemetry_data"

// Record is one telemetry row. All columns are textual in the source table.
type Record struct {
	Timestamp       string `json:"timestamp"`
	Name            string `json:"name"`
	Value           string `json:"value"`
	CalibratedValue string `json:"calibrated_value"`
	Unit            string `json:"unit"`
	CFunc           string `json:"c_func"`
}

type ResultSet struct {
	Count int64
	Rows  []Record
}

// Render formats the result set as a plain-text table for the compose prompt.
func (rs *ResultSet) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Total rows: %d\n", rs.Count)
	table := tablewriter.NewWriter(&sb)
	table.SetHeader([]string{"timestamp", "name", "value", "calibrated_value", "unit", "c_func"})
	for _, r := range rs.Rows {
		table.Append([]string{r.Timestamp, r.Name, r.Value, r.CalibratedValue, r.Unit, r.CFunc})
	}
	table.Render()
	return sb.String()
}

// Store wraps the Supabase client behind a single fixed read.
type Store struct {
	client *supabase.Client

	// ApplyGeneratedFilter documents a known quirk rather than changing it:
	// the deployed system never applies the generated SQL to the read, it
	// always fetches the whole table. False keeps that behavior. True still
	// performs the same fixed read (executing model-written SQL is out of
	// scope) but logs that a filter was requested and ignored.
	ApplyGeneratedFilter bool
}

func NewStore(url, key string, applyGeneratedFilter bool) (*Store, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to init supabase client: %w", err)
	}
	return &Store{client: client, ApplyGeneratedFilter: applyGeneratedFilter}, nil
}

// Fetch performs one full read of the telemetry table with an exact count.
// The query argument is the generated SQL; see ApplyGeneratedFilter for why
// it is not applied.
func (s *Store) Fetch(ctx context.Context, query string) (*ResultSet, error) {
	if s.ApplyGeneratedFilter && query != "" {
		log.Printf("⚠️ generated filter requested but not supported, performing full read of %s", Table)
	}

	data, count, err := s.client.From(Table).Select("*", "exact", false).ExecuteWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", Table, err)
	}

	var rows []Record
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s rows: %w", Table, err)
	}
	return &ResultSet{Count: count, Rows: rows}, nil
}
