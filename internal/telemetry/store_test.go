package telemetry

import (
	"strings"
	"testing"
)

func TestResultSetRender(t *testing.T) {
	rs := &ResultSet{
		Count: 2,
		Rows: []Record{
			{Timestamp: "2024-05-01T12:00:00Z", Name: "eps_battery", Value: "3.9", Unit: "V"},
			{Timestamp: "2024-05-01T12:01:00Z", Name: "uptime", Value: "86400", Unit: "seconds", CFunc: "raw"},
		},
	}

	out := rs.Render()
	if !strings.Contains(out, "Total rows: 2") {
		t.Fatalf("count missing from rendering:\n%s", out)
	}
	for _, want := range []string{"eps_battery", "3.9", "uptime", "86400", "seconds", "raw", "calibrated_value"} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendering missing %q:\n%s", want, out)
		}
	}
}

func TestResultSetRenderEmpty(t *testing.T) {
	rs := &ResultSet{}
	out := rs.Render()
	if !strings.Contains(out, "Total rows: 0") {
		t.Fatalf("empty result set should still report a count:\n%s", out)
	}
}
