package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/fundscope/internal/analysis"
)

func sampleData() analysis.Data {
	d1 := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)

	return analysis.Data{
		History: []analysis.NAVPoint{
			{FundCode: "000001", Date: d1, NAV: 1.01},
			{FundCode: "000001", Date: d2, NAV: 1.02},
		},
		LatestPredictions: []analysis.Prediction{
			{FundCode: "000001", FundName: "Growth A", Date: d2, Predicted: 1.1, Actual: 1.0},
			{FundCode: "000002", FundName: `Bond "Plus", Inc`, Date: d2, Predicted: 0.98},
		},
		FundTypes: []analysis.FundTypeShare{
			{FundType: "bond", Channel: analysis.SalesOnline, Count: 2},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	return records
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.csv")
	if err := ToCSV(sampleData(), path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	records := readCSV(t, path)
	// header + 2 nav + 2 predictions
	if len(records) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(records))
	}

	expectedHeader := []string{"Kind", "Fund", "Date", "NAV", "Predicted", "Actual", "Error"}
	for i, h := range expectedHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	nav := records[1]
	if nav[0] != "nav" || nav[1] != "000001" || nav[2] != "2023-01-02" || nav[3] != "1.0100" {
		t.Fatalf("nav row = %v", nav)
	}

	pred := records[3]
	if pred[0] != "prediction" || pred[4] != "1.1000" || pred[5] != "1.0000" || pred[6] != "10.00%" {
		t.Fatalf("prediction row = %v", pred)
	}

	pending := records[4]
	if pending[5] != "" || pending[6] != "" {
		t.Fatalf("pending prediction should have no actual or error: %v", pending)
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := ToCSV(analysis.Data{}, path); err != nil {
		t.Fatal(err)
	}
	if records := readCSV(t, path); len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(analysis.Data{}, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")
	if err := ToJSON(sampleData(), path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var result jsonExport
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if len(result.History) != 2 || len(result.Predictions) != 2 || len(result.FundTypes) != 1 {
		t.Fatalf("result = %+v", result)
	}
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}

	settled := result.Predictions[0]
	if settled.Actual == nil || settled.Error == nil {
		t.Fatal("settled prediction should carry actual and error")
	}
	if *settled.Error < 0.0999 || *settled.Error > 0.1001 {
		t.Fatalf("error = %v", *settled.Error)
	}
	if result.Predictions[1].Actual != nil {
		t.Fatal("pending prediction should omit actual")
	}
	if result.Predictions[1].Name != `Bond "Plus", Inc` {
		t.Fatalf("name mangled: %q", result.Predictions[1].Name)
	}
	if result.FundTypes[0].Channel != "online" {
		t.Fatalf("channel = %q", result.FundTypes[0].Channel)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := ToJSON(analysis.Data{}, path); err != nil {
		t.Fatal(err)
	}

	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), `"history": []`) {
		t.Fatalf("empty history should be an empty array:\n%s", raw)
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(analysis.Data{}, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2023, 6, 14, 10, 0, 0, 0, time.UTC)
	got := Filename("/tmp", "json", now)
	if got != filepath.Join("/tmp", "fundscope-export-2023-06-14.json") {
		t.Fatalf("Filename = %q", got)
	}
}
