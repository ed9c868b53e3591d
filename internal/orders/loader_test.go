package orders

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_PreservesRowOrder(t *testing.T) {
	input := "Limit,100,1,0\nMarket, 50.5 ,3,2\n\nCancelLimit,70,0,1\n"

	table, err := Load(context.Background(), strings.NewReader(input), LoadOptions{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", table.Len())
	}

	want := []Record{
		{Type: "Limit", LatencyNS: 100, Executed: 1, Rebalances: 0},
		{Type: "Market", LatencyNS: 50.5, Executed: 3, Rebalances: 2},
		{Type: "CancelLimit", LatencyNS: 70, Executed: 0, Rebalances: 1},
	}
	for i, rec := range table.Records() {
		if rec != want[i] {
			t.Errorf("row %d mismatch: got %+v want %+v", i, rec, want[i])
		}
	}
}

func TestLoad_EmptyInput(t *testing.T) {
	table, err := Load(context.Background(), strings.NewReader(""), LoadOptions{})
	if err != nil {
		t.Fatalf("expected no error for empty input, got %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("expected empty table, got %d rows", table.Len())
	}
}

func TestLoad_SchemaErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		field string
		line  int
	}{
		{name: "missing rebalance", input: "Limit,100,1\n", field: FieldRebalances, line: 1},
		{name: "missing latency", input: "Limit,100,1,0\nMarket\n", field: FieldLatency, line: 2},
		{name: "blank executed", input: "Limit,100,,0\n", field: FieldExecuted, line: 1},
		{name: "bad latency", input: "Limit,fast,1,0\n", field: FieldLatency, line: 1},
		{name: "negative latency", input: "Limit,-1,1,0\n", field: FieldLatency, line: 1},
		{name: "fractional count", input: "Limit,10,1.5,0\n", field: FieldExecuted, line: 1},
		{name: "negative rebalance", input: "Limit,10,1,-2\n", field: FieldRebalances, line: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(context.Background(), strings.NewReader(tc.input), LoadOptions{})
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected SchemaError, got %v", err)
			}
			if schemaErr.Field != tc.field {
				t.Errorf("expected field %s, got %s", tc.field, schemaErr.Field)
			}
			if schemaErr.Line != tc.line {
				t.Errorf("expected line %d, got %d", tc.line, schemaErr.Line)
			}
		})
	}
}

func TestLoad_CustomDelimiterAndComments(t *testing.T) {
	input := "# exported by pipeline\nMarket;120;4;0\n"

	table, err := Load(context.Background(), strings.NewReader(input), LoadOptions{Delimiter: ';', Comment: '#'})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if table.Len() != 1 || table.At(0).Executed != 4 {
		t.Fatalf("unexpected table: %+v", table.Records())
	}
}

func TestLoad_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Load(ctx, strings.NewReader("Limit,1,0,0\n"), LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "order_processing_times.csv")
	if err := os.WriteFile(path, []byte("AddLimit,300,0,5\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	table, err := LoadFile(context.Background(), path, LoadOptions{})
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if table.Len() != 1 || table.At(0).Rebalances != 5 {
		t.Fatalf("unexpected table: %+v", table.Records())
	}

	if _, err := LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), LoadOptions{}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestTable_FilterDoesNotMutate(t *testing.T) {
	table := NewTable([]Record{{Type: "Limit", LatencyNS: 1}, {Type: "Market", LatencyNS: 2}})

	markets := table.Filter(func(r Record) bool { return r.Type == "Market" })
	if markets.Len() != 1 || table.Len() != 2 {
		t.Fatalf("unexpected lengths: filtered=%d original=%d", markets.Len(), table.Len())
	}

	recs := table.Records()
	recs[0].Type = "Changed"
	if table.At(0).Type != "Limit" {
		t.Fatalf("Records must return a copy")
	}
}
