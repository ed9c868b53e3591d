package archive

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"order-metrics/internal/config"
	"order-metrics/internal/orders"
	"order-metrics/internal/report"
	"order-metrics/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.NewSQLite(config.DatabaseConfig{InMemory: true, MaxOpenConns: 4, MaxIdleConns: 4})
	if err != nil {
		t.Fatalf("NewSQLite returned error: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	svc, err := NewService(context.Background(), st, nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func buildReport(t *testing.T) *report.Report {
	t.Helper()
	table := orders.NewTable([]orders.Record{
		{Type: "Limit", LatencyNS: 100, Executed: 1},
		{Type: "Market", LatencyNS: 50, Executed: 3, Rebalances: 2},
	})
	params, err := report.ProfileByName("classic")
	if err != nil {
		t.Fatalf("ProfileByName returned error: %v", err)
	}
	rep, err := report.Build(context.Background(), table, params)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	return rep
}

func TestService_SaveGetList(t *testing.T) {
	svc := newTestService(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	rep := buildReport(t)
	first, err := svc.Save(context.Background(), "", "a.csv", rep)
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if first.ID == "" || first.Profile != "classic" || first.Rows != 2 {
		t.Fatalf("unexpected run: %+v", first)
	}
	second, err := svc.Save(context.Background(), "fixed-id", "b.csv", rep)
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	entries, err := svc.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != second.ID || entries[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", entries)
	}

	got, err := svc.Get(context.Background(), "fixed-id")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !got.CreatedAt.Equal(second.CreatedAt) || got.Source != "b.csv" {
		t.Fatalf("unexpected run: %+v", got)
	}

	var decoded report.Report
	if err := json.Unmarshal(got.Payload, &decoded); err != nil {
		t.Fatalf("payload is not a report: %v", err)
	}
	if decoded.Summary.Orders != 2 || len(decoded.Distribution) != 2 {
		t.Fatalf("unexpected decoded report: %+v", decoded.Summary)
	}
}

func TestService_GetMissing(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Get(context.Background(), "absent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_DuplicateID(t *testing.T) {
	svc := newTestService(t)
	rep := buildReport(t)
	if _, err := svc.Save(context.Background(), "dup", "a.csv", rep); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if _, err := svc.Save(context.Background(), "dup", "a.csv", rep); err == nil {
		t.Fatalf("expected primary key violation")
	}
}

func TestNewService_NilStore(t *testing.T) {
	if _, err := NewService(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil store")
	}
}
