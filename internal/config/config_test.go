package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"order-metrics/internal/report"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "input:\n  path: build/order_processing_times.csv\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Input.Path != "build/order_processing_times.csv" {
		t.Errorf("unexpected input path: %s", cfg.Input.Path)
	}
	if cfg.Report.Profile != "latency" || !cfg.Render.Enabled || cfg.Render.Format != "png" {
		t.Errorf("unexpected defaults: report=%+v render=%+v", cfg.Report, cfg.Render)
	}
	if cfg.Database.ConnMaxLifetime.Hours() != 1 {
		t.Errorf("duration default not decoded: %v", cfg.Database.ConnMaxLifetime)
	}
	if cfg.Input.DelimiterRune() != ',' || cfg.Input.CommentRune() != 0 {
		t.Errorf("unexpected delimiter/comment runes")
	}
}

func TestLoad_ReportOverrides(t *testing.T) {
	path := writeConfig(t, `
report:
  profile: classic
  quantile_high: 0.95
  excluded_types: ["Market"]
  min_group_size: 3
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	params, err := cfg.Report.Params()
	if err != nil {
		t.Fatalf("Params returned error: %v", err)
	}
	if params.HistogramUpperBound != 5000 || params.HistogramBuckets != 50 {
		t.Errorf("profile values lost: %+v", params)
	}
	if params.QuantileLow != 0.25 || params.QuantileHigh != 0.95 {
		t.Errorf("quantile override not applied: %+v", params)
	}
	if len(params.ExcludedTypes) != 1 || params.ExcludedTypes[0] != "Market" {
		t.Errorf("excluded override not applied: %v", params.ExcludedTypes)
	}
	if len(params.MarketTypes) != 2 || params.MinGroupSize != 3 {
		t.Errorf("unexpected market types/min group: %+v", params)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing config")
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	path := writeConfig(t, `
report:
  profile: nope
render:
  format: gif
server:
  enabled: true
  port: 0
archive:
  enabled: false
publish:
  enabled: true
  bucket: ""
`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !errors.Is(err, report.ErrUnknownProfile) {
		t.Errorf("expected unknown profile in %v", err)
	}
	for _, want := range []string{"render.format", "server.port", "archive.enabled", "publish.bucket"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in error: %v", want, err)
		}
	}
}

func TestInputConfig_TabDelimiter(t *testing.T) {
	in := InputConfig{Delimiter: `\t`, Comment: "#"}
	if in.DelimiterRune() != '\t' || in.CommentRune() != '#' {
		t.Fatalf("unexpected runes: %q %q", in.DelimiterRune(), in.CommentRune())
	}
}
