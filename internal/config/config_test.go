package config_test

import (
	"path/filepath"
	"testing"

	"github.com/xavrousseau/datalyzer/internal/config"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	want := config.Default()
	want.ListenAddr = ":9090"
	want.LogLevel = "debug"
	want.SuggestMinScore = 0.75
	if err := config.Save(want, path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := config.Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.ListenAddr != want.ListenAddr {
		t.Errorf("listen_addr %q, want %q", got.ListenAddr, want.ListenAddr)
	}
	if got.LogLevel != want.LogLevel {
		t.Errorf("log_level %q, want %q", got.LogLevel, want.LogLevel)
	}
	if got.SuggestMinScore != want.SuggestMinScore {
		t.Errorf("suggest_min_score %g, want %g", got.SuggestMinScore, want.SuggestMinScore)
	}
	if got.MaxUploadBytes != want.MaxUploadBytes {
		t.Errorf("max_upload_bytes %d, want %d", got.MaxUploadBytes, want.MaxUploadBytes)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	got, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	def := config.Default()
	if got.ListenAddr != def.ListenAddr || got.OutlierZThreshold != def.OutlierZThreshold {
		t.Errorf("defaults not applied: %+v", got)
	}
}
