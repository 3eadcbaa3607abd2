package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Urmanga/file-scanner-gui/internal/config"
	"github.com/Urmanga/file-scanner-gui/internal/report"
	"github.com/Urmanga/file-scanner-gui/pkg/models"
)

func TestValidateFlags(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		format  string
		tagCap  int
		wantErr bool
	}{
		{"Defaults", "", "", 0, false},
		{"Hybrid json", "hybrid", "json", 5, false},
		{"Txt alias", "local", "TXT", 0, false},
		{"Bad mode", "cloud", "", 0, true},
		{"Bad format", "", "html", 0, true},
		{"Cap too large", "", "", 8, true},
		{"Negative cap", "", "", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFlags(tt.mode, tt.format, tt.tagCap)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		percent float64
		filled  int
	}{
		{0, 0},
		{50, 5},
		{100, 10},
		{150, 10},
		{-5, 0},
	}

	for _, tt := range tests {
		bar := progressBar(tt.percent, 10)
		if got := strings.Count(bar, "█"); got != tt.filled {
			t.Errorf("progressBar(%v) filled = %d, want %d", tt.percent, got, tt.filled)
		}
		if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != 10 {
			t.Errorf("progressBar(%v) width = %d, want 10", tt.percent, got)
		}
	}
}

func TestExplainWriteError(t *testing.T) {
	exporter := report.NewExporter(zaptest.NewLogger(t))
	inv := models.NewInventory("s", "/x")

	_, err := exporter.Export(inv, report.FormatCSV, filepath.Join(t.TempDir(), "missing", "out.csv"))
	if err == nil {
		t.Fatal("Export() expected error for missing directory")
	}
	if msg := explainWriteError(err).Error(); !strings.Contains(msg, "does not exist") {
		t.Errorf("explainWriteError() = %q", msg)
	}

	plain := errors.New("other")
	if explainWriteError(plain) != plain {
		t.Error("explainWriteError() should pass unrelated errors through")
	}
}

func TestFilterRecords(t *testing.T) {
	records := []*models.FileRecord{
		{Name: "a.jpg", Extension: ".jpg", SizeMB: 5},
		{Name: "b.jpg", Extension: ".jpg", SizeMB: 0.5},
		{Name: "c.txt", Extension: ".txt", SizeMB: 9},
	}

	got := filterRecords(records, 1, ".jpg")
	if len(got) != 1 || got[0].Name != "a.jpg" {
		t.Errorf("filterRecords() = %v", got)
	}
}

func TestLoadRules(t *testing.T) {
	cfg := &config.Config{}
	rs, err := loadRules(cfg)
	if err != nil {
		t.Fatalf("loadRules() error = %v", err)
	}
	if rs.Len() == 0 {
		t.Error("loadRules() with no stored rules should return the defaults")
	}

	cfg.Rules = []config.RuleConfig{{Category: "logs", Patterns: []string{".log"}, Tags: []string{"log"}}}
	rs, err = loadRules(cfg)
	if err != nil {
		t.Fatalf("loadRules() error = %v", err)
	}
	if rs.Len() != 1 {
		t.Errorf("loadRules() Len = %d, want 1", rs.Len())
	}

	cfg.Rules = []config.RuleConfig{{Category: "broken"}}
	if _, err := loadRules(cfg); err == nil {
		t.Error("loadRules() expected error for invalid stored rule")
	}
}

func TestNewEngine_LocalOnly(t *testing.T) {
	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	eng, err := newEngine(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("newEngine() error = %v", err)
	}
	defer eng.Close()

	if eng.cache != nil {
		t.Error("newEngine() opened the tag cache with remote tagging disabled")
	}
	if eng.remote.Enabled() {
		t.Error("remote classifier enabled by default")
	}

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	inv, err := eng.scanner.Scan(ctx, cfg.ScanConfiguration(root), nil)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if inv.Len() != 1 || len(inv.Records[0].Tags) == 0 {
		t.Errorf("Scan() records = %+v", inv.Records)
	}
}

func TestNewEngine_OpensCache(t *testing.T) {
	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	cfg.Remote.Enabled = true
	cfg.Remote.Provider = config.ProviderHTTP
	cfg.Remote.BaseURL = "http://127.0.0.1:1"
	cfg.Cache.Path = filepath.Join(t.TempDir(), "tags.db")

	eng, err := newEngine(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("newEngine() error = %v", err)
	}
	defer eng.Close()

	if eng.cache == nil {
		t.Error("newEngine() did not open the tag cache")
	}
}
