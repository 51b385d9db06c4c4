package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Threshold != 80 {
		t.Errorf("Default threshold = %d, want 80", cfg.Threshold)
	}
	if cfg.Format != "text" {
		t.Errorf("Default format = %q, want %q", cfg.Format, "text")
	}
	if cfg.WithTests {
		t.Error("Default withTests should be false")
	}
	if cfg.TaskTimeoutSeconds != 60 {
		t.Errorf("Default taskTimeoutSeconds = %d, want 60", cfg.TaskTimeoutSeconds)
	}
	if cfg.DetectDepth != 3 {
		t.Errorf("Default detectDepth = %d, want 3", cfg.DetectDepth)
	}
	if cfg.History.Disabled {
		t.Error("Default history should be enabled")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg.Threshold != 0 {
		t.Errorf("Missing file should give zero config, got threshold %d", cfg.Threshold)
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	want := Default()
	want.Threshold = 65
	want.Format = "json"
	want.DisabledTasks = []string{"largechange"}
	if err := Save(want); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if got.Threshold != 65 {
		t.Errorf("Threshold = %d, want 65", got.Threshold)
	}
	if got.Format != "json" {
		t.Errorf("Format = %q, want %q", got.Format, "json")
	}
	if len(got.DisabledTasks) != 1 || got.DisabledTasks[0] != "largechange" {
		t.Errorf("DisabledTasks = %v, want [largechange]", got.DisabledTasks)
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "precheck", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("threshold: [not an int"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFile(); err == nil {
		t.Fatal("expected parse error for malformed config")
	}
}

func TestMergeEnv(t *testing.T) {
	t.Setenv("PRECHECK_THRESHOLD", "70")
	t.Setenv("PRECHECK_FORMAT", "sarif")
	t.Setenv("PRECHECK_WITH_TESTS", "true")
	t.Setenv("PRECHECK_DETECT_DEPTH", "5")

	cfg := Default()
	mergeEnv(&cfg)

	if cfg.Threshold != 70 {
		t.Errorf("Threshold = %d, want 70", cfg.Threshold)
	}
	if cfg.Format != "sarif" {
		t.Errorf("Format = %q, want %q", cfg.Format, "sarif")
	}
	if !cfg.WithTests {
		t.Error("WithTests should be true")
	}
	if cfg.DetectDepth != 5 {
		t.Errorf("DetectDepth = %d, want 5", cfg.DetectDepth)
	}
}

func TestLoad_Precedence(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	fileCfg := Default()
	fileCfg.Threshold = 60
	fileCfg.Format = "markdown"
	if err := Save(fileCfg); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	// Env beats file
	t.Setenv("PRECHECK_THRESHOLD", "70")

	// Flag override beats env
	cfg, err := Load(map[string]string{"threshold": "90"})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Threshold != 90 {
		t.Errorf("Threshold = %d, want 90 (flag override)", cfg.Threshold)
	}
	if cfg.Format != "markdown" {
		t.Errorf("Format = %q, want %q (from file)", cfg.Format, "markdown")
	}
}

func TestSetField(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
	}{
		{"valid threshold", "threshold", "75", false},
		{"threshold out of range", "threshold", "150", true},
		{"threshold not a number", "threshold", "high", true},
		{"valid format", "format", "json", false},
		{"valid withTests", "withTests", "true", false},
		{"bad withTests", "withTests", "maybe", true},
		{"valid rulesFile", "rulesFile", "/etc/rules.yaml", false},
		{"unknown key", "provider", "anthropic", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := SetField(&cfg, tt.key, tt.value)
			if tt.wantErr && err == nil {
				t.Errorf("SetField(%q, %q) expected error, got nil", tt.key, tt.value)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("SetField(%q, %q) error: %v", tt.key, tt.value, err)
			}
		})
	}
}
