package config

import (
	"os"
	"path/filepath"
	"testing"

	"fintrack/internal/engine"
)

func TestLoadScoring(t *testing.T) {
	t.Run("defaults_without_file", func(t *testing.T) {
		cfg, err := LoadScoring("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg != engine.DefaultHealthConfig() {
			t.Errorf("expected defaults, got %+v", cfg)
		}
	})

	t.Run("yaml_overrides_subset", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scoring.yaml")
		yaml := "levels:\n  good_min: 75\nconcentration:\n  high_percent: 60\n"
		if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadScoring(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Levels.GoodMin != 75 || cfg.Levels.FairMin != 50 {
			t.Errorf("unexpected levels %+v", cfg.Levels)
		}
		if cfg.Concentration.HighPercent != 60 || cfg.Concentration.ElevatedPercent != 30 {
			t.Errorf("unexpected concentration %+v", cfg.Concentration)
		}
		if cfg.EmergencyFund.AdequatePoints != 40 {
			t.Errorf("emergency fund defaults lost: %+v", cfg.EmergencyFund)
		}
	})

	t.Run("env_override", func(t *testing.T) {
		t.Setenv("FINTRACK_SCORING_LEVELS_FAIR_MIN", "40")
		cfg, err := LoadScoring("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Levels.FairMin != 40 {
			t.Errorf("expected fair_min 40, got %v", cfg.Levels.FairMin)
		}
	})

	t.Run("missing_file", func(t *testing.T) {
		if _, err := LoadScoring(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("inconsistent_bands", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("stock_exposure:\n  elevated_percent: 90\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadScoring(path); err == nil {
			t.Error("expected validation error")
		}
	})
}
