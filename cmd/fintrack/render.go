package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/glamour"

	"fintrack/internal/config"
	"fintrack/internal/engine"
)

var stdout io.Writer = os.Stdout

// sourceFlags are shared by every report command.
type sourceFlags struct {
	backup  string
	rate    float64
	scoring string
	date    string
	raw     bool
}

func (s *sourceFlags) register(f *flag.FlagSet) {
	f.StringVar(&s.backup, "b", "fintrack_backup.json", "JSON backup file to report on.")
	f.Float64Var(&s.rate, "rate", engine.DefaultUSDRate, "USD/TWD rate used when the backup has no manual rate.")
	f.StringVar(&s.scoring, "scoring", "", "YAML file overriding the health scoring bands.")
	f.StringVar(&s.date, "d", "", "Report date (YYYY-MM-DD). Defaults to today.")
	f.BoolVar(&s.raw, "raw", false, "Print plain markdown instead of rendering it.")
}

func (s *sourceFlags) now() (time.Time, error) {
	if s.date == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s.date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s.date, err)
	}
	return t, nil
}

// load decodes the backup and analyzes it.
func (s *sourceFlags) load() (engine.Dashboard, engine.Snapshot, error) {
	var snap engine.Snapshot

	now, err := s.now()
	if err != nil {
		return engine.Dashboard{}, snap, err
	}
	if s.rate <= 0 {
		return engine.Dashboard{}, snap, fmt.Errorf("rate must be positive, got %v", s.rate)
	}

	cfg, err := config.LoadScoring(s.scoring)
	if err != nil {
		return engine.Dashboard{}, snap, err
	}

	data, err := os.ReadFile(s.backup)
	if err != nil {
		return engine.Dashboard{}, snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return engine.Dashboard{}, snap, fmt.Errorf("decode backup %q: %w", s.backup, err)
	}

	return engine.Analyze(snap, s.rate, cfg, now), snap, nil
}

// print renders md for the terminal unless raw output was requested.
func (s *sourceFlags) print(md string) error {
	if s.raw {
		_, err := io.WriteString(stdout, md)
		return err
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(stdout, out)
	return err
}
