package main

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/warzone/internal/agents"
	"github.com/talgya/warzone/internal/config"
	"github.com/talgya/warzone/internal/engine"
	"github.com/talgya/warzone/internal/persistence"
)

func smallConfig(seed int64, runs int) *config.Config {
	cfg := config.Default()
	cfg.Grid.Width, cfg.Grid.Height = 12, 12
	cfg.Population.Civilians = 40
	cfg.Population.Military = 12
	cfg.Population.Insurgents = 3
	cfg.Seed = &seed
	cfg.Run.Runs = runs
	cfg.Run.MaxTicks = 500
	return cfg
}

func TestRunBatchPrintsEveryRun(t *testing.T) {
	var out bytes.Buffer
	if err := runBatch(smallConfig(21, 3), nil, true, &out); err != nil {
		t.Fatalf("runBatch: %v", err)
	}
	s := out.String()
	for _, want := range []string{"1st run", "2nd run", "3rd run"} {
		if !strings.Contains(s, want) {
			t.Fatalf("output missing %q:\n%s", want, s)
		}
	}
}

func TestRunBatchArchives(t *testing.T) {
	db, err := persistence.Open(filepath.Join(t.TempDir(), "batch.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	var out bytes.Buffer
	if err := runBatch(smallConfig(5, 2), db, false, &out); err != nil {
		t.Fatalf("runBatch: %v", err)
	}
	runs, err := db.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("archived %d runs, want 2", len(runs))
	}
	seeds := map[int64]bool{runs[0].Seed: true, runs[1].Seed: true}
	if !seeds[5] || !seeds[6] {
		t.Fatalf("archived seeds %v, want 5 and 6", seeds)
	}
}

func TestPrintReportNotApplicable(t *testing.T) {
	r := engine.GenerateReport(
		agents.Counts{Civilians: 1200, Military: 5, Insurgents: 2},
		agents.Counts{Civilians: 1190, Military: 5, Insurgents: 0},
		10, nil,
	)
	var out bytes.Buffer
	printReport(&out, 1, 77, "abc", r)
	s := out.String()
	for _, want := range []string{"seed 77", "archived as abc", "1,200", "civilians:insurgents not applicable", "civilians:military 238.00"} {
		if !strings.Contains(s, want) {
			t.Fatalf("output missing %q:\n%s", want, s)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMeanStd(t *testing.T) {
	mean, sd := meanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if mean != 5 || sd != 2 {
		t.Fatalf("mean=%v sd=%v, want 5 and 2", mean, sd)
	}
}
