package persistence

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/talgya/warzone/internal/engine"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func finishedRun(t *testing.T) (*engine.Simulation, engine.Params) {
	t.Helper()
	p := engine.Params{Width: 12, Height: 12, Civilians: 40, Military: 12, Insurgents: 3, Seed: 9}
	sim, err := engine.NewSimulation(p)
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	engine.RunFor(sim, 300, nil)
	return sim, p
}

func TestArchiveAndLoadRun(t *testing.T) {
	db := openTestDB(t)
	sim, p := finishedRun(t)

	id, err := db.ArchiveRun(sim, p)
	if err != nil {
		t.Fatalf("ArchiveRun: %v", err)
	}

	r, err := db.LoadRun(id)
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
	if r.Seed != 9 || r.Width != 12 || r.Height != 12 || r.Ticks != sim.Tick() {
		t.Fatalf("run = %+v", r)
	}

	rep, ok, err := r.Report()
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	want, done := sim.Report()
	if ok != done || r.Terminated != done {
		t.Fatalf("terminated = %v/%v, simulation finished = %v", r.Terminated, ok, done)
	}
	if done && rep != want {
		t.Fatalf("archived report differs:\n%+v\n%+v", rep, want)
	}

	samples, err := db.Samples(id)
	if err != nil {
		t.Fatalf("Samples: %v", err)
	}
	history := sim.History()
	if len(samples) != len(history) {
		t.Fatalf("got %d samples, want %d", len(samples), len(history))
	}
	for i := range history {
		if samples[i] != history[i] {
			t.Fatalf("sample %d = %+v, want %+v", i, samples[i], history[i])
		}
	}

	last, err := db.GetMeta("last_run")
	if err != nil || last != id {
		t.Fatalf("last_run = %q (%v), want %q", last, err, id)
	}
}

func TestLoadRunNotFound(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.LoadRun(NewRunID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	db := openTestDB(t)
	for i, created := range []string{"2026-01-01T00:00:00Z", "2026-03-01T00:00:00Z", "2026-02-01T00:00:00Z"} {
		err := db.SaveRun(Run{
			ID:         NewRunID(),
			CreatedAt:  created,
			Seed:       int64(i),
			Width:      5,
			Height:     5,
			ParamsJSON: "{}",
		})
		if err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}

	runs, err := db.RecentRuns(2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].Seed != 1 || runs[1].Seed != 2 {
		t.Fatalf("runs = %+v", runs)
	}
	if _, ok, _ := runs[0].Report(); ok {
		t.Fatal("run without report should not decode one")
	}
}

func TestRecentEventsNewestFirst(t *testing.T) {
	db := openTestDB(t)
	id := NewRunID()
	events := []engine.Event{
		{Tick: 1, Description: "a", Category: "encirclement"},
		{Tick: 2, Description: "b", Category: "crowd_crush"},
		{Tick: 3, Description: "c", Category: "terminated"},
	}
	if err := db.SaveEvents(id, events); err != nil {
		t.Fatalf("SaveEvents: %v", err)
	}
	if err := db.SaveEvents(NewRunID(), events[:1]); err != nil {
		t.Fatalf("SaveEvents other run: %v", err)
	}

	got, err := db.RecentEvents(id, 2)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(got) != 2 || got[0].Tick != 3 || got[1].Tick != 2 {
		t.Fatalf("events = %+v", got)
	}
}
