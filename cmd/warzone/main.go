// Command warzone runs the war-zone simulation: headless batches that print
// and archive their reports, or a single paced run observable over HTTP.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/talgya/warzone/internal/api"
	"github.com/talgya/warzone/internal/config"
	"github.com/talgya/warzone/internal/engine"
	"github.com/talgya/warzone/internal/persistence"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (defaults apply when empty)")
		ticks      = flag.Uint64("ticks", 0, "stop after this many ticks (0 = config value)")
		seed       = flag.Int64("seed", 0, "random seed (default: config seed, else entropy)")
		runs       = flag.Int("runs", 0, "number of runs in the batch (0 = config value)")
		seedStep   = flag.Int64("seed-step", 0, "seed increment between batch runs (0 = config value)")
		dbPath     = flag.String("db", "", `archive database path ("none" disables archiving)`)
		serve      = flag.Int("serve", 0, "serve a paced run on this HTTP port")
		interval   = flag.Duration("interval", 0, "tick interval when serving (0 = config value)")
		crowds     = flag.String("crowds", "", `crowded-area source: "fixed" or "noise"`)
		audit      = flag.Bool("audit", false, "verify grid/registry integrity after every tick")
		logLevel   = flag.String("log-level", "", "debug, info, warn or error")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	// Explicit flags win over file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ticks":
			cfg.Run.MaxTicks = *ticks
		case "seed":
			cfg.Seed = seed
		case "runs":
			cfg.Run.Runs = *runs
		case "seed-step":
			cfg.Run.SeedStep = *seedStep
		case "db":
			cfg.DBPath = *dbPath
		case "serve":
			cfg.APIPort = *serve
		case "interval":
			cfg.Run.Interval = *interval
		case "crowds":
			cfg.Crowds.Source = *crowds
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		var ce *engine.ConfigError
		if errors.As(err, &ce) {
			slog.Error("invalid configuration", "field", ce.Field, "reason", ce.Reason)
		} else {
			slog.Error("invalid configuration", "error", err)
		}
		os.Exit(2)
	}

	// ── Archive ───────────────────────────────────────────────────────
	var db *persistence.DB
	if cfg.DBPath != "" && cfg.DBPath != "none" {
		os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
		var err error
		db, err = persistence.Open(cfg.DBPath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("database opened", "path", cfg.DBPath)
	}

	if cfg.APIPort > 0 {
		if err := servePaced(cfg, db); err != nil {
			slog.Error("run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := runBatch(cfg, db, *audit, os.Stdout); err != nil {
		slog.Error("batch failed", "error", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// runBatch runs cfg.Run.Runs headless simulations, one per seed, printing
// each report to out and archiving it when db is non-nil.
func runBatch(cfg *config.Config, db *persistence.DB, audit bool, out io.Writer) error {
	seeds := cfg.RunSeeds()
	var summary batchSummary

	for i, seed := range seeds {
		params := cfg.Params(seed)
		sim, err := engine.NewSimulation(params)
		if err != nil {
			return err
		}

		var auditErr error
		start := time.Now()
		engine.RunFor(sim, cfg.Run.MaxTicks, func(s *engine.Simulation) {
			if audit && auditErr == nil {
				auditErr = s.CheckIntegrity()
			}
		})
		if auditErr != nil {
			return fmt.Errorf("run %d (seed %d): %w", i+1, seed, auditErr)
		}
		slog.Info("run finished", "run", i+1, "seed", seed, "ticks", sim.Tick(), "elapsed", time.Since(start))

		runID := ""
		if db != nil {
			runID, err = db.ArchiveRun(sim, params)
			if err != nil {
				slog.Error("archive failed", "seed", seed, "error", err)
			}
		}

		rep, ok := sim.Report()
		if !ok {
			slog.Warn("run hit the tick limit before any population was wiped out",
				"seed", seed, "ticks", sim.Tick(), "live", fmt.Sprintf("%+v", sim.LiveCounts()))
			fmt.Fprintf(out, "\n%s run (seed %d) stopped at tick %s without a winner.\n",
				ordinal(i+1), seed, comma(sim.Tick()))
			continue
		}
		summary.add(rep)
		printReport(out, i+1, seed, runID, rep)
	}

	if len(seeds) > 1 {
		summary.print(out)
	}
	return nil
}

// servePaced runs one simulation in real time behind the HTTP API until it
// terminates, hits the tick limit, or receives SIGINT/SIGTERM.
func servePaced(cfg *config.Config, db *persistence.DB) error {
	seed := cfg.BaseSeed()
	params := cfg.Params(seed)
	sim, err := engine.NewSimulation(params)
	if err != nil {
		return err
	}

	var mu sync.RWMutex
	eng := engine.NewEngine(func() bool {
		mu.Lock()
		defer mu.Unlock()
		sim.Advance()
		return sim.Running() && (cfg.Run.MaxTicks == 0 || sim.Tick() < cfg.Run.MaxTicks)
	})
	eng.Interval = cfg.Run.Interval

	adminKey := os.Getenv("WARZONE_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("WARZONE_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}
	apiServer := &api.Server{
		Sim:      sim,
		Mu:       &mu,
		Eng:      eng,
		DB:       db,
		Port:     cfg.APIPort,
		AdminKey: adminKey,
	}
	apiServer.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\nWar zone is live: %s civilians, %s soldiers, %s insurgents on a %dx%d grid (seed %d).\n",
		comma(sim.InitialCounts().Civilians), comma(sim.InitialCounts().Military),
		comma(sim.InitialCounts().Insurgents), sim.Width(), sim.Height(), seed)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.APIPort)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	if sim.Running() {
		eng.Run()
	}

	mu.RLock()
	defer mu.RUnlock()
	runID := ""
	if db != nil {
		if runID, err = db.ArchiveRun(sim, params); err != nil {
			slog.Error("archive failed", "error", err)
		}
	}
	if rep, ok := sim.Report(); ok {
		printReport(os.Stdout, 1, seed, runID, rep)
	} else {
		fmt.Printf("Simulation stopped at tick %s.\n", comma(sim.Tick()))
	}
	return nil
}
