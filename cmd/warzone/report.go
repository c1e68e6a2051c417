package main

import (
	"fmt"
	"io"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/talgya/warzone/internal/agents"
	"github.com/talgya/warzone/internal/engine"
)

type integer interface {
	~int | ~int64 | ~uint64
}

func comma[T integer](n T) string {
	return humanize.Comma(int64(n))
}

func ordinal(n int) string {
	return humanize.Ordinal(n)
}

func perTick(r engine.Rate) string {
	if !r.Valid {
		return r.String()
	}
	return humanize.FormatFloat("#,###.###", r.Value) + "/tick"
}

func printReport(w io.Writer, run int, seed int64, runID string, r engine.Report) {
	fmt.Fprintf(w, "\n══ %s run  seed %d  ended at tick %s", ordinal(run), seed, comma(r.Ticks))
	if runID != "" {
		fmt.Fprintf(w, "  archived as %s", runID)
	}
	fmt.Fprintln(w, " ══")

	fmt.Fprintf(w, "  %-11s %9s %9s %11s %14s\n", "population", "initial", "final", "casualties", "attrition")
	for _, k := range agents.Populations {
		p := r.Population(k)
		fmt.Fprintf(w, "  %-11s %9s %9s %11s %14s\n",
			k, comma(p.Initial), comma(p.Final), comma(p.Casualties), perTick(p.AttritionRate))
	}

	fmt.Fprintf(w, "  terrorists neutralized: %s\n", comma(r.TerroristsNeutralized))
	fmt.Fprintf(w, "  military losses:        %s\n", comma(r.MilitaryLosses))
	fmt.Fprintf(w, "  civilian casualties:    %s\n", comma(r.CivilianCasualties))
	fmt.Fprintf(w, "  hazard zones:           %s\n", comma(r.HazardZones))
	fmt.Fprintf(w, "  ratios  civilians:military %s  civilians:insurgents %s  military:insurgents %s\n",
		r.Ratios.CiviliansToMilitary, r.Ratios.CiviliansToInsurgents, r.Ratios.MilitaryToInsurgents)
}

// batchSummary aggregates reports across a multi-run batch.
type batchSummary struct {
	runs        int
	ticks       []float64
	neutralized int
	milLosses   int
	civLosses   int
	hazards     int
	outcomes    [agents.NumKinds]int // runs in which each population was wiped out
}

func (b *batchSummary) add(r engine.Report) {
	b.runs++
	b.ticks = append(b.ticks, float64(r.Ticks))
	b.neutralized += r.TerroristsNeutralized
	b.milLosses += r.MilitaryLosses
	b.civLosses += r.CivilianCasualties
	b.hazards += r.HazardZones
	for _, k := range agents.Populations {
		if r.Population(k).Final == 0 {
			b.outcomes[k]++
		}
	}
}

func (b *batchSummary) print(w io.Writer) {
	if b.runs == 0 {
		fmt.Fprintln(w, "\nNo run reached a terminal state.")
		return
	}
	mean, sd := meanStd(b.ticks)
	n := float64(b.runs)
	fmt.Fprintf(w, "\n══ batch of %s terminated runs ══\n", comma(b.runs))
	fmt.Fprintf(w, "  ticks: mean %.1f  sd %.1f\n", mean, sd)
	fmt.Fprintf(w, "  per run: %.2f neutralized  %.2f military lost  %.2f civilians lost  %.2f hazard zones\n",
		float64(b.neutralized)/n, float64(b.milLosses)/n, float64(b.civLosses)/n, float64(b.hazards)/n)
	for _, k := range agents.Populations {
		fmt.Fprintf(w, "  %s wiped out in %s runs\n", k, comma(b.outcomes[k]))
	}
}

func meanStd(xs []float64) (mean, sd float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	for _, x := range xs {
		sd += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(sd / float64(len(xs)))
}
