package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
)

// printSummary displays per-stage frame timings to stderr, since stdout may
// carry frame data. Correlations show which stages slow down together.
func printSummary(timings map[string][]float64) {
	if len(timings) == 0 {
		fmt.Fprintln(os.Stderr, "No timings to report")
		return
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Timing summary")
	fmt.Fprintln(os.Stderr, "==============")

	// Sorted stage names for deterministic output
	names := make([]string, 0, len(timings))
	for name := range timings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		values := timings[name]
		if len(values) == 0 {
			continue
		}
		printStageSummary(name, summarize(values))
	}

	if len(names) > 1 {
		printCorrelations(timings, names)
	}
}

// stageStats is the statistical summary of one stage's timings.
type stageStats struct {
	min, max, avg, median, stddev float64
}

// summarize computes stageStats over values, which must not be empty.
func summarize(values []float64) stageStats {
	n := len(values)

	// Work on a sorted copy for min/max/median
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	min := sorted[0]
	max := sorted[n-1]

	// Mean
	var sum float64
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(n)

	// Median
	var median float64
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2.0
	}

	// Population standard deviation
	var variance float64
	for _, v := range values {
		d := v - avg
		variance += d * d
	}
	variance /= float64(n)
	stddev := math.Sqrt(variance)

	return stageStats{min: min, max: max, avg: avg, median: median,
		stddev: stddev}
}

// printStageSummary prints the summary of a single stage to stderr.
func printStageSummary(name string, s stageStats) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, name)
	fmt.Fprintln(os.Stderr, strings.Repeat("-", len(name)))

	fmt.Fprintf(os.Stderr, "  min     : %.3f\n", s.min)
	fmt.Fprintf(os.Stderr, "  max     : %.3f\n", s.max)
	fmt.Fprintf(os.Stderr, "  average : %.3f\n", s.avg)
	fmt.Fprintf(os.Stderr, "  median  : %.3f\n", s.median)
	fmt.Fprintf(os.Stderr, "  stddev  : %.3f\n", s.stddev)
	if s.avg > 0 {
		fmt.Fprintf(os.Stderr, "  fps     : %.1f\n", 1000/s.avg)
	}
}

// printCorrelations prints pairwise absolute Pearson correlations between
// stages to stderr.
func printCorrelations(timings map[string][]float64, names []string) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Stage correlations")
	fmt.Fprintln(os.Stderr, "==================")

	// Calculate max name length for alignment
	maxLen := 0
	for _, name := range names {
		if len(name) > maxLen {
			maxLen = len(name)
		}
	}

	formatStr := fmt.Sprintf("  %%-%ds ↔ %%-%ds : %% .6f\n", maxLen, maxLen)

	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			a, b := names[i], names[j]
			x, y := timings[a], timings[b]

			if len(x) == 0 || len(y) == 0 || len(x) != len(y) {
				continue
			}

			r := pearsonCorrelation(x, y)
			fmt.Fprintf(os.Stderr, formatStr, a, b, math.Abs(r))
		}
	}
}

// pearsonCorrelation computes the Pearson correlation coefficient.
// Returns 0 if inputs are empty, mismatched, or perfectly constant.
func pearsonCorrelation(x, y []float64) float64 {
	n := len(x)
	if n == 0 || n != len(y) {
		return 0
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
	}

	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var num, denomX, denomY float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		num += dx * dy
		denomX += dx * dx
		denomY += dy * dy
	}

	denom := math.Sqrt(denomX * denomY)
	if denom == 0 {
		return 0
	}

	return num / denom
}
