package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/themis/pkg/cli"
	"mercator-hq/themis/pkg/engine"
)

var benchFlags struct {
	rulesetFile string
	eventFile   string
	count       int
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark ruleset evaluation",
	Long: `Measure evaluation throughput and latency for a ruleset.

The bench command loads a ruleset, then evaluates the supplied events in a
round-robin loop, entirely in process. Latency here is pure evaluation time;
it excludes HTTP, audit writes, and metrics.

Metrics Collected:
  - Evaluation throughput (evaluations/sec)
  - Latency percentiles (median, p95, p99, max)
  - Match rate

Examples:
  # Benchmark with default iteration count
  themis bench --ruleset rules.yaml --events events.json

  # Longer run for steadier percentiles
  themis bench -r rules.yaml -e events.json -n 1000000`,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().StringVarP(&benchFlags.rulesetFile, "ruleset", "r", "", "ruleset file to benchmark (required)")
	benchCmd.Flags().StringVarP(&benchFlags.eventFile, "events", "e", "", "JSON event file, object or array (required)")
	benchCmd.Flags().IntVarP(&benchFlags.count, "count", "n", 100000, "number of evaluations")

	for _, flag := range []string{"ruleset", "events"} {
		if err := benchCmd.MarkFlagRequired(flag); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required", flag))
		}
	}
}

func runBench(cmd *cobra.Command, args []string) error {
	if benchFlags.count <= 0 {
		return cli.NewCommandError("bench", fmt.Errorf("count must be positive, got %d", benchFlags.count))
	}

	eng, rs, err := loadRuleset(benchFlags.rulesetFile)
	if err != nil {
		return cli.NewCommandError("bench", err)
	}

	events, err := readEvents(benchFlags.eventFile)
	if err != nil {
		return cli.NewCommandError("bench", err)
	}

	sha, _ := eng.RulesetSHA()

	fmt.Println("Themis Benchmark")
	fmt.Println("================")
	fmt.Printf("Ruleset:     %s (%d rules, sha %.12s)\n", benchFlags.rulesetFile, len(rs.Rules), sha)
	fmt.Printf("Events:      %s (%d events)\n", benchFlags.eventFile, len(events))
	fmt.Printf("Evaluations: %d\n", benchFlags.count)
	fmt.Println()
	fmt.Println("Running...")

	results, err := runEvalLoop(eng, events, benchFlags.count)
	if err != nil {
		return cli.NewCommandError("bench", err)
	}

	displayBenchResults(results)
	return nil
}

type benchResults struct {
	evaluations int
	matched     int
	duration    time.Duration
	latencies   []time.Duration
}

func runEvalLoop(eng *engine.Engine, events []engine.Event, count int) (*benchResults, error) {
	results := &benchResults{
		evaluations: count,
		latencies:   make([]time.Duration, 0, count),
	}

	progress := cli.NewProgressReporter(nil, "eval")
	progress.Start(int64(count))

	start := time.Now()
	for i := 0; i < count; i++ {
		event := events[i%len(events)]

		evalStart := time.Now()
		decision, err := eng.Evaluate(event)
		latency := time.Since(evalStart)
		if err != nil {
			return nil, fmt.Errorf("evaluation %d failed: %w", i, err)
		}

		results.latencies = append(results.latencies, latency)
		if decision != nil {
			results.matched++
		}
		progress.Update(int64(i + 1))
	}
	results.duration = time.Since(start)
	progress.Finish()

	return results, nil
}

func displayBenchResults(results *benchResults) {
	matchRate := float64(results.matched) / float64(results.evaluations) * 100

	fmt.Println()
	fmt.Println("Results:")
	fmt.Println("--------")
	fmt.Printf("Evaluations:     %d total, %d matched (%.1f%%)\n",
		results.evaluations, results.matched, matchRate)
	fmt.Printf("Duration:        %.2fs\n", results.duration.Seconds())

	if results.duration > 0 {
		throughput := float64(results.evaluations) / results.duration.Seconds()
		fmt.Printf("Throughput:      %.0f eval/s\n", throughput)
	}

	if len(results.latencies) > 0 {
		min, mean, median, p95, p99, max := evalPercentiles(results.latencies)

		fmt.Println()
		fmt.Println("Latency:")
		fmt.Printf("  Min:     %.1fµs\n", micros(min))
		fmt.Printf("  Mean:    %.1fµs\n", micros(mean))
		fmt.Printf("  Median:  %.1fµs\n", micros(median))
		fmt.Printf("  p95:     %.1fµs\n", micros(p95))
		fmt.Printf("  p99:     %.1fµs\n", micros(p99))
		fmt.Printf("  Max:     %.1fµs\n", micros(max))
	}
}

func micros(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1000
}

func evalPercentiles(latencies []time.Duration) (min, mean, median, p95, p99, max time.Duration) {
	if len(latencies) == 0 {
		return
	}

	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	min = sorted[0]
	max = sorted[len(sorted)-1]

	var sum time.Duration
	for _, lat := range sorted {
		sum += lat
	}
	mean = sum / time.Duration(len(sorted))

	median = sorted[len(sorted)/2]
	p95 = sorted[int(float64(len(sorted))*0.95)]
	p99 = sorted[int(float64(len(sorted))*0.99)]

	return
}
