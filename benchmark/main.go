// Package main benchmarks the gitsummary report across repositories, worker counts and
// cache backends. Each configuration runs several times: the first successful run is
// reported as cold and the rest are averaged as warm. Results are written as CSV.
//
// Prerequisites:
// - gitsummary binary installed and available in PATH
// - Test repositories cloned (with their remote branches) under the base directory
//
// Usage: go run benchmark/main.go [repo-base-dir]
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the timings of one repository, worker count and cache backend.
type BenchmarkResult struct {
	Repository string
	Workers    int
	Cache      string
	ColdTime   string
	WarmTime   string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase      string
	Timeout       time.Duration
	Runs          int
	WorkerCounts  []int
	CacheBackends []string
	TestRepos     []string
	CacheFile     string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [repo-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		RepoBase:      os.Args[1],
		Timeout:       10 * time.Minute,
		Runs:          4,
		WorkerCounts:  []int{1, 4, 16},
		CacheBackends: []string{"none", "sqlite"},
		TestRepos:     []string{"csv-parser", "fd", "git"},
		CacheFile:     filepath.Join(os.TempDir(), "gitsummary_benchmark_cache.db"),
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the gitsummary binary and test repositories exist.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("gitsummary"); err != nil {
		return fmt.Errorf("gitsummary binary not found in PATH")
	}
	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}
	return nil
}

// runBenchmarks executes every configuration across the configured repositories.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %v timeout, workers %v, %d runs each\n",
		len(config.TestRepos), config.Timeout, config.WorkerCounts, config.Runs)

	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		for _, workers := range config.WorkerCounts {
			for _, backend := range config.CacheBackends {
				// Every sqlite configuration starts from an empty cache so cold means cold.
				_ = os.Remove(config.CacheFile)
				results = append(results, runBenchmarkSuite(config, repo, repoPath, workers, backend))
			}
		}
	}
	return results
}

// runBenchmarkSuite runs one configuration several times and summarizes cold and warm timings.
func runBenchmarkSuite(config BenchmarkConfig, repo, repoPath string, workers int, backend string) BenchmarkResult {
	fmt.Printf("Running report on %s (workers=%d, cache=%s)\n", repo, workers, backend)

	args := []string{"report", "--workers", strconv.Itoa(workers), "--cache-backend", backend}
	if backend == "sqlite" {
		args = append(args, "--cache-db-connect", config.CacheFile)
	}
	args = append(args, repoPath)

	var times []float64
	for range config.Runs {
		if elapsed, ok := runOnce(config.Timeout, args); ok {
			times = append(times, elapsed)
		}
	}

	result := BenchmarkResult{Repository: repo, Workers: workers, Cache: backend, ColdTime: "TIMEOUT", WarmTime: "TIMEOUT"}
	if len(times) > 0 {
		result.ColdTime = fmt.Sprintf("%.3fs", times[0])
	}
	if len(times) > 1 {
		var sum float64
		for _, t := range times[1:] {
			sum += t
		}
		result.WarmTime = fmt.Sprintf("%.3fs", sum/float64(len(times)-1))
	}

	fmt.Printf("  Cold time: %s, Warm average: %s\n", result.ColdTime, result.WarmTime)
	return result
}

// runOnce executes gitsummary with a deadline and reports the elapsed seconds on success.
func runOnce(timeout time.Duration, args []string) (float64, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	output, err := exec.CommandContext(ctx, "gitsummary", args...).CombinedOutput()
	if err != nil || !isSuccess(output) {
		return 0, false
	}
	return time.Since(start).Seconds(), true
}

// isSuccess checks the closing line of the text report.
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "distinct commits") && strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("gitsummary_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"repo", "workers", "cache", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range results {
		if err := writer.Write([]string{r.Repository, strconv.Itoa(r.Workers), r.Cache, r.ColdTime, r.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results grouped by repository.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	current := ""
	for _, r := range results {
		if r.Repository != current {
			current = r.Repository
			fmt.Printf("%s:\n", current)
		}
		fmt.Printf("  workers=%-3d cache=%-6s Cold: %s, Warm: %s\n", r.Workers, r.Cache, r.ColdTime, r.WarmTime)
	}
}
