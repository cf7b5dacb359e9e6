// Command trigrambench load-tests a running trigramd server: it issues
// concurrent index and query requests and reports latency percentiles. This
// is spec.md's "benchmark loops and timing" — deliberately kept outside the
// trigram core and talking to the server only over its HTTP wire format, the
// same way the teacher's own load-test tool never imports the server's Go
// packages.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config configures a benchmark run.
type Config struct {
	NumOperations   int    `yaml:"num_operations"`
	Concurrency     int    `yaml:"concurrency"`
	WarmupIters     int    `yaml:"warmup_iterations"`
	CooldownSeconds int    `yaml:"cooldown_seconds"`
	BaseURL         string `yaml:"base_url"`
	QueryText       string `yaml:"query_text"`
}

// Stats summarizes a latency sample.
type Stats struct {
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Mean    float64 `yaml:"mean"`
	Median  float64 `yaml:"median"`
	P95     float64 `yaml:"p95"`
	P99     float64 `yaml:"p99"`
	StdDev  float64 `yaml:"stddev"`
	Samples int     `yaml:"samples"`
}

// result is one operation's outcome, in milliseconds.
type result struct {
	operation string
	duration  float64
	err       error
}

func calculateStats(times []float64) Stats {
	if len(times) == 0 {
		return Stats{}
	}
	sorted := append([]float64(nil), times...)
	sort.Float64s(sorted)

	var sum float64
	for _, t := range times {
		sum += t
	}
	mean := sum / float64(len(times))

	var sumSquares float64
	for _, t := range times {
		sumSquares += math.Pow(t-mean, 2)
	}
	stdDev := math.Sqrt(sumSquares / float64(len(times)))

	p95 := sorted[int(float64(len(sorted))*0.95)]
	p99 := sorted[int(float64(len(sorted))*0.99)]

	return Stats{
		Min:     sorted[0],
		Max:     sorted[len(sorted)-1],
		Mean:    mean,
		Median:  sorted[len(sorted)/2],
		P95:     p95,
		P99:     p99,
		StdDev:  stdDev,
		Samples: len(times),
	}
}

func indexOp(client *http.Client, cfg Config, i int) result {
	body, _ := json.Marshal(map[string]string{
		"text": fmt.Sprintf("bench-doc-%d %s", i, cfg.QueryText),
	})

	start := time.Now()
	req, err := http.NewRequest(http.MethodPost, cfg.BaseURL+"/index", bytes.NewReader(body))
	if err != nil {
		return result{operation: "index", err: fmt.Errorf("request creation error: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return result{operation: "index", err: fmt.Errorf("request error: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return result{operation: "index", err: fmt.Errorf("status %d: %s", resp.StatusCode, b)}
	}
	return result{operation: "index", duration: time.Since(start).Seconds() * 1000}
}

func queryOp(client *http.Client, cfg Config, _ int) result {
	body, _ := json.Marshal(map[string]string{"text": cfg.QueryText})

	start := time.Now()
	req, err := http.NewRequest(http.MethodPost, cfg.BaseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return result{operation: "query", err: fmt.Errorf("request creation error: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return result{operation: "query", err: fmt.Errorf("request error: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return result{operation: "query", err: fmt.Errorf("status %d: %s", resp.StatusCode, b)}
	}
	return result{operation: "query", duration: time.Since(start).Seconds() * 1000}
}

func warmup(cfg Config, client *http.Client) {
	log.Println("performing warmup operations...")
	for i := 0; i < cfg.WarmupIters; i++ {
		if r := indexOp(client, cfg, i); r.err != nil {
			log.Printf("warmup index error: %v", r.err)
		}
		time.Sleep(50 * time.Millisecond)
		if r := queryOp(client, cfg, i); r.err != nil {
			log.Printf("warmup query error: %v", r.err)
		}
	}
	log.Println("warmup complete")
}

func runBench(cfg Config) (map[string][]float64, error) {
	results := map[string][]float64{"index": {}, "query": {}}

	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency,
			MaxIdleConnsPerHost: cfg.Concurrency,
			IdleConnTimeout:     30 * time.Second,
		},
		Timeout: 5 * time.Second,
	}

	warmup(cfg, client)
	time.Sleep(time.Duration(cfg.CooldownSeconds) * time.Second)

	ops := map[string]func(*http.Client, Config, int) result{
		"index": indexOp,
		"query": queryOp,
	}

	var wg sync.WaitGroup
	resultCh := make(chan result, cfg.NumOperations*len(ops))
	limiter := make(chan struct{}, cfg.Concurrency)

	for name, op := range ops {
		log.Printf("running %s operations...", name)
		for i := 0; i < cfg.NumOperations; i++ {
			wg.Add(1)
			go func(i int, op func(*http.Client, Config, int) result) {
				defer wg.Done()
				limiter <- struct{}{}
				r := op(client, cfg, i)
				<-limiter
				resultCh <- r
			}(i, op)
		}
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	errCount := 0
	for r := range resultCh {
		if r.err != nil {
			errCount++
			continue
		}
		results[r.operation] = append(results[r.operation], r.duration)
	}
	if errCount > 0 {
		log.Printf("%d operations failed", errCount)
	}
	return results, nil
}

func main() {
	numOps := flag.Int("n", 1000, "number of operations per op type")
	concurrency := flag.Int("c", 10, "concurrency level")
	warmupIters := flag.Int("w", 3, "number of warmup iterations")
	cooldown := flag.Int("cooldown", 1, "cooldown seconds before measured phase")
	baseURL := flag.String("url", "http://localhost:8080", "base URL for trigramd")
	queryText := flag.String("query", "bench", "substring to query for")
	flag.Parse()

	cfg := Config{
		NumOperations:   *numOps,
		Concurrency:     *concurrency,
		WarmupIters:     *warmupIters,
		CooldownSeconds: *cooldown,
		BaseURL:         *baseURL,
		QueryText:       *queryText,
	}

	log.Printf("starting trigramd load test: %d ops, concurrency %d, url %s", cfg.NumOperations, cfg.Concurrency, cfg.BaseURL)

	results, err := runBench(cfg)
	if err != nil {
		log.Fatalf("benchmark failed: %v", err)
	}

	fmt.Println("\ntrigramd load test results")
	fmt.Println("==========================")
	stats := map[string]Stats{}
	for op, times := range results {
		if len(times) == 0 {
			continue
		}
		s := calculateStats(times)
		stats[op] = s
		printStats(s, op)
	}

	if err := saveResults(cfg, stats, results); err != nil {
		log.Printf("error saving results: %v", err)
	}
}

func printStats(s Stats, operation string) {
	fmt.Printf("\n%s operations:\n", operation)
	fmt.Printf("  min:    %.2fms\n", s.Min)
	fmt.Printf("  max:    %.2fms\n", s.Max)
	fmt.Printf("  mean:   %.2fms\n", s.Mean)
	fmt.Printf("  median: %.2fms\n", s.Median)
	fmt.Printf("  p95:    %.2fms\n", s.P95)
	fmt.Printf("  p99:    %.2fms\n", s.P99)
	fmt.Printf("  stddev: %.2fms\n", s.StdDev)
	fmt.Printf("  samples: %d\n", s.Samples)
}

func saveResults(cfg Config, stats map[string]Stats, raw map[string][]float64) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("trigrambench_results_%s.yaml", timestamp)

	output := struct {
		Config Config               `yaml:"config"`
		Stats  map[string]Stats     `yaml:"stats"`
		Raw    map[string][]float64 `yaml:"raw_results"`
	}{cfg, stats, raw}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(output)
}
