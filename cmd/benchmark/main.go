// Command benchmark measures what session reuse saves. It runs the provider
// against a local fake organization that answers the connection handshake
// after a configurable delay, so no Azure DevOps account is needed.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/sync/errgroup"

	"github.com/olgasafonova/azure-devops-mcp-server/internal/base"
	"github.com/olgasafonova/azure-devops-mcp-server/internal/config"
	"github.com/olgasafonova/azure-devops-mcp-server/internal/devops"
)

// fakeOrg serves /_apis/connectionData and counts handshakes.
type fakeOrg struct {
	latency    time.Duration
	handshakes atomic.Int64
}

func (f *fakeOrg) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != base.ConnectionDataPath {
		http.NotFound(w, r)
		return
	}
	f.handshakes.Add(1)
	time.Sleep(f.latency)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(base.ConnectionData{
		AuthenticatedUser: base.Identity{ID: "bench", ProviderDisplayName: "Benchmark User"},
		InstanceID:        "00000000-0000-0000-0000-000000000001",
	})
}

type scenario struct {
	name       string
	ttl        time.Duration
	concurrent bool
}

type measurement struct {
	scenario
	elapsed    time.Duration
	handshakes int64
}

func main() {
	calls := flag.Int("calls", 50, "operations per scenario")
	latency := flag.Duration("latency", 20*time.Millisecond, "simulated handshake latency")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	scenarios := []scenario{
		{name: "handshake per call (ttl 0)", ttl: 0},
		{name: "session reuse (ttl 10m)", ttl: config.DefaultSessionTTL},
		{name: "concurrent cold start (ttl 10m)", ttl: config.DefaultSessionTTL, concurrent: true},
	}

	results := make([]measurement, 0, len(scenarios))
	for _, sc := range scenarios {
		m, err := measure(context.Background(), sc, *calls, *latency, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", sc.name, err)
			os.Exit(1)
		}
		results = append(results, m)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(fmt.Sprintf("%d operations, %v handshake latency", *calls, *latency))
	tw.AppendHeader(table.Row{"SCENARIO", "HANDSHAKES", "TOTAL", "PER OP"})
	for _, m := range results {
		tw.AppendRow(table.Row{m.name, m.handshakes, m.elapsed.Round(time.Millisecond), (m.elapsed / time.Duration(*calls)).Round(time.Microsecond)})
	}
	tw.Render()

	if perCall := results[0].elapsed; results[1].elapsed > 0 {
		fmt.Printf("Session reuse is %.0fx faster than a handshake per call.\n", float64(perCall)/float64(results[1].elapsed))
	}
}

func measure(ctx context.Context, sc scenario, calls int, latency time.Duration, logger *slog.Logger) (measurement, error) {
	org := &fakeOrg{latency: latency}
	srv := httptest.NewServer(org)
	defer srv.Close()

	cfg := config.Default()
	cfg.OrgURL = srv.URL
	cfg.PAT = "benchmark"
	cfg.Project = "Bench"
	cfg.SessionTTL = sc.ttl

	provider := devops.NewProvider(cfg, devops.WithLogger(logger))
	defer provider.Close()

	start := time.Now()
	if sc.concurrent {
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < calls; i++ {
			g.Go(func() error {
				_, err := provider.Session(gctx)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return measurement{}, err
		}
	} else {
		for i := 0; i < calls; i++ {
			if _, err := provider.Session(ctx); err != nil {
				return measurement{}, err
			}
		}
	}
	return measurement{scenario: sc, elapsed: time.Since(start), handshakes: org.handshakes.Load()}, nil
}
