// Command bench times the main store operations against each adapter.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aretw0/swiftnote"
	"github.com/aretw0/swiftnote/pkg/core"
)

type result struct {
	adapter string
	create  time.Duration
	cold    time.Duration
	warm    time.Duration
	index   time.Duration
	search  time.Duration
	items   int
}

func main() {
	count := flag.Int("count", 1000, "Number of notes to create")
	adapters := flag.String("adapters", "sqlite,fs,memory", "Comma separated adapters to run")
	keep := flag.Bool("keep", false, "Keep the benchmark directories after running")
	verbose := flag.Bool("v", false, "Log adapter activity")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var results []result
	for _, name := range strings.Split(*adapters, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		r, err := bench(context.Background(), name, *count, *keep, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			os.Exit(1)
		}
		results = append(results, r)
	}

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d notes):\n", *count)
	for _, r := range results {
		fmt.Printf("  %-7s create %-12v list cold %-12v list warm %-12v by-updated %-12v search %-12v (items %d)\n",
			r.adapter, r.create, r.cold, r.warm, r.index, r.search, r.items)
	}
	fmt.Printf("--------------------------------------------------\n")
}

func bench(ctx context.Context, adapter string, count int, keep bool, logger *slog.Logger) (result, error) {
	res := result{adapter: adapter}

	dir, err := os.MkdirTemp("", "swiftnote_bench_"+adapter+"_")
	if err != nil {
		return res, err
	}
	defer func() {
		if keep {
			fmt.Printf("Keeping bench dir: %s\n", dir)
			return
		}
		os.RemoveAll(dir)
	}()

	opts := []swiftnote.Option{
		swiftnote.WithAdapter(adapter),
		swiftnote.WithLogger(logger),
		swiftnote.WithDevSafety(false),
	}

	store, err := swiftnote.Open(ctx, dir, opts...)
	if err != nil {
		return res, err
	}

	start := time.Now()
	for i := range count {
		draft := swiftnote.Draft{
			Title:   fmt.Sprintf("Note %d", i),
			Content: fmt.Sprintf("Benchmark note %d.\nThis is a test note.", i),
		}
		if _, err := store.Create(ctx, draft); err != nil {
			return res, err
		}
	}
	res.create = time.Since(start)

	start = time.Now()
	notes := swiftnote.NewSession(store, logger)
	if err := notes.Load(ctx); err != nil {
		return res, err
	}
	res.cold = time.Since(start)

	// A second store simulates a new CLI invocation on the same data.
	// The memory adapter has nothing to reopen.
	warm := store
	if adapter != swiftnote.AdapterMemory {
		if err := store.Close(); err != nil {
			return res, err
		}
		if warm, err = swiftnote.Open(ctx, dir, opts...); err != nil {
			return res, err
		}
	}
	defer warm.Close()

	start = time.Now()
	all, err := warm.ListAll(ctx)
	if err != nil {
		return res, err
	}
	res.warm = time.Since(start)
	res.items = len(all)

	start = time.Now()
	if _, err := warm.ListByIndex(ctx, core.IndexUpdated, core.Range{From: time.Now().Add(-time.Minute)}); err != nil {
		return res, err
	}
	res.index = time.Since(start)

	start = time.Now()
	if _, err := warm.Search(ctx, "Note 9"); err != nil {
		return res, err
	}
	res.search = time.Since(start)

	return res, nil
}
