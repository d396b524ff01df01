package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/tailored-agentic-units/scopes/inspect"
	"github.com/tailored-agentic-units/scopes/observability"
	"github.com/tailored-agentic-units/scopes/persist"
	"github.com/tailored-agentic-units/scopes/runtime"
	"github.com/tailored-agentic-units/scopes/store"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to runtime config JSON file")
		stateDir   = flag.String("state-dir", "", "Directory for checkpoints (overrides config, selects the file store)")
		name       = flag.String("name", "", "Root scope name (overrides config)")
		serve      = flag.String("serve", "", "Serve the inspect API on this address and wait for interrupt")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	cfg := runtime.DefaultConfig()
	if *configFile != "" {
		loaded, err := runtime.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}

	if *stateDir != "" {
		cfg.Store = store.Config{Kind: store.KindFile, Path: *stateDir}
	}
	if *name != "" {
		cfg.Name = *name
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	events := observability.NewRecorder()
	observer := observability.NewMultiObserver(observability.NewSlogObserver(logger), events)

	rt, err := runtime.New(&cfg, runtime.WithObserver(observer))
	if err != nil {
		log.Fatalf("Failed to create runtime: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	d, err := buildDemo(rt)
	if err != nil {
		log.Fatalf("Failed to build scope tree: %v", err)
	}

	restored, err := rt.Restore(ctx)
	if err != nil {
		log.Fatalf("Restore failed: %v", err)
	}
	if !restored {
		fmt.Println("Cold start: no checkpoint found")
	}

	if err := d.run(rt); err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	fmt.Print(rt.Dump())
	fmt.Printf("\nRuns: %d\n", d.runs.count)
	fmt.Printf("Drafts: %d\n", d.drafts.count)
	fmt.Printf("Selected folder: %s\n", d.folder.selected)
	fmt.Printf("Loads delivered: %d\n", len(events.Filter(persist.EventLoad)))

	if *serve != "" {
		if err := serveInspect(ctx, rt, *serve, logger); err != nil {
			log.Fatalf("Inspect server failed: %v", err)
		}
	}

	if err := rt.Shutdown(context.Background()); err != nil {
		log.Fatalf("Shutdown failed: %v", err)
	}
}

func serveInspect(ctx context.Context, rt *runtime.Runtime, addr string, logger *slog.Logger) error {
	if err := rt.Checkpoint(ctx); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(inspect.NewHandler(rt))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("inspect server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
