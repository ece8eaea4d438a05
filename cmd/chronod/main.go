package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cronforge/chronod/internal/adminserver"
	"github.com/cronforge/chronod/internal/config"
	"github.com/cronforge/chronod/internal/eventstream"
	"github.com/cronforge/chronod/internal/jobdriver"
	"github.com/cronforge/chronod/internal/jobmanifest"
	"github.com/cronforge/chronod/internal/metrics"
	"github.com/cronforge/chronod/internal/registry"
	"github.com/cronforge/chronod/internal/runhistory"
)

// shellCallback resolves every manifest callback name to a shell
// command of the same text, run via `sh -c`. The manifest only carries
// scheduling metadata; a shell command is the host binding this process
// supplies for it.
func shellCallback() jobmanifest.CallbackResolver {
	return func(command string) (jobdriver.Callback, bool) {
		if command == "" {
			return nil, false
		}
		return func(ctx context.Context, runID string, scheduledFor time.Time) error {
			cmd := exec.CommandContext(ctx, "sh", "-c", command)
			cmd.Env = append(os.Environ(),
				"CHRONOD_RUN_ID="+runID,
				"CHRONOD_SCHEDULED_FOR="+scheduledFor.Format(time.RFC3339),
			)
			output, err := cmd.CombinedOutput()
			if err != nil {
				log.Printf("chronod: run %s: command failed: %v: %s", runID, err, output)
				return err
			}
			return nil
		}, true
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	addr := cfg.Host + ":" + cfg.Port

	reg := registry.New()
	hub := eventstream.NewHub()
	promRegistry := prom.NewRegistry()
	recorder := metrics.NewRecorder(promRegistry)

	var history *runhistory.Store
	if cfg.RunHistoryEnable {
		history, err = runhistory.Open(cfg.RunHistoryDBPath)
		if err != nil {
			log.Fatalf("run history init error: %v", err)
		}
		defer history.Close()
	}

	var historyRecorder jobdriver.HistoryRecorder
	if history != nil {
		historyRecorder = history
	}

	loader := jobmanifest.NewLoader(reg, shellCallback(), log.Default(), recorder, historyRecorder, hub)

	var watcher *jobmanifest.Watcher
	if cfg.ManifestWatchEnable {
		watcher, err = jobmanifest.NewWatcher(cfg.ManifestPath, loader, log.Default())
		if err != nil {
			log.Fatalf("manifest watcher init error: %v", err)
		}
		if err := watcher.Start(); err != nil {
			log.Fatalf("manifest watcher start error: %v", err)
		}
		defer watcher.Stop()
	} else {
		manifest, err := jobmanifest.Load(cfg.ManifestPath)
		if err != nil {
			log.Fatalf("manifest load error: %v", err)
		}
		if err := loader.Apply(manifest); err != nil {
			log.Fatalf("manifest apply error: %v", err)
		}
	}

	handler := adminserver.NewHandler(adminserver.Deps{
		Config:       cfg,
		Registry:     reg,
		Events:       hub,
		Recorder:     recorder,
		PromRegistry: promRegistry,
		History:      history,
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutMs) * time.Millisecond,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownCh
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		for _, name := range reg.Names() {
			if d, ok := reg.Get(name); ok {
				d.Stop()
			}
		}
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	log.Printf("chronod listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
