package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"netvisor/internal/config"
	"netvisor/internal/daemon"
	"netvisor/internal/handler"
	"netvisor/internal/watcher"
)

// defaultNetworkID matches cmd/server's constant of the same name, per this
// project's daemon:network 1:1 Open Question decision (see DESIGN.md).
const defaultNetworkID = "default"

func main() {
	configPath := flag.String("config", "", "path to daemon.json (overrides the default search path)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting NetVisor daemon...")

	if *configPath != "" {
		os.Setenv(config.EnvPrefix+"CONFIG", *configPath)
	}
	cfg, path, err := config.LoadDaemonConfig()
	if err != nil {
		log.Fatalf("Failed to load daemon config: %v", err)
	}
	if path != "" {
		log.Printf("Loaded config from %s", path)
	}
	if cfg.ServerTarget == "" {
		log.Fatal("server_target must be set (NETVISOR_SERVER_TARGET or daemon.json)")
	}
	log.Printf("Daemon %s (%s) targeting server %s:%d", cfg.ID, cfg.Name, cfg.ServerTarget, cfg.ServerPort)

	serverBase := fmt.Sprintf("http://%s:%d", cfg.ServerTarget, cfg.ServerPort)
	reporter := handler.NewHTTPReporter(serverBase)
	pipeline := daemon.NewPipeline(reporter, cfg.ConcurrentScans)
	daemonHandler := handler.NewDaemonHandler(pipeline, reporter, cfg.ID, defaultNetworkID)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", daemonHandler.Health)
	mux.HandleFunc("POST /discover", daemonHandler.Discover)
	mux.HandleFunc("POST /execute_test", daemonHandler.ExecuteTest)
	mux.HandleFunc("POST /cancel/{session_id}", daemonHandler.Cancel)

	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	addr := fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.DaemonPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      finalHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := registerWithServer(ctx, serverBase, cfg); err != nil {
		log.Printf("Warning: initial registration with server failed: %v", err)
	}
	go heartbeatLoop(ctx, serverBase, cfg)

	if path != "" {
		w := watcher.New(path, func() {
			reloaded, _, err := config.LoadDaemonConfig()
			if err != nil {
				log.Printf("config reload failed, keeping previous values: %v", err)
				return
			}
			if reloaded.ConcurrentScans != pipeline.Concurrency {
				log.Printf("concurrent_scans changed: %d -> %d", pipeline.Concurrency, reloaded.ConcurrentScans)
				pipeline.Concurrency = reloaded.ConcurrentScans
			}
		})
		go func() {
			if err := w.Watch(ctx); err != nil && ctx.Err() == nil {
				log.Printf("config watcher stopped: %v", err)
			}
		}()
	}

	go func() {
		log.Printf("Daemon listening on %s", addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Daemon server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down daemon...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Daemon shutdown error: %v", err)
	}
	log.Println("Daemon stopped")
}
