package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"netvisor/internal/handler"
	"netvisor/internal/hub"
	"netvisor/internal/reconcile"
	"netvisor/internal/repository/sqlite"
	"netvisor/internal/session"
)

// defaultNetworkID is the single network every registered daemon reports
// into, per this project's daemon:network 1:1 Open Question decision (see
// DESIGN.md).
const defaultNetworkID = "default"

func main() {
	addr := flag.String("addr", ":60072", "HTTP listen address")
	dbPath := flag.String("db", "./netvisor.db", "SQLite database path")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting NetVisor server...")

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()
	log.Printf("Database opened: %s", *dbPath)

	engine := reconcile.NewEngine(store, nil)

	sseHub := hub.New()
	go sseHub.Run()

	sessions := session.NewManager(sseHub)
	daemonClient := handler.NewHTTPDaemonClient()

	serverHandler := handler.NewServerHandler(store, store, engine, sessions, daemonClient, defaultNetworkID)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/daemons/register", serverHandler.RegisterDaemon)
	mux.HandleFunc("PUT /api/daemons/{daemon_id}/heartbeat", serverHandler.Heartbeat)

	mux.HandleFunc("POST /api/discovery/initiate", serverHandler.InitiateDiscovery)
	mux.HandleFunc("POST /api/discovery/daemon-initiate", serverHandler.DaemonInitiate)
	mux.HandleFunc("POST /api/discovery/{session_id}/cancel", serverHandler.CancelDiscovery)
	mux.HandleFunc("POST /api/discovery/update", serverHandler.Update)
	mux.Handle("GET /api/discovery/stream", sseHub)

	mux.HandleFunc("GET /api/networks/default", serverHandler.DefaultNetwork)
	mux.HandleFunc("GET /api/topology", serverHandler.Topology)

	mux.HandleFunc("GET /api/hosts", serverHandler.ListHosts)
	mux.HandleFunc("GET /api/hosts/{id}", serverHandler.GetHost)
	mux.HandleFunc("DELETE /api/hosts/{id}", serverHandler.DeleteHost)
	mux.HandleFunc("GET /api/services", serverHandler.ListServices)
	mux.HandleFunc("GET /api/services/{id}", serverHandler.GetService)
	mux.HandleFunc("GET /api/subnets", serverHandler.ListSubnets)
	mux.HandleFunc("GET /api/subnets/{id}", serverHandler.GetSubnet)

	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	server := &http.Server{
		Addr:         *addr,
		Handler:      finalHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", *addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
