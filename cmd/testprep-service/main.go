package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"time"

	"testprep-app/internal/config"
	"testprep-app/internal/exam"
	"testprep-app/internal/exam/sqlite"
	"testprep-app/internal/httpapi"
	"testprep-app/internal/seed"
)

func main() {
	cfg := config.Load()

	addr := flag.String("addr", cfg.Addr, "HTTP listen address")
	dbPath := flag.String("db", cfg.DBPath, "sqlite database path")
	seedFile := flag.String("seed", cfg.SeedFile, "test-bank JSON file to load at startup")
	flag.Parse()

	store, err := sqlite.NewSQLiteStore(*dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	file, err := seed.LoadFile(*seedFile)
	if err != nil {
		log.Fatalf("load seed: %v", err)
	}
	if err := seed.Install(context.Background(), store, file); err != nil {
		log.Fatalf("seed store: %v", err)
	}
	log.Printf("seeded %d test(s) from %s", len(file.Tests), *seedFile)

	service := exam.NewService(store, store)

	server := &http.Server{
		Addr:              *addr,
		Handler:           httpapi.NewRouter(service),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("testprep-service listening on %s", *addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}
