package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"parley/internal/api"
	"parley/internal/archive"
	"parley/internal/store"
)

const serverVersion = "0.1.0-dev"

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return fmt.Errorf("empty value")
	}
	*s = append(*s, v)
	return nil
}

func main() {
	var webhooks stringList
	var (
		port        = flag.String("port", "8080", "HTTP listen port")
		archivePath = flag.String("archive", "", "mirror agents and messages to this SQLite file")
	)
	flag.Var(&webhooks, "webhook", "URL to POST events to (repeatable)")
	flag.Parse()

	opts := api.Options{
		WebhookURLs:   webhooks,
		WebhookSecret: os.Getenv("PARLEY_WEBHOOK_SECRET"),
	}
	if *archivePath != "" {
		arc, err := archive.Open(*archivePath)
		if err != nil {
			log.Fatalf("open archive: %v", err)
		}
		defer arc.Close()
		opts.Archive = arc
	}

	mux := api.NewRouter(store.New(), serverVersion, opts)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("graceful shutdown failed: %v", err)
		}
	}()

	log.Printf("parley-server listening on %s", server.Addr)
	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
	<-shutdownDone
}
