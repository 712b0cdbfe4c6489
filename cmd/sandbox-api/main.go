package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codekarmatech/healthyphysio-sub004/internal/config"
	"github.com/codekarmatech/healthyphysio-sub004/internal/sandbox"
)

const version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("sandbox-api starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s port=%s", cfg.Env, cfg.SandboxPort)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := sandbox.NewStore(sandbox.DefaultSettings())
	sandbox.Seed(store, uint64(time.Now().UnixNano()))

	tokens, err := sandbox.DemoTokens()
	if err != nil {
		log.Fatalf("demo tokens error: %v", err)
	}
	for role, token := range tokens {
		log.Printf("demo token role=%s token=%s", role, token)
	}

	accessLogger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	srv := &http.Server{
		Addr:         ":" + cfg.SandboxPort,
		Handler:      sandbox.NewRouter(store, cfg.Env, version, accessLogger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	<-rootCtx.Done()
	log.Println("shutting down sandbox-api")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
