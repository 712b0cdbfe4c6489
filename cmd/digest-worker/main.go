// digest-worker polls the four pending queues on an interval and logs a
// one-line digest so ops can see approval backlogs without opening the
// dashboards.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codekarmatech/healthyphysio-sub004/internal/attendance"
	"github.com/codekarmatech/healthyphysio-sub004/internal/config"
	"github.com/codekarmatech/healthyphysio-sub004/internal/restclient"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("digest-worker starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running digest worker in env=%s interval=%s api=%s", cfg.Env, cfg.DigestInterval, cfg.APIBaseURL)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := restclient.New(cfg.APIBaseURL, cfg.APIToken, cfg.HTTPTimeout)
	if err != nil {
		log.Fatalf("api client error: %v", err)
	}
	if err := client.Ping(rootCtx); err != nil {
		log.Fatalf("clinic api unreachable: %v", err)
	}
	log.Println("connected to clinic api")

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("service", "digest-worker")
	svc := attendance.NewService(attendance.NewHTTPGateway(client), logger)

	runOnce(rootCtx, svc)

	ticker := time.NewTicker(cfg.DigestInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Println("shutdown signal received, stopping digest worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc)
		}
	}
}

func runOnce(ctx context.Context, svc *attendance.Service) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()

	records, err := svc.PendingRecords(runCtx)
	if err != nil {
		log.Printf("digest run error: %v", err)
		return
	}
	requests, err := svc.ChangeRequests(runCtx)
	if err != nil {
		log.Printf("digest run error: %v", err)
		return
	}
	leaves, err := svc.LeaveApplications(runCtx)
	if err != nil {
		log.Printf("digest run error: %v", err)
		return
	}
	discrepancies, err := svc.Discrepancies(runCtx)
	if err != nil {
		log.Printf("digest run error: %v", err)
		return
	}

	log.Printf("pending digest: attendance=%d change_requests=%d leaves=%d discrepancies=%d (in %s)",
		len(records), len(requests), len(leaves), len(discrepancies), time.Since(start))
}
