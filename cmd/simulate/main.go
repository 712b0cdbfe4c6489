// simulate drives the client library against a running clinic API (usually
// the sandbox) with a mixed workload, and reports success/conflict/error
// counts plus latency percentiles per operation.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/codekarmatech/healthyphysio-sub004/internal/attendance"
	"github.com/codekarmatech/healthyphysio-sub004/internal/config"
	"github.com/codekarmatech/healthyphysio-sub004/internal/earnings"
	"github.com/codekarmatech/healthyphysio-sub004/internal/restclient"
	"github.com/codekarmatech/healthyphysio-sub004/internal/scheduling"
	"github.com/codekarmatech/healthyphysio-sub004/internal/sitesettings"
)

type SimConfig struct {
	APIBaseURL     string
	Token          string
	Duration       time.Duration
	Workers        int
	CalculateRatio float64
	ApproveRatio   float64
	ReadRatio      float64
}

// DataPool holds the IDs the workers pick from. Appointments whose
// distribution already applied are not removed; conflicts are part of the
// workload being measured.
type DataPool struct {
	Therapists   []scheduling.Therapist
	Appointments []scheduling.Appointment

	mu      sync.RWMutex
	pending []string // pending attendance record IDs
}

func (dp *DataPool) SetPending(ids []string) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.pending = ids
}

func (dp *DataPool) RandomPending(rng *rand.Rand) (string, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.pending) == 0 {
		return "", false
	}
	return dp.pending[rng.Intn(len(dp.pending))], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, err error) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case err == nil:
		atomic.AddInt64(&om.Success, 1)
	case restclient.IsConflict(err) || errors.Is(err, earnings.ErrAlreadyApplied):
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]

	p50Idx := len(latencies) * 50 / 100
	if p50Idx >= len(latencies) {
		p50Idx = len(latencies) - 1
	}
	p50 = latencies[p50Idx]

	p95Idx := len(latencies) * 95 / 100
	if p95Idx >= len(latencies) {
		p95Idx = len(latencies) - 1
	}
	p95 = latencies[p95Idx]

	return avg, min, max, p50, p95
}

type Metrics struct {
	Calculate     OperationMetrics
	Apply         OperationMetrics
	Approve       OperationMetrics
	QueueReads    OperationMetrics
	ListByPatient OperationMetrics
}

type Simulator struct {
	config     SimConfig
	pool       *DataPool
	earnings   *earnings.Service
	attendance *attendance.Service
	scheduling *scheduling.Service
	metrics    Metrics
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	log.Printf("config: duration=%s workers=%d calculate=%.2f approve=%.2f read=%.2f",
		cfg.Duration, cfg.Workers, cfg.CalculateRatio, cfg.ApproveRatio, cfg.ReadRatio)

	client, err := restclient.New(cfg.APIBaseURL, cfg.Token, 10*time.Second)
	if err != nil {
		log.Fatalf("api client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		log.Fatalf("clinic api unreachable: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})).
		With("service", "simulate")
	settings := sitesettings.NewCache(sitesettings.NewHTTPGateway(client), 5*time.Minute, logger)

	sim := &Simulator{
		config:     cfg,
		earnings:   earnings.NewService(earnings.NewHTTPGateway(client), settings, logger),
		attendance: attendance.NewService(attendance.NewHTTPGateway(client), logger),
		scheduling: scheduling.NewService(scheduling.NewHTTPGateway(client), logger),
	}

	pool, err := sim.loadDataPool(ctx)
	if err != nil {
		log.Fatalf("load data pool: %v", err)
	}
	sim.pool = pool

	log.Printf("loaded: %d therapists, %d appointments, %d pending records",
		len(pool.Therapists), len(pool.Appointments), len(pool.pending))

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	baseCfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load base config: %v", err)
	}

	cfg := SimConfig{
		APIBaseURL:     getEnv("SIM_API_BASE_URL", baseCfg.APIBaseURL),
		Token:          baseCfg.APIToken,
		Duration:       getDuration("SIM_DURATION", 30*time.Second),
		Workers:        getInt("SIM_WORKERS", 10),
		CalculateRatio: getFloat("SIM_CALCULATE_RATIO", 0.4),
		ApproveRatio:   getFloat("SIM_APPROVE_RATIO", 0.2),
		ReadRatio:      getFloat("SIM_READ_RATIO", 0.4),
	}

	// Normalize ratios
	total := cfg.CalculateRatio + cfg.ApproveRatio + cfg.ReadRatio
	if total > 0 {
		cfg.CalculateRatio /= total
		cfg.ApproveRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	return nil
}

func (s *Simulator) loadDataPool(ctx context.Context) (*DataPool, error) {
	pool := &DataPool{}

	therapists, err := s.scheduling.Therapists(ctx)
	if err != nil {
		return nil, fmt.Errorf("load therapists: %w", err)
	}
	pool.Therapists = therapists

	for _, t := range therapists {
		appointments, err := s.scheduling.AppointmentsByTherapist(ctx, t.ID, "")
		if err != nil {
			return nil, fmt.Errorf("load appointments: %w", err)
		}
		pool.Appointments = append(pool.Appointments, appointments...)
	}

	records, err := s.attendance.PendingRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pending attendance: %w", err)
	}
	for _, r := range records {
		pool.pending = append(pool.pending, r.ID)
	}

	if len(pool.Therapists) == 0 {
		return nil, fmt.Errorf("no therapists loaded")
	}
	if len(pool.Appointments) == 0 {
		return nil, fmt.Errorf("no appointments loaded")
	}

	return pool, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	log.Printf("starting simulation for %s with %d workers", s.config.Duration, s.config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Println("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			r := rng.Float64()
			if r < s.config.CalculateRatio {
				s.doCalculateApply(ctx, rng)
			} else if r < s.config.CalculateRatio+s.config.ApproveRatio {
				s.doApprove(ctx, rng)
			} else {
				readOp := rng.Intn(2)
				switch readOp {
				case 0:
					s.doQueueReads(ctx)
				case 1:
					s.doListByPatient(ctx, rng)
				}
			}
		}
	}
}

// doCalculateApply walks one appointment through calculate then apply.
// Repeated picks of the same appointment surface as conflicts on apply,
// which is the behavior under measurement.
func (s *Simulator) doCalculateApply(ctx context.Context, rng *rand.Rand) {
	appt := s.pool.Appointments[rng.Intn(len(s.pool.Appointments))]

	input := earnings.CalculationInput{
		AppointmentID: appt.ID,
		Fee:           appt.Fee,
		Manual: &earnings.PercentSplit{
			AdminPct:       34.36,
			TherapistPct:   38.66,
			DoctorPct:      26.98,
			PlatformFeePct: 3,
		},
	}

	start := time.Now()
	result, err := s.earnings.Calculate(ctx, input)
	s.metrics.Calculate.Record(time.Since(start), err)
	if err != nil {
		return
	}

	start = time.Now()
	err = s.earnings.Apply(ctx, appt.ID, result)
	s.metrics.Apply.Record(time.Since(start), err)
}

func (s *Simulator) doApprove(ctx context.Context, rng *rand.Rand) {
	id, ok := s.pool.RandomPending(rng)
	if !ok {
		return
	}

	start := time.Now()
	records, err := s.attendance.Approve(ctx, id)
	s.metrics.Approve.Record(time.Since(start), err)
	if err != nil {
		return
	}

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	s.pool.SetPending(ids)
}

func (s *Simulator) doQueueReads(ctx context.Context) {
	start := time.Now()
	_, err := s.attendance.Discrepancies(ctx)
	if err == nil {
		_, err = s.attendance.LeaveApplications(ctx)
	}
	s.metrics.QueueReads.Record(time.Since(start), err)
}

func (s *Simulator) doListByPatient(ctx context.Context, rng *rand.Rand) {
	appt := s.pool.Appointments[rng.Intn(len(s.pool.Appointments))]

	start := time.Now()
	_, err := s.scheduling.AppointmentsByPatient(ctx, appt.PatientID)
	s.metrics.ListByPatient.Record(time.Since(start), err)
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Calculate", &s.metrics.Calculate)
	printOperationReport("Apply", &s.metrics.Apply)
	printOperationReport("Approve Attendance", &s.metrics.Approve)
	printOperationReport("Queue Reads", &s.metrics.QueueReads)
	printOperationReport("List by Patient", &s.metrics.ListByPatient)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	errCount := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if errCount > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", errCount, float64(errCount)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

// Helper functions

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
