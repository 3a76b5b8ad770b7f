package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/hackgods/consultation-scheduling/internal/fakedata"
	"github.com/hackgods/consultation-scheduling/internal/logging"
)

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	RequestRatio float64
	ConfirmRatio float64
	ReadRatio    float64
	RunInterval  time.Duration // how often POST /scheduling/run is triggered; 0 disables
}

// DataPool tracks the appointments created during the run.
type DataPool struct {
	mu           sync.RWMutex
	appointments []uuid.UUID
}

func (dp *DataPool) Add(id uuid.UUID) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, id)
}

func (dp *DataPool) Random(rng *rand.Rand) (uuid.UUID, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return uuid.Nil, false
	}
	return dp.appointments[rng.Intn(len(dp.appointments))], true
}

func (dp *DataPool) Len() int {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	return len(dp.appointments)
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	mu        sync.Mutex
	latencies []time.Duration
}

func (om *OperationMetrics) Record(latency time.Duration, status int, err error) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case err == nil && status >= 200 && status < 300:
		atomic.AddInt64(&om.Success, 1)
	case err == nil && status == http.StatusConflict:
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.latencies = append(om.latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, p50, p95, max time.Duration) {
	om.mu.Lock()
	latencies := slices.Clone(om.latencies)
	om.mu.Unlock()

	if len(latencies) == 0 {
		return 0, 0, 0, 0
	}
	slices.Sort(latencies)

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	avg = sum / time.Duration(len(latencies))
	p50 = latencies[len(latencies)*50/100]
	p95 = latencies[min(len(latencies)*95/100, len(latencies)-1)]
	max = latencies[len(latencies)-1]
	return avg, p50, p95, max
}

type Metrics struct {
	Request OperationMetrics
	Confirm OperationMetrics
	Read    OperationMetrics
	Run     OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	logger  zerolog.Logger
	metrics Metrics
}

func main() {
	_ = godotenv.Load()
	logger := logging.New(getEnv("APP_ENV", "dev"), getEnv("LOG_FORMAT", "")).With().Str("service", "simulate").Logger()

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	logger.Info().
		Dur("duration", cfg.Duration).
		Int("workers", cfg.Workers).
		Float64("request", cfg.RequestRatio).
		Float64("confirm", cfg.ConfirmRatio).
		Float64("read", cfg.ReadRatio).
		Dur("run_interval", cfg.RunInterval).
		Msg("simulator starting")

	gofakeit.Seed(0)

	sim := &Simulator{
		config: cfg,
		pool:   &DataPool{},
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:   strings.TrimRight(getEnv("SIM_API_BASE_URL", "http://localhost:8080"), "/"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		RequestRatio: getFloat("SIM_REQUEST_RATIO", 0.5),
		ConfirmRatio: getFloat("SIM_CONFIRM_RATIO", 0.2),
		ReadRatio:    getFloat("SIM_READ_RATIO", 0.3),
		RunInterval:  getDuration("SIM_RUN_INTERVAL", 2*time.Second),
	}

	total := cfg.RequestRatio + cfg.ConfirmRatio + cfg.ReadRatio
	if total > 0 {
		cfg.RequestRatio /= total
		cfg.ConfirmRatio /= total
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
	if cfg.RequestRatio <= 0 {
		return fmt.Errorf("SIM_REQUEST_RATIO must be > 0")
	}
	return nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	if s.config.RunInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.trigger(ctx)
		}()
	}

	wg.Wait()
	s.logger.Info().Int("appointments", s.pool.Len()).Msg("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for ctx.Err() == nil {
		r := rng.Float64()
		switch {
		case r < s.config.RequestRatio:
			s.doRequest(ctx)
		case r < s.config.RequestRatio+s.config.ConfirmRatio:
			s.doConfirm(ctx, rng)
		default:
			s.doRead(ctx, rng)
		}
	}
}

// trigger asks the API for a scheduling pass on a fixed interval so that
// confirmations have scheduled appointments to act on.
func (s *Simulator) trigger(ctx context.Context) {
	ticker := time.NewTicker(s.config.RunInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status, latency, err := s.send(ctx, http.MethodPost, "/scheduling/run", nil, nil)
			s.metrics.Run.Record(latency, status, err)
		}
	}
}

func (s *Simulator) doRequest(ctx context.Context) {
	in := fakedata.Request()
	body := map[string]string{
		"patient_id": in.PatientID,
		"specialty":  in.Specialty,
		"city":       in.City,
		"priority":   in.Priority.String(),
	}

	var created struct {
		AppointmentID uuid.UUID `json:"appointment_id"`
	}
	status, latency, err := s.send(ctx, http.MethodPost, "/appointments", body, &created)
	s.metrics.Request.Record(latency, status, err)

	if err == nil && status == http.StatusCreated && created.AppointmentID != uuid.Nil {
		s.pool.Add(created.AppointmentID)
	}
}

func (s *Simulator) doConfirm(ctx context.Context, rng *rand.Rand) {
	id, ok := s.pool.Random(rng)
	if !ok {
		return
	}

	body := map[string]bool{"confirmed": rng.Float64() < 0.85}
	status, latency, err := s.send(ctx, http.MethodPost, "/appointments/"+id.String()+"/confirm", body, nil)
	s.metrics.Confirm.Record(latency, status, err)
}

func (s *Simulator) doRead(ctx context.Context, rng *rand.Rand) {
	id, ok := s.pool.Random(rng)
	if !ok {
		return
	}

	status, latency, err := s.send(ctx, http.MethodGet, "/appointments/"+id.String(), nil, nil)
	s.metrics.Read.Record(latency, status, err)
}

func (s *Simulator) send(ctx context.Context, method, path string, body, out any) (int, time.Duration, error) {
	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, 0, err
		}
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, payload)
	if err != nil {
		return 0, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return 0, latency, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, latency, err
		}
	}
	return resp.StatusCode, latency, nil
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Printf("Appointments requested: %d\n", s.pool.Len())
	fmt.Println()

	printOperationReport("Request", &s.metrics.Request)
	printOperationReport("Confirm", &s.metrics.Confirm)
	printOperationReport("Read by ID", &s.metrics.Read)
	printOperationReport("Scheduling run", &s.metrics.Run)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)
	avg, p50, p95, max := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, percent(success, total))
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, percent(conflict, total))
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, percent(failed, total))
	}
	fmt.Printf("  Latency: avg=%s p50=%s p95=%s max=%s\n",
		avg.Round(time.Millisecond), p50.Round(time.Millisecond),
		p95.Round(time.Millisecond), max.Round(time.Millisecond))
	fmt.Println()
}

func percent(n, total int64) float64 {
	return float64(n) / float64(total) * 100
}

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
