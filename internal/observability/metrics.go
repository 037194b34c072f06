package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/lclrke/dawa-dashboard/internal/platform/envutil"
	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
)

// Metrics is the process-wide registry exposed in Prometheus text format.
type Metrics struct {
	apiRequests   *CounterVec
	apiLatency    *HistogramVec
	apiInflight   *Gauge
	llmRequests   *CounterVec
	llmLatency    *HistogramVec
	llmTokens     *CounterVec
	stageTotal    *CounterVec
	stageLatency  *HistogramVec
	compensations *CounterVec
	exportedItems *Counter
	skippedItems  *Counter
	pgStats       *GaugeVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

// Current returns the registry, or nil when metrics are disabled. Every
// method is nil-safe.
func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
		if log != nil {
			log.Info("metrics initialized")
		}
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("dawa_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"dawa_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight: NewGauge("dawa_api_inflight_requests", "In-flight API requests."),
		llmRequests: NewCounterVec("dawa_llm_requests_total", "LLM requests by model/status.", []string{"model", "status"}),
		llmLatency: NewHistogramVec(
			"dawa_llm_request_duration_seconds",
			"LLM request latency in seconds by model/status.",
			[]string{"model", "status"},
			[]float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		),
		llmTokens:  NewCounterVec("dawa_llm_tokens_total", "LLM tokens by model/direction.", []string{"model", "direction"}),
		stageTotal: NewCounterVec("dawa_pipeline_stage_total", "Pipeline stage outcomes by pipeline/stage/status.", []string{"pipeline", "stage", "status"}),
		stageLatency: NewHistogramVec(
			"dawa_pipeline_stage_duration_seconds",
			"Pipeline stage duration in seconds.",
			[]string{"pipeline", "stage", "status"},
			[]float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		),
		compensations: NewCounterVec("dawa_saga_compensations_total", "Saga undo steps by step/status.", []string{"step", "status"}),
		exportedItems: NewCounter("dawa_export_items_included_total", "Training items written into dataset archives."),
		skippedItems:  NewCounter("dawa_export_items_skipped_total", "Ready training items skipped during export."),
		pgStats:       NewGaugeVec("dawa_postgres_pool", "Postgres connection pool stats.", []string{"stat"}),
	}
}

// Serve exposes the metrics on addr until ctx is cancelled. An empty addr or
// nil Metrics blocks until cancellation so callers can supervise it uniformly.
func (m *Metrics) Serve(ctx context.Context, log *logger.Logger, addr string) error {
	addr = strings.TrimSpace(addr)
	if m == nil || addr == "" {
		<-ctx.Done()
		return nil
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if log != nil {
			log.Info("Metrics listening", "addr", addr)
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown: %w", err)
		}
		return nil
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	collectors := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency, m.llmTokens,
		m.stageTotal, m.stageLatency, m.compensations,
		m.exportedItems, m.skippedItems, m.pgStats,
	}
	for _, c := range collectors {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	method = orDefault(method, "UNKNOWN")
	route = orDefault(route, "unknown")
	status = orDefault(status, "0")
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveLLMRequest(model, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	model = orDefault(model, "unknown")
	status = orDefault(status, "0")
	m.llmRequests.Inc(model, status)
	if dur > 0 {
		m.llmLatency.Observe(dur.Seconds(), model, status)
	}
	if inputTokens > 0 {
		m.llmTokens.Add(float64(inputTokens), model, "input")
	}
	if outputTokens > 0 {
		m.llmTokens.Add(float64(outputTokens), model, "output")
	}
}

// ObserveStage records one pipeline stage outcome ("ok" or "failed").
func (m *Metrics) ObserveStage(pipeline, stage, status string, dur time.Duration) {
	if m == nil {
		return
	}
	pipeline = orDefault(pipeline, "unknown")
	stage = orDefault(stage, "unknown")
	status = orDefault(status, "unknown")
	m.stageTotal.Inc(pipeline, stage, status)
	if dur > 0 {
		m.stageLatency.Observe(dur.Seconds(), pipeline, stage, status)
	}
}

func (m *Metrics) IncCompensation(step, status string) {
	if m == nil {
		return
	}
	m.compensations.Inc(orDefault(step, "unknown"), orDefault(status, "unknown"))
}

func (m *Metrics) AddExportItems(included, skipped int) {
	if m == nil {
		return
	}
	if included > 0 {
		m.exportedItems.Add(float64(included))
	}
	if skipped > 0 {
		m.skippedItems.Add(float64(skipped))
	}
}

// CollectPostgresStats samples the pool every METRICS_SCRAPE_INTERVAL until
// ctx is cancelled.
func (m *Metrics) CollectPostgresStats(ctx context.Context, log *logger.Logger, db *gorm.DB) error {
	if m == nil || db == nil {
		<-ctx.Done()
		return nil
	}
	interval := envutil.Duration("METRICS_SCRAPE_INTERVAL", 10*time.Second)
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := m.samplePostgres(db); err != nil && log != nil {
				log.Warn("metrics: postgres stats unavailable", "error", err)
			}
		}
	}
}

func (m *Metrics) samplePostgres(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	stats := sqlDB.Stats()
	m.pgStats.Set(float64(stats.OpenConnections), "open_connections")
	m.pgStats.Set(float64(stats.InUse), "in_use")
	m.pgStats.Set(float64(stats.Idle), "idle")
	m.pgStats.Set(float64(stats.WaitCount), "wait_count")
	m.pgStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
	return nil
}

func orDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}
