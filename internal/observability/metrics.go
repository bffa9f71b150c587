package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/platform/envutil"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests  *CounterVec
	apiLatency   *HistogramVec
	apiInflight  *Gauge
	streamsOpen  *Gauge
	aggregateOps *HistogramVec
	conflicts    *CounterVec
	retries      *CounterVec
	checkouts    *CounterVec
	cartCache    *CounterVec
	events       *CounterVec
	dbStats      *GaugeVec
	redisUp      *Gauge
	redisPing    *Gauge

	otelOpDuration metric.Float64Histogram
	otelConflicts  metric.Int64Counter
	otelRetries    metric.Int64Counter
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	return envutil.Duration("METRICS_SCRAPE_INTERVAL", 10*time.Second)
}

// Init builds the process-wide registry when METRICS_ENABLED is set.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics(log, otel.GetMeterProvider())
		if log != nil {
			log.Info("Observability metrics enabled")
		}
	})
	return instance
}

// newMetrics registers the aggregate instruments on mp. The global provider delegates to
// whatever InitOTel installs later, so Init may run first.
func newMetrics(log *logger.Logger, mp metric.MeterProvider) *Metrics {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	m := &Metrics{
		apiRequests: NewCounterVec("sf_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"sf_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight: NewGauge("sf_api_inflight_requests", "In-flight API requests."),
		streamsOpen: NewGauge("sf_realtime_streams_open", "Open order-update SSE streams."),
		aggregateOps: NewHistogramVec(
			"sf_aggregate_operation_duration_seconds",
			"Aggregate write duration in seconds by operation/status.",
			[]string{"operation", "status"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		),
		conflicts: NewCounterVec("sf_aggregate_conflicts_total", "Aggregate writes rejected by a compare-and-set or unique guard.", []string{"operation"}),
		retries:   NewCounterVec("sf_aggregate_retries_total", "Aggregate writes that failed with a retryable error.", []string{"operation"}),
		checkouts: NewCounterVec("sf_checkouts_total", "Checkout attempts by outcome.", []string{"outcome"}),
		cartCache: NewCounterVec("sf_cart_cache_total", "Cart cache lookups by result.", []string{"result"}),
		events:    NewCounterVec("sf_events_published_total", "Domain events published by topic/status.", []string{"topic", "status"}),
		dbStats:   NewGaugeVec("sf_db_pool", "Database pool statistics.", []string{"stat"}),
		redisUp:   NewGauge("sf_redis_up", "Redis reachability (1 up, 0 down)."),
		redisPing: NewGauge("sf_redis_ping_seconds", "Redis ping latency in seconds."),
	}

	meter := mp.Meter(instrumentationName)
	var err error
	if m.otelOpDuration, err = meter.Float64Histogram(
		"storefront.aggregate.duration",
		metric.WithDescription("Aggregate write duration."),
		metric.WithUnit("s"),
	); err != nil && log != nil {
		log.Warn("otel histogram init failed", "error", err)
	}
	if m.otelConflicts, err = meter.Int64Counter("storefront.aggregate.conflicts"); err != nil && log != nil {
		log.Warn("otel counter init failed", "error", err)
	}
	if m.otelRetries, err = meter.Int64Counter("storefront.aggregate.retries"); err != nil && log != nil {
		log.Warn("otel counter init failed", "error", err)
	}
	return m
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
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
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight, m.streamsOpen,
		m.aggregateOps, m.conflicts, m.retries,
		m.checkouts, m.cartCache, m.events,
		m.dbStats, m.redisUp, m.redisPing,
	}
	for _, wr := range writers {
		if err := wr.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) StreamOpened() {
	if m == nil {
		return
	}
	m.streamsOpen.Inc()
}

func (m *Metrics) StreamClosed() {
	if m == nil {
		return
	}
	m.streamsOpen.Dec()
}

func (m *Metrics) ObserveAggregateOperation(name, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.Observe(dur.Seconds(), name, status)
	if m.otelOpDuration != nil {
		m.otelOpDuration.Record(context.Background(), dur.Seconds(), metric.WithAttributes(
			attribute.String("operation", name),
			attribute.String("status", status),
		))
	}
}

func (m *Metrics) IncAggregateConflict(name string) {
	if m == nil {
		return
	}
	m.conflicts.Inc(name)
	if m.otelConflicts != nil {
		m.otelConflicts.Add(context.Background(), 1, metric.WithAttributes(attribute.String("operation", name)))
	}
}

func (m *Metrics) IncAggregateRetry(name string) {
	if m == nil {
		return
	}
	m.retries.Inc(name)
	if m.otelRetries != nil {
		m.otelRetries.Add(context.Background(), 1, metric.WithAttributes(attribute.String("operation", name)))
	}
}

func (m *Metrics) IncCheckout(outcome string) {
	if m == nil {
		return
	}
	m.checkouts.Inc(outcome)
}

func (m *Metrics) IncCartCache(result string) {
	if m == nil {
		return
	}
	m.cartCache.Inc(result)
}

func (m *Metrics) IncEventPublished(topic, status string) {
	if m == nil {
		return
	}
	m.events.Inc(topic, status)
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.Set(float64(stats.InUse), "in_use")
				m.dbStats.Set(float64(stats.Idle), "idle")
				m.dbStats.Set(float64(stats.WaitCount), "wait_count")
				m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.dbStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
