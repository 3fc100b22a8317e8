package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge
	apiErrors   *CounterVec

	aggregateOps       *CounterVec
	aggregateLatency   *HistogramVec
	aggregateConflicts *CounterVec
	aggregateRetries   *CounterVec

	tenantResolutions *CounterVec
	tenantCache       *CounterVec
	tenantHandles     *Gauge
	tenantHandleEvent *CounterVec

	dbStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge

	scrapeInterval time.Duration
	collectors     []collector
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Current returns the process-wide metrics, nil when metrics are disabled.
func Current() *Metrics {
	return instance
}

// Init builds the process-wide metrics once. It returns nil when disabled;
// every method is nil-safe.
func Init(log *logger.Logger, enabled bool, scrapeInterval time.Duration) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = New(scrapeInterval)
		if log != nil {
			log.Info("metrics enabled", "scrape_interval", instance.scrapeInterval.String())
		}
	})
	return instance
}

// New returns an unregistered metrics set.
func New(scrapeInterval time.Duration) *Metrics {
	if scrapeInterval <= 0 {
		scrapeInterval = 10 * time.Second
	}
	m := &Metrics{
		apiRequests: NewCounterVec("fp_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec("fp_api_request_duration_seconds", "API request latency in seconds by method/route.",
			[]string{"method", "route"}, nil),
		apiInflight: NewGauge("fp_api_inflight_requests", "In-flight API requests."),
		apiErrors:   NewCounterVec("fp_api_errors_total", "API error responses by body code.", []string{"code"}),

		aggregateOps: NewCounterVec("fp_aggregate_operations_total", "Aggregate operations by tenant/op/status.",
			[]string{"tenant", "op", "status"}),
		aggregateLatency: NewHistogramVec("fp_aggregate_operation_duration_seconds", "Aggregate operation latency by op.",
			[]string{"op"}, nil),
		aggregateConflicts: NewCounterVec("fp_aggregate_conflicts_total", "Aggregate compare-and-set conflicts.", []string{"tenant", "op"}),
		aggregateRetries:   NewCounterVec("fp_aggregate_retryable_total", "Aggregate retryable failures.", []string{"tenant", "op"}),

		tenantResolutions: NewCounterVec("fp_tenant_resolutions_total", "Tenant resolution outcomes.", []string{"outcome"}),
		tenantCache:       NewCounterVec("fp_tenant_directory_cache_total", "Tenant directory cache lookups.", []string{"result"}),
		tenantHandles:     NewGauge("fp_tenant_handles_open", "Open per-tenant database handles."),
		tenantHandleEvent: NewCounterVec("fp_tenant_handle_events_total", "Per-tenant handle lifecycle events.", []string{"event"}),

		dbStats:   NewGaugeVec("fp_db_stats", "Control database connection pool stats.", []string{"stat"}),
		redisUp:   NewGauge("fp_redis_up", "Redis reachability (1 up, 0 down)."),
		redisPing: NewGauge("fp_redis_ping_seconds", "Redis ping latency in seconds."),

		scrapeInterval: scrapeInterval,
	}
	m.collectors = []collector{
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiErrors,
		m.aggregateOps, m.aggregateLatency, m.aggregateConflicts, m.aggregateRetries,
		m.tenantResolutions, m.tenantCache, m.tenantHandles, m.tenantHandleEvent,
		m.dbStats, m.redisUp, m.redisPing,
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
	for _, c := range m.collectors {
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
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
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

func (m *Metrics) IncAPIError(code string) {
	if m == nil {
		return
	}
	m.apiErrors.Inc(code)
}

func (m *Metrics) ObserveAggregateOperation(tenant, op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.Inc(tenant, op, status)
	m.aggregateLatency.Observe(dur.Seconds(), op)
}

func (m *Metrics) IncAggregateConflict(tenant, op string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.Inc(tenant, op)
}

func (m *Metrics) IncAggregateRetry(tenant, op string) {
	if m == nil {
		return
	}
	m.aggregateRetries.Inc(tenant, op)
}

func (m *Metrics) IncTenantResolution(outcome string) {
	if m == nil {
		return
	}
	m.tenantResolutions.Inc(outcome)
}

func (m *Metrics) IncTenantCache(result string) {
	if m == nil {
		return
	}
	m.tenantCache.Inc(result)
}

// IncTenantHandleEvent records open/reuse/evict/close events of the storage router.
func (m *Metrics) IncTenantHandleEvent(event string) {
	if m == nil {
		return
	}
	m.tenantHandleEvent.Inc(event)
}

func (m *Metrics) SetTenantHandles(n int) {
	if m == nil {
		return
	}
	m.tenantHandles.Set(float64(n))
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
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
			}
		}
	}()
}

// StartRedisCollector pings the tenant directory cache on the scrape interval.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
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
