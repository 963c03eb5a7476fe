package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"
)

const meterName = "recipe-sharing-backend"

type AppMetrics struct {
	authFlowCounter              metric.Int64Counter
	authReqDuration              metric.Float64Histogram
	accessTokenValidationCounter metric.Int64Counter
	catalogOpCounter             metric.Int64Counter
	catalogOpDuration            metric.Float64Histogram
	repositoryOpCounter          metric.Int64Counter
	listCacheCounter             metric.Int64Counter
	mailDeliveryCounter          metric.Int64Counter
	storageOpCounter             metric.Int64Counter
	rateLimitDecisionCounter     metric.Int64Counter
	rateLimitRetryAfter          metric.Float64Histogram
	middlewareValidationCounter  metric.Int64Counter
	healthCheckResultCounter     metric.Int64Counter
	healthCheckDuration          metric.Float64Histogram
	dbStartupCounter             metric.Int64Counter
	dbStartupDuration            metric.Float64Histogram
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "auth.request.duration"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					// bcrypt at cost 12 dominates login and register latency.
					Boundaries: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
				},
			},
		)),
	)
	otel.SetMeterProvider(mp)

	m, err := newAppMetrics(mp.Meter(meterName))
	if err != nil {
		return nil, err
	}
	metricsMu.Lock()
	appMetrics = m
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func newAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	var (
		m   AppMetrics
		err error
	)
	counters := []struct {
		dst  *metric.Int64Counter
		name string
	}{
		{&m.authFlowCounter, "auth.flow.events"},
		{&m.accessTokenValidationCounter, "auth.access_token.validation.events"},
		{&m.catalogOpCounter, "catalog.operations"},
		{&m.repositoryOpCounter, "repository.operations"},
		{&m.listCacheCounter, "catalog.list.cache.events"},
		{&m.mailDeliveryCounter, "mail.delivery.events"},
		{&m.storageOpCounter, "storage.image.operations"},
		{&m.rateLimitDecisionCounter, "http.rate_limit.decisions"},
		{&m.middlewareValidationCounter, "http.middleware.validation.events"},
		{&m.healthCheckResultCounter, "health.check.results"},
		{&m.dbStartupCounter, "database.startup.events"},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name); err != nil {
			return nil, fmt.Errorf("create counter %s: %w", c.name, err)
		}
	}
	histograms := []struct {
		dst  *metric.Float64Histogram
		name string
		unit string
		desc string
	}{
		{&m.authReqDuration, "auth.request.duration", "s", "Duration of auth endpoint requests in seconds"},
		{&m.catalogOpDuration, "catalog.operation.duration", "s", "Duration of category and recipe service operations"},
		{&m.rateLimitRetryAfter, "http.rate_limit.retry_after", "s", "Retry-after duration in seconds for throttled requests"},
		{&m.healthCheckDuration, "health.check.duration", "s", "Duration of health dependency checks in seconds"},
		{&m.dbStartupDuration, "database.startup.duration", "s", "Duration of migrate and seed steps at startup"},
	}
	for _, h := range histograms {
		if *h.dst, err = meter.Float64Histogram(h.name, metric.WithUnit(h.unit), metric.WithDescription(h.desc)); err != nil {
			return nil, fmt.Errorf("create histogram %s: %w", h.name, err)
		}
	}
	return &m, nil
}

func loadMetrics() *AppMetrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return appMetrics
}

// RecordAuthFlowEvent counts one outcome of a credential flow such as
// register, verify, login, forgot_password, reset_password or refresh.
func RecordAuthFlowEvent(ctx context.Context, flow, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.authFlowCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("flow", flow),
		attribute.String("outcome", outcome),
	))
}

func RecordAuthRequestDuration(ctx context.Context, endpoint, status string, duration time.Duration) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.authReqDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status", status),
	))
}

func RecordAccessTokenValidation(ctx context.Context, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.accessTokenValidationCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func RecordCatalogOperation(ctx context.Context, entity, operation, outcome string, duration time.Duration) {
	m := loadMetrics()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.catalogOpCounter.Add(ctx, 1, attrs)
	m.catalogOpDuration.Record(ctx, duration.Seconds(), attrs)
}

func RecordRepositoryOperation(ctx context.Context, repo, operation, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.repositoryOpCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("repository", repo),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordListCacheEvent(ctx context.Context, namespace, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.listCacheCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("namespace", namespace),
		attribute.String("outcome", outcome),
	))
}

func RecordMailDelivery(ctx context.Context, kind, channel, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.mailDeliveryCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("channel", channel),
		attribute.String("outcome", outcome),
	))
}

func RecordStorageOperation(ctx context.Context, operation, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.storageOpCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordRateLimitDecision(ctx context.Context, scope, outcome, mode string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.rateLimitDecisionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("outcome", outcome),
		attribute.String("mode", mode),
	))
}

func RecordRateLimitRetryAfter(ctx context.Context, scope string, retryAfter time.Duration) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.rateLimitRetryAfter.Record(ctx, retryAfter.Seconds(), metric.WithAttributes(attribute.String("scope", scope)))
}

func RecordHealthCheckResult(ctx context.Context, check, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.healthCheckResultCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckDuration(ctx context.Context, check string, duration time.Duration) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.healthCheckDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("check", check)))
}

func RecordDatabaseStartupEvent(ctx context.Context, step, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.dbStartupCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("outcome", outcome),
	))
}

func RecordDatabaseStartupDuration(ctx context.Context, step string, duration time.Duration) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.dbStartupDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("step", step)))
}

// RecordMiddlewareValidationEvent counts request checks made by middleware
// such as cors and body_limit.
func RecordMiddlewareValidationEvent(ctx context.Context, middleware, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.middlewareValidationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("middleware", middleware),
		attribute.String("outcome", outcome),
	))
}
