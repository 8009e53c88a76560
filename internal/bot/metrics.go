package bot

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/volunteerd/internal/bot"

// Metrics holds the router's OTel instruments.
type Metrics struct {
	meter           metric.Meter
	logger          *zap.Logger
	eventsTotal     metric.Int64Counter
	eventDur        metric.Float64Histogram
	promotionsTotal metric.Int64Counter
}

// NewMetrics creates the router metrics against the global meter provider.
func NewMetrics(logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Metrics{
		meter:  otel.Meter(instrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.eventsTotal, err = m.meter.Int64Counter(
		"volunteerd.bot.events_total",
		metric.WithDescription("Inbound conversational events handled, labeled by event kind and session state at dispatch."),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		m.logger.Warn("failed to create events counter", zap.Error(err))
	}

	m.eventDur, err = m.meter.Float64Histogram(
		"volunteerd.bot.event_duration_seconds",
		metric.WithDescription("Event handling duration in seconds, including persistence calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0),
	)
	if err != nil {
		m.logger.Warn("failed to create duration histogram", zap.Error(err))
	}

	m.promotionsTotal, err = m.meter.Int64Counter(
		"volunteerd.bot.promotions_total",
		metric.WithDescription("Volunteers automatically promoted to the blacklist by the violation threshold."),
		metric.WithUnit("{volunteer}"),
	)
	if err != nil {
		m.logger.Warn("failed to create promotions counter", zap.Error(err))
	}
}

func (m *Metrics) recordEvent(ctx context.Context, kind Kind, state string, start time.Time) {
	attrs := metric.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.String("state", state),
	)
	if m.eventsTotal != nil {
		m.eventsTotal.Add(ctx, 1, attrs)
	}
	if m.eventDur != nil {
		m.eventDur.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}

func (m *Metrics) recordPromotion(ctx context.Context) {
	if m.promotionsTotal != nil {
		m.promotionsTotal.Add(ctx, 1)
	}
}
