package observability

import (
	"context"
	"sync"

	"triviaapi/internal/config"
	contextutils "triviaapi/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics initializes an OpenTelemetry MeterProvider with a periodic OTLP exporter
func InitMetrics(cfg *config.OpenTelemetryConfig) (result0 *metric.MeterProvider, err error) {
	ctx := context.Background()

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var exporter metric.Exporter
	switch cfg.Protocol {
	case "grpc":
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
			otlpmetricgrpc.WithHeaders(cfg.Headers),
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exp, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create otlp grpc metric exporter: %w", err)
		}
		exporter = exp
	case "http":
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(cfg.Endpoint),
			otlpmetrichttp.WithHeaders(cfg.Headers),
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exp, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create otlp http metric exporter: %w", err)
		}
		exporter = exp
	default:
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "unsupported otel protocol: %s", cfg.Protocol)
	}

	mp := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter)),
		metric.WithResource(res),
	)
	return mp, nil
}

// TriviaMetrics holds the domain counters
type TriviaMetrics struct {
	QuestionsCreated otelmetric.Int64Counter
	QuestionsDeleted otelmetric.Int64Counter
	Searches         otelmetric.Int64Counter
	QuizzesPlayed    otelmetric.Int64Counter
}

// NewTriviaMetrics registers the domain counters on meter
func NewTriviaMetrics(meter otelmetric.Meter) (*TriviaMetrics, error) {
	created, err := meter.Int64Counter("trivia.questions.created",
		otelmetric.WithDescription("Questions inserted through the API"))
	if err != nil {
		return nil, err
	}
	deleted, err := meter.Int64Counter("trivia.questions.deleted",
		otelmetric.WithDescription("Questions deleted through the API"))
	if err != nil {
		return nil, err
	}
	searches, err := meter.Int64Counter("trivia.searches",
		otelmetric.WithDescription("Question text searches"))
	if err != nil {
		return nil, err
	}
	played, err := meter.Int64Counter("trivia.quizzes.played",
		otelmetric.WithDescription("Quiz questions served"))
	if err != nil {
		return nil, err
	}
	return &TriviaMetrics{
		QuestionsCreated: created,
		QuestionsDeleted: deleted,
		Searches:         searches,
		QuizzesPlayed:    played,
	}, nil
}

var (
	defaultMetrics     *TriviaMetrics
	defaultMetricsOnce sync.Once
)

// Metrics returns counters bound to the global meter provider. The global
// meter delegates to whatever provider SetupObservability installs later.
func Metrics() *TriviaMetrics {
	defaultMetricsOnce.Do(func() {
		m, err := NewTriviaMetrics(otel.Meter(InstrumentationName))
		if err != nil {
			panic(err)
		}
		defaultMetrics = m
	})
	return defaultMetrics
}

// Add increments counter by n with optional attributes; nil counters are ignored
func Add(ctx context.Context, counter otelmetric.Int64Counter, n int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, n, otelmetric.WithAttributes(attrs...))
}
