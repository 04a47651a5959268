package observability

import (
	"context"

	"triviaapi/internal/config"
	contextutils "triviaapi/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

// SetupObservability initializes tracing, metrics, and logging for a service.
// Disabled signals leave the OpenTelemetry globals at their no-op defaults.
func SetupObservability(cfg *config.Config, serviceName string) (result0 trace.TracerProvider, result1 *metric.MeterProvider, result2 *Logger, err error) {
	otelCfg := &cfg.OpenTelemetry
	if serviceName != "" {
		otelCfg.ServiceName = serviceName
	}

	var tp trace.TracerProvider
	var mp *metric.MeterProvider

	logger := NewLoggerWithLevel(otelCfg, ParseLevel(cfg.Server.LogLevel))

	InitPropagation()

	if otelCfg.EnableTracing {
		tp, err = InitStandardTracing(otelCfg)
		if err != nil {
			return nil, nil, nil, contextutils.WrapError(err, "failed to initialize tracing")
		}
		otel.SetTracerProvider(tp)
		logger.Info(context.Background(), "Tracing enabled", map[string]interface{}{
			"service_name": otelCfg.ServiceName,
			"protocol":     otelCfg.Protocol,
		})
	}
	InitGlobalTracer()

	if otelCfg.EnableMetrics {
		mp, err = InitMetrics(otelCfg)
		if err != nil {
			return nil, nil, nil, contextutils.WrapError(err, "failed to initialize metrics")
		}
		otel.SetMeterProvider(mp)
		logger.Info(context.Background(), "Metrics enabled", map[string]interface{}{"service_name": otelCfg.ServiceName})
	}

	return tp, mp, logger, nil
}
