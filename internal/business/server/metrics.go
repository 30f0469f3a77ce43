package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	slogctx "github.com/veqryn/slog-context"

	"github.com/flipsidefm/flipside/internal/config"
)

var (
	counter metric.Int64Counter
	hist    metric.Int64Histogram
)

func initMeters(ctx context.Context, cfg *config.Config) error {
	meter := otel.Meter(
		"flipside/"+cfg.Application.Name,
		metric.WithInstrumentationVersion(otel.Version()),
	)

	var err error

	counter, err = meter.Int64Counter(
		"http.request_count",
		metric.WithDescription("Incoming request count"),
		metric.WithUnit("request"),
	)
	if err != nil {
		return oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "creating request_count meter")
	}

	hist, err = meter.Int64Histogram(
		"http.duration",
		metric.WithDescription("Incoming end to end duration"),
		metric.WithUnit("milliseconds"),
	)
	if err != nil {
		return oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "creating duration meter")
	}

	return nil
}

// requestTelemetry attaches a request id to the logging context and records
// the request counter and duration histogram. Tracing itself is otelgin's
// job.
func requestTelemetry(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		operation := c.FullPath()
		if operation == "" {
			operation = "unmatched"
		}

		ctx := slogctx.With(c.Request.Context(),
			"request_id", uuid.NewString(),
			"operation", operation,
		)
		c.Request = c.Request.WithContext(ctx)

		requestStartTime := time.Now()

		c.Next()

		elapsedTime := time.Since(requestStartTime)

		attrs := metric.WithAttributes(
			attribute.String("application", cfg.Application.Name),
			attribute.String("operation", operation),
			attribute.Int("status", c.Writer.Status()),
		)

		counter.Add(ctx, 1, attrs)
		hist.Record(ctx, elapsedTime.Milliseconds(), attrs)
	}
}
