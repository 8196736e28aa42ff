package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	feedMetricsEnabled  bool
	feedAssembleSeconds metric.Float64Histogram
	feedAuxFailures     metric.Int64Counter
	likeToggles         metric.Int64Counter
)

func initFeedMetricsInstruments(serviceName string) {
	meter := otel.Meter(serviceName)

	var err error
	feedAssembleSeconds, err = meter.Float64Histogram(
		"codeswap_feed_assemble_duration_seconds",
		metric.WithDescription("Feed assembly latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return
	}

	feedAuxFailures, err = meter.Int64Counter(
		"codeswap_feed_aux_failures_total",
		metric.WithDescription("Swallowed auxiliary fetch failures during feed assembly"),
	)
	if err != nil {
		return
	}

	likeToggles, err = meter.Int64Counter(
		"codeswap_like_toggles_total",
		metric.WithDescription("Like toggles by direction"),
	)
	if err != nil {
		return
	}

	feedMetricsEnabled = true
}

func ObserveFeedAssemble(ctx context.Context, duration time.Duration, err error) {
	if !feedMetricsEnabled {
		return
	}
	feedAssembleSeconds.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("feed.status", statusLabel(err)),
	))
}

func CountFeedAuxFailure(ctx context.Context, source string) {
	if !feedMetricsEnabled {
		return
	}
	feedAuxFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("feed.aux_source", source),
	))
}

func CountLikeToggle(ctx context.Context, liked bool) {
	if !feedMetricsEnabled {
		return
	}
	direction := "unlike"
	if liked {
		direction = "like"
	}
	likeToggles.Add(ctx, 1, metric.WithAttributes(
		attribute.String("like.direction", direction),
	))
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
