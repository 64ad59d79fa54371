package metrics

import (
	"context"

	"go.opentelemetry.io/otel/metric"

	"github.com/allisson/compvault/internal/errors"
)

// KeyCacheStats is the snapshot the key cache gauges read on every collection.
type KeyCacheStats struct {
	Size        int
	Capacity    int
	Hits        uint64
	Misses      uint64
	Derivations uint64
	Evictions   uint64
}

// RegisterKeyCacheMetrics publishes key cache counters as observable instruments.
// stats is called from the collection goroutine and must be safe for concurrent use.
func RegisterKeyCacheMetrics(
	meterProvider metric.MeterProvider,
	namespace string,
	stats func() KeyCacheStats,
) error {
	meter := meterProvider.Meter(namespace)

	entries, err := meter.Int64ObservableGauge(
		namespace+"_key_cache_entries",
		metric.WithDescription("Derived keys currently cached"),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create key cache entries gauge")
	}

	capacity, err := meter.Int64ObservableGauge(
		namespace+"_key_cache_capacity",
		metric.WithDescription("Maximum number of cached derived keys"),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create key cache capacity gauge")
	}

	hits, err := meter.Int64ObservableCounter(
		namespace+"_key_cache_hits_total",
		metric.WithDescription("Key lookups served from the cache"),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create key cache hits counter")
	}

	misses, err := meter.Int64ObservableCounter(
		namespace+"_key_cache_misses_total",
		metric.WithDescription("Key lookups that required a derivation"),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create key cache misses counter")
	}

	derivations, err := meter.Int64ObservableCounter(
		namespace+"_key_derivations_total",
		metric.WithDescription("Key derivations actually executed"),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create key derivations counter")
	}

	evictions, err := meter.Int64ObservableCounter(
		namespace+"_key_cache_evictions_total",
		metric.WithDescription("Cached keys evicted to respect capacity"),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create key cache evictions counter")
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := stats()
		o.ObserveInt64(entries, int64(s.Size))
		o.ObserveInt64(capacity, int64(s.Capacity))
		o.ObserveInt64(hits, int64(s.Hits))
		o.ObserveInt64(misses, int64(s.Misses))
		o.ObserveInt64(derivations, int64(s.Derivations))
		o.ObserveInt64(evictions, int64(s.Evictions))
		return nil
	}, entries, capacity, hits, misses, derivations, evictions)
	if err != nil {
		return errors.Wrap(err, "failed to register key cache callback")
	}
	return nil
}
