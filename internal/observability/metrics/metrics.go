package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "envstation_"

	resultSuccess     = "success"
	resultFailure     = "failure"
	resultRateLimited = "rate_limited"

	transportNone = "none"
)

var (
	registerOnce sync.Once

	publishesTotal *prometheus.CounterVec
	fallbacksTotal *prometheus.CounterVec
	publishLatency *prometheus.HistogramVec

	lastReading *prometheus.GaugeVec
)

// Init registers the publish metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		publishesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "publishes_total",
				Help: "Total publish calls by station, transport and result",
			},
			[]string{"station", "transport", "result"},
		)
		fallbacksTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "fallbacks_total",
				Help: "Total demotions to the secondary transport by station",
			},
			[]string{"station"},
		)
		publishLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "publish_latency_seconds",
				Help:    "Publish call latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"transport"},
		)

		lastReading = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "reading",
				Help: "Latest simulated reading by station and channel",
			},
			[]string{"station", "channel"},
		)

		prometheus.MustRegister(
			publishesTotal,
			fallbacksTotal,
			publishLatency,
			lastReading,
		)
	})
}

// ObservePublish records one publish call and its latency.
func ObservePublish(station, transport, result string, duration time.Duration) {
	if transport == "" {
		transport = transportNone
	}
	if result == "" {
		result = resultSuccess
	}
	if publishesTotal != nil {
		publishesTotal.WithLabelValues(station, transport, result).Inc()
	}
	if publishLatency != nil {
		publishLatency.WithLabelValues(transport).Observe(duration.Seconds())
	}
}

// IncFallback counts a demotion to the secondary transport.
func IncFallback(station string) {
	if fallbacksTotal != nil {
		fallbacksTotal.WithLabelValues(station).Inc()
	}
}

// SetReading publishes the latest value of one channel.
func SetReading(station, channel string, value float64) {
	if lastReading != nil {
		lastReading.WithLabelValues(station, channel).Set(value)
	}
}

// Exported constants for callers.
const (
	ResultSuccess     = resultSuccess
	ResultFailure     = resultFailure
	ResultRateLimited = resultRateLimited
)
