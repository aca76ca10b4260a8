package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Quote outcomes recorded by QuoteMetrics.
const (
	OutcomeOK                  = "ok"
	OutcomeNoApplicablePricing = "no_applicable_pricing"
	OutcomeInvalid             = "invalid"
	OutcomeError               = "error"
)

// QuoteMetrics records quote calculation and tier validation activity.
type QuoteMetrics struct {
	duration   *prometheus.HistogramVec
	quotes     *prometheus.CounterVec
	rejections *prometheus.CounterVec
	cacheHits  *prometheus.CounterVec
}

// NewQuoteMetrics registers the pricing metrics on the provided registerer.
func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	if reg == nil {
		return &QuoteMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quote_duration_seconds",
		Help:    "Duration of quote calculations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource_type"})
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quotes_total",
		Help: "Quote calculations by outcome.",
	}, []string{"resource_type", "outcome"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tier_validation_issues_total",
		Help: "Tier definition issues reported by the validator.",
	}, []string{"kind"})
	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "definitions_cache_lookups_total",
		Help: "Definition cache lookups by result.",
	}, []string{"result"})
	reg.MustRegister(duration, quotes, rejections, cacheHits)
	return &QuoteMetrics{
		duration:   duration,
		quotes:     quotes,
		rejections: rejections,
		cacheHits:  cacheHits,
	}
}

// ObserveQuote records one quote calculation.
func (q *QuoteMetrics) ObserveQuote(resourceType, outcome string, duration time.Duration) {
	if q == nil || q.quotes == nil {
		return
	}
	resourceType = normalizeLabel(resourceType)
	q.duration.WithLabelValues(resourceType).Observe(duration.Seconds())
	q.quotes.WithLabelValues(resourceType, normalizeLabel(outcome)).Inc()
}

// IncIssue increments the issue counter for the given kind.
func (q *QuoteMetrics) IncIssue(kind string) {
	if q == nil || q.rejections == nil {
		return
	}
	q.rejections.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncCacheLookup records a definitions cache hit or miss.
func (q *QuoteMetrics) IncCacheLookup(hit bool) {
	if q == nil || q.cacheHits == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	q.cacheHits.WithLabelValues(result).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
