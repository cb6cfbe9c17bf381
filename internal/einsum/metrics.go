package einsum

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/born-ml/einsum/internal/backend/cpu"
)

var (
	// contractionsTotal counts completed contractions by algorithm
	contractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "einsum_contractions_total",
		Help: "Total contractions by algorithm that produced the result",
	}, []string{"algorithm"})

	// fallbacksTotal counts specialized attempts that ended in the generic evaluator
	fallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "einsum_fallbacks_total",
		Help: "Specialized attempts that fell back to the generic evaluator, by attempted algorithm and refusal reason",
	}, []string{"algorithm", "reason"})

	// contractionDuration tracks contraction latency
	contractionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "einsum_contraction_duration_seconds",
		Help:    "Contraction duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.000001, 4, 12), // 1µs to ~4s
	}, []string{"algorithm"})

	// planCacheLookups counts plan cache lookups by result
	planCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "einsum_plan_cache_lookups_total",
		Help: "Plan cache lookups by result",
	}, []string{"result"})
)

// fallbackReason maps a refusal from the view builder or a primitive to a
// bounded label value.
func fallbackReason(err error) string {
	switch {
	case errors.Is(err, errPartialView):
		return "partial_view"
	case errors.Is(err, errNotCollapsed):
		return "not_collapsed"
	case errors.Is(err, errDotOrder):
		return "dot_order"
	case errors.Is(err, cpu.ErrNotContiguous):
		return "not_contiguous"
	case errors.Is(err, cpu.ErrUnsupportedType):
		return "unsupported_type"
	case errors.Is(err, cpu.ErrShapeMismatch):
		return "shape_mismatch"
	default:
		return "other"
	}
}
