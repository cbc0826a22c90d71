// Package metrics exposes the Prometheus instruments of the voting core.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
)

const (
	ReasonSessionClosed = "session_closed"
	ReasonExhausted     = "exhausted"
	ReasonNothingToMove = "nothing_to_remove"
	ReasonIncomplete    = "incomplete"
	ReasonSubmitted     = "already_submitted"
	ReasonUnknown       = "unknown"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type Metrics struct {
	ballotsSubmitted     prometheus.Counter
	budgetRejections     *prometheus.CounterVec
	imports              *prometheus.CounterVec
	reconcileCorrections prometheus.Counter
	reconcileDuration    prometheus.Histogram
}

func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		ballotsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "featurevote",
			Name:      "ballots_submitted_total",
			Help:      "Vote budgets flushed to the ledger.",
		}),
		budgetRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "featurevote",
			Name:      "budget_rejections_total",
			Help:      "Budget mutations refused, by reason.",
		}, []string{"reason"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "featurevote",
			Name:      "feature_imports_total",
			Help:      "Feature imports, by outcome.",
		}, []string{"outcome"}),
		reconcileCorrections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "featurevote",
			Name:      "session_reconcile_corrections_total",
			Help:      "Sessions whose cached active flag was corrected.",
		}),
		reconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "featurevote",
			Name:      "session_reconcile_duration_seconds",
			Help:      "Duration of a full session reconciliation pass.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	registerer.MustRegister(
		m.ballotsSubmitted,
		m.budgetRejections,
		m.imports,
		m.reconcileCorrections,
		m.reconcileDuration,
	)
	return m
}

func (m *Metrics) BallotSubmitted() {
	if m == nil {
		return
	}
	m.ballotsSubmitted.Inc()
}

func (m *Metrics) BudgetRejected(err error) {
	if m == nil || err == nil {
		return
	}
	m.budgetRejections.WithLabelValues(ClassifyBudgetRejection(err)).Inc()
}

func (m *Metrics) ImportFinished(err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.imports.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Reconciled(corrections int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.reconcileCorrections.Add(float64(corrections))
	m.reconcileDuration.Observe(elapsed.Seconds())
}

func ClassifyBudgetRejection(err error) string {
	switch {
	case errors.Is(err, domain.ErrSessionClosed):
		return ReasonSessionClosed
	case errors.Is(err, domain.ErrBudgetExhausted):
		return ReasonExhausted
	case errors.Is(err, domain.ErrNothingToRemove):
		return ReasonNothingToMove
	case errors.Is(err, domain.ErrIncompleteAllocation):
		return ReasonIncomplete
	case errors.Is(err, domain.ErrBudgetSubmitted):
		return ReasonSubmitted
	default:
		return ReasonUnknown
	}
}
