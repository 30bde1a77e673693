package edit

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts controller activity. Counters are always live; they are
// exported only when registered.
type Metrics struct {
	Commits           prometheus.Counter
	RejectedCommits   prometheus.Counter
	SkippedBlurs      prometheus.Counter
	KeystrokesChecked prometheus.Counter
	KeystrokesBlocked prometheus.Counter
	Pastes            *prometheus.CounterVec
}

// NewMetrics builds the controller counters and registers them on reg when
// reg is non-nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Commits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gridedit",
			Name:      "commits_total",
			Help:      "Edits committed to the host.",
		}),
		RejectedCommits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gridedit",
			Name:      "rejected_commits_total",
			Help:      "Blurs whose changed text failed validation.",
		}),
		SkippedBlurs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gridedit",
			Name:      "unchanged_blurs_total",
			Help:      "Blurs discarded because the text was unchanged.",
		}),
		KeystrokesChecked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gridedit",
			Name:      "keystrokes_filtered_total",
			Help:      "Keystrokes run through the numeric filter.",
		}),
		KeystrokesBlocked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gridedit",
			Name:      "keystrokes_blocked_total",
			Help:      "Keystrokes rejected by the numeric filter.",
		}),
		Pastes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gridedit",
			Name:      "pastes_checked_total",
			Help:      "Pastes checked against numeric columns, by result.",
		}, []string{"result"}),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{
		m.Commits, m.RejectedCommits, m.SkippedBlurs,
		m.KeystrokesChecked, m.KeystrokesBlocked, m.Pastes,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func mustMetrics() *Metrics {
	m, err := NewMetrics(nil)
	if err != nil {
		panic(err)
	}
	return m
}
