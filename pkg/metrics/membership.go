package metrics

import "github.com/prometheus/client_golang/prometheus"

// MembershipMetrics counts lifecycle transitions driven by payments and the
// expiry sweep.
type MembershipMetrics struct {
	payments  *prometheus.CounterVec
	activated prometheus.Counter
	expired   prometheus.Counter
}

func NewMembershipMetrics(reg prometheus.Registerer) *MembershipMetrics {
	if reg == nil {
		return &MembershipMetrics{}
	}
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_total",
		Help:      "Payments recorded or transitioned, by resulting status.",
	}, []string{"status"})
	activated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "memberships_activated_total",
		Help:      "Membership activations or extensions.",
	})
	expired := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "memberships_expired_total",
		Help:      "Members flipped to expired by the sweep.",
	})
	reg.MustRegister(payments, activated, expired)
	return &MembershipMetrics{payments: payments, activated: activated, expired: expired}
}

func (m *MembershipMetrics) IncPayment(status string) {
	if m == nil || m.payments == nil {
		return
	}
	m.payments.WithLabelValues(normalizeLabel(status)).Inc()
}

func (m *MembershipMetrics) IncActivated() {
	if m == nil || m.activated == nil {
		return
	}
	m.activated.Inc()
}

func (m *MembershipMetrics) AddExpired(n int) {
	if m == nil || m.expired == nil || n <= 0 {
		return
	}
	m.expired.Add(float64(n))
}
