package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMembershipMetricsCounts(t *testing.T) {
	m := NewMembershipMetrics(prometheus.NewRegistry())
	m.IncPayment("verified")
	m.IncPayment("verified")
	m.IncPayment("pending")
	m.IncActivated()
	m.AddExpired(3)
	m.AddExpired(0)

	if got := testutil.ToFloat64(m.payments.WithLabelValues("verified")); got != 2 {
		t.Fatalf("expected 2 verified payments, got %v", got)
	}
	if got := testutil.ToFloat64(m.payments.WithLabelValues("pending")); got != 1 {
		t.Fatalf("expected 1 pending payment, got %v", got)
	}
	if got := testutil.ToFloat64(m.activated); got != 1 {
		t.Fatalf("expected 1 activation, got %v", got)
	}
	if got := testutil.ToFloat64(m.expired); got != 3 {
		t.Fatalf("expected 3 expired memberships, got %v", got)
	}
}

func TestMembershipMetricsNilSafe(t *testing.T) {
	var m *MembershipMetrics
	m.IncPayment("verified")
	m.IncActivated()
	m.AddExpired(2)

	NewMembershipMetrics(nil).AddExpired(1)
}
