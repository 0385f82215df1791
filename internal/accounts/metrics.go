package accounts

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

var (
	registrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accounts",
			Name:      "registrations_total",
			Help:      "Total user registrations by role",
		},
		[]string{"role"},
	)

	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accounts",
			Name:      "logins_total",
			Help:      "Total login attempts by result",
		},
		[]string{"result"},
	)
)

func recordRegistration(role string) {
	registrationsTotal.WithLabelValues(role).Inc()
}

func recordLogin(result string) {
	loginsTotal.WithLabelValues(result).Inc()
}
