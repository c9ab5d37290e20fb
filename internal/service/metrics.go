package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	briefGenerationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brief_generation_total",
			Help: "Brief generation attempts by result",
		},
		[]string{"result"},
	)

	dispatchSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsletter_dispatch_sends_total",
			Help: "Per-recipient newsletter sends by result",
		},
		[]string{"result"},
	)

	revokedTokensPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "revoked_tokens_purged_total",
			Help: "Expired denylist entries removed",
		},
	)
)
