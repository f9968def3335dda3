// Package metrics holds the prometheus collectors for the gas monitor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PollsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentry_gas_polls_total",
		Help: "Number of gas price polls started.",
	})

	PollErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentry_gas_poll_errors_total",
		Help: "Number of failed upstream requests made while polling.",
	}, []string{"source"})

	GasPriceGwei = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sentry_gas_price_gwei",
		Help: "Latest observed gas price per tier.",
	}, []string{"tier"})

	EthUSD = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sentry_eth_usd",
		Help: "Latest observed ETH/USD rate.",
	})

	ActivityClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sentry_activity_clients",
		Help: "Number of connected activity feed clients.",
	})
)
