package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "quote_fetch_latency_seconds",
		Help: "Latency of upstream quote fetches",
	}, []string{"provider"})

	ParseFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_parse_failures_total",
		Help: "Total number of provider payloads that failed to parse",
	}, []string{"provider"})

	QuotesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quotes_fetched_total",
		Help: "Total number of quote records normalized",
	}, []string{"provider"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	DBInsertRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "db_insert_total",
		Help: "Total number of records inserted into DB",
	}, []string{"table"})

	BacktestRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backtest_runs_total",
		Help: "Total number of backtest runs executed",
	})
)
