package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bindingsFiredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quest_bindings_fired_total",
			Help: "Total number of binding executions by action type and status.",
		},
		[]string{"action", "status"},
	)

	runsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quest_runs_completed_total",
		Help: "Total number of runs that reached a terminal passage.",
	})

	questCompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quest_external_completions_total",
			Help: "Total number of external quest completion calls by status.",
		},
		[]string{"status"},
	)
)
