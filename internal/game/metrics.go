package game

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	answersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coupsurcoup",
		Name:      "answers_total",
		Help:      "Resolved answers by round and outcome.",
	}, []string{"round", "outcome"})

	eliminationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coupsurcoup",
		Name:      "eliminations_total",
		Help:      "Players eliminated, by cause.",
	}, []string{"cause"})

	staleTimersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coupsurcoup",
		Name:      "stale_timers_total",
		Help:      "Timer callbacks dropped because their turn token was outdated.",
	}, []string{"kind"})

	skippedQuestionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coupsurcoup",
		Name:      "skipped_questions_total",
		Help:      "Questions skipped because their answer encoding could not be resolved.",
	}, []string{"round"})

	gamesStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coupsurcoup",
		Name:      "games_started_total",
		Help:      "Games that left the lobby.",
	})

	gamesFinishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coupsurcoup",
		Name:      "games_finished_total",
		Help:      "Games that reached the finished status.",
	})

	persistErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coupsurcoup",
		Name:      "persist_errors_total",
		Help:      "Snapshot persistence failures by step.",
	}, []string{"step"})
)
