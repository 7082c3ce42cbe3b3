// Package metrics registers the bot's Prometheus collectors. All
// collectors use the default registry and are exposed by the admin
// server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpdatesConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordchain_updates_consumed_total",
		Help: "Total number of chat updates consumed from the queue",
	})

	UpdatesDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordchain_updates_discarded_total",
		Help: "Total number of malformed queue deliveries discarded",
	})

	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wordchain_active_rooms",
		Help: "Number of rooms with a live game engine",
	})

	TimerFires = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordchain_timer_fires_total",
		Help: "Total number of turn and registration timers that expired",
	})

	WordVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wordchain_word_verdicts_total",
		Help: "Total number of word submissions by verdict",
	}, []string{"verdict"})

	VoteOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wordchain_vote_outcomes_total",
		Help: "Total number of word votes by outcome",
	}, []string{"outcome"})

	GamesFinished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordchain_games_finished_total",
		Help: "Total number of games played to completion",
	})

	SendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordchain_send_failures_total",
		Help: "Total number of chat messages the VK API refused",
	})
)
