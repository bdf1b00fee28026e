package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "typerace_active_rooms",
		Help: "Number of race rooms currently in the registry.",
	})

	RacesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typerace_races_started_total",
		Help: "Races that reached the racing state.",
	})

	RacesFinished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typerace_races_finished_total",
		Help: "Races in which every player finished.",
	})

	PlayersJoined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typerace_players_joined_total",
		Help: "Successful joins, humans and bots alike.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
