package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"rdt_go/pkg/reddit"
)

// Operations считает операции ботов по имени операции и итоговому виду результата.
var Operations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "rdt",
		Subsystem: "bot",
		Name:      "operations_total",
		Help:      "Bot operations by operation and result kind.",
	},
	[]string{"op", "kind"},
)

func init() {
	prometheus.MustRegister(Operations)
}

// Observe подходит для reddit.WithObserver.
func Observe(op string, err error) {
	Operations.WithLabelValues(op, reddit.KindOf(err).String()).Inc()
}
