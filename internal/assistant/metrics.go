package assistant

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Turn outcomes.
const (
	turnOK       = "ok"
	turnApology  = "apology"
	turnFailed   = "failed"
	turnRejected = "rejected"
)

var chatTurns = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_chat_turns_total",
		Help: "Chat turns by outcome",
	},
	[]string{"result"},
)
