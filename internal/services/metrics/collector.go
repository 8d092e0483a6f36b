package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "zmqlistener"

// Drop reasons.
const (
	ReasonMalformed    = "malformed"
	ReasonUnknownTopic = "unknown_topic"
)

// Collector counts what the dispatcher sees. A nil *Collector is valid and
// records nothing.
type Collector struct {
	frames        prometheus.Counter
	notifications *prometheus.CounterVec
	dropped       *prometheus.CounterVec
	handlerErrors prometheus.Counter
}

// NewCollector creates the counters and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_received_total",
			Help:      "Number of multi-part frames received from the publisher",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Number of notifications dispatched, by topic",
		}, []string{"topic"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_frames_total",
			Help:      "Number of frames discarded before dispatch, by reason",
		}, []string{"reason"}),
		handlerErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_errors_total",
			Help:      "Number of notifications the handler failed on",
		}),
	}
	reg.MustRegister(c.frames, c.notifications, c.dropped, c.handlerErrors)
	return c
}

func (c *Collector) FrameReceived() {
	if c != nil {
		c.frames.Inc()
	}
}

func (c *Collector) Dispatched(topic string) {
	if c != nil {
		c.notifications.WithLabelValues(topic).Inc()
	}
}

func (c *Collector) Dropped(reason string) {
	if c != nil {
		c.dropped.WithLabelValues(reason).Inc()
	}
}

func (c *Collector) HandlerFailed() {
	if c != nil {
		c.handlerErrors.Inc()
	}
}
