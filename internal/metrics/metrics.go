// Package metrics exposes Prometheus counters for the stream connection.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/1ureka/danmaku/internal/protocol"
)

const namespace = "danmaku"

// Metrics holds the Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	packetsReceived *prometheus.CounterVec
	packetsSent     *prometheus.CounterVec
	decodeErrors    *prometheus.CounterVec
	bytesReceived   prometheus.Counter
	bytesSent       prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		packetsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_received_total",
			Help:      "Total number of packets decoded from the stream",
		}, []string{"operation"}),

		packetsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_sent_total",
			Help:      "Total number of packets written to the stream",
		}, []string{"operation"}),

		decodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Total number of inbound messages that failed to decode",
		}, []string{"kind"}),

		bytesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_received_total",
			Help:      "Total bytes read from the stream",
		}),

		bytesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_sent_total",
			Help:      "Total bytes written to the stream",
		}),
	}
}

// ObserveReceived records one inbound message of n bytes and the packets it
// decoded to, or the decode error.
func (m *Metrics) ObserveReceived(n int, packets []protocol.Packet, err error) {
	if m == nil {
		return
	}
	m.bytesReceived.Add(float64(n))
	if err != nil {
		m.decodeErrors.WithLabelValues(protocol.ErrorKind(err)).Inc()
		return
	}
	for _, p := range packets {
		m.packetsReceived.WithLabelValues(p.Operation().String()).Inc()
	}
}

// ObserveSent records one outbound packet of n bytes.
func (m *Metrics) ObserveSent(op protocol.Operation, n int) {
	if m == nil {
		return
	}
	m.bytesSent.Add(float64(n))
	m.packetsSent.WithLabelValues(op.String()).Inc()
}
