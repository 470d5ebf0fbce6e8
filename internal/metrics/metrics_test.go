package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/1ureka/danmaku/internal/protocol"
)

func TestObserveReceived(t *testing.T) {
	m := New(prometheus.NewRegistry())

	packets := []protocol.Packet{
		protocol.NewPacket(protocol.OpSendSmsReply, 0, "a"),
		protocol.NewPacket(protocol.OpSendSmsReply, 0, "b"),
		protocol.NewPacket(protocol.OpHeartbeat, 0, ""),
	}
	m.ObserveReceived(100, packets, nil)

	require.Equal(t, 2.0, testutil.ToFloat64(m.packetsReceived.WithLabelValues("SendSmsReply")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.packetsReceived.WithLabelValues("Heartbeat")))
	require.Equal(t, 100.0, testutil.ToFloat64(m.bytesReceived))
}

func TestObserveReceivedError(t *testing.T) {
	m := New(prometheus.NewRegistry())

	_, err := protocol.Decode([]byte{1, 2})
	m.ObserveReceived(2, nil, err)

	require.Equal(t, 1.0, testutil.ToFloat64(m.decodeErrors.WithLabelValues("truncated_input")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.bytesReceived))
}

func TestObserveSent(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveSent(protocol.OpAuth, 30)
	m.ObserveSent(protocol.OpHeartbeatReply, 16)

	require.Equal(t, 1.0, testutil.ToFloat64(m.packetsSent.WithLabelValues("Auth")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.packetsSent.WithLabelValues("HeartbeatReply")))
	require.Equal(t, 46.0, testutil.ToFloat64(m.bytesSent))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveReceived(1, nil, nil)
	m.ObserveSent(protocol.OpAuth, 1)
}

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveSent(protocol.OpAuth, 1)

	count, err := testutil.GatherAndCount(reg, "danmaku_packets_sent_total", "danmaku_bytes_sent_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
