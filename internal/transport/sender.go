package transport

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/1ureka/danmaku/internal/metrics"
	"github.com/1ureka/danmaku/internal/protocol"
	"github.com/1ureka/danmaku/internal/util"
)

// sender is the single writer of a websocket connection. Every outbound
// packet goes through its inbox.
type sender struct {
	inbox        chan protocol.Packet
	writeTimeout time.Duration
	metrics      *metrics.Metrics
}

func newSender(opts options) *sender {
	return &sender{
		inbox:        make(chan protocol.Packet, opts.sendBuffer),
		writeTimeout: opts.writeTimeout,
		metrics:      opts.metrics,
	}
}

// loop writes first, in order, then drains the inbox until ctx is done or a
// write fails.
func (s *sender) loop(ctx context.Context, conn *websocket.Conn, first ...protocol.Packet) error {
	for _, pkt := range first {
		if err := s.write(conn, pkt); err != nil {
			return err
		}
	}

	for {
		select {
		case pkt := <-s.inbox:
			if err := s.write(conn, pkt); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *sender) write(conn *websocket.Conn, pkt protocol.Packet) error {
	data := protocol.Encode(pkt)

	_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return errors.Wrapf(err, "write %s packet", pkt.Operation())
	}

	util.Stats.AddSent(len(data))
	s.metrics.ObserveSent(pkt.Operation(), len(data))
	return nil
}

// trySend enqueues pkt without blocking. It reports false when the inbox is
// full.
func (s *sender) trySend(pkt protocol.Packet) bool {
	select {
	case s.inbox <- pkt:
		return true
	default:
		return false
	}
}
