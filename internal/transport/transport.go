// Package transport maintains the websocket connection that carries the
// live event stream. It sends the auth packet, keeps the connection alive
// and decodes every inbound message into protocol packets.
package transport

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/1ureka/danmaku/internal/protocol"
	"github.com/1ureka/danmaku/internal/util"
)

// Errors returned by Transport operations.
var (
	ErrClosed         = errors.New("transport: closed")
	ErrAlreadyRunning = errors.New("transport: already running")
)

// Transport wraps a single websocket connection.
//
// Its lifecycle ends when Run returns or Close is called, whichever comes
// first. There is no reconnect; callers dial a new Transport.
type Transport struct {
	conn   *websocket.Conn
	id     uint32
	opts   options
	sender *sender

	running   atomic.Bool
	closed    chan struct{}
	closeOnce sync.Once

	mu       sync.RWMutex
	onPacket func(protocol.Packet, error)
}

// Dial opens the websocket at url. header is sent verbatim with the
// handshake request; it typically comes from auth.Signer.BuildHeader.
func Dial(ctx context.Context, url string, header map[string]string, opt ...Option) (*Transport, error) {
	opts := defaultOptions()
	for _, o := range opt {
		o(&opts)
	}

	reqHeader := make(http.Header, len(header))
	for k, v := range header {
		reqHeader[k] = []string{v}
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, reqHeader)
	if err != nil {
		if resp != nil {
			return nil, errors.Wrapf(err, "dial %s: status %d", url, resp.StatusCode)
		}
		return nil, errors.Wrapf(err, "dial %s", url)
	}
	conn.SetReadLimit(opts.maxMessageSize)

	t := &Transport{
		conn:   conn,
		id:     util.ConnID(conn.LocalAddr(), conn.RemoteAddr()),
		opts:   opts,
		sender: newSender(opts),
		closed: make(chan struct{}),
	}
	util.LogDebug("[%08x] websocket connected: %s", t.id, url)

	return t, nil
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

// Run drives the connection: it sends the auth packet if one is configured,
// then reads, writes and sends keepalives until ctx is cancelled or the
// connection fails. The Transport is closed when Run returns.
func (t *Transport) Run(ctx context.Context) error {
	if !t.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer t.Close()

	var first []protocol.Packet
	if t.opts.authBody != "" {
		first = append(first, protocol.NewAuthPacket(t.opts.authBody))
	}

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return t.sender.loop(gctx, t.conn, first...)
	})

	group.Go(func() error {
		return t.readLoop()
	})

	group.Go(func() error {
		return t.keepalive(gctx)
	})

	// Unblock the read loop once anything else stops.
	group.Go(func() error {
		select {
		case <-gctx.Done():
		case <-t.closed:
		}
		t.conn.Close()
		return nil
	})

	err := group.Wait()
	if ctx.Err() != nil {
		util.LogDebug("[%08x] connection closed", t.id)
		return ctx.Err()
	}
	select {
	case <-t.closed:
		util.LogDebug("[%08x] connection closed locally", t.id)
		return ErrClosed
	default:
	}
	util.LogWarning("[%08x] connection closed with error: %v", t.id, err)
	return err
}

// Done returns a channel that is closed when the Transport is shut down.
func (t *Transport) Done() <-chan struct{} {
	return t.closed
}

// Close shuts down the connection. Safe to call multiple times.
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.closed)
		err = t.conn.Close()
	})
	return err
}

// ---------------------------------------------------------------------------
// Data
// ---------------------------------------------------------------------------

// OnPacket registers a callback invoked for every decoded inbound packet.
// When a message fails to decode the callback is invoked once with the
// error and a zero Packet; the connection stays up.
func (t *Transport) OnPacket(fn func(protocol.Packet, error)) {
	t.mu.Lock()
	t.onPacket = fn
	t.mu.Unlock()
}

// Send enqueues a packet for transmission. It blocks while the queue is
// full.
func (t *Transport) Send(ctx context.Context, pkt protocol.Packet) error {
	select {
	case <-t.closed:
		return ErrClosed
	default:
	}

	select {
	case t.sender.inbox <- pkt:
		return nil
	case <-t.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Transport) dispatch(pkt protocol.Packet, err error) {
	t.mu.RLock()
	fn := t.onPacket
	t.mu.RUnlock()

	if fn != nil {
		fn(pkt, err)
	}
}

// readLoop decodes inbound messages until the connection fails.
func (t *Transport) readLoop() error {
	for {
		msgType, data, err := t.conn.ReadMessage()
		if err != nil {
			return errors.Wrap(err, "read message")
		}
		if msgType != websocket.BinaryMessage {
			util.LogDebug("[%08x] ignoring non-binary message (type=%d)", t.id, msgType)
			continue
		}

		packets, err := protocol.Decode(data)
		t.opts.metrics.ObserveReceived(len(data), packets, err)
		if err != nil {
			util.Stats.AddDecodeError()
			util.LogWarning("[%08x] failed to decode %d bytes: %v", t.id, len(data), err)
			t.dispatch(protocol.Packet{}, err)
			continue
		}
		util.Stats.AddRecv(len(data), len(packets))

		for _, pkt := range packets {
			if pkt.Operation() == protocol.OpHeartbeat {
				if !t.sender.trySend(protocol.NewHeartbeatReplyPacket()) {
					util.LogWarning("[%08x] send queue full, dropping heartbeat reply", t.id)
				}
			}
			t.dispatch(pkt, nil)
		}
	}
}

// keepalive sends a heartbeat reply every heartbeat interval.
func (t *Transport) keepalive(ctx context.Context) error {
	ticker := time.NewTicker(t.opts.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := t.Send(ctx, protocol.NewHeartbeatReplyPacket()); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
