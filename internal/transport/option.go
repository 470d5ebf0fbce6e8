package transport

import (
	"time"

	"github.com/1ureka/danmaku/internal/metrics"
)

// Default configuration values.
const (
	defaultHeartbeat      = 30 * time.Second
	defaultSendBuffer     = 64              // outgoing packet channel capacity
	defaultMaxMessageSize = 4 * 1024 * 1024 // largest inbound websocket message
	defaultWriteTimeout   = 10 * time.Second
)

// options holds the configuration for a Transport.
type options struct {
	heartbeat      time.Duration
	authBody       string
	metrics        *metrics.Metrics
	sendBuffer     int
	maxMessageSize int64
	writeTimeout   time.Duration
}

// Option configures a Transport.
type Option func(*options)

func defaultOptions() options {
	return options{
		heartbeat:      defaultHeartbeat,
		sendBuffer:     defaultSendBuffer,
		maxMessageSize: defaultMaxMessageSize,
		writeTimeout:   defaultWriteTimeout,
	}
}

// WithHeartbeat sets the keepalive interval. Non-positive values are ignored.
func WithHeartbeat(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.heartbeat = d
		}
	}
}

// WithAuthBody makes Run send an auth packet with body before anything else.
func WithAuthBody(body string) Option {
	return func(o *options) {
		o.authBody = body
	}
}

// WithMetrics records traffic into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithSendBuffer sets the capacity of the outgoing packet queue.
func WithSendBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.sendBuffer = n
		}
	}
}

// WithMaxMessageSize limits the size of a single inbound message.
func WithMaxMessageSize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxMessageSize = n
		}
	}
}
