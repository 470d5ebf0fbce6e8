package util

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pterm/pterm"
)

// ──────────────────────────────────────────────────────────────────────────────
// Global stats singleton
// ──────────────────────────────────────────────────────────────────────────────

// Stats is the process-wide traffic counter.
var Stats = &stats{}

type stats struct {
	PacketsSent  atomic.Int64 // packets written to the stream
	PacketsRecv  atomic.Int64 // packets decoded from the stream
	DecodeErrors atomic.Int64 // inbound messages that failed to decode
	BytesSent    atomic.Int64 // bytes written to the stream
	BytesRecv    atomic.Int64 // bytes read from the stream
}

// AddSent records one outbound packet of n bytes.
func (s *stats) AddSent(n int) {
	s.PacketsSent.Add(1)
	s.BytesSent.Add(int64(n))
}

// AddRecv records one inbound message of n bytes that decoded to packets.
func (s *stats) AddRecv(n, packets int) {
	s.PacketsRecv.Add(int64(packets))
	s.BytesRecv.Add(int64(n))
}

func (s *stats) AddDecodeError() { s.DecodeErrors.Add(1) }

// ──────────────────────────────────────────────────────────────────────────────
// Periodic reporter
// ──────────────────────────────────────────────────────────────────────────────

const reportInterval = 10 * time.Second

// StartStatsReporter launches a goroutine that logs stream statistics
// every 10 seconds. It stops when ctx is cancelled.
func StartStatsReporter(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(reportInterval)
		defer ticker.Stop()

		var prev snapshot
		for {
			select {
			case <-ticker.C:
				cur := takeSnapshot()
				if line, ok := formatDelta(prev, cur, reportInterval.Seconds()); ok {
					pterm.DefaultLogger.Info(line)
				}
				prev = cur

			case <-ctx.Done():
				return
			}
		}
	}()
}

type snapshot struct {
	pktsIn, pktsOut, errs, bytesIn, bytesOut int64
}

func takeSnapshot() snapshot {
	return snapshot{
		pktsIn:   Stats.PacketsRecv.Load(),
		pktsOut:  Stats.PacketsSent.Load(),
		errs:     Stats.DecodeErrors.Load(),
		bytesIn:  Stats.BytesRecv.Load(),
		bytesOut: Stats.BytesSent.Load(),
	}
}

// formatDelta formats the traffic between two snapshots taken secs apart.
// It reports false when nothing happened.
func formatDelta(prev, cur snapshot, secs float64) (string, bool) {
	d := snapshot{
		pktsIn:   cur.pktsIn - prev.pktsIn,
		pktsOut:  cur.pktsOut - prev.pktsOut,
		errs:     cur.errs - prev.errs,
		bytesIn:  cur.bytesIn - prev.bytesIn,
		bytesOut: cur.bytesOut - prev.bytesOut,
	}
	if d == (snapshot{}) {
		return "", false
	}
	return formatStats(float64(d.bytesIn)/secs, float64(d.bytesOut)/secs, d.pktsIn, d.pktsOut, d.errs), true
}

// byteUnits defines the units for formatting byte counts in a human-readable way.
var byteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB"}

// formatBytes formats a byte count into a human-readable string with fixed width (exactly 8 chars)
// for example: "99.0   B", " 1.5 KiB", " 0.1 MiB", "98.9 GiB", etc.
func formatBytes(b float64) string {
	unitIdx := 0

	// to prevent "100.0 KiB", which is 9 chars
	for b > 99 && unitIdx < 5 {
		b /= 1024
		unitIdx++
	}

	return fmt.Sprintf("%4.1f %3s", b, byteUnits[unitIdx])
}

// formatStats returns a formatted string of the current stats for display in the logger.
func formatStats(inS, outS float64, pktsIn, pktsOut, errs int64) string {
	return fmt.Sprintf("In: %s/s | Out: %s/s | Pkts: %3d↓ %3d↑ | Bad: %d",
		formatBytes(inS),
		formatBytes(outS),
		pktsIn,
		pktsOut,
		errs,
	)
}
