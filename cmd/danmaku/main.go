// Danmaku CLI entry point.
//
// This tool connects to a live room's event stream over websocket, sends the
// auth packet, keeps the connection alive and prints every decoded packet.
//
// It can be launched interactively (no --url) or non-interactively via
// flags or a TOML config file (--config).
package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/1ureka/danmaku/internal/auth"
	"github.com/1ureka/danmaku/internal/config"
	"github.com/1ureka/danmaku/internal/metrics"
	"github.com/1ureka/danmaku/internal/protocol"
	"github.com/1ureka/danmaku/internal/transport"
	"github.com/1ureka/danmaku/internal/util"
)

var version = "dev"

func main() {
	rootCmd := newRootCmd(&cliFlags{})
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		util.LogError("%v", err)
		os.Exit(1)
	}
}

// cliFlags receives the parsed command-line flags.
type cliFlags struct {
	configPath string
	config.Config
}

func newRootCmd(c *cliFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "danmaku",
		Short:         "Print a live room's event stream",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, c.configPath, c.Config)
			if err != nil {
				return err
			}

			// Root context, cancelled on Ctrl+C.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return run(ctx, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&c.configPath, "config", "", "TOML config file")
	f.StringVar(&c.URL, "url", "", "Websocket URL of the event stream (ws:// or wss://)")
	f.StringVar(&c.AuthBody, "auth-body", "", "Body of the auth packet")
	f.StringVar(&c.AccessKey, "access-key", "", "Access key id used to sign the handshake")
	f.StringVar(&c.AccessSecret, "access-secret", "", "Access secret used to sign the handshake")
	f.IntVar(&c.HeartbeatSeconds, "heartbeat", config.DefaultHeartbeatSeconds, "Keepalive interval in seconds")
	f.StringVar(&c.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	f.BoolVar(&c.Debug, "debug", false, "Enable debug logging")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("danmaku %s\n", version)
		},
	}
}

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// resolveConfig merges the config file with explicitly set flags, prompting
// for the URL when neither provides one.
func resolveConfig(cmd *cobra.Command, path string, flags config.Config) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("url") {
		cfg.URL = flags.URL
	}
	if changed("auth-body") {
		cfg.AuthBody = flags.AuthBody
	}
	if changed("access-key") {
		cfg.AccessKey = flags.AccessKey
	}
	if changed("access-secret") {
		cfg.AccessSecret = flags.AccessSecret
	}
	if changed("heartbeat") {
		cfg.HeartbeatSeconds = flags.HeartbeatSeconds
	}
	if changed("metrics-addr") {
		cfg.MetricsAddr = flags.MetricsAddr
	}
	if changed("debug") {
		cfg.Debug = flags.Debug
	}

	if cfg.URL == "" {
		cfg.URL = askURL()
	}

	return cfg, cfg.Validate()
}

// askURL prompts the user for a valid websocket URL until one is entered.
func askURL() string {
	for {
		raw, _ := pterm.DefaultInteractiveTextInput.
			WithDefaultText("Websocket URL (e.g. wss://example.com/sub)").
			Show()

		u, err := url.Parse(strings.TrimSpace(raw))
		if err == nil && u.Host != "" && (u.Scheme == "ws" || u.Scheme == "wss") {
			pterm.Println()
			return u.String()
		}

		pterm.Println()
		util.LogWarning("invalid input: please enter a ws:// or wss:// URL")
	}
}

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

func run(ctx context.Context, cfg config.Config) error {
	if cfg.Debug {
		util.EnableDebug()
	}

	pterm.Info.Println(fmt.Sprintf("Danmaku v%s", version))
	pterm.Println()

	var header map[string]string
	if cfg.Signed() {
		signer, err := auth.NewSigner(cfg.AccessKey, cfg.AccessSecret)
		if err != nil {
			return err
		}
		header = signer.BuildHeader([]byte(cfg.AuthBody))
	}

	opts := []transport.Option{
		transport.WithHeartbeat(cfg.HeartbeatInterval()),
		transport.WithAuthBody(cfg.AuthBody),
	}
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, transport.WithMetrics(metrics.New(reg)))
		go serveMetrics(cfg.MetricsAddr, reg)
	}

	tr, err := transport.Dial(ctx, cfg.URL, header, opts...)
	if err != nil {
		return errors.Wrap(err, "failed to connect")
	}
	defer tr.Close()

	tr.OnPacket(printPacket)

	util.StartStatsReporter(ctx)
	util.LogSuccess("connected to %s", cfg.URL)

	if err := tr.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "stream closed")
	}

	util.LogInfo("successfully closed stream connection")
	return nil
}

// printPacket writes one decoded packet to stdout.
func printPacket(pkt protocol.Packet, err error) {
	if err != nil {
		util.LogWarning("dropped message: %v", err)
		return
	}

	switch pkt.Operation() {
	case protocol.OpHeartbeat, protocol.OpHeartbeatReply:
		util.LogDebug("%s seq=%d", pkt.Operation(), pkt.SequenceID())
	default:
		pterm.Printf("%-14s %s\n", pkt.Operation(), pkt.Body())
	}
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	util.LogInfo("serving metrics on %s/metrics", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		util.LogError("metrics server stopped: %v", err)
	}
}
