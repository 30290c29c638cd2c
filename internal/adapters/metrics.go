package adapters

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/h44z/wg-agent/internal"
	"github.com/h44z/wg-agent/internal/config"
	"github.com/h44z/wg-agent/internal/domain"
)

type MetricsServer struct {
	*http.Server

	ifaceInfo                *prometheus.GaugeVec
	ifacePeerCount           *prometheus.GaugeVec
	peerIsPingable           *prometheus.GaugeVec
	peerLastHandshakeSeconds *prometheus.GaugeVec
	peerReceivedBytesTotal   *prometheus.GaugeVec
	peerSendBytesTotal       *prometheus.GaugeVec

	commandsTotal   *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
}

// Wireguard metrics labels
var (
	ifaceLabels   = []string{"interface"}
	peerLabels    = []string{"interface", "peer"}
	commandLabels = []string{"command", "result"}
)

// NewMetricsServer returns a new prometheus server with its own registry.
func NewMetricsServer(cfg *config.Config) *MetricsServer {
	reg := prometheus.NewRegistry()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return &MetricsServer{
		Server: &http.Server{
			Addr:    cfg.Statistics.ListeningAddress,
			Handler: mux,
		},

		ifaceInfo: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wireguard_interface_info",
				Help: "Interface info.",
			}, ifaceLabels,
		),
		ifacePeerCount: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wireguard_interface_peers",
				Help: "Number of peers configured on the interface.",
			}, ifaceLabels,
		),
		peerIsPingable: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wireguard_peer_pingable",
				Help: "Peer ping check result (boolean: 1/0).",
			}, peerLabels,
		),
		peerLastHandshakeSeconds: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wireguard_peer_last_handshake_seconds",
				Help: "Unix timestamp of the last handshake with the peer.",
			}, peerLabels,
		),
		peerReceivedBytesTotal: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wireguard_peer_received_bytes_total",
				Help: "Bytes received from the peer.",
			}, peerLabels,
		),
		peerSendBytesTotal: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wireguard_peer_sent_bytes_total",
				Help: "Bytes sent to the peer.",
			}, peerLabels,
		),

		commandsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "wg_agent_commands_total",
				Help: "Executed external commands.",
			}, commandLabels,
		),
		commandDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wg_agent_command_duration_seconds",
				Help:    "Runtime of external commands.",
				Buckets: prometheus.DefBuckets,
			}, []string{"command"},
		),
	}
}

// Run starts the metrics server and blocks until the context is done.
func (m *MetricsServer) Run(ctx context.Context) {
	if m.Addr == "" {
		slog.Debug("metrics service disabled")
		return
	}

	go func() {
		if err := m.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics service exited", "address", m.Addr, "error", err)
		}
	}()

	slog.Info("started metrics service", "address", m.Addr)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics service shutdown failed", "address", m.Addr, "error", err)
	} else {
		slog.Info("metrics service shutdown gracefully", "address", m.Addr)
	}
}

// ObserveCommand records the result and runtime of an external command.
func (m *MetricsServer) ObserveCommand(command string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.commandsTotal.WithLabelValues(command, result).Inc()
	m.commandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// UpdateInterfaceMetrics updates the metrics for the given interface
func (m *MetricsServer) UpdateInterfaceMetrics(iface domain.Interface) {
	m.ifaceInfo.WithLabelValues(iface.Name).Set(1)
	m.ifacePeerCount.WithLabelValues(iface.Name).Set(float64(len(iface.Peers)))
}

// UpdatePeerTransferMetrics updates the traffic counters of a peer.
func (m *MetricsServer) UpdatePeerTransferMetrics(iface string, transfer domain.PeerTransfer) {
	labels := []string{iface, string(transfer.Peer)}
	m.peerReceivedBytesTotal.WithLabelValues(labels...).Set(float64(transfer.Received))
	m.peerSendBytesTotal.WithLabelValues(labels...).Set(float64(transfer.Transmitted))
}

// UpdatePeerHandshakeMetrics updates the last handshake of a peer. Peers without a handshake are skipped.
func (m *MetricsServer) UpdatePeerHandshakeMetrics(iface string, handshake domain.PeerHandshake) {
	if handshake.Handshake == 0 {
		return
	}
	m.peerLastHandshakeSeconds.WithLabelValues(iface, string(handshake.Peer)).Set(float64(handshake.Handshake))
}

// UpdatePeerPingMetrics updates the ping check result of a peer.
func (m *MetricsServer) UpdatePeerPingMetrics(iface string, peer domain.Key, pingable bool) {
	m.peerIsPingable.WithLabelValues(iface, string(peer)).Set(internal.BoolToFloat64(pingable))
}

// RemoveInterfaceMetrics drops all series of an interface that no longer exists.
func (m *MetricsServer) RemoveInterfaceMetrics(iface string) {
	labels := prometheus.Labels{"interface": iface}
	m.ifaceInfo.DeletePartialMatch(labels)
	m.ifacePeerCount.DeletePartialMatch(labels)
	m.peerIsPingable.DeletePartialMatch(labels)
	m.peerLastHandshakeSeconds.DeletePartialMatch(labels)
	m.peerReceivedBytesTotal.DeletePartialMatch(labels)
	m.peerSendBytesTotal.DeletePartialMatch(labels)
}
