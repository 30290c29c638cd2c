package wireguard

import (
	"context"
	"log/slog"
	"net/netip"
	"sync"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"github.com/h44z/wg-agent/internal/config"
	"github.com/h44z/wg-agent/internal/domain"
)

type pingJob struct {
	Interface string
	Peer      domain.Key
	Address   string
}

// StatisticsCollector periodically reads the transfer counters and handshakes of all interfaces and
// optionally pings the peers. All values are pushed to the metrics recorder.
type StatisticsCollector struct {
	cfg *config.Config

	pingWaitGroup sync.WaitGroup
	pingJobs      chan pingJob

	wg *Manager
	ms MetricsRecorder

	knownInterfaces map[string]struct{}
	pinger          func(ctx context.Context, addr string) bool
}

func NewStatisticsCollector(cfg *config.Config, wg *Manager, ms MetricsRecorder) *StatisticsCollector {
	c := &StatisticsCollector{
		cfg: cfg,
		wg:  wg,
		ms:  ms,

		knownInterfaces: make(map[string]struct{}),
	}
	c.pinger = c.isAddressPingable

	return c
}

// StartBackgroundJobs starts the collection and ping goroutines. They stop when the context is cancelled.
func (c *StatisticsCollector) StartBackgroundJobs(ctx context.Context) {
	if !c.cfg.Statistics.Collect {
		return
	}

	c.startPingWorkers(ctx)
	go c.collectData(ctx)

	slog.Debug("started statistics collector", "interval", c.cfg.Statistics.CollectionInterval)
}

func (c *StatisticsCollector) collectData(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.Statistics.CollectionInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return // program stopped
		case <-ticker.C:
			if err := c.Collect(ctx); err != nil {
				slog.Warn("failed to collect statistics", "error", err)
			}
		}
	}
}

// Collect reads the current values of all interfaces once.
func (c *StatisticsCollector) Collect(ctx context.Context) error {
	names, err := c.wg.ListNames(ctx)
	if err != nil {
		return err
	}

	current := make(map[string]struct{}, len(names))
	for _, name := range names {
		current[name] = struct{}{}
		c.collectInterface(ctx, name)
	}

	for name := range c.knownInterfaces {
		if _, ok := current[name]; !ok {
			c.ms.RemoveInterfaceMetrics(name)
			slog.Debug("removed metrics of vanished interface", "interface", name)
		}
	}
	c.knownInterfaces = current

	return nil
}

func (c *StatisticsCollector) collectInterface(ctx context.Context, name string) {
	iface, err := c.wg.Get(ctx, name)
	if err != nil {
		slog.Warn("failed to load interface for statistics", "interface", name, "error", err)
		return
	}
	c.ms.UpdateInterfaceMetrics(*iface)

	transfer, err := c.wg.ShowElement(ctx, name, string(domain.ElementTransfer))
	if err != nil {
		slog.Warn("failed to load transfer statistics", "interface", name, "error", err)
	} else {
		for _, t := range transfer.(domain.ShowTransfer).Transfers {
			c.ms.UpdatePeerTransferMetrics(name, t)
		}
	}

	handshakes, err := c.wg.ShowElement(ctx, name, string(domain.ElementLatestHandshakes))
	if err != nil {
		slog.Warn("failed to load handshake statistics", "interface", name, "error", err)
	} else {
		for _, h := range handshakes.(domain.ShowLatestHandshakes).LatestHandshakes {
			c.ms.UpdatePeerHandshakeMetrics(name, h)
		}
	}
}

func (c *StatisticsCollector) startPingWorkers(ctx context.Context) {
	if !c.cfg.Statistics.UsePingChecks {
		return
	}

	if c.pingJobs != nil {
		return // already started
	}

	c.pingWaitGroup = sync.WaitGroup{}
	c.pingWaitGroup.Add(c.cfg.Statistics.PingCheckWorkers)
	c.pingJobs = make(chan pingJob, c.cfg.Statistics.PingCheckWorkers)

	for i := 0; i < c.cfg.Statistics.PingCheckWorkers; i++ {
		go c.pingWorker(ctx)
	}

	go func() {
		c.pingWaitGroup.Wait()
		slog.Debug("stopped ping checks")
	}()

	go c.enqueuePingChecks(ctx)

	slog.Debug("started ping checks", "workers", c.cfg.Statistics.PingCheckWorkers)
}

func (c *StatisticsCollector) enqueuePingChecks(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.Statistics.CollectionInterval)
	defer ticker.Stop()
	defer close(c.pingJobs)

	for {
		select {
		case <-ctx.Done():
			return // program stopped
		case <-ticker.C:
			interfaces, err := c.wg.List(ctx)
			if err != nil {
				slog.Warn("failed to fetch interfaces for ping checks", "error", err)
				continue
			}
			for _, job := range pingJobsOf(interfaces) {
				select {
				case <-ctx.Done():
					return
				case c.pingJobs <- job:
				}
			}
		}
	}
}

func (c *StatisticsCollector) pingWorker(ctx context.Context) {
	defer c.pingWaitGroup.Done()
	for job := range c.pingJobs {
		pingable := c.pinger(ctx, job.Address)
		c.ms.UpdatePeerPingMetrics(job.Interface, job.Peer, pingable)
		slog.Debug("peer ping check", "interface", job.Interface, "peer", job.Peer, "pingable", pingable)
	}
}

// pingJobsOf returns one job per peer, addressed to the first address of its allowed IPs.
func pingJobsOf(interfaces []domain.Interface) []pingJob {
	jobs := make([]pingJob, 0)
	for _, iface := range interfaces {
		for _, peer := range iface.Peers {
			addr := checkAliveAddress(peer)
			if addr == "" {
				continue
			}
			jobs = append(jobs, pingJob{Interface: iface.Name, Peer: peer.PublicKey, Address: addr})
		}
	}
	return jobs
}

func checkAliveAddress(peer domain.Peer) string {
	for _, cidr := range peer.AllowedIPList() {
		prefix, err := netip.ParsePrefix(cidr)
		if err != nil {
			continue
		}
		if prefix.Addr().IsUnspecified() {
			continue // default routes have no peer address
		}
		return prefix.Addr().String()
	}
	return ""
}

func (c *StatisticsCollector) isAddressPingable(ctx context.Context, addr string) bool {
	pinger, err := probing.NewPinger(addr)
	if err != nil {
		slog.Debug("failed to instantiate pinger", "address", addr, "error", err)
		return false
	}

	checkCount := 1
	pinger.SetPrivileged(!c.cfg.Statistics.PingUnprivileged)
	pinger.Count = checkCount
	pinger.Timeout = 2 * time.Second
	err = pinger.RunWithContext(ctx) // Blocks until finished.
	if err != nil {
		slog.Debug("pinger exited unexpectedly", "address", addr, "error", err)
		return false
	}
	stats := pinger.Statistics()
	return stats.PacketsRecv == checkCount
}
