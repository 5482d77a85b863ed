package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"dm-lab/contract"
	"dm-lab/observability"
)

// HeartbeatWorker periodically logs service health: message counters from
// the monitor plus memory/CPU of the running process.
type HeartbeatWorker struct {
	log      *slog.Logger
	interval time.Duration
	monitor  *observability.Monitor
	registry contract.IRegistry
}

func NewHeartbeatWorker(log *slog.Logger, interval time.Duration,
	monitor *observability.Monitor, registry contract.IRegistry) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, interval: interval, monitor: monitor, registry: registry}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, err := getSelfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			stats := w.monitor.GetLatest(len(w.registry.OnlineUsers()))
			w.log.Info("Heartbeat",
				"online_users", stats.OnlineUsers,
				"messages_sent", stats.MessagesSent,
				"messages_pushed", stats.MessagesPushed,
				"receipt_updates", stats.ReceiptUpdates,
				"ram_bytes", rss,
				"cpu_percent", cpu,
			)
		}
	}
}

// getSelfStats retrieves memory and CPU usage for the given process.
func getSelfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
