package observability

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Stats aggregates the runtime metrics exposed on /stats.
type Stats struct {
	Connects       uint64 `json:"connects"`
	Disconnects    uint64 `json:"disconnects"`
	OnlineUsers    int    `json:"online_users"`
	MessagesSent   uint64 `json:"messages_sent"`
	MessagesPushed uint64 `json:"messages_pushed"`
	ReceiptUpdates uint64 `json:"receipt_updates"`
	AllocMemMb     uint64 `json:"alloc_mem_mb"`
	NumGC          uint32 `json:"num_gc"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
}

// Monitor collects telemetry with atomic counters.
// Counting must never contend with the hot path, so there is no lock on
// the increment side.
type Monitor struct {
	mu        sync.RWMutex
	startedAt time.Time

	connects       uint64
	disconnects    uint64
	messagesSent   uint64
	messagesPushed uint64
	receiptUpdates uint64
}

func NewMonitor() *Monitor {
	return &Monitor{startedAt: time.Now()}
}

func (m *Monitor) IncrConnects()       { atomic.AddUint64(&m.connects, 1) }
func (m *Monitor) IncrDisconnects()    { atomic.AddUint64(&m.disconnects, 1) }
func (m *Monitor) IncrMessagesSent()   { atomic.AddUint64(&m.messagesSent, 1) }
func (m *Monitor) IncrMessagesPushed() { atomic.AddUint64(&m.messagesPushed, 1) }
func (m *Monitor) IncrReceiptUpdates() { atomic.AddUint64(&m.receiptUpdates, 1) }

// GetLatest snapshots all counters plus Go memory stats.
func (m *Monitor) GetLatest(onlineUsers int) Stats {
	m.mu.RLock()
	startedAt := m.startedAt
	m.mu.RUnlock()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return Stats{
		Connects:       atomic.LoadUint64(&m.connects),
		Disconnects:    atomic.LoadUint64(&m.disconnects),
		OnlineUsers:    onlineUsers,
		MessagesSent:   atomic.LoadUint64(&m.messagesSent),
		MessagesPushed: atomic.LoadUint64(&m.messagesPushed),
		ReceiptUpdates: atomic.LoadUint64(&m.receiptUpdates),
		AllocMemMb:     ms.Alloc / 1024 / 1024,
		NumGC:          ms.NumGC,
		UptimeSeconds:  int64(time.Since(startedAt).Seconds()),
	}
}
