package platform

import (
	"context"
	"strings"
	"time"

	psnet "github.com/shirou/gopsutil/v3/net"

	"github.com/smartnet-labs/netscope/internal/logger"
	"github.com/smartnet-labs/netscope/internal/models"
)

// SampleSink accepts interface counter deltas, normally the StatsDB.
type SampleSink interface {
	RecordSample(ts time.Time, transport models.Transport, uid int, rxBytes, txBytes uint64) error
}

// Sampler periodically reads per-NIC byte counters and records the deltas
// as device-wide traffic samples. NIC names classify the transport; device
// traffic is attributed to the root UID since per-process attribution is
// not available from interface counters.
type Sampler struct {
	sink             SampleSink
	interval         time.Duration
	wifiPrefixes     []string
	cellularPrefixes []string

	// last counters per NIC from the previous tick
	prev map[string]psnet.IOCountersStat

	counters func(pernic bool) ([]psnet.IOCountersStat, error)
	stopChan chan struct{}
}

// NewSampler builds a sampler writing into sink every interval.
func NewSampler(sink SampleSink, interval time.Duration, wifiPrefixes, cellularPrefixes []string) *Sampler {
	return &Sampler{
		sink:             sink,
		interval:         interval,
		wifiPrefixes:     wifiPrefixes,
		cellularPrefixes: cellularPrefixes,
		prev:             make(map[string]psnet.IOCountersStat),
		counters:         psnet.IOCounters,
		stopChan:         make(chan struct{}),
	}
}

// Run samples until ctx is done or Close is called. The first tick only
// seeds the baseline counters.
func (s *Sampler) Run(ctx context.Context) {
	s.tick() // seed baseline

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		}
	}
}

// tick reads the counters and records a delta sample per classified NIC.
func (s *Sampler) tick() {
	stats, err := s.counters(true)
	if err != nil {
		logger.Warn("failed to read interface counters", "error", err)
		return
	}

	now := time.Now()
	for _, stat := range stats {
		transport, ok := s.classify(stat.Name)
		if !ok {
			continue
		}

		prev, seen := s.prev[stat.Name]
		s.prev[stat.Name] = stat
		if !seen {
			continue
		}

		rx := counterDelta(prev.BytesRecv, stat.BytesRecv)
		tx := counterDelta(prev.BytesSent, stat.BytesSent)
		if rx == 0 && tx == 0 {
			continue
		}

		if err := s.sink.RecordSample(now, transport, 0, rx, tx); err != nil {
			logger.Error("failed to record interface sample", "iface", stat.Name, "error", err)
		}
	}
}

// classify maps a NIC name to a transport by configured prefix lists.
func (s *Sampler) classify(name string) (models.Transport, bool) {
	lower := strings.ToLower(name)
	for _, p := range s.wifiPrefixes {
		if strings.HasPrefix(lower, p) {
			return models.TransportWifi, true
		}
	}
	for _, p := range s.cellularPrefixes {
		if strings.HasPrefix(lower, p) {
			return models.TransportCellular, true
		}
	}
	return 0, false
}

// counterDelta handles counter resets: a rollback reports the current value
// as the delta.
func counterDelta(prev, cur uint64) uint64 {
	if cur < prev {
		return cur
	}
	return cur - prev
}

// Close stops the sampler loop.
func (s *Sampler) Close() error {
	close(s.stopChan)
	return nil
}
