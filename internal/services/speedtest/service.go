package speedtest

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/smartnet-labs/netscope/internal/logger"
	"github.com/smartnet-labs/netscope/internal/models"
)

// Reachability answers whether a measurement may start.
type Reachability interface {
	IsInternetAvailable(ctx context.Context) bool
}

// Event represents a speed test service event.
type Event struct {
	Error    error
	Snapshot *models.SpeedSnapshot
	Result   *models.SpeedResult
	Type     EventType
}

// EventType defines the type of speed test event.
type EventType int

const (
	// EventStateChanged indicates the measurement state changed.
	EventStateChanged EventType = iota
	// EventSample carries a periodic throughput sample.
	EventSample
	// EventFinished carries the final result of a completed download.
	EventFinished
	// EventNoInternet indicates the reachability precondition failed.
	EventNoInternet
	// EventFailed indicates the measurement failed mid-flight.
	EventFailed
)

// Config holds configuration for the speed test service.
type Config struct {
	DownloadBytes  int64
	SampleInterval time.Duration
	GaugeMaxMBps   float64
	ConnectTimeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DownloadBytes:  100_000_000,
		SampleInterval: 500 * time.Millisecond,
		GaugeMaxMBps:   25.0,
		ConnectTimeout: 30 * time.Second,
	}
}

// Service runs at most one throughput measurement at a time, publishing
// samples and state transitions over its event channel.
type Service struct {
	client       *Client
	reachability Reachability
	config       Config

	eventChan chan Event

	// pending counts bytes read since the last sample; the reader adds,
	// the sampler swap-resets.
	pending atomic.Int64

	mu       sync.Mutex
	snapshot models.SpeedSnapshot
	cancel   context.CancelFunc
	runDone  chan struct{}
}

// New creates a new speed test service.
func New(client *Client, reachability Reachability, config Config) *Service {
	if config.SampleInterval <= 0 {
		config = DefaultConfig()
	}

	return &Service{
		client:       client,
		reachability: reachability,
		config:       config,
		eventChan:    make(chan Event, 100),
	}
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Snapshot returns the current display state.
func (s *Service) Snapshot() models.SpeedSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Start begins a measurement. A measurement already in flight is cancelled
// and awaited first.
func (s *Service) Start(ctx context.Context) {
	s.stopCurrent()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.runDone = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		s.run(runCtx)
	}()
}

// Stop cancels the in-flight measurement, if any, and waits for it to wind
// down.
func (s *Service) Stop() {
	s.stopCurrent()
}

func (s *Service) stopCurrent() {
	s.mu.Lock()
	cancel, done := s.cancel, s.runDone
	s.cancel, s.runDone = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// run executes one measurement lifecycle.
func (s *Service) run(ctx context.Context) {
	if !s.reachability.IsInternetAvailable(ctx) {
		s.sendEvent(Event{Type: EventNoInternet})
		return
	}

	s.setState(models.SpeedTestConnecting)

	// Ping failure is non-fatal; the download proceeds with ping 0.
	pingMs := 0
	pingCtx, cancelPing := context.WithTimeout(ctx, s.config.ConnectTimeout)
	if ms, err := s.client.Ping(pingCtx); err != nil {
		logger.Warn("speed test ping failed", "error", err)
	} else {
		pingMs = ms
	}
	cancelPing()

	s.mu.Lock()
	s.snapshot.PingMs = pingMs
	snap := s.snapshot
	s.mu.Unlock()
	s.sendEvent(Event{Type: EventSample, Snapshot: &snap})

	stream, err := s.client.Download(ctx, s.config.DownloadBytes)
	if err != nil {
		if ctx.Err() == nil {
			logger.Error("speed test download failed to start", "error", err)
			s.sendEvent(Event{Type: EventFailed, Error: err})
		}
		s.reset()
		return
	}

	s.setState(models.SpeedTestRunning)

	samplerCtx, stopSampler := context.WithCancel(context.Background())
	var samplerWG sync.WaitGroup
	samplerWG.Add(1)
	go func() {
		defer samplerWG.Done()
		s.sampleLoop(samplerCtx)
	}()

	// Wind down unconditionally: stop the sampler, close the stream, then
	// reset speed, gauge and state.
	defer func() {
		stopSampler()
		if closeErr := stream.Close(); closeErr != nil {
			logger.Warn("failed to close download stream", "error", closeErr)
		}
		samplerWG.Wait()
		s.reset()
	}()

	start := time.Now()
	var total int64
	buf := make([]byte, 64*1024)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			total += int64(n)
			s.pending.Add(int64(n))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			if ctx.Err() == nil {
				logger.Error("speed test read failed", "error", err)
				s.sendEvent(Event{Type: EventFailed, Error: err})
			}
			return
		}
	}

	elapsed := time.Since(start).Seconds()
	avg := 0.0
	if elapsed > 0 {
		avg = float64(total) / (1024 * 1024) / elapsed
	}

	s.mu.Lock()
	peak := s.snapshot.PeakMBps
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventFinished, Result: &models.SpeedResult{
		TotalBytes:  total,
		Seconds:     elapsed,
		AverageMBps: avg,
		PeakMBps:    peak,
		PingMs:      pingMs,
	}})
}

// sampleLoop converts byte deltas into periodic throughput samples.
func (s *Service) sampleLoop(ctx context.Context) {
	intervalMs := float64(s.config.SampleInterval.Milliseconds())

	ticker := time.NewTicker(s.config.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			delta := s.pending.Swap(0)
			speed := float64(delta) / (1024 * 1024) * (1000 / intervalMs)

			s.mu.Lock()
			s.snapshot.CurrentMBps = speed
			if speed > s.snapshot.PeakMBps {
				s.snapshot.PeakMBps = speed
			}
			s.snapshot.GaugeProgress = clamp(speed/s.config.GaugeMaxMBps, 0, 1)
			snap := s.snapshot
			s.mu.Unlock()

			s.sendEvent(Event{Type: EventSample, Snapshot: &snap})

		case <-ctx.Done():
			return
		}
	}
}

// setState transitions the state machine and publishes the change.
func (s *Service) setState(state models.SpeedTestState) {
	s.mu.Lock()
	s.snapshot.State = state
	snap := s.snapshot
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventStateChanged, Snapshot: &snap})
}

// reset returns the display state to idle with zeroed speed and gauge.
func (s *Service) reset() {
	s.pending.Store(0)

	s.mu.Lock()
	s.snapshot.State = models.SpeedTestIdle
	s.snapshot.CurrentMBps = 0
	s.snapshot.GaugeProgress = 0
	snap := s.snapshot
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventStateChanged, Snapshot: &snap})
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close cancels any in-flight measurement.
func (s *Service) Close() error {
	s.stopCurrent()
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
