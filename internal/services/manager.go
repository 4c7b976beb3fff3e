// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/smartnet-labs/netscope/internal/config"
	"github.com/smartnet-labs/netscope/internal/logger"
	"github.com/smartnet-labs/netscope/internal/models"
	"github.com/smartnet-labs/netscope/internal/platform"
	"github.com/smartnet-labs/netscope/internal/services/speedtest"
	"github.com/smartnet-labs/netscope/internal/services/usagestats"
)

type (
	// CatalogChangedEvent is emitted when the app catalog is reloaded.
	CatalogChangedEvent struct {
		AppCount int
	}

	// SpeedSampleEvent carries a throughput sample or state change.
	SpeedSampleEvent struct {
		Snapshot models.SpeedSnapshot
	}

	// SpeedFinishedEvent carries the final result of a measurement.
	SpeedFinishedEvent struct {
		Result models.SpeedResult
	}

	// SpeedUnavailableEvent is emitted when no internet is available.
	SpeedUnavailableEvent struct{}

	// SpeedFailedEvent is emitted when a measurement fails mid-flight.
	SpeedFailedEvent struct {
		Error error
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (CatalogChangedEvent) isServiceEvent()   {}
func (SpeedSampleEvent) isServiceEvent()      {}
func (SpeedFinishedEvent) isServiceEvent()    {}
func (SpeedUnavailableEvent) isServiceEvent() {}
func (SpeedFailedEvent) isServiceEvent()      {}
func (ErrorEvent) isServiceEvent()            {}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	statsdb     *platform.StatsDB
	catalog     *platform.Catalog
	gate        *platform.PermissionGate
	reach       *platform.Reachability
	sampler     *platform.Sampler
	aggregator  *usagestats.Aggregator
	series      *usagestats.SeriesBuilder
	speed       *speedtest.Service
	cfg         *config.Config
	loc         *time.Location
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent

	// usage alert bookkeeping, guarded by mu
	todayTotals map[models.Transport]uint64
	alertedDay  string
}

// retentionMonths keeps a full year of samples, matching how far back the
// charts can navigate.
const retentionMonths = 12

// NewManager creates a new service manager and starts the background
// sampler.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		cfg:         cfg,
		loc:         time.Local,
		eventChan:   make(chan ServiceEvent, 100),
		stopChan:    make(chan struct{}),
		todayTotals: make(map[models.Transport]uint64),
	}

	var err error
	m.statsdb, err = platform.OpenStatsDB(cfg.StatsDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open traffic store: %w", err)
	}

	cutoff := time.Now().In(m.loc).AddDate(0, -retentionMonths, 0)
	if n, err := m.statsdb.PruneBefore(context.Background(), cutoff.UnixMilli()); err != nil {
		logger.Warn("failed to prune old traffic samples", "error", err)
	} else if n > 0 {
		logger.Info("pruned old traffic samples", "rows", n)
	}

	m.catalog, err = platform.NewCatalog(cfg.CatalogPath)
	if err != nil {
		_ = m.statsdb.Close()
		return nil, fmt.Errorf("failed to open app catalog: %w", err)
	}

	m.gate = platform.NewPermissionGate(cfg.StatsDBPath)
	m.reach = platform.NewReachability(
		cfg.SpeedTestBaseURL+"/__down?bytes=0", cfg.UserAgent, cfg.ConnectTimeout)

	m.aggregator = usagestats.NewAggregator(m.statsdb, m.catalog)
	m.series = usagestats.NewSeriesBuilder(m.statsdb)

	m.speed = speedtest.New(
		speedtest.NewClient(cfg.SpeedTestBaseURL, cfg.UserAgent, cfg.ConnectTimeout),
		m.reach,
		speedtest.Config{
			DownloadBytes:  cfg.DownloadBytes,
			SampleInterval: cfg.SampleInterval,
			GaugeMaxMBps:   cfg.GaugeMaxMBps,
			ConnectTimeout: cfg.ConnectTimeout,
		})

	m.sampler = platform.NewSampler(m.statsdb, cfg.SamplerInterval,
		cfg.WifiPrefixes, cfg.CellularPrefixes)
	go m.sampler.Run(context.Background())

	go m.routeEvents()

	return m, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.catalog.Events():
			m.handleCatalogEvent(event)

		case event := <-m.speed.Events():
			m.handleSpeedEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

// handleCatalogEvent converts and broadcasts catalog events.
func (m *Manager) handleCatalogEvent(event platform.CatalogEvent) {
	switch event.Type {
	case platform.CatalogLoaded, platform.CatalogChanged:
		m.broadcast(CatalogChangedEvent{AppCount: m.catalog.Count()})

	case platform.CatalogError:
		m.broadcast(ErrorEvent{Service: "catalog", Error: event.Error})
	}
}

func (m *Manager) handleSpeedEvent(event speedtest.Event) {
	switch event.Type {
	case speedtest.EventStateChanged, speedtest.EventSample:
		if event.Snapshot != nil {
			m.broadcast(SpeedSampleEvent{Snapshot: *event.Snapshot})
		}

	case speedtest.EventFinished:
		if event.Result != nil {
			m.broadcast(SpeedFinishedEvent{Result: *event.Result})
			title := "Speed test finished"
			body := fmt.Sprintf("Average %.2f MB/s, peak %.2f MB/s",
				event.Result.AverageMBps, event.Result.PeakMBps)
			_ = beeep.Notify(title, body, "")
		}

	case speedtest.EventNoInternet:
		m.broadcast(SpeedUnavailableEvent{})

	case speedtest.EventFailed:
		m.broadcast(SpeedFailedEvent{Error: event.Error})
	}
}

// Usage computes the per-app breakdown for a period and transport. Today's
// totals also feed the usage alert.
func (m *Manager) Usage(ctx context.Context, period models.Period, transport models.Transport) []models.AppDataUsage {
	r := usagestats.RangeForPeriod(time.Now(), m.loc, period)
	rows := m.aggregator.AppWiseUsage(ctx, r, transport)

	if period == models.PeriodToday {
		m.checkUsageAlert(transport, usagestats.Total(rows))
	}
	return rows
}

// checkUsageAlert notifies once per day when today's combined total crosses
// the configured threshold.
func (m *Manager) checkUsageAlert(transport models.Transport, total uint64) {
	threshold := m.cfg.UsageAlertBytes
	if threshold <= 0 {
		return
	}

	today := time.Now().In(m.loc).Format("2006-01-02")

	m.mu.Lock()
	if m.alertedDay != "" && m.alertedDay != today {
		// New day, reset
		m.alertedDay = ""
		m.todayTotals = make(map[models.Transport]uint64)
	}
	m.todayTotals[transport] = total
	var combined uint64
	for _, t := range m.todayTotals {
		combined += t
	}
	shouldNotify := m.alertedDay == "" && combined >= uint64(threshold)
	if shouldNotify {
		m.alertedDay = today
	}
	m.mu.Unlock()

	if shouldNotify {
		title := "Data usage alert"
		body := fmt.Sprintf("Today's usage reached %s (limit %s)",
			models.FormatBytes(int64(combined)), models.FormatBytes(threshold))
		if err := beeep.Notify(title, body, ""); err != nil {
			logger.Warn("failed to send usage notification", "error", err)
		}
	}
}

// DailyTotals returns the combined per-day MB series for a month offset.
func (m *Manager) DailyTotals(ctx context.Context, monthOffset int) ([]float64, models.MonthlyUsage) {
	return m.series.DailyTotals(ctx, time.Now(), m.loc, monthOffset)
}

// NetworkTypeSeries returns the per-day MB series for one transport.
func (m *Manager) NetworkTypeSeries(ctx context.Context, monthOffset int, transport models.Transport) ([]float64, models.MonthlyUsage) {
	return m.series.NetworkTypeSeries(ctx, time.Now(), m.loc, monthOffset, transport)
}

// AppSeries returns the per-day MB series for one catalogued app.
func (m *Manager) AppSeries(ctx context.Context, monthOffset int, uid int) ([]float64, models.MonthlyUsage) {
	return m.series.AppSeries(ctx, time.Now(), m.loc, monthOffset, uid)
}

// UserApps lists the installed user applications for the app picker.
func (m *Manager) UserApps() []models.PackageInfo {
	return m.catalog.UserApps()
}

// UIDForPackage resolves a package ID back to its UID.
func (m *Manager) UIDForPackage(packageID string) (int, bool) {
	return m.catalog.UIDForPackage(packageID)
}

// HasUsageAccess reports whether the traffic store is readable.
func (m *Manager) HasUsageAccess() bool {
	return m.gate.HasUsageAccess()
}

// UsageAccessInstructions returns the message shown when access is missing.
func (m *Manager) UsageAccessInstructions() string {
	return m.gate.RequestUsageAccess()
}

// StartSpeedTest begins a throughput measurement.
func (m *Manager) StartSpeedTest(ctx context.Context) {
	m.speed.Start(ctx)
}

// StopSpeedTest cancels the in-flight measurement.
func (m *Manager) StopSpeedTest() {
	m.speed.Stop()
}

// SpeedSnapshot returns the current speed test display state.
func (m *Manager) SpeedSnapshot() models.SpeedSnapshot {
	return m.speed.Snapshot()
}

// ImportSeed loads NDJSON traffic samples into the store.
func (m *Manager) ImportSeed(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return m.statsdb.ImportRecords(ctx, f)
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	// Send to subscribers
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Catalog returns the app catalog.
func (m *Manager) Catalog() *platform.Catalog {
	return m.catalog
}

// StatsDB returns the traffic store for direct access.
func (m *Manager) StatsDB() *platform.StatsDB {
	return m.statsdb
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if err := m.sampler.Close(); err != nil {
		errs = append(errs, err)
	}

	if err := m.speed.Close(); err != nil {
		errs = append(errs, err)
	}

	if err := m.catalog.Close(); err != nil {
		errs = append(errs, err)
	}

	if m.statsdb != nil {
		if err := m.statsdb.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
