// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/smartnet-labs/netscope/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial bool
	Usage   bool
	Series  bool
	Apps    bool
}

// AppState holds the display state shared across tabs. All access goes
// through the accessor methods; Bubble Tea updates and background commands
// touch it from different goroutines.
type AppState struct {
	mu sync.RWMutex

	Period    models.Period
	Transport models.Transport
	UsageRows []models.AppDataUsage

	Series      models.DailySeries
	SeriesKind  SeriesKind
	MonthOffset int

	UserApps         []models.PackageInfo
	SelectedAppIndex int

	Speed      models.SpeedSnapshot
	LastResult *models.SpeedResult

	Loading LoadingState

	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewAppState creates a fresh display state for startup.
func NewAppState() *AppState {
	return &AppState{
		Period:        models.PeriodToday,
		Transport:     models.TransportCellular,
		UsageRows:     make([]models.AppDataUsage, 0),
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *AppState) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "usage":
		s.Loading.Usage = loading
	case "series":
		s.Loading.Series = loading
	case "apps":
		s.Loading.Apps = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *AppState) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial ||
		s.Loading.Usage ||
		s.Loading.Series ||
		s.Loading.Apps
}

// IsInitialLoading returns true if initial data is still loading.
func (s *AppState) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// GetLoadingResources returns a list of currently loading resources.
func (s *AppState) GetLoadingResources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var resources []string
	if s.Loading.Initial {
		resources = append(resources, "initial")
	}
	if s.Loading.Usage {
		resources = append(resources, "usage")
	}
	if s.Loading.Series {
		resources = append(resources, "series")
	}
	if s.Loading.Apps {
		resources = append(resources, "apps")
	}
	return resources
}

// SetUsage replaces the usage breakdown together with the period and
// transport it was computed for.
func (s *AppState) SetUsage(period models.Period, transport models.Transport, rows []models.AppDataUsage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Period = period
	s.Transport = transport
	s.UsageRows = rows
	s.LastUpdated = time.Now()
}

// GetUsage returns a copy of the current usage rows.
func (s *AppState) GetUsage() []models.AppDataUsage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]models.AppDataUsage, len(s.UsageRows))
	copy(rows, s.UsageRows)
	return rows
}

// UsageTotal returns the byte total across all current usage rows.
func (s *AppState) UsageTotal() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total uint64
	for _, row := range s.UsageRows {
		total += row.TotalBytes()
	}
	return total
}

// GetPeriod returns the selected usage period.
func (s *AppState) GetPeriod() models.Period {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Period
}

// SetPeriod updates the selected usage period.
func (s *AppState) SetPeriod(p models.Period) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Period = p
}

// GetTransport returns the selected transport.
func (s *AppState) GetTransport() models.Transport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Transport
}

// SetTransport updates the selected transport.
func (s *AppState) SetTransport(t models.Transport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Transport = t
}

// SetSeries replaces the chart series for the given kind and month offset.
func (s *AppState) SetSeries(kind SeriesKind, monthOffset int, series models.DailySeries) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.SeriesKind = kind
	s.MonthOffset = monthOffset
	s.Series = series
	s.LastUpdated = time.Now()
}

// GetSeries returns the current chart series with its kind and offset.
func (s *AppState) GetSeries() (SeriesKind, int, models.DailySeries) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := models.DailySeries{
		PointsMB: make([]float64, len(s.Series.PointsMB)),
		Summary:  s.Series.Summary,
	}
	copy(series.PointsMB, s.Series.PointsMB)
	return s.SeriesKind, s.MonthOffset, series
}

// SetSeriesKind records which series variant the chart should display. The
// points themselves are replaced when the matching SeriesLoadedMsg arrives.
func (s *AppState) SetSeriesKind(kind SeriesKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SeriesKind = kind
}

// GetMonthOffset returns the chart month offset (0 is the current month).
func (s *AppState) GetMonthOffset() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.MonthOffset
}

// SetMonthOffset updates the chart month offset.
func (s *AppState) SetMonthOffset(offset int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MonthOffset = offset
}

// SetUserApps replaces the app picker entries and clamps the selection.
func (s *AppState) SetUserApps(apps []models.PackageInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.UserApps = apps
	if s.SelectedAppIndex >= len(apps) {
		s.SelectedAppIndex = 0
	}
}

// GetUserApps returns a copy of the app picker entries.
func (s *AppState) GetUserApps() []models.PackageInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	apps := make([]models.PackageInfo, len(s.UserApps))
	copy(apps, s.UserApps)
	return apps
}

// GetSelectedApp returns the currently picked app, or false when the
// picker is empty.
func (s *AppState) GetSelectedApp() (models.PackageInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.UserApps) == 0 {
		return models.PackageInfo{}, false
	}
	idx := s.SelectedAppIndex
	if idx < 0 || idx >= len(s.UserApps) {
		idx = 0
	}
	return s.UserApps[idx], true
}

// GetSelectedAppIndex returns the currently selected app index.
func (s *AppState) GetSelectedAppIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SelectedAppIndex
}

// SetSelectedAppIndex updates the selected app index.
func (s *AppState) SetSelectedAppIndex(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SelectedAppIndex = idx
}

// SetSpeedSnapshot replaces the throughput meter state.
func (s *AppState) SetSpeedSnapshot(snap models.SpeedSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Speed = snap
}

// GetSpeedSnapshot returns the throughput meter state.
func (s *AppState) GetSpeedSnapshot() models.SpeedSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Speed
}

// SetSpeedResult records the summary of the last completed measurement.
func (s *AppState) SetSpeedResult(result models.SpeedResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastResult = &result
}

// GetSpeedResult returns the last completed measurement, or nil.
func (s *AppState) GetSpeedResult() *models.SpeedResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastResult
}

// AddNotification adds a new notification and returns its ID.
func (s *AppState) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	notification := Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}

	s.notifications = append(s.notifications, notification)

	// Keep only the last 10 notifications
	if len(s.notifications) > 10 {
		s.notifications = s.notifications[len(s.notifications)-10:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *AppState) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *AppState) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *AppState) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Clear expired inline when reading
	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}

	return active
}

// ClearAllNotifications removes all notifications.
func (s *AppState) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *AppState) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  0,
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *AppState) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// GetLastUpdated returns the last time the state was updated.
func (s *AppState) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}

// TimeSinceUpdate returns the duration since the last update.
func (s *AppState) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}
