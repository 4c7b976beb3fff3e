package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smartnet-labs/netscope/internal/models"
	"github.com/smartnet-labs/netscope/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// WindowSizeMsg is sent when the terminal window is resized.
type WindowSizeMsg struct {
	Width  int
	Height int
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// InitialLoadCompleteMsg signals that initial data loading is complete.
type InitialLoadCompleteMsg struct{}

// UsageLoadedMsg contains the per-app usage breakdown for the selected
// period and transport.
type UsageLoadedMsg struct {
	Period    models.Period
	Transport models.Transport
	Rows      []models.AppDataUsage
}

// SeriesKind identifies which daily series a chart request targets.
type SeriesKind int

const (
	// SeriesTotal is combined cellular plus Wi-Fi traffic.
	SeriesTotal SeriesKind = iota
	// SeriesNetworkType is traffic on one transport only.
	SeriesNetworkType
	// SeriesApp is traffic attributed to one application UID.
	SeriesApp
)

// SeriesLoadedMsg contains one daily MB series with its month summary.
type SeriesLoadedMsg struct {
	Kind        SeriesKind
	MonthOffset int
	Series      models.DailySeries
}

// UserAppsLoadedMsg contains the installed user apps for the chart picker.
type UserAppsLoadedMsg struct {
	Apps []models.PackageInfo
}

// StartSpeedTestMsg requests starting a throughput measurement.
type StartSpeedTestMsg struct{}

// StopSpeedTestMsg requests cancelling the measurement in flight.
type StopSpeedTestMsg struct{}

// SpeedSnapshotMsg carries the latest throughput meter state.
type SpeedSnapshotMsg struct {
	Snapshot models.SpeedSnapshot
}

// SpeedResultMsg carries the summary of a completed measurement.
type SpeedResultMsg struct {
	Result models.SpeedResult
}

// SpeedUnavailableMsg signals that no internet connection is available.
type SpeedUnavailableMsg struct{}

// SpeedFailedMsg signals that a measurement failed mid-flight.
type SpeedFailedMsg struct {
	Error error
}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all", "usage", "series", "apps"
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearNotificationsMsg requests clearing all notifications.
type ClearNotificationsMsg struct{}

// NotificationAddedMsg confirms a notification was added.
type NotificationAddedMsg struct {
	ID string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// QuitMsg requests the application to quit.
type QuitMsg struct{}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// DelayedMsg wraps a message to be sent after a delay.
type DelayedMsg struct {
	Delay time.Duration
	Msg   tea.Msg
}
