package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smartnet-labs/netscope/internal/models"
	"github.com/smartnet-labs/netscope/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadInitialData returns a command that loads all initial data.
func loadInitialData(mgr *services.Manager, state *AppState) tea.Cmd {
	return tea.Batch(
		loadUsageCmd(mgr, state.GetPeriod(), state.GetTransport()),
		loadTotalSeriesCmd(mgr, state.GetMonthOffset()),
		loadUserAppsCmd(mgr),
	)
}

// loadUsageCmd returns a command that loads the per-app usage breakdown.
func loadUsageCmd(mgr *services.Manager, period models.Period, transport models.Transport) tea.Cmd {
	return func() tea.Msg {
		rows := mgr.Usage(context.Background(), period, transport)
		return UsageLoadedMsg{
			Period:    period,
			Transport: transport,
			Rows:      rows,
		}
	}
}

// loadTotalSeriesCmd returns a command that loads the combined daily series.
func loadTotalSeriesCmd(mgr *services.Manager, monthOffset int) tea.Cmd {
	return func() tea.Msg {
		points, summary := mgr.DailyTotals(context.Background(), monthOffset)
		return SeriesLoadedMsg{
			Kind:        SeriesTotal,
			MonthOffset: monthOffset,
			Series:      models.DailySeries{PointsMB: points, Summary: summary},
		}
	}
}

// loadNetworkSeriesCmd returns a command that loads one transport's daily series.
func loadNetworkSeriesCmd(mgr *services.Manager, monthOffset int, transport models.Transport) tea.Cmd {
	return func() tea.Msg {
		points, summary := mgr.NetworkTypeSeries(context.Background(), monthOffset, transport)
		return SeriesLoadedMsg{
			Kind:        SeriesNetworkType,
			MonthOffset: monthOffset,
			Series:      models.DailySeries{PointsMB: points, Summary: summary},
		}
	}
}

// loadAppSeriesCmd returns a command that loads one app's daily series.
func loadAppSeriesCmd(mgr *services.Manager, monthOffset int, uid int) tea.Cmd {
	return func() tea.Msg {
		points, summary := mgr.AppSeries(context.Background(), monthOffset, uid)
		return SeriesLoadedMsg{
			Kind:        SeriesApp,
			MonthOffset: monthOffset,
			Series:      models.DailySeries{PointsMB: points, Summary: summary},
		}
	}
}

// loadUserAppsCmd returns a command that loads the installed user apps.
func loadUserAppsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return UserAppsLoadedMsg{Apps: mgr.UserApps()}
	}
}

// startSpeedTestCmd returns a command that kicks off a measurement.
// Progress arrives through service events, not through the returned message.
func startSpeedTestCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.StartSpeedTest(context.Background())
		return SpeedSnapshotMsg{Snapshot: mgr.SpeedSnapshot()}
	}
}

// stopSpeedTestCmd returns a command that cancels the measurement in flight.
func stopSpeedTestCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.StopSpeedTest()
		return SpeedSnapshotMsg{Snapshot: mgr.SpeedSnapshot()}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// WaitForServiceEvent is the public version for use in models.
func WaitForServiceEvent(ch <-chan services.ServiceEvent) tea.Cmd {
	return services.WaitForEvent(ch)
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationSuccess,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationError,
			Message:  message,
			Duration: LongNotificationDuration,
		}
	}
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationWarning,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationInfo,
			Message:  message,
			Duration: QuickNotificationDuration,
		}
	}
}

// delayedCmd returns a command that sends a message after a delay.
func delayedCmd(delay time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return msg
	})
}

// batchCmds combines multiple commands into one.
func batchCmds(cmds ...tea.Cmd) tea.Cmd {
	return tea.Batch(cmds...)
}

// quitCmd returns a command that quits the application.
func quitCmd() tea.Cmd {
	return tea.Quit
}

// Commands provides a public interface to the command functions.
type Commands struct {
	manager *services.Manager
	state   *AppState
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager, state *AppState) *Commands {
	return &Commands{manager: mgr, state: state}
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// DefaultTick returns a tick command with the default interval.
func (c *Commands) DefaultTick() tea.Cmd {
	return defaultTickCmd()
}

// LoadInitialData returns a command that loads all initial data.
func (c *Commands) LoadInitialData() tea.Cmd {
	return loadInitialData(c.manager, c.state)
}

// LoadUsage returns a command that loads the usage breakdown.
func (c *Commands) LoadUsage(period models.Period, transport models.Transport) tea.Cmd {
	return loadUsageCmd(c.manager, period, transport)
}

// LoadTotalSeries returns a command that loads the combined daily series.
func (c *Commands) LoadTotalSeries(monthOffset int) tea.Cmd {
	return loadTotalSeriesCmd(c.manager, monthOffset)
}

// LoadNetworkSeries returns a command that loads one transport's series.
func (c *Commands) LoadNetworkSeries(monthOffset int, transport models.Transport) tea.Cmd {
	return loadNetworkSeriesCmd(c.manager, monthOffset, transport)
}

// LoadAppSeries returns a command that loads one app's series.
func (c *Commands) LoadAppSeries(monthOffset int, uid int) tea.Cmd {
	return loadAppSeriesCmd(c.manager, monthOffset, uid)
}

// LoadUserApps returns a command that loads the installed user apps.
func (c *Commands) LoadUserApps() tea.Cmd {
	return loadUserAppsCmd(c.manager)
}

// StartSpeedTest returns a command that starts a measurement.
func (c *Commands) StartSpeedTest() tea.Cmd {
	return startSpeedTestCmd(c.manager)
}

// StopSpeedTest returns a command that cancels the measurement.
func (c *Commands) StopSpeedTest() tea.Cmd {
	return stopSpeedTestCmd(c.manager)
}

// SubscribeToServices returns a command that subscribes to service events.
func (c *Commands) SubscribeToServices() tea.Cmd {
	return subscribeToServicesCmd(c.manager)
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// ClearNotification returns a command that removes a notification after a delay.
func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return clearNotificationCmd(id, delay)
}

// Quit returns a command that quits the application.
func (c *Commands) Quit() tea.Cmd {
	return quitCmd()
}

// Delayed returns a command that sends a message after a delay.
func (c *Commands) Delayed(delay time.Duration, msg tea.Msg) tea.Cmd {
	return delayedCmd(delay, msg)
}

// Batch combines multiple commands into one.
func (c *Commands) Batch(cmds ...tea.Cmd) tea.Cmd {
	return batchCmds(cmds...)
}
