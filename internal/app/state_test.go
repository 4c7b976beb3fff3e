package app

import (
	"testing"
	"time"

	"github.com/smartnet-labs/netscope/internal/models"
)

func TestNewAppState(t *testing.T) {
	s := NewAppState()
	if s == nil {
		t.Fatal("NewAppState returned nil")
	}
	if len(s.UsageRows) != 0 {
		t.Error("UsageRows should be empty")
	}
	if s.Loading.Initial != true {
		t.Error("Initial loading should be true")
	}
	if s.GetPeriod() != models.PeriodToday {
		t.Errorf("default period = %v, want Today", s.GetPeriod())
	}
	if s.GetTransport() != models.TransportCellular {
		t.Errorf("default transport = %v, want Cellular", s.GetTransport())
	}
}

func TestAppState_SetLoading(t *testing.T) {
	s := NewAppState()

	s.SetLoading("usage", true)
	if !s.Loading.Usage {
		t.Error("Usage loading should be true")
	}
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true")
	}

	s.SetLoading("usage", false)
	// Initial is still true
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true (Initial is true)")
	}

	s.SetLoading("initial", false)
	if s.AnyLoading() {
		t.Error("AnyLoading should be false")
	}

	resources := s.GetLoadingResources()
	if len(resources) != 0 {
		t.Errorf("GetLoadingResources should be empty, got %v", resources)
	}

	s.SetLoading("series", true)
	resources = s.GetLoadingResources()
	if len(resources) != 1 || resources[0] != "series" {
		t.Errorf("GetLoadingResources should contain series, got %v", resources)
	}
}

func TestAppState_Usage(t *testing.T) {
	s := NewAppState()

	rows := []models.AppDataUsage{
		{AppName: "Mail", UID: 10001, RxBytes: 1000, TxBytes: 500},
		{AppName: "System and Root", UID: 0, RxBytes: 200},
	}

	s.SetUsage(models.PeriodThisWeek, models.TransportWifi, rows)

	if s.GetPeriod() != models.PeriodThisWeek {
		t.Errorf("period = %v, want ThisWeek", s.GetPeriod())
	}
	if s.GetTransport() != models.TransportWifi {
		t.Errorf("transport = %v, want Wifi", s.GetTransport())
	}

	got := s.GetUsage()
	if len(got) != 2 {
		t.Errorf("GetUsage returned %d rows", len(got))
	}
	if s.UsageTotal() != 1700 {
		t.Errorf("UsageTotal = %d, want 1700", s.UsageTotal())
	}
}

func TestAppState_Series(t *testing.T) {
	s := NewAppState()

	series := models.DailySeries{
		PointsMB: []float64{1.5, 2.0, 0.5},
		Summary:  models.MonthlyUsage{Month: "March 2024", Total: "4.00 MB"},
	}
	s.SetSeries(SeriesNetworkType, -1, series)

	kind, offset, got := s.GetSeries()
	if kind != SeriesNetworkType {
		t.Errorf("kind = %v, want SeriesNetworkType", kind)
	}
	if offset != -1 {
		t.Errorf("offset = %d, want -1", offset)
	}
	if len(got.PointsMB) != 3 {
		t.Errorf("PointsMB len = %d, want 3", len(got.PointsMB))
	}
	if got.Summary.Month != "March 2024" {
		t.Errorf("Month = %q, want March 2024", got.Summary.Month)
	}

	// The returned series is a copy
	got.PointsMB[0] = 99
	_, _, again := s.GetSeries()
	if again.PointsMB[0] != 1.5 {
		t.Error("GetSeries should return a copy")
	}
}

func TestAppState_UserApps(t *testing.T) {
	s := NewAppState()

	apps := []models.PackageInfo{
		{PackageID: "com.example.mail", Label: "Mail"},
		{PackageID: "com.example.maps", Label: "Maps"},
	}
	s.SetUserApps(apps)

	got := s.GetUserApps()
	if len(got) != 2 {
		t.Errorf("GetUserApps len = %d, want 2", len(got))
	}

	s.SetSelectedAppIndex(1)
	app, ok := s.GetSelectedApp()
	if !ok {
		t.Fatal("GetSelectedApp should report an app")
	}
	if app.Label != "Maps" {
		t.Errorf("selected app = %q, want Maps", app.Label)
	}

	// Shrinking the list clamps the selection
	s.SetSelectedAppIndex(5)
	s.SetUserApps(apps[:1])
	if s.GetSelectedAppIndex() != 0 {
		t.Errorf("selection should clamp to 0, got %d", s.GetSelectedAppIndex())
	}
}

func TestAppState_SelectedApp_Empty(t *testing.T) {
	s := NewAppState()

	if _, ok := s.GetSelectedApp(); ok {
		t.Error("GetSelectedApp should report false for an empty picker")
	}
}

func TestAppState_Speed(t *testing.T) {
	s := NewAppState()

	snap := models.SpeedSnapshot{
		State:       models.SpeedTestRunning,
		CurrentMBps: 12.5,
		PeakMBps:    15.0,
		PingMs:      42,
	}
	s.SetSpeedSnapshot(snap)

	got := s.GetSpeedSnapshot()
	if got.State != models.SpeedTestRunning {
		t.Errorf("state = %v, want running", got.State)
	}
	if got.CurrentMBps != 12.5 {
		t.Errorf("CurrentMBps = %v, want 12.5", got.CurrentMBps)
	}

	if s.GetSpeedResult() != nil {
		t.Error("GetSpeedResult should be nil before a measurement")
	}

	s.SetSpeedResult(models.SpeedResult{AverageMBps: 10.0, PeakMBps: 15.0})
	result := s.GetSpeedResult()
	if result == nil {
		t.Fatal("GetSpeedResult returned nil")
	}
	if result.AverageMBps != 10.0 {
		t.Errorf("AverageMBps = %v, want 10.0", result.AverageMBps)
	}
}

func TestAppState_Notifications(t *testing.T) {
	s := NewAppState()

	id := s.AddNotification(NotificationInfo, "test", time.Minute)
	if id == "" {
		t.Error("AddNotification returned empty ID")
	}

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("GetNotifications len = %d, want 1", len(notifs))
	}
	if notifs[0].Message != "test" {
		t.Errorf("Notification message = %s, want test", notifs[0].Message)
	}

	s.RemoveNotification(id)
	if len(s.GetNotifications()) != 0 {
		t.Error("Notification should be removed")
	}
}

func TestAppState_ClearExpiredNotifications(t *testing.T) {
	s := NewAppState()

	// Expired
	s.notifications = append(s.notifications, Notification{
		ID:        "expired",
		CreatedAt: time.Now().Add(-2 * time.Minute),
		Duration:  time.Minute,
	})

	// Active
	s.notifications = append(s.notifications, Notification{
		ID:        "active",
		CreatedAt: time.Now(),
		Duration:  time.Minute,
	})

	s.ClearExpiredNotifications()

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].ID != "active" {
		t.Errorf("Expected active notification, got %s", notifs[0].ID)
	}
}

func TestAppState_LoadingNotification(t *testing.T) {
	s := NewAppState()

	s.SetLoadingNotification("loading...")
	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].ID != LoadingNotificationID {
		t.Errorf("Expected ID %s, got %s", LoadingNotificationID, notifs[0].ID)
	}
	if notifs[0].Message != "loading..." {
		t.Errorf("Expected message loading..., got %s", notifs[0].Message)
	}

	// Update message
	s.SetLoadingNotification("still loading...")
	notifs = s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("Expected 1 notification after update")
	}
	if notifs[0].Message != "still loading..." {
		t.Errorf("Expected message still loading..., got %s", notifs[0].Message)
	}

	s.ClearLoadingNotification()
	if len(s.GetNotifications()) != 0 {
		t.Error("Loading notification should be cleared")
	}
}

func TestAppState_LastUpdated(t *testing.T) {
	s := NewAppState()

	if s.TimeSinceUpdate() != 0 {
		t.Error("TimeSinceUpdate should be 0 before any update")
	}

	before := s.GetLastUpdated()
	time.Sleep(time.Millisecond) // Ensure time advances
	s.SetUsage(models.PeriodToday, models.TransportCellular, nil)

	if !s.GetLastUpdated().After(before) {
		t.Error("LastUpdated should be updated")
	}
	if s.TimeSinceUpdate() == 0 {
		t.Error("TimeSinceUpdate should be > 0")
	}
}

func TestNotificationType_String(t *testing.T) {
	tests := []struct {
		t    NotificationType
		want string
	}{
		{NotificationSuccess, "success"},
		{NotificationError, "error"},
		{NotificationWarning, "warning"},
		{NotificationInfo, "info"},
		{NotificationType(999), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
