package info

import (
	"strings"
	"testing"
	"time"

	"github.com/smartnet-labs/netscope/internal/app"
	"github.com/smartnet-labs/netscope/internal/config"
	"github.com/smartnet-labs/netscope/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		StatsDBPath:      "/tmp/netscope/stats.db",
		CatalogPath:      "/tmp/netscope/catalog.json",
		LogPath:          "/tmp/netscope/netscope.log",
		SpeedTestBaseURL: "https://speed.example.com",
		SampleInterval:   100 * time.Millisecond,
		GaugeMaxMBps:     25.0,
	}
}

func TestNew(t *testing.T) {
	m := New(app.NewAppState(), testConfig())
	if m == nil {
		t.Fatal("New returned nil")
	}
}

func TestModel_Init(t *testing.T) {
	m := New(app.NewAppState(), testConfig())
	if m.Init() != nil {
		t.Error("Init should return nil")
	}
}

func TestModel_Update(t *testing.T) {
	m := New(app.NewAppState(), testConfig())

	updated, _ := m.Update(nil)
	if updated == nil {
		t.Error("Update returned nil model")
	}
}

func TestModel_View(t *testing.T) {
	state := app.NewAppState()
	state.SetUserApps([]models.PackageInfo{
		{PackageID: "com.example.maps", Label: "Maps"},
	})

	m := New(state, testConfig())
	m.SetSize(100, 40)

	view := m.View()
	if !strings.Contains(view, "Configuration") {
		t.Error("View should contain the configuration card")
	}
	if !strings.Contains(view, "stats.db") {
		t.Error("View should show the stats database path")
	}
	if !strings.Contains(view, "Granted") {
		t.Error("View should show usage access as granted by default")
	}
}

func TestModel_View_NoAccess(t *testing.T) {
	m := New(app.NewAppState(), testConfig())
	m.SetSize(100, 40)
	m.SetUsageAccess(false, "Grant usage access in system settings.")

	view := m.View()
	if !strings.Contains(view, "Missing") {
		t.Error("View should show usage access as missing")
	}
	if !strings.Contains(view, "system settings") {
		t.Error("View should show the remediation hint")
	}
}

func TestModel_View_NilConfig(t *testing.T) {
	m := New(app.NewAppState(), nil)
	m.SetSize(80, 24)

	if !strings.Contains(m.View(), "Configuration not loaded") {
		t.Error("View with nil config should say so")
	}
}

func TestModel_SetSize(t *testing.T) {
	m := New(app.NewAppState(), testConfig())
	m.SetSize(100, 50)
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewAppState(), testConfig())
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}
