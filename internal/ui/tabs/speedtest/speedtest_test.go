package speedtest

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smartnet-labs/netscope/internal/app"
	"github.com/smartnet-labs/netscope/internal/models"
	"github.com/smartnet-labs/netscope/internal/services"
)

func TestNew(t *testing.T) {
	m := New(app.NewAppState())
	if m == nil {
		t.Fatal("New returned nil")
	}
}

func TestModel_Init(t *testing.T) {
	m := New(app.NewAppState())
	if m.Init() != nil {
		t.Error("Init should return nil")
	}
}

func TestModel_View_Idle(t *testing.T) {
	m := New(app.NewAppState())
	m.SetSize(100, 40)

	view := m.View()
	if !strings.Contains(view, "Speed Test") {
		t.Error("View should contain the title")
	}
	if !strings.Contains(view, "START") {
		t.Error("View in idle state should show the START control")
	}
}

func TestModel_View_Running(t *testing.T) {
	state := app.NewAppState()
	state.SetSpeedSnapshot(models.SpeedSnapshot{
		State:         models.SpeedTestRunning,
		CurrentMBps:   12.5,
		PeakMBps:      14.0,
		PingMs:        23,
		GaugeProgress: 0.5,
	})

	m := New(state)
	m.SetSize(100, 40)

	view := m.View()
	if !strings.Contains(view, "STOP") {
		t.Error("View in running state should show the STOP control")
	}
	if !strings.Contains(view, "23 ms") {
		t.Error("View should show the measured ping")
	}
	if !strings.Contains(view, "12.50 MB/s") {
		t.Error("View should show the current speed")
	}
}

func TestModel_View_Connecting(t *testing.T) {
	state := app.NewAppState()
	state.SetSpeedSnapshot(models.SpeedSnapshot{State: models.SpeedTestConnecting})

	m := New(state)
	m.SetSize(100, 40)

	if !strings.Contains(m.View(), "connecting") {
		t.Error("View in connecting state should show the shimmer bar")
	}
}

func TestModel_View_Result(t *testing.T) {
	state := app.NewAppState()
	state.SetSpeedResult(models.SpeedResult{
		TotalBytes:  100 * 1024 * 1024,
		Seconds:     10.5,
		AverageMBps: 9.52,
		PeakMBps:    11.0,
		PingMs:      30,
	})

	m := New(state)
	m.SetSize(100, 40)

	view := m.View()
	if !strings.Contains(view, "Last Result") {
		t.Error("View should show the result card after a finished run")
	}
	if !strings.Contains(view, "9.52 MB/s") {
		t.Error("View should show the average speed")
	}
}

func TestModel_Toggle(t *testing.T) {
	state := app.NewAppState()
	m := New(state)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("toggling from idle should produce a command")
	}
	if _, ok := cmd().(app.StartSpeedTestMsg); !ok {
		t.Error("toggling from idle should start the test")
	}

	state.SetSpeedSnapshot(models.SpeedSnapshot{State: models.SpeedTestRunning})
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("toggling while running should produce a command")
	}
	if _, ok := cmd().(app.StopSpeedTestMsg); !ok {
		t.Error("toggling while running should stop the test")
	}
}

func TestModel_ApplySample(t *testing.T) {
	m := New(app.NewAppState())

	running := models.SpeedSnapshot{
		State:         models.SpeedTestRunning,
		CurrentMBps:   5.0,
		GaugeProgress: 0.2,
	}

	m.Update(app.ServiceEventMsg{Event: services.SpeedSampleEvent{Snapshot: running}})
	m.Update(app.SpeedSnapshotMsg{Snapshot: running})

	if len(m.samples) != 2 {
		t.Errorf("samples = %d, want 2", len(m.samples))
	}

	// A fresh connect drops the previous run's samples
	m.Update(app.SpeedSnapshotMsg{Snapshot: models.SpeedSnapshot{State: models.SpeedTestConnecting}})
	if len(m.samples) != 0 {
		t.Error("connecting should reset the sample ring")
	}
}

func TestModel_SampleRingBounded(t *testing.T) {
	m := New(app.NewAppState())

	for i := 0; i < maxSampleHistory+50; i++ {
		m.applySample(models.SpeedSnapshot{
			State:         models.SpeedTestRunning,
			CurrentMBps:   float64(i),
			GaugeProgress: 0.1,
		})
	}

	if len(m.samples) != maxSampleHistory {
		t.Errorf("samples = %d, want %d", len(m.samples), maxSampleHistory)
	}
}

func TestGaugeMax(t *testing.T) {
	snap := models.SpeedSnapshot{CurrentMBps: 12.5, GaugeProgress: 0.5}
	if got := gaugeMax(snap); got != 25.0 {
		t.Errorf("gaugeMax = %v, want 25.0", got)
	}

	if got := gaugeMax(models.SpeedSnapshot{}); got != defaultGaugeMaxMBps {
		t.Errorf("gaugeMax at rest = %v, want default", got)
	}
}

func TestModel_SetSize(t *testing.T) {
	m := New(app.NewAppState())
	m.SetSize(100, 50)
	m.SetSize(30, 10)
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewAppState())
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}
