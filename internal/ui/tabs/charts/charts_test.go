package charts

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smartnet-labs/netscope/internal/app"
	"github.com/smartnet-labs/netscope/internal/models"
)

func newLoadedState() *app.AppState {
	state := app.NewAppState()
	state.SetLoading("initial", false)
	return state
}

func seriesFixture() models.DailySeries {
	return models.DailySeries{
		PointsMB: []float64{10, 25, 5, 40, 12, 0, 33, 18},
		Summary:  models.MonthlyUsage{Month: "August 2026", Total: "143.0 MB"},
	}
}

func TestNew(t *testing.T) {
	m := New(app.NewAppState())
	if m == nil {
		t.Fatal("New returned nil")
	}
}

func TestModel_Init(t *testing.T) {
	m := New(app.NewAppState())
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
}

func TestModel_View_Loading(t *testing.T) {
	m := New(app.NewAppState())
	m.SetSize(80, 30)

	if !strings.Contains(m.View(), "Loading") {
		t.Error("View during initial load should show loading spinner")
	}
}

func TestModel_View_WithSeries(t *testing.T) {
	state := newLoadedState()
	state.SetSeries(app.SeriesTotal, 0, seriesFixture())

	m := New(state)
	m.SetSize(100, 40)

	view := m.View()
	if !strings.Contains(view, "Usage Charts") {
		t.Error("View should contain the title")
	}
	if !strings.Contains(view, "August 2026") {
		t.Error("View should contain the month summary")
	}
	if !strings.Contains(view, "Recent Days") {
		t.Error("View should contain the recent days section")
	}
}

func TestModel_MonthNavigation(t *testing.T) {
	state := newLoadedState()
	m := New(state)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if cmd == nil {
		t.Fatal("navigating back a month should trigger a reload")
	}
	if state.GetMonthOffset() != -1 {
		t.Errorf("month offset = %d, want -1", state.GetMonthOffset())
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if cmd == nil {
		t.Fatal("navigating forward should trigger a reload")
	}
	if state.GetMonthOffset() != 0 {
		t.Errorf("month offset = %d, want 0", state.GetMonthOffset())
	}

	// Cannot navigate past the current month
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if cmd != nil {
		if msg := cmd(); msg != nil {
			if _, ok := msg.(app.RefreshMsg); ok {
				t.Error("navigating past the current month should not reload")
			}
		}
	}
}

func TestModel_CycleKind(t *testing.T) {
	state := newLoadedState()
	m := New(state)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	if cmd == nil {
		t.Fatal("cycling the series should trigger a reload")
	}
	kind, _, _ := state.GetSeries()
	if kind != app.SeriesNetworkType {
		t.Errorf("series kind = %v, want SeriesNetworkType", kind)
	}

	msg := cmd()
	refresh, ok := msg.(app.RefreshMsg)
	if !ok {
		t.Fatalf("expected RefreshMsg, got %T", msg)
	}
	if refresh.Resource != "series" {
		t.Errorf("RefreshMsg.Resource = %q, want series", refresh.Resource)
	}
}

func TestNextKind(t *testing.T) {
	if got := nextKind(app.SeriesTotal); got != app.SeriesNetworkType {
		t.Errorf("nextKind(SeriesTotal) = %v", got)
	}
	if got := nextKind(app.SeriesNetworkType); got != app.SeriesApp {
		t.Errorf("nextKind(SeriesNetworkType) = %v", got)
	}
	if got := nextKind(app.SeriesApp); got != app.SeriesTotal {
		t.Errorf("nextKind(SeriesApp) = %v", got)
	}
}

func TestModel_CycleApp(t *testing.T) {
	state := newLoadedState()
	state.SetSeriesKind(app.SeriesApp)
	state.SetUserApps([]models.PackageInfo{
		{PackageID: "com.example.maps", Label: "Maps"},
		{PackageID: "com.example.mail", Label: "Mail"},
	})

	m := New(state)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	if cmd == nil {
		t.Fatal("picking the next app should trigger a reload")
	}
	if state.GetSelectedAppIndex() != 1 {
		t.Errorf("selected index = %d, want 1", state.GetSelectedAppIndex())
	}

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	if state.GetSelectedAppIndex() != 0 {
		t.Errorf("selection should wrap, got %d", state.GetSelectedAppIndex())
	}
}

func TestModel_NetworkCache(t *testing.T) {
	state := newLoadedState()
	state.SetTransport(models.TransportCellular)

	m := New(state)
	m.Update(app.SeriesLoadedMsg{
		Kind:        app.SeriesNetworkType,
		MonthOffset: 0,
		Series:      seriesFixture(),
	})

	cellular, wifi := m.cachedNetworkPoints(0)
	if len(cellular) == 0 {
		t.Error("cellular points should be cached after load")
	}
	if len(wifi) != 0 {
		t.Error("wifi points should not be cached yet")
	}

	// Cached points for another month are not reused
	cellular, _ = m.cachedNetworkPoints(-1)
	if len(cellular) != 0 {
		t.Error("cache should not serve a different month")
	}
}

func TestModel_SetSize(t *testing.T) {
	m := New(app.NewAppState())
	m.SetSize(100, 50)
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
