package models

import "testing"

func TestTotalBytes(t *testing.T) {
	u := UIDUsage{UID: 10001, RxBytes: 300, TxBytes: 50}
	if got := u.TotalBytes(); got != 350 {
		t.Errorf("UIDUsage.TotalBytes() = %d, want 350", got)
	}

	a := AppDataUsage{UID: 10001, AppName: "com.example.app", RxBytes: 100, TxBytes: 20}
	if got := a.TotalBytes(); got != 120 {
		t.Errorf("AppDataUsage.TotalBytes() = %d, want 120", got)
	}
}

func TestPeriodString(t *testing.T) {
	tests := []struct {
		period Period
		want   string
	}{
		{PeriodThisMonth, "This month"},
		{PeriodThisWeek, "This week"},
		{PeriodToday, "Today"},
		{PeriodYesterday, "Yesterday"},
	}
	for _, tt := range tests {
		if got := tt.period.String(); got != tt.want {
			t.Errorf("Period(%d).String() = %q, want %q", tt.period, got, tt.want)
		}
	}
}

func TestPeriodNext_Cycles(t *testing.T) {
	p := PeriodThisMonth
	for i := 0; i < 4; i++ {
		p = p.Next()
	}
	if p != PeriodThisMonth {
		t.Errorf("expected Next to cycle back to PeriodThisMonth, got %v", p)
	}
}

func TestTransport(t *testing.T) {
	if TransportCellular.String() != "Cellular" {
		t.Errorf("unexpected name %q", TransportCellular.String())
	}
	if TransportWifi.String() != "Wi-Fi" {
		t.Errorf("unexpected name %q", TransportWifi.String())
	}
	if TransportCellular.Next() != TransportWifi || TransportWifi.Next() != TransportCellular {
		t.Error("Next should toggle between the two transports")
	}
}

func TestSpeedTestStateButtonText(t *testing.T) {
	tests := []struct {
		state SpeedTestState
		want  string
	}{
		{SpeedTestIdle, "START"},
		{SpeedTestConnecting, "connecting"},
		{SpeedTestRunning, "STOP"},
	}
	for _, tt := range tests {
		if got := tt.state.ButtonText(); got != tt.want {
			t.Errorf("%v.ButtonText() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
