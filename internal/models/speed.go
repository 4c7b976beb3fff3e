package models

// SpeedTestState is the measurement lifecycle. The only terminal state is
// idle; failures fall back to idle with a dialog signal.
type SpeedTestState int

const (
	// SpeedTestIdle means no measurement is in flight.
	SpeedTestIdle SpeedTestState = iota
	// SpeedTestConnecting covers the ping and the download handshake.
	SpeedTestConnecting
	// SpeedTestRunning means the download stream is being read.
	SpeedTestRunning
)

// ButtonText returns the start/stop control label for a state.
func (s SpeedTestState) ButtonText() string {
	switch s {
	case SpeedTestIdle:
		return "START"
	case SpeedTestConnecting:
		return "connecting"
	case SpeedTestRunning:
		return "STOP"
	default:
		return "START"
	}
}

// String returns the state name.
func (s SpeedTestState) String() string {
	switch s {
	case SpeedTestIdle:
		return "idle"
	case SpeedTestConnecting:
		return "connecting"
	case SpeedTestRunning:
		return "running"
	default:
		return "unknown"
	}
}

// SpeedSnapshot is the display state of the throughput meter. It is
// published whole on every change; consumers never mutate it.
type SpeedSnapshot struct {
	State SpeedTestState
	// CurrentMBps is the most recent periodic sample.
	CurrentMBps float64
	// PeakMBps is the running maximum of the periodic samples.
	PeakMBps float64
	// PingMs is the measured round trip in whole milliseconds, 0 if the
	// ping failed or has not run.
	PingMs int
	// GaugeProgress is CurrentMBps scaled into [0, 1] against the gauge
	// maximum.
	GaugeProgress float64
}

// SpeedResult summarizes a completed download.
type SpeedResult struct {
	TotalBytes int64
	Seconds    float64
	// AverageMBps is TotalBytes over the whole transfer duration.
	AverageMBps float64
	PeakMBps    float64
	PingMs      int
}
