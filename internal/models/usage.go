// Package models defines data structures and domain types.
package models

import "time"

// Transport identifies the network type a traffic sample was accounted on.
type Transport int

const (
	// TransportCellular is mobile data.
	TransportCellular Transport = iota
	// TransportWifi is Wi-Fi data.
	TransportWifi
)

// String returns the display name for a transport.
func (t Transport) String() string {
	switch t {
	case TransportCellular:
		return "Cellular"
	case TransportWifi:
		return "Wi-Fi"
	default:
		return "Unknown"
	}
}

// Next cycles to the next transport.
func (t Transport) Next() Transport {
	return (t + 1) % 2
}

// Period represents the selected usage period.
type Period int

const (
	// PeriodThisMonth covers the first of the month through now.
	PeriodThisMonth Period = iota
	// PeriodThisWeek covers Monday through Sunday of the current week.
	PeriodThisWeek
	// PeriodToday covers the current calendar day.
	PeriodToday
	// PeriodYesterday covers the previous calendar day.
	PeriodYesterday
)

// String returns the display name for a period.
func (p Period) String() string {
	switch p {
	case PeriodThisMonth:
		return "This month"
	case PeriodThisWeek:
		return "This week"
	case PeriodToday:
		return "Today"
	case PeriodYesterday:
		return "Yesterday"
	default:
		return "Unknown"
	}
}

// Next cycles to the next period.
func (p Period) Next() Period {
	return (p + 1) % 4
}

// Reserved UIDs used by the traffic accounting source. The negative values
// are sentinels emitted by the platform rather than real process UIDs.
const (
	// UIDRemoved accounts traffic of apps uninstalled before the query.
	UIDRemoved = -4
	// UIDTethering accounts tethering and hotspot traffic.
	UIDTethering = -5
	// SystemUIDEnd is the last UID of the reserved system range.
	SystemUIDEnd = 9999
	// FirstApplicationUID is the floor of the per-user application ID range.
	FirstApplicationUID = 10000
)

// Synthetic bucket labels for traffic that cannot be attributed to an
// installed package.
const (
	BucketSystem     = "System and Root"
	BucketTethering  = "Tethering & Hotspot"
	BucketRemoved    = "Removed UID usage"
	BucketBackground = "Background User Apps"
)

// UsageRecord is one raw traffic accounting record. A query window may yield
// several records for the same UID; consumers must sum them.
type UsageRecord struct {
	UID     int
	RxBytes uint64
	TxBytes uint64
}

// UIDUsage is the per-UID accumulation across all records of one query
// window.
type UIDUsage struct {
	UID     int
	RxBytes uint64
	TxBytes uint64
}

// TotalBytes returns received plus transmitted bytes.
func (u UIDUsage) TotalBytes() uint64 {
	return u.RxBytes + u.TxBytes
}

// PackageInfo identifies one installed package resolved from a UID.
type PackageInfo struct {
	PackageID string `json:"packageId"`
	Label     string `json:"label"`
	Icon      string `json:"icon,omitempty"`
	// System marks preinstalled or updated-system packages.
	System bool `json:"system,omitempty"`
}

// AppDataUsage is one row of the per-app usage breakdown: either a resolved
// package or a synthetic bucket. Rx/Tx are mutable only during the synthetic
// merge step of a single aggregation pass.
type AppDataUsage struct {
	Icon    string
	UID     int
	AppName string
	RxBytes uint64
	TxBytes uint64
}

// TotalBytes returns received plus transmitted bytes.
func (a AppDataUsage) TotalBytes() uint64 {
	return a.RxBytes + a.TxBytes
}

// DayRange is one calendar day clipped to "now", in epoch milliseconds.
// Ranges produced for a period are contiguous and ascending by start.
type DayRange struct {
	StartMillis int64
	EndMillis   int64
}

// Start returns the range start as a time in loc.
func (d DayRange) Start(loc *time.Location) time.Time {
	return time.UnixMilli(d.StartMillis).In(loc)
}

// MonthlyUsage is a display-ready month summary, recomputed and replaced on
// every aggregation pass.
type MonthlyUsage struct {
	// Month is formatted "January 2006".
	Month string
	// Total is the human-readable byte total for the period.
	Total string
}

// DailySeries pairs a per-day MB series with its month summary.
type DailySeries struct {
	PointsMB []float64
	Summary  MonthlyUsage
}
