// Package config contains everything related to configuration
package config

import "time"

// Speed test defaults. The endpoint shape follows Cloudflare's speed test
// service: GET /__down?bytes=N streams N bytes.
const (
	DefaultSpeedTestBaseURL = "https://speed.cloudflare.com"
	DefaultUserAgent        = "Mozilla/5.0"
	DefaultDownloadBytes    = int64(100_000_000)
	DefaultGaugeMaxMBps     = 25.0
	DefaultConnectTimeout   = 30 * time.Second
	DefaultReadTimeout      = 120 * time.Second

	// DefaultSampleInterval paces the live speed samples. The MBps
	// normalization in the meter always scales by the configured interval.
	DefaultSampleInterval = 500 * time.Millisecond

	// DefaultSamplerInterval paces the background interface sampler.
	DefaultSamplerInterval = 30 * time.Second
)

// Interface name prefixes used to classify NICs by transport.
var (
	DefaultWifiPrefixes     = []string{"wlan", "wlp", "wifi", "ath"}
	DefaultCellularPrefixes = []string{"wwan", "rmnet", "ppp", "usb"}
)
