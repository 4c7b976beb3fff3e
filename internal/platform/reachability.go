package platform

import (
	"context"
	"net/http"
	"sync"
	"time"

	psnet "github.com/shirou/gopsutil/v3/net"

	"github.com/smartnet-labs/netscope/internal/logger"
)

// validationTTL is how long a successful probe counts as "validated".
const validationTTL = 30 * time.Second

// Reachability answers whether the host currently has working internet:
// a usable interface (capability) and a recent successful probe
// (validation).
type Reachability struct {
	probeURL  string
	userAgent string
	client    *http.Client
	// capability is swappable for tests
	capability func() bool

	mu          sync.Mutex
	lastSuccess time.Time
}

// NewReachability builds a checker probing probeURL.
func NewReachability(probeURL, userAgent string, timeout time.Duration) *Reachability {
	r := &Reachability{
		probeURL:  probeURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
	r.capability = r.interfaceCapability
	return r
}

// HasCapability reports whether any up, non-loopback interface holds an
// address.
func (r *Reachability) HasCapability() bool {
	return r.capability()
}

func (r *Reachability) interfaceCapability() bool {
	ifaces, err := psnet.Interfaces()
	if err != nil {
		logger.Warn("failed to list interfaces", "error", err)
		return false
	}

	for _, iface := range ifaces {
		if !hasFlag(iface.Flags, "up") || hasFlag(iface.Flags, "loopback") {
			continue
		}
		if len(iface.Addrs) > 0 {
			return true
		}
	}
	return false
}

// IsInternetAvailable reports capability plus validation. A probe success
// within the validation window counts without re-probing.
func (r *Reachability) IsInternetAvailable(ctx context.Context) bool {
	if !r.HasCapability() {
		return false
	}

	r.mu.Lock()
	recent := time.Since(r.lastSuccess) < validationTTL
	r.mu.Unlock()
	if recent {
		return true
	}

	if !r.probe(ctx) {
		return false
	}

	r.mu.Lock()
	r.lastSuccess = time.Now()
	r.mu.Unlock()
	return true
}

// probe issues a lightweight GET against the probe endpoint.
func (r *Reachability) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.probeURL, nil)
	if err != nil {
		logger.Warn("failed to build probe request", "error", err)
		return false
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Cache-Control", "no-store")

	resp, err := r.client.Do(req)
	if err != nil {
		logger.Debug("reachability probe failed", "error", err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}
