package platform

import (
	"fmt"
	"os"
)

// PermissionGate guards access to the traffic accounting store.
type PermissionGate struct {
	statsPath string
}

// NewPermissionGate builds a gate for the store at statsPath.
func NewPermissionGate(statsPath string) *PermissionGate {
	return &PermissionGate{statsPath: statsPath}
}

// HasUsageAccess reports whether the traffic store exists and is readable.
func (g *PermissionGate) HasUsageAccess() bool {
	f, err := os.Open(g.statsPath)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// RequestUsageAccess returns the instructions shown when access is missing.
func (g *PermissionGate) RequestUsageAccess() string {
	return fmt.Sprintf(
		"Usage access is not available.\n\n"+
			"No readable traffic store was found at %s.\n"+
			"Start the interface sampler or import samples with\n"+
			"NETSCOPE_STATS_DB pointing at an existing store.",
		g.statsPath,
	)
}
