// Package platform provides the traffic accounting source, the app catalog
// and the host network collaborators the aggregation services consume.
package platform

import (
	"context"

	"github.com/smartnet-labs/netscope/internal/models"
)

// RecordCursor streams raw usage records for one query window. Cursors can
// fail mid-read; callers must check Err after the loop and Close on every
// exit path.
type RecordCursor interface {
	// Next advances the cursor, returning false when exhausted or failed.
	Next() bool
	// Record returns the current record. A per-record error leaves the
	// cursor usable for further Next calls.
	Record() (models.UsageRecord, error)
	// Err returns the error that terminated iteration, if any.
	Err() error
	Close() error
}

// UsageRecordSource hands out raw traffic records for a time window and
// transport. Duplicate records per UID are expected; consumers must sum.
type UsageRecordSource interface {
	Query(ctx context.Context, startMillis, endMillis int64, transport models.Transport) (RecordCursor, error)
}

// AppCatalog resolves UIDs to installed package identities.
type AppCatalog interface {
	// Resolve returns zero or more packages sharing the UID.
	Resolve(uid int) ([]models.PackageInfo, error)
}

// IsInstalledUserApp reports whether a resolved package counts as a
// user-installed application. System and updated-system packages are
// excluded.
func IsInstalledUserApp(p models.PackageInfo) bool {
	return !p.System
}
