package usagestats

import (
	"context"
	"sort"

	"github.com/smartnet-labs/netscope/internal/logger"
	"github.com/smartnet-labs/netscope/internal/models"
	"github.com/smartnet-labs/netscope/internal/platform"
)

// Aggregator turns raw traffic records into a per-app usage breakdown.
type Aggregator struct {
	source  platform.UsageRecordSource
	catalog platform.AppCatalog
}

// NewAggregator builds an aggregator over source and catalog.
func NewAggregator(source platform.UsageRecordSource, catalog platform.AppCatalog) *Aggregator {
	return &Aggregator{source: source, catalog: catalog}
}

// AppWiseUsage returns the per-app breakdown for one query window, sorted
// descending by total bytes. A source-level failure yields an empty result;
// per-record failures are skipped. Cancellation is checked between records.
func (a *Aggregator) AppWiseUsage(ctx context.Context, r models.DayRange, transport models.Transport) []models.AppDataUsage {
	cursor, err := a.source.Query(ctx, r.StartMillis, r.EndMillis, transport)
	if err != nil {
		logger.Error("usage query failed", "transport", transport.String(), "error", err)
		return []models.AppDataUsage{}
	}
	defer func() {
		if err := cursor.Close(); err != nil {
			logger.Error("failed to close usage cursor", "error", err)
		}
	}()

	// Accumulate per UID, preserving first-seen order for the stable sort.
	totals := make(map[int]*models.UIDUsage)
	var order []int
	for cursor.Next() {
		if ctx.Err() != nil {
			logger.Debug("usage aggregation cancelled")
			return []models.AppDataUsage{}
		}

		rec, err := cursor.Record()
		if err != nil {
			logger.Warn("skipping unreadable usage record", "error", err)
			continue
		}

		u, ok := totals[rec.UID]
		if !ok {
			u = &models.UIDUsage{UID: rec.UID}
			totals[rec.UID] = u
			order = append(order, rec.UID)
		}
		u.RxBytes += rec.RxBytes
		u.TxBytes += rec.TxBytes
	}
	if err := cursor.Err(); err != nil {
		logger.Error("usage cursor failed", "transport", transport.String(), "error", err)
		return []models.AppDataUsage{}
	}

	rows := a.classify(totals, order)

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalBytes() > rows[j].TotalBytes()
	})
	return rows
}

// classify maps accumulated per-UID totals to display rows: resolved
// packages where possible, synthetic buckets otherwise.
func (a *Aggregator) classify(totals map[int]*models.UIDUsage, order []int) []models.AppDataUsage {
	rows := make([]models.AppDataUsage, 0, len(order))

	// Merged buckets accumulate across UIDs; the row is appended where the
	// first contributing UID appeared.
	systemRow, backgroundRow := -1, -1
	merge := func(row *int, name, icon string, uid int, u *models.UIDUsage) {
		if *row == -1 {
			rows = append(rows, models.AppDataUsage{Icon: icon, UID: uid, AppName: name})
			*row = len(rows) - 1
		}
		rows[*row].RxBytes += u.RxBytes
		rows[*row].TxBytes += u.TxBytes
	}

	for _, uid := range order {
		u := totals[uid]

		switch {
		case uid == models.UIDTethering:
			rows = append(rows, models.AppDataUsage{
				Icon:    "⇄",
				UID:     uid,
				AppName: models.BucketTethering,
				RxBytes: u.RxBytes,
				TxBytes: u.TxBytes,
			})

		case uid == models.UIDRemoved:
			rows = append(rows, models.AppDataUsage{
				Icon:    "✗",
				UID:     uid,
				AppName: models.BucketRemoved,
				RxBytes: u.RxBytes,
				TxBytes: u.TxBytes,
			})

		case uid >= 0:
			// Resolution comes first: a UID that maps to installed
			// packages is shown as those apps even inside the reserved
			// system range. The synthetic buckets catch the rest.
			pkgs, err := a.catalog.Resolve(uid)
			if err != nil {
				logger.Warn("dropping usage for unresolvable UID", "uid", uid, "error", err)
				continue
			}
			if len(pkgs) == 0 {
				if uid <= models.SystemUIDEnd {
					merge(&systemRow, models.BucketSystem, "⚙", 0, u)
				} else {
					merge(&backgroundRow, models.BucketBackground, "◌", models.FirstApplicationUID, u)
				}
				continue
			}
			// Shared UIDs cannot split bytes between packages; each
			// package reports the full UID total.
			for _, pkg := range pkgs {
				rows = append(rows, models.AppDataUsage{
					Icon:    pkg.Icon,
					UID:     uid,
					AppName: pkg.Label,
					RxBytes: u.RxBytes,
					TxBytes: u.TxBytes,
				})
			}

		default:
			// Unrecognized sentinel UIDs are dropped.
		}
	}

	return rows
}

// Total sums every row of a breakdown.
func Total(rows []models.AppDataUsage) uint64 {
	var total uint64
	for _, r := range rows {
		total += r.TotalBytes()
	}
	return total
}
