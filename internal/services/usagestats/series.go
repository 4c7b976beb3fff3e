package usagestats

import (
	"context"
	"time"

	"github.com/smartnet-labs/netscope/internal/logger"
	"github.com/smartnet-labs/netscope/internal/models"
	"github.com/smartnet-labs/netscope/internal/platform"
)

// SeriesBuilder computes daily-usage chart series from the traffic source.
// It holds no accumulator state; concurrent calls are safe as long as the
// source is.
type SeriesBuilder struct {
	source platform.UsageRecordSource
}

// NewSeriesBuilder builds a series builder over source.
func NewSeriesBuilder(source platform.UsageRecordSource) *SeriesBuilder {
	return &SeriesBuilder{source: source}
}

// DailyTotals returns the per-day MB series across both transports for the
// month at monthOffset, with the month label and formatted running total.
func (b *SeriesBuilder) DailyTotals(ctx context.Context, now time.Time, loc *time.Location, monthOffset int) ([]float64, models.MonthlyUsage) {
	ranges := DailyRanges(now, loc, monthOffset)
	points := make([]float64, 0, len(ranges))

	var total uint64
	for _, r := range ranges {
		day := b.windowTotal(ctx, r, models.TransportCellular, nil) +
			b.windowTotal(ctx, r, models.TransportWifi, nil)
		total += day
		points = append(points, models.BytesToMB(day))
	}

	return points, summarize(ranges, loc, total)
}

// NetworkTypeSeries returns the per-day MB series for a single transport.
func (b *SeriesBuilder) NetworkTypeSeries(ctx context.Context, now time.Time, loc *time.Location, monthOffset int, transport models.Transport) ([]float64, models.MonthlyUsage) {
	ranges := DailyRanges(now, loc, monthOffset)
	points := make([]float64, 0, len(ranges))

	var total uint64
	for _, r := range ranges {
		day := b.windowTotal(ctx, r, transport, nil)
		total += day
		points = append(points, models.BytesToMB(day))
	}

	return points, summarize(ranges, loc, total)
}

// AppSeries returns the per-day MB series for one UID across both
// transports.
func (b *SeriesBuilder) AppSeries(ctx context.Context, now time.Time, loc *time.Location, monthOffset int, uid int) ([]float64, models.MonthlyUsage) {
	ranges := DailyRanges(now, loc, monthOffset)
	points := make([]float64, 0, len(ranges))

	var total uint64
	for _, r := range ranges {
		day := b.windowTotal(ctx, r, models.TransportCellular, &uid) +
			b.windowTotal(ctx, r, models.TransportWifi, &uid)
		total += day
		points = append(points, models.BytesToMB(day))
	}

	return points, summarize(ranges, loc, total)
}

// windowTotal sums the bytes of one query window, optionally filtered to a
// single UID. Failures log and count as zero.
func (b *SeriesBuilder) windowTotal(ctx context.Context, r models.DayRange, transport models.Transport, uid *int) uint64 {
	cursor, err := b.source.Query(ctx, r.StartMillis, r.EndMillis, transport)
	if err != nil {
		logger.Error("series query failed", "transport", transport.String(), "error", err)
		return 0
	}
	defer func() {
		if err := cursor.Close(); err != nil {
			logger.Error("failed to close series cursor", "error", err)
		}
	}()

	var total uint64
	for cursor.Next() {
		if ctx.Err() != nil {
			return 0
		}
		rec, err := cursor.Record()
		if err != nil {
			logger.Warn("skipping unreadable usage record", "error", err)
			continue
		}
		if uid != nil && rec.UID != *uid {
			continue
		}
		total += rec.RxBytes + rec.TxBytes
	}
	if err := cursor.Err(); err != nil {
		logger.Error("series cursor failed", "transport", transport.String(), "error", err)
		return 0
	}
	return total
}

// summarize builds the month label and formatted total for a range set.
func summarize(ranges []models.DayRange, loc *time.Location, total uint64) models.MonthlyUsage {
	if len(ranges) == 0 {
		return models.MonthlyUsage{Total: models.FormatBytes(0)}
	}
	return models.MonthlyUsage{
		Month: ranges[0].Start(loc).Format("January 2006"),
		Total: models.FormatBytes(int64(total)),
	}
}
