package usagestats

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/smartnet-labs/netscope/internal/models"
	"github.com/smartnet-labs/netscope/internal/platform"
)

// fakeCursor serves a fixed record slice. Records with badRecord set fail
// individually; finalErr terminates iteration with an error.
type fakeCursor struct {
	records  []models.UsageRecord
	bad      map[int]bool
	finalErr error
	pos      int
	closed   bool
}

func (c *fakeCursor) Next() bool {
	if c.pos >= len(c.records) {
		return false
	}
	c.pos++
	return true
}

func (c *fakeCursor) Record() (models.UsageRecord, error) {
	idx := c.pos - 1
	if c.bad[idx] {
		return models.UsageRecord{}, fmt.Errorf("record %d unreadable", idx)
	}
	return c.records[idx], nil
}

func (c *fakeCursor) Err() error {
	if c.pos >= len(c.records) {
		return c.finalErr
	}
	return nil
}

func (c *fakeCursor) Close() error {
	c.closed = true
	return nil
}

// fakeSource hands out one cursor per query, or fails.
type fakeSource struct {
	cursor  *fakeCursor
	err     error
	queries int
}

func (s *fakeSource) Query(_ context.Context, _, _ int64, _ models.Transport) (platform.RecordCursor, error) {
	s.queries++
	if s.err != nil {
		return nil, s.err
	}
	return s.cursor, nil
}

// fakeCatalog resolves from a fixed map; UIDs in failUIDs error.
type fakeCatalog struct {
	apps     map[int][]models.PackageInfo
	failUIDs map[int]bool
}

func (c *fakeCatalog) Resolve(uid int) ([]models.PackageInfo, error) {
	if c.failUIDs[uid] {
		return nil, errors.New("package manager unavailable")
	}
	return c.apps[uid], nil
}

func pkg(id, label string) models.PackageInfo {
	return models.PackageInfo{PackageID: id, Label: label}
}

var testRange = models.DayRange{StartMillis: 0, EndMillis: 86_399_999}

func TestAppWiseUsage_SumsDuplicateUIDs(t *testing.T) {
	cursor := &fakeCursor{records: []models.UsageRecord{
		{UID: 10001, RxBytes: 100, TxBytes: 50},
		{UID: 10001, RxBytes: 200, TxBytes: 25},
	}}
	catalog := &fakeCatalog{apps: map[int][]models.PackageInfo{
		10001: {pkg("com.example.mail", "Mail")},
	}}
	agg := NewAggregator(&fakeSource{cursor: cursor}, catalog)

	rows := agg.AppWiseUsage(context.Background(), testRange, models.TransportCellular)
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].RxBytes != 300 || rows[0].TxBytes != 75 {
		t.Errorf("row = (%d, %d), want (300, 75)", rows[0].RxBytes, rows[0].TxBytes)
	}
	if rows[0].AppName != "Mail" {
		t.Errorf("AppName = %q, want Mail", rows[0].AppName)
	}
	if !cursor.closed {
		t.Error("cursor was not closed")
	}
}

func TestAppWiseUsage_UnresolvableSystemUIDsMerge(t *testing.T) {
	cursor := &fakeCursor{records: []models.UsageRecord{
		{UID: 1000, RxBytes: 10, TxBytes: 1},
		{UID: 0, RxBytes: 20, TxBytes: 2},
		{UID: 9999, RxBytes: 30, TxBytes: 3},
	}}
	// None of the system-range UIDs resolves to a package.
	agg := NewAggregator(&fakeSource{cursor: cursor}, &fakeCatalog{})

	rows := agg.AppWiseUsage(context.Background(), testRange, models.TransportWifi)
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1 merged system row", len(rows))
	}
	if rows[0].AppName != models.BucketSystem {
		t.Errorf("AppName = %q, want %q", rows[0].AppName, models.BucketSystem)
	}
	if rows[0].RxBytes != 60 || rows[0].TxBytes != 6 {
		t.Errorf("merged totals = (%d, %d), want (60, 6)", rows[0].RxBytes, rows[0].TxBytes)
	}
}

func TestAppWiseUsage_ResolvedSystemUIDShownAsApp(t *testing.T) {
	cursor := &fakeCursor{records: []models.UsageRecord{
		{UID: 1000, RxBytes: 100, TxBytes: 50},
		{UID: 9999, RxBytes: 30, TxBytes: 3},
	}}
	// UID 1000 resolves; only 9999 falls back to the system bucket.
	catalog := &fakeCatalog{apps: map[int][]models.PackageInfo{
		1000: {pkg("com.android.settings", "Settings")},
	}}
	agg := NewAggregator(&fakeSource{cursor: cursor}, catalog)

	rows := agg.AppWiseUsage(context.Background(), testRange, models.TransportWifi)
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].AppName != "Settings" {
		t.Errorf("rows[0] = %q, want Settings", rows[0].AppName)
	}
	if rows[1].AppName != models.BucketSystem {
		t.Errorf("rows[1] = %q, want %q", rows[1].AppName, models.BucketSystem)
	}
	if rows[1].RxBytes != 30 || rows[1].TxBytes != 3 {
		t.Errorf("system row = (%d, %d), want (30, 3)", rows[1].RxBytes, rows[1].TxBytes)
	}
}

func TestAppWiseUsage_SystemUIDWithPackageAndRemovedSentinel(t *testing.T) {
	cursor := &fakeCursor{records: []models.UsageRecord{
		{UID: 1000, RxBytes: 100, TxBytes: 50},
		{UID: 1000, RxBytes: 200, TxBytes: 0},
		{UID: models.UIDRemoved, RxBytes: 10, TxBytes: 10},
	}}
	catalog := &fakeCatalog{apps: map[int][]models.PackageInfo{
		1000: {pkg("com.example.app", "Example")},
	}}
	agg := NewAggregator(&fakeSource{cursor: cursor}, catalog)

	rows := agg.AppWiseUsage(context.Background(), testRange, models.TransportCellular)
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].AppName != "Example" || rows[0].TotalBytes() != 350 {
		t.Errorf("rows[0] = %q total %d, want Example total 350",
			rows[0].AppName, rows[0].TotalBytes())
	}
	if rows[1].AppName != models.BucketRemoved || rows[1].TotalBytes() != 20 {
		t.Errorf("rows[1] = %q total %d, want %q total 20",
			rows[1].AppName, rows[1].TotalBytes(), models.BucketRemoved)
	}
}

func TestAppWiseUsage_SentinelBuckets(t *testing.T) {
	cursor := &fakeCursor{records: []models.UsageRecord{
		{UID: models.UIDTethering, RxBytes: 500, TxBytes: 100},
		{UID: models.UIDRemoved, RxBytes: 50, TxBytes: 10},
	}}
	agg := NewAggregator(&fakeSource{cursor: cursor}, &fakeCatalog{})

	rows := agg.AppWiseUsage(context.Background(), testRange, models.TransportCellular)
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].AppName != models.BucketTethering {
		t.Errorf("rows[0] = %q, want %q", rows[0].AppName, models.BucketTethering)
	}
	if rows[1].AppName != models.BucketRemoved {
		t.Errorf("rows[1] = %q, want %q", rows[1].AppName, models.BucketRemoved)
	}
}

func TestAppWiseUsage_BackgroundBucketMerges(t *testing.T) {
	cursor := &fakeCursor{records: []models.UsageRecord{
		{UID: 10050, RxBytes: 10, TxBytes: 0},
		{UID: 10051, RxBytes: 20, TxBytes: 0},
	}}
	// Neither UID resolves to a package.
	agg := NewAggregator(&fakeSource{cursor: cursor}, &fakeCatalog{})

	rows := agg.AppWiseUsage(context.Background(), testRange, models.TransportCellular)
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1 merged background row", len(rows))
	}
	if rows[0].AppName != models.BucketBackground {
		t.Errorf("AppName = %q, want %q", rows[0].AppName, models.BucketBackground)
	}
	if rows[0].RxBytes != 30 {
		t.Errorf("RxBytes = %d, want 30", rows[0].RxBytes)
	}
}

func TestAppWiseUsage_ResolveFailureDropsUID(t *testing.T) {
	cursor := &fakeCursor{records: []models.UsageRecord{
		{UID: 10001, RxBytes: 100, TxBytes: 0},
		{UID: 10002, RxBytes: 999, TxBytes: 0},
	}}
	catalog := &fakeCatalog{
		apps:     map[int][]models.PackageInfo{10001: {pkg("com.example.mail", "Mail")}},
		failUIDs: map[int]bool{10002: true},
	}
	agg := NewAggregator(&fakeSource{cursor: cursor}, catalog)

	rows := agg.AppWiseUsage(context.Background(), testRange, models.TransportCellular)
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1 (failed UID dropped)", len(rows))
	}
	if rows[0].AppName != "Mail" {
		t.Errorf("AppName = %q, want Mail", rows[0].AppName)
	}
}

func TestAppWiseUsage_SharedUIDFullBytesPerPackage(t *testing.T) {
	cursor := &fakeCursor{records: []models.UsageRecord{
		{UID: 10003, RxBytes: 400, TxBytes: 100},
	}}
	catalog := &fakeCatalog{apps: map[int][]models.PackageInfo{
		10003: {pkg("com.example.maps", "Maps"), pkg("com.example.maps.auto", "Maps Auto")},
	}}
	agg := NewAggregator(&fakeSource{cursor: cursor}, catalog)

	rows := agg.AppWiseUsage(context.Background(), testRange, models.TransportCellular)
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want one row per package", len(rows))
	}
	for _, row := range rows {
		if row.RxBytes != 400 || row.TxBytes != 100 {
			t.Errorf("row %q = (%d, %d), want full (400, 100)", row.AppName, row.RxBytes, row.TxBytes)
		}
	}
}

func TestAppWiseUsage_UnknownSentinelDropped(t *testing.T) {
	cursor := &fakeCursor{records: []models.UsageRecord{
		{UID: -7, RxBytes: 123, TxBytes: 45},
	}}
	agg := NewAggregator(&fakeSource{cursor: cursor}, &fakeCatalog{})

	rows := agg.AppWiseUsage(context.Background(), testRange, models.TransportCellular)
	if len(rows) != 0 {
		t.Errorf("len(rows) = %d, want 0", len(rows))
	}
}

func TestAppWiseUsage_SortedDescending(t *testing.T) {
	cursor := &fakeCursor{records: []models.UsageRecord{
		{UID: 10001, RxBytes: 10, TxBytes: 0},
		{UID: 10002, RxBytes: 1000, TxBytes: 0},
		{UID: 10003, RxBytes: 100, TxBytes: 0},
	}}
	catalog := &fakeCatalog{apps: map[int][]models.PackageInfo{
		10001: {pkg("a", "Small")},
		10002: {pkg("b", "Big")},
		10003: {pkg("c", "Medium")},
	}}
	agg := NewAggregator(&fakeSource{cursor: cursor}, catalog)

	rows := agg.AppWiseUsage(context.Background(), testRange, models.TransportCellular)
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	want := []string{"Big", "Medium", "Small"}
	for i, name := range want {
		if rows[i].AppName != name {
			t.Errorf("rows[%d] = %q, want %q", i, rows[i].AppName, name)
		}
	}
}

func TestAppWiseUsage_StableSortPreservesOrderOnTies(t *testing.T) {
	cursor := &fakeCursor{records: []models.UsageRecord{
		{UID: 10001, RxBytes: 100, TxBytes: 0},
		{UID: 10002, RxBytes: 100, TxBytes: 0},
	}}
	catalog := &fakeCatalog{apps: map[int][]models.PackageInfo{
		10001: {pkg("a", "First")},
		10002: {pkg("b", "Second")},
	}}
	agg := NewAggregator(&fakeSource{cursor: cursor}, catalog)

	rows := agg.AppWiseUsage(context.Background(), testRange, models.TransportCellular)
	if rows[0].AppName != "First" || rows[1].AppName != "Second" {
		t.Errorf("tie order = [%q, %q], want first-seen order preserved",
			rows[0].AppName, rows[1].AppName)
	}
}

func TestAppWiseUsage_SourceFailureYieldsEmpty(t *testing.T) {
	agg := NewAggregator(&fakeSource{err: errors.New("store locked")}, &fakeCatalog{})

	rows := agg.AppWiseUsage(context.Background(), testRange, models.TransportCellular)
	if len(rows) != 0 {
		t.Errorf("len(rows) = %d, want 0 on source failure", len(rows))
	}
}

func TestAppWiseUsage_PerRecordFailureSkipped(t *testing.T) {
	cursor := &fakeCursor{
		records: []models.UsageRecord{
			{UID: 10001, RxBytes: 100, TxBytes: 0},
			{UID: 10001, RxBytes: 999, TxBytes: 0}, // unreadable
			{UID: 10001, RxBytes: 50, TxBytes: 0},
		},
		bad: map[int]bool{1: true},
	}
	catalog := &fakeCatalog{apps: map[int][]models.PackageInfo{
		10001: {pkg("com.example.mail", "Mail")},
	}}
	agg := NewAggregator(&fakeSource{cursor: cursor}, catalog)

	rows := agg.AppWiseUsage(context.Background(), testRange, models.TransportCellular)
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].RxBytes != 150 {
		t.Errorf("RxBytes = %d, want 150 (bad record skipped)", rows[0].RxBytes)
	}
}

func TestAppWiseUsage_CursorFailureYieldsEmpty(t *testing.T) {
	cursor := &fakeCursor{
		records:  []models.UsageRecord{{UID: 10001, RxBytes: 100, TxBytes: 0}},
		finalErr: errors.New("read interrupted"),
	}
	catalog := &fakeCatalog{apps: map[int][]models.PackageInfo{
		10001: {pkg("com.example.mail", "Mail")},
	}}
	agg := NewAggregator(&fakeSource{cursor: cursor}, catalog)

	rows := agg.AppWiseUsage(context.Background(), testRange, models.TransportCellular)
	if len(rows) != 0 {
		t.Errorf("len(rows) = %d, want 0 on cursor failure", len(rows))
	}
	if !cursor.closed {
		t.Error("cursor was not closed on failure path")
	}
}

func TestAppWiseUsage_Cancellation(t *testing.T) {
	cursor := &fakeCursor{records: []models.UsageRecord{
		{UID: 10001, RxBytes: 100, TxBytes: 0},
		{UID: 10002, RxBytes: 200, TxBytes: 0},
	}}
	agg := NewAggregator(&fakeSource{cursor: cursor}, &fakeCatalog{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows := agg.AppWiseUsage(ctx, testRange, models.TransportCellular)
	if len(rows) != 0 {
		t.Errorf("len(rows) = %d, want 0 after cancellation", len(rows))
	}
	if !cursor.closed {
		t.Error("cursor was not closed after cancellation")
	}
}

func TestTotal(t *testing.T) {
	rows := []models.AppDataUsage{
		{RxBytes: 100, TxBytes: 50},
		{RxBytes: 10, TxBytes: 5},
	}
	if got := Total(rows); got != 165 {
		t.Errorf("Total() = %d, want 165", got)
	}
	if got := Total(nil); got != 0 {
		t.Errorf("Total(nil) = %d, want 0", got)
	}
}
