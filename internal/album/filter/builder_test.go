package filter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smart-album/server/internal/album/query"
	errx "github.com/smart-album/server/internal/core/error"
)

type fakeScanner struct {
	records []ScanRecord
	err     error
}

func (f *fakeScanner) ScanDates(ctx context.Context) ([]ScanRecord, error) {
	return f.records, f.err
}

func unixDate(loc *time.Location, year, month, day int) int64 {
	return time.Date(year, time.Month(month), day, 12, 0, 0, 0, loc).Unix()
}

func TestBuild_YearBearingDateRange(t *testing.T) {
	loc := time.UTC
	b := NewBuilder(&fakeScanner{}, loc)

	spec, err := b.Build(context.Background(), query.DateExpression{Kind: query.DateKindDate, Year: 2026, Month: 1, Day: 17}, nil)
	require.NoError(t, err)

	require.NotNil(t, spec.DateRange)
	assert.Equal(t, time.Date(2026, 1, 17, 0, 0, 0, 0, loc).Unix(), spec.DateRange.Start)
	assert.Equal(t, time.Date(2026, 1, 18, 0, 0, 0, 0, loc).Unix(), spec.DateRange.End)
	assert.False(t, spec.IDSet)
}

func TestBuild_MonthDayScansForIDs(t *testing.T) {
	loc := time.UTC
	scanner := &fakeScanner{records: []ScanRecord{
		{ID: "a", TakenAt: unixDate(loc, 2024, 1, 18)},
		{ID: "b", TakenAt: unixDate(loc, 2025, 1, 18)},
		{ID: "c", TakenAt: unixDate(loc, 2025, 2, 18)},
	}}
	b := NewBuilder(scanner, loc)

	spec, err := b.Build(context.Background(), query.DateExpression{Kind: query.DateKindMonthDay, Month: 1, Day: 18}, nil)
	require.NoError(t, err)

	assert.True(t, spec.IDSet)
	assert.ElementsMatch(t, []string{"a", "b"}, spec.IDs)
	assert.Nil(t, spec.DateRange, "id set and date range are mutually exclusive")
}

func TestBuild_MonthDayNoMatchesIsUnsatisfiableNotError(t *testing.T) {
	b := NewBuilder(&fakeScanner{records: []ScanRecord{{ID: "a", TakenAt: unixDate(time.UTC, 2024, 6, 1)}}}, time.UTC)

	spec, err := b.Build(context.Background(), query.DateExpression{Kind: query.DateKindMonthDay, Month: 1, Day: 18}, nil)
	require.NoError(t, err)

	assert.True(t, spec.Unsatisfiable())
	assert.False(t, spec.Empty())
}

func TestBuild_ScannerFailureIsStoreError(t *testing.T) {
	b := NewBuilder(&fakeScanner{err: errors.New("connection refused")}, time.UTC)

	_, err := b.Build(context.Background(), query.DateExpression{Kind: query.DateKindMonthDay, Month: 1, Day: 18}, nil)
	require.Error(t, err)
	assert.True(t, errx.IsStore(err))
}

func TestBuild_TagsCombineWithDate(t *testing.T) {
	b := NewBuilder(&fakeScanner{}, time.UTC)

	spec, err := b.Build(context.Background(), query.DateExpression{Kind: query.DateKindDate, Year: 2025, Month: 5, Day: 1}, []string{"travel", "family"})
	require.NoError(t, err)

	assert.NotNil(t, spec.DateRange)
	assert.Equal(t, []string{"travel", "family"}, spec.Tags)
}

func TestBuild_NothingYieldsEmptySpec(t *testing.T) {
	b := NewBuilder(&fakeScanner{}, time.UTC)

	spec, err := b.Build(context.Background(), query.DateExpression{Kind: query.DateKindNone}, nil)
	require.NoError(t, err)
	assert.True(t, spec.Empty())
}
