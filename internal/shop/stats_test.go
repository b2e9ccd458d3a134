package shop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeItemSource struct {
	rows []ItemRecord
	err  error
}

func (f *fakeItemSource) ItemsInRange(ctx context.Context, start, end time.Time) ([]ItemRecord, error) {
	return f.rows, f.err
}

func TestTopProducts(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC)

	rowsXY := []ItemRecord{
		{ProductID: "x", ProductName: "X"},
		{ProductID: "x", ProductName: "X"},
		{ProductID: "x", ProductName: "X"},
		{ProductID: "y", ProductName: "Y"},
	}

	t.Run("ranked by row count descending", func(t *testing.T) {
		eng := &StatsEngine{Items: &fakeItemSource{rows: rowsXY}}
		got, err := eng.TopProducts(context.Background(), start, end, 2)
		require.NoError(t, err)
		assert.Equal(t, []ProductCount{{"X", 3}, {"Y", 1}}, got)
	})

	t.Run("truncates to top n", func(t *testing.T) {
		rows := []ItemRecord{
			{ProductID: "a", ProductName: "A"},
			{ProductID: "b", ProductName: "B"},
			{ProductID: "b", ProductName: "B"},
			{ProductID: "c", ProductName: "C"},
			{ProductID: "c", ProductName: "C"},
			{ProductID: "c", ProductName: "C"},
		}
		eng := &StatsEngine{Items: &fakeItemSource{rows: rows}}
		got, err := eng.TopProducts(context.Background(), start, end, 2)
		require.NoError(t, err)
		assert.Equal(t, []ProductCount{{"C", 3}, {"B", 2}}, got)
	})

	t.Run("fewer products than n returns all", func(t *testing.T) {
		eng := &StatsEngine{Items: &fakeItemSource{rows: rowsXY}}
		got, err := eng.TopProducts(context.Background(), start, end, 10)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("non-positive n returns empty", func(t *testing.T) {
		eng := &StatsEngine{Items: &fakeItemSource{rows: rowsXY}}
		for _, n := range []int{0, -1} {
			got, err := eng.TopProducts(context.Background(), start, end, n)
			require.NoError(t, err)
			assert.Empty(t, got)
		}
	})

	t.Run("ties keep first appearance order", func(t *testing.T) {
		rows := []ItemRecord{
			{ProductID: "b", ProductName: "B"},
			{ProductID: "a", ProductName: "A"},
			{ProductID: "b", ProductName: "B"},
			{ProductID: "a", ProductName: "A"},
		}
		eng := &StatsEngine{Items: &fakeItemSource{rows: rows}}
		got, err := eng.TopProducts(context.Background(), start, end, 5)
		require.NoError(t, err)
		assert.Equal(t, []ProductCount{{"B", 2}, {"A", 2}}, got)
	})

	t.Run("empty range", func(t *testing.T) {
		eng := &StatsEngine{Items: &fakeItemSource{}}
		got, err := eng.TopProducts(context.Background(), start, end, 3)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
