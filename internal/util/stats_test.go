package util_test

import (
	"math"
	"testing"

	"github.com/slothpixel/sloth/internal/util"
	"github.com/stretchr/testify/require"
)

func TestStatsEmpty(t *testing.T) {
	var empty []int64
	require.True(t, math.IsNaN(util.Max(empty)))
	require.True(t, math.IsNaN(util.Min(empty)))
	require.True(t, math.IsNaN(util.Average(empty)))
	require.True(t, math.IsNaN(util.Median(empty)))
	require.True(t, math.IsNaN(util.StdDev(empty)))
}

func TestStats(t *testing.T) {
	prices := []int64{5, 1, 4, 2}

	require.Equal(t, 5.0, util.Max(prices))
	require.Equal(t, 1.0, util.Min(prices))
	require.Equal(t, 3.0, util.Average(prices))
	// (2+4)/2
	require.Equal(t, 3.0, util.Median(prices))
	// diffs 2,-2,1,-1 -> squares 4,4,1,1 -> avg 2 (floored 2.5) -> sqrt 1.41 -> 1
	require.Equal(t, 1.0, util.StdDev(prices))

	require.Equal(t, []int64{5, 1, 4, 2}, prices, "median must not reorder input")
}

func TestMedianOdd(t *testing.T) {
	require.Equal(t, 2.0, util.Median([]float64{3.5, 1, 2.7}))
	require.Equal(t, 7.0, util.Average([]float64{7.9}))
}
