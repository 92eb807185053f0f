package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyc-taxi-co2/analysis/internal/emissions"
)

func TestMonthlyPoints(t *testing.T) {
	rows := []emissions.MonthlyRow{
		{Month: 1, YellowCO2: 100},
		{Month: 2, GreenCO2: 10},
		{Month: 3, YellowCO2: 50},
		{Month: 13, YellowCO2: 999}, // not drawable, skipped
	}

	yellow, green := MonthlyPoints(rows)

	require.Len(t, yellow, 12)
	require.Len(t, green, 12)
	assert.Equal(t, 1.0, yellow[0].X)
	assert.Equal(t, 12.0, yellow[11].X)
	assert.Equal(t, 100.0, yellow[0].Y)
	assert.Equal(t, 0.0, yellow[1].Y)
	assert.Equal(t, 50.0, yellow[2].Y)
	assert.Equal(t, 10.0, green[1].Y)
	for i := 3; i < 12; i++ {
		assert.Zero(t, yellow[i].Y, "month %d", i+1)
		assert.Zero(t, green[i].Y, "month %d", i+1)
	}
}

func TestMonthTicks(t *testing.T) {
	ticks := monthTicks()
	require.Len(t, ticks, 12)
	assert.Equal(t, "Jan", ticks[0].Label)
	assert.Equal(t, 1.0, ticks[0].Value)
	assert.Equal(t, "Dec", ticks[11].Label)
}

func TestPNGSinkWritesImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monthly_co2_totals.png")
	sink := NewPNGSink(path, 50)

	got, err := sink.Plot([]emissions.MonthlyRow{
		{Month: 1, YellowCO2: 100, GreenCO2: 20},
		{Month: 6, YellowCO2: 80, GreenCO2: 35},
	})
	require.NoError(t, err)
	assert.Equal(t, path, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")), "file is not a PNG")
}

func TestPNGSinkErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewPNGSink(filepath.Join(dir, "empty.png"), 50).Plot(nil)
	assert.ErrorContains(t, err, "no monthly totals")

	_, err = NewPNGSink(filepath.Join(dir, "missing", "dir", "chart.png"), 50).Plot([]emissions.MonthlyRow{{Month: 1}})
	assert.Error(t, err)
}
