package main

import (
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(seed uint64) *generator {
	return &generator{
		rng:      rand.New(rand.NewPCG(seed, seed)),
		start:    time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		days:     20,
		stations: []string{"Centro", "Garcia"},
		perDay:   6,
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	a, _ := newTestGenerator(3).rainfall()
	b, _ := newTestGenerator(3).rainfall()
	assert.Equal(t, a, b)
}

func TestGenerator_RainfallLayout(t *testing.T) {
	rows, daily := newTestGenerator(5).rainfall()
	assert.Equal(t, []string{"datahora", "Centro", "Garcia", "cidade"}, rows[0])
	assert.Len(t, daily, 20)
	for _, row := range rows[1:] {
		_, err := time.Parse("02/01/2006-15:04:05", row[0])
		require.NoError(t, err)
		assert.Len(t, row, 4)
	}
}

func TestGenerator_ProbabilityInRange(t *testing.T) {
	g := newTestGenerator(9)
	_, daily := g.rainfall()
	rows := g.probability(daily)
	assert.Len(t, rows, 21)
	assert.Equal(t, "2024-01-01", rows[1][0])
}

func TestGeneratedFilesLoad(t *testing.T) {
	dir := t.TempDir()
	g := newTestGenerator(11)

	rainfall, daily := g.rainfall()
	require.NoError(t, writeCSV(filepath.Join(dir, rainfallFile), rainfall))
	require.NoError(t, writeXLSX(filepath.Join(dir, "pluvio_out.xlsx"), rainfall))
	require.NoError(t, writeCSV(filepath.Join(dir, postsFile), g.posts(daily)))
	require.NoError(t, writeCSV(filepath.Join(dir, probabilityFile), g.probability(daily)))

	require.NoError(t, summarize(dir))
}

func TestSplitStations(t *testing.T) {
	assert.Equal(t, []string{"A", "B C"}, splitStations(" A,, B C ,"))
	assert.Empty(t, splitStations(" , "))
}
