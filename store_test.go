package primebench

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func storedTable() *SweepTable {
	return syntheticTable(
		[]float64{100, 1000, 10000},
		[]float64{0.3, 0.5, 0.7},
		func(T, sigma float64) float64 {
			return math.Gamma((1-sigma)/2) * math.Pow(T, 1-2*sigma)
		},
	)
}

func TestStoreSweepRoundTrip(t *testing.T) {
	store := openTestStore(t)
	tb := storedTable()

	// Stored results carry their bookkeeping too.
	for i := range tb.Entries {
		tb.Entries[i].Result.ErrEstimate = 1e-9
		tb.Entries[i].Result.Upper = 5 * tb.Entries[i].T
		tb.Entries[i].Result.Nodes = 4096
	}

	require.NoError(t, store.SaveSweep(tb))

	loaded, err := store.LoadSweep()
	require.NoError(t, err)

	assert.Equal(t, tb.TValues, loaded.TValues)
	assert.Equal(t, tb.SigmaValues, loaded.SigmaValues)
	require.Equal(t, len(tb.Entries), len(loaded.Entries))
	for i := range tb.Entries {
		assert.Equal(t, tb.Entries[i], loaded.Entries[i], "entry %d", i)
	}

	res, ok := loaded.Lookup(1000, 0.5)
	require.True(t, ok)
	assert.Equal(t, 4096, res.Nodes)
}

func TestStoreSweepReplaces(t *testing.T) {
	store := openTestStore(t)
	tb := storedTable()

	require.NoError(t, store.SaveSweep(tb))
	require.NoError(t, store.SaveSweep(tb)) // second save replaces, not appends

	loaded, err := store.LoadSweep()
	require.NoError(t, err)
	assert.Len(t, loaded.Entries, len(tb.Entries))
}

func TestStoreLoadSweepEmpty(t *testing.T) {
	store := openTestStore(t)

	_, err := store.LoadSweep()
	assert.Error(t, err)
}

func TestStoreAnalysisRoundTrip(t *testing.T) {
	store := openTestStore(t)

	an, err := FitScaling(storedTable())
	require.NoError(t, err)

	require.NoError(t, store.SaveAnalysis(an))

	loaded, err := store.LoadAnalysis()
	require.NoError(t, err)
	assert.Equal(t, an.Amplitude, loaded.Amplitude)
	assert.Equal(t, an.Fits, loaded.Fits)
}

func TestStoreOscillation(t *testing.T) {
	store := openTestStore(t)

	osc := OscillationResult{
		Sigma:   0.5,
		TValues: []float64{100, 1000, 10000},
		Osc:     []float64{0.01, -0.02, 0.015},
		RelOsc:  []float64{0.001, 0.002, 0.0015},
	}
	require.NoError(t, store.SaveOscillation(osc))
}

func TestWriteSweepCSV(t *testing.T) {
	tb := storedTable()

	var sb strings.Builder
	require.NoError(t, WriteSweepCSV(&sb, tb))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 1+len(tb.Entries))
	assert.Equal(t, "t,sigma,value,err_estimate", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "100,0.3,"))
}

func TestWriteFitCSV(t *testing.T) {
	an, err := FitScaling(storedTable())
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, WriteFitCSV(&sb, an))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 1+len(an.Fits))
	assert.Equal(t, "sigma,c_fit,c_theory,residual", lines[0])
}
