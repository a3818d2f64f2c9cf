package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	r := Default()
	require.NoError(t, r.Validate())

	assert.Equal(t, int64(1), r.Seed)
	assert.Equal(t, "GA", r.Algorithm)
	assert.Equal(t, 120, r.GA.Population)
	assert.Equal(t, 7, r.TS.TabuTenure)
}

func TestParseOverlaysOntoDefaults(t *testing.T) {
	r, err := Parse([]byte(`
seed: 42
algorithm: TS
ga:
  population: 30
  time_budget: 2s
ts:
  tabu_tenure: 11
`))
	require.NoError(t, err)
	require.NoError(t, r.Validate())

	assert.Equal(t, int64(42), r.Seed)
	assert.Equal(t, "TS", r.Algorithm)

	// Overridden fields change, the rest keep their defaults.
	assert.Equal(t, 30, r.GA.Population)
	assert.Equal(t, Default().GA.Generations, r.GA.Generations)
	assert.Equal(t, 11, r.TS.TabuTenure)
	assert.Equal(t, Default().TS.NeighborsPerIter, r.TS.NeighborsPerIter)

	gaCfg, err := r.GAConfig()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, gaCfg.TimeBudget)
	assert.Equal(t, 30, gaCfg.Population)

	tsCfg, err := r.TSConfig()
	require.NoError(t, err)
	assert.Equal(t, 11, tsCfg.TabuTenure)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("seed: [not a scalar"))
	assert.Error(t, err)
}

func TestValidateRejectsUnknownAlgorithm(t *testing.T) {
	r := Default()
	r.Algorithm = "ACO"
	assert.Error(t, r.Validate())
}

func TestValidateRejectsBadSolverValues(t *testing.T) {
	r := Default()
	r.GA.Population = 1
	assert.Error(t, r.Validate())

	r = Default()
	r.TS.TabuTenure = 0
	assert.Error(t, r.Validate())
}

func TestGAConfigRejectsBadTimeBudget(t *testing.T) {
	r := Default()
	r.GA.TimeBudget = "soon"
	_, err := r.GAConfig()
	assert.Error(t, err)
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 9\n"), 0o644))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(9), r.Seed)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
