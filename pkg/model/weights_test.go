package model

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proteograph/pint/pkg/feature"
)

func TestWeightsRoundtrip(t *testing.T) {
	entries := toyRegression(12)

	cfg := DefaultConfig(TaskRegress)
	cfg.HiddenDims = []int{4}
	cfg.Epochs = 10
	cfg.Scaler = "zscore"

	net, _, err := Train(cfg, entries, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, net.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, loaded.Scaler)
	assert.Equal(t, "zscore", loaded.Scaler.Name())
	assert.Equal(t, net.Config.HiddenDims, loaded.Config.HiddenDims)

	// A loaded network scores entries identically.
	for _, e := range entries[:3] {
		want, err := net.Predict(e)
		require.NoError(t, err)
		got, err := loaded.Predict(e)
		require.NoError(t, err)
		assert.InDelta(t, want, got, 1e-12)
	}
}

func TestWeightsKeepFeatureSelection(t *testing.T) {
	cfg := DefaultConfig(TaskRegress)
	cfg.InputDim = 2
	cfg.NodeFeatures = []string{"charge", "restype"}
	cfg.EdgeFeatures = []string{"etype", "dist"}

	net, err := NewGraphNet(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, net.Save(path))

	// Scoring reads the selection back to assemble entries the same way.
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.NodeFeatures, loaded.Config.NodeFeatures)
	assert.Equal(t, cfg.EdgeFeatures, loaded.Config.EdgeFeatures)
	assert.Equal(t, 1, loaded.Config.distColumn())
}

func TestWeightsRoundtripWithoutScaler(t *testing.T) {
	cfg := DefaultConfig(TaskClassify)
	cfg.InputDim = 2
	net, err := NewGraphNet(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, net.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Nil(t, loaded.Scaler)

	want, err := net.Predict(toyEntry("e", 0.4, 0))
	require.NoError(t, err)
	got, err := loaded.Predict(toyEntry("e", 0.4, 0))
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-12)
}

func TestSaveErrors(t *testing.T) {
	cfg := DefaultConfig(TaskRegress)
	cfg.InputDim = 2
	net, err := NewGraphNet(cfg)
	require.NoError(t, err)

	assert.Error(t, net.Save(""))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("{}"), 0600))
	_, err = Load(empty)
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0600))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestLoadUnknownScaler(t *testing.T) {
	cfg := DefaultConfig(TaskRegress)
	cfg.InputDim = 2
	net, err := NewGraphNet(cfg)
	require.NoError(t, err)
	net.Scaler = &feature.MinMaxScaler{Min: []float64{0}, Max: []float64{1}}

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, net.Save(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	mutated := strings.Replace(string(b), `"name": "minmax"`, `"name": "robust"`, 1)
	require.NoError(t, os.WriteFile(path, []byte(mutated), 0600))

	_, err = Load(path)
	assert.Error(t, err)
}
