package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proteograph/pint/pkg/data"
	"github.com/proteograph/pint/pkg/feature"
)

func TestNewGraphNet(t *testing.T) {
	cfg := DefaultConfig(TaskRegress)
	cfg.InputDim = 4
	cfg.HiddenDims = []int{8, 6}

	net, err := NewGraphNet(cfg)
	require.NoError(t, err)
	require.Len(t, net.Conv, 2)

	assert.Len(t, net.Conv[0].WSelf, 8)
	assert.Len(t, net.Conv[0].WSelf[0], 4)
	assert.Len(t, net.Conv[1].WSelf, 6)
	assert.Len(t, net.Conv[1].WSelf[0], 8)
	assert.Len(t, net.Head.W, 6)
}

func TestNewGraphNetErrors(t *testing.T) {
	cfg := DefaultConfig(TaskRegress)
	_, err := NewGraphNet(cfg)
	assert.Error(t, err, "input dimension is required")

	cfg.InputDim = 2
	cfg.Task = "bogus"
	_, err = NewGraphNet(cfg)
	assert.Error(t, err)
}

func TestPredictDeterministic(t *testing.T) {
	cfg := DefaultConfig(TaskRegress)
	cfg.InputDim = 2

	net1, err := NewGraphNet(cfg)
	require.NoError(t, err)
	net2, err := NewGraphNet(cfg)
	require.NoError(t, err)

	e := toyEntry("e", 0.3, 0)

	p1, err := net1.Predict(e)
	require.NoError(t, err)
	p2, err := net2.Predict(e)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)

	again, err := net1.Predict(e)
	require.NoError(t, err)
	assert.Equal(t, p1, again)
}

func TestPredictClassifyBounds(t *testing.T) {
	cfg := DefaultConfig(TaskClassify)
	cfg.InputDim = 2
	net, err := NewGraphNet(cfg)
	require.NoError(t, err)

	for _, v := range []float64{-100, -1, 0, 1, 100} {
		p, err := net.Predict(toyEntry("e", v, 0))
		require.NoError(t, err)
		assert.Greater(t, p, 0.0)
		assert.Less(t, p, 1.0)
	}
}

func TestPredictDimensionMismatch(t *testing.T) {
	cfg := DefaultConfig(TaskRegress)
	cfg.InputDim = 5
	net, err := NewGraphNet(cfg)
	require.NoError(t, err)

	_, err = net.Predict(toyEntry("e", 0.3, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 node features")
	assert.Contains(t, err.Error(), "expects 5")

	_, err = net.Predict(&data.Entry{ID: "empty"})
	assert.Error(t, err)
}

func TestPredictIsolatedNodes(t *testing.T) {
	cfg := DefaultConfig(TaskRegress)
	cfg.InputDim = 2
	net, err := NewGraphNet(cfg)
	require.NoError(t, err)

	e := &data.Entry{
		ID:       "isolated",
		NodeKeys: []string{"n0", "n1"},
		X:        [][]float64{{0.5, 1}, {0.2, 0}},
	}
	_, err = net.Predict(e)
	assert.NoError(t, err)
}

func TestPredictWithScaler(t *testing.T) {
	cfg := DefaultConfig(TaskRegress)
	cfg.InputDim = 2
	net, err := NewGraphNet(cfg)
	require.NoError(t, err)

	scaler := &feature.MinMaxScaler{}
	require.NoError(t, scaler.Fit([][]float64{{0, 0}, {1, 1}}))
	net.Scaler = scaler

	_, err = net.Predict(toyEntry("e", 0.5, 0))
	assert.NoError(t, err)

	// A scaler fitted on a different width surfaces as an error.
	require.NoError(t, scaler.Fit([][]float64{{0, 0, 0}, {1, 1, 1}}))
	_, err = net.Predict(toyEntry("e", 0.5, 0))
	assert.Error(t, err)
}

func TestAdjacencyWeights(t *testing.T) {
	nbs := adjacency(3, [][2]int{{0, 1}, {1, 2}}, [][]float64{{1.0}, {3.0}}, 0)

	require.Len(t, nbs[0], 1)
	assert.Equal(t, 1, nbs[0][0].index)
	assert.InDelta(t, 0.5, nbs[0][0].weight, 1e-9)

	require.Len(t, nbs[1], 2)
	assert.InDelta(t, 0.25, nbs[1][1].weight, 1e-9)

	// Without edge features every neighbor weighs the same.
	nbs = adjacency(2, [][2]int{{0, 1}}, nil, 0)
	assert.InDelta(t, 1.0, nbs[0][0].weight, 1e-9)

	// The distance lives in the named column, not necessarily the first.
	nbs = adjacency(2, [][2]int{{0, 1}}, [][]float64{{1.0, 3.0}}, 1)
	assert.InDelta(t, 0.25, nbs[0][0].weight, 1e-9)

	// No distance column selected, edges weigh 1.
	nbs = adjacency(2, [][2]int{{0, 1}}, [][]float64{{1.0}}, -1)
	assert.InDelta(t, 1.0, nbs[0][0].weight, 1e-9)
}

func TestConfigDistColumn(t *testing.T) {
	tests := []struct {
		name         string
		edgeFeatures []string
		want         int
	}{
		{"default selection", nil, 0},
		{"dist first", []string{"dist", "etype"}, 0},
		{"dist second", []string{"etype", "dist"}, 1},
		{"dist left out", []string{"etype"}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{EdgeFeatures: tt.edgeFeatures}
			assert.Equal(t, tt.want, cfg.distColumn())
		})
	}
}

func TestMeanPool(t *testing.T) {
	pooled := meanPool([][]float64{{1, 2}, {3, 4}})
	assert.InDelta(t, 2.0, pooled[0], 1e-9)
	assert.InDelta(t, 3.0, pooled[1], 1e-9)
}
