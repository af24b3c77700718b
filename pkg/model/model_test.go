package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proteograph/pint/pkg/data"
)

// toyEntry builds a two node entry whose features carry the value v.
func toyEntry(id string, v, target float64) *data.Entry {
	return &data.Entry{
		ID:        id,
		NodeKeys:  []string{"n0", "n1"},
		X:         [][]float64{{v, 1.0}, {v, 0.5}},
		EdgeIndex: [][2]int{{0, 1}},
		EdgeAttr:  [][]float64{{1.5, 0.0}},
		Target:    target,
	}
}

// toyRegression maps the node value linearly onto the target.
func toyRegression(n int) []*data.Entry {
	entries := make([]*data.Entry, n)
	for i := 0; i < n; i++ {
		v := float64(i) / float64(n)
		entries[i] = toyEntry(fmt.Sprintf("e%02d", i), v, v)
	}
	return entries
}

// toyClassification labels entries by the sign region of their value.
func toyClassification(n int) []*data.Entry {
	entries := make([]*data.Entry, n)
	for i := 0; i < n; i++ {
		v := float64(i)/float64(n) - 0.5
		label := 0.0
		if v > 0 {
			label = 1.0
		}
		entries[i] = toyEntry(fmt.Sprintf("e%02d", i), v, label)
	}
	return entries
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown task", func(c *Config) { c.Task = "cluster" }},
		{"no hidden layers", func(c *Config) { c.HiddenDims = nil }},
		{"bad hidden width", func(c *Config) { c.HiddenDims = []int{8, 0} }},
		{"bad learning rate", func(c *Config) { c.LearningRate = 0 }},
		{"bad epochs", func(c *Config) { c.Epochs = 0 }},
		{"bad batch size", func(c *Config) { c.BatchSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(TaskRegress)
			tt.mutate(&cfg)
			assert.Error(t, cfg.validate())
		})
	}

	cfg := DefaultConfig(TaskClassify)
	assert.NoError(t, cfg.validate())
}

func TestRank(t *testing.T) {
	cfg := DefaultConfig(TaskRegress)
	cfg.InputDim = 2
	net, err := NewGraphNet(cfg)
	require.NoError(t, err)

	entries := toyRegression(5)
	ranked, err := Rank(net, entries)
	require.NoError(t, err)
	require.Len(t, ranked, 5)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}

	_, err = Rank(nil, entries)
	assert.Error(t, err)
}
