package model

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/proteograph/pint/pkg/data"
	"github.com/proteograph/pint/pkg/graph"
)

// Task selects the network output head.
type Task string

const (
	// TaskClassify trains a binary classifier with a sigmoid output.
	TaskClassify Task = "classify"
	// TaskRegress trains a regressor with a linear output.
	TaskRegress Task = "regress"
)

// Config holds the network shape and training hyperparameters.
type Config struct {
	// InputDim is the node feature row width. Zero means take it from
	// the first training entry.
	InputDim int `json:"input_dim"`

	// HiddenDims are the graph convolution layer widths.
	HiddenDims []int `json:"hidden_dims"`

	// NodeFeatures and EdgeFeatures record the dataset feature selection
	// the network was trained on, so that scoring can assemble entries
	// the same way. Empty means all features, sorted by name.
	NodeFeatures []string `json:"node_features,omitempty"`
	EdgeFeatures []string `json:"edge_features,omitempty"`

	Task Task `json:"task"`

	LearningRate float64 `json:"learning_rate"`
	Epochs       int     `json:"epochs"`
	BatchSize    int     `json:"batch_size"`

	// Patience stops training after this many epochs without validation
	// improvement. Zero disables early stopping.
	Patience int `json:"patience"`

	// Scaler optionally names a feature scaler fitted on the training
	// split: "minmax" or "zscore".
	Scaler string `json:"scaler,omitempty"`

	Seed int64 `json:"seed"`
}

// DefaultConfig returns a small network with sane training defaults.
func DefaultConfig(task Task) Config {
	return Config{
		HiddenDims:   []int{32, 32},
		Task:         task,
		LearningRate: 0.01,
		Epochs:       50,
		BatchSize:    8,
		Patience:     10,
		Seed:         1,
	}
}

func (c *Config) validate() error {
	if c.Task != TaskClassify && c.Task != TaskRegress {
		return errors.Errorf("unknown task: %s", c.Task)
	}
	if len(c.HiddenDims) == 0 {
		return errors.New("at least one hidden layer is required")
	}
	for _, d := range c.HiddenDims {
		if d < 1 {
			return errors.Errorf("invalid hidden layer width: %d", d)
		}
	}
	if c.LearningRate <= 0 {
		return errors.Errorf("learning rate must be positive: %v", c.LearningRate)
	}
	if c.Epochs < 1 {
		return errors.Errorf("epochs must be positive: %d", c.Epochs)
	}
	if c.BatchSize < 1 {
		return errors.Errorf("batch size must be positive: %d", c.BatchSize)
	}
	return nil
}

// distColumn resolves which edge-attr column holds the distance feature.
// With no explicit selection the dataset sorts features by name, which
// puts the builders' dist column first. Returns -1 when the selection
// leaves the distance out.
func (c *Config) distColumn() int {
	if len(c.EdgeFeatures) == 0 {
		return 0
	}
	for i, name := range c.EdgeFeatures {
		if name == graph.FeatEdgeDistance {
			return i
		}
	}
	return -1
}

// Scorer assigns a score to a dataset entry.
type Scorer interface {
	Name() string
	Predict(e *data.Entry) (float64, error)
}

// Scored pairs an entry id with its model score.
type Scored struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Rank scores all entries and returns them ordered by score descending.
func Rank(s Scorer, entries []*data.Entry) ([]Scored, error) {
	if s == nil {
		return nil, errors.New("scorer is required")
	}

	scored := make([]Scored, 0, len(entries))
	for _, e := range entries {
		v, err := s.Predict(e)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to score entry %s", e.ID)
		}
		scored = append(scored, Scored{ID: e.ID, Score: v})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored, nil
}
