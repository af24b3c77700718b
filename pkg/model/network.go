package model

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/proteograph/pint/pkg/data"
	"github.com/proteograph/pint/pkg/feature"
)

// convLayer is one graph convolution: each node combines its own state
// with the weighted mean of its neighbors.
type convLayer struct {
	WSelf  [][]float64 `json:"w_self"`  // [out][in]
	WNeigh [][]float64 `json:"w_neigh"` // [out][in]
	Bias   []float64   `json:"bias"`
}

// denseLayer is the scalar output head.
type denseLayer struct {
	W    []float64 `json:"w"`
	Bias float64   `json:"bias"`
}

// GraphNet is a message-passing network: graph convolutions with ReLU,
// global mean pooling, and a dense scalar head. Classification runs the
// head output through a sigmoid.
type GraphNet struct {
	Config Config       `json:"config"`
	Conv   []*convLayer `json:"conv"`
	Head   *denseLayer  `json:"head"`

	// Scaler is the feature scaler fitted during training, nil when
	// training ran without one.
	Scaler feature.Scaler `json:"-"`
}

// NewGraphNet initializes a network with Xavier-scaled random weights.
func NewGraphNet(cfg Config) (*GraphNet, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.InputDim < 1 {
		return nil, errors.Errorf("invalid input dimension: %d", cfg.InputDim)
	}

	r := rand.New(rand.NewSource(cfg.Seed))

	net := &GraphNet{Config: cfg}
	in := cfg.InputDim
	for _, out := range cfg.HiddenDims {
		net.Conv = append(net.Conv, &convLayer{
			WSelf:  xavier(r, out, in),
			WNeigh: xavier(r, out, in),
			Bias:   make([]float64, out),
		})
		in = out
	}
	net.Head = &denseLayer{W: xavierRow(r, in), Bias: 0}
	return net, nil
}

func xavier(r *rand.Rand, rows, cols int) [][]float64 {
	w := make([][]float64, rows)
	for i := range w {
		w[i] = xavierRowN(r, cols, rows+cols)
	}
	return w
}

func xavierRow(r *rand.Rand, cols int) []float64 {
	return xavierRowN(r, cols, cols+1)
}

func xavierRowN(r *rand.Rand, cols, fan int) []float64 {
	scale := math.Sqrt(2.0 / float64(fan))
	row := make([]float64, cols)
	for i := range row {
		row[i] = r.NormFloat64() * scale
	}
	return row
}

func (n *GraphNet) Name() string { return "graphnet" }

// Predict runs the forward pass and returns the entry score.
func (n *GraphNet) Predict(e *data.Entry) (float64, error) {
	state, err := n.forward(e)
	if err != nil {
		return 0, err
	}
	return state.output, nil
}

// forwardState keeps the intermediates of one forward pass for backprop.
type forwardState struct {
	x          [][]float64   // scaled input rows
	inputs     [][][]float64 // per layer: node states fed in
	aggregates [][][]float64 // per layer: aggregated neighbor states
	pre        [][][]float64 // per layer: pre-activation values
	pooled     []float64
	headPre    float64
	output     float64

	neighbors [][]neighbor
}

type neighbor struct {
	index  int
	weight float64
}

// forward computes the network output for one entry.
func (n *GraphNet) forward(e *data.Entry) (*forwardState, error) {
	if len(e.X) == 0 {
		return nil, errors.Errorf("entry %s has no nodes", e.ID)
	}
	if len(e.X[0]) != n.Config.InputDim {
		return nil, errors.Errorf("entry %s has %d node features, network expects %d",
			e.ID, len(e.X[0]), n.Config.InputDim)
	}

	state := &forwardState{}

	// Scale the input rows when a scaler was fitted.
	state.x = make([][]float64, len(e.X))
	for i, row := range e.X {
		if n.Scaler != nil {
			scaled, err := n.Scaler.Transform(row)
			if err != nil {
				return nil, errors.Wrapf(err, "entry %s", e.ID)
			}
			state.x[i] = scaled
			continue
		}
		state.x[i] = row
	}

	state.neighbors = adjacency(len(e.X), e.EdgeIndex, e.EdgeAttr, n.Config.distColumn())

	h := state.x
	for _, layer := range n.Conv {
		out := len(layer.Bias)

		agg := aggregate(h, state.neighbors)
		pre := make([][]float64, len(h))
		next := make([][]float64, len(h))
		for i := range h {
			pre[i] = make([]float64, out)
			next[i] = make([]float64, out)
			for j := 0; j < out; j++ {
				z := layer.Bias[j] +
					floats.Dot(layer.WSelf[j], h[i]) +
					floats.Dot(layer.WNeigh[j], agg[i])
				pre[i][j] = z
				if z > 0 {
					next[i][j] = z
				}
			}
		}

		state.inputs = append(state.inputs, h)
		state.aggregates = append(state.aggregates, agg)
		state.pre = append(state.pre, pre)
		h = next
	}

	state.pooled = meanPool(h)
	state.headPre = n.Head.Bias + floats.Dot(n.Head.W, state.pooled)

	state.output = state.headPre
	if n.Config.Task == TaskClassify {
		state.output = sigmoid(state.headPre)
	}
	return state, nil
}

// adjacency converts the undirected edge index into per-node neighbor
// lists. Neighbor contributions decay with the edge distance, read from
// the distCol edge feature column; distCol < 0 means no distance feature
// is available and all edges weigh 1.
func adjacency(n int, edgeIndex [][2]int, edgeAttr [][]float64, distCol int) [][]neighbor {
	neighbors := make([][]neighbor, n)
	for k, e := range edgeIndex {
		w := 1.0
		if distCol >= 0 && k < len(edgeAttr) && distCol < len(edgeAttr[k]) {
			w = 1.0 / (1.0 + edgeAttr[k][distCol])
		}
		neighbors[e[0]] = append(neighbors[e[0]], neighbor{index: e[1], weight: w})
		neighbors[e[1]] = append(neighbors[e[1]], neighbor{index: e[0], weight: w})
	}
	return neighbors
}

// aggregate computes the weighted mean neighbor state per node. Isolated
// nodes aggregate to zero.
func aggregate(h [][]float64, neighbors [][]neighbor) [][]float64 {
	dim := len(h[0])
	agg := make([][]float64, len(h))
	for i := range h {
		agg[i] = make([]float64, dim)
		total := 0.0
		for _, nb := range neighbors[i] {
			floats.AddScaled(agg[i], nb.weight, h[nb.index])
			total += nb.weight
		}
		if total > 0 {
			floats.Scale(1.0/total, agg[i])
		}
	}
	return agg
}

func meanPool(h [][]float64) []float64 {
	pooled := make([]float64, len(h[0]))
	for _, row := range h {
		floats.Add(pooled, row)
	}
	floats.Scale(1.0/float64(len(h)), pooled)
	return pooled
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
