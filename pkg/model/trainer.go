package model

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/proteograph/pint/pkg/data"
	"github.com/proteograph/pint/pkg/feature"
)

// EpochStats records one training epoch.
type EpochStats struct {
	Epoch     int     `json:"epoch"`
	TrainLoss float64 `json:"train_loss"`
	ValLoss   float64 `json:"val_loss,omitempty"`
}

// History is the full training record.
type History struct {
	Epochs    []EpochStats `json:"epochs"`
	BestEpoch int          `json:"best_epoch"`
	BestLoss  float64      `json:"best_loss"`
}

// Train fits a network on the training entries with mini-batch gradient
// descent, tracking validation loss per epoch. The returned network
// carries the weights of the best epoch.
func Train(cfg Config, trainEntries, valEntries []*data.Entry) (*GraphNet, *History, error) {
	if len(trainEntries) == 0 {
		return nil, nil, errors.New("no training entries")
	}
	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}

	if cfg.InputDim == 0 {
		if len(trainEntries[0].X) == 0 {
			return nil, nil, errors.Errorf("entry %s has no nodes", trainEntries[0].ID)
		}
		cfg.InputDim = len(trainEntries[0].X[0])
	}

	net, err := NewGraphNet(cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Scaler != "" {
		scaler, err := feature.NewScaler(cfg.Scaler)
		if err != nil {
			return nil, nil, err
		}
		var rows [][]float64
		for _, e := range trainEntries {
			rows = append(rows, e.X...)
		}
		if err := scaler.Fit(rows); err != nil {
			return nil, nil, errors.Wrap(err, "failed to fit feature scaler")
		}
		net.Scaler = scaler
	}

	r := rand.New(rand.NewSource(cfg.Seed))
	order := make([]int, len(trainEntries))
	for i := range order {
		order[i] = i
	}

	hist := &History{BestEpoch: -1, BestLoss: math.Inf(1)}
	var best *GraphNet
	sinceBest := 0

	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		r.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		trainLoss := 0.0
		for start := 0; start < len(order); start += cfg.BatchSize {
			end := start + cfg.BatchSize
			if end > len(order) {
				end = len(order)
			}

			grads := newGradients(net)
			for _, idx := range order[start:end] {
				e := trainEntries[idx]
				state, err := net.forward(e)
				if err != nil {
					return nil, nil, err
				}
				trainLoss += net.loss(state.output, e.Target)
				net.backward(state, e.Target, grads)
			}
			grads.apply(net, cfg.LearningRate/float64(end-start))
		}
		trainLoss /= float64(len(order))

		stats := EpochStats{Epoch: epoch, TrainLoss: trainLoss}

		monitored := trainLoss
		if len(valEntries) > 0 {
			valLoss, err := Evaluate(net, valEntries)
			if err != nil {
				return nil, nil, err
			}
			stats.ValLoss = valLoss
			monitored = valLoss
		}
		hist.Epochs = append(hist.Epochs, stats)

		log.Debugf("epoch %d: train loss %.6f, val loss %.6f", epoch, stats.TrainLoss, stats.ValLoss)

		if monitored < hist.BestLoss {
			hist.BestLoss = monitored
			hist.BestEpoch = epoch
			best = net.clone()
			sinceBest = 0
			continue
		}
		sinceBest++
		if cfg.Patience > 0 && sinceBest >= cfg.Patience {
			log.Debugf("early stop at epoch %d, best was %d", epoch, hist.BestEpoch)
			break
		}
	}

	if best != nil {
		best.Scaler = net.Scaler
		return best, hist, nil
	}
	return net, hist, nil
}

// Evaluate returns the mean loss over the entries.
func Evaluate(net *GraphNet, entries []*data.Entry) (float64, error) {
	if len(entries) == 0 {
		return 0, errors.New("no entries to evaluate")
	}
	total := 0.0
	for _, e := range entries {
		state, err := net.forward(e)
		if err != nil {
			return 0, err
		}
		total += net.loss(state.output, e.Target)
	}
	return total / float64(len(entries)), nil
}

// Accuracy returns the fraction of entries classified correctly with a
// 0.5 threshold. Only meaningful for classification networks.
func Accuracy(net *GraphNet, entries []*data.Entry) (float64, error) {
	if net.Config.Task != TaskClassify {
		return 0, errors.Errorf("accuracy requires a %s network", TaskClassify)
	}
	if len(entries) == 0 {
		return 0, errors.New("no entries to evaluate")
	}

	correct := 0
	for _, e := range entries {
		p, err := net.Predict(e)
		if err != nil {
			return 0, err
		}
		predicted := 0.0
		if p >= 0.5 {
			predicted = 1.0
		}
		if predicted == e.Target {
			correct++
		}
	}
	return float64(correct) / float64(len(entries)), nil
}

const epsilon = 1e-12

// loss is binary cross-entropy for classification, half squared error
// for regression.
func (n *GraphNet) loss(output, target float64) float64 {
	if n.Config.Task == TaskClassify {
		p := math.Min(math.Max(output, epsilon), 1-epsilon)
		return -(target*math.Log(p) + (1-target)*math.Log(1-p))
	}
	d := output - target
	return 0.5 * d * d
}

// gradients accumulates parameter gradients over a batch.
type gradients struct {
	conv []*convLayer
	head *denseLayer
}

func newGradients(net *GraphNet) *gradients {
	g := &gradients{head: &denseLayer{W: make([]float64, len(net.Head.W))}}
	for _, layer := range net.Conv {
		out := len(layer.Bias)
		in := len(layer.WSelf[0])
		g.conv = append(g.conv, &convLayer{
			WSelf:  zeros(out, in),
			WNeigh: zeros(out, in),
			Bias:   make([]float64, out),
		})
	}
	return g
}

func zeros(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

// backward accumulates the gradients for one entry. For both tasks the
// head pre-activation gradient reduces to (output - target): BCE through
// a sigmoid for classification, squared error for regression.
func (n *GraphNet) backward(state *forwardState, target float64, g *gradients) {
	dzOut := state.output - target

	floats.AddScaled(g.head.W, dzOut, state.pooled)
	g.head.Bias += dzOut

	// Mean pooling spreads the head gradient evenly over the nodes.
	nodes := len(state.x)
	dH := make([][]float64, nodes)
	for i := range dH {
		dH[i] = make([]float64, len(n.Head.W))
		floats.AddScaled(dH[i], dzOut/float64(nodes), n.Head.W)
	}

	// Total neighbor weights per node, for the aggregation gradient.
	totals := make([]float64, nodes)
	for i, nbs := range state.neighbors {
		for _, nb := range nbs {
			totals[i] += nb.weight
		}
	}

	for l := len(n.Conv) - 1; l >= 0; l-- {
		layer := n.Conv[l]
		grad := g.conv[l]
		h := state.inputs[l]
		agg := state.aggregates[l]
		pre := state.pre[l]
		out := len(layer.Bias)
		in := len(layer.WSelf[0])

		dz := make([][]float64, nodes)
		for i := 0; i < nodes; i++ {
			dz[i] = make([]float64, out)
			for j := 0; j < out; j++ {
				if pre[i][j] > 0 {
					dz[i][j] = dH[i][j]
				}
			}
			for j := 0; j < out; j++ {
				if dz[i][j] == 0 {
					continue
				}
				grad.Bias[j] += dz[i][j]
				floats.AddScaled(grad.WSelf[j], dz[i][j], h[i])
				floats.AddScaled(grad.WNeigh[j], dz[i][j], agg[i])
			}
		}

		dHPrev := make([][]float64, nodes)
		for i := range dHPrev {
			dHPrev[i] = make([]float64, in)
			for j := 0; j < out; j++ {
				if dz[i][j] != 0 {
					floats.AddScaled(dHPrev[i], dz[i][j], layer.WSelf[j])
				}
			}
		}

		// Each node state also flowed into its neighbors' aggregates.
		for k := 0; k < nodes; k++ {
			if totals[k] == 0 {
				continue
			}
			for _, nb := range state.neighbors[k] {
				scale := nb.weight / totals[k]
				for j := 0; j < out; j++ {
					if dz[k][j] != 0 {
						floats.AddScaled(dHPrev[nb.index], scale*dz[k][j], layer.WNeigh[j])
					}
				}
			}
		}

		dH = dHPrev
	}
}

// apply performs one gradient descent step with the given rate.
func (g *gradients) apply(net *GraphNet, rate float64) {
	for l, layer := range net.Conv {
		grad := g.conv[l]
		for j := range layer.Bias {
			layer.Bias[j] -= rate * grad.Bias[j]
			floats.AddScaled(layer.WSelf[j], -rate, grad.WSelf[j])
			floats.AddScaled(layer.WNeigh[j], -rate, grad.WNeigh[j])
		}
	}
	floats.AddScaled(net.Head.W, -rate, g.head.W)
	net.Head.Bias -= rate * g.head.Bias
}

// clone deep-copies the network weights.
func (n *GraphNet) clone() *GraphNet {
	c := &GraphNet{Config: n.Config, Scaler: n.Scaler}
	for _, layer := range n.Conv {
		cl := &convLayer{Bias: append([]float64(nil), layer.Bias...)}
		for _, row := range layer.WSelf {
			cl.WSelf = append(cl.WSelf, append([]float64(nil), row...))
		}
		for _, row := range layer.WNeigh {
			cl.WNeigh = append(cl.WNeigh, append([]float64(nil), row...))
		}
		c.Conv = append(c.Conv, cl)
	}
	c.Head = &denseLayer{W: append([]float64(nil), n.Head.W...), Bias: n.Head.Bias}
	return c
}
