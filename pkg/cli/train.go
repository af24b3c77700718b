package cli

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	urfave "github.com/urfave/cli/v3"

	"github.com/proteograph/pint/pkg/data"
	"github.com/proteograph/pint/pkg/model"
)

var (
	targetFlag = &urfave.StringFlag{
		Name:     "target",
		Usage:    "Name of the target value to train against (e.g. irmsd, binary)",
		Required: true,
	}

	taskFlag = &urfave.StringFlag{
		Name:  "task",
		Usage: "Training task [classify, regress]",
		Value: string(model.TaskRegress),
	}

	nodeFeatureFlag = &urfave.StringSliceFlag{
		Name:  "node-feature",
		Usage: "Node feature to include (can be specified multiple times, default: all)",
	}

	edgeFeatureFlag = &urfave.StringSliceFlag{
		Name:  "edge-feature",
		Usage: "Edge feature to include (can be specified multiple times, default: all)",
	}

	valDBFlag = &urfave.StringFlag{
		Name:  "val-db",
		Usage: "Path to a separate validation store (default: split from the main store)",
	}

	epochsFlag = &urfave.IntFlag{
		Name:  "epochs",
		Usage: "Number of training epochs (default: from config)",
	}

	rateFlag = &urfave.FloatFlag{
		Name:  "rate",
		Usage: "Learning rate (default: from config)",
	}

	modelOutFlag = &urfave.StringFlag{
		Name:  "out",
		Usage: "Path of the model weights file to write",
		Value: "model.json",
	}

	trainCmd = &urfave.Command{
		Name:    "train",
		Aliases: []string{"t"},
		Usage:   "Train a graph network on a dataset store",
		UsageText: `pint train --target irmsd                                  # regress irmsd
   pint train --target binary --task classify --out model.json
   pint train --target irmsd --val-db val.db --epochs 100 --rate 0.005
   pint train --target irmsd --filter 'targets.irmsd < 10.0'`,
		Action: cmdTrain,
		Flags: []urfave.Flag{
			targetFlag,
			taskFlag,
			nodeFeatureFlag,
			edgeFeatureFlag,
			valDBFlag,
			valSizeFlag,
			seedFlag,
			filterFlag,
			epochsFlag,
			rateFlag,
			modelOutFlag,
		},
	}
)

// TrainResult summarizes a training run.
type TrainResult struct {
	Model      string         `json:"model"`
	Task       string         `json:"task"`
	Target     string         `json:"target"`
	TrainCount int            `json:"train_count"`
	ValCount   int            `json:"val_count"`
	History    *model.History `json:"history"`
	Accuracy   float64        `json:"accuracy,omitempty"`
	Duration   string         `json:"duration"`
}

func cmdTrain(_ context.Context, c *urfave.Command) error {
	start := time.Now()
	appCfg := getConfig(c)

	opts := data.Options{
		NodeFeatures: c.StringSlice(nodeFeatureFlag.Name),
		EdgeFeatures: c.StringSlice(edgeFeatureFlag.Name),
		Target:       c.String(targetFlag.Name),
		Filter:       c.String(filterFlag.Name),
	}

	trainEntries, valEntries, err := loadTrainingData(c, opts)
	if err != nil {
		return err
	}
	log.Debugf("training on %d entries, validating on %d",
		len(trainEntries), len(valEntries))

	cfg := trainConfig(c, appCfg)
	net, history, err := model.Train(cfg, trainEntries, valEntries)
	if err != nil {
		return errors.Wrap(err, "training failed")
	}

	out := c.String(modelOutFlag.Name)
	if err := net.Save(out); err != nil {
		return errors.Wrapf(err, "failed to save model: %s", out)
	}

	res := &TrainResult{
		Model:      out,
		Task:       string(cfg.Task),
		Target:     opts.Target,
		TrainCount: len(trainEntries),
		ValCount:   len(valEntries),
		History:    history,
		Duration:   elapsed(start),
	}

	if cfg.Task == model.TaskClassify && len(valEntries) > 0 {
		acc, err := model.Accuracy(net, valEntries)
		if err != nil {
			return err
		}
		res.Accuracy = acc
	}

	return encode(res)
}

// loadTrainingData assembles the train and validation entries, either from
// two stores or by splitting the main store in memory.
func loadTrainingData(c *urfave.Command, opts data.Options) (train, validation []*data.Entry, err error) {
	appCfg := getConfig(c)

	store, err := data.Open(appCfg.DBPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open store: %s", appCfg.DBPath)
	}
	defer store.Close()

	if valPath := c.String(valDBFlag.Name); valPath != "" {
		valStore, err := data.Open(valPath)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to open validation store: %s", valPath)
		}
		defer valStore.Close()

		train, err = entries(opts, store)
		if err != nil {
			return nil, nil, err
		}
		validation, err = entries(opts, valStore)
		if err != nil {
			return nil, nil, err
		}
		return train, validation, nil
	}

	val, err := data.ParseValSize(c.String(valSizeFlag.Name))
	if err != nil {
		return nil, nil, err
	}

	ds, err := data.NewDataset(opts, store)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to build dataset view")
	}

	trainIDs, valIDs, err := data.Split(ds.IDs(), val, int64(c.Int(seedFlag.Name)))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to split dataset")
	}

	trainOpts := opts
	trainOpts.Subset = trainIDs
	train, err = entries(trainOpts, store)
	if err != nil {
		return nil, nil, err
	}

	// a zero validation size means train-only
	if len(valIDs) > 0 {
		valOpts := opts
		valOpts.Subset = valIDs
		validation, err = entries(valOpts, store)
		if err != nil {
			return nil, nil, err
		}
	}
	return train, validation, nil
}

func entries(opts data.Options, store *data.Store) ([]*data.Entry, error) {
	ds, err := data.NewDataset(opts, store)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build dataset view")
	}
	list, err := ds.Entries()
	if err != nil {
		return nil, errors.Wrap(err, "failed to assemble dataset entries")
	}
	return list, nil
}

// trainConfig merges the app config hyperparameters with the flag overrides.
func trainConfig(c *urfave.Command, appCfg *appConfig) model.Config {
	m := appCfg.Conf.Model
	cfg := model.Config{
		HiddenDims:   m.HiddenDims,
		NodeFeatures: c.StringSlice(nodeFeatureFlag.Name),
		EdgeFeatures: c.StringSlice(edgeFeatureFlag.Name),
		Task:         model.Task(c.String(taskFlag.Name)),
		LearningRate: m.LearningRate,
		Epochs:       m.Epochs,
		BatchSize:    m.BatchSize,
		Patience:     m.Patience,
		Scaler:       m.Scaler,
		Seed:         m.Seed,
	}
	if e := int(c.Int(epochsFlag.Name)); e > 0 {
		cfg.Epochs = e
	}
	if r := c.Float(rateFlag.Name); r > 0 {
		cfg.LearningRate = r
	}
	return cfg
}
