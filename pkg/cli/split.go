package cli

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	urfave "github.com/urfave/cli/v3"

	"github.com/proteograph/pint/pkg/data"
)

var (
	valSizeFlag = &urfave.StringFlag{
		Name:  "val",
		Usage: "Validation size: a fraction like 0.25 or an entry count like 40",
		Value: "0.25",
	}

	seedFlag = &urfave.IntFlag{
		Name:  "seed",
		Usage: "Random seed for the shuffle",
		Value: 1,
	}

	trainOutFlag = &urfave.StringFlag{
		Name:     "train-out",
		Usage:    "Path of the training store to create",
		Required: true,
	}

	valOutFlag = &urfave.StringFlag{
		Name:     "val-out",
		Usage:    "Path of the validation store to create",
		Required: true,
	}

	splitCmd = &urfave.Command{
		Name:    "split",
		Aliases: []string{"sp"},
		Usage:   "Split a dataset store into train and validation stores",
		UsageText: `pint split --train-out train.db --val-out val.db                # 25% validation
   pint split --val 0.1 --train-out train.db --val-out val.db
   pint split --val 40 --seed 7 --train-out train.db --val-out val.db
   pint split --filter 'targets.irmsd < 10.0' --train-out train.db --val-out val.db`,
		Action: cmdSplit,
		Flags: []urfave.Flag{
			valSizeFlag,
			seedFlag,
			filterFlag,
			trainOutFlag,
			valOutFlag,
		},
	}
)

// SplitResult summarizes a dataset split.
type SplitResult struct {
	Source     string `json:"source"`
	TrainStore string `json:"train_store"`
	TrainCount int    `json:"train_count"`
	ValStore   string `json:"val_store"`
	ValCount   int    `json:"val_count"`
	Duration   string `json:"duration"`
}

func cmdSplit(_ context.Context, c *urfave.Command) error {
	start := time.Now()
	cfg := getConfig(c)

	val, err := data.ParseValSize(c.String(valSizeFlag.Name))
	if err != nil {
		return err
	}

	store, err := data.Open(cfg.DBPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open store: %s", cfg.DBPath)
	}
	defer store.Close()

	ds, err := data.NewDataset(data.Options{Filter: c.String(filterFlag.Name)}, store)
	if err != nil {
		return errors.Wrap(err, "failed to build dataset view")
	}

	train, validation, err := data.Split(ds.IDs(), val, int64(c.Int(seedFlag.Name)))
	if err != nil {
		return errors.Wrap(err, "failed to split dataset")
	}
	log.Debugf("split %d entries into %d train, %d validation",
		ds.Len(), len(train), len(validation))

	trainOut := c.String(trainOutFlag.Name)
	if err := data.CopyEntries(store, train, trainOut); err != nil {
		return errors.Wrapf(err, "failed to write train store: %s", trainOut)
	}

	valOut := c.String(valOutFlag.Name)
	if err := data.CopyEntries(store, validation, valOut); err != nil {
		return errors.Wrapf(err, "failed to write validation store: %s", valOut)
	}

	return encode(&SplitResult{
		Source:     cfg.DBPath,
		TrainStore: trainOut,
		TrainCount: len(train),
		ValStore:   valOut,
		ValCount:   len(validation),
		Duration:   elapsed(start),
	})
}
