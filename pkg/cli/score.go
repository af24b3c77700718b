package cli

import (
	"context"
	"time"

	"github.com/pkg/errors"
	urfave "github.com/urfave/cli/v3"

	"github.com/proteograph/pint/pkg/data"
	"github.com/proteograph/pint/pkg/model"
)

var (
	modelFileFlag = &urfave.StringFlag{
		Name:     "model",
		Usage:    "Path to the model weights file",
		Required: true,
	}

	scoreLimitFlag = &urfave.IntFlag{
		Name:  "limit",
		Usage: "Limits number of results returned (default: all)",
	}

	scoreCmd = &urfave.Command{
		Name:    "score",
		Aliases: []string{"s"},
		Usage:   "Score and rank dataset entries with a trained model",
		UsageText: `pint score --model model.json
   pint score --model model.json --filter 'targets.irmsd < 10.0' --limit 10`,
		Action: cmdScore,
		Flags: []urfave.Flag{
			modelFileFlag,
			filterFlag,
			scoreLimitFlag,
		},
	}
)

// ScoreResult is a ranked scoring run.
type ScoreResult struct {
	Model    string         `json:"model"`
	Store    string         `json:"store"`
	Ranked   []model.Scored `json:"ranked"`
	Duration string         `json:"duration"`
}

func cmdScore(_ context.Context, c *urfave.Command) error {
	start := time.Now()
	cfg := getConfig(c)

	path := c.String(modelFileFlag.Name)
	net, err := model.Load(path)
	if err != nil {
		return errors.Wrapf(err, "failed to load model: %s", path)
	}

	store, err := data.Open(cfg.DBPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open store: %s", cfg.DBPath)
	}
	defer store.Close()

	// Assemble entries with the feature selection the model was trained on.
	opts := data.Options{
		NodeFeatures: net.Config.NodeFeatures,
		EdgeFeatures: net.Config.EdgeFeatures,
		Filter:       c.String(filterFlag.Name),
	}
	list, err := entries(opts, store)
	if err != nil {
		return err
	}

	ranked, err := model.Rank(net, list)
	if err != nil {
		return errors.Wrap(err, "failed to rank entries")
	}

	if limit := int(c.Int(scoreLimitFlag.Name)); limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}

	return encode(&ScoreResult{
		Model:    path,
		Store:    cfg.DBPath,
		Ranked:   ranked,
		Duration: elapsed(start),
	})
}
