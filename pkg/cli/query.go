package cli

import (
	"context"

	"github.com/pkg/errors"
	urfave "github.com/urfave/cli/v3"

	"github.com/proteograph/pint/pkg/data"
)

var (
	filterFlag = &urfave.StringFlag{
		Name:  "filter",
		Usage: "CEL expression over id and targets (e.g. 'targets.irmsd < 10.0')",
	}

	entryIDFlag = &urfave.StringFlag{
		Name:     "id",
		Usage:    "Dataset entry id",
		Required: true,
	}

	queryCmd = &urfave.Command{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "List dataset query operations",
		Commands: []*urfave.Command{
			{
				Name:    "entries",
				Usage:   "List dataset entry ids",
				Aliases: []string{"e"},
				Action:  cmdQueryEntries,
				Flags: []urfave.Flag{
					filterFlag,
				},
			},
			{
				Name:    "targets",
				Usage:   "Get the target values of a dataset entry",
				Aliases: []string{"t"},
				Action:  cmdQueryTargets,
				Flags: []urfave.Flag{
					entryIDFlag,
				},
			},
			{
				Name:    "stats",
				Usage:   "Get dataset store statistics",
				Aliases: []string{"s"},
				Action:  cmdQueryStats,
			},
		},
	}
)

// EntryList is the result of an entry listing.
type EntryList struct {
	Store   string   `json:"store"`
	Count   int      `json:"count"`
	Entries []string `json:"entries"`
}

func cmdQueryEntries(_ context.Context, c *urfave.Command) error {
	cfg := getConfig(c)

	store, err := data.Open(cfg.DBPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open store: %s", cfg.DBPath)
	}
	defer store.Close()

	ds, err := data.NewDataset(data.Options{Filter: c.String(filterFlag.Name)}, store)
	if err != nil {
		return errors.Wrap(err, "failed to build dataset view")
	}

	ids := ds.IDs()
	return encode(&EntryList{
		Store:   cfg.DBPath,
		Count:   len(ids),
		Entries: ids,
	})
}

// EntryTargets is the result of a target lookup.
type EntryTargets struct {
	ID      string             `json:"id"`
	Targets map[string]float64 `json:"targets"`
}

func cmdQueryTargets(_ context.Context, c *urfave.Command) error {
	cfg := getConfig(c)
	id := c.String(entryIDFlag.Name)

	store, err := data.Open(cfg.DBPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open store: %s", cfg.DBPath)
	}
	defer store.Close()

	ok, err := store.Has(id)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Errorf("entry not found: %s", id)
	}

	targets, err := store.Targets(id)
	if err != nil {
		return errors.Wrapf(err, "failed to get targets for entry: %s", id)
	}

	return encode(&EntryTargets{ID: id, Targets: targets})
}

func cmdQueryStats(_ context.Context, c *urfave.Command) error {
	cfg := getConfig(c)

	store, err := data.Open(cfg.DBPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open store: %s", cfg.DBPath)
	}
	defer store.Close()

	stats, err := store.GetStats()
	if err != nil {
		return errors.Wrap(err, "failed to get store stats")
	}

	return encode(stats)
}
