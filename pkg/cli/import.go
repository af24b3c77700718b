package cli

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	urfave "github.com/urfave/cli/v3"

	"github.com/proteograph/pint/pkg/data"
	"github.com/proteograph/pint/pkg/feature"
	"github.com/proteograph/pint/pkg/net"
	"github.com/proteograph/pint/pkg/query"
)

var (
	manifestFlag = &urfave.StringFlag{
		Name:     "manifest",
		Usage:    "Path to the YAML query manifest",
		Required: true,
	}

	featuresFlag = &urfave.StringSliceFlag{
		Name:  "feature",
		Usage: "Feature component to run (can be specified multiple times, default: all)",
	}

	workersFlag = &urfave.IntFlag{
		Name:  "workers",
		Usage: "Number of concurrent graph builders (default: one per CPU)",
	}

	importCmd = &urfave.Command{
		Name:    "import",
		Aliases: []string{"i"},
		Usage:   "Build featurized graphs from a query manifest and store them",
		UsageText: `pint import --manifest queries.yaml                  # build all queries with all features
   pint import --manifest queries.yaml --feature residue --feature pssm
   pint import --manifest queries.yaml --workers 4 --db ./graphs.db`,
		Action: cmdImport,
		Flags: []urfave.Flag{
			manifestFlag,
			featuresFlag,
			workersFlag,
		},
	}

	pdbIDFlag = &urfave.StringSliceFlag{
		Name:     "id",
		Usage:    "RCSB PDB accession code (can be specified multiple times)",
		Required: true,
	}

	pdbDirFlag = &urfave.StringFlag{
		Name:  "dir",
		Usage: "Directory to download PDB files into",
		Value: ".",
	}

	fetchCmd = &urfave.Command{
		Name:    "fetch",
		Aliases: []string{"f"},
		Usage:   "Download PDB entries from RCSB",
		Action:  cmdFetch,
		Flags: []urfave.Flag{
			pdbIDFlag,
			pdbDirFlag,
		},
	}
)

// ImportResult summarizes a manifest import.
type ImportResult struct {
	Store    string          `json:"store"`
	Queries  int             `json:"queries"`
	Saved    int             `json:"saved"`
	Entries  []string        `json:"entries,omitempty"`
	Failures []query.Failure `json:"failures,omitempty"`
	Duration string          `json:"duration"`
}

func cmdImport(ctx context.Context, c *urfave.Command) error {
	start := time.Now()
	cfg := getConfig(c)

	col, err := query.ReadManifest(c.String(manifestFlag.Name))
	if err != nil {
		return errors.Wrap(err, "failed to read manifest")
	}

	components, err := feature.Components(c.StringSlice(featuresFlag.Name)...)
	if err != nil {
		return err
	}

	workers := int(c.Int(workersFlag.Name))
	if workers == 0 {
		workers = cfg.Conf.Workers
	}

	store, err := data.Open(cfg.DBPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open store: %s", cfg.DBPath)
	}
	defer store.Close()

	log.Debugf("processing %d queries with %d workers", col.Len(), workers)
	res, err := query.Process(ctx, col, components, store, workers)
	if err != nil {
		return errors.Wrap(err, "failed to process queries")
	}

	return encode(&ImportResult{
		Store:    cfg.DBPath,
		Queries:  col.Len(),
		Saved:    len(res.Saved),
		Entries:  res.Saved,
		Failures: res.Failures,
		Duration: elapsed(start),
	})
}

// FetchResult lists the downloaded PDB files.
type FetchResult struct {
	Files    []string `json:"files"`
	Duration string   `json:"duration"`
}

func cmdFetch(_ context.Context, c *urfave.Command) error {
	start := time.Now()
	dir := c.String(pdbDirFlag.Name)

	res := &FetchResult{}
	for _, id := range c.StringSlice(pdbIDFlag.Name) {
		path, err := net.FetchPDB(id, dir)
		if err != nil {
			return errors.Wrapf(err, "failed to fetch pdb entry: %s", id)
		}
		res.Files = append(res.Files, path)
	}
	res.Duration = elapsed(start)

	return encode(res)
}
