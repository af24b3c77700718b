package data

import (
	"sort"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Options selects what a dataset view exposes from its stores.
type Options struct {
	// NodeFeatures and EdgeFeatures name the features to assemble, in
	// order. Empty means all features of each entry, sorted by name.
	NodeFeatures []string
	EdgeFeatures []string

	// Target names the target value entries must expose. Optional for
	// inference-only datasets.
	Target string

	// Subset restricts the dataset to these entry ids.
	Subset []string

	// Filter is a CEL expression over `id` and `targets`, e.g.
	// `targets.irmsd < 10.0`. Entries failing it are left out.
	Filter string

	// Transform, when set, runs on every assembled entry.
	Transform func(*Entry) error
}

// Entry is one model-ready dataset element: the node feature matrix in
// deterministic node order, the edge index into that order, and the edge
// feature matrix.
type Entry struct {
	ID        string
	NodeKeys  []string
	X         [][]float64
	EdgeIndex [][2]int
	EdgeAttr  [][]float64
	Target    float64
	Targets   map[string]float64
}

type entryRef struct {
	store *Store
	id    string
}

// Dataset is a read view over one or more stores with feature and target
// selection, subsetting, and filtering.
type Dataset struct {
	opts Options
	refs []entryRef
}

// NewDataset builds a dataset view over the given stores.
func NewDataset(opts Options, stores ...*Store) (*Dataset, error) {
	if len(stores) == 0 {
		return nil, errors.New("at least one store is required")
	}

	d := &Dataset{opts: opts}

	var subset map[string]bool
	if len(opts.Subset) > 0 {
		subset = make(map[string]bool, len(opts.Subset))
		for _, id := range opts.Subset {
			subset[id] = true
		}
	}

	var filter func(id string, targets map[string]float64) (bool, error)
	if opts.Filter != "" {
		compiled, err := compileFilter(opts.Filter)
		if err != nil {
			return nil, err
		}
		filter = func(id string, targets map[string]float64) (bool, error) {
			return evalFilter(compiled, id, targets)
		}
	}

	for _, store := range stores {
		ids, err := store.EntryIDs()
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if subset != nil && !subset[id] {
				continue
			}
			if filter != nil {
				targets, err := store.Targets(id)
				if err != nil {
					return nil, err
				}
				keep, err := filter(id, targets)
				if err != nil {
					return nil, err
				}
				if !keep {
					log.Debugf("filtered out entry %s", id)
					continue
				}
			}
			d.refs = append(d.refs, entryRef{store: store, id: id})
		}
	}

	return d, nil
}

// Len returns the number of entries in the view.
func (d *Dataset) Len() int { return len(d.refs) }

// IDs returns the entry ids in view order.
func (d *Dataset) IDs() []string {
	ids := make([]string, len(d.refs))
	for i, r := range d.refs {
		ids[i] = r.id
	}
	return ids
}

// Get assembles the i-th entry.
func (d *Dataset) Get(i int) (*Entry, error) {
	if i < 0 || i >= len(d.refs) {
		return nil, errors.Errorf("entry index out of range: %d of %d", i, len(d.refs))
	}
	ref := d.refs[i]

	nodes, edges, err := ref.store.records(ref.id)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, errors.Errorf("entry %s has no nodes", ref.id)
	}

	nodeFeatures := d.opts.NodeFeatures
	if len(nodeFeatures) == 0 {
		nodeFeatures = featureNames(nodes[0].Features)
	}
	edgeFeatures := d.opts.EdgeFeatures
	if len(edgeFeatures) == 0 && len(edges) > 0 {
		edgeFeatures = featureNames(edges[0].Features)
	}

	entry := &Entry{ID: ref.id}

	nodeIndex := make(map[string]int, len(nodes))
	for idx, n := range nodes {
		nodeIndex[n.Key] = idx
		entry.NodeKeys = append(entry.NodeKeys, n.Key)

		row, err := assembleRow(n.Features, nodeFeatures)
		if err != nil {
			return nil, errors.Wrapf(err, "entry %s node %s", ref.id, n.Key)
		}
		entry.X = append(entry.X, row)
	}

	for _, e := range edges {
		i1, ok := nodeIndex[e.Key1]
		if !ok {
			return nil, errors.Errorf("entry %s edge references unknown node: %s", ref.id, e.Key1)
		}
		i2, ok := nodeIndex[e.Key2]
		if !ok {
			return nil, errors.Errorf("entry %s edge references unknown node: %s", ref.id, e.Key2)
		}
		entry.EdgeIndex = append(entry.EdgeIndex, [2]int{i1, i2})

		row, err := assembleRow(e.Features, edgeFeatures)
		if err != nil {
			return nil, errors.Wrapf(err, "entry %s edge %s-%s", ref.id, e.Key1, e.Key2)
		}
		entry.EdgeAttr = append(entry.EdgeAttr, row)
	}

	entry.Targets, err = ref.store.Targets(ref.id)
	if err != nil {
		return nil, err
	}
	if d.opts.Target != "" {
		v, ok := entry.Targets[d.opts.Target]
		if !ok {
			return nil, errors.Errorf("entry %s misses target: %s", ref.id, d.opts.Target)
		}
		entry.Target = v
	}

	if d.opts.Transform != nil {
		if err := d.opts.Transform(entry); err != nil {
			return nil, errors.Wrapf(err, "transform failed on entry %s", ref.id)
		}
	}
	return entry, nil
}

// Entries assembles all entries of the view.
func (d *Dataset) Entries() ([]*Entry, error) {
	entries := make([]*Entry, 0, d.Len())
	for i := 0; i < d.Len(); i++ {
		e, err := d.Get(i)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func featureNames(features map[string][]float64) []string {
	names := make([]string, 0, len(features))
	for name := range features {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func assembleRow(features map[string][]float64, names []string) ([]float64, error) {
	var row []float64
	for _, name := range names {
		vec, ok := features[name]
		if !ok {
			return nil, errors.Errorf("misses feature: %s", name)
		}
		row = append(row, vec...)
	}
	return row, nil
}
