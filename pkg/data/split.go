package data

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const defaultValFraction = 0.25

// ValSize expresses a validation split size as either a fraction of the
// dataset or an absolute entry count.
type ValSize struct {
	fraction float64
	count    int
	isCount  bool
}

// ValFraction returns a fractional validation size.
func ValFraction(f float64) ValSize { return ValSize{fraction: f} }

// ValCount returns an absolute validation size.
func ValCount(n int) ValSize { return ValSize{count: n, isCount: true} }

// DefaultValSize is a quarter of the dataset.
func DefaultValSize() ValSize { return ValFraction(defaultValFraction) }

// ParseValSize parses a validation size. Values with a decimal point are
// fractions, plain integers are counts, empty means the default.
func ParseValSize(s string) (ValSize, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultValSize(), nil
	}
	if strings.ContainsAny(s, ".eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return ValSize{}, errors.Wrapf(err, "invalid validation size: %s", s)
		}
		return ValFraction(f), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return ValSize{}, errors.Wrapf(err, "invalid validation size: %s", s)
	}
	return ValCount(n), nil
}

// entries resolves the validation entry count for a dataset of n entries.
func (v ValSize) entries(n int) (int, error) {
	if v.isCount {
		if v.count < 0 {
			return 0, errors.Errorf("validation count cannot be negative: %d", v.count)
		}
		if v.count >= n {
			return 0, errors.Errorf("validation count %d leaves no training data (%d entries)", v.count, n)
		}
		return v.count, nil
	}

	if v.fraction < 0 {
		return 0, errors.Errorf("validation fraction cannot be negative: %v", v.fraction)
	}
	if v.fraction >= 1 {
		return 0, errors.Errorf("validation fraction must be below 1: %v", v.fraction)
	}
	return int(v.fraction * float64(n)), nil
}

// Split partitions entry ids into train and validation sets. The shuffle
// is deterministic for a given seed.
func Split(ids []string, val ValSize, seed int64) (train, validation []string, err error) {
	if len(ids) < 2 {
		return nil, nil, errors.Errorf("cannot split %d entries", len(ids))
	}

	nVal, err := val.entries(len(ids))
	if err != nil {
		return nil, nil, err
	}

	shuffled := make([]string, len(ids))
	copy(shuffled, ids)
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	validation = shuffled[:nVal]
	train = shuffled[nVal:]

	log.Debugf("split %d entries: %d train, %d validation", len(ids), len(train), len(validation))
	return train, validation, nil
}

// CopyEntries materializes a subset of entries into a new store file.
// Entries are copied in full, targets included.
func CopyEntries(src *Store, ids []string, dstPath string) error {
	if src == nil || src.db == nil {
		return errStoreNotInitialized
	}
	if len(ids) == 0 {
		return errors.New("no entry ids to copy")
	}

	dst, err := Open(dstPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	tx, err := dst.db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	for _, id := range ids {
		var nodeCount, edgeCount int
		var checksum, created, nodes, edges string
		err := src.db.QueryRow(
			`SELECT node_count, edge_count, checksum, created, nodes, edges FROM entry WHERE id = ?`, id,
		).Scan(&nodeCount, &edgeCount, &checksum, &created, &nodes, &edges)
		if err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "failed to read entry %s", id)
		}

		if _, err := tx.Exec(insertEntrySQL, id, nodeCount, edgeCount, checksum, created, nodes, edges); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "failed to copy entry %s", id)
		}

		targets, err := src.Targets(id)
		if err != nil {
			tx.Rollback()
			return err
		}
		for name, value := range targets {
			if _, err := tx.Exec(insertTargetSQL, id, name, value); err != nil {
				tx.Rollback()
				return errors.Wrapf(err, "failed to copy target %s of %s", name, id)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	log.Debugf("copied %d entries to %s", len(ids), dstPath)
	return nil
}
