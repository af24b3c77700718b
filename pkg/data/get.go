package data

import (
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"
)

const (
	selectIDsSQL     = `SELECT id FROM entry ORDER BY id`
	selectEntrySQL   = `SELECT nodes, edges, checksum FROM entry WHERE id = ?`
	selectTargetsSQL = `SELECT name, value FROM target WHERE entry_id = ?`
	selectCountSQL   = `SELECT COUNT(*) FROM entry`

	selectTargetCoverageSQL = `SELECT name, COUNT(*) FROM target GROUP BY name ORDER BY name`
)

// EntryIDs returns all entry ids of the store in deterministic order.
func (s *Store) EntryIDs() ([]string, error) {
	if s == nil || s.db == nil {
		return nil, errStoreNotInitialized
	}

	rows, err := s.db.Query(selectIDsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query entry ids")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "failed to scan entry id")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Has reports whether the store contains the entry.
func (s *Store) Has(id string) (bool, error) {
	if s == nil || s.db == nil {
		return false, errStoreNotInitialized
	}

	var checksum string
	err := s.db.QueryRow(`SELECT checksum FROM entry WHERE id = ?`, id).Scan(&checksum)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "failed to query entry %s", id)
	}
	return true, nil
}

// Targets returns the named target values of an entry.
func (s *Store) Targets(id string) (map[string]float64, error) {
	if s == nil || s.db == nil {
		return nil, errStoreNotInitialized
	}

	rows, err := s.db.Query(selectTargetsSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query targets of %s", id)
	}
	defer rows.Close()

	targets := map[string]float64{}
	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, errors.Wrap(err, "failed to scan target")
		}
		targets[name] = value
	}
	return targets, rows.Err()
}

// records loads the serialized node and edge records of one entry.
func (s *Store) records(id string) ([]nodeRecord, []edgeRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil, errStoreNotInitialized
	}

	var nodeJSON, edgeJSON, checksum string
	err := s.db.QueryRow(selectEntrySQL, id).Scan(&nodeJSON, &edgeJSON, &checksum)
	if err == sql.ErrNoRows {
		return nil, nil, errors.Errorf("entry not found: %s", id)
	}
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to query entry %s", id)
	}

	if contentChecksum([]byte(nodeJSON), []byte(edgeJSON)) != checksum {
		return nil, nil, errors.Errorf("entry %s failed its checksum", id)
	}

	var nodes []nodeRecord
	if err := json.Unmarshal([]byte(nodeJSON), &nodes); err != nil {
		return nil, nil, errors.Wrapf(err, "failed to unmarshal nodes of %s", id)
	}
	var edges []edgeRecord
	if err := json.Unmarshal([]byte(edgeJSON), &edges); err != nil {
		return nil, nil, errors.Wrapf(err, "failed to unmarshal edges of %s", id)
	}
	return nodes, edges, nil
}

// Stats summarizes a store: entry count and per-target coverage.
type Stats struct {
	Path    string         `json:"path"`
	Entries int            `json:"entries"`
	Targets map[string]int `json:"targets,omitempty"`
}

// GetStats returns the store summary.
func (s *Store) GetStats() (*Stats, error) {
	if s == nil || s.db == nil {
		return nil, errStoreNotInitialized
	}

	stats := &Stats{Path: s.path, Targets: map[string]int{}}
	if err := s.db.QueryRow(selectCountSQL).Scan(&stats.Entries); err != nil {
		return nil, errors.Wrap(err, "failed to count entries")
	}

	rows, err := s.db.Query(selectTargetCoverageSQL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query target coverage")
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, errors.Wrap(err, "failed to scan target coverage")
		}
		stats.Targets[name] = count
	}
	return stats, rows.Err()
}
