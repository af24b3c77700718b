package data

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/proteograph/pint/pkg/graph"
)

const (
	insertEntrySQL = `INSERT INTO entry (
			id, node_count, edge_count, checksum, created, nodes, edges
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			node_count = excluded.node_count,
			edge_count = excluded.edge_count,
			checksum = excluded.checksum,
			created = excluded.created,
			nodes = excluded.nodes,
			edges = excluded.edges
	`

	insertTargetSQL = `INSERT INTO target (entry_id, name, value) VALUES (?, ?, ?)
		ON CONFLICT(entry_id, name) DO UPDATE SET value = excluded.value
	`

	deleteTargetsSQL = `DELETE FROM target WHERE entry_id = ?`
)

// nodeRecord and edgeRecord are the serialized graph forms.
type nodeRecord struct {
	Key      string               `json:"key"`
	Features map[string][]float64 `json:"features"`
}

type edgeRecord struct {
	Key1     string               `json:"key1"`
	Key2     string               `json:"key2"`
	Features map[string][]float64 `json:"features"`
}

// SaveGraph persists one graph as a dataset entry, replacing any previous
// entry with the same id.
func (s *Store) SaveGraph(g *graph.Graph) error {
	if s == nil || s.db == nil {
		return errStoreNotInitialized
	}
	if g == nil || g.ID == "" {
		return errors.New("graph with an id is required")
	}
	if g.NodeCount() == 0 {
		return errors.Errorf("graph %s has no nodes", g.ID)
	}

	nodes := make([]nodeRecord, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		nodes = append(nodes, nodeRecord{Key: n.Key, Features: n.Features})
	}
	edges := make([]edgeRecord, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		edges = append(edges, edgeRecord{Key1: e.Key1, Key2: e.Key2, Features: e.Features})
	}

	nodeJSON, err := json.Marshal(nodes)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal nodes of %s", g.ID)
	}
	edgeJSON, err := json.Marshal(edges)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal edges of %s", g.ID)
	}

	checksum := contentChecksum(nodeJSON, edgeJSON)

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	created := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(insertEntrySQL, g.ID, g.NodeCount(), g.EdgeCount(), checksum, created, string(nodeJSON), string(edgeJSON)); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "failed to insert entry %s", g.ID)
	}

	if _, err := tx.Exec(deleteTargetsSQL, g.ID); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "failed to clear targets of %s", g.ID)
	}
	for name, value := range g.Targets {
		if _, err := tx.Exec(insertTargetSQL, g.ID, name, value); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "failed to insert target %s of %s", name, g.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	log.Debugf("saved entry %s: %d nodes, %d edges", g.ID, g.NodeCount(), g.EdgeCount())
	return nil
}

// SaveAll persists a batch of graphs.
func (s *Store) SaveAll(graphs []*graph.Graph) error {
	for _, g := range graphs {
		if err := s.SaveGraph(g); err != nil {
			return err
		}
	}
	return nil
}

// contentChecksum fingerprints the serialized graph content.
func contentChecksum(nodeJSON, edgeJSON []byte) string {
	h := xxhash.New()
	h.Write(nodeJSON)
	h.Write(edgeJSON)
	return fmt.Sprintf("%016x", h.Sum64())
}
