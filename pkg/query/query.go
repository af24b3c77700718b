package query

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/proteograph/pint/pkg/feature"
	"github.com/proteograph/pint/pkg/graph"
	"github.com/proteograph/pint/pkg/structure"
)

// Default distance cutoffs in Ångström.
const (
	DefaultInterfaceCutoff = 8.5
	DefaultInternalCutoff  = 3.0
	DefaultVariantRadius   = 10.0
)

// Query represents one entity of interest, like a protein-protein
// interface or a single residue variant, and knows how to convert it
// into a featurized graph.
type Query interface {
	// ID uniquely identifies the query within a collection.
	ID() string

	// Targets returns the named target values associated with the query.
	Targets() map[string]float64

	// Build parses the structure and produces the featurized graph.
	Build(ctx context.Context, components []feature.Component) (*graph.Graph, error)
}

// InterfaceQuery builds a residue-level graph from the residues at the
// interface between two chains.
type InterfaceQuery struct {
	PDBPath   string
	ChainID1  string
	ChainID2  string
	PSSMPaths map[string]string

	InterfaceCutoff float64
	InternalCutoff  float64

	TargetValues map[string]float64
}

// ID returns "<model>:<chain1>-<chain2>".
func (q *InterfaceQuery) ID() string {
	return fmt.Sprintf("%s:%s-%s", modelID(q.PDBPath), q.ChainID1, q.ChainID2)
}

func (q *InterfaceQuery) Targets() map[string]float64 { return q.TargetValues }

func (q *InterfaceQuery) Build(ctx context.Context, components []feature.Component) (*graph.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q.ChainID1 == "" || q.ChainID2 == "" {
		return nil, errors.New("both chain ids are required")
	}

	interfaceCutoff := q.InterfaceCutoff
	if interfaceCutoff == 0 {
		interfaceCutoff = DefaultInterfaceCutoff
	}
	internalCutoff := q.InternalCutoff
	if internalCutoff == 0 {
		internalCutoff = DefaultInternalCutoff
	}

	s, err := structure.ParsePDBFile(q.PDBPath)
	if err != nil {
		return nil, err
	}
	if err := attachPSSM(s, q.PSSMPaths); err != nil {
		return nil, err
	}

	pairs, err := structure.ContactPairs(s, q.ChainID1, q.ChainID2, interfaceCutoff)
	if err != nil {
		return nil, err
	}

	// Residues without a standard amino acid, or missing from an attached
	// PSSM, cannot be featurized and are left out of the graph.
	valid := pairs[:0]
	for _, pair := range pairs {
		if residueValid(pair[0]) && residueValid(pair[1]) {
			valid = append(valid, pair)
		}
	}
	if len(valid) == 0 {
		return nil, errors.Errorf("no interface residues found for %s", q.ID())
	}

	g, err := graph.BuildResidueGraph(q.ID(), q.TargetValues, valid, internalCutoff)
	if err != nil {
		return nil, err
	}

	fctx := &feature.Context{Structure: s, ChainID1: q.ChainID1, ChainID2: q.ChainID2}
	if err := addFeatures(fctx, g, components); err != nil {
		return nil, err
	}
	return g, nil
}

// VariantQuery builds an atom-level graph for the neighborhood of a
// single residue variant.
type VariantQuery struct {
	PDBPath       string
	ChainID       string
	ResidueNumber int
	InsertionCode string

	// Wildtype and Variant are amino acid one-letter codes.
	Wildtype string
	Variant  string

	PSSMPaths map[string]string

	Radius  float64
	Cutoffs graph.AtomicCutoffs

	TargetValues map[string]float64
}

func (q *VariantQuery) residueID() string {
	return fmt.Sprintf("%d%s", q.ResidueNumber, q.InsertionCode)
}

// ID returns "<model>:<chain>:<residue>:<wt>-><variant>".
func (q *VariantQuery) ID() string {
	return fmt.Sprintf("%s:%s:%s:%s->%s", modelID(q.PDBPath), q.ChainID, q.residueID(), q.Wildtype, q.Variant)
}

func (q *VariantQuery) Targets() map[string]float64 { return q.TargetValues }

func (q *VariantQuery) Build(ctx context.Context, components []feature.Component) (*graph.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wildtype := structure.AminoAcidByLetter(q.Wildtype)
	variant := structure.AminoAcidByLetter(q.Variant)
	if wildtype == nil || variant == nil {
		return nil, errors.Errorf("invalid amino acid codes: %q -> %q", q.Wildtype, q.Variant)
	}

	radius := q.Radius
	if radius == 0 {
		radius = DefaultVariantRadius
	}
	cutoffs := q.Cutoffs
	defaults := graph.DefaultAtomicCutoffs()
	if cutoffs.Bonded == 0 {
		cutoffs.Bonded = defaults.Bonded
	}
	if cutoffs.Nonbonded == 0 {
		cutoffs.Nonbonded = defaults.Nonbonded
	}
	if cutoffs.Disulfide == 0 {
		cutoffs.Disulfide = defaults.Disulfide
	}

	s, err := structure.ParsePDBFile(q.PDBPath)
	if err != nil {
		return nil, err
	}
	if err := attachPSSM(s, q.PSSMPaths); err != nil {
		return nil, err
	}

	chain := s.GetChain(q.ChainID)
	if chain == nil {
		return nil, errors.Errorf("chain %s not found in %s", q.ChainID, q.PDBPath)
	}

	var center *structure.Residue
	for _, r := range chain.Residues {
		if r.Number == q.ResidueNumber && r.InsertionCode == q.InsertionCode {
			center = r
			break
		}
	}
	if center == nil {
		return nil, errors.Errorf("residue %s:%s not found in %s", q.ChainID, q.residueID(), q.PDBPath)
	}

	var atoms []*structure.Atom
	for _, r := range structure.SurroundingResidues(s, center, radius) {
		if !residueValid(r) {
			log.Debugf("skipping residue %s: not featurizable", r)
			continue
		}
		atoms = append(atoms, r.Atoms...)
	}

	g, err := graph.BuildAtomicGraph(q.ID(), q.TargetValues, atoms, cutoffs)
	if err != nil {
		return nil, err
	}

	fctx := &feature.Context{
		Structure: s,
		ChainID1:  q.ChainID,
		Variant:   &feature.Variant{Residue: center, Wildtype: wildtype, VariantAA: variant},
	}
	if err := addFeatures(fctx, g, components); err != nil {
		return nil, err
	}
	return g, nil
}

func addFeatures(fctx *feature.Context, g *graph.Graph, components []feature.Component) error {
	for _, c := range components {
		if err := c.Add(fctx, g); err != nil {
			return errors.Wrapf(err, "feature component %s", c.Name())
		}
	}
	return nil
}

func attachPSSM(s *structure.Structure, paths map[string]string) error {
	if len(paths) == 0 {
		return nil
	}
	for _, chain := range s.Chains {
		path, ok := paths[chain.ID]
		if !ok {
			continue
		}
		table, err := structure.ParsePSSMFile(path)
		if err != nil {
			return err
		}
		chain.PSSM = table
	}
	return nil
}

// residueValid reports whether the residue can be featurized: it has a
// standard amino acid and, when a PSSM is attached to its chain, a row in
// that PSSM.
func residueValid(r *structure.Residue) bool {
	if r.AminoAcid == nil {
		return false
	}
	if r.Chain.PSSM != nil && r.Chain.PSSM.Get(r) == nil {
		log.Debugf("residue %s not in pssm", r)
		return false
	}
	return true
}

func modelID(pdbPath string) string {
	return strings.TrimSuffix(filepath.Base(pdbPath), filepath.Ext(pdbPath))
}

// Collection is an ordered set of queries with unique ids.
type Collection struct {
	queries []Query
	ids     map[string]bool
}

// NewCollection creates an empty query collection.
func NewCollection() *Collection {
	return &Collection{ids: map[string]bool{}}
}

// Add appends a query, rejecting duplicate ids.
func (c *Collection) Add(q Query) error {
	id := q.ID()
	if c.ids[id] {
		return errors.Errorf("duplicate query id: %s", id)
	}
	c.ids[id] = true
	c.queries = append(c.queries, q)
	return nil
}

// Queries returns the queries in insertion order.
func (c *Collection) Queries() []Query { return c.queries }

// Len returns the number of queries.
func (c *Collection) Len() int { return len(c.queries) }
