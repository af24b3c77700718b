package graph

import (
	"github.com/pkg/errors"

	"github.com/proteograph/pint/pkg/structure"
)

// Edge feature names shared by both graph resolutions.
const (
	FeatEdgeDistance = "dist"
	FeatEdgeType     = "etype"
)

// Edge type codes stored in the FeatEdgeType feature.
const (
	EdgeInternal  = 0.0
	EdgeInterface = 1.0
)

// BuildResidueGraph builds a residue-level graph from interface contact
// pairs. Pairs become interface edges; residues of the same chain closer
// than internalCutoff become internal edges. Every edge carries its
// distance and type.
func BuildResidueGraph(id string, targets map[string]float64, pairs [][2]*structure.Residue, internalCutoff float64) (*Graph, error) {
	if len(pairs) == 0 {
		return nil, errors.Errorf("no contact pairs for graph %s", id)
	}

	g := New(id, targets)

	perChain := map[string][]*structure.Residue{}
	seen := map[string]bool{}

	addResidue := func(r *structure.Residue) {
		if seen[r.Key()] {
			return
		}
		seen[r.Key()] = true
		perChain[r.Chain.ID] = append(perChain[r.Chain.ID], r)
		g.AddNode(&Node{Key: r.Key(), Residue: r, Features: map[string][]float64{}})
	}

	for _, pair := range pairs {
		r1, r2 := pair[0], pair[1]
		addResidue(r1)
		addResidue(r2)

		e := &Edge{Key1: r1.Key(), Key2: r2.Key(), Features: map[string][]float64{}}
		e.SetScalar(FeatEdgeDistance, structure.ResidueDistance(r1, r2))
		e.SetScalar(FeatEdgeType, EdgeInterface)
		g.AddEdge(e)
	}

	// Internal edges within each chain of the interface.
	for _, residues := range perChain {
		for i, r1 := range residues {
			for _, r2 := range residues[i+1:] {
				d := structure.ResidueDistance(r1, r2)
				if d >= internalCutoff {
					continue
				}
				e := &Edge{Key1: r1.Key(), Key2: r2.Key(), Features: map[string][]float64{}}
				e.SetScalar(FeatEdgeDistance, d)
				e.SetScalar(FeatEdgeType, EdgeInternal)
				g.AddEdge(e)
			}
		}
	}

	return g, nil
}

// AtomicCutoffs holds the distance cutoffs for atom-level edges.
type AtomicCutoffs struct {
	// Bonded is the max distance for a covalent bond edge.
	Bonded float64
	// Nonbonded is the max distance for a nonbonded contact edge.
	Nonbonded float64
	// Disulfide is the max SG-SG distance treated as a disulfide bond.
	Disulfide float64
}

// DefaultAtomicCutoffs returns the standard atomic edge cutoffs in Ångström.
func DefaultAtomicCutoffs() AtomicCutoffs {
	return AtomicCutoffs{Bonded: 1.6, Nonbonded: 4.5, Disulfide: 2.2}
}

// BuildAtomicGraph builds an atom-level graph. Atom pairs under the bonded
// cutoff, and gamma sulfur pairs under the disulfide cutoff, become
// internal edges; other pairs under the nonbonded cutoff become interface
// edges.
func BuildAtomicGraph(id string, targets map[string]float64, atoms []*structure.Atom, cutoffs AtomicCutoffs) (*Graph, error) {
	if len(atoms) == 0 {
		return nil, errors.Errorf("no atoms for graph %s", id)
	}

	g := New(id, targets)
	for _, a := range atoms {
		g.AddNode(&Node{Key: a.String(), Atom: a, Features: map[string][]float64{}})
	}

	for i, a1 := range atoms {
		for _, a2 := range atoms[i+1:] {
			d := a1.Position.Distance(a2.Position)
			if d >= cutoffs.Nonbonded {
				continue
			}

			etype := EdgeInterface
			if d < cutoffs.Bonded {
				etype = EdgeInternal
			} else if a1.Name == "SG" && a2.Name == "SG" && d < cutoffs.Disulfide {
				etype = EdgeInternal
			}

			e := &Edge{Key1: a1.String(), Key2: a2.String(), Features: map[string][]float64{}}
			e.SetScalar(FeatEdgeDistance, d)
			e.SetScalar(FeatEdgeType, etype)
			g.AddEdge(e)
		}
	}

	if g.EdgeCount() == 0 {
		return nil, errors.Errorf("no atom contacts under %.1f Å for graph %s", cutoffs.Nonbonded, id)
	}
	return g, nil
}
