package feature

import (
	"math"

	"github.com/pkg/errors"

	"github.com/proteograph/pint/pkg/graph"
	"github.com/proteograph/pint/pkg/structure"
)

const (
	// hseRadius is the neighbor sphere radius for half-sphere exposure.
	hseRadius = 13.0

	// surfaceAtomSASA marks an atom as solvent exposed.
	surfaceAtomSASA = 0.1
)

// ExposureComponent adds burial features: half-sphere exposure (CA
// neighbor counts above and below the CA-CB plane) and an approximate
// residue depth (mean atom distance to the nearest solvent-exposed atom).
type ExposureComponent struct{}

func (c *ExposureComponent) Name() string { return "exposure" }

func (c *ExposureComponent) Add(ctx *Context, g *graph.Graph) error {
	if ctx.Structure == nil {
		return errors.New("exposure features require the structure context")
	}

	// All CA positions of the structure, for neighbor counting.
	var caPositions []structure.Position
	for _, chain := range ctx.Structure.Chains {
		for _, r := range chain.Residues {
			if ca := r.GetAtom("CA"); ca != nil {
				caPositions = append(caPositions, ca.Position)
			}
		}
	}

	// Solvent-exposed atoms of the whole complex, for residue depth.
	atoms := ctx.Structure.Atoms()
	sasa := AtomSASA(atoms)
	var surface []structure.Position
	for _, a := range atoms {
		if sasa[a] > surfaceAtomSASA {
			surface = append(surface, a.Position)
		}
	}
	if len(surface) == 0 {
		return errors.Errorf("no solvent-exposed atoms in %s", ctx.Structure.ID)
	}

	for _, node := range g.Nodes() {
		residue, err := nodeResidue(node)
		if err != nil {
			return err
		}

		up, down := halfSphereExposure(residue, caPositions)
		node.Features[FeatHSE] = []float64{float64(up), float64(down)}

		node.SetScalar(FeatDepth, residueDepth(residue, surface))
	}
	return nil
}

// halfSphereExposure counts CA neighbors within the exposure sphere,
// split by the side of the CA-CB plane they fall on. Glycines, which have
// no CB, use the backbone pseudo-CB direction instead.
func halfSphereExposure(r *structure.Residue, caPositions []structure.Position) (up, down int) {
	ca := r.GetAtom("CA")
	if ca == nil {
		return 0, 0
	}

	dir, ok := sideChainDirection(r, ca)
	if !ok {
		return 0, 0
	}

	for _, p := range caPositions {
		d := ca.Position.Distance(p)
		if d == 0 || d > hseRadius {
			continue
		}
		dot := (p[0]-ca.Position[0])*dir[0] +
			(p[1]-ca.Position[1])*dir[1] +
			(p[2]-ca.Position[2])*dir[2]
		if dot > 0 {
			up++
		} else {
			down++
		}
	}
	return up, down
}

func sideChainDirection(r *structure.Residue, ca *structure.Atom) (structure.Position, bool) {
	if cb := r.GetAtom("CB"); cb != nil {
		return structure.Position{
			cb.Position[0] - ca.Position[0],
			cb.Position[1] - ca.Position[1],
			cb.Position[2] - ca.Position[2],
		}, true
	}

	// Pseudo-CB: opposite the midpoint of the backbone N and C atoms.
	n := r.GetAtom("N")
	c := r.GetAtom("C")
	if n == nil || c == nil {
		return structure.Position{}, false
	}
	return structure.Position{
		ca.Position[0] - (n.Position[0]+c.Position[0])/2,
		ca.Position[1] - (n.Position[1]+c.Position[1])/2,
		ca.Position[2] - (n.Position[2]+c.Position[2])/2,
	}, true
}

// residueDepth approximates how deeply a residue is buried as the mean,
// over its atoms, of the distance to the closest solvent-exposed atom.
func residueDepth(r *structure.Residue, surface []structure.Position) float64 {
	if len(r.Atoms) == 0 {
		return 0
	}

	total := 0.0
	for _, a := range r.Atoms {
		min := math.Inf(1)
		for _, s := range surface {
			if d := a.Position.Distance(s); d < min {
				min = d
			}
		}
		total += min
	}
	return total / float64(len(r.Atoms))
}
