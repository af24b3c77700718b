package feature

import (
	"math"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/proteograph/pint/pkg/graph"
	"github.com/proteograph/pint/pkg/structure"
)

const (
	probeRadius     = 1.4
	spherePointsNum = 100
)

// SurfaceComponent adds solvent accessibility features: the per-residue
// solvent-accessible surface area in the complex, and the buried surface
// area (chain-alone SASA minus complex SASA).
type SurfaceComponent struct{}

func (c *SurfaceComponent) Name() string { return "surface" }

func (c *SurfaceComponent) Add(ctx *Context, g *graph.Graph) error {
	if ctx.Structure == nil {
		return errors.New("surface features require the structure context")
	}

	complexSASA := AtomSASA(ctx.Structure.Atoms())

	// Chain-alone SASA, for the buried area of interface residues.
	chainSASA := map[string]map[*structure.Atom]float64{}
	for _, chain := range ctx.Structure.Chains {
		var atoms []*structure.Atom
		for _, r := range chain.Residues {
			atoms = append(atoms, r.Atoms...)
		}
		chainSASA[chain.ID] = AtomSASA(atoms)
	}

	for _, node := range g.Nodes() {
		residue, err := nodeResidue(node)
		if err != nil {
			return err
		}

		var bound, alone float64
		aloneByAtom := chainSASA[residue.Chain.ID]
		for _, a := range residue.Atoms {
			bound += complexSASA[a]
			alone += aloneByAtom[a]
		}

		bsa := alone - bound
		if bsa < 0 {
			// Sampling noise can push the difference slightly negative.
			bsa = 0
		}

		node.SetScalar(FeatSASA, bound)
		node.SetScalar(FeatBSA, bsa)
	}

	log.Debugf("surface features added to %s (%d nodes)", g.ID, g.NodeCount())
	return nil
}

// AtomSASA computes the solvent-accessible surface area per atom using
// Shrake-Rupley sphere sampling with a water-sized probe.
func AtomSASA(atoms []*structure.Atom) map[*structure.Atom]float64 {
	points := spherePoints(spherePointsNum)

	radii := make([]float64, len(atoms))
	for i, a := range atoms {
		radii[i] = a.VDWRadius() + probeRadius
	}

	areas := make(map[*structure.Atom]float64, len(atoms))
	for i, a := range atoms {
		// Only atoms whose expanded spheres overlap can occlude points.
		var neighbors []int
		for j, b := range atoms {
			if i == j {
				continue
			}
			if a.Position.Distance(b.Position) < radii[i]+radii[j] {
				neighbors = append(neighbors, j)
			}
		}

		accessible := 0
		for _, p := range points {
			pos := structure.Position{
				a.Position[0] + p[0]*radii[i],
				a.Position[1] + p[1]*radii[i],
				a.Position[2] + p[2]*radii[i],
			}
			occluded := false
			for _, j := range neighbors {
				if pos.Distance(atoms[j].Position) < radii[j] {
					occluded = true
					break
				}
			}
			if !occluded {
				accessible++
			}
		}

		area := 4 * math.Pi * radii[i] * radii[i]
		areas[a] = area * float64(accessible) / float64(len(points))
	}
	return areas
}

// spherePoints returns n roughly uniform unit sphere points using the
// golden spiral.
func spherePoints(n int) []structure.Position {
	points := make([]structure.Position, n)
	golden := math.Pi * (3.0 - math.Sqrt(5.0))
	for i := 0; i < n; i++ {
		y := 1.0 - 2.0*float64(i)/float64(n-1)
		r := math.Sqrt(1.0 - y*y)
		theta := golden * float64(i)
		points[i] = structure.Position{math.Cos(theta) * r, y, math.Sin(theta) * r}
	}
	return points
}
