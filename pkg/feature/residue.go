package feature

import (
	"github.com/pkg/errors"

	"github.com/proteograph/pint/pkg/graph"
)

// ResidueComponent adds the physicochemical residue features: amino acid
// type one-hot, charge, polarity one-hot, chain code, and position.
type ResidueComponent struct{}

func (c *ResidueComponent) Name() string { return "residue" }

func (c *ResidueComponent) Add(ctx *Context, g *graph.Graph) error {
	for _, node := range g.Nodes() {
		residue, err := nodeResidue(node)
		if err != nil {
			return err
		}
		if residue.AminoAcid == nil {
			return errors.Errorf("non-standard residue in graph %s: %s", g.ID, residue)
		}

		node.Features[FeatResidueType] = residue.AminoAcid.OneHot()
		node.Features[FeatPolarity] = residue.AminoAcid.Polarity.OneHot()
		node.SetScalar(FeatCharge, residue.AminoAcid.Charge)

		chainCode := 0.0
		if ctx.ChainID2 != "" && residue.Chain.ID == ctx.ChainID2 {
			chainCode = 1.0
		}
		node.SetScalar(FeatChain, chainCode)

		if node.Atom != nil {
			node.Features[FeatPosition] = node.Atom.Position[:]
			continue
		}
		centroid, err := residue.Centroid()
		if err != nil {
			return errors.Wrapf(err, "graph %s", g.ID)
		}
		node.Features[FeatPosition] = centroid[:]
	}
	return nil
}
