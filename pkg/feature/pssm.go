package feature

import (
	"github.com/pkg/errors"

	"github.com/proteograph/pint/pkg/graph"
)

// PSSMComponent adds evolutionary conservation features from the chain
// PSSM tables: the 20-value profile, information content, and for variant
// graphs the wildtype conservation and the variant-wildtype difference.
type PSSMComponent struct{}

func (c *PSSMComponent) Name() string { return "pssm" }

func (c *PSSMComponent) Add(ctx *Context, g *graph.Graph) error {
	for _, node := range g.Nodes() {
		residue, err := nodeResidue(node)
		if err != nil {
			return err
		}

		row, err := residue.PSSMRow()
		if err != nil {
			return errors.Wrapf(err, "graph %s", g.ID)
		}

		node.Features[FeatPSSM] = row.Profile()
		node.SetScalar(FeatInfoContent, row.InformationContent)

		if ctx.Variant == nil {
			continue
		}

		// All nodes must carry the same feature set, so non-variant nodes
		// get zeros for the variant features.
		if residue != ctx.Variant.Residue {
			node.SetScalar(FeatConservation, 0.0)
			node.SetScalar(FeatConservDiff, 0.0)
			continue
		}

		wildtype := row.Conservation(ctx.Variant.Wildtype)
		variant := row.Conservation(ctx.Variant.VariantAA)
		node.SetScalar(FeatConservation, wildtype)
		node.SetScalar(FeatConservDiff, variant-wildtype)
	}
	return nil
}
