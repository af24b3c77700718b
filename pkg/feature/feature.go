package feature

import (
	"github.com/pkg/errors"

	"github.com/proteograph/pint/pkg/graph"
	"github.com/proteograph/pint/pkg/structure"
)

// Node feature names written by the built-in components.
const (
	FeatResidueType  = "restype"
	FeatCharge       = "charge"
	FeatPolarity     = "polarity"
	FeatChain        = "chain"
	FeatPosition     = "pos"
	FeatPSSM         = "pssm"
	FeatInfoContent  = "ic"
	FeatConservation = "conservation"
	FeatConservDiff  = "conservation_diff"
	FeatSASA         = "sasa"
	FeatBSA          = "bsa"
	FeatHSE          = "hse"
	FeatDepth        = "depth"
)

// Variant describes a single residue variant within a structure.
type Variant struct {
	Residue   *structure.Residue
	Wildtype  *structure.AminoAcid
	VariantAA *structure.AminoAcid
}

// Context carries the structural context a component needs to featurize
// a graph. ChainID1/ChainID2 define the chain code ordering for interface
// graphs; Variant is set for single residue variant graphs only.
type Context struct {
	Structure *structure.Structure
	ChainID1  string
	ChainID2  string
	Variant   *Variant
}

// Component adds one family of features to every node (or edge) of a
// graph. Components must leave all nodes with the same feature set,
// zero-filling where a value is undefined.
type Component interface {
	Name() string
	Add(ctx *Context, g *graph.Graph) error
}

// Components returns the named built-in components, or an error naming the
// first unknown one. With no names given, all components are returned.
func Components(names ...string) ([]Component, error) {
	all := []Component{
		&ResidueComponent{},
		&PSSMComponent{},
		&SurfaceComponent{},
		&ExposureComponent{},
	}
	if len(names) == 0 {
		return all, nil
	}

	byName := map[string]Component{}
	for _, c := range all {
		byName[c.Name()] = c
	}

	var selected []Component
	for _, name := range names {
		c, ok := byName[name]
		if !ok {
			return nil, errors.Errorf("unknown feature component: %s", name)
		}
		selected = append(selected, c)
	}
	return selected, nil
}

// nodeResidue resolves the residue behind a node, which for atomic graphs
// is the parent residue of the node atom.
func nodeResidue(n *graph.Node) (*structure.Residue, error) {
	switch {
	case n.Residue != nil:
		return n.Residue, nil
	case n.Atom != nil:
		return n.Atom.Residue, nil
	default:
		return nil, errors.Errorf("node %s has neither residue nor atom", n.Key)
	}
}
