package query

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proteograph/pint/pkg/feature"
	"github.com/proteograph/pint/pkg/graph"
)

func testPDB() string {
	return filepath.Join("testdata", "1xyz.pdb")
}

func testPSSMPaths() map[string]string {
	return map[string]string{
		"A": filepath.Join("testdata", "1xyz.A.pssm"),
		"B": filepath.Join("testdata", "1xyz.B.pssm"),
	}
}

func TestInterfaceQueryID(t *testing.T) {
	q := &InterfaceQuery{PDBPath: "/data/1ak4.pdb", ChainID1: "C", ChainID2: "D"}
	assert.Equal(t, "1ak4:C-D", q.ID())
}

func TestInterfaceQueryBuild(t *testing.T) {
	q := &InterfaceQuery{
		PDBPath:      testPDB(),
		ChainID1:     "A",
		ChainID2:     "B",
		PSSMPaths:    testPSSMPaths(),
		TargetValues: map[string]float64{"irmsd": 4.2},
	}

	components, err := feature.Components("residue", "pssm")
	require.NoError(t, err)

	g, err := q.Build(context.Background(), components)
	require.NoError(t, err)
	require.NotNil(t, g)

	assert.Equal(t, "1xyz:A-B", g.ID)
	assert.Equal(t, 3, g.NodeCount())
	assert.InDelta(t, 4.2, g.Targets["irmsd"], 1e-9)

	// Both chains touch chain B within the default cutoff, plus the
	// internal A:1-A:2 peptide bond edge.
	assert.Equal(t, 3, g.EdgeCount())

	n := g.Node("A:1")
	require.NotNil(t, n)
	assert.Len(t, n.Features[feature.FeatResidueType], 20)
	assert.Len(t, n.Features[feature.FeatPSSM], 20)
}

func TestInterfaceQueryBuildErrors(t *testing.T) {
	components, err := feature.Components("residue")
	require.NoError(t, err)

	tests := []struct {
		name  string
		query *InterfaceQuery
	}{
		{"missing chains", &InterfaceQuery{PDBPath: testPDB()}},
		{"missing pdb", &InterfaceQuery{PDBPath: "testdata/nope.pdb", ChainID1: "A", ChainID2: "B"}},
		{"unknown chain", &InterfaceQuery{PDBPath: testPDB(), ChainID1: "A", ChainID2: "X"}},
		{"no contacts", &InterfaceQuery{PDBPath: testPDB(), ChainID1: "A", ChainID2: "B", InterfaceCutoff: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.query.Build(context.Background(), components)
			assert.Error(t, err)
		})
	}
}

func TestInterfaceQueryBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := &InterfaceQuery{PDBPath: testPDB(), ChainID1: "A", ChainID2: "B"}
	_, err := q.Build(ctx, nil)
	assert.Error(t, err)
}

func TestVariantQueryID(t *testing.T) {
	q := &VariantQuery{
		PDBPath:       "/data/1xyz.pdb",
		ChainID:       "A",
		ResidueNumber: 27,
		InsertionCode: "B",
		Wildtype:      "C",
		Variant:       "A",
	}
	assert.Equal(t, "1xyz:A:27B:C->A", q.ID())
}

func TestVariantQueryBuild(t *testing.T) {
	q := &VariantQuery{
		PDBPath:       testPDB(),
		ChainID:       "A",
		ResidueNumber: 2,
		Wildtype:      "C",
		Variant:       "A",
		PSSMPaths:     testPSSMPaths(),
		TargetValues:  map[string]float64{"binary": 0},
	}

	components, err := feature.Components("residue", "pssm")
	require.NoError(t, err)

	g, err := q.Build(context.Background(), components)
	require.NoError(t, err)

	// All 15 atoms of the complex fall inside the default radius.
	assert.Equal(t, 15, g.NodeCount())
	assert.Greater(t, g.EdgeCount(), 0)

	for _, n := range g.Nodes() {
		require.NotNil(t, n.Atom)
		require.Len(t, n.Features[feature.FeatConservation], 1)
	}
}

func TestVariantQueryBuildErrors(t *testing.T) {
	tests := []struct {
		name  string
		query *VariantQuery
	}{
		{"bad amino acid", &VariantQuery{PDBPath: testPDB(), ChainID: "A", ResidueNumber: 2, Wildtype: "Z", Variant: "A"}},
		{"unknown chain", &VariantQuery{PDBPath: testPDB(), ChainID: "X", ResidueNumber: 2, Wildtype: "C", Variant: "A"}},
		{"unknown residue", &VariantQuery{PDBPath: testPDB(), ChainID: "A", ResidueNumber: 99, Wildtype: "C", Variant: "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.query.Build(context.Background(), nil)
			assert.Error(t, err)
		})
	}
}

func TestVariantQueryCutoffDefaults(t *testing.T) {
	q := &VariantQuery{
		PDBPath:       testPDB(),
		ChainID:       "A",
		ResidueNumber: 2,
		Wildtype:      "C",
		Variant:       "A",
		Cutoffs:       graph.AtomicCutoffs{Nonbonded: 6.0},
	}

	g, err := q.Build(context.Background(), nil)
	require.NoError(t, err)
	assert.Greater(t, g.EdgeCount(), 0)
}

func TestCollectionRejectsDuplicates(t *testing.T) {
	col := NewCollection()

	q := &InterfaceQuery{PDBPath: testPDB(), ChainID1: "A", ChainID2: "B"}
	require.NoError(t, col.Add(q))
	assert.Equal(t, 1, col.Len())

	err := col.Add(&InterfaceQuery{PDBPath: testPDB(), ChainID1: "A", ChainID2: "B"})
	assert.Error(t, err)
	assert.Equal(t, 1, col.Len())
}
