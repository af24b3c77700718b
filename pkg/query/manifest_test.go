package query

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadManifest(t *testing.T) {
	col, err := ReadManifest(filepath.Join("testdata", "manifest.yaml"))
	require.NoError(t, err)
	require.NotNil(t, col)
	assert.Equal(t, 2, col.Len())

	queries := col.Queries()

	iq, ok := queries[0].(*InterfaceQuery)
	require.True(t, ok)
	assert.Equal(t, "1xyz:A-B", iq.ID())
	assert.Equal(t, filepath.Join("testdata", "1xyz.pdb"), iq.PDBPath)
	assert.InDelta(t, 4.2, iq.Targets()["irmsd"], 1e-9)

	vq, ok := queries[1].(*VariantQuery)
	require.True(t, ok)
	assert.Equal(t, "1xyz:A:2:C->A", vq.ID())
	assert.Equal(t, filepath.Join("testdata", "1xyz.A.pssm"), vq.PSSMPaths["A"])
}

func TestReadManifestErrors(t *testing.T) {
	_, err := ReadManifest("")
	assert.Error(t, err)

	_, err = ReadManifest(filepath.Join("testdata", "nope.yaml"))
	assert.Error(t, err)
}

func TestManifestValidation(t *testing.T) {
	tests := []struct {
		name     string
		manifest Manifest
	}{
		{"no queries", Manifest{}},
		{"interface missing pdb", Manifest{Interfaces: []ManifestInterface{{Chains: []string{"A", "B"}}}}},
		{"wrong chain count", Manifest{Interfaces: []ManifestInterface{{PDB: "x.pdb", Chains: []string{"A"}}}}},
		{"variant missing pdb", Manifest{Variants: []ManifestVariant{{Chain: "A", Residue: 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.manifest.Collection(".")
			assert.Error(t, err)
		})
	}
}

func TestManifestCutoffOverrides(t *testing.T) {
	m := Manifest{
		Cutoffs: ManifestCutoffs{Interface: 6.0, Internal: 2.5},
		Interfaces: []ManifestInterface{
			{PDB: "x.pdb", Chains: []string{"A", "B"}},
		},
	}

	col, err := m.Collection("/base")
	require.NoError(t, err)

	iq := col.Queries()[0].(*InterfaceQuery)
	assert.InDelta(t, 6.0, iq.InterfaceCutoff, 1e-9)
	assert.InDelta(t, 2.5, iq.InternalCutoff, 1e-9)
	assert.Equal(t, filepath.Join("/base", "x.pdb"), iq.PDBPath)
}
