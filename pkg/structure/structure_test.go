package structure

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestStructure(t *testing.T) *Structure {
	t.Helper()
	s, err := ParsePDBFile(filepath.Join("testdata", "1xyz.pdb"))
	require.NoError(t, err)
	return s
}

func TestPositionDistance(t *testing.T) {
	p1 := Position{0, 0, 0}
	p2 := Position{3, 4, 0}
	assert.InDelta(t, 5.0, p1.Distance(p2), 1e-9)
	assert.InDelta(t, 5.0, p2.Distance(p1), 1e-9)
	assert.InDelta(t, 0.0, p1.Distance(p1), 1e-9)
}

func TestResidueIdentity(t *testing.T) {
	s := loadTestStructure(t)
	r := s.GetChain("A").Residues[1]

	assert.Equal(t, "2", r.ID())
	assert.Equal(t, "A:2", r.Key())
	assert.Equal(t, "A CYS 2", r.String())
}

func TestResidueCentroid(t *testing.T) {
	s := loadTestStructure(t)
	b := s.GetChain("B").Residues[0]

	c, err := b.Centroid()
	require.NoError(t, err)
	assert.InDelta(t, (3.0+4.3+5.4+5.3)/4, c[0], 1e-9)

	empty := &Residue{Chain: s.GetChain("B"), Number: 99}
	_, err = empty.Centroid()
	assert.Error(t, err)
}

func TestResidueDistance(t *testing.T) {
	s := loadTestStructure(t)
	a1 := s.GetChain("A").Residues[0]
	a2 := s.GetChain("A").Residues[1]

	// Peptide bond C-N distance between consecutive residues.
	assert.InDelta(t, 1.3038, ResidueDistance(a1, a2), 1e-3)
}

func TestContactPairs(t *testing.T) {
	s := loadTestStructure(t)

	pairs, err := ContactPairs(s, "A", "B", 8.5)
	require.NoError(t, err)
	assert.Len(t, pairs, 2)

	pairs, err = ContactPairs(s, "A", "B", 2.0)
	require.NoError(t, err)
	assert.Empty(t, pairs)

	_, err = ContactPairs(s, "A", "X", 8.5)
	assert.Error(t, err)
}

func TestSurroundingResidues(t *testing.T) {
	s := loadTestStructure(t)
	center := s.GetChain("A").Residues[1]

	found := SurroundingResidues(s, center, 10.0)
	assert.Len(t, found, 3)

	found = SurroundingResidues(s, center, 0.1)
	assert.Len(t, found, 1)
	assert.Same(t, center, found[0])
}

func TestAminoAcidLookup(t *testing.T) {
	ala := AminoAcidByCode("ALA")
	require.NotNil(t, ala)
	assert.Equal(t, "A", ala.OneLetterCode)

	cys := AminoAcidByLetter("C")
	require.NotNil(t, cys)
	assert.Equal(t, "CYS", cys.ThreeLetterCode)

	assert.Nil(t, AminoAcidByCode("XXX"))
	assert.Nil(t, AminoAcidByLetter("Z"))
	assert.Len(t, AminoAcids, 20)
}

func TestPolarityOneHot(t *testing.T) {
	arg := AminoAcidByCode("ARG")
	require.NotNil(t, arg)

	hot := arg.Polarity.OneHot()
	assert.Len(t, hot, 4)

	sum := 0.0
	for _, v := range hot {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestVDWRadius(t *testing.T) {
	s := loadTestStructure(t)
	sg := s.GetChain("A").Residues[1].GetAtom("SG")
	require.NotNil(t, sg)
	assert.Greater(t, sg.VDWRadius(), 1.7)

	n := s.GetChain("B").Residues[0].GetAtom("N")
	require.NotNil(t, n)
	assert.Greater(t, n.VDWRadius(), 0.0)
}
