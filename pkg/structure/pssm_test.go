package structure

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePSSMFile(t *testing.T) {
	table, err := ParsePSSMFile(filepath.Join("testdata", "1xyz.A.pssm"))
	require.NoError(t, err)
	require.NotNil(t, table)
	assert.Equal(t, 2, table.Len())
}

func TestPSSMRowLookup(t *testing.T) {
	s := loadTestStructure(t)
	chain := s.GetChain("A")

	table, err := ParsePSSMFile(filepath.Join("testdata", "1xyz.A.pssm"))
	require.NoError(t, err)
	chain.PSSM = table

	row, err := chain.Residues[0].PSSMRow()
	require.NoError(t, err)
	assert.InDelta(t, 0.21, row.InformationContent, 1e-9)
	assert.InDelta(t, 0.8, row.Conservation(AminoAcidByLetter("A")), 1e-9)
	assert.InDelta(t, 0.01, row.Conservation(AminoAcidByLetter("W")), 1e-9)
}

func TestPSSMRowNotCovered(t *testing.T) {
	s := loadTestStructure(t)
	chain := s.GetChain("A")

	_, err := chain.Residues[0].PSSMRow()
	assert.Error(t, err)

	table, err := ParsePSSMFile(filepath.Join("testdata", "1xyz.A.pssm"))
	require.NoError(t, err)
	chain.PSSM = table

	missing := &Residue{Chain: chain, Number: 99}
	_, err = missing.PSSMRow()
	assert.Error(t, err)
}

func TestPSSMProfileOrder(t *testing.T) {
	table, err := ParsePSSMFile(filepath.Join("testdata", "1xyz.A.pssm"))
	require.NoError(t, err)

	chain := &Chain{ID: "A"}
	r := &Residue{Chain: chain, Number: 1}
	row := table.Get(r)
	require.NotNil(t, row)

	profile := row.Profile()
	require.Len(t, profile, 20)
	// A sorts first in the one-letter ordering.
	assert.InDelta(t, 0.8, profile[0], 1e-9)
	for _, v := range profile[1:] {
		assert.InDelta(t, 0.01, v, 1e-9)
	}
}

func TestParsePSSMErrors(t *testing.T) {
	header := "pdbresi pdbresn seqresi seqresn A C D E F G H I K L M N P Q R S T V W Y IC"
	scores := strings.Repeat("0.05 ", 20)

	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"missing header column", "pdbresi pdbresn\n"},
		{"unknown amino acid", header + "\n1 Z 1 Z " + scores + "0.1\n"},
		{"invalid residue number", header + "\nx A x A " + scores + "0.1\n"},
		{"short row", header + "\n1 A 1 A 0.05\n"},
		{"invalid score", header + "\n1 A 1 A " + strings.Repeat("bad ", 20) + "0.1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePSSM(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestParsePSSMInsertionCode(t *testing.T) {
	header := "pdbresi pdbresn seqresi seqresn A C D E F G H I K L M N P Q R S T V W Y IC"
	scores := strings.Repeat("0.05 ", 20)
	input := header + "\n27A K 27 K " + scores + "0.3\n"

	table, err := ParsePSSM(strings.NewReader(input))
	require.NoError(t, err)

	chain := &Chain{ID: "L"}
	r := &Residue{Chain: chain, Number: 27, InsertionCode: "A"}
	row := table.Get(r)
	require.NotNil(t, row)
	assert.InDelta(t, 0.3, row.InformationContent, 1e-9)
}
