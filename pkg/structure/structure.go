package structure

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Position is a 3D coordinate in Ångström.
type Position [3]float64

// Distance returns the euclidean distance between two positions.
func (p Position) Distance(other Position) float64 {
	dx := p[0] - other[0]
	dy := p[1] - other[1]
	dz := p[2] - other[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Structure is a single model parsed from a PDB file.
type Structure struct {
	ID     string
	Chains []*Chain
}

// GetChain returns the chain with the given id, or nil if not present.
func (s *Structure) GetChain(id string) *Chain {
	for _, c := range s.Chains {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *Structure) getOrCreateChain(id string) *Chain {
	if c := s.GetChain(id); c != nil {
		return c
	}
	c := &Chain{Structure: s, ID: id}
	s.Chains = append(s.Chains, c)
	return c
}

// Atoms returns all atoms of all chains.
func (s *Structure) Atoms() []*Atom {
	var atoms []*Atom
	for _, c := range s.Chains {
		for _, r := range c.Residues {
			atoms = append(atoms, r.Atoms...)
		}
	}
	return atoms
}

// Chain is a polypeptide chain within a structure.
type Chain struct {
	Structure *Structure
	ID        string
	Residues  []*Residue

	// PSSM is optional, attached after parsing a PSSM file for this chain.
	PSSM *PSSMTable
}

func (c *Chain) getOrCreateResidue(number int, insertionCode string, aa *AminoAcid) *Residue {
	for _, r := range c.Residues {
		if r.Number == number && r.InsertionCode == insertionCode {
			return r
		}
	}
	r := &Residue{Chain: c, Number: number, InsertionCode: insertionCode, AminoAcid: aa}
	c.Residues = append(c.Residues, r)
	return r
}

// Residue is a single amino acid residue within a chain.
type Residue struct {
	Chain         *Chain
	Number        int
	InsertionCode string

	// AminoAcid is nil for non-standard residues.
	AminoAcid *AminoAcid

	Atoms []*Atom
}

// ID returns the residue number with its insertion code appended, if any.
func (r *Residue) ID() string {
	return fmt.Sprintf("%d%s", r.Number, r.InsertionCode)
}

// Key identifies the residue within its structure: chain, number, insertion code.
func (r *Residue) Key() string {
	return fmt.Sprintf("%s:%s", r.Chain.ID, r.ID())
}

func (r *Residue) String() string {
	name := "UNK"
	if r.AminoAcid != nil {
		name = r.AminoAcid.ThreeLetterCode
	}
	return fmt.Sprintf("%s %s %s", r.Chain.ID, name, r.ID())
}

// GetAtom returns the named atom of the residue, or nil if not present.
func (r *Residue) GetAtom(name string) *Atom {
	for _, a := range r.Atoms {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Centroid returns the mean position of the residue atoms.
func (r *Residue) Centroid() (Position, error) {
	if len(r.Atoms) == 0 {
		return Position{}, errors.Errorf("residue %s has no atoms", r)
	}
	var c Position
	for _, a := range r.Atoms {
		c[0] += a.Position[0]
		c[1] += a.Position[1]
		c[2] += a.Position[2]
	}
	n := float64(len(r.Atoms))
	return Position{c[0] / n, c[1] / n, c[2] / n}, nil
}

// PSSMRow returns the conservation row for this residue from the chain PSSM.
func (r *Residue) PSSMRow() (*PSSMRow, error) {
	if r.Chain.PSSM == nil {
		return nil, errors.Errorf("chain %s has no PSSM attached", r.Chain.ID)
	}
	row := r.Chain.PSSM.Get(r)
	if row == nil {
		return nil, errors.Errorf("residue %s not covered by the chain PSSM", r)
	}
	return row, nil
}

// Atom is a single atom with its position.
type Atom struct {
	Residue   *Residue
	Name      string
	Element   string
	Occupancy float64
	Position  Position
}

func (a *Atom) String() string {
	return fmt.Sprintf("%s %s", a.Residue, a.Name)
}

// ResidueDistance returns the shortest interatomic distance between two residues.
func ResidueDistance(r1, r2 *Residue) float64 {
	min := math.Inf(1)
	for _, a1 := range r1.Atoms {
		for _, a2 := range r2.Atoms {
			if d := a1.Position.Distance(a2.Position); d < min {
				min = d
			}
		}
	}
	return min
}

// ContactPairs returns the residue pairs between two chains where any
// interatomic distance is below the cutoff.
func ContactPairs(s *Structure, chainID1, chainID2 string, cutoff float64) ([][2]*Residue, error) {
	chain1 := s.GetChain(chainID1)
	if chain1 == nil {
		return nil, errors.Errorf("chain %s not found in %s", chainID1, s.ID)
	}
	chain2 := s.GetChain(chainID2)
	if chain2 == nil {
		return nil, errors.Errorf("chain %s not found in %s", chainID2, s.ID)
	}

	var pairs [][2]*Residue
	for _, r1 := range chain1.Residues {
		for _, r2 := range chain2.Residues {
			if ResidueDistance(r1, r2) < cutoff {
				pairs = append(pairs, [2]*Residue{r1, r2})
			}
		}
	}
	return pairs, nil
}

// SurroundingResidues returns all residues of the structure with any atom
// within radius of any atom of the center residue, center included.
func SurroundingResidues(s *Structure, center *Residue, radius float64) []*Residue {
	var found []*Residue
	for _, c := range s.Chains {
		for _, r := range c.Residues {
			if r == center || ResidueDistance(center, r) < radius {
				found = append(found, r)
			}
		}
	}
	return found
}
