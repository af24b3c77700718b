package structure

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ParsePDBFile parses a PDB file into a structure. The structure id is
// derived from the file name, without extension.
func ParsePDBFile(path string) (*Structure, error) {
	if path == "" {
		return nil, errors.New("pdb path required")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening pdb file: %s", path)
	}
	defer f.Close()

	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s, err := ParsePDB(f, id)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing pdb file: %s", path)
	}
	return s, nil
}

// ParsePDB parses PDB-format ATOM and HETATM records from a reader. Only
// the first model of multi-model files is read. TER records carry no atom
// data and are skipped; chain membership comes from the chain id column.
// Atoms with alternate locations keep the highest occupancy variant.
func ParsePDB(r io.Reader, id string) (*Structure, error) {
	s := &Structure{ID: id}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if strings.HasPrefix(line, "ENDMDL") {
			break
		}
		if strings.HasPrefix(line, "TER") {
			continue
		}
		if !strings.HasPrefix(line, "ATOM  ") && !strings.HasPrefix(line, "HETATM") {
			continue
		}

		if err := parseAtomRecord(s, line); err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading pdb")
	}

	if len(s.Chains) == 0 {
		return nil, errors.Errorf("no atom records found in %s", id)
	}

	log.Debugf("parsed %s: %d chains, %d atoms", id, len(s.Chains), len(s.Atoms()))
	return s, nil
}

// PDB ATOM records use fixed columns (1-based):
// name 13-16, altloc 17, resname 18-20, chain 22, resseq 23-26,
// icode 27, x 31-38, y 39-46, z 47-54, occupancy 55-60, element 77-78.
func parseAtomRecord(s *Structure, line string) error {
	if len(line) < 54 {
		return errors.Errorf("atom record too short: %q", line)
	}

	atomName := strings.TrimSpace(line[12:16])
	altLoc := strings.TrimSpace(line[16:17])
	resName := strings.TrimSpace(line[17:20])
	chainID := strings.TrimSpace(line[21:22])
	iCode := strings.TrimSpace(line[26:27])

	resSeq, err := strconv.Atoi(strings.TrimSpace(line[22:26]))
	if err != nil {
		return errors.Wrapf(err, "invalid residue number in %q", line)
	}

	var pos Position
	for i, span := range [][2]int{{30, 38}, {38, 46}, {46, 54}} {
		v, err := strconv.ParseFloat(strings.TrimSpace(line[span[0]:span[1]]), 64)
		if err != nil {
			return errors.Wrapf(err, "invalid coordinate in %q", line)
		}
		pos[i] = v
	}

	occupancy := 1.0
	if len(line) >= 60 {
		if v, err := strconv.ParseFloat(strings.TrimSpace(line[54:60]), 64); err == nil {
			occupancy = v
		}
	}

	element := ""
	if len(line) >= 78 {
		element = strings.TrimSpace(line[76:78])
	}
	if element == "" {
		element = guessElement(atomName)
	}

	chain := s.getOrCreateChain(chainID)
	residue := chain.getOrCreateResidue(resSeq, iCode, AminoAcidByCode(resName))

	// Alternate locations: keep the highest occupancy variant of an atom.
	if altLoc != "" {
		if prev := residue.GetAtom(atomName); prev != nil {
			if prev.Occupancy >= occupancy {
				return nil
			}
			prev.Occupancy = occupancy
			prev.Position = pos
			return nil
		}
	}

	residue.Atoms = append(residue.Atoms, &Atom{
		Residue:   residue,
		Name:      atomName,
		Element:   element,
		Occupancy: occupancy,
		Position:  pos,
	})
	return nil
}

// guessElement infers the element from an atom name when columns 77-78
// are blank, which is common in modelled structures.
func guessElement(atomName string) string {
	name := strings.TrimLeft(atomName, "0123456789")
	if name == "" {
		return ""
	}
	return name[:1]
}
