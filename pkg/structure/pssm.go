package structure

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// PSSMRow holds the position-specific scores of a single residue.
type PSSMRow struct {
	// Conservations maps amino acid one-letter codes to their score.
	Conservations map[string]float64

	InformationContent float64
}

// Conservation returns the score for the given amino acid.
func (r *PSSMRow) Conservation(aa *AminoAcid) float64 {
	return r.Conservations[aa.OneLetterCode]
}

// Profile returns the 20 conservation scores ordered by amino acid
// one-letter code.
func (r *PSSMRow) Profile() []float64 {
	profile := make([]float64, len(profileOrder))
	for i, aa := range profileOrder {
		profile[i] = r.Conservations[aa.OneLetterCode]
	}
	return profile
}

// profileOrder is the 20 standard amino acids sorted by one-letter code.
var profileOrder = func() []*AminoAcid {
	order := make([]*AminoAcid, len(AminoAcids))
	copy(order, AminoAcids)
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && order[j-1].OneLetterCode > order[j].OneLetterCode; j-- {
			order[j-1], order[j] = order[j], order[j-1]
		}
	}
	return order
}()

// PSSMTable maps the residues of one chain to their PSSM rows.
type PSSMTable struct {
	rows map[string]*PSSMRow
}

// Get returns the row for a residue, nil when the residue is not covered.
func (t *PSSMTable) Get(r *Residue) *PSSMRow {
	if t == nil {
		return nil
	}
	return t.rows[r.ID()]
}

// Len returns the number of residues covered by the table.
func (t *PSSMTable) Len() int {
	return len(t.rows)
}

// ParsePSSMFile parses a PSSM file and attaches nothing; callers assign the
// result to the matching chain.
func ParsePSSMFile(path string) (*PSSMTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening pssm file: %s", path)
	}
	defer f.Close()

	t, err := ParsePSSM(f)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing pssm file: %s", path)
	}
	return t, nil
}

// ParsePSSM reads a whitespace-separated PSSM table. The header names the
// columns; pdbresi carries the residue number with an optional insertion
// code, pdbresn the expected amino acid, IC the information content, and
// one column per amino acid one-letter code carries the scores.
func ParsePSSM(r io.Reader) (*PSSMTable, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		return nil, errors.New("empty pssm input")
	}

	columns := map[string]int{}
	for i, name := range strings.Fields(scanner.Text()) {
		columns[name] = i
	}
	for _, required := range []string{"pdbresi", "pdbresn", "IC"} {
		if _, ok := columns[required]; !ok {
			return nil, errors.Errorf("pssm header misses column: %s", required)
		}
	}

	rows := map[string]*PSSMRow{}
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < len(columns) {
			return nil, errors.Errorf("line %d: expected %d columns, got %d", lineNo, len(columns), len(fields))
		}

		resn := fields[columns["pdbresn"]]
		if AminoAcidByLetter(resn) == nil {
			return nil, errors.Errorf("line %d: unknown amino acid: %s", lineNo, resn)
		}

		// Residue numbers may carry an insertion code suffix (e.g. "27A").
		resi := fields[columns["pdbresi"]]
		if _, err := strconv.Atoi(strings.TrimRight(resi, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")); err != nil {
			return nil, errors.Wrapf(err, "line %d: invalid residue number: %s", lineNo, resi)
		}

		ic, err := strconv.ParseFloat(fields[columns["IC"]], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: invalid information content", lineNo)
		}

		conservations := make(map[string]float64, len(AminoAcids))
		for _, aa := range AminoAcids {
			idx, ok := columns[aa.OneLetterCode]
			if !ok {
				return nil, errors.Errorf("pssm header misses column: %s", aa.OneLetterCode)
			}
			v, err := strconv.ParseFloat(fields[idx], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: invalid score for %s", lineNo, aa.OneLetterCode)
			}
			conservations[aa.OneLetterCode] = v
		}

		rows[resi] = &PSSMRow{
			Conservations:      conservations,
			InformationContent: ic,
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading pssm")
	}

	return &PSSMTable{rows: rows}, nil
}
