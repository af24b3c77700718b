package structure

// Polarity classifies the amino acid side chain.
type Polarity int

const (
	Nonpolar Polarity = iota
	Polar
	NegativeCharge
	PositiveCharge

	polarityCount = 4
)

// OneHot returns the polarity class as a one-hot vector.
func (p Polarity) OneHot() []float64 {
	v := make([]float64, polarityCount)
	v[int(p)] = 1.0
	return v
}

// AminoAcid holds the physicochemical properties used as node features.
type AminoAcid struct {
	Name            string
	ThreeLetterCode string
	OneLetterCode   string
	Charge          float64
	Polarity        Polarity

	// Index is the position in the canonical one-hot encoding.
	Index int
}

// OneHot returns the residue type as a one-hot vector over the 20
// standard amino acids.
func (a *AminoAcid) OneHot() []float64 {
	v := make([]float64, len(AminoAcids))
	v[a.Index] = 1.0
	return v
}

// AminoAcids lists the 20 standard amino acids in alphabetical order of
// their full names. The order fixes the one-hot indices.
var AminoAcids = []*AminoAcid{
	{Name: "alanine", ThreeLetterCode: "ALA", OneLetterCode: "A", Charge: -0.37, Polarity: Nonpolar, Index: 0},
	{Name: "arginine", ThreeLetterCode: "ARG", OneLetterCode: "R", Charge: -1.65, Polarity: PositiveCharge, Index: 1},
	{Name: "asparagine", ThreeLetterCode: "ASN", OneLetterCode: "N", Charge: -1.22, Polarity: Polar, Index: 2},
	{Name: "aspartate", ThreeLetterCode: "ASP", OneLetterCode: "D", Charge: -1.37, Polarity: NegativeCharge, Index: 3},
	{Name: "cysteine", ThreeLetterCode: "CYS", OneLetterCode: "C", Charge: -0.64, Polarity: Polar, Index: 4},
	{Name: "glutamate", ThreeLetterCode: "GLU", OneLetterCode: "E", Charge: -1.37, Polarity: NegativeCharge, Index: 5},
	{Name: "glutamine", ThreeLetterCode: "GLN", OneLetterCode: "Q", Charge: -1.22, Polarity: Polar, Index: 6},
	{Name: "glycine", ThreeLetterCode: "GLY", OneLetterCode: "G", Charge: -0.37, Polarity: Nonpolar, Index: 7},
	{Name: "histidine", ThreeLetterCode: "HIS", OneLetterCode: "H", Charge: -0.29, Polarity: PositiveCharge, Index: 8},
	{Name: "isoleucine", ThreeLetterCode: "ILE", OneLetterCode: "I", Charge: -0.37, Polarity: Nonpolar, Index: 9},
	{Name: "leucine", ThreeLetterCode: "LEU", OneLetterCode: "L", Charge: -0.37, Polarity: Nonpolar, Index: 10},
	{Name: "lysine", ThreeLetterCode: "LYS", OneLetterCode: "K", Charge: -0.36, Polarity: PositiveCharge, Index: 11},
	{Name: "methionine", ThreeLetterCode: "MET", OneLetterCode: "M", Charge: -0.37, Polarity: Nonpolar, Index: 12},
	{Name: "phenylalanine", ThreeLetterCode: "PHE", OneLetterCode: "F", Charge: -0.37, Polarity: Nonpolar, Index: 13},
	{Name: "proline", ThreeLetterCode: "PRO", OneLetterCode: "P", Charge: 0.0, Polarity: Nonpolar, Index: 14},
	{Name: "serine", ThreeLetterCode: "SER", OneLetterCode: "S", Charge: -0.80, Polarity: Polar, Index: 15},
	{Name: "threonine", ThreeLetterCode: "THR", OneLetterCode: "T", Charge: -0.80, Polarity: Polar, Index: 16},
	{Name: "tryptophan", ThreeLetterCode: "TRP", OneLetterCode: "W", Charge: -0.79, Polarity: Nonpolar, Index: 17},
	{Name: "tyrosine", ThreeLetterCode: "TYR", OneLetterCode: "Y", Charge: -0.80, Polarity: Polar, Index: 18},
	{Name: "valine", ThreeLetterCode: "VAL", OneLetterCode: "V", Charge: -0.37, Polarity: Nonpolar, Index: 19},
}

var (
	aminoAcidsByCode   = map[string]*AminoAcid{}
	aminoAcidsByLetter = map[string]*AminoAcid{}
)

func init() {
	for _, aa := range AminoAcids {
		aminoAcidsByCode[aa.ThreeLetterCode] = aa
		aminoAcidsByLetter[aa.OneLetterCode] = aa
	}
}

// AminoAcidByCode returns the amino acid for a three-letter PDB residue
// name, or nil for non-standard residues.
func AminoAcidByCode(code string) *AminoAcid {
	return aminoAcidsByCode[code]
}

// AminoAcidByLetter returns the amino acid for a one-letter code, or nil.
func AminoAcidByLetter(letter string) *AminoAcid {
	return aminoAcidsByLetter[letter]
}

// vanDerWaalsRadii by element, in Ångström. Used for surface calculations.
var vanDerWaalsRadii = map[string]float64{
	"H": 1.20,
	"C": 1.70,
	"N": 1.55,
	"O": 1.52,
	"S": 1.80,
	"P": 1.80,
}

const defaultVDWRadius = 1.70

// VDWRadius returns the van der Waals radius for the atom element.
func (a *Atom) VDWRadius() float64 {
	if r, ok := vanDerWaalsRadii[a.Element]; ok {
		return r
	}
	return defaultVDWRadius
}
