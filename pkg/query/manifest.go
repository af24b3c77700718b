package query

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/proteograph/pint/pkg/graph"
)

// Manifest is the YAML description of a query batch.
type Manifest struct {
	// Cutoffs optionally override the defaults for all entries.
	Cutoffs ManifestCutoffs `yaml:"cutoffs"`

	Interfaces []ManifestInterface `yaml:"interfaces"`
	Variants   []ManifestVariant   `yaml:"variants"`
}

type ManifestCutoffs struct {
	Interface float64 `yaml:"interface"`
	Internal  float64 `yaml:"internal"`
	Bonded    float64 `yaml:"bonded"`
	Nonbonded float64 `yaml:"nonbonded"`
	Disulfide float64 `yaml:"disulfide"`
	Radius    float64 `yaml:"radius"`
}

type ManifestInterface struct {
	PDB     string             `yaml:"pdb"`
	Chains  []string           `yaml:"chains"`
	PSSM    map[string]string  `yaml:"pssm"`
	Targets map[string]float64 `yaml:"targets"`
}

type ManifestVariant struct {
	PDB           string             `yaml:"pdb"`
	Chain         string             `yaml:"chain"`
	Residue       int                `yaml:"residue"`
	InsertionCode string             `yaml:"insertion_code"`
	Wildtype      string             `yaml:"wildtype"`
	Variant       string             `yaml:"variant"`
	PSSM          map[string]string  `yaml:"pssm"`
	Targets       map[string]float64 `yaml:"targets"`
}

// ReadManifest loads a YAML manifest and converts it into a collection.
// Relative PDB and PSSM paths resolve against the manifest directory.
func ReadManifest(path string) (*Collection, error) {
	if path == "" {
		return nil, errors.New("manifest path required")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading manifest: %s", path)
	}

	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, errors.Wrapf(err, "error unmarshalling manifest: %s", path)
	}

	return m.Collection(filepath.Dir(path))
}

// Collection converts the manifest entries into queries. baseDir anchors
// relative paths.
func (m *Manifest) Collection(baseDir string) (*Collection, error) {
	col := NewCollection()

	for i, e := range m.Interfaces {
		if e.PDB == "" {
			return nil, errors.Errorf("interface %d: pdb path required", i)
		}
		if len(e.Chains) != 2 {
			return nil, errors.Errorf("interface %d: exactly two chains required, got %d", i, len(e.Chains))
		}
		q := &InterfaceQuery{
			PDBPath:         resolve(baseDir, e.PDB),
			ChainID1:        e.Chains[0],
			ChainID2:        e.Chains[1],
			PSSMPaths:       resolveMap(baseDir, e.PSSM),
			InterfaceCutoff: m.Cutoffs.Interface,
			InternalCutoff:  m.Cutoffs.Internal,
			TargetValues:    e.Targets,
		}
		if err := col.Add(q); err != nil {
			return nil, err
		}
	}

	for i, e := range m.Variants {
		if e.PDB == "" {
			return nil, errors.Errorf("variant %d: pdb path required", i)
		}
		q := &VariantQuery{
			PDBPath:       resolve(baseDir, e.PDB),
			ChainID:       e.Chain,
			ResidueNumber: e.Residue,
			InsertionCode: e.InsertionCode,
			Wildtype:      e.Wildtype,
			Variant:       e.Variant,
			PSSMPaths:     resolveMap(baseDir, e.PSSM),
			Radius:        m.Cutoffs.Radius,
			Cutoffs: graph.AtomicCutoffs{
				Bonded:    m.Cutoffs.Bonded,
				Nonbonded: m.Cutoffs.Nonbonded,
				Disulfide: m.Cutoffs.Disulfide,
			},
			TargetValues: e.Targets,
		}
		if err := col.Add(q); err != nil {
			return nil, err
		}
	}

	if col.Len() == 0 {
		return nil, errors.New("manifest contains no queries")
	}
	return col, nil
}

func resolve(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func resolveMap(baseDir string, paths map[string]string) map[string]string {
	if paths == nil {
		return nil
	}
	resolved := make(map[string]string, len(paths))
	for k, v := range paths {
		resolved[k] = resolve(baseDir, v)
	}
	return resolved
}
