package model

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/proteograph/pint/pkg/feature"
)

const weightsFileMode = 0600

// weightsFile is the serialized network: config, parameters, and the
// fitted scaler when one was used.
type weightsFile struct {
	Config Config        `json:"config"`
	Conv   []*convLayer  `json:"conv"`
	Head   *denseLayer   `json:"head"`
	Scaler *scalerRecord `json:"scaler,omitempty"`
}

type scalerRecord struct {
	Name string    `json:"name"`
	Min  []float64 `json:"min,omitempty"`
	Max  []float64 `json:"max,omitempty"`
	Mean []float64 `json:"mean,omitempty"`
	Std  []float64 `json:"std,omitempty"`
}

// Save writes the network weights to a JSON file.
func (n *GraphNet) Save(path string) error {
	if path == "" {
		return errors.New("weights path required")
	}

	file := weightsFile{Config: n.Config, Conv: n.Conv, Head: n.Head}
	switch s := n.Scaler.(type) {
	case nil:
	case *feature.MinMaxScaler:
		file.Scaler = &scalerRecord{Name: s.Name(), Min: s.Min, Max: s.Max}
	case *feature.StandardScaler:
		file.Scaler = &scalerRecord{Name: s.Name(), Mean: s.Mean, Std: s.Std}
	default:
		return errors.Errorf("cannot serialize scaler: %s", n.Scaler.Name())
	}

	b, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal weights")
	}
	if err := os.WriteFile(path, b, weightsFileMode); err != nil {
		return errors.Wrapf(err, "failed to write weights file: %s", path)
	}
	return nil
}

// Load reads a network from a weights file.
func Load(path string) (*GraphNet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read weights file: %s", path)
	}

	var file weightsFile
	if err := json.Unmarshal(b, &file); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal weights file: %s", path)
	}
	if len(file.Conv) == 0 || file.Head == nil {
		return nil, errors.Errorf("weights file misses network parameters: %s", path)
	}

	net := &GraphNet{Config: file.Config, Conv: file.Conv, Head: file.Head}
	if file.Scaler != nil {
		switch file.Scaler.Name {
		case "minmax":
			net.Scaler = &feature.MinMaxScaler{Min: file.Scaler.Min, Max: file.Scaler.Max}
		case "zscore":
			net.Scaler = &feature.StandardScaler{Mean: file.Scaler.Mean, Std: file.Scaler.Std}
		default:
			return nil, errors.Errorf("unknown scaler in weights file: %s", file.Scaler.Name)
		}
	}
	return net, nil
}
