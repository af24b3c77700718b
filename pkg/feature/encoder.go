package feature

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Scaler normalizes feature rows column-wise. Scalers are fitted on
// training rows only and then applied to any split.
type Scaler interface {
	Name() string
	Fit(rows [][]float64) error
	Transform(row []float64) ([]float64, error)
}

// NewScaler returns the named scaler: "minmax" or "zscore".
func NewScaler(name string) (Scaler, error) {
	switch name {
	case "minmax":
		return &MinMaxScaler{}, nil
	case "zscore":
		return &StandardScaler{}, nil
	default:
		return nil, errors.Errorf("unknown scaler: %s", name)
	}
}

// MinMaxScaler maps each column into [0, 1]. Constant columns map to 0.
type MinMaxScaler struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

func (s *MinMaxScaler) Name() string { return "minmax" }

func (s *MinMaxScaler) Fit(rows [][]float64) error {
	cols, err := columns(rows)
	if err != nil {
		return err
	}

	s.Min = make([]float64, len(cols))
	s.Max = make([]float64, len(cols))
	for i, col := range cols {
		s.Min[i], s.Max[i] = col[0], col[0]
		for _, v := range col {
			if v < s.Min[i] {
				s.Min[i] = v
			}
			if v > s.Max[i] {
				s.Max[i] = v
			}
		}
	}
	return nil
}

func (s *MinMaxScaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.Min) {
		return nil, errors.Errorf("row has %d columns, scaler fitted on %d", len(row), len(s.Min))
	}
	out := make([]float64, len(row))
	for i, v := range row {
		span := s.Max[i] - s.Min[i]
		if span == 0 {
			continue
		}
		out[i] = (v - s.Min[i]) / span
	}
	return out, nil
}

// StandardScaler centers each column to zero mean and unit variance.
// Constant columns stay centered at zero.
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

func (s *StandardScaler) Name() string { return "zscore" }

func (s *StandardScaler) Fit(rows [][]float64) error {
	cols, err := columns(rows)
	if err != nil {
		return err
	}

	s.Mean = make([]float64, len(cols))
	s.Std = make([]float64, len(cols))
	for i, col := range cols {
		s.Mean[i] = stat.Mean(col, nil)
		s.Std[i] = stat.StdDev(col, nil)
	}
	return nil
}

func (s *StandardScaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.Mean) {
		return nil, errors.Errorf("row has %d columns, scaler fitted on %d", len(row), len(s.Mean))
	}
	out := make([]float64, len(row))
	for i, v := range row {
		if s.Std[i] == 0 {
			out[i] = 0
			continue
		}
		out[i] = (v - s.Mean[i]) / s.Std[i]
	}
	return out, nil
}

func columns(rows [][]float64) ([][]float64, error) {
	if len(rows) == 0 {
		return nil, errors.New("no rows to fit on")
	}
	width := len(rows[0])
	cols := make([][]float64, width)
	for _, row := range rows {
		if len(row) != width {
			return nil, errors.Errorf("ragged rows: %d vs %d columns", len(row), width)
		}
		for i, v := range row {
			cols[i] = append(cols[i], v)
		}
	}
	return cols, nil
}
