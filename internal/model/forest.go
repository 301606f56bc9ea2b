package model

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/aqi-warning-service/internal/domain"
)

// Artifact is the on-disk form of a trained tree-ensemble regressor.
type Artifact struct {
	Name        string                       `json:"name"`
	Version     string                       `json:"version"`
	Importances map[domain.Pollutant]float64 `json:"importances"`
	Trees       []Tree                       `json:"trees"`
}

// Tree is a flattened regression tree. Node 0 is the root and children
// always have higher indexes than their parent.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is a split when Feature is set and a leaf otherwise. Splits send
// values <= Threshold left.
type Node struct {
	Feature   *domain.Pollutant `json:"feature,omitempty"`
	Threshold float64           `json:"threshold,omitempty"`
	Left      int               `json:"left,omitempty"`
	Right     int               `json:"right,omitempty"`
	Value     float64           `json:"value,omitempty"`
}

// Forest averages the outputs of its trees. It is immutable after loading
// and safe for concurrent use.
type Forest struct {
	name        string
	version     string
	trees       []Tree
	importances []domain.ImportanceEntry
}

// LoadForest reads and validates a model artifact from path.
func LoadForest(path string) (*Forest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model artifact: %w", err)
	}
	defer f.Close()
	return ParseForest(f)
}

// ParseForest decodes and validates a model artifact.
func ParseForest(r io.Reader) (*Forest, error) {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	return NewForest(a)
}

// NewForest validates an artifact and builds a Forest from it.
func NewForest(a Artifact) (*Forest, error) {
	if len(a.Trees) == 0 {
		return nil, fmt.Errorf("%w: model %q has no trees", domain.ErrInvalidConfiguration, a.Name)
	}
	for i, t := range a.Trees {
		if err := validateTree(t); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}
	importances, err := importancesFromMap(a.Importances)
	if err != nil {
		return nil, err
	}
	return &Forest{
		name:        a.Name,
		version:     a.Version,
		trees:       a.Trees,
		importances: importances,
	}, nil
}

func validateTree(t Tree) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("%w: empty tree", domain.ErrInvalidConfiguration)
	}
	for i, n := range t.Nodes {
		if n.Feature == nil {
			continue
		}
		if !n.Feature.Valid() {
			return fmt.Errorf("%w: node %d splits on %s", domain.ErrUnknownPollutant, i, *n.Feature)
		}
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(t.Nodes) {
				return fmt.Errorf("%w: node %d has child %d out of range", domain.ErrInvalidConfiguration, i, child)
			}
		}
	}
	return nil
}

// importancesFromMap converts named weights to entries in canonical order.
// All six pollutants must be present.
func importancesFromMap(m map[domain.Pollutant]float64) ([]domain.ImportanceEntry, error) {
	out := make([]domain.ImportanceEntry, 0, domain.PollutantCount)
	for _, p := range domain.AllPollutants {
		w, ok := m[p]
		if !ok {
			return nil, fmt.Errorf("%w: missing importance for %s", domain.ErrInvalidConfiguration, p)
		}
		out = append(out, domain.ImportanceEntry{Pollutant: p, Weight: w})
	}
	return out, nil
}

// Name returns the artifact name and version, e.g. "aqi-forest@2024.1".
func (f *Forest) Name() string {
	if f.version == "" {
		return f.name
	}
	return f.name + "@" + f.version
}

// Predict returns the mean leaf value across all trees.
func (f *Forest) Predict(_ context.Context, reading domain.PollutantReading) (float64, error) {
	features := reading.Features()
	var sum float64
	for _, t := range f.trees {
		sum += t.evaluate(features)
	}
	return sum / float64(len(f.trees)), nil
}

// FeatureImportances returns a copy of the artifact's weights.
func (f *Forest) FeatureImportances(_ context.Context) ([]domain.ImportanceEntry, error) {
	out := make([]domain.ImportanceEntry, len(f.importances))
	copy(out, f.importances)
	return out, nil
}

func (t Tree) evaluate(features [domain.PollutantCount]float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature == nil {
			return n.Value
		}
		if features[*n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}
