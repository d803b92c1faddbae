package fixture_models

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ysongK/BayNet/db"
	"github.com/ysongK/BayNet/svc/models"

	"gopkg.in/yaml.v3"
)

// LoadFixtures reads and parses networks.yaml from this package's directory.
func LoadFixtures() (*NetworkFixtures, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return nil, fmt.Errorf("failed to get current file path")
	}
	yamlFilePath := filepath.Join(filepath.Dir(filename), "networks.yaml")

	yamlFile, err := os.ReadFile(yamlFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading YAML file: %v", err)
	}

	var fixtures NetworkFixtures
	if err := yaml.Unmarshal(yamlFile, &fixtures); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %v", err)
	}
	return &fixtures, nil
}

// BuildNetwork turns one fixture into a parameterized network.
func BuildNetwork(fix NetworkFixture) (*models.Network, error) {
	n := models.NewNetwork()
	for _, node := range fix.Nodes {
		v, err := n.AddVertex(node.Name)
		if err != nil {
			return nil, fmt.Errorf("fixture %s: %w", fix.Name, err)
		}
		v.Levels = append([]string(nil), node.Levels...)
	}
	for _, node := range fix.Nodes {
		for _, p := range node.Parents {
			if err := n.AddEdge(p, node.Name); err != nil {
				return nil, fmt.Errorf("fixture %s: %w", fix.Name, err)
			}
		}
	}
	for _, node := range fix.Nodes {
		v, err := n.Vertex(node.Name)
		if err != nil {
			return nil, err
		}
		shape := make([]int, 0, len(node.Parents)+1)
		size := 1
		for _, p := range node.Parents {
			pv, err := n.Vertex(p)
			if err != nil {
				return nil, fmt.Errorf("fixture %s: %w", fix.Name, err)
			}
			shape = append(shape, len(pv.Levels))
			size *= len(pv.Levels)
		}
		shape = append(shape, len(node.Levels))
		size *= len(node.Levels)
		if len(node.Probabilities) != size {
			return nil, fmt.Errorf("fixture %s node %s: %d probabilities for CPT of size %d",
				fix.Name, node.Name, len(node.Probabilities), size)
		}
		cpt := &models.ConditionalProbabilityTable{
			Parents: append([]string(nil), node.Parents...),
			Levels:  append([]string(nil), node.Levels...),
			Array:   &models.Tensor{Shape: shape, Data: append([]float64(nil), node.Probabilities...)},
		}
		cpt.RescaleProbabilities()
		v.CPT = cpt
		v.Type = models.VariableDiscrete
	}
	return n, nil
}

// ImportFixtures builds every fixture network and stores it under its
// fixture name as version 1.
func ImportFixtures(store *db.NetworkStore) error {
	fixtures, err := LoadFixtures()
	if err != nil {
		return err
	}
	for _, fix := range fixtures.Networks {
		n, err := BuildNetwork(fix)
		if err != nil {
			return err
		}
		if err := store.Store(fix.Name, 1, n.ToProto()); err != nil {
			return err
		}
	}
	return nil
}
