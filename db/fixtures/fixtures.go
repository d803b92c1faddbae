package fixture_models

// NetworkFixtures mirrors networks.yaml: a set of named discrete networks
// with per-node levels and row-major CPT probabilities.
type NetworkFixtures struct {
	Networks []NetworkFixture `yaml:"networks"`
}

type NetworkFixture struct {
	Name  string        `yaml:"name"`
	Nodes []NodeFixture `yaml:"nodes"`
}

type NodeFixture struct {
	Name          string    `yaml:"name"`
	Parents       []string  `yaml:"parents"`
	Levels        []string  `yaml:"levels"`
	Probabilities []float64 `yaml:"probabilities"`
}
