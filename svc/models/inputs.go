package models

// CreateNetworkInput represents an input to register a new network from a
// bnlearn-style modelstring.
type CreateNetworkInput struct {
	Name        string `json:"name"`
	Modelstring string `json:"modelstring"`
}

// GenerateParametersInput selects parameters for a stored network. Kind
// must be VariableDiscrete or VariableContinuous; a zero Seed means
// nondeterministic.
type GenerateParametersInput struct {
	NetworkID string       `json:"network_id"`
	Kind      VariableType `json:"kind"`
	Seed      uint64       `json:"seed,omitempty"`

	// Discrete options.
	Alpha     float64 `json:"alpha,omitempty"`
	MinLevels int     `json:"min_levels,omitempty"`
	MaxLevels int     `json:"max_levels,omitempty"`

	// Continuous options.
	PossibleWeights []float64 `json:"possible_weights,omitempty"`
	Std             float64   `json:"std,omitempty"`
}

// SampleNetworkInput represents a request for forward samples from a stored
// network.
type SampleNetworkInput struct {
	NetworkID string `json:"network_id"`
	Rows      int    `json:"rows"`
	Seed      uint64 `json:"seed,omitempty"`
}

// MutilateNetworkInput applies the intervention do(Vertex = Level) to a
// stored network, registering the result as a new derived network.
type MutilateNetworkInput struct {
	NetworkID string `json:"network_id"`
	Vertex    string `json:"vertex"`
	Level     string `json:"level"`
}
