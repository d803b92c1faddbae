package models

import "gonum.org/v1/gonum/mat"

// CreateNetworkOutput represents an output after registering a network.
type CreateNetworkOutput struct {
	NetworkID string   `json:"network_id"`
	Version   int      `json:"version"`
	Network   *Network `json:"-"`
}

// SampleNetworkOutput carries sampled observations: one row per draw, one
// column per vertex in insertion order. Discrete columns hold level indices.
type SampleNetworkOutput struct {
	Columns []string   `json:"columns"`
	Data    *mat.Dense `json:"-"`
}

// MutilateNetworkOutput represents an output after an intervention.
type MutilateNetworkOutput struct {
	NetworkID string   `json:"network_id"`
	Network   *Network `json:"-"`
}
