package db

import (
	"fmt"
	"log"
	"sync"

	pbmodels "github.com/ysongK/BayNet/pb/models"
)

// NetworkStore holds versioned snapshots of encoded networks in memory,
// with a mutex for thread-safe access. Values are kept in wire form so a
// retrieved network always went through a full encode/decode pass.
type NetworkStore struct {
	store map[string][]snapshot // network ID -> versions, ascending
	mu    sync.Mutex
}

// snapshot holds one encoded network version.
type snapshot struct {
	Version int
	Data    []byte
}

// NewNetworkStore initializes and returns a new NetworkStore.
func NewNetworkStore() *NetworkStore {
	return &NetworkStore{
		store: make(map[string][]snapshot),
	}
}

// Store encodes the network and keeps it under the given ID and version.
// Storing an existing version replaces it.
func (ns *NetworkStore) Store(id string, version int, dag *pbmodels.DAG) error {
	if dag == nil {
		return fmt.Errorf("network must not be nil")
	}
	data, err := dag.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode network %s: %w", id, err)
	}
	log.Printf("Storing network %s version %d (%d nodes, %d bytes)", id, version, len(dag.Nodes), len(data))

	ns.mu.Lock()
	defer ns.mu.Unlock()

	versions := ns.store[id]
	for i, s := range versions {
		if s.Version == version {
			versions[i] = snapshot{Version: version, Data: data}
			return nil
		}
	}
	versions = append(versions, snapshot{Version: version, Data: data})
	// Keep versions sorted in case they arrive out of order.
	for i := len(versions) - 1; i > 0 && versions[i-1].Version > versions[i].Version; i-- {
		versions[i-1], versions[i] = versions[i], versions[i-1]
	}
	ns.store[id] = versions
	return nil
}

// Latest decodes and returns the highest stored version of a network.
func (ns *NetworkStore) Latest(id string) (*pbmodels.DAG, int, error) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	versions := ns.store[id]
	if len(versions) == 0 {
		return nil, 0, fmt.Errorf("network %s: %w", id, ErrNotFound)
	}
	latest := versions[len(versions)-1]
	dag, err := decode(latest.Data)
	if err != nil {
		return nil, 0, err
	}
	return dag, latest.Version, nil
}

// Version decodes and returns one specific stored version of a network.
func (ns *NetworkStore) Version(id string, version int) (*pbmodels.DAG, error) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	for _, s := range ns.store[id] {
		if s.Version == version {
			return decode(s.Data)
		}
	}
	return nil, fmt.Errorf("network %s version %d: %w", id, version, ErrNotFound)
}

// Versions lists the stored version numbers of a network, ascending.
func (ns *NetworkStore) Versions(id string) ([]int, error) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	versions := ns.store[id]
	if len(versions) == 0 {
		return nil, fmt.Errorf("network %s: %w", id, ErrNotFound)
	}
	out := make([]int, len(versions))
	for i, s := range versions {
		out[i] = s.Version
	}
	return out, nil
}

// Raw returns the encoded bytes of the latest version without decoding.
func (ns *NetworkStore) Raw(id string) ([]byte, int, error) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	versions := ns.store[id]
	if len(versions) == 0 {
		return nil, 0, fmt.Errorf("network %s: %w", id, ErrNotFound)
	}
	latest := versions[len(versions)-1]
	return append([]byte(nil), latest.Data...), latest.Version, nil
}

// Delete removes every version of a network.
func (ns *NetworkStore) Delete(id string) error {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	if _, exists := ns.store[id]; !exists {
		return fmt.Errorf("network %s: %w", id, ErrNotFound)
	}
	delete(ns.store, id)
	return nil
}

// ListIDs returns the IDs of all stored networks.
func (ns *NetworkStore) ListIDs() []string {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	ids := make([]string, 0, len(ns.store))
	for id := range ns.store {
		ids = append(ids, id)
	}
	return ids
}

func decode(data []byte) (*pbmodels.DAG, error) {
	dag := new(pbmodels.DAG)
	if err := dag.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("failed to decode stored network: %w", err)
	}
	return dag, nil
}
