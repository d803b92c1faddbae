package svc

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	"github.com/ysongK/BayNet/db"
	"github.com/ysongK/BayNet/svc/models"
)

const (
	LogLevelDebug = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var currentLogLevel = LogLevelInfo

func logf(level int, format string, v ...interface{}) {
	if level >= currentLogLevel {
		log.Printf(format, v...)
	}
}

// NetworkService manages stored Bayesian networks: registration, versioned
// persistence, parameter generation, sampling and interventions.
type NetworkService struct {
	kvStore *db.NetworkStore
}

// NewNetworkService initializes and returns a new NetworkService.
func NewNetworkService(kvStore *db.NetworkStore) *NetworkService {
	return &NetworkService{
		kvStore: kvStore,
	}
}

// CreateNetwork parses the modelstring and stores the structure as version 1
// under a fresh net_-prefixed ID.
func (nsvc *NetworkService) CreateNetwork(input *models.CreateNetworkInput) (*models.CreateNetworkOutput, error) {
	network, err := models.NetworkFromModelstring(input.Modelstring)
	if err != nil {
		return nil, fmt.Errorf("failed to parse modelstring: %w", err)
	}

	networkID := "net_" + uuid.New().String()
	if err := nsvc.kvStore.Store(networkID, 1, network.ToProto()); err != nil {
		return nil, fmt.Errorf("failed to store network: %w", err)
	}
	logf(LogLevelInfo, "Created network %s (%s) with %d vertices", networkID, input.Name, len(network.Vertices()))

	return &models.CreateNetworkOutput{
		NetworkID: networkID,
		Version:   1,
		Network:   network,
	}, nil
}

// GetNetwork retrieves and decodes the latest version of a network.
func (nsvc *NetworkService) GetNetwork(networkID string) (*models.Network, int, error) {
	dag, version, err := nsvc.kvStore.Latest(networkID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve network: %w", err)
	}
	network, err := models.NetworkFromProto(dag)
	if err != nil {
		return nil, 0, fmt.Errorf("stored network %s is not loadable: %w", networkID, err)
	}
	return network, version, nil
}

// UpdateNetwork validates the network and stores it as the next version.
func (nsvc *NetworkService) UpdateNetwork(networkID string, network *models.Network) (int, error) {
	if err := network.Validate(); err != nil {
		return 0, fmt.Errorf("network failed validation: %w", err)
	}
	_, version, err := nsvc.kvStore.Latest(networkID)
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve network: %w", err)
	}
	next := version + 1
	if err := nsvc.kvStore.Store(networkID, next, network.ToProto()); err != nil {
		return 0, fmt.Errorf("failed to store network: %w", err)
	}
	return next, nil
}

// ExportNetwork returns the encoded bytes of the latest version, the wire
// payload a consumer exchanges.
func (nsvc *NetworkService) ExportNetwork(networkID string) ([]byte, error) {
	data, _, err := nsvc.kvStore.Raw(networkID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve network: %w", err)
	}
	return data, nil
}

// ImportNetwork decodes and validates external wire bytes, storing them
// under a fresh ID. Validation failures reject the import; unknown fields
// in the payload do not.
func (nsvc *NetworkService) ImportNetwork(name string, data []byte) (*models.CreateNetworkOutput, error) {
	network, err := models.DecodeNetwork(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode network: %w", err)
	}
	if err := models.ValidateProto(network.ToProto()); err != nil {
		return nil, fmt.Errorf("imported network failed validation: %w", err)
	}

	networkID := "net_" + uuid.New().String()
	if err := nsvc.kvStore.Store(networkID, 1, network.ToProto()); err != nil {
		return nil, fmt.Errorf("failed to store network: %w", err)
	}
	logf(LogLevelInfo, "Imported network %s (%s), %d bytes", networkID, name, len(data))

	return &models.CreateNetworkOutput{
		NetworkID: networkID,
		Version:   1,
		Network:   network,
	}, nil
}

// GenerateParameters draws new parameters for a stored network and persists
// the result as a new version.
func (nsvc *NetworkService) GenerateParameters(input *models.GenerateParametersInput) (int, error) {
	network, version, err := nsvc.GetNetwork(input.NetworkID)
	if err != nil {
		return 0, err
	}

	src := seedSource(input.Seed)
	switch input.Kind {
	case models.VariableDiscrete:
		if err := network.GenerateDiscreteParameters(input.Alpha, input.MinLevels, input.MaxLevels, src); err != nil {
			return 0, fmt.Errorf("failed to generate discrete parameters: %w", err)
		}
	case models.VariableContinuous:
		network.GenerateContinuousParameters(input.PossibleWeights, input.Std, src)
	default:
		return 0, fmt.Errorf("cannot generate %s parameters", input.Kind)
	}

	next := version + 1
	if err := nsvc.kvStore.Store(input.NetworkID, next, network.ToProto()); err != nil {
		return 0, fmt.Errorf("failed to store network: %w", err)
	}
	return next, nil
}

// SampleNetwork forward-samples observations from the latest version.
func (nsvc *NetworkService) SampleNetwork(input *models.SampleNetworkInput) (*models.SampleNetworkOutput, error) {
	network, _, err := nsvc.GetNetwork(input.NetworkID)
	if err != nil {
		return nil, err
	}
	data, err := network.SampleData(input.Rows, seedSource(input.Seed))
	if err != nil {
		return nil, fmt.Errorf("failed to sample network: %w", err)
	}
	return &models.SampleNetworkOutput{
		Columns: network.Names(),
		Data:    data,
	}, nil
}

// MutilateNetwork applies do(Vertex = Level) and registers the derived
// network under a new ID; the source network is left untouched.
func (nsvc *NetworkService) MutilateNetwork(input *models.MutilateNetworkInput) (*models.MutilateNetworkOutput, error) {
	network, _, err := nsvc.GetNetwork(input.NetworkID)
	if err != nil {
		return nil, err
	}
	mutilated, err := network.Mutilate(input.Vertex, input.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to mutilate network: %w", err)
	}

	derivedID := "net_" + uuid.New().String()
	if err := nsvc.kvStore.Store(derivedID, 1, mutilated.ToProto()); err != nil {
		return nil, fmt.Errorf("failed to store network: %w", err)
	}
	logf(LogLevelInfo, "Mutilated network %s at do(%s=%s) into %s", input.NetworkID, input.Vertex, input.Level, derivedID)

	return &models.MutilateNetworkOutput{
		NetworkID: derivedID,
		Network:   mutilated,
	}, nil
}

func seedSource(seed uint64) rand.Source {
	if seed == 0 {
		return nil
	}
	return rand.NewSource(seed)
}
