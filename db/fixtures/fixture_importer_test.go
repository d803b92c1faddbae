package fixture_models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ysongK/BayNet/db"
	"github.com/ysongK/BayNet/svc/models"
)

func TestLoadFixtures(t *testing.T) {
	fixtures, err := LoadFixtures()
	require.NoError(t, err)
	require.Len(t, fixtures.Networks, 1)
	assert.Equal(t, "sprinkler", fixtures.Networks[0].Name)
	assert.Len(t, fixtures.Networks[0].Nodes, 3)
}

func TestBuildNetwork(t *testing.T) {
	fixtures, err := LoadFixtures()
	require.NoError(t, err)

	n, err := BuildNetwork(fixtures.Networks[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"Rain", "Sprinkler", "GrassWet"}, n.Names())
	assert.Equal(t, []string{"Rain", "Sprinkler"}, n.Parents("GrassWet"))
	require.NoError(t, n.Validate())

	rain, err := n.Vertex("Rain")
	require.NoError(t, err)
	require.NotNil(t, rain.CPT)
	assert.InDelta(t, 0.8, rain.CPT.Array.At(0), 1e-12)
	assert.InDelta(t, 0.2, rain.CPT.Array.At(1), 1e-12)

	grass, err := n.Vertex("GrassWet")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 2}, grass.CPT.Array.Shape)
	// P(GrassWet=yes | Rain=yes, Sprinkler=on)
	assert.InDelta(t, 0.99, grass.CPT.Array.At(1, 1, 1), 1e-12)
}

func TestImportFixtures(t *testing.T) {
	store := db.NewNetworkStore()
	require.NoError(t, ImportFixtures(store))

	dag, version, err := store.Latest("sprinkler")
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	n, err := models.NetworkFromProto(dag)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rain", "Sprinkler", "GrassWet"}, n.Names())
	assert.Equal(t, models.VariableDiscrete, n.Kind())
	require.NoError(t, models.ValidateProto(dag))
}
