package collect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sesimgo/sesim/internal/world"
)

func TestCollectModelRows(t *testing.T) {
	c := NewCollector()
	pop := 3
	require.NoError(t, c.AddModelReporter("population", func() any { return pop }))

	c.Collect(0, nil)
	pop = 5
	c.Collect(1, nil)

	frame := c.ModelFrame()
	require.Len(t, frame, 2)
	assert.Equal(t, 0, frame[0].Tick)
	assert.Equal(t, 3, frame[0].Values["population"])
	assert.Equal(t, 5, frame[1].Values["population"])
	assert.Equal(t, []any{3, 5}, c.ModelSeries("population"))
}

func TestCollectAgentRows(t *testing.T) {
	w := world.NewWorld(1, 0, nil)
	w.RegisterBreed("Farmer")
	actors, err := w.NewActors("Farmer", 2)
	require.NoError(t, err)
	actors[0].SetAttr("wealth", 10)
	actors[1].SetAttr("wealth", 20)

	c := NewCollector()
	require.NoError(t, c.AddAgentReporter("wealth", AttrReporter("wealth")))

	all, err := w.Agents().Get()
	require.NoError(t, err)
	c.Collect(0, all)

	rows := c.AgentFrame()
	require.Len(t, rows, 2)
	assert.Equal(t, actors[0].EntityID(), rows[0].ID)
	assert.Equal(t, "Farmer", rows[0].Breed)
	assert.Equal(t, 10, rows[0].Values["wealth"])
	assert.Equal(t, 20, rows[1].Values["wealth"])
}

func TestAttrReporterMissingIsNil(t *testing.T) {
	w := world.NewWorld(1, 0, nil)
	w.RegisterBreed("Farmer")
	a, err := w.NewActor("Farmer")
	require.NoError(t, err)
	assert.Nil(t, AttrReporter("ghost")(a))
}

func TestDuplicateReporterRejected(t *testing.T) {
	c := NewCollector()
	require.NoError(t, c.AddModelReporter("x", func() any { return 1 }))
	require.Error(t, c.AddModelReporter("x", func() any { return 2 }))

	require.NoError(t, c.AddAgentReporter("y", AttrReporter("y")))
	require.Error(t, c.AddAgentReporter("y", AttrReporter("y")))

	assert.Equal(t, []string{"x"}, c.ModelColumns())
	assert.Equal(t, []string{"y"}, c.AgentColumns())
}

func TestNoReportersNoRows(t *testing.T) {
	c := NewCollector()
	c.Collect(0, nil)
	assert.Empty(t, c.ModelFrame())
	assert.Empty(t, c.AgentFrame())
}
