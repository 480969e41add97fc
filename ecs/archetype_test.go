package ecs_test

import (
	"testing"

	"github.com/plus3/lattice/ecs"
	"github.com/stretchr/testify/assert"
)

func TestChunksSpillOverWhenRowsExceedCapacity(t *testing.T) {
	// A tiny chunk budget forces a small rows-per-chunk, so this test can
	// exercise the second-chunk allocation path without spawning
	// thousands of entities.
	w, st := ecs.NewWorld(&ecs.WorldConfig{ChunkBytes: 64})
	assert.True(t, st.Ok())
	defer w.Close()

	posID := registerPosition(t, w)

	const n = 20
	entities := make([]ecs.Entity, n)
	for i := range entities {
		e, _ := w.EntityCreate()
		ecs.AddComponentValue(w, e, posID, Position{X: float32(i)})
		entities[i] = e
	}

	stats := w.GetStats()
	assert.Greater(t, stats.ChunkCount, uint32(1))

	for i, e := range entities {
		pos, st := ecs.GetComponentValue[Position](w, e, posID)
		assert.True(t, st.Ok())
		assert.Equal(t, float32(i), pos.X)
	}
}

func TestArchetypeIsSharedByEntitiesWithSameComponentSet(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	posID := registerPosition(t, w)
	velID, _ := ecs.RegisterComponentType[Velocity](w, "Velocity", ecs.ComponentDescriptor{})

	a, _ := w.EntityCreate()
	ecs.AddComponentValue(w, a, posID, Position{})
	ecs.AddComponentValue(w, a, velID, Velocity{})

	b, _ := w.EntityCreate()
	ecs.AddComponentValue(w, b, velID, Velocity{})
	ecs.AddComponentValue(w, b, posID, Position{})

	statsBefore := w.GetStats().ArchetypeCount

	c, _ := w.EntityCreate()
	ecs.AddComponentValue(w, c, posID, Position{})
	ecs.AddComponentValue(w, c, velID, Velocity{})

	assert.Equal(t, statsBefore, w.GetStats().ArchetypeCount)
}
