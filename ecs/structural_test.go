package ecs_test

import (
	"testing"
	"unsafe"

	"github.com/plus3/lattice/ecs"
	"github.com/stretchr/testify/assert"
)

func TestAddComponentStoresValue(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	posID := registerPosition(t, w)
	e, _ := w.EntityCreate()

	st := ecs.AddComponentValue(w, e, posID, Position{X: 1, Y: 2})
	assert.True(t, st.Ok())
	assert.True(t, w.HasComponent(e, posID))

	got, st := ecs.GetComponentValue[Position](w, e, posID)
	assert.True(t, st.Ok())
	assert.Equal(t, Position{X: 1, Y: 2}, got)
}

func TestAddComponentAlreadyPresentFails(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	posID := registerPosition(t, w)
	e, _ := w.EntityCreate()
	ecs.AddComponentValue(w, e, posID, Position{})

	st := ecs.AddComponentValue(w, e, posID, Position{})
	assert.Equal(t, ecs.StatusAlreadyExists, st)
}

func TestAddComponentMigratesAndPreservesOtherComponents(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	posID := registerPosition(t, w)
	velID, _ := ecs.RegisterComponentType[Velocity](w, "Velocity", ecs.ComponentDescriptor{})

	e, _ := w.EntityCreate()
	ecs.AddComponentValue(w, e, posID, Position{X: 5, Y: 6})
	ecs.AddComponentValue(w, e, velID, Velocity{DX: 1, DY: 1})

	pos, st := ecs.GetComponentValue[Position](w, e, posID)
	assert.True(t, st.Ok())
	assert.Equal(t, Position{X: 5, Y: 6}, pos)

	vel, st := ecs.GetComponentValue[Velocity](w, e, velID)
	assert.True(t, st.Ok())
	assert.Equal(t, Velocity{DX: 1, DY: 1}, vel)
}

func TestRemoveComponentMigratesAndDrops(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	posID := registerPosition(t, w)
	velID, _ := ecs.RegisterComponentType[Velocity](w, "Velocity", ecs.ComponentDescriptor{})

	e, _ := w.EntityCreate()
	ecs.AddComponentValue(w, e, posID, Position{X: 1, Y: 1})
	ecs.AddComponentValue(w, e, velID, Velocity{DX: 2, DY: 2})

	st := w.RemoveComponent(e, velID)
	assert.True(t, st.Ok())
	assert.False(t, w.HasComponent(e, velID))
	assert.True(t, w.HasComponent(e, posID))

	pos, st := ecs.GetComponentValue[Position](w, e, posID)
	assert.True(t, st.Ok())
	assert.Equal(t, Position{X: 1, Y: 1}, pos)
}

func TestRemoveComponentNotPresentFails(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	posID := registerPosition(t, w)
	e, _ := w.EntityCreate()

	st := w.RemoveComponent(e, posID)
	assert.Equal(t, ecs.StatusNotFound, st)
}

func TestTagComponentHasNoStorageButIsVisibleToQueries(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	tagID, st := w.RegisterComponent(ecs.ComponentDescriptor{Name: "Enemy", Flags: ecs.ComponentFlagTag})
	assert.True(t, st.Ok())

	e, _ := w.EntityCreate()
	st = w.AddComponent(e, tagID, nil)
	assert.True(t, st.Ok())
	assert.True(t, w.HasComponent(e, tagID))

	ptr, st := w.GetComponent(e, tagID)
	assert.True(t, st.Ok())
	assert.Nil(t, ptr)
}

func TestDtorRunsExactlyOncePerAddRemovePair(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	var dtorCalls int
	id, st := w.RegisterComponent(ecs.ComponentDescriptor{
		Name:  "Handle",
		Size:  4,
		Align: 4,
		Dtor: func(dst unsafe.Pointer, user any) {
			dtorCalls++
		},
	})
	assert.True(t, st.Ok())

	e, _ := w.EntityCreate()
	st = w.AddComponent(e, id, nil)
	assert.True(t, st.Ok())
	assert.Equal(t, 0, dtorCalls)

	st = w.RemoveComponent(e, id)
	assert.True(t, st.Ok())
	assert.Equal(t, 1, dtorCalls)
}

func TestDtorRunsExactlyOnceOnEntityDestroy(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	var dtorCalls int
	id, _ := w.RegisterComponent(ecs.ComponentDescriptor{
		Name:  "Handle",
		Size:  4,
		Align: 4,
		Dtor: func(dst unsafe.Pointer, user any) {
			dtorCalls++
		},
	})

	e, _ := w.EntityCreate()
	w.AddComponent(e, id, nil)

	st := w.EntityDestroy(e)
	assert.True(t, st.Ok())
	assert.Equal(t, 1, dtorCalls)
}

func TestSwapRemoveFixesUpMovedEntitySlot(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	posID := registerPosition(t, w)
	a, _ := w.EntityCreate()
	b, _ := w.EntityCreate()
	c, _ := w.EntityCreate()
	ecs.AddComponentValue(w, a, posID, Position{X: 1})
	ecs.AddComponentValue(w, b, posID, Position{X: 2})
	ecs.AddComponentValue(w, c, posID, Position{X: 3})

	st := w.EntityDestroy(a)
	assert.True(t, st.Ok())

	assert.True(t, w.EntityIsAlive(b))
	assert.True(t, w.EntityIsAlive(c))

	posB, st := ecs.GetComponentValue[Position](w, b, posID)
	assert.True(t, st.Ok())
	assert.Equal(t, Position{X: 2}, posB)

	posC, st := ecs.GetComponentValue[Position](w, c, posID)
	assert.True(t, st.Ok())
	assert.Equal(t, Position{X: 3}, posC)
}
