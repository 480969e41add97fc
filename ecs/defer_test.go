package ecs_test

import (
	"testing"

	"github.com/plus3/lattice/ecs"
	"github.com/stretchr/testify/assert"
)

func TestDeferredAddComponentAppliesOnFlush(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	posID := registerPosition(t, w)
	e, _ := w.EntityCreate()

	w.BeginDefer()
	st := ecs.AddComponentValue(w, e, posID, Position{X: 9, Y: 9})
	assert.True(t, st.Ok())
	assert.False(t, w.HasComponent(e, posID))

	st = w.EndDefer()
	assert.True(t, st.Ok())
	assert.True(t, w.HasComponent(e, posID))
}

func TestDeferredCommandsApplyInFIFOOrder(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	posID := registerPosition(t, w)
	e, _ := w.EntityCreate()

	w.BeginDefer()
	ecs.AddComponentValue(w, e, posID, Position{X: 1})
	w.RemoveComponent(e, posID)
	w.EndDefer()

	assert.False(t, w.HasComponent(e, posID))
}

func TestDeferredPayloadIsCopiedNotAliased(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	posID := registerPosition(t, w)
	e, _ := w.EntityCreate()

	value := Position{X: 1, Y: 1}
	w.BeginDefer()
	ecs.AddComponentValue(w, e, posID, value)
	value.X = 999
	w.EndDefer()

	got, st := ecs.GetComponentValue[Position](w, e, posID)
	assert.True(t, st.Ok())
	assert.Equal(t, Position{X: 1, Y: 1}, got)
}

func TestDeferredScopesNest(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	posID := registerPosition(t, w)
	e, _ := w.EntityCreate()

	w.BeginDefer()
	w.BeginDefer()
	ecs.AddComponentValue(w, e, posID, Position{X: 3})
	w.EndDefer()
	assert.False(t, w.HasComponent(e, posID), "inner EndDefer must not flush")
	w.EndDefer()
	assert.True(t, w.HasComponent(e, posID))
}

func TestFlushStopsAtFirstFailureAndKeepsEarlierEffects(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	posID := registerPosition(t, w)
	a, _ := w.EntityCreate()
	b, _ := w.EntityCreate()

	w.BeginDefer()
	ecs.AddComponentValue(w, a, posID, Position{X: 1})
	w.RemoveComponent(b, posID) // b never had it: fails
	ecs.AddComponentValue(w, b, posID, Position{X: 2})
	st := w.EndDefer()

	assert.False(t, st.Ok())
	assert.True(t, w.HasComponent(a, posID))
	assert.False(t, w.HasComponent(b, posID))
}

func TestEndDeferWithoutBeginFails(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	st := w.EndDefer()
	assert.Equal(t, ecs.StatusConflict, st)
}
