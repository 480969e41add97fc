package ecs_test

import (
	"testing"
	"unsafe"

	"github.com/plus3/lattice/ecs"
	"github.com/stretchr/testify/assert"
)

type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

func registerPosition(t *testing.T, w *ecs.World) ecs.ComponentID {
	t.Helper()
	id, st := ecs.RegisterComponentType[Position](w, "Position", ecs.ComponentDescriptor{})
	assert.True(t, st.Ok())
	return id
}

func TestRegisterComponentAssignsMonotonicIDs(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	posID := registerPosition(t, w)
	velID, st := ecs.RegisterComponentType[Velocity](w, "Velocity", ecs.ComponentDescriptor{})
	assert.True(t, st.Ok())

	assert.NotEqual(t, ecs.InvalidComponentID, posID)
	assert.Greater(t, velID, posID)
}

func TestRegisterComponentDuplicateNameFails(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	registerPosition(t, w)
	_, st := ecs.RegisterComponentType[Position](w, "Position", ecs.ComponentDescriptor{})
	assert.Equal(t, ecs.StatusAlreadyExists, st)
}

func TestRegisterComponentEmptyNameFails(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	_, st := w.RegisterComponent(ecs.ComponentDescriptor{Size: 4, Align: 4})
	assert.Equal(t, ecs.StatusInvalidArgument, st)
}

func TestRegisterTagComponentRejectsNonZeroSize(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	_, st := w.RegisterComponent(ecs.ComponentDescriptor{
		Name:  "Bad",
		Size:  4,
		Flags: ecs.ComponentFlagTag,
	})
	assert.Equal(t, ecs.StatusInvalidArgument, st)
}

func TestRegisterComponentRejectsNonPowerOfTwoAlign(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	_, st := w.RegisterComponent(ecs.ComponentDescriptor{
		Name:  "Bad",
		Size:  4,
		Align: 3,
	})
	assert.Equal(t, ecs.StatusInvalidArgument, st)
}

func TestFindComponentByName(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	posID := registerPosition(t, w)
	found, st := w.FindComponent("Position")
	assert.True(t, st.Ok())
	assert.Equal(t, posID, found)

	_, st = w.FindComponent("Nonexistent")
	assert.Equal(t, ecs.StatusNotFound, st)
}

func TestComponentLayoutMatchesGoType(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	posID := registerPosition(t, w)
	size, align, flags, st := w.ComponentLayout(posID)
	assert.True(t, st.Ok())
	assert.Equal(t, uint32(unsafe.Sizeof(Position{})), size)
	assert.Equal(t, uint32(unsafe.Alignof(Position{})), align)
	assert.Equal(t, ecs.ComponentFlagNone, flags)
}
