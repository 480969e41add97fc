package ecs

import (
	"reflect"
	"unsafe"
)

// RegisterComponentType registers T as a component using its Go layout
// for size and alignment, in place of hand-filling a ComponentDescriptor.
// A zero-sized T is registered as a tag. Ctor/Dtor/Move hooks may still
// be supplied through desc; its Size and Align fields are overwritten
// from T's reflected layout, and the Tag bit of Flags is set or cleared
// to match (other flag bits are kept).
func RegisterComponentType[T any](w *World, name string, desc ComponentDescriptor) (ComponentID, Status) {
	var zero T
	t := reflect.TypeOf(zero)

	desc.Name = name
	if t == nil || t.Size() == 0 {
		desc.Size = 0
		desc.Align = 0
		desc.Flags |= ComponentFlagTag
	} else {
		desc.Size = uint32(t.Size())
		desc.Align = uint32(t.Align())
		desc.Flags &^= ComponentFlagTag
	}

	return w.RegisterComponent(desc)
}

// AddComponentValue attaches a typed component value to e, copying value
// into the archetype storage. It is sugar over AddComponent, so inside a
// deferred scope the value is copied into the deferred command buffer and
// applied on flush, exactly as AddComponent does.
func AddComponentValue[T any](w *World, e Entity, id ComponentID, value T) Status {
	return w.AddComponent(e, id, unsafe.Pointer(&value))
}

// GetComponentValue reads a copy of entity e's component id as a T. The
// zero value is returned alongside a non-Ok status if the entity is dead
// or lacks the component.
func GetComponentValue[T any](w *World, e Entity, id ComponentID) (T, Status) {
	var out T
	ptr, st := w.GetComponent(e, id)
	if st != StatusOk {
		return out, st
	}
	if ptr == nil {
		return out, StatusOk
	}
	out = *(*T)(ptr)
	return out, StatusOk
}

// GetComponentPointer returns a live pointer to entity e's component id,
// typed as *T, for in-place mutation. The pointer is invalidated by any
// structural change touching e.
func GetComponentPointer[T any](w *World, e Entity, id ComponentID) (*T, Status) {
	ptr, st := w.GetComponent(e, id)
	if st != StatusOk {
		return nil, st
	}
	if ptr == nil {
		return nil, StatusOk
	}
	return (*T)(ptr), StatusOk
}
