package ecs

import "unsafe"

// ComponentID is a dense, 1-based identifier assigned strictly
// monotonically as components are registered. Zero is reserved invalid.
type ComponentID uint32

// InvalidComponentID never denotes a registered component.
const InvalidComponentID ComponentID = 0

// ComponentFlags is a bit set describing storage requirements for a
// component type.
type ComponentFlags uint32

const (
	ComponentFlagNone ComponentFlags = 0
	// ComponentFlagTag marks a zero-size marker component. Size must be 0
	// and alignment must be 0 or 1.
	ComponentFlagTag ComponentFlags = 1 << 0
	// ComponentFlagTriviallyRelocatable tells the storage layer it may
	// move the component's bytes with a plain copy, ignoring Move.
	ComponentFlagTriviallyRelocatable ComponentFlags = 1 << 1
)

// ComponentCtorFn initializes a freshly allocated component slot when no
// initial value was supplied to AddComponent.
type ComponentCtorFn func(dst unsafe.Pointer, user any)

// ComponentDtorFn releases resources held by a component value before its
// storage is reused or freed.
type ComponentDtorFn func(dst unsafe.Pointer, user any)

// ComponentMoveFn relocates a component value from src to dst, e.g. during
// a swap-remove or a cross-archetype migration. When nil, storage falls
// back to a byte-for-byte copy.
type ComponentMoveFn func(dst, src unsafe.Pointer, user any)

// ComponentDescriptor is the caller-supplied definition of a component
// type, mirroring lt_component_desc_t from the reference C API.
type ComponentDescriptor struct {
	Name  string
	Size  uint32
	Align uint32
	Flags ComponentFlags
	Ctor  ComponentCtorFn
	Dtor  ComponentDtorFn
	Move  ComponentMoveFn
	User  any
}

type componentRecord struct {
	name  string
	size  uint32
	align uint32
	flags ComponentFlags
	ctor  ComponentCtorFn
	dtor  ComponentDtorFn
	move  ComponentMoveFn
	user  any
}

func (r *componentRecord) isTag() bool {
	return r.flags&ComponentFlagTag != 0
}

// componentRegistry stores every registered component's layout, keyed by
// a dense id assigned strictly monotonically starting at 1. Index 0 is a
// permanent placeholder for InvalidComponentID.
type componentRegistry struct {
	records []componentRecord
	byName  map[string]ComponentID
}

func newComponentRegistry() *componentRegistry {
	return &componentRegistry{
		records: make([]componentRecord, 1),
		byName:  make(map[string]ComponentID),
	}
}

func isPowerOfTwo(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}

func (r *componentRegistry) register(desc ComponentDescriptor) (ComponentID, Status) {
	if desc.Name == "" {
		return InvalidComponentID, StatusInvalidArgument
	}

	align := desc.Align
	if desc.Flags&ComponentFlagTag != 0 {
		if desc.Size != 0 {
			return InvalidComponentID, StatusInvalidArgument
		}
		if align != 0 && align != 1 {
			return InvalidComponentID, StatusInvalidArgument
		}
		align = 1
	} else {
		if desc.Size == 0 {
			return InvalidComponentID, StatusInvalidArgument
		}
		if !isPowerOfTwo(align) {
			return InvalidComponentID, StatusInvalidArgument
		}
	}

	if _, exists := r.byName[desc.Name]; exists {
		return InvalidComponentID, StatusAlreadyExists
	}

	nextID := len(r.records)
	if nextID >= int(^ComponentID(0)) {
		return InvalidComponentID, StatusCapacityReached
	}

	r.records = append(r.records, componentRecord{
		name:  desc.Name,
		size:  desc.Size,
		align: align,
		flags: desc.Flags,
		ctor:  desc.Ctor,
		dtor:  desc.Dtor,
		move:  desc.Move,
		user:  desc.User,
	})
	id := ComponentID(nextID)
	r.byName[desc.Name] = id
	return id, StatusOk
}

func (r *componentRegistry) findByName(name string) (ComponentID, Status) {
	id, ok := r.byName[name]
	if !ok {
		return InvalidComponentID, StatusNotFound
	}
	return id, StatusOk
}

func (r *componentRegistry) get(id ComponentID) (*componentRecord, Status) {
	if id == InvalidComponentID || int(id) >= len(r.records) {
		return nil, StatusNotFound
	}
	return &r.records[id], StatusOk
}

func (r *componentRegistry) count() uint32 {
	return uint32(len(r.records) - 1)
}
