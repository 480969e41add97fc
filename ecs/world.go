package ecs

import "github.com/kamstrup/intmap"

// WorldConfig configures a World at construction time. The zero value is
// a valid configuration: a default target chunk size and the default
// make()-backed allocator.
type WorldConfig struct {
	// ChunkBytes is the target byte footprint of a chunk's storage (entity
	// array plus component columns), used to derive each archetype's
	// rows-per-chunk. Zero
	// selects DefaultChunkBytes.
	ChunkBytes uint32
	// Allocator supplies the alloc/free hooks backing entity slot tables
	// and chunk columns. The zero value selects DefaultAllocator.
	Allocator Allocator
	// InitialEntityCapacity preallocates the entity slot table to avoid
	// early growth churn. Zero defers to entityIndex's own default.
	InitialEntityCapacity uint32
}

// World owns every entity, component registration, archetype, and chunk
// in a single simulation. A World is not safe for concurrent use except
// through ForEachChunkParallel and ScheduleExecute, which fan work out
// under the caller's control and rejoin before returning.
type World struct {
	config WorldConfig

	allocator  Allocator
	entities   *entityIndex
	components *componentRegistry

	archetypes       []*Archetype
	archetypesByHash *intmap.Map[uint64, []uint32]
	emptyArchetype   *Archetype

	deferDepth    int
	deferredQueue []deferredCommand

	traceHook TraceHookFn
	inFlush   bool

	structuralMoves uint64
}

// NewWorld constructs a World from cfg. A nil cfg selects every default:
// DefaultChunkBytes and DefaultAllocator.
func NewWorld(cfg *WorldConfig) (*World, Status) {
	w := &World{
		archetypesByHash: intmap.New[uint64, []uint32](64),
	}
	if cfg != nil {
		w.config = *cfg
	}

	allocator, st := prepareAllocator(&w.config)
	if st != StatusOk {
		return nil, st
	}
	w.allocator = allocator

	w.entities = newEntityIndex(w)
	if w.config.InitialEntityCapacity > 0 {
		if st := w.entities.grow(w.config.InitialEntityCapacity); st != StatusOk {
			return nil, st
		}
	}
	w.components = newComponentRegistry()

	empty, st := w.createArchetype(nil)
	if st != StatusOk {
		return nil, st
	}
	w.emptyArchetype = empty

	return w, StatusOk
}

// Close tears the World down: every live entity's components are
// destructed, every chunk's buffers are returned to the allocator, and
// the entity slot table is freed. A World must not be used after Close.
func (w *World) Close() Status {
	for _, a := range w.archetypes {
		for _, c := range a.chunks {
			for row := uint32(0); row < c.count; row++ {
				for i, id := range a.componentIDs {
					destructComponent(w, id, c.componentPtr(i, row))
				}
			}
			w.freeChunk(c)
		}
	}

	if w.entities.entityBuf != nil {
		w.allocator.free(w.entities.entityBuf, len(w.entities.slots)*entitySlotSize, entitySlotAlign)
	}

	w.archetypes = nil
	w.archetypesByHash = intmap.New[uint64, []uint32](0)
	w.entities.slots = nil
	w.deferredQueue = nil
	return StatusOk
}

// ReserveEntities grows the entity slot table to at least minCapacity
// slots, ahead of a bulk creation loop that would otherwise trigger
// several incremental doublings.
func (w *World) ReserveEntities(minCapacity uint32) Status {
	return w.entities.grow(minCapacity)
}

// ReserveComponents preallocates the component registry's backing slice
// to at least minCount entries.
func (w *World) ReserveComponents(minCount uint32) Status {
	if uint32(cap(w.components.records)) >= minCount+1 {
		return StatusOk
	}
	grown := make([]componentRecord, len(w.components.records), minCount+1)
	copy(grown, w.components.records)
	w.components.records = grown
	return StatusOk
}

// RegisterComponent adds a new component type to the world, returning
// the dense id assigned to it.
func (w *World) RegisterComponent(desc ComponentDescriptor) (ComponentID, Status) {
	return w.components.register(desc)
}

// FindComponent looks up a previously registered component by name.
func (w *World) FindComponent(name string) (ComponentID, Status) {
	return w.components.findByName(name)
}

// ComponentName returns the registered name for id.
func (w *World) ComponentName(id ComponentID) (string, Status) {
	rec, st := w.components.get(id)
	if st != StatusOk {
		return "", st
	}
	return rec.name, StatusOk
}

// ComponentLayout returns the size, alignment, and flags a component was
// registered with.
func (w *World) ComponentLayout(id ComponentID) (size, align uint32, flags ComponentFlags, status Status) {
	rec, st := w.components.get(id)
	if st != StatusOk {
		return 0, 0, 0, st
	}
	return rec.size, rec.align, rec.flags, StatusOk
}

// EntityComponents returns the sorted component id tuple identifying e's
// current archetype, or nil with a non-Ok status if e is dead.
func (w *World) EntityComponents(e Entity) ([]ComponentID, Status) {
	slot, st := w.entities.getLive(e)
	if st != StatusOk {
		return nil, st
	}
	a := w.archetypes[slot.archetype]
	out := make([]ComponentID, len(a.componentIDs))
	copy(out, a.componentIDs)
	return out, StatusOk
}

// RegisteredComponentIDs returns every component id registered on the
// world, in registration order.
func (w *World) RegisteredComponentIDs() []ComponentID {
	n := len(w.components.records) - 1
	out := make([]ComponentID, n)
	for i := 0; i < n; i++ {
		out[i] = ComponentID(i + 1)
	}
	return out
}

// LiveEntities returns a freshly allocated snapshot of every currently
// live entity handle. The order is unspecified.
func (w *World) LiveEntities() []Entity {
	out := make([]Entity, 0, w.entities.liveCount)
	for idx, slot := range w.entities.slots {
		if slot.alive {
			out = append(out, newEntity(uint32(idx), slot.generation))
		}
	}
	return out
}
