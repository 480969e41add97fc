package ecs

import "unsafe"

// EntityCreate mints a fresh entity with no components, placing it in the
// empty archetype. It is always immediate: entity creation never
// participates in the deferred command buffer, since nothing else can
// reference the handle until this call returns it.
func (w *World) EntityCreate() (Entity, Status) {
	e, st := w.entities.create()
	if st != StatusOk {
		return NullEntity, st
	}

	chunkIdx, row, st := w.emptyArchetype.allocRowIndexed(w, e)
	if st != StatusOk {
		w.entities.release(e.Index())
		return NullEntity, st
	}

	slot := &w.entities.slots[e.Index()]
	slot.archetype = w.emptyArchetype.id
	slot.chunk = chunkIdx
	slot.row = row

	w.emitTrace(TraceEvent{Kind: TraceEntityCreate, Entity: e})
	return e, StatusOk
}

// EntityIsAlive reports whether e still denotes a live entity: its slot
// index is in range, occupied, and its generation matches.
func (w *World) EntityIsAlive(e Entity) bool {
	return w.entities.isAlive(e)
}

// EntityDestroy removes an entity and every component it holds. Inside a
// deferred scope the destruction is enqueued instead of applied.
func (w *World) EntityDestroy(e Entity) Status {
	if w.deferDepth > 0 {
		return w.enqueueDestroyEntity(e)
	}
	return w.destroyEntityNow(e)
}

func (w *World) destroyEntityNow(e Entity) Status {
	slot, st := w.entities.getLive(e)
	if st != StatusOk {
		return st
	}

	a := w.archetypes[slot.archetype]
	c := a.chunks[slot.chunk]
	for i, id := range a.componentIDs {
		destructComponent(w, id, c.componentPtr(i, slot.row))
	}

	moved, ok := a.swapRemoveRow(w, slot.chunk, slot.row)
	if ok {
		movedSlot := &w.entities.slots[moved.Index()]
		movedSlot.row = slot.row
	}

	w.entities.release(e.Index())
	w.emitTrace(TraceEvent{Kind: TraceEntityDestroy, Entity: e})
	return StatusOk
}

// HasComponent reports whether a live entity currently carries id.
func (w *World) HasComponent(e Entity, id ComponentID) bool {
	slot, st := w.entities.getLive(e)
	if st != StatusOk {
		return false
	}
	return w.archetypes[slot.archetype].hasComponent(id)
}

// GetComponent returns a pointer to entity e's component id storage, or
// nil with a non-Ok status if the entity is dead or lacks the component.
// The pointer is valid until the next structural change touching e.
func (w *World) GetComponent(e Entity, id ComponentID) (unsafe.Pointer, Status) {
	slot, st := w.entities.getLive(e)
	if st != StatusOk {
		return nil, st
	}
	a := w.archetypes[slot.archetype]
	col := a.indexOf(id)
	if col < 0 {
		return nil, StatusNotFound
	}
	if a.componentSize[col] == 0 {
		return nil, StatusOk
	}
	c := a.chunks[slot.chunk]
	return c.componentPtr(col, slot.row), StatusOk
}

// AddComponent attaches component id to entity e, migrating it to the
// archetype for its enlarged component set. When value is non-nil its
// bytes are copied into the new slot; otherwise the component's Ctor
// hook runs (or the slot is zeroed if none was registered). Inside a
// deferred scope the value bytes are copied into an owned buffer and the
// operation is enqueued instead of applied immediately.
func (w *World) AddComponent(e Entity, id ComponentID, value unsafe.Pointer) Status {
	if w.deferDepth > 0 {
		return w.enqueueAddComponent(e, id, value)
	}
	return w.addComponentNow(e, id, value)
}

func (w *World) addComponentNow(e Entity, id ComponentID, value unsafe.Pointer) Status {
	slot, st := w.entities.getLive(e)
	if st != StatusOk {
		return st
	}
	rec, st := w.components.get(id)
	if st != StatusOk {
		return StatusInvalidArgument
	}

	oldArch := w.archetypes[slot.archetype]
	if oldArch.hasComponent(id) {
		return StatusAlreadyExists
	}

	newIDs := make([]ComponentID, len(oldArch.componentIDs)+1)
	copy(newIDs, oldArch.componentIDs)
	newIDs[len(oldArch.componentIDs)] = id
	sortComponentIDs(newIDs)

	newArch, st := w.findOrCreateArchetype(newIDs)
	if st != StatusOk {
		return st
	}

	return w.migrateEntity(e, slot, oldArch, newArch, func(c *Chunk, row uint32) {
		col := newArch.indexOf(id)
		if rec.size == 0 {
			return
		}
		dst := c.componentPtr(col, row)
		if value != nil {
			memcopy(dst, value, uintptr(rec.size))
		} else {
			constructComponent(w, id, dst)
		}
	}, TraceComponentAdd)
}

// RemoveComponent detaches component id from entity e, migrating it to
// the archetype for its shrunken component set and running the
// component's Dtor hook on the value being dropped. Inside a deferred
// scope the removal is enqueued instead of applied immediately.
func (w *World) RemoveComponent(e Entity, id ComponentID) Status {
	if w.deferDepth > 0 {
		return w.enqueueRemoveComponent(e, id)
	}
	return w.removeComponentNow(e, id)
}

func (w *World) removeComponentNow(e Entity, id ComponentID) Status {
	slot, st := w.entities.getLive(e)
	if st != StatusOk {
		return st
	}

	oldArch := w.archetypes[slot.archetype]
	col := oldArch.indexOf(id)
	if col < 0 {
		return StatusNotFound
	}

	newIDs := make([]ComponentID, 0, len(oldArch.componentIDs)-1)
	for _, c := range oldArch.componentIDs {
		if c != id {
			newIDs = append(newIDs, c)
		}
	}

	newArch, st := w.findOrCreateArchetype(newIDs)
	if st != StatusOk {
		return st
	}

	return w.migrateEntity(e, slot, oldArch, newArch, nil, TraceComponentRemove)
}

// migrateEntity moves entity e's row from oldArch to newArch, copying
// every component shared by both archetypes and invoking fillNew (if
// provided) to populate any component newArch adds beyond oldArch's set.
// The vacated row in oldArch is swap-removed after the copy. traceKind is
// the COMPONENT_ADD/COMPONENT_REMOVE event this migration represents to a
// trace hook. Every migration counts as one structural move regardless of
// how many components it copies.
func (w *World) migrateEntity(e Entity, slot *entitySlot, oldArch, newArch *Archetype, fillNew func(c *Chunk, row uint32), traceKind TraceEventKind) Status {
	oldChunkIdx, oldRow := slot.chunk, slot.row
	oldChunk := oldArch.chunks[oldChunkIdx]

	newChunkIdx, newRow, st := newArch.allocRowIndexed(w, e)
	if st != StatusOk {
		return st
	}
	newChunk := newArch.chunks[newChunkIdx]

	for i, id := range oldArch.componentIDs {
		newCol := newArch.indexOf(id)
		if newCol < 0 {
			destructComponent(w, id, oldChunk.componentPtr(i, oldRow))
			continue
		}
		size := oldArch.componentSize[i]
		if size == 0 {
			continue
		}
		dst := newChunk.componentPtr(newCol, newRow)
		src := oldChunk.componentPtr(i, oldRow)
		moveComponent(w, id, dst, src)
	}

	if fillNew != nil {
		fillNew(newChunk, newRow)
	}
	w.structuralMoves++

	moved, ok := oldArch.swapRemoveRow(w, oldChunkIdx, oldRow)
	if ok {
		movedSlot := &w.entities.slots[moved.Index()]
		movedSlot.row = oldRow
	}

	slot.archetype = newArch.id
	slot.chunk = newChunkIdx
	slot.row = newRow

	w.emitTrace(TraceEvent{Kind: traceKind, Entity: e, ArchetypeID: newArch.id})
	return StatusOk
}
