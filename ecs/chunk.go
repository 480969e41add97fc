package ecs

import "unsafe"

// Chunk is a fixed-capacity, structure-of-arrays block of rows for a
// single archetype: one entity-handle column plus one column per
// component, each backed by an allocator-provided byte buffer.
type Chunk struct {
	archetype *Archetype
	entities  []Entity
	entityBuf []byte
	columns   [][]byte
	count     uint32
	capacity  uint32
}

func (w *World) allocChunk(a *Archetype) (*Chunk, Status) {
	cap32 := a.rowsPerChunk

	entityBuf, ok := w.allocator.alloc(int(cap32)*EntityHandleSize, entityAlign)
	if !ok {
		return nil, StatusAllocationFailed
	}
	var entities []Entity
	if cap32 > 0 {
		entities = unsafe.Slice((*Entity)(unsafe.Pointer(&entityBuf[0])), cap32)
	}

	columns := make([][]byte, len(a.componentIDs))
	for i, size := range a.componentSize {
		if size == 0 {
			continue
		}
		rec, st := w.components.get(a.componentIDs[i])
		if st != StatusOk {
			return nil, StatusInvalidArgument
		}
		buf, ok := w.allocator.alloc(int(cap32)*int(size), int(rec.align))
		if !ok {
			return nil, StatusAllocationFailed
		}
		columns[i] = buf
	}

	c := &Chunk{
		archetype: a,
		entities:  entities,
		entityBuf: entityBuf,
		columns:   columns,
		capacity:  cap32,
	}
	return c, StatusOk
}

func (w *World) freeChunk(c *Chunk) {
	a := c.archetype
	w.allocator.free(c.entityBuf, int(c.capacity)*EntityHandleSize, entityAlign)
	for i, size := range a.componentSize {
		if size == 0 || c.columns[i] == nil {
			continue
		}
		rec, st := w.components.get(a.componentIDs[i])
		align := 1
		if st == StatusOk {
			align = int(rec.align)
		}
		w.allocator.free(c.columns[i], int(c.capacity)*int(size), align)
	}
}

// componentPtr returns a pointer to the component at (column, row).
func (c *Chunk) componentPtr(column int, row uint32) unsafe.Pointer {
	size := c.archetype.componentSize[column]
	if size == 0 {
		return nil
	}
	buf := c.columns[column]
	return unsafe.Pointer(&buf[uintptr(row)*uintptr(size)])
}

// allocRowIndexed appends a new row to the archetype's chunk list,
// growing it with a fresh chunk if the tail chunk is full. It returns the
// chunk index and row the entity now occupies.
func (a *Archetype) allocRowIndexed(w *World, e Entity) (chunkIdx uint32, row uint32, status Status) {
	if len(a.chunks) == 0 || a.chunks[len(a.chunks)-1].count == a.chunks[len(a.chunks)-1].capacity {
		c, st := w.allocChunk(a)
		if st != StatusOk {
			return 0, 0, st
		}
		a.chunks = append(a.chunks, c)
	}

	chunkIdx = uint32(len(a.chunks) - 1)
	c := a.chunks[chunkIdx]
	row = c.count
	c.entities[row] = e
	c.count++
	a.entityCount++
	return chunkIdx, row, StatusOk
}

// swapRemoveRow removes the row at (chunkIdx, row) by moving the chunk's
// last occupied row into its place, running destructors on the vacated
// slot's previous occupant's replaced components is the caller's
// responsibility beforehand. It reports the entity that was moved into
// the vacated slot, if any, so the caller can fix up that entity's slot.
func (a *Archetype) swapRemoveRow(w *World, chunkIdx, row uint32) (movedEntity Entity, movedInto bool) {
	c := a.chunks[chunkIdx]
	last := c.count - 1

	if row != last {
		movedEntity = c.entities[last]
		c.entities[row] = movedEntity
		for i, size := range a.componentSize {
			if size == 0 {
				continue
			}
			dst := c.componentPtr(i, row)
			src := c.componentPtr(i, last)
			moveComponent(w, a.componentIDs[i], dst, src)
		}
		movedInto = true
		w.structuralMoves++
	}

	var zero Entity
	c.entities[last] = zero
	c.count--
	a.entityCount--

	if c.count == 0 && len(a.chunks) > 1 && chunkIdx == uint32(len(a.chunks)-1) {
		w.freeChunk(c)
		a.chunks = a.chunks[:len(a.chunks)-1]
	}

	return movedEntity, movedInto
}

// moveComponent relocates a component value from src to dst using the
// registered Move hook when present, falling back to a raw byte copy for
// trivially relocatable or hook-less components.
func moveComponent(w *World, id ComponentID, dst, src unsafe.Pointer) {
	rec, st := w.components.get(id)
	if st != StatusOk || rec.size == 0 {
		return
	}
	if rec.move != nil && rec.flags&ComponentFlagTriviallyRelocatable == 0 {
		rec.move(dst, src, rec.user)
		return
	}
	memcopy(dst, src, uintptr(rec.size))
}

func memcopy(dst, src unsafe.Pointer, size uintptr) {
	dstSlice := unsafe.Slice((*byte)(dst), size)
	srcSlice := unsafe.Slice((*byte)(src), size)
	copy(dstSlice, srcSlice)
}

func zeroMemory(dst unsafe.Pointer, size uintptr) {
	dstSlice := unsafe.Slice((*byte)(dst), size)
	for i := range dstSlice {
		dstSlice[i] = 0
	}
}

func destructComponent(w *World, id ComponentID, dst unsafe.Pointer) {
	rec, st := w.components.get(id)
	if st != StatusOk || rec.size == 0 {
		return
	}
	if rec.dtor != nil {
		rec.dtor(dst, rec.user)
	}
}

func constructComponent(w *World, id ComponentID, dst unsafe.Pointer) {
	rec, st := w.components.get(id)
	if st != StatusOk || rec.size == 0 {
		return
	}
	if rec.ctor != nil {
		rec.ctor(dst, rec.user)
		return
	}
	zeroMemory(dst, uintptr(rec.size))
}
