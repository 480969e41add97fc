package ecs

// EntityHandleSize is the width, in bytes, of the packed entity id stored
// as the implicit first column of every chunk.
const EntityHandleSize = 8

// DefaultChunkBytes is the target size of a chunk's backing storage
// (entity array plus component columns) when a WorldConfig leaves
// ChunkBytes at zero.
const DefaultChunkBytes = 16 * 1024

// MaxRowsPerChunk bounds computeRowsPerChunk regardless of how small the
// per-row footprint is, keeping row/chunk indices comfortably inside
// uint32 and chunk iteration cache-friendly.
const MaxRowsPerChunk = 4096

// Archetype is the set of entities sharing an identical, sorted component
// id tuple, stored as a list of fixed-capacity chunks.
type Archetype struct {
	id            uint32
	componentIDs  []ComponentID
	componentSize []uint32
	rowsPerChunk  uint32
	chunks        []*Chunk
	entityCount   uint32
}

func (a *Archetype) indexOf(id ComponentID) int {
	for i, c := range a.componentIDs {
		if c == id {
			return i
		}
	}
	return -1
}

func (a *Archetype) hasComponent(id ComponentID) bool {
	return a.indexOf(id) >= 0
}

// hashComponentIDs computes an FNV-1a hash over a sorted component id
// tuple, used as the archetype lookup key.
func hashComponentIDs(ids []ComponentID) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211

	h := uint64(offset64)
	for _, id := range ids {
		v := uint32(id)
		for i := 0; i < 4; i++ {
			h ^= uint64(byte(v))
			h *= prime64
			v >>= 8
		}
	}
	return h
}

func componentIDsEqual(a, b []ComponentID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortComponentIDs(ids []ComponentID) {
	// insertion sort: archetype tuples are small (single-digit component
	// counts in practice), so this beats sort.Slice's overhead.
	for i := 1; i < len(ids); i++ {
		v := ids[i]
		j := i - 1
		for j >= 0 && ids[j] > v {
			ids[j+1] = ids[j]
			j--
		}
		ids[j+1] = v
	}
}

// dedupSortedComponentIDs removes adjacent duplicates from an
// already-sorted slice in place, returning the shortened slice.
func dedupSortedComponentIDs(ids []ComponentID) []ComponentID {
	if len(ids) == 0 {
		return ids
	}
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}

// computeRowsPerChunk implements the sizing formula from the reference
// implementation: as many rows as fit the target chunk footprint,
// clamped to [1, MaxRowsPerChunk].
func computeRowsPerChunk(chunkBytes uint32, componentSizes []uint32) uint32 {
	var rowBytes uint64 = EntityHandleSize
	for _, s := range componentSizes {
		rowBytes += uint64(s)
	}
	if rowBytes == 0 {
		rowBytes = EntityHandleSize
	}

	rows := uint32(uint64(chunkBytes) / rowBytes)
	if rows < 1 {
		rows = 1
	}
	if rows > MaxRowsPerChunk {
		rows = MaxRowsPerChunk
	}
	return rows
}

// findArchetype looks up an existing archetype by its sorted component id
// tuple, returning nil if none matches.
func (w *World) findArchetype(ids []ComponentID) *Archetype {
	h := hashComponentIDs(ids)
	bucket, ok := w.archetypesByHash.Get(h)
	if !ok {
		return nil
	}
	for _, idx := range bucket {
		a := w.archetypes[idx]
		if componentIDsEqual(a.componentIDs, ids) {
			return a
		}
	}
	return nil
}

// findOrCreateArchetype resolves the archetype for a sorted, deduplicated
// component id tuple, creating and registering a new one if needed.
func (w *World) findOrCreateArchetype(ids []ComponentID) (*Archetype, Status) {
	if a := w.findArchetype(ids); a != nil {
		return a, StatusOk
	}
	return w.createArchetype(ids)
}

func (w *World) createArchetype(ids []ComponentID) (*Archetype, Status) {
	owned := make([]ComponentID, len(ids))
	copy(owned, ids)

	sizes := make([]uint32, len(owned))
	for i, id := range owned {
		rec, st := w.components.get(id)
		if st != StatusOk {
			return nil, StatusInvalidArgument
		}
		sizes[i] = rec.size
	}

	chunkBytes := w.config.ChunkBytes
	if chunkBytes == 0 {
		chunkBytes = DefaultChunkBytes
	}

	a := &Archetype{
		id:            uint32(len(w.archetypes)),
		componentIDs:  owned,
		componentSize: sizes,
		rowsPerChunk:  computeRowsPerChunk(chunkBytes, sizes),
	}

	w.archetypes = append(w.archetypes, a)
	h := hashComponentIDs(owned)
	bucket, _ := w.archetypesByHash.Get(h)
	w.archetypesByHash.Put(h, append(bucket, a.id))

	return a, StatusOk
}
