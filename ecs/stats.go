package ecs

// Stats is a point-in-time snapshot of a World's internal bookkeeping,
// useful for tests and the benchmark harness rather than hot-path logic.
type Stats struct {
	LiveEntities uint32
	// EntityCapacity and AllocatedEntitySlots both report the current
	// size of the entity slot table: this implementation has no
	// separate reservation pool distinct from the table itself, so the
	// two counters coincide.
	EntityCapacity       uint32
	AllocatedEntitySlots uint32
	FreeSlots            uint32
	ArchetypeCount       uint32
	ChunkCount           uint32
	ComponentCount       uint32
	DeferredPending      int
	DeferDepth           int
	// StructuralMoves counts every row-copying swap-remove and
	// archetype migration since the World was created. It is
	// monotonically non-decreasing for the lifetime of the World.
	StructuralMoves uint64
}

// GetStats reports the current live-entity, archetype, and chunk counts.
func (w *World) GetStats() Stats {
	var chunkCount uint32
	for _, a := range w.archetypes {
		chunkCount += uint32(len(a.chunks))
	}
	capacity := w.entities.capacity()
	return Stats{
		LiveEntities:         w.entities.liveCount,
		EntityCapacity:       capacity,
		AllocatedEntitySlots: capacity,
		FreeSlots:            w.entities.freeCount,
		ArchetypeCount:       uint32(len(w.archetypes)),
		ChunkCount:           chunkCount,
		ComponentCount:       w.components.count(),
		DeferredPending:      len(w.deferredQueue),
		DeferDepth:           w.deferDepth,
		StructuralMoves:      w.structuralMoves,
	}
}
