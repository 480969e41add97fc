package ecs

import "unsafe"

// Access describes how a query term intends to touch a component's
// column, used by the schedule planner to detect conflicts between
// queries run in the same batch.
type Access uint8

const (
	AccessRead Access = iota
	AccessWrite
)

// QueryTerm is one WITH or WITHOUT clause in a query descriptor. Without
// terms ignore Access.
type QueryTerm struct {
	Component ComponentID
	Access    Access
	Without   bool
}

// QueryDescriptor selects the archetypes a Query matches: every With
// term's component must be present, and every Without term's component
// must be absent.
type QueryDescriptor struct {
	Terms []QueryTerm
}

// Query caches the set of archetypes matching a descriptor and hands out
// chunk-at-a-time iterators over them. A Query with a single worker's
// worth of columns reuses a scratch buffer across iterations so serial
// iteration performs no per-chunk allocation.
type Query struct {
	world      *World
	desc       QueryDescriptor
	archetypes []*Archetype
	withIDs    []ComponentID
	scratch    []unsafe.Pointer
}

// validateQueryDescriptor checks internal shape only: a duplicate
// component within the same With or Without set is a malformed
// descriptor (InvalidArgument). A component appearing in both sets is a
// different problem — the descriptor is well-formed but self-contradicting
// (Conflict) — and is checked separately so the two failure modes stay
// distinguishable to the caller.
func validateQueryDescriptor(desc QueryDescriptor) Status {
	if len(desc.Terms) == 0 {
		return StatusInvalidArgument
	}
	withSeen := make(map[ComponentID]bool, len(desc.Terms))
	withoutSeen := make(map[ComponentID]bool, len(desc.Terms))
	for _, t := range desc.Terms {
		if t.Component == InvalidComponentID {
			return StatusInvalidArgument
		}
		if t.Without {
			if withoutSeen[t.Component] {
				return StatusInvalidArgument
			}
			withoutSeen[t.Component] = true
		} else {
			if withSeen[t.Component] {
				return StatusInvalidArgument
			}
			withSeen[t.Component] = true
		}
	}
	for id := range withSeen {
		if withoutSeen[id] {
			return StatusConflict
		}
	}
	return StatusOk
}

// QueryCreate compiles a descriptor into a Query, immediately populating
// its archetype cache against the world's current archetype set.
func (w *World) QueryCreate(desc QueryDescriptor) (*Query, Status) {
	if st := validateQueryDescriptor(desc); st != StatusOk {
		return nil, st
	}
	for _, t := range desc.Terms {
		if _, st := w.components.get(t.Component); st != StatusOk {
			return nil, StatusNotFound
		}
	}

	var withIDs []ComponentID
	for _, t := range desc.Terms {
		if !t.Without {
			withIDs = append(withIDs, t.Component)
		}
	}

	q := &Query{
		world:   w,
		desc:    desc,
		withIDs: withIDs,
		scratch: make([]unsafe.Pointer, len(withIDs)),
	}
	q.Refresh()
	return q, StatusOk
}

func queryMatchesArchetype(desc QueryDescriptor, a *Archetype) bool {
	for _, t := range desc.Terms {
		has := a.hasComponent(t.Component)
		if t.Without && has {
			return false
		}
		if !t.Without && !has {
			return false
		}
	}
	return true
}

// Refresh rebuilds the query's archetype cache against the world's
// current archetype set. QueryCreate, IterBegin, and ForEachChunkParallel
// all call it, so callers only need it to update the cache outside those.
func (q *Query) Refresh() {
	w := q.world
	q.archetypes = q.archetypes[:0]
	for _, a := range w.archetypes {
		if queryMatchesArchetype(q.desc, a) {
			q.archetypes = append(q.archetypes, a)
		}
	}
}

// Destroy releases the query's cached state. Queries hold no
// allocator-backed buffers, so this simply drops references for the GC.
func (q *Query) Destroy() {
	q.archetypes = nil
	q.scratch = nil
}

// ChunkView is a single chunk's worth of matched rows, with one column
// pointer per With term in the query's declaration order.
type ChunkView struct {
	Entities []Entity
	Columns  []unsafe.Pointer
	Count    uint32
}

// Column returns a typed slice over the i'th With term's column for this
// view, sized to the view's row count.
func Column[T any](v ChunkView, i int) []T {
	if v.Columns[i] == nil || v.Count == 0 {
		return nil
	}
	return unsafe.Slice((*T)(v.Columns[i]), v.Count)
}

// QueryIterator walks a Query's matched archetypes one chunk at a time.
type QueryIterator struct {
	query      *Query
	archIdx    int
	chunkIdx   int
	archetype  *Archetype
	colIndices []int
	done       bool
}

// IterBegin refreshes the query's archetype cache and starts a fresh
// iteration over it. Refreshing here means a query created before an
// archetype it matches ever existed still sees that archetype once an
// entity's structural change brings it into being — callers never need
// to remember to call Refresh themselves. The iterator is a value type
// snapshot; concurrent structural changes to a chunk's archetype
// invalidate any ChunkView already obtained from an earlier Next call on
// the same World.
func (q *Query) IterBegin() *QueryIterator {
	q.Refresh()
	q.world.emitTrace(TraceEvent{Kind: TraceQueryIterBegin})
	return &QueryIterator{query: q, archIdx: -1, chunkIdx: -1}
}

func (it *QueryIterator) resolveColumns(a *Archetype) []int {
	if cap(it.colIndices) < len(it.query.withIDs) {
		it.colIndices = make([]int, len(it.query.withIDs))
	} else {
		it.colIndices = it.colIndices[:len(it.query.withIDs)]
	}
	for i, id := range it.query.withIDs {
		it.colIndices[i] = a.indexOf(id)
	}
	return it.colIndices
}

// Next advances to the next non-empty chunk, returning ok=false once the
// query's archetype set is exhausted. QUERY_ITER_END fires exactly once,
// on whichever call to Next first exhausts the archetype set.
func (it *QueryIterator) Next() (ChunkView, bool) {
	if it.done {
		return ChunkView{}, false
	}
	q := it.query
	for {
		if it.archetype == nil {
			it.archIdx++
			if it.archIdx >= len(q.archetypes) {
				it.done = true
				q.world.emitTrace(TraceEvent{Kind: TraceQueryIterEnd})
				return ChunkView{}, false
			}
			it.archetype = q.archetypes[it.archIdx]
			it.chunkIdx = -1
			it.resolveColumns(it.archetype)
		}

		it.chunkIdx++
		if it.chunkIdx >= len(it.archetype.chunks) {
			it.archetype = nil
			continue
		}

		c := it.archetype.chunks[it.chunkIdx]
		if c.count == 0 {
			continue
		}

		q.world.emitTrace(TraceEvent{Kind: TraceQueryIterChunk, ArchetypeID: it.archetype.id, ChunkIndex: uint32(it.chunkIdx)})
		return buildChunkView(q, it.archetype, c, it.colIndices), true
	}
}

// buildChunkViewIsolated builds a ChunkView backed by a freshly allocated
// column buffer instead of a Query's shared scratch slice, so it is safe
// to hand to a callback running on its own goroutine.
func buildChunkViewIsolated(a *Archetype, c *Chunk, colIndices []int) ChunkView {
	cols := make([]unsafe.Pointer, len(colIndices))
	for i, col := range colIndices {
		if col < 0 || a.componentSize[col] == 0 {
			continue
		}
		cols[i] = c.componentPtr(col, 0)
	}
	return ChunkView{
		Entities: c.entities[:c.count],
		Columns:  cols,
		Count:    c.count,
	}
}

func buildChunkView(q *Query, a *Archetype, c *Chunk, colIndices []int) ChunkView {
	cols := q.scratch
	if cap(cols) < len(colIndices) {
		cols = make([]unsafe.Pointer, len(colIndices))
	} else {
		cols = cols[:len(colIndices)]
	}

	for i, col := range colIndices {
		if col < 0 || a.componentSize[col] == 0 {
			cols[i] = nil
			continue
		}
		cols[i] = c.componentPtr(col, 0)
	}

	return ChunkView{
		Entities: c.entities[:c.count],
		Columns:  cols,
		Count:    c.count,
	}
}
