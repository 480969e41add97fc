package ecs

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ChunkCallback processes one matched chunk. It must not perform
// structural mutations directly unless the World is in a deferred scope;
// ForEachChunkParallel does not open one for the caller.
type ChunkCallback func(view ChunkView)

// ForEachChunkParallel refreshes q, then invokes fn once per matched,
// non-empty chunk, fanning out across workerCount goroutines. It
// requires the world be outside a deferred scope (defer_depth == 0),
// returning Conflict otherwise, and requires workerCount >= 1, returning
// InvalidArgument otherwise. A workerCount of exactly one runs
// synchronously on the calling goroutine using the query's shared
// scratch buffer, performing no allocation beyond the iterator itself; a
// workerCount greater than one allocates a per-goroutine column buffer
// per chunk, since the shared scratch buffer is not safe to share across
// concurrent callbacks.
func (w *World) ForEachChunkParallel(q *Query, workerCount int, fn ChunkCallback) Status {
	if q == nil || fn == nil {
		return StatusInvalidArgument
	}
	if workerCount < 1 {
		return StatusInvalidArgument
	}
	if w.deferDepth != 0 {
		return StatusConflict
	}

	if workerCount == 1 {
		it := q.IterBegin() // refreshes q
		for {
			view, ok := it.Next()
			if !ok {
				return StatusOk
			}
			fn(view)
		}
	}

	q.Refresh()
	q.world.emitTrace(TraceEvent{Kind: TraceQueryIterBegin})

	type unit struct {
		a *Archetype
		c *Chunk
	}
	var units []unit
	for _, a := range q.archetypes {
		for _, c := range a.chunks {
			if c.count == 0 {
				continue
			}
			units = append(units, unit{a, c})
		}
	}
	if len(units) == 0 {
		q.world.emitTrace(TraceEvent{Kind: TraceQueryIterEnd})
		return StatusOk
	}

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(workerCount)

	for _, u := range units {
		u := u
		colIndices := make([]int, len(q.withIDs))
		for i, id := range q.withIDs {
			colIndices[i] = u.a.indexOf(id)
		}
		g.Go(func() error {
			view := buildChunkViewIsolated(u.a, u.c, colIndices)
			fn(view)
			return nil
		})
	}

	// QUERY_ITER_END fires whether the fan-out completed cleanly or a
	// worker returned an error, so a trace hook always sees a matching
	// end for every begin.
	status := statusFromErr(g.Wait())
	q.world.emitTrace(TraceEvent{Kind: TraceQueryIterEnd, Status: status})
	return status
}

func statusFromErr(err error) Status {
	if err != nil {
		return StatusConflict
	}
	return StatusOk
}
