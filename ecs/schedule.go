package ecs

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ScheduleFn is one unit of scheduled work, run with the query it was
// registered against and the worker count ScheduleExecute was called
// with.
type ScheduleFn func(w *World, q *Query, workers int)

// ScheduleEntry pairs a query with the function that consumes it. Fn
// decides for itself whether to iterate serially or fan out through
// ForEachChunkParallel; the schedule only guarantees Fn does not run
// concurrently with another entry it conflicts with.
type ScheduleEntry struct {
	Query *Query
	Fn    ScheduleFn
}

// ScheduleStats summarizes the batching a Schedule produced, matching the
// counters callers use to sanity-check planner output.
type ScheduleStats struct {
	BatchCount   int
	EdgeCount    int
	MaxBatchSize int
}

// Schedule is a plan of entries grouped into sequential batches, where
// every entry within a batch may run concurrently with the others in
// that batch because none of their queries' write/write or read/write
// component sets overlap.
type Schedule struct {
	entries []ScheduleEntry
	batches [][]int
	stats   ScheduleStats
}

// termAccess collects the access mode a query descriptor requests for
// each component it mentions with a With term (Without terms carry no
// access and cannot conflict).
func termAccess(desc QueryDescriptor) map[ComponentID]Access {
	out := make(map[ComponentID]Access, len(desc.Terms))
	for _, t := range desc.Terms {
		if t.Without {
			continue
		}
		if existing, ok := out[t.Component]; ok && existing == AccessWrite {
			continue
		}
		out[t.Component] = t.Access
	}
	return out
}

// termWithout collects the components a query descriptor's Without terms
// name.
func termWithout(desc QueryDescriptor) map[ComponentID]bool {
	out := make(map[ComponentID]bool, len(desc.Terms))
	for _, t := range desc.Terms {
		if t.Without {
			out[t.Component] = true
		}
	}
	return out
}

// conflicts reports whether two entries' queries touch a shared
// component where at least one side writes it, or one side's With set
// names a component the other side's Without set excludes. The latter
// cannot arise from queries compiled against the same world (With and
// Without are already disjoint within one query), but is checked anyway
// since nothing here re-validates that assumption between two different
// queries.
func conflicts(a, b ScheduleEntry) bool {
	aAccess := termAccess(a.Query.desc)
	bAccess := termAccess(b.Query.desc)
	for id, aMode := range aAccess {
		bMode, ok := bAccess[id]
		if !ok {
			continue
		}
		if aMode == AccessWrite || bMode == AccessWrite {
			return true
		}
	}

	bWithout := termWithout(b.Query.desc)
	for id := range aAccess {
		if bWithout[id] {
			return true
		}
	}
	aWithout := termWithout(a.Query.desc)
	for id := range bAccess {
		if aWithout[id] {
			return true
		}
	}
	return false
}

// planSchedule greedily assigns each entry, in input order, to the first
// batch after the last batch holding an earlier entry it conflicts with,
// opening a new batch when no such batch exists yet. A conflicting pair
// therefore never shares a batch and always runs in input order. The plan
// is not necessarily minimum-batch-count; it is deterministic and stable
// under the input order. EdgeCount is the number of conflicting pairs.
func planSchedule(entries []ScheduleEntry) ([][]int, ScheduleStats) {
	var batches [][]int
	edgeCount := 0

	for i, e := range entries {
		target := 0
		for b, members := range batches {
			for _, m := range members {
				if conflicts(e, entries[m]) {
					target = b + 1
					edgeCount++
				}
			}
		}
		if target < len(batches) {
			batches[target] = append(batches[target], i)
		} else {
			batches = append(batches, []int{i})
		}
	}

	maxSize := 0
	for _, b := range batches {
		if len(b) > maxSize {
			maxSize = len(b)
		}
	}

	return batches, ScheduleStats{
		BatchCount:   len(batches),
		EdgeCount:    edgeCount,
		MaxBatchSize: maxSize,
	}
}

// ScheduleCreate compiles a list of entries into a Schedule, planning
// batches once at creation time. The plan depends only on the entries'
// query descriptors, so it stays valid as archetypes come and go; each
// entry's query is refreshed when it iterates. Every entry's query must have
// been created against w; mixing queries from different worlds is
// rejected with InvalidArgument.
func (w *World) ScheduleCreate(entries []ScheduleEntry) (*Schedule, Status) {
	if len(entries) == 0 {
		return nil, StatusInvalidArgument
	}
	for _, e := range entries {
		if e.Query == nil || e.Fn == nil {
			return nil, StatusInvalidArgument
		}
		if e.Query.world != w {
			return nil, StatusInvalidArgument
		}
	}

	owned := append([]ScheduleEntry(nil), entries...)
	batches, stats := planSchedule(owned)
	return &Schedule{entries: owned, batches: batches, stats: stats}, StatusOk
}

// Stats returns the batching summary computed at ScheduleCreate time.
func (s *Schedule) Stats() ScheduleStats {
	return s.stats
}

// ScheduleExecute runs every batch in order, entries within a batch
// concurrently via errgroup, passing workers through to every entry's
// Fn unchanged. A batch of size one runs its entry directly on the
// calling goroutine. Running the same Schedule with a different workers
// value must not change the final world state, only how much of each
// entry's chunk fan-out (through ForEachChunkParallel, if Fn uses it)
// runs concurrently.
func (w *World) ScheduleExecute(s *Schedule, workers int) Status {
	if workers < 1 {
		return StatusInvalidArgument
	}
	if w.deferDepth != 0 {
		return StatusConflict
	}
	for _, batch := range s.batches {
		if len(batch) == 1 {
			e := s.entries[batch[0]]
			e.Fn(w, e.Query, workers)
			continue
		}

		g, _ := errgroup.WithContext(context.Background())
		for _, idx := range batch {
			e := s.entries[idx]
			g.Go(func() error {
				e.Fn(w, e.Query, workers)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return StatusConflict
		}
	}
	return StatusOk
}

// ScheduleExecuteOneshot plans and runs a list of entries without
// retaining a Schedule, for callers that build their entry list fresh
// every tick.
func (w *World) ScheduleExecuteOneshot(entries []ScheduleEntry, workers int) Status {
	s, st := w.ScheduleCreate(entries)
	if st != StatusOk {
		return st
	}
	return w.ScheduleExecute(s, workers)
}
