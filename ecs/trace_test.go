package ecs_test

import (
	"testing"

	"github.com/plus3/lattice/ecs"
	"github.com/stretchr/testify/assert"
)

func TestTraceHookReceivesEntityLifecycleEvents(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	var kinds []ecs.TraceEventKind
	w.SetTraceHook(func(evt ecs.TraceEvent) {
		kinds = append(kinds, evt.Kind)
	})

	e, _ := w.EntityCreate()
	w.EntityDestroy(e)

	assert.Contains(t, kinds, ecs.TraceEntityCreate)
	assert.Contains(t, kinds, ecs.TraceEntityDestroy)
}

func TestTraceHookReceivesFlushEventsWithoutInnerDuplicates(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	posID := registerPosition(t, w)
	e, _ := w.EntityCreate()

	var kinds []ecs.TraceEventKind
	w.SetTraceHook(func(evt ecs.TraceEvent) {
		kinds = append(kinds, evt.Kind)
	})

	w.BeginDefer()
	ecs.AddComponentValue(w, e, posID, Position{})
	w.EndDefer()

	// AddComponent's own COMPONENT_ADD event is suppressed while the
	// flush it was queued into is in progress; only the surrounding
	// defer/flush lifecycle events reach the hook.
	assert.Equal(t, []ecs.TraceEventKind{
		ecs.TraceDeferBegin,
		ecs.TraceDeferEnqueue,
		ecs.TraceDeferEnd,
		ecs.TraceFlushBegin,
		ecs.TraceFlushApply,
		ecs.TraceFlushEnd,
	}, kinds)
}

func TestTraceHookReceivesQueryIterEvents(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	posID := registerPosition(t, w)
	e, _ := w.EntityCreate()
	ecs.AddComponentValue(w, e, posID, Position{})

	q, _ := w.QueryCreate(ecs.QueryDescriptor{Terms: []ecs.QueryTerm{
		{Component: posID, Access: ecs.AccessWrite},
	}})

	var kinds []ecs.TraceEventKind
	w.SetTraceHook(func(evt ecs.TraceEvent) {
		kinds = append(kinds, evt.Kind)
	})

	it := q.IterBegin()
	for {
		_, ok := it.Next()
		if !ok {
			break
		}
	}

	assert.Equal(t, ecs.TraceQueryIterBegin, kinds[0])
	assert.Equal(t, ecs.TraceQueryIterEnd, kinds[len(kinds)-1])
	assert.Contains(t, kinds, ecs.TraceQueryIterChunk)
}

func TestSetTraceHookNilClearsHook(t *testing.T) {
	w, _ := ecs.NewWorld(nil)
	defer w.Close()

	calls := 0
	w.SetTraceHook(func(evt ecs.TraceEvent) { calls++ })
	w.SetTraceHook(nil)

	w.EntityCreate()
	assert.Equal(t, 0, calls)
}
