package ecs

import "unsafe"

type deferredKind uint8

const (
	deferredAddComponent deferredKind = iota
	deferredRemoveComponent
	deferredDestroyEntity
)

// deferredCommand is one queued structural mutation. AddComponent values
// are copied into an owned byte buffer at enqueue time, since the
// caller's original memory may not outlive the deferred scope.
type deferredCommand struct {
	kind    deferredKind
	entity  Entity
	compID  ComponentID
	payload []byte
}

// BeginDefer opens a deferred scope. Structural mutations issued while
// deferDepth is greater than zero are queued rather than applied; scopes
// nest, and only EndDefer dropping the depth back to zero flushes the
// queue. This lets code deep in a callback issue structural changes
// without corrupting the archetype it is currently iterating.
func (w *World) BeginDefer() Status {
	w.deferDepth++
	w.emitTrace(TraceEvent{Kind: TraceDeferBegin})
	return StatusOk
}

// EndDefer closes one level of deferred scope, flushing the queue once
// the outermost scope closes.
func (w *World) EndDefer() Status {
	if w.deferDepth == 0 {
		return StatusConflict
	}
	w.deferDepth--
	w.emitTrace(TraceEvent{Kind: TraceDeferEnd})
	if w.deferDepth > 0 {
		return StatusOk
	}
	return w.Flush()
}

func (w *World) enqueueAddComponent(e Entity, id ComponentID, value unsafe.Pointer) Status {
	rec, st := w.components.get(id)
	if st != StatusOk {
		return StatusInvalidArgument
	}

	var payload []byte
	if value != nil && rec.size > 0 {
		payload = make([]byte, rec.size)
		src := unsafe.Slice((*byte)(value), rec.size)
		copy(payload, src)
	}

	w.deferredQueue = append(w.deferredQueue, deferredCommand{
		kind:    deferredAddComponent,
		entity:  e,
		compID:  id,
		payload: payload,
	})
	w.emitTrace(TraceEvent{Kind: TraceDeferEnqueue, Entity: e})
	return StatusOk
}

func (w *World) enqueueRemoveComponent(e Entity, id ComponentID) Status {
	w.deferredQueue = append(w.deferredQueue, deferredCommand{
		kind:   deferredRemoveComponent,
		entity: e,
		compID: id,
	})
	w.emitTrace(TraceEvent{Kind: TraceDeferEnqueue, Entity: e})
	return StatusOk
}

func (w *World) enqueueDestroyEntity(e Entity) Status {
	w.deferredQueue = append(w.deferredQueue, deferredCommand{
		kind:   deferredDestroyEntity,
		entity: e,
	})
	w.emitTrace(TraceEvent{Kind: TraceDeferEnqueue, Entity: e})
	return StatusOk
}

// Flush applies every queued command in FIFO order and clears the queue.
// Flushing is not transactional: it stops at the first command that
// fails, leaving every earlier command's effects in place and discarding
// the remainder of the queue. Flush refuses to run inside a still-open
// deferred scope (deferDepth greater than zero), returning Conflict
// without touching the queue; callers normally reach it through EndDefer
// rather than calling it directly.
func (w *World) Flush() Status {
	if w.deferDepth > 0 {
		return StatusConflict
	}
	if len(w.deferredQueue) == 0 {
		return StatusOk
	}

	w.emitTrace(TraceEvent{Kind: TraceFlushBegin})
	w.inFlush = true

	status := StatusOk
	for _, cmd := range w.deferredQueue {
		var st Status
		switch cmd.kind {
		case deferredAddComponent:
			var value unsafe.Pointer
			if cmd.payload != nil {
				value = unsafe.Pointer(&cmd.payload[0])
			}
			st = w.addComponentNow(cmd.entity, cmd.compID, value)
		case deferredRemoveComponent:
			st = w.removeComponentNow(cmd.entity, cmd.compID)
		case deferredDestroyEntity:
			st = w.destroyEntityNow(cmd.entity)
		}

		w.emitTrace(TraceEvent{Kind: TraceFlushApply, Entity: cmd.entity, Status: st})
		if st != StatusOk {
			status = st
			break
		}
	}

	w.inFlush = false
	w.deferredQueue = w.deferredQueue[:0]
	w.emitTrace(TraceEvent{Kind: TraceFlushEnd, Status: status})
	return status
}
