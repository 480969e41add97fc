package ecs

// TraceEventKind enumerates the closed set of synchronous events a World
// emits to its trace hook, if one is installed.
type TraceEventKind uint8

const (
	TraceDeferBegin TraceEventKind = iota
	TraceDeferEnd
	TraceDeferEnqueue
	TraceFlushBegin
	TraceFlushApply
	TraceFlushEnd
	TraceEntityCreate
	TraceEntityDestroy
	TraceComponentAdd
	TraceComponentRemove
	TraceQueryIterBegin
	TraceQueryIterChunk
	TraceQueryIterEnd
)

var traceEventKindNames = [...]string{
	TraceDeferBegin:      "defer_begin",
	TraceDeferEnd:        "defer_end",
	TraceDeferEnqueue:    "defer_enqueue",
	TraceFlushBegin:      "flush_begin",
	TraceFlushApply:      "flush_apply",
	TraceFlushEnd:        "flush_end",
	TraceEntityCreate:    "entity_create",
	TraceEntityDestroy:   "entity_destroy",
	TraceComponentAdd:    "component_add",
	TraceComponentRemove: "component_remove",
	TraceQueryIterBegin:  "query_iter_begin",
	TraceQueryIterChunk:  "query_iter_chunk",
	TraceQueryIterEnd:    "query_iter_end",
}

func (k TraceEventKind) String() string {
	if int(k) < len(traceEventKindNames) {
		return traceEventKindNames[k]
	}
	return "unknown"
}

// TraceEvent is a single, fully synchronous notification delivered
// in-line with the operation that caused it. Fields not relevant to Kind
// are left at their zero value. Operation and the LiveEntities/
// PendingCommands/DeferDepth snapshot are filled in by emitTrace itself,
// so every event carries the same point-in-time bookkeeping regardless of
// which call site raised it.
type TraceEvent struct {
	Kind        TraceEventKind
	Operation   string
	Entity      Entity
	ArchetypeID uint32
	ChunkIndex  uint32
	Status      Status

	LiveEntities    uint32
	PendingCommands int
	DeferDepth      int
}

// TraceHookFn receives every trace event a World emits. It is called
// synchronously on the goroutine performing the traced operation and
// must not itself trigger structural mutations on the same World.
type TraceHookFn func(evt TraceEvent)

// SetTraceHook installs or clears (with nil) the world's trace hook.
func (w *World) SetTraceHook(fn TraceHookFn) {
	w.traceHook = fn
}

// isFlushEvent reports whether evt.Kind is one of the events Flush itself
// emits, as opposed to an event from an operation Flush is applying.
func isFlushEvent(kind TraceEventKind) bool {
	return kind == TraceFlushBegin || kind == TraceFlushApply || kind == TraceFlushEnd
}

// emitTrace delivers evt to the installed hook. While a Flush is in
// progress, only Flush's own begin/apply/end events pass through: the
// per-operation events each queued command would normally emit are
// suppressed so a caller watching the trace sees one flush, not a flush
// wrapped around a duplicate stream of the same creates and migrations.
func (w *World) emitTrace(evt TraceEvent) {
	if w.traceHook == nil {
		return
	}
	if w.inFlush && !isFlushEvent(evt.Kind) {
		return
	}
	evt.Operation = evt.Kind.String()
	evt.LiveEntities = w.entities.liveCount
	evt.PendingCommands = len(w.deferredQueue)
	evt.DeferDepth = w.deferDepth
	w.traceHook(evt)
}
