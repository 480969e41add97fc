package ecs

// Status is the closed error taxonomy returned by every fallible operation.
// Lattice never panics or aborts on bad input; callers inspect Status.
type Status uint8

const (
	StatusOk Status = iota
	StatusInvalidArgument
	StatusNotFound
	StatusAlreadyExists
	StatusCapacityReached
	StatusAllocationFailed
	StatusStaleEntity
	StatusConflict
	StatusNotImplemented
)

var statusNames = [...]string{
	StatusOk:               "ok",
	StatusInvalidArgument:  "invalid argument",
	StatusNotFound:         "not found",
	StatusAlreadyExists:    "already exists",
	StatusCapacityReached:  "capacity reached",
	StatusAllocationFailed: "allocation failed",
	StatusStaleEntity:      "stale entity",
	StatusConflict:         "conflict",
	StatusNotImplemented:   "not implemented",
}

// String renders the status the way status_string does in the C original.
func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown status"
}

// Error lets Status satisfy the error interface so callers that prefer
// errors.Is/errors.As can compose it with the rest of the ecosystem.
func (s Status) Error() string {
	return s.String()
}

// Ok reports whether the status represents success.
func (s Status) Ok() bool {
	return s == StatusOk
}
