// Package session defines the client-side boundary to a running optical
// ray-trace process. The external process exposes synchronous get/set/command
// primitives keyed by hierarchical object paths; every call returns a status
// code, with zero meaning success on every path.
package session

import (
	"errors"
	"fmt"
)

// Status is the code returned by every session call. Zero is success;
// every non-zero code is a failure and must be handled as one.
type Status int

// StatusOK is the single success code.
const StatusOK Status = 0

// Known non-zero codes reported by the session. The set is open: codes not
// listed here still mean failure, they just render numerically.
const (
	StatusNoSuchObject   Status = 1
	StatusNoSuchProperty Status = 2
	StatusReadOnly       Status = 3
	StatusBadIndex       Status = 4
	StatusTypeMismatch   Status = 5
	StatusBusy           Status = 6
	StatusNotConnected   Status = 7
)

var statusNames = map[Status]string{
	StatusOK:             "ok",
	StatusNoSuchObject:   "no such object",
	StatusNoSuchProperty: "no such property",
	StatusReadOnly:       "property is read-only",
	StatusBadIndex:       "index out of range",
	StatusTypeMismatch:   "value type mismatch",
	StatusBusy:           "session busy",
	StatusNotConnected:   "not connected",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status %d", int(s))
}

// OK reports whether the status denotes success.
func (s Status) OK() bool { return s == StatusOK }

// Err returns nil for a success status and a *StatusError otherwise.
// op and key give the error its context ("get RayPaths.PowerAt: session busy").
func (s Status) Err(op, key string) error {
	if s == StatusOK {
		return nil
	}
	return &StatusError{Op: op, Key: key, Status: s}
}

// StatusError is a non-zero status decorated with the call that produced it.
type StatusError struct {
	Op     string
	Key    string
	Status Status
}

func (e *StatusError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Status)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Key, e.Status)
}

// ErrConnect is wrapped by Connect implementations when the handshake with
// the external process fails. Connection failure is fatal to a run.
var ErrConnect = errors.New("session: connect failed")

// Handle is one live connection to the external process. All calls are
// synchronous request/response; none are safe for concurrent use — the
// session has exactly one writer for the duration of a run.
type Handle interface {
	// Get reads a property of the object at key. Trailing indices address
	// elements of indexed accessors (for example the per-ray accessors).
	Get(key, property string, indices ...int) (Value, Status)

	// Set writes a property of the object at key.
	Set(key, property string, v Value, indices ...int) Status

	// Command invokes a named session command (recompute, copy view, ...).
	Command(name string) Status

	// Close releases the connection. Safe to call more than once.
	Close() error
}

// Connector dials the external process by its OS process id. Injected into
// the orchestrator so tests and mock mode can substitute a fake.
type Connector func(processID int) (Handle, error)

// Well-known object keys and property names of the ray-trace session.
// These mirror the external API and are the only place its vocabulary lives.
const (
	KeyRayPaths     = "Analyses.RayPaths"
	PropRayCount    = "RayCount"
	PropPowerAt     = "RayPathPowerAt"
	PropSourceAt    = "RayPathSourceAt"
	PropSurfaceAt   = "RayPathLastSurfaceAt"
	PropVisibleAt   = "RayPathVisibleAt"
	PropAutoUpdate  = "AutoUpdate"
	CmdRecompute    = "Recompute"
	CmdCopyView     = "CopyViewToClipboard"
	PropViewReady   = "ViewReady"
	PropDumpForKey  = "AvailableFunctions"
)
