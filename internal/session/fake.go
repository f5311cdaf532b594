package session

import (
	"fmt"
	"sync"
)

// FakeRay is the per-ray state held by a Fake session.
type FakeRay struct {
	Power   float64
	Source  string
	Surface string
	Visible bool
}

// Fake is an in-memory session implementing Handle. It stands in for the
// external ray-trace process in tests and in mock mode: rays, visibility,
// auto-update and recompute behave like the real session, and individual
// calls can be scripted to fail.
type Fake struct {
	mu sync.Mutex

	Rays []FakeRay // 1-based externally; Rays[0] is ray index 1

	autoUpdate bool
	recomputes int
	copies     int
	closed     bool

	// viewPolls counts ViewReady reads since the last Recompute command;
	// ViewReady reports true once viewPolls exceeds ViewReadyAfter,
	// modeling the asynchronous render pipeline.
	viewPolls      int
	ViewReadyAfter int

	// FailGet and FailSet script failures per accessor. Keys are
	// "Property" or "Property#index". A zero status entry is ignored.
	FailGet map[string]Status
	FailSet map[string]Status

	// Props backs arbitrary Get calls for property-dump flows, keyed
	// "objectKey.Property".
	Props map[string]Value

	// Calls records every call in order, for sequencing assertions.
	Calls []string
}

// NewFake returns a Fake with the given rays, all visible, auto-update on.
func NewFake(rays ...FakeRay) *Fake {
	f := &Fake{Rays: make([]FakeRay, len(rays)), autoUpdate: true}
	copy(f.Rays, rays)
	for i := range f.Rays {
		f.Rays[i].Visible = true
	}
	return f
}

func (f *Fake) record(format string, args ...any) {
	f.Calls = append(f.Calls, fmt.Sprintf(format, args...))
}

func failKey(property string, indices []int) []string {
	if len(indices) == 0 {
		return []string{property}
	}
	return []string{fmt.Sprintf("%s#%d", property, indices[0]), property}
}

func (f *Fake) scripted(m map[string]Status, property string, indices []int) (Status, bool) {
	for _, k := range failKey(property, indices) {
		if st, ok := m[k]; ok && st != StatusOK {
			return st, true
		}
	}
	return StatusOK, false
}

func (f *Fake) Get(key, property string, indices ...int) (Value, Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("get %s.%s%v", key, property, indices)
	if f.closed {
		return Nil(), StatusNotConnected
	}
	if st, ok := f.scripted(f.FailGet, property, indices); ok {
		return Nil(), st
	}

	switch property {
	case PropRayCount:
		return Number(float64(len(f.Rays))), StatusOK
	case PropAutoUpdate:
		return Bool(f.autoUpdate), StatusOK
	case PropViewReady:
		f.viewPolls++
		return Bool(f.recomputes > 0 && f.viewPolls > f.ViewReadyAfter), StatusOK
	case PropPowerAt, PropSourceAt, PropSurfaceAt, PropVisibleAt:
		ray, st := f.rayAt(indices)
		if st != StatusOK {
			return Nil(), st
		}
		switch property {
		case PropPowerAt:
			return Number(ray.Power), StatusOK
		case PropSourceAt:
			return String(ray.Source), StatusOK
		case PropSurfaceAt:
			return String(ray.Surface), StatusOK
		default:
			return Bool(ray.Visible), StatusOK
		}
	}
	if v, ok := f.Props[key+"."+property]; ok {
		return v, StatusOK
	}
	return Nil(), StatusNoSuchProperty
}

func (f *Fake) rayAt(indices []int) (*FakeRay, Status) {
	if len(indices) != 1 {
		return nil, StatusBadIndex
	}
	i := indices[0]
	if i < 1 || i > len(f.Rays) {
		return nil, StatusBadIndex
	}
	return &f.Rays[i-1], StatusOK
}

func (f *Fake) Set(key, property string, v Value, indices ...int) Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("set %s.%s%v=%s", key, property, indices, v.Display())
	if f.closed {
		return StatusNotConnected
	}
	if st, ok := f.scripted(f.FailSet, property, indices); ok {
		return st
	}

	switch property {
	case PropAutoUpdate:
		b, ok := v.Bool()
		if !ok {
			return StatusTypeMismatch
		}
		f.autoUpdate = b
		return StatusOK
	case PropVisibleAt:
		ray, st := f.rayAt(indices)
		if st != StatusOK {
			return st
		}
		b, ok := v.Bool()
		if !ok {
			return StatusTypeMismatch
		}
		ray.Visible = b
		return StatusOK
	}
	return StatusNoSuchProperty
}

func (f *Fake) Command(name string) Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("command %s", name)
	if f.closed {
		return StatusNotConnected
	}
	switch name {
	case CmdRecompute:
		f.recomputes++
		f.viewPolls = 0
		return StatusOK
	case CmdCopyView:
		f.copies++
		return StatusOK
	}
	return StatusNoSuchObject
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Recomputes returns how many explicit recomputes have been commanded.
func (f *Fake) Recomputes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recomputes
}

// Copies returns how many copy-view commands have been issued.
func (f *Fake) Copies() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.copies
}

// AutoUpdate reports the current auto-update flag.
func (f *Fake) AutoUpdate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.autoUpdate
}

// VisibleIndices returns the 1-based indices of currently visible rays.
func (f *Fake) VisibleIndices() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int
	for i, r := range f.Rays {
		if r.Visible {
			out = append(out, i+1)
		}
	}
	return out
}
