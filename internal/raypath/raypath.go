// Package raypath fetches and holds an immutable snapshot of the ray-path
// records of one simulation run.
package raypath

import (
	"context"
	"log/slog"

	"raybands/internal/logging"
	"raybands/internal/session"
)

// Record is one traced ray's metadata. A field whose fetch failed is left
// missing, not zeroed: a missing power is unusable, a zero power is real.
type Record struct {
	Index   int // 1-based, stable within a run
	Power   float64
	Source  string
	Surface string

	HasPower   bool
	HasSource  bool
	HasSurface bool
}

// Usable reports whether the record carries all three fields. Records with
// any missing field are excluded before filtering.
func (r Record) Usable() bool {
	return r.HasPower && r.HasSource && r.HasSurface
}

// Repository is the immutable snapshot. Records[i-1].Index == i always
// holds; the snapshot is created once per run and never mutated after
// population.
type Repository struct {
	RunSize int
	Records []Record

	// Missing counts per-field fetch failures encountered during the
	// snapshot. They are warnings, not errors.
	Missing int
}

// Option configures Fetch.
type Option func(*fetchConfig)

type fetchConfig struct {
	logger *slog.Logger
}

// WithLogger configures structured logging for the fetch.
func WithLogger(l *slog.Logger) Option {
	return func(c *fetchConfig) { c.logger = l }
}

// Fetch reads the run size and every ray record from the session. The ray
// count fetch is fatal on a non-zero status; per-ray fetches are not — a
// failed field is recorded as missing and the fetch continues. Rays are read
// strictly in index order: the indexed accessors require a coherent external
// read sequence.
func Fetch(ctx context.Context, h session.Handle, opts ...Option) (*Repository, error) {
	cfg := fetchConfig{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.logger

	v, st := h.Get(session.KeyRayPaths, session.PropRayCount)
	if err := st.Err("get", session.KeyRayPaths+"."+session.PropRayCount); err != nil {
		return nil, err
	}
	count, ok := v.Int()
	if !ok || count < 0 {
		// The external process is only partially reliable; a negative
		// count is as unusable as a non-numeric one.
		return nil, &session.StatusError{Op: "get", Key: session.KeyRayPaths + "." + session.PropRayCount, Status: session.StatusTypeMismatch}
	}

	repo := &Repository{RunSize: count, Records: make([]Record, 0, count)}
	for i := 1; i <= count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := Record{Index: i}

		if v, st := h.Get(session.KeyRayPaths, session.PropPowerAt, i); st.OK() {
			if p, ok := v.Number(); ok {
				rec.Power, rec.HasPower = p, true
			}
		} else {
			log.Warn("ray power fetch failed", "index", i, "status", st.String())
		}
		if v, st := h.Get(session.KeyRayPaths, session.PropSourceAt, i); st.OK() {
			if s, ok := v.String(); ok {
				rec.Source, rec.HasSource = s, true
			}
		} else {
			log.Warn("ray source fetch failed", "index", i, "status", st.String())
		}
		if v, st := h.Get(session.KeyRayPaths, session.PropSurfaceAt, i); st.OK() {
			if s, ok := v.String(); ok {
				rec.Surface, rec.HasSurface = s, true
			}
		} else {
			log.Warn("ray surface fetch failed", "index", i, "status", st.String())
		}

		if !rec.Usable() {
			repo.Missing++
		}
		repo.Records = append(repo.Records, rec)
	}
	return repo, nil
}

// AllIndices returns 1..RunSize, the universe the visibility controller
// operates over.
func (r *Repository) AllIndices() []int {
	out := make([]int, r.RunSize)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
