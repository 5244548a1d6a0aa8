package smoke

import (
	"github.com/cigarlounge/smokesim/geom"
)

// Ensemble is the particle store: three parallel arrays indexed together.
// The parallel layout instead of a struct-per-particle keeps each physics
// pass a tight loop over contiguous memory; at the 100k cap that is the
// difference between a real-time tick and not.
//
// Every operation must keep the three slices the same length with
// matching indices.
type Ensemble struct {
	Positions  []geom.Vec
	Velocities []geom.Vec
	Ages       []float64

	dead []bool // scratch removal mask, reused across ticks
}

func NewEnsemble(capacity int) *Ensemble {
	return &Ensemble{
		Positions:  make([]geom.Vec, 0, capacity),
		Velocities: make([]geom.Vec, 0, capacity),
		Ages:       make([]float64, 0, capacity),
	}
}

// Len returns the particle count.
func (e *Ensemble) Len() int {
	return len(e.Positions)
}

// Append adds n particles with the given positions and velocities at age
// zero. The two argument slices must have equal length.
func (e *Ensemble) Append(xs, vs []geom.Vec) {
	e.Positions = append(e.Positions, xs...)
	e.Velocities = append(e.Velocities, vs...)
	for range xs {
		e.Ages = append(e.Ages, 0)
	}
}

// Mask returns the scratch removal mask sized to the current count, all
// false. The caller marks particles and passes it to Compact in the same
// tick.
func (e *Ensemble) Mask() []bool {
	if cap(e.dead) < e.Len() {
		e.dead = make([]bool, e.Len())
	}
	e.dead = e.dead[:e.Len()]
	for i := range e.dead {
		e.dead[i] = false
	}
	return e.dead
}

// Compact removes every particle marked in dead, preserving order and the
// index correspondence of the three arrays. It returns the number
// removed. dead must have been sized by Mask (or be e.Len() long).
func (e *Ensemble) Compact(dead []bool) int {
	w := 0
	for r := 0; r < len(e.Positions); r++ {
		if dead[r] {
			continue
		}
		if w != r {
			e.Positions[w] = e.Positions[r]
			e.Velocities[w] = e.Velocities[r]
			e.Ages[w] = e.Ages[r]
		}
		w++
	}
	removed := len(e.Positions) - w
	e.Positions = e.Positions[:w]
	e.Velocities = e.Velocities[:w]
	e.Ages = e.Ages[:w]
	return removed
}

// Reset drops every particle but keeps the allocated buffers.
func (e *Ensemble) Reset() {
	e.Positions = e.Positions[:0]
	e.Velocities = e.Velocities[:0]
	e.Ages = e.Ages[:0]
}
