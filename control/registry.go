/*package control closes the loop between the sensors and the exhaust fan.
Two strategies are provided: a PID controller keyed on PPM tiers and a
trip controller keyed on threshold crossings with hold-open timers.

Sensor pairs live in a Registry that both controllers share. Controllers
never copy the pair list; they read it through the registry, so adding or
removing a pair is one operation that every controller observes at once.
*/
package control

import (
	"fmt"

	"github.com/cigarlounge/smokesim/geom"
	"github.com/cigarlounge/smokesim/smoke"
)

// Mode selects which strategy, if any, is allowed to command the fan.
type Mode string

const (
	ModeManual Mode = "manual"
	ModeAuto   Mode = "auto"
	ModeTrip   Mode = "trip"
)

// ValidMode reports whether m names a mode.
func ValidMode(m Mode) bool {
	return m == ModeManual || m == ModeAuto || m == ModeTrip
}

// Registry is the single owner of the sensor pairs.
type Registry struct {
	pairs    []*smoke.SensorPair
	maxPairs int
}

func NewRegistry(p *smoke.Params) *Registry {
	return &Registry{maxPairs: p.MaxSensorPairs}
}

// Add registers a pair. It fails on a duplicate ID or when the pair limit
// is reached.
func (r *Registry) Add(pair *smoke.SensorPair) error {
	if len(r.pairs) >= r.maxPairs {
		return fmt.Errorf("sensor pair limit of %d reached", r.maxPairs)
	}
	for _, sp := range r.pairs {
		if sp.PairID == pair.PairID {
			return fmt.Errorf("sensor pair %d already registered", pair.PairID)
		}
	}
	r.pairs = append(r.pairs, pair)
	return nil
}

// Remove unregisters the pair with the given ID. Because controllers read
// through the registry, this is also the removal from every controller.
func (r *Registry) Remove(pairID int) bool {
	for i, sp := range r.pairs {
		if sp.PairID == pairID {
			r.pairs = append(r.pairs[:i], r.pairs[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the pair with the given ID, or nil.
func (r *Registry) Get(pairID int) *smoke.SensorPair {
	for _, sp := range r.pairs {
		if sp.PairID == pairID {
			return sp
		}
	}
	return nil
}

// Pairs returns the live pair list. Callers must not hold the slice across
// an Add or Remove.
func (r *Registry) Pairs() []*smoke.SensorPair {
	return r.pairs
}

// Len returns the number of registered pairs.
func (r *Registry) Len() int {
	return len(r.pairs)
}

// Clear unregisters everything.
func (r *Registry) Clear() {
	r.pairs = nil
}

// UpdateSensors samples every pair against the particle field.
func (r *Registry) UpdateSensors(xs []geom.Vec, dt float64) {
	for _, sp := range r.pairs {
		sp.Update(xs, dt)
	}
}

// Readings snapshots every pair.
func (r *Registry) Readings() []smoke.PairReadings {
	out := make([]smoke.PairReadings, len(r.pairs))
	for i, sp := range r.pairs {
		out[i] = sp.Readings()
	}
	return out
}

// Reset clears readings and trip state on every pair without
// unregistering them.
func (r *Registry) Reset() {
	for _, sp := range r.pairs {
		sp.Reset()
	}
}
