/*package smokesim ties the lounge together: room, cigars, particle
engine, sensors, fan and both controllers, advanced in a fixed order by a
single-threaded tick. The GUI/persistence shell talks to a Lounge through
setters and snapshot getters between ticks; nothing here blocks or does
I/O.
*/
package smokesim

import (
	"fmt"

	"github.com/cigarlounge/smokesim/control"
	"github.com/cigarlounge/smokesim/geom"
	"github.com/cigarlounge/smokesim/rand"
	"github.com/cigarlounge/smokesim/smoke"
)

// Lounge owns one complete simulation.
type Lounge struct {
	Params smoke.Params

	Room *smoke.Room
	Fan  *smoke.ExhaustFan
	Sim  *smoke.Simulation

	Registry *control.Registry
	PID      *control.PIDController
	Trip     *control.TripController

	Mode control.Mode

	Time  float64
	Speed float64 // simulation speed multiplier applied by the driver
}

// New builds a lounge with the given tuning. A nil generator seeds from
// the clock; tests pass a fixed seed.
func New(p smoke.Params, gen *rand.Generator) *Lounge {
	if gen == nil {
		gen = rand.NewTimeSeed(rand.Xorshift)
	}
	room := smoke.NewRoom(&p)
	fan := smoke.NewExhaustFan(&p)
	reg := control.NewRegistry(&p)

	return &Lounge{
		Params:   p,
		Room:     room,
		Fan:      fan,
		Sim:      smoke.NewSimulation(room, fan, p, gen),
		Registry: reg,
		PID:      control.NewPIDController(fan, reg),
		Trip:     control.NewTripController(fan, reg),
		Mode:     control.ModeManual,
		Speed:    1.0,
	}
}

// Step advances simulated time by dt. The order is fixed and load-bearing:
// sensors must see post-physics positions, controllers must see fresh
// readings, and the fan ramp must apply the controller's newest target.
func (l *Lounge) Step(dt float64) {
	l.Sim.Update(dt) // cigars, generation, physics, age-out

	xs := l.Sim.Ensemble.Positions // read-only within the tick
	l.Registry.UpdateSensors(xs, dt)

	l.PID.Update(dt)
	l.Trip.Update(dt)

	l.Fan.Update(dt)
	l.Time += dt
}

// SetNumSmokers reseats the room.
func (l *Lounge) SetNumSmokers(n int) {
	l.Sim.SetNumSmokers(n)
}

// SetMode selects which controller may command the fan. Both controllers
// are told; each acts only in its own mode.
func (l *Lounge) SetMode(m control.Mode) error {
	if !control.ValidMode(m) {
		return fmt.Errorf("unknown fan mode %q", m)
	}
	l.Mode = m
	l.PID.SetMode(m)
	l.Trip.SetMode(m)
	return nil
}

// SetManualSpeed commands the fan directly. Ignored outside manual mode
// so an automatic strategy is never fought by stale UI input.
func (l *Lounge) SetManualSpeed(percent float64) {
	if l.Mode != control.ModeManual {
		return
	}
	l.Fan.SetSpeed(percent)
}

// SetSpeedMultiplier stores the driver's time-scaling factor, clamped to
// the supported range.
func (l *Lounge) SetSpeedMultiplier(speed float64) {
	if speed < 0.1 {
		speed = 0.1
	} else if speed > 10 {
		speed = 10
	}
	l.Speed = speed
}

// AddSensorPair validates and registers a pair. Geometry is validated
// here, at the configuration boundary, so the core can assume sane
// inputs.
func (l *Lounge) AddSensorPair(cfg smoke.SensorPairConfig) (*smoke.SensorPair, error) {
	if cfg.LowHeight >= cfg.HighHeight {
		return nil, fmt.Errorf(
			"low sensor height %g must be below high sensor height %g",
			cfg.LowHeight, cfg.HighHeight,
		)
	}
	if !smoke.ValidWall(cfg.Wall) {
		return nil, fmt.Errorf("unknown wall %q", cfg.Wall)
	}

	pair := smoke.NewSensorPair(cfg, &l.Params)
	if err := l.Registry.Add(pair); err != nil {
		return nil, err
	}
	return pair, nil
}

// RemoveSensorPair unregisters a pair from the shared registry; both
// controllers see the removal on their next update.
func (l *Lounge) RemoveSensorPair(pairID int) bool {
	return l.Registry.Remove(pairID)
}

// Particles returns a positions snapshot for the shell.
func (l *Lounge) Particles() []geom.Vec {
	return l.Sim.Particles()
}

// Statistics returns the aggregate simulation snapshot.
func (l *Lounge) Statistics() smoke.Statistics {
	return l.Sim.Statistics()
}

// Reset returns the lounge to an empty, stopped state, keeping the sensor
// layout in place with cleared readings.
func (l *Lounge) Reset() {
	l.Sim.Reset()
	l.Fan.Reset()
	l.Registry.Reset()
	l.PID.ResetPID()
	l.Trip.CurrentTime = 0
	l.Time = 0
}
