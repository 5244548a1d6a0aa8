package smoke

import (
	"math"

	"github.com/cigarlounge/smokesim/geom"
	"github.com/cigarlounge/smokesim/rand"
)

// Stratification zone tables. Heights partition into five bands; each band
// scales buoyancy and vertical damping. The non-monotonic buoyancy profile
// is intentional: smoke stalls in the 4-8 ft hover band at head height
// before seeping upward, which is what a lounge actually looks like.
// These are tuned values; see Params.
var (
	zoneEdges           = [4]float64{4, 8, 14, 18}
	zoneBuoyancy        = [5]float64{1.0, 0.05, 0.20, 0.08, 0.02}
	zoneVerticalDamping = [5]float64{0.93, 0.75, 0.70, 0.60, 0.50}
)

func zoneIndex(h float64) int {
	for i, edge := range zoneEdges {
		if h < edge {
			return i
		}
	}
	return 4
}

// Simulation is the particle transport engine. It owns the ensemble and
// the cigars, and borrows the room and fan.
type Simulation struct {
	Room *Room
	Fan  *ExhaustFan

	Cigars   *CigarManager
	Ensemble *Ensemble

	Time       float64
	NumSmokers int

	Generated int64 // total particles created
	Removed   int64 // total particles removed, by age or absorption

	p   Params
	gen *rand.Generator

	accumulator float64 // fractional particle carry across ticks

	// Per-tick scratch, reused to keep the tick allocation-free.
	srcPositions  []geom.Vec
	srcRates      []float64
	newPositions  []geom.Vec
	newVelocities []geom.Vec
	fanField      []geom.Vec
}

func NewSimulation(room *Room, fan *ExhaustFan, p Params, gen *rand.Generator) *Simulation {
	if gen == nil {
		gen = rand.NewTimeSeed(rand.Xorshift)
	}
	return &Simulation{
		Room:     room,
		Fan:      fan,
		Cigars:   NewCigarManager(&p, gen),
		Ensemble: NewEnsemble(4096),
		p:        p,
		gen:      gen,
	}
}

// Params returns the tuning this simulation was built with.
func (s *Simulation) Params() *Params {
	return &s.p
}

// SetNumSmokers relays a new seat count: regenerates the layout and
// rebuilds the cigars. Existing particles are left alone.
func (s *Simulation) SetNumSmokers(n int) {
	if n < 0 {
		n = 0
	}
	if n > s.p.MaxSmokers {
		n = s.p.MaxSmokers
	}
	s.NumSmokers = n
	seats := s.Room.GenerateSmokerPositions(n, s.p.SmokerHeight, s.gen)
	s.Cigars.SetSmokers(seats)
}

// Update advances the full engine one tick: cigars, generation, physics,
// and age-out, in that order.
func (s *Simulation) Update(dt float64) {
	s.Cigars.Update(dt)
	s.GenerateParticles(dt)
	s.ApplyPhysics(dt)
	s.RemoveOldParticles()
	s.Time += dt
}

// GenerateParticles emits one burst per cigar, rate*dt particles each,
// with the fractional remainder carried in a shared accumulator so a low
// rate still emits eventually instead of rounding to zero forever. The
// global cap truncates the newest batch.
func (s *Simulation) GenerateParticles(dt float64) {
	if s.NumSmokers == 0 {
		return
	}

	s.srcPositions, s.srcRates = s.Cigars.Sources(s.srcPositions, s.srcRates)
	s.newPositions = s.newPositions[:0]
	s.newVelocities = s.newVelocities[:0]

	for i := range s.srcPositions {
		s.accumulator += s.srcRates[i] * dt
		n := int(s.accumulator)
		if n == 0 {
			continue
		}
		s.accumulator -= float64(n)

		room := s.p.MaxParticles - s.Ensemble.Len() - len(s.newPositions)
		if n > room {
			n = room
		}
		if n <= 0 {
			break
		}

		s.emit(s.srcPositions[i], n)
	}

	if len(s.newPositions) == 0 {
		return
	}

	s.Ensemble.Append(s.newPositions, s.newVelocities)
	s.Generated += int64(len(s.newPositions))
}

// emit appends n particles of plume around a cigar tip to the new-batch
// scratch: Gaussian position jitter (vertical compressed), strong Gaussian
// horizontal velocity and a mild uniform updraft. The wide horizontal
// velocity is what turns the column into a plume.
func (s *Simulation) emit(tip geom.Vec, n int) {
	for j := 0; j < n; j++ {
		pos := geom.Vec{
			tip[0] + s.gen.Gaussian(0, s.p.EmitSigma),
			tip[1] + s.gen.Gaussian(0, s.p.EmitSigma)*s.p.EmitVerticalScale,
			tip[2] + s.gen.Gaussian(0, s.p.EmitSigma),
		}
		vel := geom.Vec{
			s.gen.Gaussian(0, s.p.EmitVelocitySigma),
			s.gen.Uniform(s.p.EmitUpwardMin, s.p.EmitUpwardMax),
			s.gen.Gaussian(0, s.p.EmitVelocitySigma),
		}
		s.newPositions = append(s.newPositions, pos)
		s.newVelocities = append(s.newVelocities, vel)
	}
}

// ApplyPhysics integrates one tick over the whole ensemble: buoyancy,
// diffusion, fan advection, damping, position update, boundaries, aging.
func (s *Simulation) ApplyPhysics(dt float64) {
	n := s.Ensemble.Len()
	if n == 0 {
		return
	}

	xs := s.Ensemble.Positions
	vs := s.Ensemble.Velocities
	ages := s.Ensemble.Ages

	// Fan advection field, evaluated in bulk.
	if cap(s.fanField) < n {
		s.fanField = make([]geom.Vec, n)
	}
	s.fanField = s.fanField[:n]
	for i := range s.fanField {
		s.fanField[i] = geom.Vec{}
	}
	s.Fan.AddVelocityField(xs, s.fanField)

	baseBuoyancy := s.p.BuoyancyFactor * s.p.Gravity
	dh := s.p.DiffusionCoefficient * s.p.DiffusionHorizontal
	dv := s.p.DiffusionCoefficient * s.p.DiffusionVertical

	for i := 0; i < n; i++ {
		zone := zoneIndex(xs[i][1])

		// Buoyancy decays with age to a floor and never points down.
		ageFactor := clamp(1-ages[i]/s.p.BuoyancyAgeScale, s.p.BuoyancyAgeFloor, 1)
		buoy := baseBuoyancy * zoneBuoyancy[zone] * ageFactor

		ax := s.gen.Gaussian(0, dh) + s.fanField[i][0]
		ay := buoy + s.gen.Gaussian(0, dv) + s.fanField[i][1]
		az := s.gen.Gaussian(0, dh) + s.fanField[i][2]

		vs[i][0] = (vs[i][0] + ax*dt) * s.p.HorizontalDamping
		vs[i][1] = (vs[i][1] + ay*dt) * zoneVerticalDamping[zone]
		vs[i][2] = (vs[i][2] + az*dt) * s.p.HorizontalDamping

		xs[i][0] += vs[i][0] * dt
		xs[i][1] += vs[i][1] * dt
		xs[i][2] += vs[i][2] * dt
	}

	s.applyBoundaries()

	for i := range ages {
		ages[i] += dt
	}
}

// applyBoundaries reflects particles off the five plain walls with an
// inelastic bounce, and at the fan wall absorbs anything inside the fan's
// capture radius instead of bouncing it.
func (s *Simulation) applyBoundaries() {
	xs := s.Ensemble.Positions
	vs := s.Ensemble.Velocities

	w, h, l := s.Room.Width, s.Room.Height, s.Room.Length
	fanPos := s.Fan.Position
	capture := s.Fan.Radius * s.p.FanWallCapture
	capture2 := capture * capture
	band := l - s.p.FanWallBand

	dead := s.Ensemble.Mask()
	absorbed := false

	for i := range xs {
		if xs[i][0] < 0 {
			xs[i][0] = 0
			vs[i][0] *= s.p.WallRestitution
		} else if xs[i][0] > w {
			xs[i][0] = w
			vs[i][0] *= s.p.WallRestitution
		}

		if xs[i][1] < 0 {
			xs[i][1] = 0
			vs[i][1] *= s.p.WallRestitution
		} else if xs[i][1] > h {
			xs[i][1] = h
			vs[i][1] *= s.p.WallRestitution
		}

		if xs[i][2] < 0 {
			xs[i][2] = 0
			vs[i][2] *= s.p.WallRestitution
		} else if xs[i][2] > band {
			// Fan wall. Inside the capture radius the particle leaves
			// through the fan; outside it bounces like any wall.
			dx := xs[i][0] - fanPos[0]
			dy := xs[i][1] - fanPos[1]
			dz := xs[i][2] - fanPos[2]
			if dx*dx+dy*dy+dz*dz < capture2 {
				dead[i] = true
				absorbed = true
			} else if xs[i][2] > l {
				xs[i][2] = l
				vs[i][2] *= s.p.WallRestitution
			}
		}
	}

	if absorbed {
		s.Removed += int64(s.Ensemble.Compact(dead))
	}
}

// RemoveOldParticles drops everything past the particle lifetime.
func (s *Simulation) RemoveOldParticles() {
	ages := s.Ensemble.Ages
	dead := s.Ensemble.Mask()
	any := false
	for i := range ages {
		if ages[i] > s.p.ParticleLifetime {
			dead[i] = true
			any = true
		}
	}
	if any {
		s.Removed += int64(s.Ensemble.Compact(dead))
	}
}

// ParticleCount returns the live particle count.
func (s *Simulation) ParticleCount() int {
	return s.Ensemble.Len()
}

// Particles returns a copy of the particle positions, safe to hand to a
// renderer or logger outside the tick.
func (s *Simulation) Particles() []geom.Vec {
	out := make([]geom.Vec, len(s.Ensemble.Positions))
	copy(out, s.Ensemble.Positions)
	return out
}

// RoomAveragePPM converts the whole-room particle density to the synthetic
// PPM scale. An empty room reads 0.
func (s *Simulation) RoomAveragePPM() float64 {
	if s.Ensemble.Len() == 0 {
		return 0
	}
	perCubicFoot := float64(s.Ensemble.Len()) / s.Room.Volume()
	return perCubicFoot * s.p.PPMScale
}

// RoomAverageClarity returns Beer-Lambert light transmission over the
// assumed path, in percent. An empty room reads 100.
func (s *Simulation) RoomAverageClarity() float64 {
	clarity := 100 * math.Exp(-s.p.ExtinctionCoeff*s.RoomAveragePPM()*s.p.PathLength)
	return clamp(clarity, 0, 100)
}

// HeightDistribution counts particles per stratification band.
type HeightDistribution struct {
	Zone0to4   int `json:"zone_0_4"`
	Zone4to8   int `json:"zone_4_8"`
	Zone8to14  int `json:"zone_8_14"`
	Zone14to18 int `json:"zone_14_18"`
	Zone18Plus int `json:"zone_18_plus"`
	Total      int `json:"total"`
}

func (s *Simulation) HeightDistribution() HeightDistribution {
	var d HeightDistribution
	for i := range s.Ensemble.Positions {
		switch zoneIndex(s.Ensemble.Positions[i][1]) {
		case 0:
			d.Zone0to4++
		case 1:
			d.Zone4to8++
		case 2:
			d.Zone8to14++
		case 3:
			d.Zone14to18++
		default:
			d.Zone18Plus++
		}
	}
	d.Total = s.Ensemble.Len()
	return d
}

// Statistics is the aggregate snapshot for logging and display.
type Statistics struct {
	Time       float64 `json:"time"`
	Particles  int     `json:"particle_count"`
	Generated  int64   `json:"particles_generated"`
	Removed    int64   `json:"particles_removed"`
	NumSmokers int     `json:"num_smokers"`
	AvgPPM     float64 `json:"avg_ppm"`
	AvgClarity float64 `json:"avg_clarity"`

	Heights HeightDistribution `json:"height_distribution"`
}

func (s *Simulation) Statistics() Statistics {
	return Statistics{
		Time:       s.Time,
		Particles:  s.ParticleCount(),
		Generated:  s.Generated,
		Removed:    s.Removed,
		NumSmokers: s.NumSmokers,
		AvgPPM:     s.RoomAveragePPM(),
		AvgClarity: s.RoomAverageClarity(),
		Heights:    s.HeightDistribution(),
	}
}

// Reset drops all particles and counters and discards the cigars. The
// smoker count survives a reset the way the seat layout does not; callers
// wanting smoke again should SetNumSmokers afterward.
func (s *Simulation) Reset() {
	s.Ensemble.Reset()
	s.Time = 0
	s.Generated = 0
	s.Removed = 0
	s.accumulator = 0
	s.Cigars.Reset()
	s.NumSmokers = 0
}
