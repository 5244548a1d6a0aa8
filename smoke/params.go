/*package smoke implements the cigar-lounge smoke transport model: cigars
that puff and burn down, a particle ensemble moved by buoyancy, diffusion
and fan suction, density sensors, and the exhaust fan itself.

All distances are feet, all times seconds, all rates per second. The y
axis is up.
*/
package smoke

import (
	"math"
)

// Params collects every physical and behavioral constant of the model.
// A Params value is treated as immutable once handed to a constructor;
// components copy what they need. Keeping these in a struct instead of
// package globals lets tests run simulations with different tunings side
// by side.
type Params struct {
	// Room dimensions.
	RoomWidth, RoomLength, RoomHeight float64

	// Fan geometry and performance.
	FanX, FanY      float64 // fan center on the back wall (z = RoomLength)
	FanDiameter     float64
	FanMaxCFM       float64
	FanRampRate     float64 // percent per second
	FanWallCapture  float64 // capture radius in fan radii at the fan wall
	FanWallBand     float64 // how close to the fan wall absorption applies

	// Particle generation.
	MaxParticles     int
	ParticleLifetime float64

	// Plume shape at the cigar tip.
	EmitSigma         float64 // horizontal position jitter
	EmitVerticalScale float64 // vertical jitter relative to horizontal
	EmitVelocitySigma float64 // horizontal velocity spread
	EmitUpwardMin     float64
	EmitUpwardMax     float64

	// Transport physics.
	Gravity              float64
	BuoyancyFactor       float64
	BuoyancyAgeScale     float64 // age at which buoyancy bottoms out
	BuoyancyAgeFloor     float64
	DiffusionCoefficient float64
	DiffusionHorizontal  float64 // multiplier on horizontal diffusion
	DiffusionVertical    float64 // multiplier on vertical diffusion
	HorizontalDamping    float64
	WallRestitution      float64 // velocity factor on a wall bounce

	// Cigar behavior.
	BurnTime         float64
	PuffDuration     float64
	PuffIntervalMin  float64
	PuffIntervalMax  float64
	BaselineRate     float64 // particles per second between puffs
	PuffRate         float64 // particles per second during a puff
	LifetimeDecay    float64 // exponent scale of the emission decay
	LifetimeFloor    float64
	SmokerHeight     float64
	MaxSmokers       int

	// Sensors.
	SensorRadius       float64
	SensorResponseTime float64
	SensorWindow       int
	SensorMinHeight    float64
	SensorMaxHeight    float64
	MaxSensorPairs     int

	// Air quality conversion.
	PPMScale        float64 // particles per cubic foot -> PPM
	ExtinctionCoeff float64 // Beer-Lambert, per PPM per foot
	PathLength      float64 // assumed visibility path, feet
}

// DefaultParams returns the tuning the model was calibrated with. The
// buoyancy and damping zone tables (zoneBuoyancy and zoneVerticalDamping
// in sim.go) and the d^-1.5 fan falloff are empirical fits, not derived
// quantities, and should be reproduced as-is.
func DefaultParams() Params {
	return Params{
		RoomWidth:  30.0,
		RoomLength: 75.0,
		RoomHeight: 20.0,

		FanX:           5.0,
		FanY:           15.0,
		FanDiameter:    28.8 / 12.0,
		FanMaxCFM:      8000.0,
		FanRampRate:    10.0,
		FanWallCapture: 2.0,
		FanWallBand:    0.5,

		MaxParticles:     100000,
		ParticleLifetime: 300.0,

		EmitSigma:         0.8,
		EmitVerticalScale: 0.3,
		EmitVelocitySigma: 2.5,
		EmitUpwardMin:     0.5,
		EmitUpwardMax:     2.0,

		Gravity:              32.174,
		BuoyancyFactor:       0.15,
		BuoyancyAgeScale:     600.0,
		BuoyancyAgeFloor:     0.3,
		DiffusionCoefficient: 0.25,
		DiffusionHorizontal:  3.5,
		DiffusionVertical:    0.15,
		HorizontalDamping:    0.92,
		WallRestitution:      -0.5,

		BurnTime:        3000.0,
		PuffDuration:    4.0,
		PuffIntervalMin: 30.0,
		PuffIntervalMax: 180.0,
		BaselineRate:    100.0,
		PuffRate:        6000.0,
		LifetimeDecay:   2.0,
		LifetimeFloor:   0.3,
		SmokerHeight:    4.0,
		MaxSmokers:      48,

		SensorRadius:       1.0,
		SensorResponseTime: 1.5,
		SensorWindow:       10,
		SensorMinHeight:    1.0,
		SensorMaxHeight:    19.0,
		MaxSensorPairs:     4,

		PPMScale:        10.0,
		ExtinctionCoeff: 0.0001,
		PathLength:      10.0,
	}
}

// FanRadius returns the fan radius in feet.
func (p *Params) FanRadius() float64 {
	return p.FanDiameter / 2
}

// FanArea returns the fan face area in square feet.
func (p *Params) FanArea() float64 {
	r := p.FanRadius()
	return math.Pi * r * r
}

// FanMaxVelocity returns the face velocity at 100% speed, in ft/s.
func (p *Params) FanMaxVelocity() float64 {
	return (p.FanMaxCFM / 60.0) / p.FanArea()
}

// Air quality thresholds on the synthetic PPM scale.
const (
	PPMGood          = 50.0
	PPMModerate      = 150.0
	PPMUnhealthy     = 300.0
	PPMVeryUnhealthy = 500.0
	PPMHazardous     = 1000.0
)

func clamp(x, low, high float64) float64 {
	if x < low {
		return low
	}
	if x > high {
		return high
	}
	return x
}
