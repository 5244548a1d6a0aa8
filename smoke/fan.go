package smoke

import (
	"math"

	"github.com/cigarlounge/smokesim/geom"
)

// ExhaustFan is the wall-mounted exhaust fan. Speed commands set a target;
// the physical speed ramps toward it at a bounded rate.
type ExhaustFan struct {
	Position geom.Vec
	Radius   float64
	Area     float64

	SpeedPercent  float64
	TargetPercent float64
	Running       bool
	RunTime       float64

	maxCFM      float64
	maxVelocity float64
	rampRate    float64
}

func NewExhaustFan(p *Params) *ExhaustFan {
	return &ExhaustFan{
		Position:    geom.Vec{p.FanX, p.FanY, p.RoomLength},
		Radius:      p.FanRadius(),
		Area:        p.FanArea(),
		maxCFM:      p.FanMaxCFM,
		maxVelocity: p.FanMaxVelocity(),
		rampRate:    p.FanRampRate,
	}
}

// SetSpeed sets the ramp target, clamped to [0, 100]. The fan counts as
// running whenever the target is nonzero, even while still spinning up.
func (f *ExhaustFan) SetSpeed(percent float64) {
	f.TargetPercent = clamp(percent, 0, 100)
	f.Running = f.TargetPercent > 0
}

// Update accumulates run time and moves the speed toward the target by at
// most rampRate*dt. Within a tenth of a percent the speed snaps to the
// target to avoid asymptotic crawl.
func (f *ExhaustFan) Update(dt float64) {
	if f.Running {
		f.RunTime += dt
	}

	diff := f.TargetPercent - f.SpeedPercent
	if diff > 0.1 {
		f.SpeedPercent += f.rampRate * dt
		if f.SpeedPercent > f.TargetPercent {
			f.SpeedPercent = f.TargetPercent
		}
	} else if diff < -0.1 {
		f.SpeedPercent -= f.rampRate * dt
		if f.SpeedPercent < f.TargetPercent {
			f.SpeedPercent = f.TargetPercent
		}
	} else {
		f.SpeedPercent = f.TargetPercent
	}
}

// CFM returns the current airflow in cubic feet per minute.
func (f *ExhaustFan) CFM() float64 {
	return f.maxCFM * f.SpeedPercent / 100
}

// FaceVelocity returns the current air speed at the fan face in ft/s.
func (f *ExhaustFan) FaceVelocity() float64 {
	return f.maxVelocity * f.SpeedPercent / 100
}

// AddVelocityField adds the fan's suction field to vs, evaluated at each
// position in xs. The field points at the fan with magnitude
// faceVelocity * area / d^1.5, clamped to twice the face velocity, with a
// floor on d to keep the near singularity out. This is an empirical
// "strong near the fan, fading with distance" profile, not a potential
// flow solution; it was tuned against observed room clearing times.
func (f *ExhaustFan) AddVelocityField(xs, vs []geom.Vec) {
	if f.SpeedPercent <= 0 {
		return
	}

	v := f.FaceVelocity()
	vMax := v * 2
	fx, fy, fz := f.Position[0], f.Position[1], f.Position[2]

	for i := range xs {
		dx := fx - xs[i][0]
		dy := fy - xs[i][1]
		dz := fz - xs[i][2]
		d := dx*dx + dy*dy + dz*dz
		if d < 0.01 {
			d = 0.01 // distance floor of 0.1 ft
		}
		dist := math.Sqrt(d)

		mag := v * f.Area / (dist * math.Sqrt(dist)) // d^1.5
		if mag > vMax {
			mag = vMax
		}

		s := mag / dist
		vs[i][0] += dx * s
		vs[i][1] += dy * s
		vs[i][2] += dz * s
	}
}

// Info is the fan state snapshot handed to the display/persistence shell.
type Info struct {
	Position     geom.Vec `json:"position"`
	SpeedPercent float64  `json:"speed_percent"`
	TargetSpeed  float64  `json:"target_speed"`
	Running      bool     `json:"is_running"`
	CFM          float64  `json:"cfm"`
	Velocity     float64  `json:"velocity"`
	RunTime      float64  `json:"run_time"`
}

func (f *ExhaustFan) Info() Info {
	return Info{
		Position:     f.Position,
		SpeedPercent: f.SpeedPercent,
		TargetSpeed:  f.TargetPercent,
		Running:      f.Running,
		CFM:          f.CFM(),
		Velocity:     f.FaceVelocity(),
		RunTime:      f.RunTime,
	}
}

// Reset returns the fan to a stopped state.
func (f *ExhaustFan) Reset() {
	f.SpeedPercent = 0
	f.TargetPercent = 0
	f.Running = false
	f.RunTime = 0
}
