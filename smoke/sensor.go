package smoke

import (
	"fmt"
	"math"

	"github.com/cigarlounge/smokesim/geom"
)

// window is a fixed-length rolling sample buffer. Its mean is the
// sensor's entire response-time model: ten samples taken every
// responseTime/10 seconds lag a step input by about the response time.
type window struct {
	buf  []float64
	next int
	n    int
}

func newWindow(size int) *window {
	return &window{buf: make([]float64, size)}
}

func (w *window) Push(x float64) {
	w.buf[w.next] = x
	w.next = (w.next + 1) % len(w.buf)
	if w.n < len(w.buf) {
		w.n++
	}
}

func (w *window) Mean() float64 {
	if w.n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < w.n; i++ {
		sum += w.buf[i]
	}
	return sum / float64(w.n)
}

func (w *window) Reset() {
	w.next, w.n = 0, 0
}

// Sensor samples particle density in a sphere around a fixed point and
// reports smoothed PPM, AQI and clarity.
//
// PPM, AQI and clarity each carry their own rolling window, and clarity is
// computed from already-smoothed PPM before being smoothed again. The
// compounding is deliberate, matching the calibrated behavior, at the cost
// of extra lag on the clarity channel.
type Sensor struct {
	ID       string
	Position geom.Vec
	Kind     string // "low" or "high"

	PPM     float64
	AQI     float64
	Clarity float64

	detectionRadius float64
	detectionVolume float64
	responseTime    float64
	sinceUpdate     float64

	ppmWindow     *window
	aqiWindow     *window
	clarityWindow *window

	ppmScale        float64
	extinctionCoeff float64
	pathLength      float64
}

func NewSensor(id string, pos geom.Vec, kind string, p *Params) *Sensor {
	r := p.SensorRadius
	return &Sensor{
		ID:              id,
		Position:        pos,
		Kind:            kind,
		Clarity:         100,
		detectionRadius: r,
		detectionVolume: (4.0 / 3.0) * math.Pi * r * r * r,
		responseTime:    p.SensorResponseTime,
		ppmWindow:       newWindow(p.SensorWindow),
		aqiWindow:       newWindow(p.SensorWindow),
		clarityWindow:   newWindow(p.SensorWindow),
		ppmScale:        p.PPMScale,
		extinctionCoeff: p.ExtinctionCoeff,
		pathLength:      p.PathLength,
	}
}

// UpdateReading samples the particle field. The sample only fires every
// responseTime/10 seconds of simulated time; between samples the call just
// accumulates dt, decoupling the sensor from the outer tick rate.
func (s *Sensor) UpdateReading(xs []geom.Vec, dt float64) {
	s.sinceUpdate += dt
	if s.sinceUpdate < s.responseTime/10 {
		return
	}
	s.sinceUpdate = 0

	instPPM := 0.0
	if len(xs) > 0 {
		inRange := geom.CountWithin(xs, s.Position, s.detectionRadius)
		instPPM = float64(inRange) / s.detectionVolume * s.ppmScale
	}

	s.ppmWindow.Push(instPPM)
	s.PPM = s.ppmWindow.Mean()

	s.aqiWindow.Push(PPMToAQI(s.PPM))
	s.AQI = s.aqiWindow.Mean()

	clarity := 100 * math.Exp(-s.extinctionCoeff*s.PPM*s.pathLength)
	s.clarityWindow.Push(clamp(clarity, 0, 100))
	s.Clarity = s.clarityWindow.Mean()
}

// Reading is one sensor's snapshot.
type Reading struct {
	ID             string   `json:"id"`
	Kind           string   `json:"type"`
	Position       geom.Vec `json:"position"`
	PPM            float64  `json:"ppm"`
	AQI            float64  `json:"aqi"`
	ClarityPercent float64  `json:"clarity_percent"`
}

func (s *Sensor) Reading() Reading {
	return Reading{
		ID:             s.ID,
		Kind:           s.Kind,
		Position:       s.Position,
		PPM:            s.PPM,
		AQI:            s.AQI,
		ClarityPercent: s.Clarity,
	}
}

func (s *Sensor) Reset() {
	s.PPM = 0
	s.AQI = 0
	s.Clarity = 100
	s.sinceUpdate = 0
	s.ppmWindow.Reset()
	s.aqiWindow.Reset()
	s.clarityWindow.Reset()
}

// Wall names a mounting wall. The fan hangs on the north wall
// (z = RoomLength).
type Wall string

const (
	WallNorth Wall = "north"
	WallSouth Wall = "south"
	WallEast  Wall = "east"
	WallWest  Wall = "west"
)

// ValidWall reports whether w names a wall.
func ValidWall(w Wall) bool {
	switch w {
	case WallNorth, WallSouth, WallEast, WallWest:
		return true
	}
	return false
}

// SensorPairConfig is the user-facing geometry and trip tuning of a pair.
// The JSON names match the persisted layout schema.
type SensorPairConfig struct {
	PairID          int     `json:"pair_id"`
	DistanceFromFan float64 `json:"distance_from_fan"`
	LowHeight       float64 `json:"low_height"`
	HighHeight      float64 `json:"high_height"`
	Wall            Wall    `json:"wall"`
	TripPPM         float64 `json:"trip_ppm"`
	TripAQI         float64 `json:"trip_aqi"`
	TripDuration    float64 `json:"trip_duration"`
}

// SensorPair is a low/high sensor column with trip thresholds. Trip state
// is a two-state machine: while the condition holds, the countdown re-arms
// every tick; once it clears, the countdown runs out before the pair
// returns to normal. That hold-open keeps the fan from flapping.
type SensorPair struct {
	SensorPairConfig

	Low  *Sensor
	High *Sensor

	Tripped   bool
	TripStart float64
	Remaining float64
}

// NewSensorPair places the column. The pair always sits DistanceFromFan in
// from the fan wall along z; the wall choice picks the lateral coordinate:
// south keeps the fan's own x (the column faces the fan), north mirrors it
// across the room, east and west hug their wall.
func NewSensorPair(cfg SensorPairConfig, p *Params) *SensorPair {
	cfg.LowHeight = clamp(cfg.LowHeight, p.SensorMinHeight, p.SensorMaxHeight)
	cfg.HighHeight = clamp(cfg.HighHeight, p.SensorMinHeight, p.SensorMaxHeight)
	if !ValidWall(cfg.Wall) {
		cfg.Wall = WallSouth
	}

	z := clamp(p.RoomLength-cfg.DistanceFromFan, 0, p.RoomLength)
	var x float64
	switch cfg.Wall {
	case WallSouth, WallNorth:
		x = p.FanX
		if cfg.Wall == WallNorth {
			x = p.RoomWidth - p.FanX
		}
	case WallWest:
		x = 1.0
	case WallEast:
		x = p.RoomWidth - 1.0
	}

	pair := &SensorPair{SensorPairConfig: cfg}
	pair.Low = NewSensor(fmt.Sprintf("%d_low", cfg.PairID),
		geom.Vec{x, cfg.LowHeight, z}, "low", p)
	pair.High = NewSensor(fmt.Sprintf("%d_high", cfg.PairID),
		geom.Vec{x, cfg.HighHeight, z}, "high", p)
	return pair
}

// Update samples both sensors against the particle field.
func (sp *SensorPair) Update(xs []geom.Vec, dt float64) {
	sp.Low.UpdateReading(xs, dt)
	sp.High.UpdateReading(xs, dt)
}

// MaxPPM returns the worse of the two sensors' PPM.
func (sp *SensorPair) MaxPPM() float64 {
	return math.Max(sp.Low.PPM, sp.High.PPM)
}

// MaxAQI returns the worse of the two sensors' AQI.
func (sp *SensorPair) MaxAQI() float64 {
	return math.Max(sp.Low.AQI, sp.High.AQI)
}

// CheckTripCondition reports whether either threshold is exceeded right
// now. Either alone is sufficient.
func (sp *SensorPair) CheckTripCondition() bool {
	return sp.MaxPPM() > sp.TripPPM || sp.MaxAQI() > sp.TripAQI
}

// UpdateTripState advances the trip machine and returns the post-update
// tripped flag. While the condition holds the countdown re-arms to the
// full duration, so a trip never expires under a persistent condition.
func (sp *SensorPair) UpdateTripState(now, dt float64) bool {
	if sp.CheckTripCondition() {
		if !sp.Tripped {
			sp.Tripped = true
			sp.TripStart = now
		}
		sp.Remaining = sp.TripDuration
	} else if sp.Tripped {
		sp.Remaining -= dt
		if sp.Remaining <= 0 {
			sp.Tripped = false
			sp.Remaining = 0
		}
	}
	return sp.Tripped
}

// PairReadings is the snapshot for the display shell.
type PairReadings struct {
	PairID    int     `json:"pair_id"`
	Wall      Wall    `json:"wall"`
	Low       Reading `json:"low"`
	High      Reading `json:"high"`
	Tripped   bool    `json:"is_tripped"`
	Remaining float64 `json:"remaining_duration"`
}

func (sp *SensorPair) Readings() PairReadings {
	return PairReadings{
		PairID:    sp.PairID,
		Wall:      sp.Wall,
		Low:       sp.Low.Reading(),
		High:      sp.High.Reading(),
		Tripped:   sp.Tripped,
		Remaining: sp.Remaining,
	}
}

// Reset clears readings and trip state.
func (sp *SensorPair) Reset() {
	sp.Low.Reset()
	sp.High.Reset()
	sp.Tripped = false
	sp.TripStart = 0
	sp.Remaining = 0
}
