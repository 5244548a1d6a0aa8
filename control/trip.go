package control

import (
	"github.com/cigarlounge/smokesim/smoke"
)

// aqiSpeed is the trip-mode AQI to fan-speed lookup. First row whose
// bound covers the AQI wins; beyond the table the fan runs flat out.
var aqiSpeed = []struct {
	maxAQI float64
	speed  float64
}{
	{50, 20},
	{100, 40},
	{150, 60},
	{200, 75},
	{300, 90},
}

func speedForAQI(aqi float64) float64 {
	for _, row := range aqiSpeed {
		if aqi <= row.maxAQI {
			return row.speed
		}
	}
	return 100
}

// TripController drives the fan from trip events. Any tripped pair keeps
// the fan running; the speed follows the highest AQI among tripped pairs,
// and the fan keeps running until the longest-lived trip expires.
type TripController struct {
	Fan      *smoke.ExhaustFan
	Registry *Registry

	Mode Mode

	// Simulated clock, advanced by Update, stamped onto trips.
	CurrentTime float64

	anyTripped   bool
	maxRemaining float64
	highestAQI   float64
}

func NewTripController(fan *smoke.ExhaustFan, reg *Registry) *TripController {
	return &TripController{Fan: fan, Registry: reg, Mode: ModeManual}
}

// SetMode switches the controller on or off.
func (c *TripController) SetMode(m Mode) {
	if !ValidMode(m) {
		return
	}
	c.Mode = m
}

// Update advances trip state on every pair, then commands the fan from
// the aggregate. Runs every tick; the pairs' own hold-open timers provide
// the hysteresis, so no interval gating is needed here.
func (c *TripController) Update(dt float64) {
	if c.Mode != ModeTrip {
		return
	}
	c.CurrentTime += dt

	c.anyTripped = false
	c.maxRemaining = 0
	c.highestAQI = 0

	for _, sp := range c.Registry.Pairs() {
		if !sp.UpdateTripState(c.CurrentTime, dt) {
			continue
		}
		c.anyTripped = true
		if sp.Remaining > c.maxRemaining {
			c.maxRemaining = sp.Remaining
		}
		if aqi := sp.MaxAQI(); aqi > c.highestAQI {
			c.highestAQI = aqi
		}
	}

	if !c.anyTripped {
		c.Fan.SetSpeed(0)
		return
	}
	c.Fan.SetSpeed(speedForAQI(c.highestAQI))
}

// TripStatus is the controller snapshot for the display shell.
type TripStatus struct {
	Mode         Mode    `json:"mode"`
	NumSensors   int     `json:"num_sensors"`
	AnyTripped   bool    `json:"any_sensor_tripped"`
	MaxRemaining float64 `json:"max_remaining_duration"`
	HighestAQI   float64 `json:"highest_aqi"`

	Pairs []PairTripStatus `json:"pairs"`
}

// PairTripStatus summarizes one pair's trip state.
type PairTripStatus struct {
	PairID    int     `json:"pair_id"`
	Tripped   bool    `json:"is_tripped"`
	Remaining float64 `json:"remaining_duration"`
	MaxPPM    float64 `json:"max_ppm"`
	MaxAQI    float64 `json:"max_aqi"`
}

func (c *TripController) Status() TripStatus {
	st := TripStatus{
		Mode:         c.Mode,
		NumSensors:   c.Registry.Len(),
		AnyTripped:   c.anyTripped,
		MaxRemaining: c.maxRemaining,
		HighestAQI:   c.highestAQI,
	}
	for _, sp := range c.Registry.Pairs() {
		st.Pairs = append(st.Pairs, PairTripStatus{
			PairID:    sp.PairID,
			Tripped:   sp.Tripped,
			Remaining: sp.Remaining,
			MaxPPM:    sp.MaxPPM(),
			MaxAQI:    sp.MaxAQI(),
		})
	}
	return st
}
