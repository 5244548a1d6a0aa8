package control

import (
	"github.com/cigarlounge/smokesim/smoke"
)

// PID gains and policy constants for auto mode. The tier table does the
// coarse work; the PID term trims around it.
const (
	Kp = 0.5
	Ki = 0.01
	Kd = 0.1

	CheckInterval    = 5.0  // seconds between control decisions
	TargetPPM        = smoke.PPMGood
	IdleThresholdPPM = 50.0 // breathing-level PPM below which the fan may stop
	MinRunTime       = 30.0 // seconds the fan must run before it may stop
)

// PIDController drives the fan from PPM readings in auto mode.
//
// It reads two signals with different jobs: the worst high-sensor PPM
// ("control") decides how hard to run, because smoke accumulates at the
// ceiling first; the worst low-sensor PPM ("check") decides whether the
// fan may stop at all, because breathing-level air is what the room is
// actually for.
type PIDController struct {
	Fan      *smoke.ExhaustFan
	Registry *Registry

	Mode Mode

	integral   float64
	prevError  float64
	sinceCheck float64

	// Last decision, for status reporting.
	lastControlPPM float64
	lastCheckPPM   float64
	lastTarget     float64
}

func NewPIDController(fan *smoke.ExhaustFan, reg *Registry) *PIDController {
	return &PIDController{Fan: fan, Registry: reg, Mode: ModeManual}
}

// SetMode switches the controller on or off. Entering auto clears the PID
// state so stale integral from a previous session can't kick the fan.
func (c *PIDController) SetMode(m Mode) {
	if !ValidMode(m) {
		return
	}
	c.Mode = m
	if m == ModeAuto {
		c.ResetPID()
	}
}

// ResetPID clears the integral and derivative history.
func (c *PIDController) ResetPID() {
	c.integral = 0
	c.prevError = 0
}

// Update accumulates time and acts once per CheckInterval. Outside auto
// mode, or with no sensors, it does nothing.
func (c *PIDController) Update(dt float64) {
	if c.Mode != ModeAuto || c.Registry.Len() == 0 {
		return
	}

	c.sinceCheck += dt
	if c.sinceCheck < CheckInterval {
		return
	}
	c.sinceCheck = 0

	controlPPM, checkPPM := 0.0, 0.0
	for _, sp := range c.Registry.Pairs() {
		if sp.High.PPM > controlPPM {
			controlPPM = sp.High.PPM
		}
		if sp.Low.PPM > checkPPM {
			checkPPM = sp.Low.PPM
		}
	}
	c.lastControlPPM, c.lastCheckPPM = controlPPM, checkPPM

	var target float64
	if checkPPM < IdleThresholdPPM && c.Fan.RunTime > MinRunTime {
		target = 0
	} else {
		switch {
		case controlPPM < smoke.PPMGood:
			target = 20
		case controlPPM < smoke.PPMModerate:
			target = 40
		case controlPPM < smoke.PPMUnhealthy:
			target = 70
		default:
			target = 100
		}

		err := controlPPM - TargetPPM
		c.integral += err * CheckInterval
		derivative := (err - c.prevError) / CheckInterval
		c.prevError = err

		target += Kp*err + Ki*c.integral + Kd*derivative
		if target < 0 {
			target = 0
		} else if target > 100 {
			target = 100
		}
	}

	c.lastTarget = target
	c.Fan.SetSpeed(target)
}

// PIDStatus is the controller snapshot for the display shell.
type PIDStatus struct {
	Mode        Mode    `json:"mode"`
	NumSensors  int     `json:"num_sensors"`
	TargetPPM   float64 `json:"target_ppm"`
	Integral    float64 `json:"integral_error"`
	ControlPPM  float64 `json:"control_ppm"`
	CheckPPM    float64 `json:"check_ppm"`
	TargetSpeed float64 `json:"target_speed"`
}

func (c *PIDController) Status() PIDStatus {
	return PIDStatus{
		Mode:        c.Mode,
		NumSensors:  c.Registry.Len(),
		TargetPPM:   TargetPPM,
		Integral:    c.integral,
		ControlPPM:  c.lastControlPPM,
		CheckPPM:    c.lastCheckPPM,
		TargetSpeed: c.lastTarget,
	}
}
