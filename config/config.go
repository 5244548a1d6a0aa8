/*package config reads the driver's gcfg configuration file and the JSON
sensor-layout file shared with the external shell.

The two formats have different owners: the gcfg file belongs to whoever
runs the binary, the JSON layout schema is fixed by the shell that saves
and loads lounge setups and must not drift.
*/
package config

import (
	"fmt"

	"gopkg.in/gcfg.v1"

	"github.com/cigarlounge/smokesim/control"
)

// Wrapper is the top-level gcfg target; each field is one INI section.
type Wrapper struct {
	Simulation SimulationConfig
	Telemetry  TelemetryConfig
	HTTP       HTTPConfig
	Log        LogConfig
}

type SimulationConfig struct {
	// Required
	NumSmokers int

	// Optional
	TimeStep   float64
	Speed      float64
	Duration   float64 // seconds of simulated time; 0 runs until canceled
	FanMode    string
	LayoutFile string
	Seed       uint64
}

type TelemetryConfig struct {
	KafkaBrokers []string
	KafkaTopic   string
	MQTTBroker   string
	MQTTTopic    string
	Interval     float64
}

type HTTPConfig struct {
	Addr string
}

type LogConfig struct {
	CSVDir   string
	Interval float64
}

// DefaultWrapper returns a Wrapper with the optional fields filled in.
func DefaultWrapper() *Wrapper {
	return &Wrapper{
		Simulation: SimulationConfig{
			TimeStep: 0.1,
			Speed:    1.0,
			FanMode:  string(control.ModeManual),
		},
		Telemetry: TelemetryConfig{
			KafkaTopic: "lounge.readings",
			MQTTTopic:  "lounge/readings",
			Interval:   1.0,
		},
		Log: LogConfig{
			CSVDir:   "exports",
			Interval: 1.0,
		},
	}
}

// ReadFile reads and validates a gcfg file into a fresh Wrapper.
func ReadFile(path string) (*Wrapper, error) {
	wrap := DefaultWrapper()
	if err := gcfg.ReadFileInto(wrap, path); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := wrap.CheckInit(); err != nil {
		return nil, err
	}
	return wrap, nil
}

// CheckInit validates the wrapper after parsing.
func (w *Wrapper) CheckInit() error {
	s := &w.Simulation
	if s.NumSmokers < 0 {
		return fmt.Errorf("'NumSmokers' must be non-negative, but is %d.", s.NumSmokers)
	}
	if s.TimeStep <= 0 || s.TimeStep > 1 {
		return fmt.Errorf("'TimeStep' must be in (0, 1], but is %g.", s.TimeStep)
	}
	if s.Speed < 0.1 || s.Speed > 10 {
		return fmt.Errorf("'Speed' must be in [0.1, 10], but is %g.", s.Speed)
	}
	if s.Duration < 0 {
		return fmt.Errorf("'Duration' must be non-negative, but is %g.", s.Duration)
	}
	if !control.ValidMode(control.Mode(s.FanMode)) {
		return fmt.Errorf("'FanMode' must be manual, auto, or trip, but is '%s'.", s.FanMode)
	}
	if w.Telemetry.Interval <= 0 {
		return fmt.Errorf("'Interval' in [Telemetry] must be positive, but is %g.", w.Telemetry.Interval)
	}
	if w.Log.Interval <= 0 {
		return fmt.Errorf("'Interval' in [Log] must be positive, but is %g.", w.Log.Interval)
	}
	return nil
}

// ExampleConfig is printed by the binary's -ExampleConfig flag.
const ExampleConfig = `[Simulation]
NumSmokers = 24
TimeStep   = 0.1
Speed      = 1.0
# Duration = 0 runs until interrupted.
Duration   = 0
# manual, auto, or trip.
FanMode    = auto
# JSON sensor layout saved by the configuration shell. Optional.
LayoutFile = configs/default_config.json
# Seed = 0 seeds from the clock.
Seed       = 0

[Telemetry]
# Leave brokers unset to disable a publisher.
# KafkaBrokers = localhost:9092
KafkaTopic = lounge.readings
# MQTTBroker = tcp://localhost:1883
MQTTTopic  = lounge/readings
Interval   = 1.0

[HTTP]
# Leave unset to disable the status server.
# Addr = :8080

[Log]
CSVDir   = exports
Interval = 1.0
`
