package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cigarlounge/smokesim/smoke"
)

// Layout is the persisted lounge setup. The field names and nesting are
// the shell's schema; changing them breaks every saved file.
type Layout struct {
	Sensors    []SensorEntry  `json:"sensors"`
	Simulation SimulationPart `json:"simulation"`
}

type SensorEntry struct {
	PairID          int     `json:"pair_id"`
	DistanceFromFan float64 `json:"distance_from_fan"`
	LowHeight       float64 `json:"low_height"`
	HighHeight      float64 `json:"high_height"`
	Wall            string  `json:"wall"`
	TripPPM         float64 `json:"trip_ppm"`
	TripAQI         float64 `json:"trip_aqi"`
	TripDuration    float64 `json:"trip_duration"`
}

type SimulationPart struct {
	NumSmokers      int     `json:"num_smokers"`
	FanMode         string  `json:"fan_mode"`
	SimulationSpeed float64 `json:"simulation_speed"`
}

// LoadLayout reads a layout file. A missing or unparseable file returns
// (nil, nil): the simulation runs fine on defaults, so "no configuration
// loaded" is a notice for the caller to log, not an error to fail on.
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil
	}
	var layout Layout
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, nil
	}
	return &layout, nil
}

// SaveLayout writes a layout file with the shell's formatting.
func (l *Layout) SaveLayout(path string) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing layout %s: %w", path, err)
	}
	return nil
}

// PairConfig converts a persisted entry to the core's config type.
func (e *SensorEntry) PairConfig() smoke.SensorPairConfig {
	return smoke.SensorPairConfig{
		PairID:          e.PairID,
		DistanceFromFan: e.DistanceFromFan,
		LowHeight:       e.LowHeight,
		HighHeight:      e.HighHeight,
		Wall:            smoke.Wall(e.Wall),
		TripPPM:         e.TripPPM,
		TripAQI:         e.TripAQI,
		TripDuration:    e.TripDuration,
	}
}

// LayoutFromPairs snapshots the live state back into the persisted form.
func LayoutFromPairs(pairs []*smoke.SensorPair, numSmokers int, fanMode string, speed float64) *Layout {
	layout := &Layout{
		Simulation: SimulationPart{
			NumSmokers:      numSmokers,
			FanMode:         fanMode,
			SimulationSpeed: speed,
		},
	}
	for _, sp := range pairs {
		layout.Sensors = append(layout.Sensors, SensorEntry{
			PairID:          sp.PairID,
			DistanceFromFan: sp.DistanceFromFan,
			LowHeight:       sp.LowHeight,
			HighHeight:      sp.HighHeight,
			Wall:            string(sp.Wall),
			TripPPM:         sp.TripPPM,
			TripAQI:         sp.TripAQI,
			TripDuration:    sp.TripDuration,
		})
	}
	return layout
}
