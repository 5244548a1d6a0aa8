/*package datalog accumulates per-tick simulation samples and exports them
as CSV. Logging happens outside the tick path: the driver samples the
lounge between ticks at a fixed interval.
*/
package datalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cigarlounge/smokesim/smoke"
)

// ClearanceThresholdPPM is the room-average PPM under which the room
// counts as cleared, once it holds for ClearanceSamples logged samples.
const (
	ClearanceThresholdPPM = 50.0
	ClearanceSamples      = 10
)

type sample struct {
	time          float64
	fanSpeed      float64
	roomPPM       float64
	roomClarity   float64
	particleCount int

	// Keyed by sensor ID ("0_low", "0_high", ...).
	sensorPPM     map[string]float64
	sensorClarity map[string]float64
}

// Logger collects interval-gated samples and summary statistics.
type Logger struct {
	RunID string

	interval float64
	sinceLog float64

	samples   []sample
	sensorIDs []string // column order, by first appearance
	seen      map[string]bool

	PeakPPM     float64
	MeanPPM     float64
	TimeToClear float64 // -1 until the room clears
	ppmSum      float64
}

func NewLogger(interval float64) *Logger {
	if interval <= 0 {
		interval = 1.0
	}
	return &Logger{
		RunID:       uuid.NewString(),
		interval:    interval,
		seen:        make(map[string]bool),
		TimeToClear: -1,
	}
}

// Update logs a sample if the logging interval has elapsed. It returns
// true when a sample was taken.
func (l *Logger) Update(simTime float64, fan smoke.Info, stats smoke.Statistics,
	readings []smoke.PairReadings, dt float64) bool {

	l.sinceLog += dt
	if l.sinceLog < l.interval {
		return false
	}
	l.sinceLog = 0

	s := sample{
		time:          simTime,
		fanSpeed:      fan.SpeedPercent,
		roomPPM:       stats.AvgPPM,
		roomClarity:   stats.AvgClarity,
		particleCount: stats.Particles,
		sensorPPM:     make(map[string]float64),
		sensorClarity: make(map[string]float64),
	}
	for _, pr := range readings {
		for _, r := range []smoke.Reading{pr.Low, pr.High} {
			s.sensorPPM[r.ID] = r.PPM
			s.sensorClarity[r.ID] = r.ClarityPercent
			if !l.seen[r.ID] {
				l.seen[r.ID] = true
				l.sensorIDs = append(l.sensorIDs, r.ID)
			}
		}
	}
	l.samples = append(l.samples, s)

	if stats.AvgPPM > l.PeakPPM {
		l.PeakPPM = stats.AvgPPM
	}
	l.ppmSum += stats.AvgPPM
	l.MeanPPM = l.ppmSum / float64(len(l.samples))

	if l.TimeToClear < 0 && len(l.samples) >= ClearanceSamples {
		cleared := true
		for _, past := range l.samples[len(l.samples)-ClearanceSamples:] {
			if past.roomPPM >= ClearanceThresholdPPM {
				cleared = false
				break
			}
		}
		if cleared {
			l.TimeToClear = simTime
		}
	}
	return true
}

// Len returns the number of logged samples.
func (l *Logger) Len() int {
	return len(l.samples)
}

// Header returns the CSV column names for the sensors seen so far.
func (l *Logger) Header() []string {
	header := []string{"time", "fan_speed", "room_ppm", "room_clarity", "particle_count"}
	for _, id := range l.sensorIDs {
		header = append(header, id+"_ppm", id+"_clarity")
	}
	return header
}

// Export writes all samples to a timestamped CSV in dir and returns the
// file path. Samples logged before a sensor existed leave its columns
// empty.
func (l *Logger) Export(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("smoke_%s_%s.csv",
		time.Now().Format("20060102_150405"), l.RunID[:8])
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(l.Header()); err != nil {
		return "", err
	}

	for _, s := range l.samples {
		row := []string{
			formatFloat(s.time),
			formatFloat(s.fanSpeed),
			formatFloat(s.roomPPM),
			formatFloat(s.roomClarity),
			strconv.Itoa(s.particleCount),
		}
		for _, id := range l.sensorIDs {
			if ppm, ok := s.sensorPPM[id]; ok {
				row = append(row, formatFloat(ppm), formatFloat(s.sensorClarity[id]))
			} else {
				row = append(row, "", "")
			}
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}

// Reset drops all samples and statistics but keeps the run ID.
func (l *Logger) Reset() {
	l.samples = nil
	l.sensorIDs = nil
	l.seen = make(map[string]bool)
	l.sinceLog = 0
	l.PeakPPM = 0
	l.MeanPPM = 0
	l.ppmSum = 0
	l.TimeToClear = -1
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', 6, 64)
}
