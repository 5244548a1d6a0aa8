/*package telemetry publishes lounge readings to external consumers as
JSON messages. Two backends are provided, Kafka and MQTT; the driver
samples the lounge between ticks and hands the snapshots here, so no
broker I/O ever happens inside the simulation tick.
*/
package telemetry

import (
	"context"
	"strconv"
	"time"

	"github.com/cigarlounge/smokesim/control"
	"github.com/cigarlounge/smokesim/smoke"
)

// Message is one published sample. Source identifies the producing
// component ("room", "fan", "pair_0", ...); exactly one payload field is
// set.
type Message struct {
	RunID     string    `json:"runId"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`

	Statistics *smoke.Statistics   `json:"statistics,omitempty"`
	Fan        *smoke.Info         `json:"fan,omitempty"`
	Pair       *smoke.PairReadings `json:"pair,omitempty"`
	PIDStatus  *control.PIDStatus  `json:"pidStatus,omitempty"`
	TripStatus *control.TripStatus `json:"tripStatus,omitempty"`
}

// Publisher is a telemetry backend.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Snapshot builds the per-interval message batch for a lounge sample.
func Snapshot(runID string, stats smoke.Statistics, fan smoke.Info,
	pid control.PIDStatus, trip control.TripStatus,
	readings []smoke.PairReadings) []Message {

	now := time.Now()
	msgs := []Message{
		{RunID: runID, Source: "room", Timestamp: now, Statistics: &stats},
		{RunID: runID, Source: "fan", Timestamp: now, Fan: &fan},
		{RunID: runID, Source: "pid", Timestamp: now, PIDStatus: &pid},
		{RunID: runID, Source: "trip", Timestamp: now, TripStatus: &trip},
	}
	for i := range readings {
		pr := readings[i]
		msgs = append(msgs, Message{
			RunID:     runID,
			Source:    pairSource(pr.PairID),
			Timestamp: now,
			Pair:      &pr,
		})
	}
	return msgs
}

func pairSource(id int) string {
	return "pair_" + strconv.Itoa(id)
}
