package smokesim

import (
	"testing"

	"github.com/cigarlounge/smokesim/control"
	"github.com/cigarlounge/smokesim/geom"
	"github.com/cigarlounge/smokesim/rand"
	"github.com/cigarlounge/smokesim/smoke"
)

func newTestLounge(seed uint64) *Lounge {
	return New(smoke.DefaultParams(), rand.New(rand.Xorshift, seed))
}

func TestLoungeSmokeSession(t *testing.T) {
	l := newTestLounge(42)
	l.SetNumSmokers(4)

	for i := 0; i < 3000; i++ {
		l.Step(0.1)
	}

	stats := l.Statistics()
	if stats.Particles == 0 {
		t.Fatalf("Empty room after a 300 s session with 4 smokers.")
	}
	if stats.Particles > l.Params.MaxParticles {
		t.Errorf("Particle count %d exceeds the %d cap.",
			stats.Particles, l.Params.MaxParticles)
	}
	if stats.Generated-stats.Removed != int64(stats.Particles) {
		t.Errorf("Generated %d - Removed %d != %d live particles.",
			stats.Generated, stats.Removed, stats.Particles)
	}
	if stats.AvgPPM <= 0 {
		t.Errorf("Room average PPM = %g with live smoke.", stats.AvgPPM)
	}

	bounds := l.Room.Bounds
	for i, x := range l.Particles() {
		if !bounds.Contains(x) {
			t.Errorf("Particle %d outside the room: %v.", i, x)
		}
	}
}

func TestLoungeSmokeLevelPlateaus(t *testing.T) {
	if testing.Short() {
		t.Skip("20 simulated minutes of full-rate smoking")
	}

	// Four smokers, fan off, 1200 s at dt=0.1. With a fixed particle
	// lifetime the population must reach a steady state where generation
	// and removal balance, not grow without bound.
	l := newTestLounge(42)
	l.SetNumSmokers(4)

	var at900 int
	for i := 0; i < 12000; i++ {
		l.Step(0.1)
		if i == 8999 {
			at900 = l.Statistics().Particles
		}
	}
	at1200 := l.Statistics().Particles

	if at900 == 0 || at1200 == 0 {
		t.Fatalf("Room emptied out mid-session: %d at 900 s, %d at 1200 s.",
			at900, at1200)
	}

	stats := l.Statistics()
	if stats.Removed == 0 {
		t.Errorf("No particles removed over 1200 s; nothing is aging out.")
	}
	if stats.Generated-stats.Removed != int64(stats.Particles) {
		t.Errorf("Generated %d - Removed %d != %d live particles.",
			stats.Generated, stats.Removed, stats.Particles)
	}
	if stats.Particles > l.Params.MaxParticles {
		t.Errorf("Population %d exceeds the %d cap.",
			stats.Particles, l.Params.MaxParticles)
	}

	// Plateau: the last 300 s must not change the population materially.
	growth := float64(at1200) / float64(at900)
	if growth < 0.7 || growth > 1.3 {
		t.Errorf("Population still moving late in the session: "+
			"%d at 900 s -> %d at 1200 s (x%.3g).", at900, at1200, growth)
	}
}

func TestLoungeTripFromAccumulatedSmoke(t *testing.T) {
	// The trip path end to end: a cigar smoking right below a high
	// sensor, readings built from the live particle field over hundreds
	// of sensor sample cycles, no injected values anywhere.
	l := newTestLounge(42)
	if err := l.SetMode(control.ModeTrip); err != nil {
		t.Fatal(err)
	}

	pair, err := l.AddSensorPair(smoke.SensorPairConfig{
		PairID: 0, DistanceFromFan: 40,
		LowHeight: 2, HighHeight: 16, Wall: smoke.WallSouth,
		TripPPM: 10, TripAQI: 50, TripDuration: 120,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Seat the smoker half a foot below the pair's high sensor and light
	// a fresh cigar, so the plume builds inside the detection sphere.
	l.SetNumSmokers(1)
	cigar := l.Sim.Cigars.Cigars()[0]
	cigar.Position = geom.Vec{
		pair.High.Position[0], pair.High.Position[1] - 0.5, pair.High.Position[2],
	}
	cigar.Relight()

	// 60 s at dt=0.1: about 400 sensor sample cycles.
	for i := 0; i < 600; i++ {
		l.Step(0.1)
	}

	if pair.High.PPM == 0 {
		t.Fatalf("High sensor never read the plume.")
	}
	if !pair.Tripped {
		t.Fatalf("Pair did not trip on accumulated smoke (high PPM %.1f).",
			pair.High.PPM)
	}
	if !l.Trip.Status().AnyTripped {
		t.Errorf("Trip controller does not report the tripped pair.")
	}
	if !l.Fan.Running || l.Fan.TargetPercent <= 0 {
		t.Errorf("Fan not commanded after the trip: target %g%%.",
			l.Fan.TargetPercent)
	}
	if l.Fan.SpeedPercent <= 0 {
		t.Errorf("Fan never spun up after the trip.")
	}
}

func TestLoungeManualFanControl(t *testing.T) {
	l := newTestLounge(42)

	l.SetManualSpeed(60)
	// Ramp rate is 10%/s, so 60% takes 6 s.
	for i := 0; i < 70; i++ {
		l.Step(0.1)
	}
	if l.Fan.SpeedPercent != 60 {
		t.Errorf("Fan at %g%% after 7 s, expected 60%%.", l.Fan.SpeedPercent)
	}

	// Outside manual mode the setter is a no-op.
	if err := l.SetMode(control.ModeAuto); err != nil {
		t.Fatal(err)
	}
	l.SetManualSpeed(100)
	if l.Fan.TargetPercent != 60 {
		t.Errorf("Manual speed accepted in auto mode: target %g%%.",
			l.Fan.TargetPercent)
	}
}

func TestLoungeSetModeRejectsUnknown(t *testing.T) {
	l := newTestLounge(42)
	if err := l.SetMode("turbo"); err == nil {
		t.Errorf("Unknown mode accepted.")
	}
	if l.Mode != control.ModeManual {
		t.Errorf("Mode changed to %q on a failed set.", l.Mode)
	}
}

func TestLoungeSpeedMultiplierClamps(t *testing.T) {
	l := newTestLounge(42)
	table := []struct{ in, want float64 }{
		{1, 1}, {0.01, 0.1}, {100, 10}, {2.5, 2.5},
	}
	for i, test := range table {
		l.SetSpeedMultiplier(test.in)
		if l.Speed != test.want {
			t.Errorf("%d) SetSpeedMultiplier(%g) gave %g, expected %g.",
				i, test.in, l.Speed, test.want)
		}
	}
}

func TestLoungeAddSensorPairValidation(t *testing.T) {
	l := newTestLounge(42)

	_, err := l.AddSensorPair(smoke.SensorPairConfig{
		PairID: 0, DistanceFromFan: 10,
		LowHeight: 16, HighHeight: 2, Wall: smoke.WallSouth,
	})
	if err == nil {
		t.Errorf("Inverted sensor heights accepted.")
	}

	_, err = l.AddSensorPair(smoke.SensorPairConfig{
		PairID: 0, DistanceFromFan: 10,
		LowHeight: 2, HighHeight: 16, Wall: "ceiling",
	})
	if err == nil {
		t.Errorf("Unknown wall accepted.")
	}

	for i := 0; i < l.Params.MaxSensorPairs; i++ {
		_, err := l.AddSensorPair(smoke.SensorPairConfig{
			PairID: i, DistanceFromFan: float64(10 + i*10),
			LowHeight: 2, HighHeight: 16, Wall: smoke.WallSouth,
			TripPPM: 50, TripAQI: 100, TripDuration: 120,
		})
		if err != nil {
			t.Fatalf("Pair %d rejected below the limit: %v", i, err)
		}
	}
	_, err = l.AddSensorPair(smoke.SensorPairConfig{
		PairID: 99, DistanceFromFan: 60,
		LowHeight: 2, HighHeight: 16, Wall: smoke.WallSouth,
	})
	if err == nil {
		t.Errorf("Pair accepted past the limit.")
	}

	if !l.RemoveSensorPair(2) {
		t.Errorf("RemoveSensorPair(2) failed for a registered pair.")
	}
	if l.RemoveSensorPair(2) {
		t.Errorf("RemoveSensorPair(2) succeeded twice.")
	}
}

func TestLoungeTripModeRunsFan(t *testing.T) {
	l := newTestLounge(42)
	if err := l.SetMode(control.ModeTrip); err != nil {
		t.Fatal(err)
	}

	pair, err := l.AddSensorPair(smoke.SensorPairConfig{
		PairID: 0, DistanceFromFan: 10,
		LowHeight: 2, HighHeight: 16, Wall: smoke.WallSouth,
		TripPPM: 50, TripAQI: 100, TripDuration: 120,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Drive the pair over threshold directly; the sensor physics has its
	// own tests.
	pair.High.PPM = 200
	l.Step(0.1)

	if !l.Fan.Running {
		t.Errorf("Fan not running after a trip.")
	}
	status := l.Trip.Status()
	if !status.AnyTripped {
		t.Errorf("Trip status does not report the tripped pair.")
	}
}

func TestLoungeReset(t *testing.T) {
	l := newTestLounge(42)
	l.SetNumSmokers(8)
	l.SetManualSpeed(50)
	l.AddSensorPair(smoke.SensorPairConfig{
		PairID: 0, DistanceFromFan: 10,
		LowHeight: 2, HighHeight: 16, Wall: smoke.WallSouth,
		TripPPM: 50, TripAQI: 100, TripDuration: 120,
	})
	for i := 0; i < 500; i++ {
		l.Step(0.1)
	}

	l.Reset()

	if l.Statistics().Particles != 0 {
		t.Errorf("Particles survived a reset.")
	}
	if l.Time != 0 {
		t.Errorf("Time = %g after reset.", l.Time)
	}
	if l.Fan.SpeedPercent != 0 || l.Fan.Running {
		t.Errorf("Fan still running after reset.")
	}
	if l.Registry.Len() != 1 {
		t.Errorf("Sensor layout lost on reset: %d pairs.", l.Registry.Len())
	}
	if r := l.Registry.Readings(); r[0].Low.PPM != 0 {
		t.Errorf("Sensor readings survived a reset: %g PPM.", r[0].Low.PPM)
	}
}
