package smoke

import (
	"testing"

	"github.com/cigarlounge/smokesim/geom"
)

func TestEnsembleAppend(t *testing.T) {
	e := NewEnsemble(16)
	xs := []geom.Vec{{1, 2, 3}, {4, 5, 6}}
	vs := []geom.Vec{{0, 1, 0}, {1, 0, 0}}
	e.Append(xs, vs)

	if e.Len() != 2 {
		t.Fatalf("Len = %d after appending 2, expected 2.", e.Len())
	}
	if len(e.Positions) != len(e.Velocities) || len(e.Positions) != len(e.Ages) {
		t.Fatalf("Parallel arrays out of sync: %d, %d, %d.",
			len(e.Positions), len(e.Velocities), len(e.Ages))
	}
	for i := range e.Ages {
		if e.Ages[i] != 0 {
			t.Errorf("%d) New particle born with age %g.", i, e.Ages[i])
		}
	}
}

func TestEnsembleCompact(t *testing.T) {
	e := NewEnsemble(16)
	for i := 0; i < 6; i++ {
		e.Append([]geom.Vec{{float64(i), 0, 0}}, []geom.Vec{{0, float64(i), 0}})
		e.Ages[i] = float64(i * 10)
	}

	dead := e.Mask()
	dead[1], dead[3], dead[5] = true, true, true

	removed := e.Compact(dead)
	if removed != 3 {
		t.Fatalf("Compact removed %d, expected 3.", removed)
	}
	if e.Len() != 3 {
		t.Fatalf("Len = %d after compaction, expected 3.", e.Len())
	}

	// Survivors keep order and index correspondence.
	wantX := []float64{0, 2, 4}
	for i := range wantX {
		if e.Positions[i][0] != wantX[i] {
			t.Errorf("%d) Position x = %g, expected %g.",
				i, e.Positions[i][0], wantX[i])
		}
		if e.Velocities[i][1] != wantX[i] {
			t.Errorf("%d) Velocity y = %g, expected %g.",
				i, e.Velocities[i][1], wantX[i])
		}
		if e.Ages[i] != wantX[i]*10 {
			t.Errorf("%d) Age = %g, expected %g.", i, e.Ages[i], wantX[i]*10)
		}
	}
}

func TestEnsembleMaskIsCleared(t *testing.T) {
	e := NewEnsemble(16)
	e.Append(make([]geom.Vec, 4), make([]geom.Vec, 4))

	dead := e.Mask()
	dead[0], dead[2] = true, true
	e.Compact(dead)

	// The next Mask call must come back all false.
	dead = e.Mask()
	for i := range dead {
		if dead[i] {
			t.Errorf("%d) Stale mark in reused mask.", i)
		}
	}
}

func TestEnsembleReset(t *testing.T) {
	e := NewEnsemble(16)
	e.Append(make([]geom.Vec, 8), make([]geom.Vec, 8))
	e.Reset()
	if e.Len() != 0 {
		t.Errorf("Len = %d after reset, expected 0.", e.Len())
	}
}
