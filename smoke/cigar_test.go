package smoke

import (
	"math"
	"testing"

	"github.com/cigarlounge/smokesim/geom"
	"github.com/cigarlounge/smokesim/rand"
)

func testParams() Params {
	return DefaultParams()
}

func TestCigarPuffCycle(t *testing.T) {
	p := testParams()
	gen := rand.New(rand.Xorshift, 7)
	c := NewCigar(0, geom.Vec{10, 4, 30}, &p, gen, false)

	// Force a known puff schedule.
	c.TimeSinceLast = 0
	c.NextPuffInterval = 10

	for i := 0; i < 99; i++ {
		c.Update(0.1)
	}
	if c.Puffing {
		t.Errorf("Puffing before the interval elapsed.")
	}

	c.Update(0.2)
	if !c.Puffing {
		t.Errorf("Not puffing after the interval elapsed.")
	}

	for i := 0; i < 45; i++ {
		c.Update(0.1)
	}
	if c.Puffing {
		t.Errorf("Still puffing after the puff duration.")
	}
	if c.TimeSinceLast > 1 {
		t.Errorf("TimeSinceLast not cleared after a puff: %g", c.TimeSinceLast)
	}
	if c.NextPuffInterval < p.PuffIntervalMin || c.NextPuffInterval > p.PuffIntervalMax {
		t.Errorf("Next puff interval %g outside [%g, %g].",
			c.NextPuffInterval, p.PuffIntervalMin, p.PuffIntervalMax)
	}
}

func TestCigarRelight(t *testing.T) {
	p := testParams()
	gen := rand.New(rand.Xorshift, 7)
	c := NewCigar(0, geom.Vec{10, 4, 30}, &p, gen, false)

	c.Age = p.BurnTime - 0.05
	c.Puffing = true
	c.Update(0.1)

	if c.Age != 0 {
		t.Errorf("Expected age 0 after relight, got %g.", c.Age)
	}
	if c.Puffing {
		t.Errorf("Still puffing after relight.")
	}
	if c.Position != (geom.Vec{10, 4, 30}) {
		t.Errorf("Relight moved the cigar to %v.", c.Position)
	}
}

func TestCigarSmokeRateDecay(t *testing.T) {
	p := testParams()
	gen := rand.New(rand.Xorshift, 7)
	c := NewCigar(0, geom.Vec{}, &p, gen, false)

	fresh := c.SmokeRate()
	if math.Abs(fresh-p.BaselineRate) > 1e-10 {
		t.Errorf("Fresh cigar rate = %g, expected %g.", fresh, p.BaselineRate)
	}

	c.Age = p.BurnTime / 2
	mid := c.SmokeRate()
	want := p.BaselineRate * math.Exp(-p.LifetimeDecay*0.5)
	if math.Abs(mid-want) > 1e-10 {
		t.Errorf("Half-burned rate = %g, expected %g.", mid, want)
	}

	c.Age = p.BurnTime * 0.99
	old := c.SmokeRate()
	if math.Abs(old-p.BaselineRate*p.LifetimeFloor) > 1e-10 {
		t.Errorf("Old cigar rate = %g, expected floor %g.",
			old, p.BaselineRate*p.LifetimeFloor)
	}

	c.Age = 0
	c.Puffing = true
	if got := c.SmokeRate(); math.Abs(got-p.PuffRate) > 1e-10 {
		t.Errorf("Puffing rate = %g, expected %g.", got, p.PuffRate)
	}
}

func TestCigarStagger(t *testing.T) {
	p := testParams()
	gen := rand.New(rand.Xorshift, 7)

	for i := 0; i < 100; i++ {
		c := NewCigar(i, geom.Vec{}, &p, gen, true)
		if c.Age < 0 || c.Age >= p.BurnTime {
			t.Errorf("%d) Staggered age %g outside [0, %g).", i, c.Age, p.BurnTime)
		}
	}
}

func TestCigarManagerSources(t *testing.T) {
	p := testParams()
	gen := rand.New(rand.Xorshift, 7)
	m := NewCigarManager(&p, gen)

	seats := []geom.Vec{{5, 4, 20}, {15, 4, 40}, {25, 4, 60}}
	m.SetSmokers(seats)

	positions, rates := m.Sources(nil, nil)
	if len(positions) != 3 || len(rates) != 3 {
		t.Fatalf("Expected 3 sources, got %d positions, %d rates.",
			len(positions), len(rates))
	}
	for i := range positions {
		if positions[i] != seats[i] {
			t.Errorf("%d) Source at %v, seat at %v.", i, positions[i], seats[i])
		}
		if rates[i] <= 0 {
			t.Errorf("%d) Non-positive smoke rate %g.", i, rates[i])
		}
	}

	// Reusing the slices must not grow them.
	positions, rates = m.Sources(positions, rates)
	if len(positions) != 3 {
		t.Errorf("Reused slice grew to %d sources.", len(positions))
	}

	m.Reset()
	if len(m.Cigars()) != 0 {
		t.Errorf("Cigars survived a reset.")
	}
}
