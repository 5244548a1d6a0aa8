package smoke

import (
	"math"

	"github.com/cigarlounge/smokesim/geom"
	"github.com/cigarlounge/smokesim/rand"
)

// Cigar is one smoker's cigar. Position is fixed to the seat; everything
// else is a timer. A burned-out cigar is immediately relit in place, so a
// slot never dies, it just resets.
type Cigar struct {
	ID       int
	Position geom.Vec

	Age      float64
	BurnTime float64

	Puffing          bool
	PuffTimer        float64
	PuffDuration     float64
	TimeSinceLast    float64
	NextPuffInterval float64

	p   *Params
	gen *rand.Generator
}

// NewCigar creates a cigar at the given seat. If stagger is true the cigar
// starts partway through its burn, drawn uniformly, so a room full of
// fresh cigars doesn't puff in lockstep.
func NewCigar(id int, pos geom.Vec, p *Params, gen *rand.Generator, stagger bool) *Cigar {
	c := &Cigar{
		ID:           id,
		Position:     pos,
		BurnTime:     p.BurnTime,
		PuffDuration: p.PuffDuration,
		p:            p,
		gen:          gen,
	}
	c.NextPuffInterval = c.drawPuffInterval()
	c.TimeSinceLast = gen.Uniform(0, p.PuffIntervalMin)
	if stagger {
		c.Age = gen.Uniform(0, p.BurnTime)
	}
	return c
}

func (c *Cigar) drawPuffInterval() float64 {
	return c.gen.Uniform(c.p.PuffIntervalMin, c.p.PuffIntervalMax)
}

// Update advances the burn and puff timers. When the cigar burns out it is
// relit: same seat, fresh timers.
func (c *Cigar) Update(dt float64) {
	c.Age += dt

	if c.Age >= c.BurnTime {
		c.Relight()
		return
	}

	if c.Puffing {
		c.PuffTimer += dt
		if c.PuffTimer >= c.PuffDuration {
			c.Puffing = false
			c.PuffTimer = 0
			c.TimeSinceLast = 0
			c.NextPuffInterval = c.drawPuffInterval()
		}
	} else {
		c.TimeSinceLast += dt
		if c.TimeSinceLast >= c.NextPuffInterval {
			c.Puffing = true
			c.PuffTimer = 0
		}
	}
}

// Relight resets the cigar in place.
func (c *Cigar) Relight() {
	c.Age = 0
	c.Puffing = false
	c.PuffTimer = 0
	c.TimeSinceLast = 0
	c.NextPuffInterval = c.drawPuffInterval()
}

// SmokeRate returns the current emission rate in particles per second:
// baseline between puffs, the puff rate during one, both decaying
// exponentially over the burn and floored so an old cigar still smokes.
func (c *Cigar) SmokeRate() float64 {
	progress := c.Age / c.BurnTime
	factor := math.Exp(-c.p.LifetimeDecay * progress)
	if factor < c.p.LifetimeFloor {
		factor = c.p.LifetimeFloor
	}

	if c.Puffing {
		return c.p.PuffRate * factor
	}
	return c.p.BaselineRate * factor
}

// CigarManager owns one cigar per smoker. Changing the smoker count
// discards the old cigars and builds a fresh set.
type CigarManager struct {
	cigars []*Cigar
	nextID int

	p   *Params
	gen *rand.Generator
}

func NewCigarManager(p *Params, gen *rand.Generator) *CigarManager {
	return &CigarManager{p: p, gen: gen}
}

// SetSmokers sizes the cigar list to the given seat layout.
func (m *CigarManager) SetSmokers(seats []geom.Vec) {
	m.cigars = make([]*Cigar, len(seats))
	for i, seat := range seats {
		m.cigars[i] = NewCigar(m.nextID, seat, m.p, m.gen, true)
		m.nextID++
	}
}

// Update advances every cigar.
func (m *CigarManager) Update(dt float64) {
	for _, c := range m.cigars {
		c.Update(dt)
	}
}

// Sources appends each cigar's position and current emission rate to the
// given slices and returns them. Passing the previous tick's slices avoids
// reallocating every tick.
func (m *CigarManager) Sources(positions []geom.Vec, rates []float64) ([]geom.Vec, []float64) {
	positions, rates = positions[:0], rates[:0]
	for _, c := range m.cigars {
		positions = append(positions, c.Position)
		rates = append(rates, c.SmokeRate())
	}
	return positions, rates
}

// Cigars exposes the slot list, for status reporting.
func (m *CigarManager) Cigars() []*Cigar {
	return m.cigars
}

// Reset discards all cigars.
func (m *CigarManager) Reset() {
	m.cigars = nil
	m.nextID = 0
}
