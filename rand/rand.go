/*package rand supplies the random draws used by the simulation. It vendors
a small xorshift generator instead of wrapping math/rand so that a
simulation seeded by hand replays exactly, independent of anything else in
the process pulling from a shared source.
*/
package rand

import (
	"math"
	"time"
)

type GeneratorType int

const (
	Xorshift GeneratorType = iota
)

type Generator struct {
	state uint64

	// Box-Muller produces pairs; the spare draw is cached here.
	gaussValid bool
	gauss      float64
}

// New creates a seeded Generator. A zero seed is remapped, since the
// xorshift state must never be zero.
func New(gt GeneratorType, seed uint64) *Generator {
	_ = gt // Only Xorshift is implemented.
	if seed == 0 {
		seed = 0x9e3779b97f4a7c15
	}
	return &Generator{state: seed}
}

// NewTimeSeed creates a Generator seeded from the wall clock.
func NewTimeSeed(gt GeneratorType) *Generator {
	return New(gt, uint64(time.Now().UnixNano()))
}

func (g *Generator) next() uint64 {
	// xorshift64* (Vigna 2014).
	x := g.state
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	g.state = x
	return x * 0x2545f4914f6cdd1d
}

// Uniform returns a draw from [low, high).
func (g *Generator) Uniform(low, high float64) float64 {
	u := float64(g.next()>>11) / (1 << 53)
	return low + u*(high-low)
}

// Gaussian returns a draw from the normal distribution with the given mean
// and standard deviation.
func (g *Generator) Gaussian(mu, sigma float64) float64 {
	if g.gaussValid {
		g.gaussValid = false
		return mu + sigma*g.gauss
	}

	var u, v, s float64
	for {
		u = g.Uniform(-1, 1)
		v = g.Uniform(-1, 1)
		s = u*u + v*v
		if s > 0 && s < 1 {
			break
		}
	}

	f := math.Sqrt(-2 * math.Log(s) / s)
	g.gauss = v * f
	g.gaussValid = true
	return mu + sigma*u*f
}

// UniformSlice fills buf with draws from [low, high).
func (g *Generator) UniformSlice(low, high float64, buf []float64) {
	for i := range buf {
		buf[i] = g.Uniform(low, high)
	}
}

// GaussianSlice fills buf with normal draws.
func (g *Generator) GaussianSlice(mu, sigma float64, buf []float64) {
	for i := range buf {
		buf[i] = g.Gaussian(mu, sigma)
	}
}
