package smoke

import (
	"math"

	"github.com/cigarlounge/smokesim/geom"
	"github.com/cigarlounge/smokesim/rand"
)

// Room is the static lounge geometry. It is immutable after construction
// except for the cached seat layout from the last GenerateSmokerPositions
// call.
type Room struct {
	Width, Length, Height float64
	Bounds                geom.Bounds

	smokerPositions []geom.Vec
}

func NewRoom(p *Params) *Room {
	return &Room{
		Width:  p.RoomWidth,
		Length: p.RoomLength,
		Height: p.RoomHeight,
		Bounds: geom.Bounds{Span: geom.Vec{p.RoomWidth, p.RoomHeight, p.RoomLength}},
	}
}

// Volume returns the room volume in cubic feet.
func (r *Room) Volume() float64 {
	return r.Width * r.Length * r.Height
}

// GenerateSmokerPositions lays out n seats on a jittered grid at the given
// height, keeping clear of the walls and the fan wall. The layout is
// cached and returned.
func (r *Room) GenerateSmokerPositions(n int, height float64, gen *rand.Generator) []geom.Vec {
	const (
		marginX = 3.0 // clearance from the x walls
		marginZ = 5.0 // clearance from the z walls (fan side included)
	)

	if n <= 0 {
		r.smokerPositions = nil
		return nil
	}

	cols := int(math.Sqrt(float64(n) * r.Width / r.Length))
	if cols < 1 {
		cols = 1
	}
	rows := (n + cols - 1) / cols

	spacingX := (r.Width - 2*marginX) / float64(cols+1)
	spacingZ := (r.Length - 2*marginZ) / float64(rows+1)

	positions := make([]geom.Vec, 0, n)
	for row := 0; row < rows && len(positions) < n; row++ {
		for col := 0; col < cols && len(positions) < n; col++ {
			x := marginX + float64(col+1)*spacingX +
				gen.Uniform(-spacingX/3, spacingX/3)
			z := marginZ + float64(row+1)*spacingZ +
				gen.Uniform(-spacingZ/3, spacingZ/3)

			x = clamp(x, marginX, r.Width-marginX)
			z = clamp(z, marginZ, r.Length-marginZ)

			positions = append(positions, geom.Vec{x, height, z})
		}
	}

	r.smokerPositions = positions
	return positions
}

// SmokerPositions returns the cached seat layout.
func (r *Room) SmokerPositions() []geom.Vec {
	return r.smokerPositions
}
