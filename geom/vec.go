/*package geom provides the small amount of vector geometry needed by the
smoke simulation: a 3-vector type, batched helpers over vector slices, and
an axis-aligned bounding box.
*/
package geom

import (
	"math"
)

// Vec is a point or direction in room coordinates. Units are feet. The
// component order is x (width), y (height), z (length): y is up.
type Vec [3]float64

func (v Vec) Add(u Vec) Vec {
	return Vec{v[0] + u[0], v[1] + u[1], v[2] + u[2]}
}

func (v Vec) Sub(u Vec) Vec {
	return Vec{v[0] - u[0], v[1] - u[1], v[2] - u[2]}
}

func (v Vec) Scale(s float64) Vec {
	return Vec{v[0] * s, v[1] * s, v[2] * s}
}

func (v Vec) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Distance returns the Euclidean distance between v and u.
func (v Vec) Distance(u Vec) float64 {
	dx, dy, dz := v[0]-u[0], v[1]-u[1], v[2]-u[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// CountWithin returns the number of vectors in xs within radius r of
// center. It is written over the raw components so the loop stays free of
// function calls and branches other than the comparison.
func CountWithin(xs []Vec, center Vec, r float64) int {
	r2 := r * r
	n := 0
	for i := range xs {
		dx := xs[i][0] - center[0]
		dy := xs[i][1] - center[1]
		dz := xs[i][2] - center[2]
		if dx*dx+dy*dy+dz*dz <= r2 {
			n++
		}
	}
	return n
}

// Bounds is an axis-aligned box [0, Span[0]]×[0, Span[1]]×[0, Span[2]].
// Room boxes are anchored at the origin, so only the spans are stored.
type Bounds struct {
	Span Vec
}

// Contains returns true if x lies inside the box, boundary included.
func (b *Bounds) Contains(x Vec) bool {
	for i := 0; i < 3; i++ {
		if x[i] < 0 || x[i] > b.Span[i] {
			return false
		}
	}
	return true
}

// Clamp returns x moved to the nearest point inside the box.
func (b *Bounds) Clamp(x Vec) Vec {
	for i := 0; i < 3; i++ {
		if x[i] < 0 {
			x[i] = 0
		} else if x[i] > b.Span[i] {
			x[i] = b.Span[i]
		}
	}
	return x
}

// Volume returns the box volume in cubic feet.
func (b *Bounds) Volume() float64 {
	return b.Span[0] * b.Span[1] * b.Span[2]
}
