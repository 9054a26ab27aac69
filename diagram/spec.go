package diagram

import "math"

// Kind is the interpreted diagram subtype.
type Kind int

const (
	KindGeneric Kind = iota
	KindFreeBody
	KindInclinedPlane
)

func (k Kind) String() string {
	switch k {
	case KindFreeBody:
		return "free_body"
	case KindInclinedPlane:
		return "inclined_plane"
	default:
		return "generic"
	}
}

// MarshalText lets Kind appear as its name in JSON responses.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Frame says which axes a force direction is expressed in. Surface directions
// use x along the surface (positive up the slope) and y along the outward
// surface normal; on a horizontal surface the two frames coincide.
type Frame int

const (
	FrameWorld Frame = iota
	FrameSurface
)

func (f Frame) MarshalText() ([]byte, error) {
	if f == FrameSurface {
		return []byte("surface"), nil
	}
	return []byte("world"), nil
}

// Vec is a 2D vector in world units, y pointing up.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }
func (v Vec) Perp() Vec { return Vec{-v.Y, v.X} }
func (v Vec) Dot(o Vec) float64 { return v.X*o.X + v.Y*o.Y }
func (v Vec) Neg() Vec { return Vec{-v.X, -v.Y} }
func (v Vec) Rotate(rad float64) Vec {
	s, c := math.Sincos(rad)
	return Vec{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// Unit returns v scaled to length 1. Zero and non-finite vectors map to +x.
func (v Vec) Unit() Vec {
	l := v.Len()
	if !(l > 1e-12) || math.IsInf(l, 0) {
		return Vec{1, 0}
	}
	return Vec{v.X / l, v.Y / l}
}

var (
	Up    = Vec{0, 1}
	Down  = Vec{0, -1}
	Left  = Vec{-1, 0}
	Right = Vec{1, 0}
)

// Force is one arrow in a diagram. RelativeMagnitude only scales the arrow;
// nothing checks that the forces balance.
type Force struct {
	Label             string  `json:"label"`
	Symbol            string  `json:"symbol"`
	Direction         Vec     `json:"direction"`
	Frame             Frame   `json:"frame"`
	RelativeMagnitude float64 `json:"relative_magnitude"`
}

// DiagramSpec is the interpreted form of one diagram request.
type DiagramSpec struct {
	Kind         Kind     `json:"kind"`
	BodyLabel    string   `json:"body_label"`
	Forces       []Force  `json:"forces"`
	AngleDegrees *float64 `json:"angle_degrees,omitempty"`
	SurfaceLabel *string  `json:"surface_label,omitempty"`
}

// Degraded reports whether the description matched no known vocabulary.
func (s DiagramSpec) Degraded() bool {
	return s.Kind == KindGeneric
}

// Angle returns the incline angle to draw, falling back to DefaultInclineAngle.
func (s DiagramSpec) Angle() float64 {
	if s.AngleDegrees == nil {
		return DefaultInclineAngle
	}
	return *s.AngleDegrees
}

// ForceLabels returns the force labels in order.
func (s DiagramSpec) ForceLabels() []string {
	labels := make([]string, len(s.Forces))
	for i, f := range s.Forces {
		labels[i] = f.Label
	}
	return labels
}
