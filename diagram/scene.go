package diagram

import (
	"image/color"
	"math"
)

// Scene is a rendered diagram as vector elements in canvas pixels, origin at
// the top-left corner and y pointing down.
type Scene struct {
	Width    int
	Height   int
	Elements []Element
}

// Element is one drawable primitive of a Scene.
type Element interface {
	bounds() (lo, hi Vec)
	mapTo(t transform) Element
}

// Polygon is a closed, filled outline.
type Polygon struct {
	Points []Vec
	Fill   color.RGBA
	Stroke color.RGBA
	Width  float64
}

// Line is a straight stroke.
type Line struct {
	From, To Vec
	Stroke   color.RGBA
	Width    float64
}

// Arrow is a stroke from Tail to Tip with a head at Tip.
type Arrow struct {
	Tail, Tip Vec
	Color     color.RGBA
	Width     float64
}

// Arc is a circular arc swept from Start to End radians.
type Arc struct {
	Center     Vec
	Radius     float64
	Start, End float64
	Stroke     color.RGBA
	Width      float64
}

// Label is text centred on At. Size is in pixels and does not scale with the
// scene. The encoder shrinks the text below Size when it would not fit the
// canvas, or MaxWidth when that is set.
type Label struct {
	At       Vec
	Text     string
	Size     float64
	Color    color.RGBA
	Framed   bool
	MaxWidth float64
}

func (p Polygon) bounds() (Vec, Vec) { return spanOf(p.Points...) }
func (l Line) bounds() (Vec, Vec) { return spanOf(l.From, l.To) }
func (a Arrow) bounds() (Vec, Vec) { return spanOf(a.Tail, a.Tip) }
func (l Label) bounds() (Vec, Vec) { return l.At, l.At }

func (a Arc) bounds() (Vec, Vec) {
	pts := []Vec{a.Center}
	for i := 0; i <= 8; i++ {
		t := a.Start + (a.End-a.Start)*float64(i)/8
		pts = append(pts, a.Center.Add(Vec{math.Cos(t), math.Sin(t)}.Scale(a.Radius)))
	}
	return spanOf(pts...)
}

func (p Polygon) mapTo(t transform) Element {
	pts := make([]Vec, len(p.Points))
	for i, v := range p.Points {
		pts[i] = t.apply(v)
	}
	p.Points = pts
	return p
}

func (l Line) mapTo(t transform) Element {
	l.From, l.To = t.apply(l.From), t.apply(l.To)
	return l
}

func (a Arrow) mapTo(t transform) Element {
	a.Tail, a.Tip = t.apply(a.Tail), t.apply(a.Tip)
	return a
}

// Flipping y turns a counter-clockwise sweep into a clockwise one, so the
// angles are negated and swapped to keep Start < End.
func (a Arc) mapTo(t transform) Element {
	a.Center = t.apply(a.Center)
	a.Radius *= t.scale
	a.Start, a.End = -a.End, -a.Start
	return a
}

func (l Label) mapTo(t transform) Element {
	l.At = t.apply(l.At)
	return l
}

func spanOf(pts ...Vec) (lo, hi Vec) {
	lo = Vec{math.Inf(1), math.Inf(1)}
	hi = Vec{math.Inf(-1), math.Inf(-1)}
	for _, p := range pts {
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	return lo, hi
}

// transform maps world units (y up) onto canvas pixels (y down).
type transform struct {
	scale  float64
	offset Vec
	height float64
}

func (t transform) apply(v Vec) Vec {
	return Vec{v.X*t.scale + t.offset.X, t.height - (v.Y*t.scale + t.offset.Y)}
}

// fit scales world elements uniformly so their bounds fill the box
// [left, right] x [top, bottom] of a canvas of the given height, centred.
func fit(elems []Element, left, top, right, bottom, height float64) []Element {
	lo := Vec{math.Inf(1), math.Inf(1)}
	hi := Vec{math.Inf(-1), math.Inf(-1)}
	for _, e := range elems {
		l, h := e.bounds()
		lo.X, lo.Y = math.Min(lo.X, l.X), math.Min(lo.Y, l.Y)
		hi.X, hi.Y = math.Max(hi.X, h.X), math.Max(hi.Y, h.Y)
	}
	w := math.Max(hi.X-lo.X, 1e-6)
	h := math.Max(hi.Y-lo.Y, 1e-6)
	scale := math.Min((right-left)/w, (bottom-top)/h)

	// centre the content in the box; offsets are in y-up canvas units
	cx := left + ((right-left)-w*scale)/2
	cy := (height - bottom) + ((bottom-top)-h*scale)/2
	t := transform{
		scale:  scale,
		offset: Vec{cx - lo.X*scale, cy - lo.Y*scale},
		height: height,
	}
	out := make([]Element, len(elems))
	for i, e := range elems {
		out[i] = e.mapTo(t)
	}
	return out
}
