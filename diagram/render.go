package diagram

import (
	"fmt"
	"image/color"
	"math"
	"strings"
	"unicode/utf8"
)

// Layout constants in world units unless noted.
const (
	bodyHalf      = 0.3
	arrowMax      = 1.6
	arrowMin      = 0.6
	crowdedAfter  = 4
	labelGap      = 0.3
	sideStep      = 0.12
	rampLength    = 5.0
	angleArc      = 0.9
	axesLength    = 0.5
	canvasMargin  = 56.0 // pixels
	titleBand     = 44.0 // pixels
	wrapColumns   = 48
	holderPad     = 12.0 // pixels
	maxCanvasSide = 4096
)

var (
	colorInk      = color.RGBA{0x1f, 0x1f, 0x1f, 0xff}
	colorBody     = color.RGBA{0xad, 0xd8, 0xe6, 0xff}
	colorRamp     = color.RGBA{0xd3, 0xd3, 0xd3, 0xff}
	colorGround   = color.RGBA{0x80, 0x80, 0x80, 0xff}
	colorHolder   = color.RGBA{0xf2, 0xf2, 0xf2, 0xff}
	colorFallback = color.RGBA{0x33, 0x33, 0x33, 0xff}
)

var forceColors = map[string]color.RGBA{
	"gravity":  {0xd6, 0x27, 0x28, 0xff},
	"normal":   {0x1f, 0x4e, 0xd8, 0xff},
	"friction": {0xff, 0x8c, 0x00, 0xff},
	"tension":  {0x2c, 0xa0, 0x2c, 0xff},
	"applied":  {0x80, 0x00, 0x80, 0xff},
	"drag":     {0x8b, 0x45, 0x13, 0xff},
}

// RenderOptions sizes the canvas. Width:Height must be 4:3.
type RenderOptions struct {
	Width  int
	Height int
}

// DefaultRenderOptions is an 800x600 canvas.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Width: 800, Height: 600}
}

// Validate checks the canvas fits the fixed aspect and the size limit.
func (o RenderOptions) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("canvas %dx%d: dimensions must be positive", o.Width, o.Height)
	}
	if o.Width > maxCanvasSide || o.Height > maxCanvasSide {
		return fmt.Errorf("canvas %dx%d: exceeds %d pixels per side", o.Width, o.Height, maxCanvasSide)
	}
	if o.Width*3 != o.Height*4 {
		return fmt.Errorf("canvas %dx%d: aspect must be 4:3", o.Width, o.Height)
	}
	return nil
}

// Render lays a DiagramSpec out as a Scene. The only failure is a canvas the
// options do not allow.
func Render(spec DiagramSpec, opts RenderOptions) (*Scene, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	w, h := float64(opts.Width), float64(opts.Height)

	var (
		world []Element
		title string
	)
	switch spec.Kind {
	case KindFreeBody:
		world, title = freeBodyElements(spec), "Free Body Diagram"
	case KindInclinedPlane:
		world = inclineElements(spec)
		title = fmt.Sprintf("Inclined Plane (%s°)", formatAngle(spec.Angle()))
	default:
		return &Scene{Width: opts.Width, Height: opts.Height, Elements: placeholderElements(spec, w, h)}, nil
	}

	world = append(world, axesElements(world)...)
	elems := fit(world, canvasMargin, canvasMargin+titleBand, w-canvasMargin, h-canvasMargin, h)
	elems = append(elems, Label{At: Vec{w / 2, canvasMargin/2 + 8}, Text: title, Size: 22, Color: colorInk})
	return &Scene{Width: opts.Width, Height: opts.Height, Elements: elems}, nil
}

func freeBodyElements(spec DiagramSpec) []Element {
	center := Vec{0, 0}
	elems := []Element{bodyBox(center, 0)}
	if spec.SurfaceLabel != nil {
		y := -bodyHalf
		elems = append(elems,
			Line{From: Vec{-arrowMax, y}, To: Vec{arrowMax, y}, Stroke: colorGround, Width: 2},
			Label{At: Vec{arrowMax, y - labelGap}, Text: *spec.SurfaceLabel, Size: 13, Color: colorGround},
		)
	}
	elems = append(elems, forceArrows(spec.Forces, center, 0)...)
	return append(elems, Label{At: center, Text: spec.BodyLabel, Size: 14, Color: colorInk})
}

func inclineElements(spec DiagramSpec) []Element {
	deg := spec.Angle()
	theta := deg * math.Pi / 180
	along := Vec{math.Cos(theta), math.Sin(theta)}
	normal := along.Perp()

	base := Vec{0, 0}
	top := along.Scale(rampLength)
	foot := Vec{top.X, 0}
	center := along.Scale(rampLength / 2).Add(normal.Scale(bodyHalf))

	elems := []Element{
		Polygon{Points: []Vec{base, top, foot}, Fill: colorRamp, Stroke: colorInk, Width: 2},
		Arc{Center: base, Radius: angleArc, Start: 0, End: theta, Stroke: colorInk, Width: 2},
		Label{At: Vec{math.Cos(theta / 2), math.Sin(theta / 2)}.Scale(angleArc + 0.4), Text: formatAngle(deg) + "°", Size: 14, Color: colorInk},
		bodyBox(center, theta),
	}
	if spec.SurfaceLabel != nil {
		at := along.Scale(rampLength * 0.8).Sub(normal.Scale(0.35))
		elems = append(elems, Label{At: at, Text: *spec.SurfaceLabel, Size: 13, Color: colorGround})
	}
	elems = append(elems, forceArrows(spec.Forces, center, theta)...)
	return append(elems, Label{At: center, Text: spec.BodyLabel, Size: 14, Color: colorInk})
}

// bodyBox is the body glyph: a square of side 2*bodyHalf rotated by theta.
func bodyBox(center Vec, theta float64) Polygon {
	corners := []Vec{{-bodyHalf, -bodyHalf}, {bodyHalf, -bodyHalf}, {bodyHalf, bodyHalf}, {-bodyHalf, bodyHalf}}
	pts := make([]Vec, len(corners))
	for i, c := range corners {
		pts[i] = center.Add(c.Rotate(theta))
	}
	return Polygon{Points: pts, Fill: colorBody, Stroke: colorInk, Width: 2}
}

// forceArrows draws each force outward from the body's edge. Lengths follow
// RelativeMagnitude against the largest force, clamped to [arrowMin,
// arrowMax], and shrink once more than crowdedAfter arrows are present.
// Arrows sharing a direction are stepped sideways so they stay apart.
func forceArrows(forces []Force, center Vec, theta float64) []Element {
	if len(forces) == 0 {
		return nil
	}
	largest := 0.0
	for _, f := range forces {
		largest = math.Max(largest, magnitude(f))
	}
	crowd := 1.0
	if len(forces) > crowdedAfter {
		crowd = math.Max(0.5, float64(crowdedAfter)/float64(len(forces)))
	}

	var (
		elems []Element
		drawn []Vec
	)
	for _, f := range forces {
		dir := f.Direction.Unit()
		if f.Frame == FrameSurface {
			dir = dir.Rotate(theta)
		}

		n := 0
		for _, d := range drawn {
			if d.Dot(dir) > 0.999 {
				n++
			}
		}
		drawn = append(drawn, dir)
		side := math.Min(sideStep*float64((n+1)/2), 0.8*bodyHalf)
		if n%2 == 0 {
			side = -side
		}
		origin := center.Add(dir.Perp().Scale(side))

		length := math.Min(arrowMax, math.Max(arrowMin, arrowMax*magnitude(f)/largest)) * crowd

		tail := origin.Add(dir.Scale(boxExit(origin.Sub(center), dir, theta)))
		tip := tail.Add(dir.Scale(length))
		c, ok := forceColors[f.Label]
		if !ok {
			c = colorFallback
		}
		elems = append(elems,
			Arrow{Tail: tail, Tip: tip, Color: c, Width: 3},
			Label{At: tip.Add(dir.Scale(labelGap)), Text: f.Symbol, Size: 16, Color: c, Framed: true},
		)
	}
	return elems
}

// magnitude treats a missing or unusable RelativeMagnitude as 1.
func magnitude(f Force) float64 {
	if !(f.RelativeMagnitude > 0) || math.IsInf(f.RelativeMagnitude, 1) {
		return 1
	}
	return f.RelativeMagnitude
}

// boxExit is the distance along dir from offset (relative to the body
// centre) to the edge of the body glyph rotated by theta.
func boxExit(offset, dir Vec, theta float64) float64 {
	p := offset.Rotate(-theta)
	d := dir.Rotate(-theta)
	t := math.Inf(1)
	for _, axis := range [][2]float64{{p.X, d.X}, {p.Y, d.Y}} {
		pos, step := axis[0], axis[1]
		if math.Abs(step) < 1e-9 {
			continue
		}
		edge := bodyHalf
		if step < 0 {
			edge = -bodyHalf
		}
		t = math.Min(t, (edge-pos)/step)
	}
	if math.IsInf(t, 1) || t < 0 {
		return 0
	}
	return t
}

// axesElements puts a small +x/+y glyph below and right of everything else.
func axesElements(world []Element) []Element {
	lo := Vec{math.Inf(1), math.Inf(1)}
	hi := Vec{math.Inf(-1), math.Inf(-1)}
	for _, e := range world {
		l, h := e.bounds()
		lo.X, lo.Y = math.Min(lo.X, l.X), math.Min(lo.Y, l.Y)
		hi.X, hi.Y = math.Max(hi.X, h.X), math.Max(hi.Y, h.Y)
	}
	o := Vec{hi.X + 0.4, lo.Y}
	return []Element{
		Arrow{Tail: o, Tip: o.Add(Right.Scale(axesLength)), Color: colorInk, Width: 1.5},
		Arrow{Tail: o, Tip: o.Add(Up.Scale(axesLength)), Color: colorInk, Width: 1.5},
		Label{At: o.Add(Right.Scale(axesLength + 0.25)), Text: "+x", Size: 12, Color: colorInk},
		Label{At: o.Add(Up.Scale(axesLength + 0.2)), Text: "+y", Size: 12, Color: colorInk},
	}
}

// placeholderElements lays out a Generic spec directly in canvas pixels: a
// neutral box holding the wrapped description. Forces are never drawn.
func placeholderElements(spec DiagramSpec, w, h float64) []Element {
	left, right := w*0.1, w*0.9
	top, bottom := h*0.18, h*0.85
	elems := []Element{
		Label{At: Vec{w / 2, canvasMargin/2 + 8}, Text: "Diagram", Size: 22, Color: colorInk},
		Polygon{Points: []Vec{{left, top}, {right, top}, {right, bottom}, {left, bottom}}, Fill: colorHolder, Stroke: colorGround, Width: 2},
	}
	lines := wrapText(spec.BodyLabel, wrapColumns)
	lineHeight := 24.0
	y := (top+bottom)/2 - lineHeight*float64(len(lines)-1)/2
	for _, line := range lines {
		elems = append(elems, Label{At: Vec{w / 2, y}, Text: line, Size: 16, Color: colorInk, MaxWidth: right - left - 2*holderPad})
		y += lineHeight
	}
	return elems
}

// wrapText fills lines of at most columns runes. Words longer than a line
// are split across lines.
func wrapText(s string, columns int) []string {
	var (
		lines []string
		cur   strings.Builder
	)
	columns = max(columns, 1)
	for _, word := range strings.Fields(s) {
		for r := []rune(word); len(r) > columns; r = []rune(word) {
			if cur.Len() > 0 {
				lines = append(lines, cur.String())
				cur.Reset()
			}
			lines = append(lines, string(r[:columns]))
			word = string(r[columns:])
		}
		if cur.Len() > 0 && utf8.RuneCountInString(cur.String())+1+utf8.RuneCountInString(word) > columns {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

func formatAngle(deg float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", deg), "0"), ".")
}
