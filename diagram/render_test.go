package diagram

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countElements[T Element](scene *Scene) int {
	n := 0
	for _, e := range scene.Elements {
		if _, ok := e.(T); ok {
			n++
		}
	}
	return n
}

func arrows(scene *Scene) []Arrow {
	var out []Arrow
	for _, e := range scene.Elements {
		if a, ok := e.(Arrow); ok {
			out = append(out, a)
		}
	}
	return out
}

func assertInsideCanvas(t *testing.T, scene *Scene) {
	t.Helper()
	for i, e := range scene.Elements {
		lo, hi := e.bounds()
		assert.GreaterOrEqual(t, lo.X, 0.0, "element %d (%T) left of canvas", i, e)
		assert.GreaterOrEqual(t, lo.Y, 0.0, "element %d (%T) above canvas", i, e)
		assert.LessOrEqual(t, hi.X, float64(scene.Width), "element %d (%T) right of canvas", i, e)
		assert.LessOrEqual(t, hi.Y, float64(scene.Height), "element %d (%T) below canvas", i, e)
	}
}

func TestRenderFreeBody(t *testing.T) {
	spec := Interpret("free body diagram of a block with gravity and normal force")

	scene, err := Render(spec, DefaultRenderOptions())
	require.NoError(t, err)

	assert.Equal(t, 800, scene.Width)
	assert.Equal(t, 600, scene.Height)
	// body, two force arrows plus labels, body label, axes glyph, title
	assert.Len(t, scene.Elements, 11)
	assert.Equal(t, 2+2, countElements[Arrow](scene))
	assertInsideCanvas(t, scene)
}

func TestRenderArrowsStartOutsideBody(t *testing.T) {
	spec := DiagramSpec{
		Kind:      KindFreeBody,
		BodyLabel: "m",
		Forces: []Force{
			{Label: "gravity", Symbol: "mg", Direction: Down, RelativeMagnitude: 1},
			{Label: "normal", Symbol: "N", Direction: Up, RelativeMagnitude: 1},
			{Label: "tension", Symbol: "T", Direction: Vec{1, 1}, RelativeMagnitude: 2},
			{Label: "applied", Symbol: "F", Direction: Right, RelativeMagnitude: 1},
			{Label: "drag", Symbol: "D", Direction: Right, RelativeMagnitude: 1},
		},
	}

	scene, err := Render(spec, DefaultRenderOptions())
	require.NoError(t, err)

	body, ok := scene.Elements[0].(Polygon)
	require.True(t, ok)
	lo, hi := body.bounds()
	const eps = 1e-6
	for _, a := range arrows(scene)[:len(spec.Forces)] {
		inside := a.Tail.X > lo.X+eps && a.Tail.X < hi.X-eps && a.Tail.Y > lo.Y+eps && a.Tail.Y < hi.Y-eps
		assert.False(t, inside, "arrow tail %v inside body %v-%v", a.Tail, lo, hi)
	}

	// applied and drag share a direction and are stepped apart
	applied, drag := arrows(scene)[3], arrows(scene)[4]
	assert.NotEqual(t, applied.Tail, drag.Tail)
}

func TestRenderManyForcesStayInBounds(t *testing.T) {
	spec := DiagramSpec{Kind: KindFreeBody, BodyLabel: "m"}
	for i := 0; i < 16; i++ {
		angle := float64(i) * math.Pi / 8
		spec.Forces = append(spec.Forces, Force{
			Label:             fmt.Sprintf("f%d", i),
			Symbol:            fmt.Sprintf("F%d", i),
			Direction:         Vec{math.Cos(angle), math.Sin(angle)},
			RelativeMagnitude: float64(i + 1),
		})
	}

	scene, err := Render(spec, DefaultRenderOptions())
	require.NoError(t, err)

	assert.Equal(t, 16+2, countElements[Arrow](scene))
	assertInsideCanvas(t, scene)
}

func TestForceArrowLengths(t *testing.T) {
	t.Run("clamped to the visual range", func(t *testing.T) {
		elems := forceArrows([]Force{
			{Label: "gravity", Direction: Down, RelativeMagnitude: 1},
			{Label: "normal", Direction: Up, RelativeMagnitude: 100},
		}, Vec{}, 0)

		small := elems[0].(Arrow)
		large := elems[2].(Arrow)
		assert.InDelta(t, arrowMin, small.Tip.Sub(small.Tail).Len(), 1e-9)
		assert.InDelta(t, arrowMax, large.Tip.Sub(large.Tail).Len(), 1e-9)
	})

	t.Run("shrink when crowded", func(t *testing.T) {
		var forces []Force
		for i := 0; i < 8; i++ {
			forces = append(forces, Force{Direction: Vec{math.Cos(float64(i)), math.Sin(float64(i))}, RelativeMagnitude: 1})
		}

		elems := forceArrows(forces, Vec{}, 0)

		for i := 0; i < len(elems); i += 2 {
			a := elems[i].(Arrow)
			assert.InDelta(t, arrowMax*0.5, a.Tip.Sub(a.Tail).Len(), 1e-9)
		}
	})

	t.Run("unusable magnitudes count as one", func(t *testing.T) {
		elems := forceArrows([]Force{
			{Direction: Down, RelativeMagnitude: math.NaN()},
			{Direction: Up, RelativeMagnitude: -3},
		}, Vec{}, 0)

		for i := 0; i < len(elems); i += 2 {
			a := elems[i].(Arrow)
			assert.InDelta(t, arrowMax, a.Tip.Sub(a.Tail).Len(), 1e-9)
		}
	})
}

func TestRenderInclinedPlane(t *testing.T) {
	spec := Interpret("a block on a 30° incline with gravity, normal force and friction")

	scene, err := Render(spec, DefaultRenderOptions())
	require.NoError(t, err)

	var arc *Arc
	for _, e := range scene.Elements {
		if a, ok := e.(Arc); ok {
			arc = &a
		}
	}
	require.NotNil(t, arc)
	assert.InDelta(t, math.Pi/6, arc.End-arc.Start, 1e-9)

	// ramp and body
	assert.Equal(t, 2, countElements[Polygon](scene))
	assert.Equal(t, 3+2, countElements[Arrow](scene))
	assertInsideCanvas(t, scene)

	var titles []string
	for _, e := range scene.Elements {
		if l, ok := e.(Label); ok {
			titles = append(titles, l.Text)
		}
	}
	assert.Contains(t, titles, "Inclined Plane (30°)")
	assert.Contains(t, titles, "30°")
}

func TestRenderInclinedPlaneNormalIsPerpendicular(t *testing.T) {
	spec := DiagramSpec{
		Kind:         KindInclinedPlane,
		BodyLabel:    "block",
		AngleDegrees: ptr(40),
		Forces:       []Force{{Label: "normal", Symbol: "N", Direction: Up, Frame: FrameSurface, RelativeMagnitude: 1}},
	}

	elems := inclineElements(spec)

	var ramp Polygon
	var normal Arrow
	for _, e := range elems {
		switch e := e.(type) {
		case Polygon:
			if len(e.Points) == 3 {
				ramp = e
			}
		case Arrow:
			normal = e
		}
	}
	surface := ramp.Points[1].Sub(ramp.Points[0])
	assert.InDelta(t, 0, surface.Unit().Dot(normal.Tip.Sub(normal.Tail).Unit()), 1e-9)
}

func TestRenderGenericIgnoresForces(t *testing.T) {
	spec := DiagramSpec{
		Kind:      KindGeneric,
		BodyLabel: "an energy bar chart for the spring and the block at three instants",
		Forces:    []Force{{Label: "gravity", Direction: Down, RelativeMagnitude: 1}},
	}

	scene, err := Render(spec, DefaultRenderOptions())
	require.NoError(t, err)

	assert.Zero(t, countElements[Arrow](scene))
	assert.Equal(t, 1, countElements[Polygon](scene))
	// title plus two wrapped lines
	assert.Equal(t, 3, countElements[Label](scene))
	assertInsideCanvas(t, scene)
}

func TestRenderIsDeterministic(t *testing.T) {
	for _, description := range []string{
		"free body diagram of a crate with friction, tension and gravity",
		"block on a 35° ramp with normal force",
		"energy diagram",
	} {
		spec := Interpret(description)

		first, err := Render(spec, DefaultRenderOptions())
		require.NoError(t, err)
		second, err := Render(spec, DefaultRenderOptions())
		require.NoError(t, err)

		assert.Equal(t, first, second, description)
	}
}

func TestRenderRejectsBadCanvas(t *testing.T) {
	for _, opts := range []RenderOptions{
		{Width: 0, Height: 600},
		{Width: 800, Height: 800},
		{Width: 8000, Height: 6000},
	} {
		_, err := Render(Interpret("free body diagram"), opts)
		assert.ErrorIs(t, err, ErrRenderFailure)
	}
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{"one two", "three"}, wrapText("one two three", 8))
	assert.Nil(t, wrapText("   ", 8))
	assert.Equal(t, []string{"unbr", "eaka", "blew", "ord"}, wrapText("unbreakableword", 4))
	assert.Equal(t, []string{"ab", "cdef", "gh", "ij"}, wrapText("ab cdefgh ij", 4))
}

func TestRenderGenericBreaksLongTokens(t *testing.T) {
	scene, err := Render(Interpret(strings.Repeat("x", 110)), DefaultRenderOptions())
	require.NoError(t, err)

	var lines []string
	for _, e := range scene.Elements {
		if l, ok := e.(Label); ok && l.MaxWidth > 0 {
			lines = append(lines, l.Text)
		}
	}
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.LessOrEqual(t, utf8.RuneCountInString(line), wrapColumns)
	}
	assert.Equal(t, strings.Repeat("x", 110), strings.Join(lines, ""))
}
