package diagram

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// MIMETypePNG tags every RenderedImage the encoder produces.
const MIMETypePNG = "image/png"

const (
	arrowHead    = 14.0 // pixels
	labelPad     = 4.0
	minLabelSize = 6.0
)

// RenderedImage is an encoded raster ready for a data URI.
type RenderedImage struct {
	MIMEType string
	// Data is the base-64 (standard alphabet) image bytes.
	Data string
}

// DataURI returns the image as a data: URI.
func (r *RenderedImage) DataURI() string {
	return "data:" + r.MIMEType + ";base64," + r.Data
}

// Decoded returns the raw image bytes.
func (r *RenderedImage) Decoded() ([]byte, error) {
	return base64.StdEncoding.DecodeString(r.Data)
}

// The parsed font is read-only and shared; faces, which cache glyphs, are
// created per canvas.
var (
	fontOnce sync.Once
	labelTTF *truetype.Font
	fontErr  error
)

func labelFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		labelTTF, fontErr = truetype.Parse(goregular.TTF)
	})
	return labelTTF, fontErr
}

// canvas is the drawing resource for one Encode call. Nothing on it outlives
// release.
type canvas struct {
	dc    *gg.Context
	ttf   *truetype.Font
	faces map[float64]font.Face
}

func acquireCanvas(width, height int) (*canvas, error) {
	if width <= 0 || height <= 0 || width > maxCanvasSide || height > maxCanvasSide {
		return nil, fmt.Errorf("canvas %dx%d out of range", width, height)
	}
	ttf, err := labelFont()
	if err != nil {
		return nil, fmt.Errorf("load label font: %w", err)
	}
	return &canvas{dc: gg.NewContext(width, height), ttf: ttf, faces: make(map[float64]font.Face)}, nil
}

func (c *canvas) release() {
	for _, f := range c.faces {
		f.Close()
	}
	c.faces = nil
	c.dc = nil
}

func (c *canvas) face(size float64) font.Face {
	if f, ok := c.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(c.ttf, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	c.faces[size] = f
	return f
}

// Encode rasterises a Scene to PNG and base-64 encodes it. The canvas is
// released before Encode returns, whatever the outcome. Drawing failures wrap
// ErrRenderFailure; serialisation failures wrap ErrEncodeFailure.
func Encode(scene *Scene) (*RenderedImage, error) {
	if scene == nil {
		return nil, fmt.Errorf("%w: nil scene", ErrRenderFailure)
	}
	c, err := acquireCanvas(scene.Width, scene.Height)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	defer c.release()

	if err := c.paint(scene); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}

	var buf bytes.Buffer
	if err := c.dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailure, err)
	}
	return &RenderedImage{MIMEType: MIMETypePNG, Data: base64.StdEncoding.EncodeToString(buf.Bytes())}, nil
}

func (c *canvas) paint(scene *Scene) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("graphics backend: %v", r)
		}
	}()

	dc := c.dc
	dc.SetColor(color.White)
	dc.Clear()
	for _, e := range scene.Elements {
		switch e := e.(type) {
		case Polygon:
			if len(e.Points) == 0 {
				continue
			}
			dc.NewSubPath()
			for _, p := range e.Points {
				dc.LineTo(p.X, p.Y)
			}
			dc.ClosePath()
			dc.SetColor(e.Fill)
			dc.FillPreserve()
			dc.SetColor(e.Stroke)
			dc.SetLineWidth(e.Width)
			dc.Stroke()
		case Line:
			dc.SetColor(e.Stroke)
			dc.SetLineWidth(e.Width)
			dc.DrawLine(e.From.X, e.From.Y, e.To.X, e.To.Y)
			dc.Stroke()
		case Arrow:
			c.drawArrow(e)
		case Arc:
			dc.NewSubPath()
			dc.DrawArc(e.Center.X, e.Center.Y, e.Radius, e.Start, e.End)
			dc.SetColor(e.Stroke)
			dc.SetLineWidth(e.Width)
			dc.Stroke()
		case Label:
			c.drawLabel(e)
		default:
			return fmt.Errorf("unknown scene element %T", e)
		}
	}
	return nil
}

func (c *canvas) drawArrow(a Arrow) {
	dc := c.dc
	shaft := a.Tip.Sub(a.Tail)
	if shaft.Len() < 1e-9 {
		return
	}
	dir := shaft.Unit()
	head := math.Min(arrowHead, shaft.Len()*0.5)
	neck := a.Tip.Sub(dir.Scale(head))
	wing := dir.Perp().Scale(head * 0.45)

	dc.SetColor(a.Color)
	dc.SetLineWidth(a.Width)
	dc.DrawLine(a.Tail.X, a.Tail.Y, neck.X, neck.Y)
	dc.Stroke()

	dc.NewSubPath()
	dc.MoveTo(a.Tip.X, a.Tip.Y)
	dc.LineTo(neck.X+wing.X, neck.Y+wing.Y)
	dc.LineTo(neck.X-wing.X, neck.Y-wing.Y)
	dc.ClosePath()
	dc.Fill()
}

// fitLabel sets the largest face, no bigger than l.Size, at which l.Text
// stays inside the canvas and within l.MaxWidth. It returns the text extent.
func (c *canvas) fitLabel(l Label) (w, h float64) {
	dc := c.dc
	limit := 2 * math.Min(l.At.X, float64(dc.Width())-l.At.X)
	if l.MaxWidth > 0 {
		limit = math.Min(limit, l.MaxWidth)
	}
	if l.Framed {
		limit -= 2 * labelPad
	}

	size := l.Size
	for {
		dc.SetFontFace(c.face(size))
		w, h = dc.MeasureString(l.Text)
		if w <= limit || size <= minLabelSize {
			return w, h
		}
		size = math.Max(minLabelSize, math.Floor(size*limit/w))
	}
}

func (c *canvas) drawLabel(l Label) {
	if l.Text == "" {
		return
	}
	dc := c.dc
	w, h := c.fitLabel(l)
	if l.Framed {
		dc.SetColor(color.RGBA{0xff, 0xff, 0xff, 0xd0})
		dc.DrawRoundedRectangle(l.At.X-w/2-labelPad, l.At.Y-h/2-labelPad, w+2*labelPad, h+2*labelPad, 4)
		dc.Fill()
	}
	dc.SetColor(l.Color)
	dc.DrawStringAnchored(l.Text, l.At.X, l.At.Y, 0.5, 0.35)
}
