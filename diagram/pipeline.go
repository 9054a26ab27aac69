package diagram

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// Diagram is the outcome for one diagram request. Image is nil when the
// render or encode step failed; Err then says why.
type Diagram struct {
	Ordinal     int
	Description string
	Spec        DiagramSpec
	Image       *RenderedImage
	Err         error
}

// Result is a processed narrative. Diagrams has one entry per recognised
// marker, indexed by ordinal.
type Result struct {
	Narrative string
	Segments  []Segment
	Diagrams  []Diagram
}

// Images returns one entry per marker in ordinal order, nil where the
// diagram failed, so callers can align by position.
func (r *Result) Images() []*RenderedImage {
	out := make([]*RenderedImage, len(r.Diagrams))
	for i, d := range r.Diagrams {
		out[i] = d.Image
	}
	return out
}

// Failed counts diagrams without an image.
func (r *Result) Failed() int {
	n := 0
	for _, d := range r.Diagrams {
		if d.Image == nil {
			n++
		}
	}
	return n
}

// Pipeline turns narrative text into text segments plus encoded diagrams.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	log    *logrus.Entry
	opts   RenderOptions
	encode func(*Scene) (*RenderedImage, error)
}

// NewPipeline builds a Pipeline. A nil log discards output.
func NewPipeline(log *logrus.Entry, opts RenderOptions) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("render options: %w", err)
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	return &Pipeline{log: log.WithField("component", "pipeline"), opts: opts, encode: Encode}, nil
}

// Process extracts the markers from narrative and renders each diagram in
// marker order. Only invalid input is an error; a diagram that fails is
// logged and left without an image.
func (p *Pipeline) Process(narrative string) (*Result, error) {
	if !utf8.ValidString(narrative) {
		return nil, fmt.Errorf("%w: narrative is not valid UTF-8", ErrInvalidInput)
	}

	segments := ExtractSegments(narrative)
	requests := DiagramRequests(segments)
	result := &Result{Narrative: narrative, Segments: segments, Diagrams: make([]Diagram, 0, len(requests))}

	for _, req := range requests {
		result.Diagrams = append(result.Diagrams, p.renderOne(req))
	}

	p.log.WithFields(logrus.Fields{
		"segments": len(segments),
		"diagrams": len(requests),
		"failed":   result.Failed(),
	}).Info("PIPELINE: narrative processed")
	return result, nil
}

// RenderDescription interprets, renders and encodes a single description.
func (p *Pipeline) RenderDescription(description string) (DiagramSpec, *RenderedImage, error) {
	spec := Interpret(description)
	img, err := p.draw(spec)
	return spec, img, err
}

func (p *Pipeline) renderOne(req Segment) Diagram {
	d := Diagram{Ordinal: req.Ordinal, Description: req.Description, Spec: Interpret(req.Description)}
	entry := p.log.WithFields(logrus.Fields{"ordinal": req.Ordinal, "kind": d.Spec.Kind.String()})
	if d.Spec.Degraded() {
		entry.Debug("PIPELINE: description matched no diagram vocabulary, using placeholder")
	}

	img, err := p.draw(d.Spec)
	if err != nil {
		d.Err = &DiagramError{Ordinal: req.Ordinal, Stage: stageOf(err), Err: err}
		entry.WithError(err).WithField("stage", stageOf(err)).Warn("PIPELINE: diagram skipped")
		return d
	}
	d.Image = img
	return d
}

func (p *Pipeline) draw(spec DiagramSpec) (*RenderedImage, error) {
	scene, err := Render(spec, p.opts)
	if err != nil {
		return nil, err
	}
	img, err := p.encode(scene)
	if err != nil {
		if !errors.Is(err, ErrRenderFailure) && !errors.Is(err, ErrEncodeFailure) {
			err = fmt.Errorf("%w: %v", ErrEncodeFailure, err)
		}
		return nil, err
	}
	return img, nil
}
