package diagram

import "strings"

const (
	// MarkerOpen and MarkerClose delimit a diagram request in narrative text.
	MarkerOpen  = "[DIAGRAM:"
	MarkerClose = "]"
)

// SegmentKind tags a Segment as prose or a diagram request.
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentDiagram
)

// Segment is either a run of narrative text or one diagram request.
// Ordinal counts diagram requests from zero and is -1 on text segments.
type Segment struct {
	Kind        SegmentKind
	Content     string
	Description string
	Ordinal     int
}

// IsDiagram reports whether the segment is a diagram request.
func (s Segment) IsDiagram() bool {
	return s.Kind == SegmentDiagram
}

// ExtractSegments splits narrative into text and diagram-request segments in
// left-to-right order. A marker opens with MarkerOpen and closes at the next
// MarkerClose; markers do not nest and an opener with no closer, or with
// nothing between the delimiters, stays in the text as written. Empty text
// runs between adjacent markers are not emitted.
func ExtractSegments(narrative string) []Segment {
	var (
		segments []Segment
		text     strings.Builder
		ordinal  int
	)
	flush := func() {
		if text.Len() > 0 {
			segments = append(segments, Segment{Kind: SegmentText, Content: text.String(), Ordinal: -1})
			text.Reset()
		}
	}

	rest := narrative
	for len(rest) > 0 {
		// outside a marker
		open := strings.Index(rest, MarkerOpen)
		if open < 0 {
			text.WriteString(rest)
			break
		}
		text.WriteString(rest[:open])
		rest = rest[open:]

		// inside a marker
		body := rest[len(MarkerOpen):]
		end := strings.Index(body, MarkerClose)
		if end < 0 {
			text.WriteString(rest)
			break
		}
		if end == 0 {
			text.WriteString(MarkerOpen)
			rest = body
			continue
		}

		flush()
		segments = append(segments, Segment{
			Kind:        SegmentDiagram,
			Content:     rest[:len(MarkerOpen)+end+len(MarkerClose)],
			Description: strings.TrimSpace(body[:end]),
			Ordinal:     ordinal,
		})
		ordinal++
		rest = body[end+len(MarkerClose):]
	}
	flush()
	return segments
}

// DiagramRequests returns only the diagram-request segments, in ordinal order.
func DiagramRequests(segments []Segment) []Segment {
	var out []Segment
	for _, s := range segments {
		if s.IsDiagram() {
			out = append(out, s)
		}
	}
	return out
}

// StripMarkers concatenates the text segments, which is the narrative with
// every recognised marker removed.
func StripMarkers(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		if !s.IsDiagram() {
			b.WriteString(s.Content)
		}
	}
	return b.String()
}
