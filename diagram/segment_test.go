package diagram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSegments(t *testing.T) {
	tests := []struct {
		name         string
		narrative    string
		wantTexts    []string
		wantRequests []string
	}{
		{
			name:         "text and one marker",
			narrative:    "Step 1. [DIAGRAM: free body diagram of a block with gravity and normal force] Step 2. Answer is 5 N.",
			wantTexts:    []string{"Step 1. ", " Step 2. Answer is 5 N."},
			wantRequests: []string{"free body diagram of a block with gravity and normal force"},
		},
		{
			name:      "unbalanced marker is literal text",
			narrative: "[DIAGRAM: test",
			wantTexts: []string{"[DIAGRAM: test"},
		},
		{
			name:      "no markers",
			narrative: "Just prose, with [brackets] and $x^2$.",
			wantTexts: []string{"Just prose, with [brackets] and $x^2$."},
		},
		{
			name:      "empty marker body stays in text",
			narrative: "a [DIAGRAM:] b",
			wantTexts: []string{"a [DIAGRAM:] b"},
		},
		{
			name:         "whitespace-only body is still a marker",
			narrative:    "a [DIAGRAM:   ] b",
			wantTexts:    []string{"a ", " b"},
			wantRequests: []string{""},
		},
		{
			name:         "markers at both ends emit no empty text",
			narrative:    "[DIAGRAM: one][DIAGRAM: two]",
			wantRequests: []string{"one", "two"},
		},
		{
			name:         "identical descriptions are separate requests",
			narrative:    "x [DIAGRAM: ramp] y [DIAGRAM: ramp] z",
			wantTexts:    []string{"x ", " y ", " z"},
			wantRequests: []string{"ramp", "ramp"},
		},
		{
			name:         "markers do not nest",
			narrative:    "[DIAGRAM: a [DIAGRAM: b] c]",
			wantTexts:    []string{" c]"},
			wantRequests: []string{"a [DIAGRAM: b"},
		},
		{
			name:      "opening token is case sensitive",
			narrative: "[diagram: x] and [Diagram: y]",
			wantTexts: []string{"[diagram: x] and [Diagram: y]"},
		},
		{
			name:         "well-formed marker then unbalanced opener",
			narrative:    "[DIAGRAM: ok] tail [DIAGRAM: never closed",
			wantTexts:    []string{" tail [DIAGRAM: never closed"},
			wantRequests: []string{"ok"},
		},
		{
			name:         "description is trimmed",
			narrative:    "[DIAGRAM:\n  box on table \t]",
			wantRequests: []string{"box on table"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments := ExtractSegments(tt.narrative)

			var texts, requests []string
			for _, s := range segments {
				if s.IsDiagram() {
					requests = append(requests, s.Description)
				} else {
					texts = append(texts, s.Content)
					assert.Equal(t, -1, s.Ordinal)
				}
			}
			assert.Equal(t, tt.wantTexts, texts)
			assert.Equal(t, tt.wantRequests, requests)
		})
	}
}

func TestExtractSegmentsOrdinalsFollowPosition(t *testing.T) {
	narrative := "a [DIAGRAM: first] b [DIAGRAM: second] c [DIAGRAM: third]"

	requests := DiagramRequests(ExtractSegments(narrative))

	require.Len(t, requests, 3)
	for i, r := range requests {
		assert.Equal(t, i, r.Ordinal)
	}
	assert.Equal(t, "second", requests[1].Description)
	assert.Equal(t, "[DIAGRAM: second]", requests[1].Content)
}

func TestStripMarkersReproducesNarrativeWithoutMarkers(t *testing.T) {
	markers := []string{
		"[DIAGRAM: free body diagram of a crate]",
		"[DIAGRAM: block on a 30° incline]",
		"[DIAGRAM: circuit]",
	}
	prose := []string{"", "Given: $m = 5$ kg. ", "\n\n## Diagram\n", " done [not a marker]", "°∑ unicode "}

	for n := 0; n <= len(markers); n++ {
		var full, stripped strings.Builder
		for i := 0; i <= n; i++ {
			p := prose[(i*2+n)%len(prose)]
			full.WriteString(p)
			stripped.WriteString(p)
			if i < n {
				full.WriteString(markers[i])
			}
		}

		segments := ExtractSegments(full.String())

		assert.Len(t, DiagramRequests(segments), n)
		assert.Equal(t, stripped.String(), StripMarkers(segments))
	}
}
