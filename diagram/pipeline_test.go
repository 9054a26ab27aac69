package diagram

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T) (*Pipeline, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	p, err := NewPipeline(logrus.NewEntry(logger), DefaultRenderOptions())
	require.NoError(t, err)
	return p, hook
}

func TestProcessFreeBodyNarrative(t *testing.T) {
	p, _ := newTestPipeline(t)
	narrative := "Step 1. [DIAGRAM: free body diagram of a block with gravity and normal force] Step 2. Answer is 5 N."

	result, err := p.Process(narrative)
	require.NoError(t, err)

	var texts []string
	for _, s := range result.Segments {
		if !s.IsDiagram() {
			texts = append(texts, s.Content)
		}
	}
	assert.Equal(t, []string{"Step 1. ", " Step 2. Answer is 5 N."}, texts)

	require.Len(t, result.Diagrams, 1)
	d := result.Diagrams[0]
	assert.Equal(t, 0, d.Ordinal)
	assert.Equal(t, KindFreeBody, d.Spec.Kind)
	assert.ElementsMatch(t, []string{"gravity", "normal"}, d.Spec.ForceLabels())
	require.NotNil(t, d.Image)
	assert.NoError(t, d.Err)
	assert.Equal(t, MIMETypePNG, d.Image.MIMEType)
	assert.Equal(t, narrative, result.Narrative)
}

func TestProcessUnbalancedMarker(t *testing.T) {
	p, _ := newTestPipeline(t)

	result, err := p.Process("[DIAGRAM: test")
	require.NoError(t, err)

	require.Len(t, result.Segments, 1)
	assert.Equal(t, "[DIAGRAM: test", result.Segments[0].Content)
	assert.Empty(t, result.Diagrams)
	assert.Empty(t, result.Images())
}

func TestProcessRejectsInvalidUTF8(t *testing.T) {
	p, _ := newTestPipeline(t)

	_, err := p.Process("bad \xff bytes [DIAGRAM: ramp]")

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestProcessFailedDiagramKeepsPosition(t *testing.T) {
	p, hook := newTestPipeline(t)
	calls := 0
	p.encode = func(s *Scene) (*RenderedImage, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("disk full")
		}
		return Encode(s)
	}

	result, err := p.Process("a [DIAGRAM: free body diagram] b [DIAGRAM: ramp at 10°] c [DIAGRAM: graph]")
	require.NoError(t, err)

	images := result.Images()
	require.Len(t, images, 3)
	assert.NotNil(t, images[0])
	assert.Nil(t, images[1])
	assert.NotNil(t, images[2])
	assert.Equal(t, 1, result.Failed())

	var diagErr *DiagramError
	require.ErrorAs(t, result.Diagrams[1].Err, &diagErr)
	assert.Equal(t, 1, diagErr.Ordinal)
	assert.Equal(t, StageEncode, diagErr.Stage)
	assert.ErrorIs(t, result.Diagrams[1].Err, ErrEncodeFailure)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["ordinal"] == 1 {
			warned = true
		}
	}
	assert.True(t, warned, "failed diagram should be logged")
}

func TestProcessRenderFailureStage(t *testing.T) {
	p, _ := newTestPipeline(t)
	p.encode = func(*Scene) (*RenderedImage, error) {
		return nil, ErrRenderFailure
	}

	result, err := p.Process("[DIAGRAM: free body diagram]")
	require.NoError(t, err)

	var diagErr *DiagramError
	require.ErrorAs(t, result.Diagrams[0].Err, &diagErr)
	assert.Equal(t, StageRender, diagErr.Stage)
}

func TestProcessLogsDegradedDescriptions(t *testing.T) {
	p, hook := newTestPipeline(t)

	result, err := p.Process("[DIAGRAM: a sketch of the circuit]")
	require.NoError(t, err)

	require.Len(t, result.Diagrams, 1)
	assert.True(t, result.Diagrams[0].Spec.Degraded())
	assert.NotNil(t, result.Diagrams[0].Image)

	var debugged bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.DebugLevel {
			debugged = true
		}
	}
	assert.True(t, debugged)
}

func TestRenderDescription(t *testing.T) {
	p, _ := newTestPipeline(t)

	spec, img, err := p.RenderDescription("block on a 45 degree incline")
	require.NoError(t, err)

	assert.Equal(t, KindInclinedPlane, spec.Kind)
	assert.NotEmpty(t, img.Data)
}

func TestNewPipelineValidatesOptions(t *testing.T) {
	_, err := NewPipeline(nil, RenderOptions{Width: 10, Height: 10})
	assert.Error(t, err)

	p, err := NewPipeline(nil, DefaultRenderOptions())
	require.NoError(t, err)
	_, err = p.Process("no diagrams here")
	assert.NoError(t, err)
}
