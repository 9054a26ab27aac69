package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github/itish2003/physolve/diagram"
)

var (
	// ErrModelUnavailable means no generator is configured.
	ErrModelUnavailable = errors.New("model not configured")
	// ErrUpstream wraps any failure of the model call.
	ErrUpstream = errors.New("upstream model failure")
)

// SolverService interface defines the solve and re-render operations
type SolverService interface {
	Solve(ctx context.Context, upload *ImageUpload) (*diagram.Result, error)
	RenderNarrative(ctx context.Context, narrative string) (*diagram.Result, error)
	APIConfigured() bool
}

// solverServiceImpl holds the dependencies it needs to do its job
type solverServiceImpl struct {
	generator NarrativeGenerator
	prompts   PromptSource
	pipeline  *diagram.Pipeline
	log       *logrus.Entry
}

// NewSolverService creates a new solver. generator may be nil, in which case
// Solve fails with ErrModelUnavailable and only RenderNarrative works.
func NewSolverService(generator NarrativeGenerator, prompts PromptSource, pipeline *diagram.Pipeline, log *logrus.Entry) SolverService {
	return &solverServiceImpl{
		generator: generator,
		prompts:   prompts,
		pipeline:  pipeline,
		log:       log.WithField("component", "solver"),
	}
}

func (s *solverServiceImpl) APIConfigured() bool {
	return s.generator != nil
}

// Solve sends the image to the model and turns the reply into text segments
// and diagrams.
func (s *solverServiceImpl) Solve(ctx context.Context, upload *ImageUpload) (*diagram.Result, error) {
	if s.generator == nil {
		return nil, ErrModelUnavailable
	}
	log := s.log.WithFields(logrus.Fields{"filename": upload.Filename, "mime_type": upload.MIMEType})
	log.Info("SERVICE: solving uploaded problem")

	start := time.Now()
	narrative, err := s.generator.GenerateNarrative(ctx, s.prompts.Prompt(), upload.Data, upload.MIMEType)
	if err != nil {
		log.WithError(err).Error("SERVICE: model call failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	log.WithField("elapsed", time.Since(start).String()).Info("SERVICE: model replied")

	result, err := s.pipeline.Process(narrative)
	if err != nil {
		// the only input error is text we cannot trust, which is the model's fault here
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return result, nil
}

// RenderNarrative runs the diagram pipeline on caller-supplied text.
func (s *solverServiceImpl) RenderNarrative(ctx context.Context, narrative string) (*diagram.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := s.pipeline.Process(narrative)
	if err != nil {
		return nil, fmt.Errorf("could not process narrative: %w", err)
	}
	return result, nil
}
