package diagram

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput means the narrative could not be scanned at all.
	ErrInvalidInput = errors.New("invalid narrative input")
	// ErrRenderFailure means the graphics backend could not draw a scene.
	ErrRenderFailure = errors.New("diagram render failed")
	// ErrEncodeFailure means a drawn scene could not be serialised.
	ErrEncodeFailure = errors.New("diagram encode failed")
)

// Stage names the pipeline step a DiagramError came from.
type Stage string

const (
	StageRender Stage = "render"
	StageEncode Stage = "encode"
)

// DiagramError is a failure confined to one diagram. It unwraps to the
// underlying error, which wraps ErrRenderFailure or ErrEncodeFailure.
type DiagramError struct {
	Ordinal int
	Stage   Stage
	Err     error
}

func (e *DiagramError) Error() string {
	return fmt.Sprintf("diagram %d: %s: %v", e.Ordinal, e.Stage, e.Err)
}

func (e *DiagramError) Unwrap() error {
	return e.Err
}

func stageOf(err error) Stage {
	if errors.Is(err, ErrEncodeFailure) {
		return StageEncode
	}
	return StageRender
}
