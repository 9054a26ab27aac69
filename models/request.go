package models

// RenderTextRequest is the body of POST /api/v1/diagrams.
type RenderTextRequest struct {
	Text string `json:"text" binding:"required"`
}
