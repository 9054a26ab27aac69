package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github/itish2003/physolve/diagram"
	"github/itish2003/physolve/models"
	"github/itish2003/physolve/services"
)

const (
	serviceName = "physics-solver"
	version     = "1.0.0"
)

// formOverhead is the multipart framing allowed on top of the image itself.
const formOverhead = 1 << 20

// SolverController handles the HTTP requests for the solver API. It depends
// on the SolverService to perform the actual work.
type SolverController struct {
	solver         services.SolverService
	maxUploadBytes int64
	log            *logrus.Entry
}

// NewSolverController is called from main.go to inject the service.
func NewSolverController(solver services.SolverService, maxUploadBytes int64, log *logrus.Entry) *SolverController {
	return &SolverController{
		solver:         solver,
		maxUploadBytes: maxUploadBytes,
		log:            log.WithField("component", "http"),
	}
}

// RegisterRoutes mounts the health check and the /api/v1 group.
func (c *SolverController) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", c.Health)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/solve", c.Solve)             // image upload, model call, diagrams
		apiV1.POST("/diagrams", c.RenderDiagrams) // diagrams for supplied text only
	}
}

// Health is the Gin handler for GET /health.
func (c *SolverController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, models.HealthResponse{
		Status:        "healthy",
		Service:       serviceName,
		Version:       version,
		APIConfigured: c.solver.APIConfigured(),
	})
}

// Solve is the Gin handler for POST /api/v1/solve.
func (c *SolverController) Solve(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.maxUploadBytes+formOverhead)

	fh, err := ctx.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.fail(ctx, http.StatusBadRequest, "Image exceeds the upload limit")
			return
		}
		c.fail(ctx, http.StatusBadRequest, "No image file provided")
		return
	}

	upload, err := services.ReadImageUpload(fh, c.maxUploadBytes)
	if err != nil {
		if errors.Is(err, services.ErrInvalidUpload) {
			c.fail(ctx, http.StatusBadRequest, err.Error())
			return
		}
		c.log.WithError(err).WithField("request_id", requestID(ctx)).Error("HTTP: could not read upload")
		c.fail(ctx, http.StatusInternalServerError, "Failed to read image")
		return
	}

	result, err := c.solver.Solve(ctx.Request.Context(), upload)
	switch {
	case errors.Is(err, services.ErrModelUnavailable):
		c.fail(ctx, http.StatusServiceUnavailable, "Model API is not configured")
		return
	case errors.Is(err, services.ErrUpstream):
		c.fail(ctx, http.StatusBadGateway, "Failed to process image: "+err.Error())
		return
	case err != nil:
		c.log.WithError(err).WithField("request_id", requestID(ctx)).Error("HTTP: solve failed")
		c.fail(ctx, http.StatusInternalServerError, "Failed to process image")
		return
	}

	ctx.JSON(http.StatusOK, solveResponse(requestID(ctx), result))
}

// RenderDiagrams is the Gin handler for POST /api/v1/diagrams.
func (c *SolverController) RenderDiagrams(ctx *gin.Context) {
	var req models.RenderTextRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.fail(ctx, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := c.solver.RenderNarrative(ctx.Request.Context(), req.Text)
	if err != nil {
		if errors.Is(err, diagram.ErrInvalidInput) {
			c.fail(ctx, http.StatusBadRequest, err.Error())
			return
		}
		c.log.WithError(err).WithField("request_id", requestID(ctx)).Error("HTTP: render failed")
		c.fail(ctx, http.StatusInternalServerError, "Failed to render diagrams")
		return
	}

	ctx.JSON(http.StatusOK, solveResponse(requestID(ctx), result))
}

func (c *SolverController) fail(ctx *gin.Context, status int, msg string) {
	ctx.JSON(status, models.ErrorResponse{Success: false, Error: msg, RequestID: requestID(ctx)})
}

func solveResponse(requestID string, result *diagram.Result) models.SolveResponse {
	entries := make([]*models.DiagramEntry, len(result.Diagrams))
	for i, d := range result.Diagrams {
		if d.Image == nil {
			continue
		}
		entries[i] = &models.DiagramEntry{
			Ordinal:     d.Ordinal,
			Description: d.Description,
			Kind:        d.Spec.Kind.String(),
			Forces:      d.Spec.ForceLabels(),
			Placeholder: d.Spec.Degraded(),
			Image:       d.Image.DataURI(),
		}
	}
	return models.SolveResponse{
		Success:        true,
		RequestID:      requestID,
		Solution:       result.Narrative,
		Diagrams:       entries,
		FailedDiagrams: result.Failed(),
	}
}
