package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// ErrEmptyNarrative is returned when the model answers with no text.
var ErrEmptyNarrative = errors.New("model returned no text")

// NarrativeGenerator produces a worked solution, with diagram markers, for an
// image of a problem.
type NarrativeGenerator interface {
	GenerateNarrative(ctx context.Context, systemPrompt string, image []byte, mimeType string) (string, error)
}

// geminiGenerator calls a Gemini model through the genai SDK.
type geminiGenerator struct {
	client *genai.Client
	model  string
	log    *logrus.Entry
}

// NewGeminiGenerator connects to the Gemini API with apiKey.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, log *logrus.Entry) (NarrativeGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &geminiGenerator{client: client, model: model, log: log.WithField("model", model)}, nil
}

func (g *geminiGenerator) GenerateNarrative(ctx context.Context, systemPrompt string, image []byte, mimeType string) (string, error) {
	g.log.WithField("image_bytes", len(image)).Info("GEMINI: sending problem image")

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(solveInstruction),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}
	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(systemPrompt),
	})
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", ErrEmptyNarrative
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyNarrative
	}
	g.log.WithField("chars", len(text)).Info("GEMINI: narrative received")
	return text, nil
}
