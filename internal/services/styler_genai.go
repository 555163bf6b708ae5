package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// GenAIStyler renders a style preview through the Gemini API. The model
// answers with a textual rendering of the styled portrait; the gateway pairs
// that description with the source image.
type GenAIStyler struct {
	client    *genai.Client
	modelName string
}

func NewGenAIStyler(client *genai.Client, modelName string) *GenAIStyler {
	return &GenAIStyler{client: client, modelName: modelName}
}

func (s *GenAIStyler) StyleImage(ctx context.Context, imageData []byte, mimeType, styleTag string) ([]byte, string, error) {
	style, ok := StyleByTag(styleTag)
	if !ok {
		return nil, "", fmt.Errorf("unknown style tag: %s", styleTag)
	}

	model := s.client.GenerativeModel(s.modelName)
	prompt := fmt.Sprintf(
		"You are the art director of a pet portrait studio. A customer uploaded this pet photo to be hand-painted as %s on canvas. "+
			"In two or three sentences addressed to the customer, describe how the finished portrait will look, mentioning the pet's distinguishing features.",
		style.Prompt,
	)

	resp, err := model.GenerateContent(ctx, genai.ImageData(imageFormat(mimeType), imageData), genai.Text(prompt))
	if err != nil {
		return nil, "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, "", fmt.Errorf("empty response from model")
	}

	var description strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			description.WriteString(string(text))
		}
	}
	if description.Len() == 0 {
		return nil, "", fmt.Errorf("model returned no text parts")
	}

	return imageData, strings.TrimSpace(description.String()), nil
}

func imageFormat(mimeType string) string {
	switch mimeType {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	default:
		return "jpeg"
	}
}
