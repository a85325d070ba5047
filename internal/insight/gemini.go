package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/insightlab/insightpilot-go/internal/models"
	"github.com/insightlab/insightpilot-go/internal/utils"
)

// GeminiProvider answers questions through the Gemini API. It satisfies
// services.InsightProvider; the engine treats every failure here as a cue
// to fall back to local answers.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini-backed insight provider.
func NewGeminiProvider(ctx context.Context, apiKey string, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, utils.NewExternalUnavailableError("gemini api key is not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

// Query sends the question with a compact data summary and returns the
// generated text.
func (p *GeminiProvider) Query(ctx context.Context, question string, summary *models.DataSummary) (string, error) {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to encode data summary: %w", err)
	}

	prompt := fmt.Sprintf(
		"You are a business analytics assistant answering questions about a sales dataset.\n"+
			"Dataset summary: %s\n"+
			"Question: %s\n"+
			"Answer concisely using only the data provided.",
		summaryJSON, question,
	)

	resp, err := p.client.GenerativeModel(p.model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", utils.NewExternalUnavailableError("gemini call failed: %v", err)
	}

	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	if b.Len() == 0 {
		return "", utils.NewExternalUnavailableError("gemini returned no text candidates")
	}
	return b.String(), nil
}

// Close releases the underlying client.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}
