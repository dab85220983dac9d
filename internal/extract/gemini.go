package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/hyperjump/michibiki/internal/config"
	"github.com/hyperjump/michibiki/internal/models"
)

const analysisPrompt = `You are an expert career advisor AI.

User Message: "%s"

Task:
1. Detect the language of the user's message ("th" for Thai, "en" otherwise).
2. Extract the CURRENT role or skills. Default: "General Beginner".
3. Extract the TARGET role or goal.
4. Analyze the technical skill gap.
5. Identify the TOP 3 CRITICAL missing skills.

IMPORTANT RULES:
- "display_name": must be in the USER'S language.
- "query_en": must ALWAYS be in English (used for database search).
- "query_local": Thai search keywords; omit when the user's language is English.
- "summary": must be in the USER'S language.

Return ONLY a JSON object:
{
  "language": "th",
  "current_role": "...",
  "target_role": "...",
  "summary": "...",
  "missing_skills": [
    {
      "display_name": "Skill name in user language (e.g. การเขียนโปรแกรม)",
      "query_en": "Keywords in English (e.g. Python Programming)",
      "query_local": "Keywords in Thai"
    }
  ]
}`

// GeminiExtractor implements Extractor with the Google Gemini SDK.
type GeminiExtractor struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *zap.Logger
}

// NewGeminiExtractor creates an extractor. The API key is read from the
// environment variable named in the config, never from the config file itself.
func NewGeminiExtractor(cfg config.ExtractionConfig, logger *zap.Logger) (*GeminiExtractor, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("extraction API key not set: export %s", cfg.APIKeyEnv)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	// Deterministic extraction: the analysis feeds similarity queries, not prose.
	temperature := float32(0)
	model.Temperature = &temperature
	if cfg.MaxTokens > 0 {
		maxTokens := int32(cfg.MaxTokens)
		model.MaxOutputTokens = &maxTokens
	}
	model.ResponseMIMEType = "application/json"

	return &GeminiExtractor{client: client, model: model, logger: logger}, nil
}

// Extract sends the user message to the model and parses the JSON analysis.
func (e *GeminiExtractor) Extract(ctx context.Context, message string) (*models.Analysis, error) {
	resp, err := e.model.GenerateContent(ctx, genai.Text(fmt.Sprintf(analysisPrompt, message)))
	if err != nil {
		return nil, fmt.Errorf("skill-gap extraction: %w", err)
	}

	raw := responseText(resp)
	if raw == "" {
		return nil, fmt.Errorf("skill-gap extraction: empty model response")
	}
	analysis, err := ParseAnalysis(raw)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("skill-gap analysis extracted",
		zap.String("language", string(analysis.Language)),
		zap.Int("skills", len(analysis.Skills)))
	return analysis, nil
}

// Close closes the underlying client.
func (e *GeminiExtractor) Close() error {
	return e.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	return out
}
