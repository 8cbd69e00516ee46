// Package adk provides a GenAI client wrapper that diagnoses Dagster run
// failures from their error logs.
package adk

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// extractJSON extracts a JSON string from a markdown code block or raw response.
func extractJSON(response string) string {
	// Regex to find content within ```json ... ``` or ``` ... ```
	re := regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")
	matches := re.FindStringSubmatch(response)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	// Fallback for raw JSON response without markdown
	return strings.TrimSpace(response)
}

// Config for agent initialization.
type Config struct {
	APIKey    string // Gemini API key
	ModelName string // Gemini model (e.g., "gemini-2.5-flash")
}

// Diagnosis is the LLM diagnosis result for one run's error logs.
type Diagnosis struct {
	Summary        string   `json:"summary"`         // Brief summary of the failure
	PossibleCauses []string `json:"possible_causes"` // Possible root causes
	Suggestions    []string `json:"suggestions"`     // Actionable next steps
}

// DiagnosisAgent wraps the GenAI client for run failure diagnosis.
type DiagnosisAgent struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewDiagnosisAgent creates a new agent backed by the Gemini API.
func NewDiagnosisAgent(ctx context.Context, cfg Config, logger *zap.Logger) (*DiagnosisAgent, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	logger.Info("GenAI agent created", zap.String("model", cfg.ModelName))
	return &DiagnosisAgent{client: client, model: cfg.ModelName, logger: logger}, nil
}

var diagnosisResponseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary": {
			Type:        genai.TypeString,
			Description: "Brief summary of the failure (1-2 sentences).",
		},
		"possible_causes": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeString,
			},
			Description: "2-4 possible root causes.",
		},
		"suggestions": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeString,
			},
			Description: "2-4 actionable next steps to fix or investigate.",
		},
	},
	Required: []string{"summary", "possible_causes", "suggestions"},
}

// generateContent is a helper method to generate content from the LLM.
func (a *DiagnosisAgent) generateContent(ctx context.Context, prompt string, outputSchema *genai.Schema) (string, error) {
	var cfg *genai.GenerateContentConfig
	if outputSchema != nil {
		cfg = &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   outputSchema,
		}
	}

	result, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}
	return text, nil
}

// DiagnoseLogs uses the LLM to diagnose the error logs of one run.
func (a *DiagnosisAgent) DiagnoseLogs(ctx context.Context, logText string) (*Diagnosis, error) {
	prompt := fmt.Sprintf(`You are a seasoned Dagster engineer. Diagnose the following error logs and suggest next steps.

Error Logs:
`+"```"+`
%s
`+"```"+`

Respond with a JSON object containing:
- "summary": A brief summary of the failure (1-2 sentences)
- "possible_causes": An array of 2-4 possible root causes
- "suggestions": An array of 2-4 actionable next steps to fix or investigate

Only respond with valid JSON, no other text.`, logText)

	result, err := a.generateContent(ctx, prompt, diagnosisResponseSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to run LLM for diagnosis: %w", err)
	}

	diagnosis, ok := parseDiagnosis(result)
	if !ok {
		a.logger.Error("Failed to parse diagnosis response",
			zap.String("response", result))
		// Fallback with basic diagnosis
		return &Diagnosis{
			Summary:        "Diagnosis unavailable: the model response could not be parsed.",
			PossibleCauses: []string{"Unable to determine root cause automatically"},
			Suggestions:    []string{"Review error logs manually", "Re-run the diagnosis"},
		}, nil
	}

	a.logger.Info("Diagnosis generated",
		zap.Int("cause_count", len(diagnosis.PossibleCauses)),
		zap.Int("suggestion_count", len(diagnosis.Suggestions)))
	return diagnosis, nil
}

// parseDiagnosis decodes a model response, stripping markdown fences first.
func parseDiagnosis(response string) (*Diagnosis, bool) {
	var diagnosis Diagnosis
	if err := json.Unmarshal([]byte(extractJSON(response)), &diagnosis); err != nil {
		return nil, false
	}
	if diagnosis.Summary == "" {
		return nil, false
	}
	return &diagnosis, true
}
