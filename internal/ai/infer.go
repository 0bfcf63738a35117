package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/david/project-radar/internal/models"
)

// inferredClassification is the fixed response contract for external
// project classification. Any deviation from it is treated as a failed
// call, never as a partial result.
type inferredClassification struct {
	ProjectType   string  `json:"project_type"`
	Stage         string  `json:"stage"`
	EstimatedSize string  `json:"estimated_size"`
	Confidence    float64 `json:"confidence"`
	Reasoning     string  `json:"reasoning"`
}

// ClassifyProject asks the LLM to classify a construction project. The
// response is validated against the known enums before being trusted;
// schema violations return an error so the caller falls through to the
// next classification method.
func (c *OllamaClient) ClassifyProject(ctx context.Context, title, description string) (*models.ClassificationResult, error) {
	text := title + "\n\n" + description
	if len(text) > 2000 {
		text = text[:2000]
	}

	prompt := fmt.Sprintf(`Classify this construction project:

Project: %s

Provide classification in JSON format:
{
	"project_type": "commercial|residential|industrial|infrastructure|data_center|logistics|healthcare|education|hospitality|other",
	"stage": "planning|permit|tender|bidding|awarded|construction|completed|cancelled",
	"estimated_size": "small|medium|large|mega|unknown",
	"confidence": 0.85,
	"reasoning": "Brief explanation"
}

Use these definitions:
- commercial: office, retail, mixed-use buildings
- residential: apartments, condos, housing
- industrial: manufacturing, warehouses, factories
- infrastructure: roads, bridges, utilities, airports
- data_center: data centers, server facilities
- logistics: distribution centers, fulfillment centers
- healthcare: hospitals, clinics, medical facilities
- education: schools, universities, libraries
- hospitality: hotels, resorts, restaurants

Size:
- small: < $5M or < 50,000 sf
- medium: $5M-$50M or 50,000-250,000 sf
- large: $50M-$500M or 250,000-1M sf
- mega: > $500M or > 1M sf

RESPOND ONLY WITH JSON.`, text)

	resp, err := c.GenerateCompletion(ctx, prompt, true)
	if err != nil {
		return nil, err
	}

	inferred, err := parseInferredClassification(resp)
	if err != nil {
		return nil, err
	}

	if !models.ValidProjectType(inferred.ProjectType) {
		return nil, fmt.Errorf("inference returned unknown project type %q", inferred.ProjectType)
	}
	if !models.ValidProjectStage(inferred.Stage) {
		return nil, fmt.Errorf("inference returned unknown stage %q", inferred.Stage)
	}
	if inferred.Confidence < 0 || inferred.Confidence > 1 {
		return nil, fmt.Errorf("inference returned confidence %v outside [0,1]", inferred.Confidence)
	}

	size := models.SizeCategory(inferred.EstimatedSize)
	switch size {
	case models.SizeSmall, models.SizeMedium, models.SizeLarge, models.SizeMega, models.SizeUnknown:
	case "":
		size = models.SizeUnknown
	default:
		return nil, fmt.Errorf("inference returned unknown size category %q", inferred.EstimatedSize)
	}

	return &models.ClassificationResult{
		ProjectType:  models.ProjectType(inferred.ProjectType),
		Stage:        models.ProjectStage(inferred.Stage),
		SizeCategory: size,
		Confidence:   inferred.Confidence,
	}, nil
}

// parseInferredClassification tolerates markdown fences and leading prose
// around the JSON object, which some models emit even in JSON mode.
func parseInferredClassification(resp string) (*inferredClassification, error) {
	cleaned := strings.TrimSpace(resp)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	if jsonStr, ok := extractFirstJSONObject(cleaned); ok {
		cleaned = jsonStr
	}

	var inferred inferredClassification
	if err := json.Unmarshal([]byte(cleaned), &inferred); err != nil {
		return nil, fmt.Errorf("failed to parse classification json: %w", err)
	}
	return &inferred, nil
}

// extractFirstJSONObject returns the first balanced {...} block in s.
func extractFirstJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
