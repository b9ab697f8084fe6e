package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vigil-intel/vigil-engine/pkg/analysis"
	"github.com/vigil-intel/vigil-engine/pkg/apperrors"
	"github.com/vigil-intel/vigil-engine/pkg/llm"
	"github.com/vigil-intel/vigil-engine/pkg/logging"
	"github.com/vigil-intel/vigil-engine/pkg/models"
	"github.com/vigil-intel/vigil-engine/pkg/retry"
)

const classificationSystemMessage = `You are a reputation threat analyst. You classify online content that mentions a monitored brand or person. Respond with JSON only, no prose outside the JSON object.`

const classificationPromptTemplate = `Analyze the following content for reputation threats against %q on platform %q.
%s
Content:
"""
%s
"""

Return a JSON object with exactly these fields:
{
  "category": "one of: defamation, harassment, impersonation, misinformation, review_bombing, doxxing, none",
  "severity": <integer 1-10>,
  "explanation": "<why this is or is not a threat>",
  "recommendation": "<what the operator should do>",
  "ai_reasoning": "<your step-by-step reasoning>",
  "confidence": <0.0-1.0>,
  "detectedEntities": ["<entity names found in the content>"],
  "detectedBeliefs": ["<claims or beliefs the content asserts>"]
}`

const responseSystemMessage = `You draft professional responses to negative or threatening online content on behalf of a reputation management operator. Never admit liability, never escalate, keep it short.`

const extractionSystemMessage = `You extract named entities from text. Respond with JSON only.`

const extractionPromptTemplate = `Extract every person, organization, social handle, email address, and website from the text below.

Text:
"""
%s
"""

Return a JSON array of objects: [{"name": "...", "type": "person|organization|handle|email|website", "confidence": <0.0-1.0>, "mentions": <count>}]`

// ClassificationService runs LLM-backed analysis of threat content.
type ClassificationService interface {
	Classify(ctx context.Context, content, platform, brand, extraContext string) (*models.ThreatClassification, error)
	SuggestResponse(ctx context.Context, content, tone string) (string, error)
	ExtractAdvanced(ctx context.Context, text string) ([]models.Entity, error)
}

type classificationService struct {
	client   llm.LLMClient
	retryCfg *retry.Config
	logger   *zap.Logger
}

// NewClassificationService creates a new ClassificationService.
func NewClassificationService(client llm.LLMClient, logger *zap.Logger) ClassificationService {
	return &classificationService{
		client:   client,
		retryCfg: retry.DefaultConfig(),
		logger:   logger.Named("classification_service"),
	}
}

var _ ClassificationService = (*classificationService)(nil)

// Classify asks the model to categorize content as a reputation threat.
// Transient provider failures are retried; a response that cannot be parsed
// as the expected JSON shape is an error.
func (s *classificationService) Classify(ctx context.Context, content, platform, brand, extraContext string) (*models.ThreatClassification, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", apperrors.ErrValidation)
	}
	if brand == "" {
		brand = "the monitored party"
	}

	contextLine := ""
	if extraContext != "" {
		contextLine = "Additional context: " + extraContext + "\n"
	}
	prompt := fmt.Sprintf(classificationPromptTemplate, brand, platform, contextLine, content)

	raw, err := retry.DoWithResult(ctx, s.retryCfg, func() (string, error) {
		return s.client.GenerateResponse(ctx, prompt, classificationSystemMessage, 0.2)
	})
	if err != nil {
		s.logger.Warn("llm classification failed", zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("threat classification failed: %w", err)
	}

	classification, err := llm.ParseJSONResponse[models.ThreatClassification](raw)
	if err != nil {
		s.logger.Warn("unparseable classification response", zap.Error(err))
		return nil, fmt.Errorf("model returned an unusable classification")
	}

	if classification.Severity < 1 {
		classification.Severity = 1
	}
	if classification.Severity > 10 {
		classification.Severity = 10
	}

	s.logger.Info("content classified",
		zap.String("category", classification.Category),
		zap.Int("severity", classification.Severity),
		zap.Float64("confidence", classification.Confidence))

	return &classification, nil
}

// SuggestResponse drafts an operator reply to a threatening mention.
func (s *classificationService) SuggestResponse(ctx context.Context, content, tone string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: content is required", apperrors.ErrValidation)
	}
	if tone == "" {
		tone = "professional"
	}

	prompt := fmt.Sprintf("Draft a %s response to the following content. Return only the response text.\n\nContent:\n\"\"\"\n%s\n\"\"\"", tone, content)

	reply, err := retry.DoWithResult(ctx, s.retryCfg, func() (string, error) {
		return s.client.GenerateResponse(ctx, prompt, responseSystemMessage, 0.7)
	})
	if err != nil {
		return "", fmt.Errorf("response drafting failed: %w", err)
	}

	return strings.TrimSpace(reply), nil
}

// ExtractAdvanced asks the model to extract entities, falling back to the
// regex extractor on any failure so callers always get an answer.
func (s *classificationService) ExtractAdvanced(ctx context.Context, text string) ([]models.Entity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", apperrors.ErrValidation)
	}

	prompt := fmt.Sprintf(extractionPromptTemplate, text)

	raw, err := s.client.GenerateResponse(ctx, prompt, extractionSystemMessage, 0.0)
	if err != nil {
		s.logger.Warn("llm extraction failed, falling back to regex", zap.Error(err))
		return analysis.Extract(text), nil
	}

	entities, err := llm.ParseJSONResponse[[]models.Entity](raw)
	if err != nil {
		s.logger.Warn("unparseable extraction response, falling back to regex", zap.Error(err))
		return analysis.Extract(text), nil
	}

	// The model occasionally hallucinates empty names; drop them.
	out := entities[:0]
	for _, e := range entities {
		if strings.TrimSpace(e.Name) == "" {
			continue
		}
		if e.Mentions < 1 {
			e.Mentions = 1
		}
		out = append(out, e)
	}
	if len(out) == 0 {
		return analysis.Extract(text), nil
	}
	return out, nil
}
