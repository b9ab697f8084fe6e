package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vigil-intel/vigil-engine/pkg/apperrors"
	"github.com/vigil-intel/vigil-engine/pkg/llm"
	"github.com/vigil-intel/vigil-engine/pkg/models"
)

const classificationJSON = `{
	"category": "defamation",
	"severity": 8,
	"explanation": "Accuses the brand of criminal conduct without evidence.",
	"recommendation": "Escalate to legal review.",
	"ai_reasoning": "The content asserts fraud as fact.",
	"confidence": 0.92,
	"detectedEntities": ["Acme Corp"],
	"detectedBeliefs": ["Acme Corp commits fraud"]
}`

func TestClassify_ParsesModelOutput(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temp float64) (string, error) {
		// Models often wrap the JSON in prose; the parser must cope.
		return "Here is my analysis:\n```json\n" + classificationJSON + "\n```\nLet me know if you need more.", nil
	}

	svc := NewClassificationService(mock, zap.NewNop())

	result, err := svc.Classify(context.Background(), "Acme Corp commits fraud daily", "twitter", "Acme Corp", "")
	require.NoError(t, err)

	assert.Equal(t, "defamation", result.Category)
	assert.Equal(t, 8, result.Severity)
	assert.Equal(t, 0.92, result.Confidence)
	assert.Equal(t, []string{"Acme Corp"}, result.DetectedEntities)
	assert.Equal(t, 1, mock.GenerateResponseCalls)
}

func TestClassify_SeverityClamped(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temp float64) (string, error) {
		return `{"category": "harassment", "severity": 14, "confidence": 0.5}`, nil
	}

	svc := NewClassificationService(mock, zap.NewNop())

	result, err := svc.Classify(context.Background(), "some content", "twitter", "", "")
	require.NoError(t, err)
	assert.Equal(t, 10, result.Severity)
}

func TestClassify_UnparseableResponse(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temp float64) (string, error) {
		return "I cannot classify this content.", nil
	}

	svc := NewClassificationService(mock, zap.NewNop())

	_, err := svc.Classify(context.Background(), "some content", "twitter", "", "")
	require.Error(t, err)
	// The raw model output must not leak into the error.
	assert.NotContains(t, err.Error(), "I cannot classify")
}

func TestClassify_RetriesTransientFailures(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temp float64) (string, error) {
		if mock.GenerateResponseCalls == 1 {
			return "", llm.NewError(llm.ErrorTypeRateLimit, "rate limited", true, errors.New("429"))
		}
		return classificationJSON, nil
	}

	svc := NewClassificationService(mock, zap.NewNop())

	result, err := svc.Classify(context.Background(), "some content", "twitter", "", "")
	require.NoError(t, err)
	assert.Equal(t, "defamation", result.Category)
	assert.Equal(t, 2, mock.GenerateResponseCalls)
}

func TestClassify_DoesNotRetryAuthFailures(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temp float64) (string, error) {
		return "", llm.NewError(llm.ErrorTypeAuth, "bad key", false, errors.New("401"))
	}

	svc := NewClassificationService(mock, zap.NewNop())

	_, err := svc.Classify(context.Background(), "some content", "twitter", "", "")
	require.Error(t, err)
	assert.Equal(t, 1, mock.GenerateResponseCalls)
}

func TestClassify_EmptyContent(t *testing.T) {
	svc := NewClassificationService(llm.NewMockLLMClient(), zap.NewNop())

	_, err := svc.Classify(context.Background(), "   ", "twitter", "", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSuggestResponse(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temp float64) (string, error) {
		assert.Contains(t, prompt, "empathetic")
		return "  We are sorry to hear about your experience.  ", nil
	}

	svc := NewClassificationService(mock, zap.NewNop())

	reply, err := svc.SuggestResponse(context.Background(), "your product broke", "empathetic")
	require.NoError(t, err)
	assert.Equal(t, "We are sorry to hear about your experience.", reply)
}

func TestExtractAdvanced_UsesModelOutput(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temp float64) (string, error) {
		return `[{"name": "Acme Corp", "type": "organization", "confidence": 0.97, "mentions": 2}]`, nil
	}

	svc := NewClassificationService(mock, zap.NewNop())

	entities, err := svc.ExtractAdvanced(context.Background(), "Acme Corp did it again, classic Acme Corp")
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "Acme Corp", entities[0].Name)
	assert.Equal(t, 0.97, entities[0].Confidence)
}

func TestExtractAdvanced_FallsBackOnProviderFailure(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temp float64) (string, error) {
		return "", llm.NewError(llm.ErrorTypeServer, "boom", true, errors.New("500"))
	}

	svc := NewClassificationService(mock, zap.NewNop())

	entities, err := svc.ExtractAdvanced(context.Background(), "Contact jane@example.com or @janedoe")
	require.NoError(t, err, "regex fallback must absorb provider failures")
	require.Len(t, entities, 2)
	assert.Equal(t, models.EntityEmail, entities[0].Type)
	assert.Equal(t, models.EntityHandle, entities[1].Type)
}

func TestExtractAdvanced_FallsBackOnGarbageOutput(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temp float64) (string, error) {
		return "no entities worth mentioning", nil
	}

	svc := NewClassificationService(mock, zap.NewNop())

	entities, err := svc.ExtractAdvanced(context.Background(), "Contact jane@example.com please")
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "jane@example.com", entities[0].Name)
}
