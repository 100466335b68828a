package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"github.com/nfoster/taskrelay/internal/config"
	"github.com/nfoster/taskrelay/internal/domain"
	"github.com/nfoster/taskrelay/internal/generation"
	"google.golang.org/genai"
)

// defaultPromptTemplate instructs the model to answer with the JSON document
// described by responseSchema.
const defaultPromptTemplate = `You are a professional content writer.
Write a {{.ContentType}} about the following topic:

{{.Topic}}
{{if .Instructions}}
Additional instructions: {{.Instructions}}
{{end}}
Respond with a single JSON object of the form
{"title": "<title>", "body": "<full text>"} and nothing else.`

// Generator implements the generation.Generator interface using Google's
// Gemini API to produce content from a request.
type Generator struct {
	logger         *slog.Logger
	config         config.LLMConfig
	promptTemplate *template.Template
	client         *genai.Client
	model          string
}

// NewGenerator creates a Gemini-backed generator from the LLM configuration.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	promptTemplate, err := template.New("content").Parse(defaultPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			generation.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Generator{
		logger:         logger,
		config:         cfg,
		promptTemplate: promptTemplate,
		client:         client,
		model:          cfg.ModelName,
	}, nil
}

// Generate produces content for the request by prompting the configured
// Gemini model and parsing its structured response.
func (g *Generator) Generate(
	ctx context.Context,
	req domain.ContentRequest,
) (*domain.GeneratedContent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	prompt, err := g.createPrompt(ctx, req)
	if err != nil {
		return nil, err
	}

	response, err := g.callGeminiWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return g.parseResponse(ctx, response)
}

// createPrompt renders the prompt template with the request's fields.
func (g *Generator) createPrompt(ctx context.Context, req domain.ContentRequest) (string, error) {
	if req.Topic == "" {
		return "", ErrEmptyPrompt
	}

	data := promptData{
		ContentType:  string(req.ContentType),
		Topic:        req.Topic,
		Instructions: req.Instructions,
	}

	var promptBuffer bytes.Buffer
	if err := g.promptTemplate.Execute(&promptBuffer, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	prompt := promptBuffer.String()
	g.logger.DebugContext(ctx, "prompt generated",
		"content_type", req.ContentType,
		"prompt_length", len(prompt))

	return prompt, nil
}

// callGeminiWithRetry calls the API up to MaxRetries+1 times, using
// exponential backoff with jitter between attempts for transient errors.
// Permanent errors (safety blocks, malformed responses) are returned
// immediately without retrying.
func (g *Generator) callGeminiWithRetry(ctx context.Context, prompt string) (*responseSchema, error) {
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	maxRetries := g.config.MaxRetries
	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}
	baseDelaySeconds := g.config.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		g.logger.WarnContext(ctx, "invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		response, transient, err := g.callGemini(ctx, prompt)
		if err == nil {
			g.logger.InfoContext(ctx, "Gemini API call successful", "attempt", attempt+1)
			return response, nil
		}
		lastErr = err

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attempt+1,
			"error", err)

		if !transient {
			return nil, err
		}
		if attempt == maxRetries {
			break
		}

		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}

	return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
		generation.ErrTransientFailure, maxRetries, lastErr)
}

// callGemini performs one API call. The second return value reports whether
// the error is worth retrying.
func (g *Generator) callGemini(ctx context.Context, prompt string) (*responseSchema, bool, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		// API-level failures are assumed transient.
		return nil, true, fmt.Errorf("gemini API call failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, false, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, false, fmt.Errorf("%w: safety finish reason", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return nil, false, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var parsed responseSchema
	if err := json.Unmarshal([]byte(resp.Text()), &parsed); err != nil {
		return nil, false, fmt.Errorf("%w: failed to parse JSON response: %v",
			generation.ErrInvalidResponse, err)
	}
	return &parsed, false, nil
}

// parseResponse validates the structured response and converts it into the
// domain entity.
func (g *Generator) parseResponse(
	ctx context.Context,
	response *responseSchema,
) (*domain.GeneratedContent, error) {
	if response == nil {
		return nil, fmt.Errorf("%w: response is nil", generation.ErrInvalidResponse)
	}
	if response.Title == "" {
		return nil, fmt.Errorf("%w: missing title", generation.ErrInvalidResponse)
	}
	if response.Body == "" {
		return nil, fmt.Errorf("%w: missing body", generation.ErrInvalidResponse)
	}

	content := &domain.GeneratedContent{
		Title:     response.Title,
		Body:      response.Body,
		WordCount: len(strings.Fields(response.Body)),
		Model:     g.model,
	}

	g.logger.InfoContext(ctx, "parsed generation response",
		"title_length", len(content.Title),
		"word_count", content.WordCount)

	return content, nil
}

// Ensure Generator implements generation.Generator.
var _ generation.Generator = (*Generator)(nil)
