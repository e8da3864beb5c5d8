package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mikey/phish-detector/internal/core"
	"github.com/mikey/phish-detector/internal/textproc"
)

// Classifier is an optional backend that asks an OpenAI model for a phishing
// verdict instead of the local pipeline. Useful as a second opinion; not used
// by default.
type Classifier struct {
	client      *openai.Client
	modelName   string
	maxTokens   int
	temperature float32
	topP        float32
	maxBodySize int
	processor   *textproc.Processor
	logger      *zap.Logger
}

// verdictResponse is the structured reply requested from the model
type verdictResponse struct {
	IsPhishing          bool    `json:"is_phishing"`
	PhishingProbability float64 `json:"phishing_probability"`
	Explanation         string  `json:"explanation"`
}

const promptFormat = `You are a phishing detection system. Analyze the following email and decide whether it is a phishing attempt.
Respond with a JSON object containing:
- is_phishing: boolean
- phishing_probability: number between 0 and 1
- explanation: string (brief reason for the verdict)

Email:
From: %s
Subject: %s
Body:
%s

Respond only with the JSON object and nothing else.`

// NewClassifier creates a new OpenAI-backed classifier
func NewClassifier(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	processor *textproc.Processor,
	logger *zap.Logger,
) *Classifier {
	return &Classifier{
		client:      openai.NewClient(apiKey),
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		maxBodySize: maxBodySize,
		processor:   processor,
		logger:      logger,
	}
}

// ClassifyEmail decides whether an email is a phishing attempt
func (c *Classifier) ClassifyEmail(ctx context.Context, email *core.Email) (*core.ClassificationResult, error) {
	body := c.processor.ProcessText(email.Body, c.maxBodySize)
	prompt := fmt.Sprintf(promptFormat, email.From, email.Subject, body)

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a phishing detection system. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	verdict, err := parseVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	result := &core.ClassificationResult{
		IsPhishing:            verdict.IsPhishing,
		PhishingProbability:   verdict.PhishingProbability,
		LegitimateProbability: 1 - verdict.PhishingProbability,
		Explanation:           verdict.Explanation,
		AnalyzedAt:            time.Now(),
		ModelUsed:             c.modelName,
		ProcessingID:          resp.ID,
	}
	if result.IsPhishing {
		result.Label = core.LabelPhishing
		result.Confidence = result.PhishingProbability
	} else {
		result.Label = core.LabelLegitimate
		result.Confidence = result.LegitimateProbability
	}

	return result, nil
}

// parseVerdict decodes the model reply, tolerating stray text around the JSON
func parseVerdict(text string) (*verdictResponse, error) {
	var verdict verdictResponse
	if err := json.Unmarshal([]byte(text), &verdict); err == nil {
		return &verdict, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("failed to extract JSON from model response")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &verdict); err != nil {
		return nil, fmt.Errorf("failed to parse model response as JSON: %w", err)
	}
	return &verdict, nil
}
