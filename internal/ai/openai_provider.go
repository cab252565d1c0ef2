package ai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/amishk599/custclassify/internal/model"
)

// DefaultOpenAIModel is used when no model is configured for OpenAI.
const DefaultOpenAIModel = "gpt-4o-mini"

// classificationSchema is the JSON Schema enforced server-side via OpenAI
// structured outputs. It matches model.ClassificationResult exactly.
var classificationSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"category": map[string]any{
			"type":        "string",
			"description": "The category of the customer",
		},
		"explanation": map[string]any{
			"type":        "string",
			"description": "Explanation for the category",
		},
	},
	"required": []string{"category", "explanation"},
}

// OpenAIProvider calls the OpenAI chat completions endpoint with structured outputs.
type OpenAIProvider struct {
	client openai.Client
	opts   Options
}

// NewOpenAIProvider creates a provider targeting the OpenAI API (or any
// compatible endpoint via opts.BaseURL). SDK retries are disabled.
func NewOpenAIProvider(opts Options) *OpenAIProvider {
	if opts.Model == "" {
		opts.Model = DefaultOpenAIModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}

	return &OpenAIProvider{
		client: openai.NewClient(reqOpts...),
		opts:   opts,
	}
}

// Complete sends messages to OpenAI and returns the first choice's content.
func (p *OpenAIProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("openai: no messages to send")
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               p.opts.Model,
		Messages:            msgs,
		Temperature:         openai.Float(p.opts.Temperature),
		MaxCompletionTokens: openai.Int(p.opts.MaxTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "customer_classification",
					Schema: classificationSchema,
					Strict: openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		apiErr := &model.APIError{Provider: "openai", Err: err}
		var sdkErr *openai.Error
		if errors.As(err, &sdkErr) {
			apiErr.StatusCode = sdkErr.StatusCode
		}
		return "", apiErr
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
