package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/amishk599/custclassify/internal/model"
)

const (
	// DefaultAnthropicModel is the model the classifier was tuned against.
	DefaultAnthropicModel = "claude-3-haiku-20240307"

	defaultMaxTokens = 1024
)

// AnthropicProvider calls the Anthropic Messages API.
type AnthropicProvider struct {
	client anthropic.Client
	opts   Options
}

// NewAnthropicProvider creates a provider targeting the Anthropic API.
// SDK retries are disabled: a failed call surfaces immediately.
func NewAnthropicProvider(opts Options) *AnthropicProvider {
	if opts.Model == "" {
		opts.Model = DefaultAnthropicModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}

	reqOpts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(opts.APIKey),
		anthropicoption.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, anthropicoption.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, anthropicoption.WithRequestTimeout(opts.Timeout))
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(reqOpts...),
		opts:   opts,
	}
}

// Complete sends the system instructions and user turns and returns the
// concatenated text blocks of the reply.
func (p *AnthropicProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	system, turns := splitMessages(messages)
	if len(turns) == 0 {
		return "", fmt.Errorf("anthropic: no user message to send")
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.opts.Model),
		MaxTokens:   p.opts.MaxTokens,
		Temperature: anthropic.Float(p.opts.Temperature),
	}
	for _, s := range system {
		params.System = append(params.System, anthropic.TextBlockParam{Text: s})
	}
	for _, m := range turns {
		params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		apiErr := &model.APIError{Provider: "anthropic", Err: err}
		var sdkErr *anthropic.Error
		if errors.As(err, &sdkErr) {
			apiErr.StatusCode = sdkErr.StatusCode
		}
		return "", apiErr
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("anthropic returned no text content")
	}
	return b.String(), nil
}
