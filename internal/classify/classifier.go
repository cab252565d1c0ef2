package classify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/custclassify/internal/ai"
	"github.com/amishk599/custclassify/internal/model"
	"github.com/amishk599/custclassify/internal/prompt"
)

// Source identifies the provider and model answering a classification.
type Source struct {
	Provider string
	Model    string
}

// Classifier runs one prompt -> model -> parse round trip per request.
type Classifier struct {
	provider ai.Provider
	source   Source
	builder  *prompt.Builder
	store    model.ResultStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewClassifier wires a classifier. store may be nil, in which case nothing is
// recorded; a nil logger discards output.
func NewClassifier(provider ai.Provider, source Source, builder *prompt.Builder, store model.ResultStore, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Classifier{
		provider: provider,
		source:   source,
		builder:  builder,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

// Classify asks the model to place req.CustomerInformation into one of
// req.Categories. Errors from prompt rendering, the provider and parsing are
// returned wrapped and are never retried.
func (c *Classifier) Classify(ctx context.Context, req model.ClassificationRequest) (model.ClassificationResult, error) {
	messages, err := c.builder.Messages(req)
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("build prompt: %w", err)
	}

	c.logger.Debug("sending classification request",
		"provider", c.source.Provider,
		"model", c.source.Model,
		"industry", req.Industry,
		"categories", len(req.Categories),
	)

	start := c.now()
	raw, err := c.provider.Complete(ctx, messages)
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("llm complete: %w", err)
	}
	c.logger.Debug("model responded", "elapsed", c.now().Sub(start), "bytes", len(raw))

	result, err := ParseResponse(raw)
	if err != nil {
		c.logger.Debug("unparseable model response", "raw", raw)
		return model.ClassificationResult{}, fmt.Errorf("parse response: %w", err)
	}

	if !containsLabel(req.Categories, result.Category) {
		c.logger.Warn("model chose a category outside the candidate list", "category", result.Category)
	}

	if c.store != nil {
		rec := model.Record{
			CreatedAt: c.now(),
			Provider:  c.source.Provider,
			Model:     c.source.Model,
			Request:   req,
			Result:    result,
		}
		if err := c.store.Save(ctx, rec); err != nil {
			c.logger.Error("failed to record classification", "error", err)
		}
	}

	return result, nil
}

func containsLabel(categories model.Categories, label string) bool {
	for _, c := range categories {
		if c == label {
			return true
		}
	}
	return false
}
