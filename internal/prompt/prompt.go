package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/amishk599/custclassify/internal/ai"
	"github.com/amishk599/custclassify/internal/model"
)

// SystemMessage pins the model to JSON-only output.
const SystemMessage = "You are a system. You will only output JSON"

//go:embed prompts/classify.md
var classifyPromptRaw string

//go:embed prompts/format_instructions.md
var formatInstructionsRaw string

// FormatInstructions describes the exact JSON shape the model must emit.
var FormatInstructions = strings.TrimRight(formatInstructionsRaw, "\n")

// ClassifyTemplate is the parsed customer classification prompt.
// Parsed once at package init; reused on every Build call.
var ClassifyTemplate = template.Must(template.New("classify").Parse(strings.TrimRight(classifyPromptRaw, "\n")))

// Builder renders classification prompts.
type Builder struct {
	tmpl *template.Template
}

// NewBuilder returns a Builder using ClassifyTemplate.
func NewBuilder() *Builder {
	return &Builder{tmpl: ClassifyTemplate}
}

// NewBuilderWithTemplate returns a Builder that renders tmpl instead of the
// embedded prompt. The template sees CustomerInformation, Industry,
// Categories and FormatInstructions, all as strings.
func NewBuilderWithTemplate(tmpl *template.Template) *Builder {
	return &Builder{tmpl: tmpl}
}

// Build embeds the request fields and the format instructions into the prompt.
// Inputs are not validated; empty values are rendered as-is.
func (b *Builder) Build(req model.ClassificationRequest) (string, error) {
	var buf bytes.Buffer
	err := b.tmpl.Execute(&buf, struct {
		CustomerInformation string
		Industry            string
		Categories          string
		FormatInstructions  string
	}{
		CustomerInformation: req.CustomerInformation,
		Industry:            req.Industry,
		Categories:          req.Categories.String(),
		FormatInstructions:  FormatInstructions,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

// Messages returns the system instruction followed by the rendered prompt.
func (b *Builder) Messages(req model.ClassificationRequest) ([]ai.Message, error) {
	text, err := b.Build(req)
	if err != nil {
		return nil, err
	}
	return []ai.Message{
		{Role: ai.RoleSystem, Content: SystemMessage},
		{Role: ai.RoleUser, Content: text},
	}, nil
}
