package classify

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/amishk599/custclassify/internal/model"
)

// rawResult is the JSON shape requested from the model. Pointer fields tell a
// missing key apart from an empty string.
type rawResult struct {
	Category    *string `json:"category"`
	Explanation *string `json:"explanation"`
}

// ParseResponse decodes the model's raw text into a ClassificationResult.
// A surrounding markdown code fence is tolerated. Any failure yields a
// *model.ParseError and a zero result.
func ParseResponse(raw string) (model.ClassificationResult, error) {
	text := stripCodeFence(raw)

	var rr rawResult
	if err := json.Unmarshal([]byte(text), &rr); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return model.ClassificationResult{}, &model.ParseError{
				Kind:  model.ParseKindValidation,
				Field: typeErr.Field,
				Raw:   raw,
				Err:   err,
			}
		}
		return model.ClassificationResult{}, &model.ParseError{Kind: model.ParseKindDecode, Raw: raw, Err: err}
	}

	if err := requireField("category", rr.Category, raw); err != nil {
		return model.ClassificationResult{}, err
	}
	if err := requireField("explanation", rr.Explanation, raw); err != nil {
		return model.ClassificationResult{}, err
	}

	return model.ClassificationResult{
		Category:    *rr.Category,
		Explanation: *rr.Explanation,
	}, nil
}

func requireField(name string, value *string, raw string) error {
	if value == nil {
		return &model.ParseError{Kind: model.ParseKindValidation, Field: name, Raw: raw, Err: errors.New("field required")}
	}
	if strings.TrimSpace(*value) == "" {
		return &model.ParseError{Kind: model.ParseKindValidation, Field: name, Raw: raw, Err: errors.New("must not be empty")}
	}
	return nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add despite
// being told to output bare JSON.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
