package model

import (
	"context"
	"strings"
	"time"
)

// ClassificationRequest is the input for a single classification.
type ClassificationRequest struct {
	CustomerInformation string     // free-text description of the customer
	Industry            string     // industry the categories apply to
	Categories          Categories // candidate labels, in the order presented to the model
}

// ClassificationResult is the model's decoded answer.
type ClassificationResult struct {
	Category    string `json:"category"`
	Explanation string `json:"explanation"`
}

// Categories is an ordered list of candidate labels.
type Categories []string

// String renders the list as a bracketed, single-quoted sequence, e.g.
// ['best customer', 'good customer', 'bad customer'].
func (c Categories) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, label := range c {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteLabel(label))
	}
	b.WriteByte(']')
	return b.String()
}

// quoteLabel single-quotes a label, switching to double quotes when the label
// itself contains a single quote and no double quote.
func quoteLabel(label string) string {
	if strings.Contains(label, "'") && !strings.Contains(label, `"`) {
		return `"` + label + `"`
	}
	return "'" + strings.ReplaceAll(label, "'", `\'`) + "'"
}

// Record is a classification as written to history.
type Record struct {
	ID        int64
	CreatedAt time.Time
	Provider  string
	Model     string
	Request   ClassificationRequest
	Result    ClassificationResult
}

// ResultStore keeps successful classifications.
type ResultStore interface {
	Save(ctx context.Context, rec Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
}
