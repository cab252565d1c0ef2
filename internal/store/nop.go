package store

import (
	"context"

	"github.com/amishk599/custclassify/internal/model"
)

// NopStore is used when history is disabled. It discards every record and
// always reports an empty history.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Save(ctx context.Context, rec model.Record) error { return nil }
func (s *NopStore) Recent(ctx context.Context, limit int) ([]model.Record, error) {
	return nil, nil
}
func (s *NopStore) Close() error { return nil }
