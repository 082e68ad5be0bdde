package enrich

import (
	"context"

	"astrodeck/internal/nasa"
)

// Noop is the provider used when no enrichment backend is configured.
type Noop struct{}

func (Noop) Enrich(ctx context.Context, apod *nasa.Apod, gradeLevel string) (*Content, error) {
	return nil, nil
}
