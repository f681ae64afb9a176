package extract

import (
	"context"
	"errors"

	"healthdocs-backend/internal/shared/resilience"
)

// Guarded runs an Extractor behind a circuit breaker.
type Guarded struct {
	Next     Extractor
	Exec     *resilience.Executor
	Provider string
}

func (g Guarded) Extract(ctx context.Context, data []byte, mimeType string) (string, error) {
	var text string
	err := g.Exec.Execute(ctx, "extract."+g.Provider, func(ctx context.Context) error {
		var err error
		text, err = g.Next.Extract(ctx, data, mimeType)
		return err
	})
	return text, err
}

// IsBenign reports extractor errors that say nothing about provider health.
func IsBenign(err error) bool {
	return errors.Is(err, ErrUnsupported)
}
