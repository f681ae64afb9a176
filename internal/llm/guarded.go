package llm

import (
	"context"
	"errors"

	"healthdocs-backend/internal/shared/resilience"
)

// Guarded runs a Classifier behind a circuit breaker.
type Guarded struct {
	Next     Classifier
	Exec     *resilience.Executor
	Provider string
}

func (g Guarded) Classify(ctx context.Context, input ClassifyInput) (Classification, error) {
	var out Classification
	err := g.Exec.Execute(ctx, "classify."+g.Provider, func(ctx context.Context) error {
		var err error
		out, err = g.Next.Classify(ctx, input)
		return err
	})
	return out, err
}

// IsBenign reports classifier errors that say nothing about provider health.
func IsBenign(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}
