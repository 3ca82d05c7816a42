package service

import (
	"context"
	"errors"
)

// ErrNoAnswer is returned when the provider responds without any
// generated candidates.
var ErrNoAnswer = errors.New("no answer generated")

// AIService is the generation adapter: the single network-facing call
// of the pipeline. Implementations must respect ctx cancellation so
// the caller can bound the call with a timeout. A failure here is
// always distinct from an empty or short answer.
type AIService interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
