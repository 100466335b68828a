package generation

import (
	"context"

	"github.com/nfoster/taskrelay/internal/domain"
)

// Generator defines the interface for producing content from a request.
// This interface serves as a boundary between the application core and
// external AI/LLM services, following the hexagonal architecture pattern.
// The task runner never sees this interface; handlers bind a Generate call
// into a task body closure at submission time.
type Generator interface {
	// Generate produces content for the given request. It returns the
	// generated content or an error if generation fails for any reason
	// (see errors.go for the specific types).
	Generate(ctx context.Context, req domain.ContentRequest) (*domain.GeneratedContent, error)
}
