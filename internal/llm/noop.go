package llm

import (
	"context"
	"fmt"
)

// NoopGenerator stands in for a real provider in DRY_RUN mode. It
// echoes a short placeholder so documents still render end to end.
type NoopGenerator struct{}

func NewNoopGenerator() *NoopGenerator {
	return &NoopGenerator{}
}

func (g *NoopGenerator) Generate(_ context.Context, prompt string) (string, error) {
	return fmt.Sprintf("[dry-run placeholder, prompt %d chars]", len(prompt)), nil
}
