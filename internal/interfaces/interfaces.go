package interfaces

import (
	"context"

	"futures-report/internal/types"
)

// Feed supplies minute bars for a futures contract. Implementations
// return whatever history the upstream source keeps; callers filter by
// session window in memory.
type Feed interface {
	MinuteBars(ctx context.Context, symbol string) ([]types.Bar, error)
}

// Generator produces narrative text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Writer renders a finished report to a document and returns its path.
type Writer interface {
	Write(req types.ReportRequest, result *types.ReportResult) (string, error)
}
