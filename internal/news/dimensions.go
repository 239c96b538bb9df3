package news

import (
	"context"
	"fmt"
	"time"

	"futures-report/internal/logger"
	"futures-report/internal/types"
)

const (
	queriesPerDimension = 2
	hitsPerQuery        = 2
)

// ProfessionalData gathers research material for each configured
// dimension, such as inventory, basis, or term structure. Every
// dimension runs two query phrasings with two hits each; a dimension
// with no hits stays in the map with an empty slice so the narrative
// can state the gap instead of skipping it silently.
func (s *Service) ProfessionalData(ctx context.Context, commodity string, date time.Time) map[string][]types.NewsItem {
	timer := logger.StartOperation(ctx, "news.professional_data", "commodity", commodity)
	defer timer.End()

	out := make(map[string][]types.NewsItem, len(s.cfg.Dimensions))
	for _, dim := range s.cfg.Dimensions {
		out[dim] = s.dimensionHits(ctx, commodity, dim, date)
	}
	return out
}

func (s *Service) dimensionHits(ctx context.Context, commodity, dimension string, date time.Time) []types.NewsItem {
	if s.serper == nil {
		return nil
	}

	queries := []string{
		fmt.Sprintf("%s期货 %s %s", commodity, dimension, date.Format("2006-01")),
		fmt.Sprintf("%s %s 数据", commodity, dimension),
	}

	items := []types.NewsItem{}
	for _, q := range queries[:queriesPerDimension] {
		hits, err := s.serper.Search(ctx, q, hitsPerQuery)
		if err != nil {
			logger.Warn(ctx, "Dimension search failed", "commodity", commodity, "dimension", dimension, "error", err)
			continue
		}
		for i := range hits {
			hits[i].Category = dimension
		}
		items = append(items, hits...)
	}
	return dedupeByTitle(items)
}
