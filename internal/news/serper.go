package news

import (
	"context"
	"fmt"
	"time"

	"futures-report/internal/api"
	"futures-report/internal/logger"
	"futures-report/internal/types"
)

const serperEndpoint = "https://google.serper.dev/search"

// SerperClient queries the Serper search API for commodity news. It
// is the primary collection channel; scraping and RSS backfill it.
type SerperClient struct {
	apiKey string
	client *api.Client
}

func NewSerperClient(apiKey string, timeout time.Duration) *SerperClient {
	return &SerperClient{
		apiKey: apiKey,
		client: api.NewClient(
			api.WithTimeout(timeout),
			api.WithLogging(true),
		),
	}
}

type serperResult struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
		Date    string `json:"date"`
	} `json:"organic"`
	News []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
		Date    string `json:"date"`
		Source  string `json:"source"`
	} `json:"news"`
}

// Search runs one query and converts hits to news items.
func (s *SerperClient) Search(ctx context.Context, query string, maxItems int) ([]types.NewsItem, error) {
	body := map[string]any{
		"q":   query,
		"gl":  "cn",
		"hl":  "zh-cn",
		"num": maxItems,
	}

	resp, err := s.client.POST(ctx, serperEndpoint, body, api.SerperHeaders(s.apiKey))
	if err != nil {
		return nil, fmt.Errorf("serper search %q: %w", query, err)
	}

	var result serperResult
	if err := resp.ParseJSON(&result); err != nil {
		return nil, fmt.Errorf("serper search %q: %w", query, err)
	}

	items := []types.NewsItem{}
	for _, n := range result.News {
		if len(items) >= maxItems {
			break
		}
		source := n.Source
		if source == "" {
			source = "Serper"
		}
		items = append(items, types.NewsItem{
			Title:   n.Title,
			URL:     n.Link,
			Content: n.Snippet,
			Date:    n.Date,
			Source:  source,
		})
	}
	for _, o := range result.Organic {
		if len(items) >= maxItems {
			break
		}
		items = append(items, types.NewsItem{
			Title:   o.Title,
			URL:     o.Link,
			Content: o.Snippet,
			Date:    o.Date,
			Source:  "Serper",
		})
	}

	logger.Debug(ctx, "Serper search completed", "query", query, "items", len(items))
	return items, nil
}

// SearchCommodity builds the standard daily-news query for a commodity.
func (s *SerperClient) SearchCommodity(ctx context.Context, commodity string, date time.Time, maxItems int) ([]types.NewsItem, error) {
	query := fmt.Sprintf("%s期货 OR %s价格 OR %s市场 %s",
		commodity, commodity, commodity, date.Format("2006-01-02"))
	return s.Search(ctx, query, maxItems)
}
