package news

import (
	"context"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"futures-report/internal/logger"
	"futures-report/internal/types"
)

// FetchRSS pulls items from the configured RSS feeds and keeps the
// ones mentioning the commodity. Feeds are a low-yield supplement to
// search scraping, so per-feed failures are logged and skipped.
func FetchRSS(ctx context.Context, feeds []string, commodity string, timeout time.Duration) []types.NewsItem {
	items := []types.NewsItem{}

	for _, feedURL := range feeds {
		c := colly.NewCollector()
		c.SetRequestTimeout(timeout)

		c.OnXML("//item", func(e *colly.XMLElement) {
			title := strings.TrimSpace(e.ChildText("title"))
			if title == "" || !strings.Contains(title, commodity) {
				return
			}
			items = append(items, types.NewsItem{
				Title:   title,
				URL:     strings.TrimSpace(e.ChildText("link")),
				Content: strings.TrimSpace(e.ChildText("description")),
				Date:    strings.TrimSpace(e.ChildText("pubDate")),
				Source:  "RSS",
			})
		})

		c.OnError(func(r *colly.Response, err error) {
			logger.Warn(ctx, "RSS feed fetch failed", "url", r.Request.URL.String(), "error", err)
		})

		if err := c.Visit(feedURL); err != nil {
			logger.Warn(ctx, "RSS feed unreachable", "url", feedURL, "error", err)
			continue
		}
		c.Wait()
	}

	logger.Info(ctx, "RSS collection completed", "commodity", commodity, "feeds", len(feeds), "items", len(items))
	return items
}
