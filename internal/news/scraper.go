package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"futures-report/internal/logger"
	"futures-report/internal/types"
)

// Scraper handles scraping commodity news from multiple sources
type Scraper struct {
	sources []NewsSource
	timeout time.Duration
}

// NewsSource defines a news source configuration
type NewsSource struct {
	Name       string
	BaseURL    string
	SearchPath string // e.g., "/search?q={query}"
	Selectors  ArticleSelectors
	RateLimit  time.Duration
}

// ArticleSelectors defines CSS selectors for extracting article data
type ArticleSelectors struct {
	ArticleContainer string
	Title            string
	URL              string
	Content          string
	PublishedAt      string
}

// NewScraper creates a new news scraper with default sources
func NewScraper(timeout time.Duration) *Scraper {
	return &Scraper{
		sources: getDefaultSources(),
		timeout: timeout,
	}
}

// getDefaultSources returns the domestic financial news sources to scrape
func getDefaultSources() []NewsSource {
	return []NewsSource{
		{
			Name:       "Eastmoney",
			BaseURL:    "https://so.eastmoney.com",
			SearchPath: "/news/s?keyword={query}",
			Selectors: ArticleSelectors{
				ArticleContainer: "div.news_item",
				Title:            "div.news_item_t a",
				URL:              "div.news_item_t a",
				Content:          "div.news_item_c",
				PublishedAt:      "span.news_item_time",
			},
			RateLimit: 2 * time.Second,
		},
		{
			Name:       "JRJ",
			BaseURL:    "http://search.jrj.com.cn",
			SearchPath: "/?q={query}&t=news",
			Selectors: ArticleSelectors{
				ArticleContainer: "div.result",
				Title:            "h3 a",
				URL:              "h3 a",
				Content:          "p.des",
				PublishedAt:      "span.time",
			},
			RateLimit: 2 * time.Second,
		},
	}
}

// ScrapeNews fetches news articles about a commodity from all sources.
// The query appends the futures suffix so generic commodity names do
// not drown the results in spot-market noise.
func (s *Scraper) ScrapeNews(ctx context.Context, commodity string, maxArticles int) ([]types.NewsItem, error) {
	logger.Info(ctx, "Starting news scraping", "commodity", commodity, "sources", len(s.sources))

	allItems := []types.NewsItem{}
	itemsPerSource := maxArticles / len(s.sources)
	if itemsPerSource < 1 {
		itemsPerSource = 1
	}

	query := commodity + "期货"
	for _, source := range s.sources {
		items, err := s.scrapeSource(ctx, source, query, itemsPerSource)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to scrape source", err, "source", source.Name, "commodity", commodity)
			continue
		}
		allItems = append(allItems, items...)

		// Rate limiting between sources
		time.Sleep(source.RateLimit)
	}

	logger.Info(ctx, "News scraping completed", "commodity", commodity, "items", len(allItems))
	return allItems, nil
}

// scrapeSource scrapes articles from a single news source
func (s *Scraper) scrapeSource(ctx context.Context, source NewsSource, query string, maxItems int) ([]types.NewsItem, error) {
	items := []types.NewsItem{}

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(source.BaseURL)),
		colly.MaxDepth(1),
		colly.Async(false),
	)

	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	c.OnHTML(source.Selectors.ArticleContainer, func(e *colly.HTMLElement) {
		if len(items) >= maxItems {
			return
		}

		title := strings.TrimSpace(e.ChildText(source.Selectors.Title))
		if title == "" {
			return
		}

		itemURL := e.ChildAttr(source.Selectors.URL, "href")
		if itemURL == "" {
			return
		}
		if !strings.HasPrefix(itemURL, "http") {
			itemURL = source.BaseURL + itemURL
		}

		content := strings.TrimSpace(e.ChildText(source.Selectors.Content))
		publishedAt := strings.TrimSpace(e.ChildText(source.Selectors.PublishedAt))

		items = append(items, types.NewsItem{
			Title:   title,
			URL:     itemURL,
			Content: content,
			Source:  source.Name,
			Date:    publishedAt,
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Scraping error", err, "source", source.Name, "url", r.Request.URL.String())
	})

	searchURL := source.BaseURL + strings.ReplaceAll(source.SearchPath, "{query}", url.QueryEscape(query))

	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", searchURL, err)
	}

	c.Wait()

	return items, nil
}

// getDomain extracts domain from URL
func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
