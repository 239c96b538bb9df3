package news

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"futures-report/internal/logger"
	"futures-report/internal/types"
)

// Service collects and ranks commodity news with caching
type Service struct {
	scraper *Scraper
	serper  *SerperClient
	cache   *newsCache
	cfg     *ServiceConfig
}

// ServiceConfig configures the news collection service
type ServiceConfig struct {
	MaxItems      int           // Cap on merged items per collection
	TopRefs       int           // References listed in the document
	DaysBack      int           // Search window in days
	CacheDuration time.Duration // How long to cache collected news
	ScrapeTimeout time.Duration // Timeout for scraping operations
	EnableSerper  bool
	EnableScrape  bool
	EnableRSS     bool
	RSSFeeds      []string
	Dimensions    []string
	SerperAPIKey  string
}

// DefaultServiceConfig returns default configuration
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxItems:      25,
		TopRefs:       8,
		DaysBack:      3,
		CacheDuration: 30 * time.Minute,
		ScrapeTimeout: 20 * time.Second,
		EnableScrape:  true,
	}
}

// newsCache stores collection results temporarily
type newsCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
}

type cacheEntry struct {
	items     []types.NewsItem
	timestamp time.Time
}

func newNewsCache(ttl time.Duration) *newsCache {
	return &newsCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
	}
}

func (c *newsCache) get(key string) ([]types.NewsItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[key]
	if !exists {
		return nil, false
	}
	if time.Since(entry.timestamp) > c.ttl {
		return nil, false
	}
	return entry.items, true
}

// set stores a collection result and sweeps expired entries while the
// lock is held, so the cache needs no background goroutine.
func (c *newsCache) set(key string, items []types.NewsItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, entry := range c.data {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.data, k)
		}
	}
	c.data[key] = &cacheEntry{
		items:     items,
		timestamp: now,
	}
}

// NewService creates a new news collection service
func NewService(cfg *ServiceConfig) *Service {
	if cfg == nil {
		cfg = DefaultServiceConfig()
	}

	s := &Service{
		scraper: NewScraper(cfg.ScrapeTimeout),
		cache:   newNewsCache(cfg.CacheDuration),
		cfg:     cfg,
	}
	if cfg.EnableSerper && cfg.SerperAPIKey != "" {
		s.serper = NewSerperClient(cfg.SerperAPIKey, cfg.ScrapeTimeout)
	}
	return s
}

// Collect gathers news for a commodity and report date from all
// enabled channels, merged, deduplicated by title, ranked by relevance
// and capped. Collection never fails the report: a dead channel just
// contributes nothing.
func (s *Service) Collect(ctx context.Context, commodity string, date time.Time) []types.NewsItem {
	key := commodity + "|" + date.Format("2006-01-02")
	if cached, ok := s.cache.get(key); ok {
		logger.Info(ctx, "Using cached news", "commodity", commodity, "items", len(cached))
		return cached
	}

	timer := logger.StartOperation(ctx, "news.collect", "commodity", commodity)

	merged := []types.NewsItem{}

	if s.serper != nil {
		items, err := s.serper.SearchCommodity(ctx, commodity, date, s.cfg.MaxItems)
		if err != nil {
			logger.ErrorWithErr(ctx, "Serper collection failed", err, "commodity", commodity)
		} else {
			merged = append(merged, items...)
		}
	}

	if s.cfg.EnableScrape {
		items, err := s.scraper.ScrapeNews(ctx, commodity, s.cfg.MaxItems)
		if err != nil {
			logger.ErrorWithErr(ctx, "Scrape collection failed", err, "commodity", commodity)
		} else {
			merged = append(merged, items...)
		}
	}

	if s.cfg.EnableRSS && len(s.cfg.RSSFeeds) > 0 {
		merged = append(merged, FetchRSS(ctx, s.cfg.RSSFeeds, commodity, s.cfg.ScrapeTimeout)...)
	}

	ranked := Rank(merged, commodity, s.cfg.MaxItems)
	if s.cfg.EnableScrape {
		s.enrich(ctx, ranked)
	}

	s.cache.set(key, ranked)
	timer.End("items", len(ranked))
	return ranked
}

// enrich replaces snippet-length content on the reference items with
// the full article body. Only the items that will be cited are worth a
// page fetch.
func (s *Service) enrich(ctx context.Context, items []types.NewsItem) {
	n := s.cfg.TopRefs
	if n > len(items) {
		n = len(items)
	}
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			return
		}
		if len([]rune(items[i].Content)) >= 120 || items[i].URL == "" {
			continue
		}
		if body := FetchArticle(ctx, items[i].URL, s.cfg.ScrapeTimeout); body != "" {
			items[i].Content = body
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// Rank filters irrelevant items, scores the rest, deduplicates by
// title and returns the top n by relevance.
func Rank(items []types.NewsItem, commodity string, n int) []types.NewsItem {
	scored := []types.NewsItem{}
	for _, item := range items {
		if !IsRelevant(item, commodity) {
			continue
		}
		item.Relevance = Relevance(item, commodity)
		scored = append(scored, item)
	}

	scored = dedupeByTitle(scored)

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Relevance > scored[j].Relevance
	})

	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

// dedupeByTitle keeps the first occurrence of each normalized title.
// Search and scraping overlap heavily on popular stories.
func dedupeByTitle(items []types.NewsItem) []types.NewsItem {
	seen := make(map[string]bool, len(items))
	out := make([]types.NewsItem, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.Title))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

// ClearCache removes all cached news
func (s *Service) ClearCache() {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	s.cache.data = make(map[string]*cacheEntry)
}
