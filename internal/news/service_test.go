package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"futures-report/internal/types"
)

func TestRelevanceScoring(t *testing.T) {
	item := types.NewsItem{
		Title:   "螺纹钢期货今日行情",
		Content: "螺纹钢价格涨跌互现，主力合约交易活跃",
	}
	// commodity 5 + 期货/价格/涨跌/行情/合约/交易 6 + 今日 0.5
	got := Relevance(item, "螺纹钢")
	if got != 10 {
		t.Errorf("relevance = %v, want capped at 10", got)
	}

	weak := types.NewsItem{Title: "铜价走势", Content: "铜期货价格"}
	if Relevance(weak, "螺纹钢") != 2 {
		t.Errorf("relevance = %v, want 2 for market keywords only", Relevance(weak, "螺纹钢"))
	}

	none := types.NewsItem{Title: "体育新闻", Content: "昨天的比赛结果"}
	if IsRelevant(none, "螺纹钢") {
		t.Error("item with no market content marked relevant")
	}
}

func TestRankOrdersAndCaps(t *testing.T) {
	items := []types.NewsItem{
		{Title: "无关内容", Content: "天气预报"},
		{Title: "铜期货小涨", Content: "铜价格"},
		{Title: "螺纹钢期货大涨", Content: "螺纹钢价格行情，主力合约"},
		{Title: "螺纹钢市场", Content: "螺纹钢"},
	}

	ranked := Rank(items, "螺纹钢", 2)
	if len(ranked) != 2 {
		t.Fatalf("ranked = %d items, want 2", len(ranked))
	}
	if ranked[0].Title != "螺纹钢期货大涨" {
		t.Errorf("top item = %q, want the richest match first", ranked[0].Title)
	}
	if ranked[0].Relevance < ranked[1].Relevance {
		t.Error("ranking not descending by relevance")
	}
}

func TestRankDedupesByTitle(t *testing.T) {
	items := []types.NewsItem{
		{Title: "螺纹钢期货行情", Content: "螺纹钢价格", Source: "Eastmoney"},
		{Title: "螺纹钢期货行情", Content: "螺纹钢价格", Source: "Serper"},
		{Title: " 螺纹钢期货行情 ", Content: "螺纹钢价格", Source: "JRJ"},
	}
	ranked := Rank(items, "螺纹钢", 10)
	if len(ranked) != 1 {
		t.Fatalf("ranked = %d items, want 1 after dedupe", len(ranked))
	}
	if ranked[0].Source != "Eastmoney" {
		t.Errorf("kept %q, want first occurrence", ranked[0].Source)
	}
}

func TestNewsCacheExpiry(t *testing.T) {
	cache := &newsCache{
		data: make(map[string]*cacheEntry),
		ttl:  50 * time.Millisecond,
	}

	items := []types.NewsItem{{Title: "螺纹钢期货行情"}}
	cache.set("rb|2026-08-28", items)

	if got, ok := cache.get("rb|2026-08-28"); !ok || len(got) != 1 {
		t.Fatal("fresh entry not returned")
	}

	time.Sleep(60 * time.Millisecond)
	if _, ok := cache.get("rb|2026-08-28"); ok {
		t.Error("expired entry still returned")
	}

	// The next write sweeps out everything past its ttl.
	cache.set("cu|2026-08-28", items)
	if len(cache.data) != 1 {
		t.Errorf("cache holds %d entries after sweep, want 1", len(cache.data))
	}
	if _, ok := cache.data["rb|2026-08-28"]; ok {
		t.Error("set left expired entry behind")
	}
}

func TestEnrichStopsOnCancelledContext(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, "<html><body><article><p>螺纹钢期货价格延续上涨走势，主力合约表现活跃。</p></article></body></html>")
	}))
	defer srv.Close()

	cfg := DefaultServiceConfig()
	cfg.TopRefs = 3
	s := NewService(cfg)

	items := []types.NewsItem{
		{Title: "a", URL: srv.URL + "/1", Content: "短"},
		{Title: "b", URL: srv.URL + "/2", Content: "短"},
		{Title: "c", URL: srv.URL + "/3", Content: "短"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	s.enrich(ctx, items)
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("enrich took %v on cancelled context, want immediate return", elapsed)
	}
	if requests > 0 {
		t.Errorf("enrich fetched %d articles on cancelled context, want 0", requests)
	}
}

func TestServiceWithoutChannels(t *testing.T) {
	cfg := DefaultServiceConfig()
	cfg.EnableScrape = false
	s := NewService(cfg)
	if s.serper != nil {
		t.Fatal("serper client created without api key")
	}
}
