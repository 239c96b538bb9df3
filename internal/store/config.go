package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode string `yaml:"mode"`
	Feed struct {
		Source         string `yaml:"source"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"feed"`
	Session struct {
		MaxLookbackDays int `yaml:"max_lookback_days"`
	} `yaml:"session"`
	LLM struct {
		Provider       string  `yaml:"provider"`
		Model          string  `yaml:"model"`
		Endpoint       string  `yaml:"endpoint"`
		MaxTokens      int     `yaml:"max_tokens"`
		Temperature    float32 `yaml:"temperature"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
	} `yaml:"llm"`
	News struct {
		MaxItems             int      `yaml:"max_items"`
		TopRefs              int      `yaml:"top_refs"`
		DaysBack             int      `yaml:"days_back"`
		CacheMinutes         int      `yaml:"cache_minutes"`
		ScrapeTimeoutSeconds int      `yaml:"scrape_timeout_seconds"`
		EnableSerper         bool     `yaml:"enable_serper"`
		EnableScrape         bool     `yaml:"enable_scrape"`
		EnableRSS            bool     `yaml:"enable_rss"`
		RSSFeeds             []string `yaml:"rss_feeds"`
		Dimensions           []string `yaml:"dimensions"`
	} `yaml:"news"`
	Report struct {
		OutDir string `yaml:"out_dir"`
	} `yaml:"report"`
	Symbols []struct {
		Contract  string `yaml:"contract"`
		Commodity string `yaml:"commodity"`
	} `yaml:"symbols"`
	Schedule string `yaml:"schedule"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if c.Feed.Source != "SINA" && c.Feed.Source != "STATIC" {
		return fmt.Errorf("invalid feed.source '%s': must be 'SINA' or 'STATIC'", c.Feed.Source)
	}
	if c.LLM.Provider != "DEEPSEEK" && c.LLM.Provider != "NOOP" {
		return fmt.Errorf("invalid llm.provider '%s': must be 'DEEPSEEK' or 'NOOP'", c.LLM.Provider)
	}
	if len(c.Symbols) == 0 {
		return errors.New("symbols cannot be empty")
	}
	for i, s := range c.Symbols {
		if s.Contract == "" || s.Commodity == "" {
			return fmt.Errorf("symbols[%d]: contract and commodity are required", i)
		}
	}
	if c.Session.MaxLookbackDays < 0 {
		return fmt.Errorf("session.max_lookback_days must be >= 0, got %d", c.Session.MaxLookbackDays)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Mode == "" {
		c.Mode = "DRY_RUN"
	}
	if c.Feed.Source == "" {
		c.Feed.Source = "STATIC"
	}
	if c.Feed.TimeoutSeconds == 0 {
		c.Feed.TimeoutSeconds = 15
	}
	if c.Session.MaxLookbackDays == 0 {
		c.Session.MaxLookbackDays = 7
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "NOOP"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "deepseek-chat"
	}
	if c.LLM.Endpoint == "" {
		c.LLM.Endpoint = "https://api.deepseek.com/v1/chat/completions"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1200
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 60
	}
	if c.News.MaxItems == 0 {
		c.News.MaxItems = 25
	}
	if c.News.TopRefs == 0 {
		c.News.TopRefs = 8
	}
	if c.News.DaysBack == 0 {
		c.News.DaysBack = 3
	}
	if c.News.CacheMinutes == 0 {
		c.News.CacheMinutes = 30
	}
	if c.News.ScrapeTimeoutSeconds == 0 {
		c.News.ScrapeTimeoutSeconds = 20
	}
	if len(c.News.Dimensions) == 0 {
		c.News.Dimensions = DefaultDimensions()
	}
	if c.Report.OutDir == "" {
		c.Report.OutDir = "reports"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

// DefaultDimensions lists the professional research angles queried for
// every commodity when the config does not override them.
func DefaultDimensions() []string {
	return []string{
		"库存仓单",
		"基差分析",
		"期限结构",
		"持仓席位",
		"供需分析",
		"产业链",
		"进出口",
		"宏观政策",
	}
}
