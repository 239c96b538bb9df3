package news

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"futures-report/internal/api"
	"futures-report/internal/logger"
)

// FetchArticle downloads an article page and extracts its body text.
// Only the common Chinese finance-portal layouts are tried; anything
// else returns empty and the caller keeps the search snippet.
func FetchArticle(ctx context.Context, articleURL string, timeout time.Duration) string {
	client := api.NewClient(api.WithTimeout(timeout))
	resp, err := client.GET(ctx, articleURL, api.BrowserHeaders())
	if err != nil {
		logger.Warn(ctx, "Article fetch failed", "url", articleURL, "error", err)
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return ""
	}
	return extractBody(doc)
}

func extractBody(doc *goquery.Document) string {
	selectors := []string{
		"div.article-content",
		"div#ContentBody",
		"div.texttit_m1",
		"article",
		"div.content",
	}

	for _, sel := range selectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		paragraphs := []string{}
		node.Find("p").Each(func(_ int, p *goquery.Selection) {
			text := strings.TrimSpace(p.Text())
			if len([]rune(text)) > 10 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) > 0 {
			return strings.Join(paragraphs, "\n\n")
		}
	}
	return ""
}
