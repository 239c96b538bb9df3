package news

import (
	"strings"

	"futures-report/internal/types"
)

// Keyword weights for relevance scoring. The commodity name dominates;
// market vocabulary and recency markers break ties between hits that
// all mention it.
var (
	marketKeywords  = []string{"期货", "价格", "涨跌", "行情", "合约", "交易"}
	recencyKeywords = []string{"今日", "昨日", "最新", "最近", "今天"}
)

const maxRelevance = 10

// Relevance scores how useful an item is for a commodity report.
// Scores are capped so a keyword-stuffed page cannot outrank
// everything else.
func Relevance(item types.NewsItem, commodity string) float64 {
	text := item.Title + " " + item.Content
	score := 0.0

	if strings.Contains(text, commodity) {
		score += 5
	}
	for _, kw := range marketKeywords {
		if strings.Contains(text, kw) {
			score += 1
		}
	}
	for _, kw := range recencyKeywords {
		if strings.Contains(text, kw) {
			score += 0.5
		}
	}

	if score > maxRelevance {
		score = maxRelevance
	}
	return score
}

// IsRelevant filters out items that never mention the commodity or any
// market vocabulary.
func IsRelevant(item types.NewsItem, commodity string) bool {
	return Relevance(item, commodity) > 0
}
