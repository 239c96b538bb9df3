package report

import (
	"fmt"
	"sort"
	"strings"

	"futures-report/internal/types"
)

// Prompt builders for the three narrative sections. Every prompt
// carries the same ground rule: values the data layer marked N/A stay
// N/A in the text, the model must not invent numbers.

const groundRule = "Strict rule: use ONLY the data provided above. " +
	"Where a value reads N/A, state that the data is unavailable. Never invent or estimate numbers."

// MarketDescriptionPrompt asks for the intraday review section.
func MarketDescriptionPrompt(req types.ReportRequest, result *types.ReportResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a futures market analyst. Write the daily market review for %s futures (contract %s), trading day %s.\n\n",
		req.Commodity, req.Symbol, result.ResolvedDate.Format("2006-01-02"))

	b.WriteString("Session data:\n")
	writeSession(&b, "Day session", result.Summary.Day)
	writeSession(&b, "Night session", result.Summary.Night)

	b.WriteString("\nTechnical indicators:\n")
	writeIndicators(&b, result.Indicators)

	b.WriteString("\nWrite one paragraph of 160 to 200 words covering the open, the intraday path, the close and how the close sits against the moving averages and Bollinger bands. Professional tone, no headline, no bullet points.\n")
	b.WriteString(groundRule)
	return b.String()
}

// MainViewPrompt asks for the forward-looking view built on the
// professional research dimensions.
func MainViewPrompt(req types.ReportRequest, result *types.ReportResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a futures market analyst. Write the main analytical view for %s futures (contract %s), trading day %s.\n\n",
		req.Commodity, req.Symbol, result.ResolvedDate.Format("2006-01-02"))

	b.WriteString("Technical indicators:\n")
	writeIndicators(&b, result.Indicators)

	b.WriteString("\nResearch material by dimension:\n")
	dims := make([]string, 0, len(result.Professional))
	for dim := range result.Professional {
		dims = append(dims, dim)
	}
	sort.Strings(dims)
	for _, dim := range dims {
		items := result.Professional[dim]
		if len(items) == 0 {
			fmt.Fprintf(&b, "- %s: no data found\n", dim)
			continue
		}
		fmt.Fprintf(&b, "- %s:\n", dim)
		for _, item := range items {
			fmt.Fprintf(&b, "  * %s: %s\n", item.Title, firstRunes(item.Content, 120))
		}
	}

	b.WriteString("\nWrite 300 to 400 words weighing these dimensions against the technical picture. Where a dimension has no data, say so briefly instead of guessing. End with a one-sentence bias for the next session.\n")
	b.WriteString(groundRule)
	return b.String()
}

// NewsDigestPrompt asks for the news summary with numbered citations.
func NewsDigestPrompt(req types.ReportRequest, result *types.ReportResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a futures market analyst. Summarize today's news for %s futures, trading day %s.\n\n",
		req.Commodity, result.ResolvedDate.Format("2006-01-02"))

	if len(result.News) == 0 {
		b.WriteString("No news was collected today.\n")
		b.WriteString("Write two sentences stating that no market-moving news was found and the report relies on price action alone.\n")
		return b.String()
	}

	b.WriteString("Numbered news items:\n")
	for i, item := range result.News {
		fmt.Fprintf(&b, "[%d] %s (%s) %s\n", i+1, item.Title, item.Source, firstRunes(item.Content, 150))
	}

	b.WriteString("\nWrite 120 to 180 words digesting the items above. Cite items inline with their bracket numbers, e.g. [1]. Only cite numbers that exist in the list.\n")
	b.WriteString(groundRule)
	return b.String()
}

func writeSession(b *strings.Builder, name string, s types.SessionStats) {
	if !s.Available() {
		fmt.Fprintf(b, "- %s: no data\n", name)
		return
	}
	fmt.Fprintf(b, "- %s: open %s, high %s, low %s, close %s, change %s (%s%%), %d bars\n",
		name,
		types.FormatValue(s.Open), types.FormatValue(s.High), types.FormatValue(s.Low),
		types.FormatValue(s.Close), types.FormatValue(s.Change), types.FormatValue(s.ChangePct),
		s.Bars)
}

func writeIndicators(b *strings.Builder, ind types.IndicatorSet) {
	fmt.Fprintf(b, "- MA5 %s, MA10 %s, MA20 %s\n",
		types.FormatValue(ind.MA5), types.FormatValue(ind.MA10), types.FormatValue(ind.MA20))
	fmt.Fprintf(b, "- MACD %s, signal %s, histogram %s\n",
		types.FormatValue(ind.MACD), types.FormatValue(ind.MACDSignal), types.FormatValue(ind.MACDHist))
	fmt.Fprintf(b, "- RSI(14) %s\n", types.FormatValue(ind.RSI14))
	fmt.Fprintf(b, "- Bollinger upper %s, lower %s\n",
		types.FormatValue(ind.BollUpper), types.FormatValue(ind.BollLower))
	pos := ind.PricePosition
	if pos == "" {
		pos = "N/A"
	}
	fmt.Fprintf(b, "- Last price %s, position: %s\n", types.FormatValue(ind.CurrentPrice), pos)
}

func firstRunes(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
