package types

import (
	"math"
	"strconv"
	"time"
)

// Bar is one minute-resolution OHLC sample from the futures feed.
// Timestamps are expected to be strictly increasing within a series;
// upstream data occasionally violates that (and the high/low envelope),
// which callers tolerate by skipping the bad sample.
type Bar struct {
	Ts                     time.Time
	Open, High, Low, Close float64
}

// IndicatorSet is the result of one indicator computation over a price
// series. Numeric fields use NaN to mean "unavailable" (insufficient
// history); PricePosition is empty in that case. All populated values
// are rounded to 2 decimals.
type IndicatorSet struct {
	MA5, MA10, MA20            float64
	MACD, MACDSignal, MACDHist float64
	RSI14                      float64
	BollUpper, BollLower       float64
	CurrentPrice               float64
	PricePosition              string
}

// SessionStats summarizes one trading session window. Bars == 0 means
// the window had no data and every numeric field is meaningless.
type SessionStats struct {
	Open, High, Low, Close float64
	Change, ChangePct      float64
	Bars                   int
}

func (s SessionStats) Available() bool { return s.Bars > 0 }

// MarketSummary pairs the day-session and night-session stats for one
// resolved trading date. An unavailable night session is a valid state.
type MarketSummary struct {
	Day   SessionStats
	Night SessionStats
}

// NewsItem is one aggregated news result, from any source.
type NewsItem struct {
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	URL       string  `json:"url"`
	Source    string  `json:"source"`
	Date      string  `json:"date"`
	Category  string  `json:"category,omitempty"`
	Relevance float64 `json:"relevance"`
}

// ReportRequest identifies one report-generation run.
type ReportRequest struct {
	Symbol    string    // contract code, e.g. CU2501
	Commodity string    // commodity name used for news search, e.g. 铜
	Date      time.Time // nominal report date
}

// ReportResult carries everything produced by one run. DayBars holds
// the resolved day-session window for the document's price chart.
type ReportResult struct {
	ResolvedDate time.Time
	SkippedDays  int
	Summary      MarketSummary
	Indicators   IndicatorSet
	DayBars      []Bar
	News         []NewsItem
	Professional map[string][]NewsItem
	Description  string
	MainView     string
	NewsDigest   string
	DocPath      string
}

// FormatValue renders a possibly-unavailable numeric field for prompts
// and documents: NaN becomes "N/A".
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
