package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"futures-report/internal/api"
	"futures-report/internal/logger"
	"futures-report/internal/session"
	"futures-report/internal/types"
)

const sinaMinuteURL = "https://stock2.finance.sina.com.cn/futures/api/jsonp.php/var%%20t=/InnerFuturesNewService.getFewMinLine?symbol=%s&type=1"

// SinaFeed pulls 1-minute bars for domestic futures contracts from the
// Sina Finance quote service. The service returns several days of
// history in one call, JSONP-wrapped.
type SinaFeed struct {
	client *api.Client
}

func NewSinaFeed(timeout time.Duration) *SinaFeed {
	return &SinaFeed{
		client: api.NewClient(
			api.WithTimeout(timeout),
			api.WithLogging(true),
		),
	}
}

func (f *SinaFeed) MinuteBars(ctx context.Context, symbol string) ([]types.Bar, error) {
	timer := logger.StartOperation(ctx, "feed.sina.minute_bars", "symbol", symbol)

	url := fmt.Sprintf(sinaMinuteURL, symbol)
	req := api.NewRequest("GET", url).WithContext(ctx)
	for k, v := range api.SinaHeaders() {
		req.WithHeader(k, v)
	}

	resp, err := f.client.DoWithRetry(req, nil)
	if err != nil {
		timer.EndWithError(err)
		return nil, fmt.Errorf("sina feed %s: %w", symbol, err)
	}

	bars, err := parseSinaMinutes(resp.Body)
	if err != nil {
		timer.EndWithError(err)
		return nil, fmt.Errorf("sina feed %s: %w", symbol, err)
	}

	timer.End("bars", len(bars))
	return bars, nil
}

type sinaMinute struct {
	Date  string `json:"d"`
	Open  string `json:"o"`
	High  string `json:"h"`
	Low   string `json:"l"`
	Close string `json:"c"`
}

// parseSinaMinutes unwraps the JSONP payload and decodes the minute
// array. The wrapper varies between deployments, so the JSON body is
// located by bracket position rather than by callback name. Malformed
// rows are skipped; structural cleanup happens in session.Clean.
func parseSinaMinutes(raw []byte) ([]types.Bar, error) {
	s := string(raw)
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in payload (%d bytes)", len(raw))
	}

	var rows []sinaMinute
	if err := json.Unmarshal([]byte(s[start:end+1]), &rows); err != nil {
		return nil, fmt.Errorf("decode minute rows: %w", err)
	}

	bars := make([]types.Bar, 0, len(rows))
	for _, r := range rows {
		ts, err := time.ParseInLocation("2006-01-02 15:04:05", r.Date, session.Clock)
		if err != nil {
			continue
		}
		o, err1 := strconv.ParseFloat(r.Open, 64)
		h, err2 := strconv.ParseFloat(r.High, 64)
		l, err3 := strconv.ParseFloat(r.Low, 64)
		c, err4 := strconv.ParseFloat(r.Close, 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		bars = append(bars, types.Bar{Ts: ts, Open: o, High: h, Low: l, Close: c})
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("no usable bars in %d rows", len(rows))
	}
	return bars, nil
}
