package feed

import (
	"context"
	"hash/fnv"
	"math"
	"time"

	"futures-report/internal/session"
	"futures-report/internal/types"
)

// StaticFeed generates deterministic synthetic minute bars for dry runs
// and tests. The series covers the last ten weekdays before the anchor
// date, with both a day and a night session per trading day, so the
// session resolver and indicator engine see realistic shapes without a
// network dependency.
type StaticFeed struct {
	anchor time.Time
}

func NewStaticFeed() *StaticFeed {
	return &StaticFeed{anchor: time.Now().In(session.Clock)}
}

// NewStaticFeedAt pins the anchor date, used by tests.
func NewStaticFeedAt(anchor time.Time) *StaticFeed {
	return &StaticFeed{anchor: anchor}
}

func (f *StaticFeed) MinuteBars(_ context.Context, symbol string) ([]types.Bar, error) {
	base := 3000 + float64(seed(symbol)%2000)

	var days []time.Time
	for d := session.Midnight(f.anchor); len(days) < 10; d = d.AddDate(0, 0, -1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days = append(days, d)
	}

	// Oldest day first so timestamps increase monotonically.
	var bars []types.Bar
	for i := len(days) - 1; i >= 0; i-- {
		d := days[i]
		drift := float64(len(days)-1-i) * 3
		bars = append(bars, sessionBars(d.Add(9*time.Hour), 6*60, base+drift, seed(symbol)+uint64(i))...)
		bars = append(bars, sessionBars(d.Add(21*time.Hour), 2*60, base+drift+2, seed(symbol)+uint64(i)*7)...)
	}
	return bars, nil
}

// sessionBars fills a window of n minutes with a slow oscillation
// around the level plus a deterministic wobble.
func sessionBars(start time.Time, n int, level float64, s uint64) []types.Bar {
	bars := make([]types.Bar, 0, n)
	for m := 0; m < n; m++ {
		wave := 8 * math.Sin(float64(m)/45)
		wobble := float64((s+uint64(m)*2654435761)%9) - 4
		c := level + wave + wobble
		o := level + 8*math.Sin(float64(m-1)/45)
		hi := math.Max(o, c) + 1.5
		lo := math.Min(o, c) - 1.5
		bars = append(bars, types.Bar{
			Ts:    start.Add(time.Duration(m) * time.Minute),
			Open:  o,
			High:  hi,
			Low:   lo,
			Close: c,
		})
	}
	return bars
}

func seed(symbol string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	return h.Sum64()
}
