package session

import (
	"errors"
	"math"
	"time"

	"futures-report/internal/types"
)

// Clock is the exchange timezone. The upstream minute feed reports
// timestamps in Beijing time regardless of where the process runs.
var Clock = time.FixedZone("CST", 8*3600)

// Session windows, fixed for all commodities. The night window is the
// widest plausible one (different commodities close between 23:00 and
// 03:00); whatever bars fall inside it belong to the night session.
const (
	dayOpenHour    = 9
	dayCloseHour   = 15
	nightOpenHour  = 21
	nightCloseHour = 3 // on the following calendar day

	// DefaultMaxLookback bounds the backward search for a trading day.
	// A week is enough to step over any weekend plus a holiday cluster;
	// anything older means the symbol itself is the problem.
	DefaultMaxLookback = 7
)

// ErrTradingDayNotFound is returned when no candidate date within the
// lookback window has day-session data. It indicates a data or symbol
// problem, not a short series, and callers must halt on it.
var ErrTradingDayNotFound = errors.New("no trading day with day-session data within lookback window")

// Resolved is the outcome of a successful backward search.
type Resolved struct {
	Date   time.Time // midnight of the trading day, exchange clock
	Offset int       // calendar days stepped back from the nominal date
}

// Clean drops bars the upstream feed should never have produced:
// timestamps that do not strictly increase, and samples whose high is
// below their low. One corrupt sample must not sink a whole report.
func Clean(bars []types.Bar) []types.Bar {
	out := make([]types.Bar, 0, len(bars))
	var last time.Time
	for _, b := range bars {
		if !last.IsZero() && !b.Ts.After(last) {
			continue
		}
		if b.High < b.Low {
			continue
		}
		out = append(out, b)
		last = b.Ts
	}
	return out
}

// ResolveTradingDay walks backward from the nominal report date looking
// for the most recent date with a non-empty day session. The feed is
// not calendar-aware: weekends and holidays just produce empty windows,
// so candidates are probed one day at a time, starting the day before
// the nominal date.
func ResolveTradingDay(nominal time.Time, bars []types.Bar, maxLookback int) (Resolved, error) {
	if maxLookback <= 0 {
		maxLookback = DefaultMaxLookback
	}
	base := Midnight(nominal)
	for offset := 1; offset <= maxLookback; offset++ {
		candidate := base.AddDate(0, 0, -offset)
		if len(DayWindow(bars, candidate)) > 0 {
			return Resolved{Date: candidate, Offset: offset}, nil
		}
	}
	return Resolved{}, ErrTradingDayNotFound
}

// Midnight truncates t to the start of its calendar day on the
// exchange clock.
func Midnight(t time.Time) time.Time {
	lt := t.In(Clock)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, Clock)
}

// DayWindow returns the bars inside [date 09:00, date 15:00].
func DayWindow(bars []types.Bar, date time.Time) []types.Bar {
	d := Midnight(date)
	start := d.Add(dayOpenHour * time.Hour)
	end := d.Add(dayCloseHour * time.Hour)
	return window(bars, start, end)
}

// NightWindow returns the bars inside [date 21:00, date+1 03:00].
func NightWindow(bars []types.Bar, date time.Time) []types.Bar {
	d := Midnight(date)
	start := d.Add(nightOpenHour * time.Hour)
	end := d.AddDate(0, 0, 1).Add(nightCloseHour * time.Hour)
	return window(bars, start, end)
}

func window(bars []types.Bar, start, end time.Time) []types.Bar {
	out := []types.Bar{}
	for _, b := range bars {
		ts := b.Ts.In(Clock)
		if ts.Before(start) || ts.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Partition builds the market summary for an already-resolved trading
// date. Both windows are filtered from the in-memory series; there is
// no per-window fetch. An empty night session comes back unavailable,
// which is a normal state for commodities without night trading.
func Partition(bars []types.Bar, date time.Time) types.MarketSummary {
	return types.MarketSummary{
		Day:   stats(DayWindow(bars, date)),
		Night: stats(NightWindow(bars, date)),
	}
}

func stats(win []types.Bar) types.SessionStats {
	if len(win) == 0 {
		nan := math.NaN()
		return types.SessionStats{Open: nan, High: nan, Low: nan, Close: nan, Change: nan, ChangePct: nan}
	}
	s := types.SessionStats{
		Open:  win[0].Open,
		Close: win[len(win)-1].Close,
		High:  win[0].High,
		Low:   win[0].Low,
		Bars:  len(win),
	}
	for _, b := range win[1:] {
		if b.High > s.High {
			s.High = b.High
		}
		if b.Low < s.Low {
			s.Low = b.Low
		}
	}
	s.Change = s.Close - s.Open
	if s.Open != 0 {
		s.ChangePct = s.Change / s.Open * 100
	}
	return s
}
