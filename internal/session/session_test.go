package session

import (
	"errors"
	"math"
	"testing"
	"time"

	"futures-report/internal/types"
)

// minuteBars fills a window with one bar per minute at the given price.
func minuteBars(start, end time.Time, price float64) []types.Bar {
	var bars []types.Bar
	for ts := start; !ts.After(end); ts = ts.Add(time.Minute) {
		bars = append(bars, types.Bar{Ts: ts, Open: price, High: price + 1, Low: price - 1, Close: price})
	}
	return bars
}

func tradingDay(date time.Time, price float64) []types.Bar {
	d := Midnight(date)
	bars := minuteBars(d.Add(9*time.Hour), d.Add(15*time.Hour), price)
	bars = append(bars, minuteBars(d.Add(21*time.Hour), d.AddDate(0, 0, 1).Add(1*time.Hour), price+5)...)
	return bars
}

func TestResolveSkipsWeekend(t *testing.T) {
	friday := time.Date(2026, 8, 28, 0, 0, 0, 0, Clock)
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, Clock)

	bars := tradingDay(friday, 3800)
	got, err := ResolveTradingDay(monday, bars, 0)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !got.Date.Equal(friday) {
		t.Errorf("resolved %v, want %v", got.Date, friday)
	}
	if got.Offset != 3 {
		t.Errorf("offset = %d, want 3", got.Offset)
	}
}

func TestResolveNominalDateNotCandidate(t *testing.T) {
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, Clock)

	// Data only on the nominal date itself: the search starts the day
	// before and must exhaust the window.
	bars := tradingDay(monday, 3800)
	_, err := ResolveTradingDay(monday, bars, 7)
	if !errors.Is(err, ErrTradingDayNotFound) {
		t.Errorf("err = %v, want ErrTradingDayNotFound", err)
	}
}

func TestResolveExhaustsLookback(t *testing.T) {
	nominal := time.Date(2026, 8, 31, 0, 0, 0, 0, Clock)
	old := nominal.AddDate(0, 0, -10)

	bars := tradingDay(old, 3800)
	_, err := ResolveTradingDay(nominal, bars, 7)
	if !errors.Is(err, ErrTradingDayNotFound) {
		t.Errorf("err = %v, want ErrTradingDayNotFound", err)
	}
}

func TestPartitionDayOnlyFeed(t *testing.T) {
	date := time.Date(2026, 8, 28, 0, 0, 0, 0, Clock)
	bars := minuteBars(date.Add(9*time.Hour), date.Add(15*time.Hour), 3800)

	sum := Partition(bars, date)
	if !sum.Day.Available() {
		t.Fatal("day session unavailable with day bars present")
	}
	if sum.Night.Available() {
		t.Error("night session available with no night bars")
	}
	if !math.IsNaN(sum.Night.Close) {
		t.Errorf("night close = %v, want NaN", sum.Night.Close)
	}
}

func TestPartitionStats(t *testing.T) {
	date := time.Date(2026, 8, 28, 0, 0, 0, 0, Clock)
	d := date
	bars := []types.Bar{
		{Ts: d.Add(9 * time.Hour), Open: 100, High: 103, Low: 99, Close: 102},
		{Ts: d.Add(10 * time.Hour), Open: 102, High: 110, Low: 101, Close: 108},
		{Ts: d.Add(14 * time.Hour), Open: 108, High: 109, Low: 95, Close: 104},
	}
	sum := Partition(bars, date)
	day := sum.Day
	if day.Open != 100 || day.Close != 104 {
		t.Errorf("open/close = %v/%v, want 100/104", day.Open, day.Close)
	}
	if day.High != 110 || day.Low != 95 {
		t.Errorf("high/low = %v/%v, want 110/95", day.High, day.Low)
	}
	if day.Change != 4 {
		t.Errorf("change = %v, want 4", day.Change)
	}
	if math.Abs(day.ChangePct-4.0) > 1e-9 {
		t.Errorf("change pct = %v, want 4", day.ChangePct)
	}
	if day.Bars != 3 {
		t.Errorf("bars = %d, want 3", day.Bars)
	}
}

func TestWindowBoundsInclusive(t *testing.T) {
	date := time.Date(2026, 8, 28, 0, 0, 0, 0, Clock)
	bars := []types.Bar{
		{Ts: date.Add(8*time.Hour + 59*time.Minute), Open: 1, High: 2, Low: 0, Close: 1},
		{Ts: date.Add(9 * time.Hour), Open: 1, High: 2, Low: 0, Close: 1},
		{Ts: date.Add(15 * time.Hour), Open: 1, High: 2, Low: 0, Close: 1},
		{Ts: date.Add(15*time.Hour + time.Minute), Open: 1, High: 2, Low: 0, Close: 1},
		{Ts: date.Add(21 * time.Hour), Open: 1, High: 2, Low: 0, Close: 1},
		{Ts: date.AddDate(0, 0, 1).Add(3 * time.Hour), Open: 1, High: 2, Low: 0, Close: 1},
		{Ts: date.AddDate(0, 0, 1).Add(3*time.Hour + time.Minute), Open: 1, High: 2, Low: 0, Close: 1},
	}
	if got := len(DayWindow(bars, date)); got != 2 {
		t.Errorf("day window bars = %d, want 2", got)
	}
	if got := len(NightWindow(bars, date)); got != 2 {
		t.Errorf("night window bars = %d, want 2", got)
	}
}

func TestClean(t *testing.T) {
	base := time.Date(2026, 8, 28, 9, 0, 0, 0, Clock)
	bars := []types.Bar{
		{Ts: base, Open: 100, High: 101, Low: 99, Close: 100},
		{Ts: base, Open: 100, High: 101, Low: 99, Close: 100},                      // duplicate timestamp
		{Ts: base.Add(time.Minute), Open: 100, High: 98, Low: 102, Close: 100},     // high below low
		{Ts: base.Add(2 * time.Minute), Open: 100, High: 101, Low: 99, Close: 100},
		{Ts: base.Add(time.Minute), Open: 100, High: 101, Low: 99, Close: 100},     // out of order
	}
	got := Clean(bars)
	if len(got) != 2 {
		t.Fatalf("kept %d bars, want 2", len(got))
	}
	if !got[1].Ts.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("unexpected surviving bar %v", got[1].Ts)
	}
}
