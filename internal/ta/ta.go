package ta

import (
	"math"

	"futures-report/internal/types"
)

// MinBars is the short-circuit threshold: below the Bollinger/MA20
// window every indicator is reported unavailable, since partial
// indicators on a series this short are not worth quoting.
const MinBars = 20

func SMA(closes []float64, n int) float64 {
	if len(closes) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(closes) - n; i < len(closes); i++ {
		sum += closes[i]
	}
	return sum / float64(n)
}

// EMA returns the full exponential moving average series with
// alpha = 2/(span+1), seeded with the first value.
func EMA(vals []float64, span int) []float64 {
	if len(vals) == 0 || span <= 0 {
		return nil
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out := make([]float64, len(vals))
	out[0] = vals[0]
	for i := 1; i < len(vals); i++ {
		out[i] = alpha*vals[i] + (1-alpha)*out[i-1]
	}
	return out
}

// MACD returns the latest MACD line, signal line and histogram for the
// standard 12/26/9 spans.
func MACD(closes []float64) (macd, signal, hist float64) {
	if len(closes) == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	fast := EMA(closes, 12)
	slow := EMA(closes, 26)
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	sig := EMA(line, 9)
	n := len(closes) - 1
	return line[n], sig[n], line[n] - sig[n]
}

// RSI computes the relative strength index over the trailing period
// using simple averages of gains and losses. A series with zero losses
// and positive gains is pinned at 100; a flat series (no gains, no
// losses) has no defined strength and returns NaN.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	gain, loss := 0.0, 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if loss == 0 {
		if gain == 0 {
			return math.NaN()
		}
		return 100.0
	}
	rs := (gain / float64(period)) / (loss / float64(period))
	return 100.0 - (100.0 / (1.0 + rs))
}

// StdDev is the population standard deviation of the trailing n values.
func StdDev(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	m := SMA(vals, n)
	s := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		d := vals[i] - m
		s += d * d
	}
	return math.Sqrt(s / float64(n))
}

func Bollinger(closes []float64, n int, k float64) (mid, up, low float64) {
	mid = SMA(closes, n)
	sd := StdDev(closes, n)
	up = mid + k*sd
	low = mid - k*sd
	return
}

// Closes extracts the close column from a bar series.
func Closes(bars []types.Bar) []float64 {
	cl := make([]float64, len(bars))
	for i, b := range bars {
		cl[i] = b.Close
	}
	return cl
}

// Compute derives the full indicator set from a bar series. It never
// fails: any indicator whose required window exceeds the available
// history comes back as NaN, and a series shorter than MinBars yields
// an entirely unavailable set. Values are rounded to 2 decimals here,
// at the result boundary; everything upstream runs at full precision.
func Compute(bars []types.Bar) types.IndicatorSet {
	set := unavailableSet()
	if len(bars) < MinBars {
		return set
	}

	closes := Closes(bars)

	set.MA5 = round2(SMA(closes, 5))
	set.MA10 = round2(SMA(closes, 10))
	set.MA20 = round2(SMA(closes, 20))

	macd, sig, hist := MACD(closes)
	set.MACD = round2(macd)
	set.MACDSignal = round2(sig)
	set.MACDHist = round2(hist)

	set.RSI14 = round2(RSI(closes, 14))

	mid, up, low := Bollinger(closes, 20, 2.0)
	set.BollUpper = round2(up)
	set.BollLower = round2(low)

	cur := closes[len(closes)-1]
	set.CurrentPrice = round2(cur)
	set.PricePosition = pricePosition(cur, mid, up, low)

	return set
}

func pricePosition(cur, mid, up, low float64) string {
	if math.IsNaN(mid) || math.IsNaN(up) || math.IsNaN(low) {
		return ""
	}
	switch {
	case cur > up:
		return "near upper band"
	case cur < low:
		return "near lower band"
	default:
		return "near mid band"
	}
}

func unavailableSet() types.IndicatorSet {
	nan := math.NaN()
	return types.IndicatorSet{
		MA5: nan, MA10: nan, MA20: nan,
		MACD: nan, MACDSignal: nan, MACDHist: nan,
		RSI14:     nan,
		BollUpper: nan, BollLower: nan,
		CurrentPrice: nan,
	}
}

func round2(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Round(v*100) / 100
}
