package feed

import (
	"context"
	"testing"
	"time"

	"futures-report/internal/session"
)

func TestParseSinaMinutes(t *testing.T) {
	payload := []byte(`var t=([{"d":"2026-08-28 09:01:00","o":"3800.0","h":"3805.0","l":"3798.0","c":"3802.0","v":"1532"},{"d":"2026-08-28 09:02:00","o":"3802.0","h":"3806.0","l":"3801.0","c":"3804.0","v":"1201"}]);`)
	bars, err := parseSinaMinutes(payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("bars = %d, want 2", len(bars))
	}
	want := time.Date(2026, 8, 28, 9, 1, 0, 0, session.Clock)
	if !bars[0].Ts.Equal(want) {
		t.Errorf("ts = %v, want %v", bars[0].Ts, want)
	}
	if bars[0].Open != 3800 || bars[1].Close != 3804 {
		t.Errorf("unexpected prices: %+v", bars)
	}
}

func TestParseSinaMinutesSkipsMalformedRows(t *testing.T) {
	payload := []byte(`([{"d":"not-a-date","o":"1","h":"1","l":"1","c":"1"},{"d":"2026-08-28 09:01:00","o":"x","h":"1","l":"1","c":"1"},{"d":"2026-08-28 09:02:00","o":"3800","h":"3801","l":"3799","c":"3800"}])`)
	bars, err := parseSinaMinutes(payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(bars) != 1 {
		t.Fatalf("bars = %d, want 1", len(bars))
	}
}

func TestParseSinaMinutesRejectsNonJSON(t *testing.T) {
	if _, err := parseSinaMinutes([]byte("<html>blocked</html>")); err == nil {
		t.Fatal("expected error for non-JSON payload")
	}
}

func TestStaticFeedShape(t *testing.T) {
	anchor := time.Date(2026, 8, 31, 10, 0, 0, 0, session.Clock) // Monday
	f := NewStaticFeedAt(anchor)
	bars, err := f.MinuteBars(context.Background(), "RB0")
	if err != nil {
		t.Fatalf("static feed: %v", err)
	}
	if len(bars) == 0 {
		t.Fatal("no bars generated")
	}
	for i := 1; i < len(bars); i++ {
		if !bars[i].Ts.After(bars[i-1].Ts) {
			t.Fatalf("timestamps not increasing at %d: %v then %v", i, bars[i-1].Ts, bars[i].Ts)
		}
	}
	for i, b := range bars {
		if b.High < b.Low {
			t.Fatalf("bar %d has high < low: %+v", i, b)
		}
	}

	// The previous weekday (Friday) must resolve with a full day session.
	got, err := session.ResolveTradingDay(anchor, bars, 7)
	if err != nil {
		t.Fatalf("resolve over static feed: %v", err)
	}
	if got.Offset != 3 {
		t.Errorf("offset = %d, want 3 (weekend skip)", got.Offset)
	}
}

func TestStaticFeedDeterministic(t *testing.T) {
	anchor := time.Date(2026, 8, 31, 10, 0, 0, 0, session.Clock)
	a, _ := NewStaticFeedAt(anchor).MinuteBars(context.Background(), "RB0")
	b, _ := NewStaticFeedAt(anchor).MinuteBars(context.Background(), "RB0")
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("bar %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
	c, _ := NewStaticFeedAt(anchor).MinuteBars(context.Background(), "CU0")
	if a[0].Close == c[0].Close {
		t.Error("different symbols produced identical series")
	}
}
