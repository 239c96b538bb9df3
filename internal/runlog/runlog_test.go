package runlog

import (
	"encoding/csv"
	"os"
	"strings"
	"testing"
	"time"
)

func TestAppendAndSummarize(t *testing.T) {
	t.Setenv("REPORT_LOG_DIR", t.TempDir())

	entries := []Entry{
		{Symbol: "RB0", Commodity: "螺纹钢", NominalDate: "2026-08-31", ResolvedDate: "2026-08-28", SkippedDays: 3, DayClose: 3804.5, Doc: "reports/a.xlsx", Outcome: "OK"},
		{Symbol: "CU0", Commodity: "铜", NominalDate: "2026-08-31", ResolvedDate: "2026-08-28", SkippedDays: 3, DayClose: 73210, Doc: "reports/b.xlsx", Outcome: "OK"},
		{Symbol: "RB0", Commodity: "螺纹钢", NominalDate: "2026-08-31", ResolvedDate: "2026-08-28", SkippedDays: 3, DayClose: 3804.5, Doc: "reports/a_1.xlsx", Outcome: "OK"},
	}
	for _, e := range entries {
		if err := Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	path, err := SummarizeDay(time.Now())
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if path == "" {
		t.Fatal("no index written")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// header plus one row per symbol, last entry wins
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	var rbDoc string
	for _, row := range rows[1:] {
		if row[0] == "RB0" {
			rbDoc = row[6]
		}
	}
	if rbDoc != "reports/a_1.xlsx" {
		t.Errorf("RB0 doc = %q, want latest entry", rbDoc)
	}
}

func TestSummarizeDayEmpty(t *testing.T) {
	t.Setenv("REPORT_LOG_DIR", t.TempDir())
	path, err := SummarizeDay(time.Now())
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty for missing log", path)
	}
}

func TestCompressOlder(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("REPORT_LOG_DIR", dir)

	old := dir + "/2026-08-01.txt"
	if err := os.WriteFile(old, []byte(strings.Repeat("x", 100)), 0o644); err != nil {
		t.Fatal(err)
	}
	stale := time.Now().AddDate(0, 0, -30)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatal(err)
	}

	if err := CompressOlder(7); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("stale log not removed")
	}
	if _, err := os.Stat(old + ".gz"); err != nil {
		t.Errorf("gzip archive missing: %v", err)
	}
}
