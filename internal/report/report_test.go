package report

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"futures-report/internal/feed"
	"futures-report/internal/llm"
	"futures-report/internal/logger"
	"futures-report/internal/news"
	"futures-report/internal/session"
	"futures-report/internal/store"
	"futures-report/internal/types"
)

func TestMain(m *testing.M) {
	logger.InitWithConfig(logger.LogConfig{Level: "ERROR", Format: "text"})
	os.Exit(m.Run())
}

func TestXLSXWriterPathCollision(t *testing.T) {
	dir := t.TempDir()
	w := NewXLSXWriter(dir)
	req := sampleRequest()
	result := sampleResult()

	first, err := w.Write(req, result)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Base(first) != "RB0-daily_2026-08-28.xlsx" {
		t.Errorf("doc name = %q", filepath.Base(first))
	}

	second, err := w.Write(req, result)
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	if second == first {
		t.Error("second write overwrote first document")
	}
	if !strings.HasSuffix(second, "_1.xlsx") {
		t.Errorf("collision suffix missing: %q", second)
	}
}

func TestXLSXWriterEmbedsPriceChart(t *testing.T) {
	w := NewXLSXWriter(t.TempDir())
	req := sampleRequest()
	result := sampleResult()

	start := time.Date(2026, 8, 28, 9, 0, 0, 0, session.Clock)
	for i := 0; i < 30; i++ {
		px := 3800 + float64(i)
		result.DayBars = append(result.DayBars, types.Bar{
			Ts:   start.Add(time.Duration(i) * time.Minute),
			Open: px, High: px + 2, Low: px - 2, Close: px + 1,
		})
	}

	path, err := w.Write(req, result)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex("PriceData")
	if err != nil || idx < 0 {
		t.Fatalf("PriceData sheet missing: idx=%d err=%v", idx, err)
	}
	rows, err := f.GetRows("PriceData")
	if err != nil {
		t.Fatalf("read PriceData: %v", err)
	}
	if len(rows) != len(result.DayBars)+1 {
		t.Errorf("data rows = %d, want %d bars plus header", len(rows), len(result.DayBars))
	}
	if rows[1][0] != "09:00" {
		t.Errorf("first bar label = %q, want 09:00", rows[1][0])
	}

	cells, err := f.SearchSheet("Report", "Day Session Price")
	if err != nil || len(cells) == 0 {
		t.Error("chart section header missing from report sheet")
	}

	// The chart part itself lives in the workbook archive.
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open workbook archive: %v", err)
	}
	defer zr.Close()
	found := false
	for _, zf := range zr.File {
		if strings.HasPrefix(zf.Name, "xl/charts/chart") {
			found = true
			break
		}
	}
	if !found {
		t.Error("no chart part in workbook")
	}
}

func TestXLSXWriterSkipsChartWithoutDayBars(t *testing.T) {
	w := NewXLSXWriter(t.TempDir())

	path, err := w.Write(sampleRequest(), sampleResult())
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()
	if idx, _ := f.GetSheetIndex("PriceData"); idx >= 0 {
		t.Error("data sheet created for an empty day session")
	}
}

func offlineConfig(t *testing.T) *store.Config {
	t.Helper()
	cfg := &store.Config{}
	cfg.Mode = "DRY_RUN"
	cfg.Feed.Source = "STATIC"
	cfg.Session.MaxLookbackDays = 7
	cfg.News.TopRefs = 8
	cfg.News.MaxItems = 25
	cfg.Report.OutDir = t.TempDir()
	return cfg
}

func offlineNewsService() *news.Service {
	ncfg := news.DefaultServiceConfig()
	ncfg.EnableScrape = false
	return news.NewService(ncfg)
}

func TestOrchestratorRunOffline(t *testing.T) {
	t.Setenv("REPORT_LOG_DIR", t.TempDir())
	cfg := offlineConfig(t)

	anchor := time.Date(2026, 8, 31, 10, 0, 0, 0, session.Clock) // Monday
	o := NewOrchestrator(cfg,
		feed.NewStaticFeedAt(anchor),
		llm.NewNoopGenerator(),
		offlineNewsService(),
		NewXLSXWriter(cfg.Report.OutDir),
	)

	req := sampleRequest()
	req.Date = anchor
	result, err := o.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	friday := time.Date(2026, 8, 28, 0, 0, 0, 0, session.Clock)
	if !result.ResolvedDate.Equal(friday) {
		t.Errorf("resolved %v, want %v", result.ResolvedDate, friday)
	}
	if result.SkippedDays != 3 {
		t.Errorf("skipped days = %d, want 3", result.SkippedDays)
	}
	if !result.Summary.Day.Available() {
		t.Error("day session unavailable from static feed")
	}
	if result.DocPath == "" {
		t.Error("no document written")
	}
	if result.Description == "" || result.MainView == "" || result.NewsDigest == "" {
		t.Error("narrative sections empty")
	}
	if len(result.DayBars) == 0 {
		t.Error("day-session bars not carried into the result")
	}
}

func TestOrchestratorSurvivesJournalFailure(t *testing.T) {
	// Point the run journal at a plain file so every append fails.
	blocked := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REPORT_LOG_DIR", blocked)
	cfg := offlineConfig(t)

	anchor := time.Date(2026, 8, 31, 10, 0, 0, 0, session.Clock)
	o := NewOrchestrator(cfg,
		feed.NewStaticFeedAt(anchor),
		llm.NewNoopGenerator(),
		offlineNewsService(),
		NewXLSXWriter(cfg.Report.OutDir),
	)

	req := sampleRequest()
	req.Date = anchor
	result, err := o.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("run failed on journal error: %v", err)
	}
	if result.DocPath == "" {
		t.Error("no document written")
	}
}

func TestOrchestratorHaltsWithoutTradingDay(t *testing.T) {
	t.Setenv("REPORT_LOG_DIR", t.TempDir())
	cfg := offlineConfig(t)

	// Anchor the synthetic series far before the requested date so the
	// lookback window finds nothing.
	anchor := time.Date(2026, 7, 1, 10, 0, 0, 0, session.Clock)
	o := NewOrchestrator(cfg,
		feed.NewStaticFeedAt(anchor),
		llm.NewNoopGenerator(),
		offlineNewsService(),
		NewXLSXWriter(cfg.Report.OutDir),
	)

	req := sampleRequest()
	req.Date = time.Date(2026, 8, 31, 0, 0, 0, 0, session.Clock)
	_, err := o.Run(context.Background(), req)
	if err == nil {
		t.Fatal("expected error when no trading day is resolvable")
	}
	if !strings.Contains(err.Error(), "resolve trading day") {
		t.Errorf("unexpected error: %v", err)
	}
}
