package report

import (
	"context"
	"fmt"

	"futures-report/internal/interfaces"
	"futures-report/internal/logger"
	"futures-report/internal/news"
	"futures-report/internal/runlog"
	"futures-report/internal/session"
	"futures-report/internal/store"
	"futures-report/internal/ta"
	"futures-report/internal/types"
)

// Orchestrator runs the full report pipeline for one contract: fetch
// bars, resolve the trading day, compute indicators, collect news,
// generate the narrative sections and write the document.
type Orchestrator struct {
	cfg    *store.Config
	feed   interfaces.Feed
	gen    interfaces.Generator
	news   *news.Service
	writer interfaces.Writer
}

func NewOrchestrator(cfg *store.Config, feed interfaces.Feed, gen interfaces.Generator, newsSvc *news.Service, writer interfaces.Writer) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		feed:   feed,
		gen:    gen,
		news:   newsSvc,
		writer: writer,
	}
}

// Run produces one report. Price data problems are fatal; news and
// narrative problems degrade to placeholder text so a flaky provider
// never blocks the document.
func (o *Orchestrator) Run(ctx context.Context, req types.ReportRequest) (*types.ReportResult, error) {
	timer := logger.StartOperation(ctx, "report.run", "symbol", req.Symbol, "commodity", req.Commodity)

	raw, err := o.feed.MinuteBars(ctx, req.Symbol)
	if err != nil {
		timer.EndWithError(err)
		return nil, fmt.Errorf("fetch bars for %s: %w", req.Symbol, err)
	}

	bars := session.Clean(raw)
	if dropped := len(raw) - len(bars); dropped > 0 {
		logger.DataQuality(ctx, req.Symbol, "malformed_bars_dropped", "dropped", dropped, "kept", len(bars))
	}

	resolved, err := session.ResolveTradingDay(req.Date, bars, o.cfg.Session.MaxLookbackDays)
	if err != nil {
		timer.EndWithError(err)
		return nil, fmt.Errorf("resolve trading day for %s: %w", req.Symbol, err)
	}
	if resolved.Offset > 1 {
		logger.Info(ctx, "Nominal date stepped back to last trading day",
			"symbol", req.Symbol,
			"nominal", req.Date.Format("2006-01-02"),
			"resolved", resolved.Date.Format("2006-01-02"),
			"skipped_days", resolved.Offset)
	}

	result := &types.ReportResult{
		ResolvedDate: resolved.Date,
		SkippedDays:  resolved.Offset,
		Summary:      session.Partition(bars, resolved.Date),
		Indicators:   ta.Compute(bars),
		DayBars:      session.DayWindow(bars, resolved.Date),
	}
	if !result.Summary.Night.Available() {
		logger.DataQuality(ctx, req.Symbol, "night_session_empty", "date", resolved.Date.Format("2006-01-02"))
	}

	collected := o.news.Collect(ctx, req.Commodity, resolved.Date)
	// The digest cites items by bracket number, so the list the model
	// sees must equal the reference list in the document.
	if len(collected) > o.cfg.News.TopRefs {
		collected = collected[:o.cfg.News.TopRefs]
	}
	result.News = collected
	result.Professional = o.news.ProfessionalData(ctx, req.Commodity, resolved.Date)

	result.Description = o.generate(ctx, "market_description", MarketDescriptionPrompt(req, result),
		"Market review unavailable: narrative generation failed.")
	result.MainView = o.generate(ctx, "main_view", MainViewPrompt(req, result),
		"Main view unavailable: narrative generation failed.")
	result.NewsDigest = o.generate(ctx, "news_digest", NewsDigestPrompt(req, result),
		"News digest unavailable: narrative generation failed.")

	docPath, err := o.writer.Write(req, result)
	if err != nil {
		timer.EndWithError(err)
		return nil, fmt.Errorf("write document for %s: %w", req.Symbol, err)
	}
	result.DocPath = docPath

	if err := runlog.Append(runlog.Entry{
		Symbol:       req.Symbol,
		Commodity:    req.Commodity,
		NominalDate:  req.Date.Format("2006-01-02"),
		ResolvedDate: resolved.Date.Format("2006-01-02"),
		SkippedDays:  resolved.Offset,
		DayClose:     result.Summary.Day.Close,
		Doc:          docPath,
		Outcome:      "OK",
	}); err != nil {
		logger.Warn(ctx, "Run journal append failed", "symbol", req.Symbol, "error", err.Error())
	}
	logger.Report(ctx, req.Symbol, req.Commodity, resolved.Date.Format("2006-01-02"), docPath)
	timer.End("doc", docPath, "news_items", len(result.News))
	return result, nil
}

// generate runs one narrative section, falling back to a fixed notice
// when the provider errors.
func (o *Orchestrator) generate(ctx context.Context, section, prompt, fallback string) string {
	text, err := o.gen.Generate(ctx, prompt)
	if err != nil {
		logger.ErrorWithErr(ctx, "Narrative generation failed", err, "section", section)
		return fallback
	}
	return text
}
