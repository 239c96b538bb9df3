package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"futures-report/internal/logger"
	"futures-report/internal/runlog"
	"futures-report/internal/session"
	"futures-report/internal/types"
)

var (
	flagConfig    string
	flagSymbol    string
	flagCommodity string
	flagDate      string
)

var rootCMD = &cobra.Command{
	Use:   "futures-report",
	Short: "Daily commodity futures report generator",
	Long: `Generates daily analysis reports for domestic commodity futures:
minute bars from the market feed, technical indicators, aggregated news
and an LLM-written narrative, rendered into a spreadsheet document.`,
}

var generateCMD = &cobra.Command{
	Use:   "generate",
	Short: "Generate reports once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		sys, err := initializeSystem(ctx, flagConfig)
		if err != nil {
			return err
		}
		defer sys.shutdown(ctx)

		date, err := nominalDate(flagDate)
		if err != nil {
			return err
		}

		reqs := sys.requests(flagSymbol, flagCommodity, date)
		if len(reqs) == 0 {
			return fmt.Errorf("symbol %q not found in config", flagSymbol)
		}

		var failed int
		for _, req := range reqs {
			result, err := sys.orchestrator.Run(ctx, req)
			if err != nil {
				logger.ErrorWithErr(ctx, "Report failed", err, "symbol", req.Symbol)
				failed++
				continue
			}
			fmt.Println(result.DocPath)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d reports failed", failed, len(reqs))
		}
		return nil
	},
}

var scheduleCMD = &cobra.Command{
	Use:   "schedule",
	Short: "Run on the configured cron schedule until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sys, err := initializeSystem(ctx, flagConfig)
		if err != nil {
			return err
		}
		defer sys.shutdown(ctx)

		spec := sys.cfg.Schedule
		if spec == "" {
			spec = "0 30 15 * * 1-5" // weekdays after the day close
		}

		c := cron.New(cron.WithSeconds(), cron.WithLocation(session.Clock))
		_, err = c.AddFunc(spec, func() {
			date := session.Midnight(time.Now().In(session.Clock))
			for _, req := range sys.requests("", "", date) {
				if _, err := sys.orchestrator.Run(ctx, req); err != nil {
					logger.ErrorWithErr(ctx, "Scheduled report failed", err, "symbol", req.Symbol)
				}
			}
			if _, err := runlog.SummarizeDay(time.Now()); err != nil {
				logger.Warn(ctx, "Run log summary failed", "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("register schedule %q: %w", spec, err)
		}

		c.Start()
		logger.Info(ctx, "Scheduler started", "spec", spec, "symbols", len(sys.cfg.Symbols))

		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		<-sigc

		logger.Info(ctx, "Shutting down scheduler")
		<-c.Stop().Done()
		return nil
	},
}

// nominalDate parses the --date flag, defaulting to today on the
// exchange clock. The date is nominal: the resolver steps back to the
// last completed trading day from here.
func nominalDate(s string) (time.Time, error) {
	if s == "" {
		return session.Midnight(time.Now().In(session.Clock)), nil
	}
	d, err := time.ParseInLocation("2006-01-02", s, session.Clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q, want YYYY-MM-DD", s)
	}
	return d, nil
}

// requests builds the run list: one request per configured symbol, or
// just the one selected by --symbol.
func (s *system) requests(symbol, commodity string, date time.Time) []types.ReportRequest {
	reqs := []types.ReportRequest{}
	for _, sym := range s.cfg.Symbols {
		if symbol != "" && sym.Contract != symbol {
			continue
		}
		c := sym.Commodity
		if commodity != "" && sym.Contract == symbol {
			c = commodity
		}
		reqs = append(reqs, types.ReportRequest{Symbol: sym.Contract, Commodity: c, Date: date})
	}
	return reqs
}

func main() {
	generateCMD.Flags().StringVar(&flagSymbol, "symbol", "", "contract code, e.g. RB0 (default: all configured)")
	generateCMD.Flags().StringVar(&flagCommodity, "commodity", "", "commodity name override for --symbol")
	generateCMD.Flags().StringVar(&flagDate, "date", "", "nominal report date YYYY-MM-DD (default: today)")

	rootCMD.PersistentFlags().StringVar(&flagConfig, "config", "config.yaml", "path to config file")
	rootCMD.AddCommand(generateCMD)
	rootCMD.AddCommand(scheduleCMD)

	if err := rootCMD.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
