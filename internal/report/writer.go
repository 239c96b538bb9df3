package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"futures-report/internal/session"
	"futures-report/internal/types"
)

const disclaimer = "This report is generated automatically from public market data and news sources. " +
	"It is for research reference only and is not investment advice."

// XLSXWriter renders a finished report into a styled workbook.
type XLSXWriter struct {
	outDir string
}

func NewXLSXWriter(outDir string) *XLSXWriter {
	return &XLSXWriter{outDir: outDir}
}

// Write renders the document and returns its path. An existing file
// for the same date gets a numeric suffix instead of being replaced.
func (w *XLSXWriter) Write(req types.ReportRequest, result *types.ReportResult) (string, error) {
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Report"
	f.SetSheetName("Sheet1", sheet)
	f.SetColWidth(sheet, "A", "A", 22)
	f.SetColWidth(sheet, "B", "B", 90)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	headStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	bodyStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})

	row := 1
	title := fmt.Sprintf("%s Futures Daily Report (%s) %s",
		req.Commodity, req.Symbol, result.ResolvedDate.Format("2006-01-02"))
	f.MergeCell(sheet, cell("A", row), cell("B", row))
	f.SetCellValue(sheet, cell("A", row), title)
	f.SetCellStyle(sheet, cell("A", row), cell("B", row), titleStyle)
	f.SetRowHeight(sheet, row, 28)
	row += 2

	row = w.section(f, sheet, row, headStyle, bodyStyle, "Market Review", result.Description)
	row = w.marketData(f, sheet, row, headStyle, bodyStyle, result)
	row = w.priceChart(f, sheet, row, headStyle, req, result)
	row = w.section(f, sheet, row, headStyle, bodyStyle, "Main View", result.MainView)
	row = w.section(f, sheet, row, headStyle, bodyStyle, "Market News", result.NewsDigest)
	row = w.references(f, sheet, row, headStyle, bodyStyle, result.News)
	w.section(f, sheet, row, headStyle, bodyStyle, "Disclaimer", disclaimer)

	path := w.docPath(req, result)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

func (w *XLSXWriter) section(f *excelize.File, sheet string, row, headStyle, bodyStyle int, name, body string) int {
	f.MergeCell(sheet, cell("A", row), cell("B", row))
	f.SetCellValue(sheet, cell("A", row), name)
	f.SetCellStyle(sheet, cell("A", row), cell("B", row), headStyle)
	row++

	if body == "" {
		body = "N/A"
	}
	f.MergeCell(sheet, cell("A", row), cell("B", row))
	f.SetCellValue(sheet, cell("A", row), body)
	f.SetCellStyle(sheet, cell("A", row), cell("B", row), bodyStyle)
	f.SetRowHeight(sheet, row, 90)
	return row + 2
}

func (w *XLSXWriter) marketData(f *excelize.File, sheet string, row, headStyle, bodyStyle int, result *types.ReportResult) int {
	f.MergeCell(sheet, cell("A", row), cell("B", row))
	f.SetCellValue(sheet, cell("A", row), "Market Data")
	f.SetCellStyle(sheet, cell("A", row), cell("B", row), headStyle)
	row++

	pairs := [][2]string{
		{"Day Open", types.FormatValue(result.Summary.Day.Open)},
		{"Day High", types.FormatValue(result.Summary.Day.High)},
		{"Day Low", types.FormatValue(result.Summary.Day.Low)},
		{"Day Close", types.FormatValue(result.Summary.Day.Close)},
		{"Day Change %", types.FormatValue(result.Summary.Day.ChangePct)},
		{"Night Close", types.FormatValue(result.Summary.Night.Close)},
		{"MA5 / MA10 / MA20", fmt.Sprintf("%s / %s / %s",
			types.FormatValue(result.Indicators.MA5),
			types.FormatValue(result.Indicators.MA10),
			types.FormatValue(result.Indicators.MA20))},
		{"MACD / Signal / Hist", fmt.Sprintf("%s / %s / %s",
			types.FormatValue(result.Indicators.MACD),
			types.FormatValue(result.Indicators.MACDSignal),
			types.FormatValue(result.Indicators.MACDHist))},
		{"RSI(14)", types.FormatValue(result.Indicators.RSI14)},
		{"Bollinger Upper / Lower", fmt.Sprintf("%s / %s",
			types.FormatValue(result.Indicators.BollUpper),
			types.FormatValue(result.Indicators.BollLower))},
	}
	for _, p := range pairs {
		f.SetCellValue(sheet, cell("A", row), p[0])
		f.SetCellValue(sheet, cell("B", row), p[1])
		f.SetCellStyle(sheet, cell("A", row), cell("B", row), bodyStyle)
		row++
	}
	return row + 1
}

// priceChart plots the resolved day session as a close-price line over
// a hidden data sheet. excelize has no candlestick chart type, so the
// intraday shape is carried by the close series plus the OHLC columns.
func (w *XLSXWriter) priceChart(f *excelize.File, sheet string, row, headStyle int, req types.ReportRequest, result *types.ReportResult) int {
	if len(result.DayBars) == 0 {
		return row
	}

	const dataSheet = "PriceData"
	if _, err := f.NewSheet(dataSheet); err != nil {
		return row
	}
	f.SetSheetRow(dataSheet, "A1", &[]interface{}{"Time", "Open", "High", "Low", "Close"})
	for i, b := range result.DayBars {
		f.SetSheetRow(dataSheet, cell("A", i+2), &[]interface{}{
			b.Ts.In(session.Clock).Format("15:04"), b.Open, b.High, b.Low, b.Close,
		})
	}
	f.SetSheetVisible(dataSheet, false)

	f.MergeCell(sheet, cell("A", row), cell("B", row))
	f.SetCellValue(sheet, cell("A", row), "Day Session Price")
	f.SetCellStyle(sheet, cell("A", row), cell("B", row), headStyle)
	row++

	last := len(result.DayBars) + 1
	chart := &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s close", req.Symbol),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", dataSheet, last),
			Values:     fmt.Sprintf("%s!$E$2:$E$%d", dataSheet, last),
		}},
		Title:     []excelize.RichTextRun{{Text: fmt.Sprintf("%s %s day session", req.Commodity, result.ResolvedDate.Format("2006-01-02"))}},
		Dimension: excelize.ChartDimension{Width: 760, Height: 300},
		Legend:    excelize.ChartLegend{Position: "bottom"},
	}
	if err := f.AddChart(sheet, cell("A", row), chart); err != nil {
		return row + 1
	}
	// Leave room below the anchor so the next section starts clear of
	// the chart frame.
	return row + 17
}

func (w *XLSXWriter) references(f *excelize.File, sheet string, row, headStyle, bodyStyle int, news []types.NewsItem) int {
	f.MergeCell(sheet, cell("A", row), cell("B", row))
	f.SetCellValue(sheet, cell("A", row), "References")
	f.SetCellStyle(sheet, cell("A", row), cell("B", row), headStyle)
	row++

	if len(news) == 0 {
		f.MergeCell(sheet, cell("A", row), cell("B", row))
		f.SetCellValue(sheet, cell("A", row), "No references collected.")
		f.SetCellStyle(sheet, cell("A", row), cell("B", row), bodyStyle)
		return row + 2
	}

	for i, item := range news {
		f.SetCellValue(sheet, cell("A", row), fmt.Sprintf("[%d] %s", i+1, item.Source))
		f.SetCellValue(sheet, cell("B", row), fmt.Sprintf("%s  %s", item.Title, item.URL))
		f.SetCellStyle(sheet, cell("A", row), cell("B", row), bodyStyle)
		row++
	}
	return row + 1
}

// docPath builds the output path, appending a counter when the file
// already exists so reruns never clobber an earlier document.
func (w *XLSXWriter) docPath(req types.ReportRequest, result *types.ReportResult) string {
	base := fmt.Sprintf("%s-daily_%s", req.Symbol, result.ResolvedDate.Format("2006-01-02"))
	path := filepath.Join(w.outDir, base+".xlsx")
	for i := 1; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = filepath.Join(w.outDir, fmt.Sprintf("%s_%d.xlsx", base, i))
	}
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
