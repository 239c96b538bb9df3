package runlog

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"futures-report/internal/session"
)

var mu sync.Mutex

// Entry records one report run. Entries append to a per-day JSONL
// file for later auditing of which documents were produced from which
// trading days.
type Entry struct {
	Time         string
	Symbol       string
	Commodity    string
	NominalDate  string
	ResolvedDate string
	SkippedDays  int
	DayClose     float64
	Doc          string
	Outcome      string
}

func logDir() string {
	if v := os.Getenv("REPORT_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func dailyFilepath(t time.Time) string {
	d := t.In(session.Clock).Format("2006-01-02")
	return filepath.Join(logDir(), d+".txt")
}

func indexCSVPath(t time.Time) string {
	d := t.In(session.Clock).Format("2006-01-02")
	return filepath.Join(logDir(), "index", d+".csv")
}

func Append(e Entry) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().In(session.Clock)
	e.Time = now.Format("2006-01-02 15:04:05")
	p := dailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(e)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// SummarizeDay condenses a day's run log into a CSV index: one row per
// symbol with its latest document and outcome. Returns empty path when
// there is nothing to summarize.
func SummarizeDay(t time.Time) (string, error) {
	inPath := dailyFilepath(t)
	if _, err := os.Stat(inPath); err != nil {
		return "", nil
	}
	f, err := os.Open(inPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	latest := map[string]Entry{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		latest[e.Symbol] = e
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if len(latest) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(latest))
	for k := range latest {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := indexCSVPath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	defer w.Flush()
	headers := []string{"symbol", "commodity", "nominal_date", "resolved_date", "skipped_days", "day_close", "doc", "outcome"}
	if err := w.Write(headers); err != nil {
		return "", err
	}
	for _, k := range keys {
		e := latest[k]
		rec := []string{
			e.Symbol, e.Commodity, e.NominalDate, e.ResolvedDate,
			strconv.Itoa(e.SkippedDays), fmt.Sprintf("%.2f", e.DayClose),
			e.Doc, e.Outcome,
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	return outPath, nil
}

// CompressOlder gzips run logs older than the retention window.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	root := logDir()
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil {
			return nil
		}
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		if !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		if _, e2 := os.Stat(gz); e2 == nil {
			_ = os.Remove(p)
			return nil
		}

		in, e3 := os.Open(p)
		if e3 != nil {
			return nil
		}
		defer in.Close()

		out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if e4 != nil {
			return nil
		}
		gw := gzip.NewWriter(out)
		if _, e5 := io.Copy(gw, in); e5 != nil {
			gw.Close()
			out.Close()
			_ = os.Remove(gz)
			return nil
		}
		gw.Close()
		out.Close()
		_ = os.Remove(p)
		return nil
	})
}
