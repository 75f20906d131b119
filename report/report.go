package report

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"lossanalysis/runsummary"
)

// Input is everything the report refers to. Figures are listed by file name
// and only embedded when present in FigureDir.
type Input struct {
	RunDir    string
	FigureDir string
	Figures   []string
	Rows      []runsummary.Row
	Skipped   []string
}

// Write renders the markdown report to path. Figure links are relative to the
// report's directory.
func Write(path string, in Input) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "# Loss Analysis Report\n\n")
	fmt.Fprintf(w, "- Run dir: `%s`\n\n", in.RunDir)

	fmt.Fprintf(w, "## Summary\n\n")
	if len(in.Rows) == 0 {
		fmt.Fprintf(w, "No runs analysed.\n\n")
	} else {
		fmt.Fprintf(w, "| mode | loss | duration (s) | goodput (Mbps) | p50 (ms) | p90 (ms) | p95 (ms) | p99 (ms) | file loss |\n")
		fmt.Fprintf(w, "|---|---|---|---|---|---|---|---|---|\n")
		for _, r := range in.Rows {
			fmt.Fprintf(w, "| %s | %s | %.3f | %.2f | %s | %s | %s | %s | %s |\n",
				r.Mode, r.Loss.Percent(), r.DurationS, r.GoodputMbps,
				cell(r.P50, 2), cell(r.P90, 2), cell(r.P95, 2), cell(r.P99, 2), pct(r.FileLossRate))
		}
		fmt.Fprintln(w)
	}

	if len(in.Skipped) > 0 {
		fmt.Fprintf(w, "## Skipped\n\n")
		for _, s := range in.Skipped {
			fmt.Fprintf(w, "- %s\n", s)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "## Figures\n\n")
	for _, name := range in.Figures {
		p := filepath.Join(in.FigureDir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		rel, err := filepath.Rel(filepath.Dir(path), p)
		if err != nil {
			rel = p
		}
		fmt.Fprintf(w, "![%s](%s)\n\n", name, filepath.ToSlash(rel))
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}

func cell(v *float64, prec int) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}

func pct(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v*100, 'f', 2, 64) + "%"
}
