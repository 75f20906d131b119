package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lossanalysis/common"
	"lossanalysis/runsummary"
)

func TestWrite(t *testing.T) {
	base := t.TempDir()
	figDir := filepath.Join(base, "figures")
	repDir := filepath.Join(base, "reports")
	for _, d := range []string{figDir, repDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(figDir, "goodput_bar.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	loss, _ := common.ParseLossLevel("0.01")
	p50, lr := 2.5, 0.125
	in := Input{
		RunDir:    "results/raw_csv/run1",
		FigureDir: figDir,
		Figures:   []string{"completion_time_bar.png", "goodput_bar.png"},
		Rows: []runsummary.Row{
			{Mode: "datagram", Loss: loss, DurationS: 1.5, GoodputMbps: 3, P50: &p50, FileLossRate: &lr},
			{Mode: "stream", Loss: loss, DurationS: 2, GoodputMbps: 4},
		},
		Skipped: []string{"client_send_x.csv: no run tag"},
	}
	path := filepath.Join(repDir, "report.md")
	if err := Write(path, in); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(b)
	for _, want := range []string{
		"# Loss Analysis Report",
		"- Run dir: `results/raw_csv/run1`",
		"| datagram | 1.0% | 1.500 | 3.00 | 2.50 | - | - | - | 12.50% |",
		"| stream | 1.0% | 2.000 | 4.00 | - | - | - | - | - |",
		"![goodput_bar.png](../figures/goodput_bar.png)",
		"client_send_x.csv: no run tag",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
	if strings.Contains(out, "completion_time_bar.png") {
		t.Error("missing figure must not be linked")
	}
}
