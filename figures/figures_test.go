package figures

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"lossanalysis/common"
	"lossanalysis/runsummary"
)

func f(v float64) *float64 { return &v }

func groups(t *testing.T) []runsummary.LossGroup {
	t.Helper()
	var out []runsummary.LossGroup
	for i, s := range []string{"0", "0.01", "0.05"} {
		l, err := common.ParseLossLevel(s)
		if err != nil {
			t.Fatal(err)
		}
		g := runsummary.LossGroup{
			Loss:       l,
			Completion: runsummary.Pair{Datagram: f(float64(i + 1)), Stream: f(float64(i + 2))},
			Goodput:    runsummary.Pair{Datagram: f(10), Stream: nil},
			LossRate:   f(float64(i) / 10),
		}
		if i > 0 {
			g.Latencies = []float64{1, 2, 3, float64(10 * i)}
		}
		out = append(out, g)
	}
	return out
}

func assertFile(t *testing.T, path string) {
	t.Helper()
	st, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if st.Size() == 0 {
		t.Fatalf("%s is empty", path)
	}
}

func TestCrossRunFigures(t *testing.T) {
	dir := t.TempDir()
	g := groups(t)
	render := map[string]func(string, []runsummary.LossGroup) error{
		CompletionBarName: CompletionBar,
		GoodputBarName:    GoodputBar,
		LatencyBoxName:    LatencyBox,
		LossCurveName:     LossCurve,
	}
	for name, fn := range render {
		path := filepath.Join(dir, name)
		if err := fn(path, g); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		assertFile(t, path)
	}
	path := filepath.Join(dir, LatencyCDFName)
	if err := LatencyCDF(path, "latency", CDFSeries(g)); err != nil {
		t.Fatal(err)
	}
	assertFile(t, path)
}

func TestNoData(t *testing.T) {
	dir := t.TempDir()
	if err := CompletionBar(filepath.Join(dir, "a.png"), nil); !errors.Is(err, ErrNoData) {
		t.Errorf("bar: %v", err)
	}
	if err := LatencyBox(filepath.Join(dir, "b.png"), []runsummary.LossGroup{{}}); !errors.Is(err, ErrNoData) {
		t.Errorf("box: %v", err)
	}
	if err := LossCurve(filepath.Join(dir, "c.png"), []runsummary.LossGroup{{}}); !errors.Is(err, ErrNoData) {
		t.Errorf("curve: %v", err)
	}
	if err := LatencyCDF(filepath.Join(dir, "d.png"), "x", []Series{{Name: "empty"}}); !errors.Is(err, ErrNoData) {
		t.Errorf("cdf: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("files written without data: %v", entries)
	}
}
