package runsummary

import (
	"testing"

	"lossanalysis/common"
	"lossanalysis/evaluation"
)

func f(v float64) *float64 { return &v }

func tag(t *testing.T, name string) common.RunTag {
	t.Helper()
	tg, err := common.ParseRunTag(name)
	if err != nil {
		t.Fatal(err)
	}
	return tg
}

func TestByLossGroupsAndSorts(t *testing.T) {
	var tbl Table
	tbl.Add(RunRecord{
		Tag:      tag(t, "mode(datagram)_loss(0.05)_cca(cubic)_chunk(1200)"),
		Datagram: &evaluation.DatagramMetrics{DurationS: 2, GoodputMbps: 8, LatenciesMs: []float64{1, 2}, LossRate: f(0.1)},
	})
	tbl.Add(RunRecord{
		Tag:    tag(t, "mode(stream)_loss(0.050)_cca(cubic)_chunk(1200)"),
		Stream: &evaluation.StreamMetrics{DurationS: 3, GoodputMbps: 5},
	})
	tbl.Add(RunRecord{
		Tag:      tag(t, "mode(datagram)_loss(0.01)_cca(bbr)_chunk(1200)"),
		Datagram: &evaluation.DatagramMetrics{DurationS: 1, GoodputMbps: 9, LatenciesMs: []float64{3}, LossRate: f(0.02)},
	})
	tbl.Add(RunRecord{
		Tag:      tag(t, "mode(datagram)_loss(5e-2)_cca(bbr)_chunk(600)"),
		Datagram: &evaluation.DatagramMetrics{DurationS: 4, GoodputMbps: 7, LatenciesMs: []float64{9}},
	})

	groups := tbl.ByLoss()
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2 (0.05, 0.050 and 5e-2 are one level)", len(groups))
	}
	if groups[0].Loss.String() != "0.01" || groups[1].Loss.String() != "0.05" {
		t.Fatalf("order = %v, %v", groups[0].Loss, groups[1].Loss)
	}
	g := groups[1]
	if g.Completion.Datagram == nil || *g.Completion.Datagram != 4 {
		t.Errorf("datagram completion = %v, want the later run", g.Completion.Datagram)
	}
	if g.Completion.Stream == nil || *g.Completion.Stream != 3 || *g.Goodput.Stream != 5 {
		t.Errorf("stream pair = %+v %+v", g.Completion, g.Goodput)
	}
	if len(g.Latencies) != 3 || g.Latencies[2] != 9 {
		t.Errorf("pooled latencies = %v", g.Latencies)
	}
	if g.LossRate == nil || *g.LossRate != 0.1 {
		t.Errorf("loss rate = %v, undefined rate must not clear it", g.LossRate)
	}
	if groups[0].Completion.Stream != nil {
		t.Errorf("no stream run at 0.01")
	}
}

func TestRows(t *testing.T) {
	var tbl Table
	tbl.Add(RunRecord{
		Tag:      tag(t, "mode(datagram)_loss(0.1)_cca(cubic)_chunk(1200)"),
		Datagram: &evaluation.DatagramMetrics{DurationS: 1, P50: f(2), P99: f(3), LossRate: f(0.5)},
	})
	tbl.Add(RunRecord{
		Tag:    tag(t, "mode(stream)_loss(0.1)_cca(cubic)_chunk(1200)"),
		Stream: &evaluation.StreamMetrics{DurationS: 2, GoodputMbps: 1},
	})
	rows := tbl.Rows()
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].Mode != "datagram" || *rows[0].P50 != 2 || *rows[0].FileLossRate != 0.5 {
		t.Errorf("datagram row = %+v", rows[0])
	}
	if rows[1].Mode != "stream" || rows[1].P50 != nil || rows[1].FileLossRate != nil || rows[1].DurationS != 2 {
		t.Errorf("stream row = %+v", rows[1])
	}
}
