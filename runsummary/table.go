package runsummary

import (
	"lossanalysis/common"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Table accumulates run records across an invocation. It is append only.
type Table struct {
	records []RunRecord
}

func (t *Table) Add(r RunRecord) {
	t.records = append(t.records, r)
}

func (t *Table) Records() []RunRecord {
	return slices.Clone(t.records)
}

func (t *Table) Len() int {
	return len(t.records)
}

// Pair holds one value per transport mode; nil when no run of that mode
// exists at the loss level.
type Pair struct {
	Datagram *float64
	Stream   *float64
}

// LossGroup is the cross-run view of one configured loss level.
type LossGroup struct {
	Loss       common.LossLevel
	Completion Pair
	Goodput    Pair
	Latencies  []float64
	LossRate   *float64
}

// ByLoss groups records by configured loss, ascending. When several runs of
// the same mode share a level the later one wins for completion, goodput and
// loss rate while latency samples are pooled.
func (t *Table) ByLoss() []LossGroup {
	groups := make(map[common.LossLevel]*LossGroup)
	for _, r := range t.records {
		g, ok := groups[r.Tag.Loss]
		if !ok {
			g = &LossGroup{Loss: r.Tag.Loss, Latencies: []float64{}}
			groups[r.Tag.Loss] = g
		}
		dur, gp := r.DurationS(), r.GoodputMbps()
		switch {
		case r.Datagram != nil:
			g.Completion.Datagram = &dur
			g.Goodput.Datagram = &gp
			g.Latencies = append(g.Latencies, r.Datagram.LatenciesMs...)
			if r.Datagram.LossRate != nil {
				lr := *r.Datagram.LossRate
				g.LossRate = &lr
			}
		case r.Stream != nil:
			g.Completion.Stream = &dur
			g.Goodput.Stream = &gp
		}
	}
	levels := maps.Keys(groups)
	slices.Sort(levels)
	out := make([]LossGroup, 0, len(levels))
	for _, l := range levels {
		out = append(out, *groups[l])
	}
	return out
}

// Row is one line of the summary table.
type Row struct {
	Mode         string
	Loss         common.LossLevel
	DurationS    float64
	GoodputMbps  float64
	P50          *float64
	P90          *float64
	P95          *float64
	P99          *float64
	FileLossRate *float64
}

// Rows returns summary rows in the order runs were added. Stream rows carry
// no latency or loss values.
func (t *Table) Rows() []Row {
	rows := make([]Row, 0, len(t.records))
	for _, r := range t.records {
		row := Row{
			Mode:        r.Mode(),
			Loss:        r.Tag.Loss,
			DurationS:   r.DurationS(),
			GoodputMbps: r.GoodputMbps(),
		}
		if d := r.Datagram; d != nil {
			row.P50, row.P90, row.P95, row.P99 = d.P50, d.P90, d.P95, d.P99
			row.FileLossRate = d.LossRate
		}
		rows = append(rows, row)
	}
	return rows
}
