package evaluation

import (
	"testing"

	"lossanalysis/tracelog"
)

func TestBuildSendIndex(t *testing.T) {
	evts := []tracelog.Event{
		{Phase: tracelog.PhaseSend, TimestampNs: 1, FlowID: "aa", Offset: 0, Size: 100, ModeTag: "datagram"},
		{Phase: tracelog.PhaseSend, TimestampNs: 2, FlowID: "aa", Offset: 100, Size: 50, ModeTag: "datagram"},
		{Phase: tracelog.PhaseSend, TimestampNs: 3, FlowID: "aa", Offset: 0, Size: 80, ModeTag: "datagram"},
		{Phase: tracelog.PhaseSend, TimestampNs: 4, FlowID: "0", Offset: 0, Size: 999, ModeTag: "stream"},
		{Phase: tracelog.PhaseRecv, TimestampNs: 5, FlowID: "aa", Offset: 0, Size: 100, ModeTag: "datagram"},
	}
	idx := BuildSendIndex(evts, tracelog.ModeDatagram)
	if len(idx.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(idx.Entries))
	}
	if got := idx.Entries[key("aa", 0)]; got != (SendEntry{TimestampNs: 3, Size: 80}) {
		t.Errorf("last send should win, got %+v", got)
	}
	if idx.TotalBytes() != 130 {
		t.Errorf("total = %d, want 130", idx.TotalBytes())
	}
	if idx.Duplicates != 1 {
		t.Errorf("duplicates = %d", idx.Duplicates)
	}
}

func TestBuildRecvAggregate(t *testing.T) {
	evts := []tracelog.Event{
		{Phase: tracelog.PhaseRecv, TimestampNs: 9, FlowID: "aa", Offset: 0, Size: 40},
		{Phase: tracelog.PhaseRecv, TimestampNs: 7, FlowID: "aa", Offset: 0, Size: 60},
		{Phase: tracelog.PhaseRecv, TimestampNs: 8, FlowID: "aa", Offset: 1, Size: 10},
		{Phase: tracelog.PhaseSend, TimestampNs: 1, FlowID: "aa", Offset: 0, Size: 100},
	}
	agg := BuildRecvAggregate(evts, tracelog.ModeDatagram)
	got := agg.Entries[key("aa", 0)]
	if got.LastNs != 9 || got.Bytes != 100 || got.Parts != 2 {
		t.Errorf("aggregate = %+v", got)
	}
	if len(agg.Entries) != 2 {
		t.Errorf("entries = %d", len(agg.Entries))
	}
}
