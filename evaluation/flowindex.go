package evaluation

import (
	"lossanalysis/tracelog"
)

type SendEntry struct {
	TimestampNs uint64
	Size        uint64
}

// SendIndex keeps the last observed send per flow key. A later send under the
// same key replaces the earlier one; Duplicates counts those replacements.
type SendIndex struct {
	Entries    map[tracelog.FlowKey]SendEntry
	Duplicates int
}

type RecvEntry struct {
	LastNs uint64
	Bytes  uint64
	Parts  int
}

// RecvAggregate folds all receive events of a flow key: the latest arrival is
// the completion time and sizes accumulate across fragments.
type RecvAggregate struct {
	Entries map[tracelog.FlowKey]RecvEntry
}

func NewSendIndex() *SendIndex {
	return &SendIndex{Entries: make(map[tracelog.FlowKey]SendEntry)}
}

func NewRecvAggregate() *RecvAggregate {
	return &RecvAggregate{Entries: make(map[tracelog.FlowKey]RecvEntry)}
}

func (s *SendIndex) Add(evt tracelog.Event) {
	key := evt.Key()
	if _, ok := s.Entries[key]; ok {
		s.Duplicates++
	}
	s.Entries[key] = SendEntry{TimestampNs: evt.TimestampNs, Size: evt.Size}
}

func (s *SendIndex) TotalBytes() uint64 {
	var total uint64
	for _, e := range s.Entries {
		total += e.Size
	}
	return total
}

func (r *RecvAggregate) Add(evt tracelog.Event) {
	key := evt.Key()
	cur := r.Entries[key]
	cur.Bytes += evt.Size
	cur.Parts++
	if evt.TimestampNs > cur.LastNs {
		cur.LastNs = evt.TimestampNs
	}
	r.Entries[key] = cur
}

// BuildSendIndex indexes the send events of the given submode.
func BuildSendIndex(evts []tracelog.Event, prefix string) *SendIndex {
	idx := NewSendIndex()
	for _, e := range evts {
		if e.Phase == tracelog.PhaseSend && e.HasMode(prefix) {
			idx.Add(e)
		}
	}
	return idx
}

// BuildRecvAggregate aggregates the receive events of the given submode.
func BuildRecvAggregate(evts []tracelog.Event, prefix string) *RecvAggregate {
	agg := NewRecvAggregate()
	for _, e := range evts {
		if e.Phase == tracelog.PhaseRecv && e.HasMode(prefix) {
			agg.Add(e)
		}
	}
	return agg
}
