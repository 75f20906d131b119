package evaluation

import (
	"lossanalysis/common"
	"lossanalysis/tracelog"
)

type DatagramMetrics struct {
	DurationS   float64   `json:"duration_s"`
	GoodputMbps float64   `json:"goodput_mbps"`
	LatenciesMs []float64 `json:"latencies_ms"`
	P50         *float64  `json:"p50_ms"`
	P90         *float64  `json:"p90_ms"`
	P95         *float64  `json:"p95_ms"`
	P99         *float64  `json:"p99_ms"`
	MeanMs      float64   `json:"mean_ms"`
	StdMs       float64   `json:"std_ms"`
	LossRate    *float64  `json:"loss_rate"`

	SentBytes      uint64 `json:"sent_bytes"`
	MatchedBytes   uint64 `json:"matched_bytes"`
	SentUnits      int    `json:"sent_units"`
	MatchedUnits   int    `json:"matched_units"`
	PartialUnits   int    `json:"partial_units"`
	DuplicateSends int    `json:"duplicate_sends"`
}

// Datagram matches every indexed send against the receive aggregate. A unit
// counts as delivered only once the receiver has seen at least as many bytes
// as were sent; partial deliveries are lost. Receive entries without a send
// are ignored.
func Datagram(s *SendIndex, r *RecvAggregate) DatagramMetrics {
	m := DatagramMetrics{
		LatenciesMs:    []float64{},
		SentBytes:      s.TotalBytes(),
		SentUnits:      len(s.Entries),
		DuplicateSends: s.Duplicates,
	}
	var t0, t1 uint64
	first := true
	for key, snd := range s.Entries {
		if first || snd.TimestampNs < t0 {
			t0 = snd.TimestampNs
			first = false
		}
		rcv, ok := r.Entries[key]
		if !ok {
			continue
		}
		if rcv.Bytes < snd.Size {
			m.PartialUnits++
			continue
		}
		m.LatenciesMs = append(m.LatenciesMs, latencyMs(snd.TimestampNs, rcv.LastNs))
		m.MatchedBytes += snd.Size
		m.MatchedUnits++
		if rcv.LastNs > t1 {
			t1 = rcv.LastNs
		}
	}
	if m.MatchedUnits > 0 {
		m.DurationS = DurationS(t0, t1)
		m.GoodputMbps = GoodputMbps(m.MatchedBytes, m.DurationS)
	}
	if m.SentBytes > 0 {
		loss := 1 - float64(m.MatchedBytes)/float64(m.SentBytes)
		m.LossRate = &loss
	}
	m.LatenciesMs = common.SortedCopy(m.LatenciesMs)
	m.P50 = percentile(m.LatenciesMs, 50)
	m.P90 = percentile(m.LatenciesMs, 90)
	m.P95 = percentile(m.LatenciesMs, 95)
	m.P99 = percentile(m.LatenciesMs, 99)
	m.MeanMs, m.StdMs = common.MeanStd(m.LatenciesMs)
	return m
}

// AnalyzeDatagram runs the datagram engine over raw sender and receiver logs.
func AnalyzeDatagram(send, recv []tracelog.Event) DatagramMetrics {
	return Datagram(
		BuildSendIndex(send, tracelog.ModeDatagram),
		BuildRecvAggregate(recv, tracelog.ModeDatagram),
	)
}

// a receive stamped before its send yields a negative latency; clocks are
// trusted as given.
func latencyMs(sendNs, recvNs uint64) float64 {
	return float64(int64(recvNs-sendNs)) / 1e6
}

func percentile(sorted []float64, p float64) *float64 {
	v, ok := common.Percentile(sorted, p)
	if !ok {
		return nil
	}
	return &v
}
