package evaluation

import (
	"lossanalysis/tracelog"
)

type StreamMetrics struct {
	DurationS   float64 `json:"duration_s"`
	GoodputMbps float64 `json:"goodput_mbps"`
	RecvBytes   uint64  `json:"recv_bytes"`
	SendBytes   uint64  `json:"send_bytes"`
}

// Stream treats the run as one continuous transfer from the first send to the
// last receive. Sends come from the sender log and receives from the receiver
// log; either side empty gives zero metrics.
func Stream(send, recv []tracelog.Event, prefix string) StreamMetrics {
	sends, _ := tracelog.Split(send, prefix)
	_, recvs := tracelog.Split(recv, prefix)
	if len(sends) == 0 || len(recvs) == 0 {
		return StreamMetrics{}
	}
	var m StreamMetrics
	t0, t1 := sends[0].TimestampNs, uint64(0)
	for _, e := range sends {
		t0 = min(t0, e.TimestampNs)
		m.SendBytes += e.Size
	}
	for _, e := range recvs {
		t1 = max(t1, e.TimestampNs)
		m.RecvBytes += e.Size
	}
	m.DurationS = DurationS(t0, t1)
	m.GoodputMbps = GoodputMbps(m.RecvBytes, m.DurationS)
	return m
}

func AnalyzeStream(send, recv []tracelog.Event) StreamMetrics {
	return Stream(send, recv, tracelog.ModeStream)
}
