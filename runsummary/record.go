package runsummary

import (
	"lossanalysis/common"
	"lossanalysis/evaluation"
)

// RunRecord is the result of analysing one sender/receiver log pair. Exactly
// one of Datagram and Stream is set.
type RunRecord struct {
	Tag      common.RunTag               `json:"tag"`
	SendPath string                      `json:"send_path"`
	RecvPath string                      `json:"recv_path"`
	Fallback bool                        `json:"recv_fallback"`
	Skipped  int                         `json:"skipped_rows"`
	Datagram *evaluation.DatagramMetrics `json:"datagram,omitempty"`
	Stream   *evaluation.StreamMetrics   `json:"stream,omitempty"`
}

func (r RunRecord) Mode() string {
	switch {
	case r.Datagram != nil:
		return "datagram"
	case r.Stream != nil:
		return "stream"
	}
	return r.Tag.Mode
}

func (r RunRecord) DurationS() float64 {
	switch {
	case r.Datagram != nil:
		return r.Datagram.DurationS
	case r.Stream != nil:
		return r.Stream.DurationS
	}
	return 0
}

func (r RunRecord) GoodputMbps() float64 {
	switch {
	case r.Datagram != nil:
		return r.Datagram.GoodputMbps
	case r.Stream != nil:
		return r.Stream.GoodputMbps
	}
	return 0
}
