package tracelog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

type Phase string

const (
	PhaseSend Phase = "send"
	PhaseRecv Phase = "recv"
)

const (
	ModeDatagram = "datagram"
	ModeStream   = "stream"
)

// one row of a sender or receiver log:
// phase, timestamp_ns, flow_or_stream_id, offset_or_index, size_bytes[, mode_tag]
type Event struct {
	Phase       Phase
	TimestampNs uint64
	FlowID      string
	Offset      uint64
	Size        uint64
	ModeTag     string
}

// FlowKey names one discrete datagram unit.
type FlowKey struct {
	FlowID string
	Offset uint64
}

func (e Event) Key() FlowKey {
	return FlowKey{FlowID: e.FlowID, Offset: e.Offset}
}

// HasMode reports whether the event belongs to the submode selected by prefix.
// Logs written without the optional mode_tag column hold a single submode per
// file, named by the run tag, so untagged rows are accepted for any prefix.
func (e Event) HasMode(prefix string) bool {
	if prefix == "" || e.ModeTag == "" {
		return true
	}
	return strings.HasPrefix(e.ModeTag, prefix)
}

// Reader is a pull iterator over the events of one log. Rows that do not
// parse are dropped and counted, never returned as errors.
type Reader struct {
	csvr    *csv.Reader
	skipped int
	err     error
}

func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	return &Reader{csvr: cr}
}

// Next returns the next well-formed event, false at end of input.
func (r *Reader) Next() (Event, bool) {
	for {
		rec, err := r.csvr.Read()
		if err == io.EOF {
			return Event{}, false
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				r.skipped++
				continue
			}
			r.err = err
			return Event{}, false
		}
		evt, ok := ParseRecord(rec)
		if !ok {
			r.skipped++
			continue
		}
		return evt, true
	}
}

// Skipped is the number of malformed rows dropped so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

// Err returns the first read error that is not a malformed row.
func (r *Reader) Err() error {
	return r.err
}

func ParseRecord(rec []string) (Event, bool) {
	if len(rec) < 5 {
		return Event{}, false
	}
	ts, err := strconv.ParseUint(strings.TrimSpace(rec[1]), 10, 64)
	if err != nil {
		return Event{}, false
	}
	off, err := strconv.ParseUint(strings.TrimSpace(rec[3]), 10, 64)
	if err != nil {
		return Event{}, false
	}
	sz, err := strconv.ParseUint(strings.TrimSpace(rec[4]), 10, 64)
	if err != nil {
		return Event{}, false
	}
	evt := Event{
		Phase:       Phase(strings.ToLower(strings.TrimSpace(rec[0]))),
		TimestampNs: ts,
		FlowID:      strings.TrimSpace(rec[2]),
		Offset:      off,
		Size:        sz,
	}
	if len(rec) > 5 {
		evt.ModeTag = strings.TrimSpace(rec[5])
	}
	return evt, true
}

// Parse drains r into a slice.
func Parse(r io.Reader) ([]Event, int, error) {
	rd := NewReader(r)
	evts := []Event{}
	for {
		evt, ok := rd.Next()
		if !ok {
			break
		}
		evts = append(evts, evt)
	}
	return evts, rd.Skipped(), rd.Err()
}

// ReadLog loads one log file. The file is closed before returning.
func ReadLog(logfile string) ([]Event, int, error) {
	f, err := os.Open(logfile)
	if err != nil {
		return nil, 0, fmt.Errorf("open log %s: %w", logfile, err)
	}
	defer f.Close()
	evts, skipped, err := Parse(f)
	if err != nil {
		return nil, skipped, fmt.Errorf("read log %s: %w", logfile, err)
	}
	return evts, skipped, nil
}

// Split partitions events by phase, keeping only those of the given submode.
func Split(evts []Event, prefix string) (send, recv []Event) {
	for _, e := range evts {
		if !e.HasMode(prefix) {
			continue
		}
		switch e.Phase {
		case PhaseSend:
			send = append(send, e)
		case PhaseRecv:
			recv = append(recv, e)
		}
	}
	return send, recv
}
