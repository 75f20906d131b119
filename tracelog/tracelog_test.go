package tracelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name string
		rec  []string
		ok   bool
		want Event
	}{
		{
			name: "full row",
			rec:  []string{"send", "100", "00000000000000ab", "1200", "1200", "datagram"},
			ok:   true,
			want: Event{Phase: PhaseSend, TimestampNs: 100, FlowID: "00000000000000ab", Offset: 1200, Size: 1200, ModeTag: "datagram"},
		},
		{
			name: "no mode tag",
			rec:  []string{"recv", "5", "f1", "0", "10"},
			ok:   true,
			want: Event{Phase: PhaseRecv, TimestampNs: 5, FlowID: "f1", Offset: 0, Size: 10},
		},
		{
			name: "padded fields",
			rec:  []string{" RECV ", " 7 ", " f1 ", " 3 ", " 4 ", " stream "},
			ok:   true,
			want: Event{Phase: PhaseRecv, TimestampNs: 7, FlowID: "f1", Offset: 3, Size: 4, ModeTag: "stream"},
		},
		{name: "too few fields", rec: []string{"send", "1", "f1", "0"}},
		{name: "bad timestamp", rec: []string{"send", "x", "f1", "0", "10"}},
		{name: "negative timestamp", rec: []string{"send", "-1", "f1", "0", "10"}},
		{name: "bad offset", rec: []string{"send", "1", "f1", "o", "10"}},
		{name: "bad size", rec: []string{"recv", "1", "0", "1350", "stream"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRecord(tt.rec)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReaderDropsMalformedRows(t *testing.T) {
	in := strings.Join([]string{
		"send,1,f1,0,100,datagram",
		"garbage",
		"send,2,f1,100,abc,datagram",
		"",
		"send,3,f1,200,100",
		"recv,5,f1,0,100,datagram",
	}, "\n")
	evts, skipped, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(evts) != 3 {
		t.Fatalf("got %d events, want 3: %+v", len(evts), evts)
	}
	if evts[0].TimestampNs != 1 || evts[1].TimestampNs != 3 {
		t.Errorf("unexpected order: %+v", evts)
	}
	last := evts[len(evts)-1]
	if last.Phase != PhaseRecv || last.TimestampNs != 5 {
		t.Errorf("last event = %+v", last)
	}
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
}

func TestReadLogMissingFile(t *testing.T) {
	if _, _, err := ReadLog(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadLog(t *testing.T) {
	p := filepath.Join(t.TempDir(), "client_send.csv")
	data := "send,10,aa,0,5,datagram\nsend,11,aa,5,5,datagram\nbad\n"
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	evts, skipped, err := ReadLog(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(evts) != 2 || skipped != 1 {
		t.Fatalf("got %d events, %d skipped", len(evts), skipped)
	}
}

func TestSplitByMode(t *testing.T) {
	evts := []Event{
		{Phase: PhaseSend, ModeTag: "datagram"},
		{Phase: PhaseSend, ModeTag: "stream"},
		{Phase: PhaseRecv, ModeTag: "datagram:prio"},
		{Phase: PhaseRecv},
		{Phase: "ack", ModeTag: "datagram"},
	}
	send, recv := Split(evts, ModeDatagram)
	if len(send) != 1 {
		t.Errorf("send = %d, want 1", len(send))
	}
	if len(recv) != 2 {
		t.Errorf("recv = %d, want 2", len(recv))
	}
}

func TestHasMode(t *testing.T) {
	tests := []struct {
		tag, prefix string
		want        bool
	}{
		{"datagram", ModeDatagram, true},
		{"datagram:prio", ModeDatagram, true},
		{"stream", ModeDatagram, false},
		{"", ModeDatagram, true},
		{"", ModeStream, true},
		{"stream", "", true},
	}
	for _, tt := range tests {
		if got := (Event{ModeTag: tt.tag}).HasMode(tt.prefix); got != tt.want {
			t.Errorf("HasMode(%q) on %q = %v, want %v", tt.prefix, tt.tag, got, tt.want)
		}
	}
}
