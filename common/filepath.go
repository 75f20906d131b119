package common

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"
)

const (
	SendPrefix = "client_send_"
	RecvPrefix = "server_recv_"
	logExt     = ".csv"
)

// RunPair is one sender log and the receiver log it was paired with.
type RunPair struct {
	Tag      RunTag
	SendPath string
	RecvPath string
	Fallback bool
}

// PairRuns discovers client_send_<tag>.csv files in dir and pairs each with
// server_recv_<tag>.csv. When the exact receiver log is missing the first
// server_recv*.csv in the directory is used instead (single shared server log
// setups); with no receiver log at all the run is skipped. Skipped sender
// logs are returned with the reason. Only a failure to list dir is an error.
func PairRuns(dir string) (pairs []RunPair, skipped []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read run dir: %w", err)
	}
	var sends, recvs []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != logExt {
			continue
		}
		switch {
		case strings.HasPrefix(e.Name(), SendPrefix):
			sends = append(sends, e.Name())
		case strings.HasPrefix(e.Name(), "server_recv"):
			recvs = append(recvs, e.Name())
		}
	}
	slices.Sort(sends)
	slices.Sort(recvs)

	pairs = []RunPair{}
	for _, sname := range sends {
		tagstr := strings.TrimSuffix(strings.TrimPrefix(sname, SendPrefix), logExt)
		tag, err := ParseRunTag(tagstr)
		if err != nil {
			log.Printf("[WARN] skip %s: %v", sname, err)
			skipped = append(skipped, fmt.Sprintf("%s: %v", sname, err))
			continue
		}
		pair := RunPair{Tag: tag, SendPath: filepath.Join(dir, sname)}
		rname := RecvPrefix + tagstr + logExt
		if slices.Contains(recvs, rname) {
			pair.RecvPath = filepath.Join(dir, rname)
		} else if len(recvs) > 0 {
			pair.RecvPath = filepath.Join(dir, recvs[0])
			pair.Fallback = true
			log.Printf("[WARN] no %s, falling back to %s", rname, recvs[0])
		} else {
			log.Printf("[WARN] no matching server csv for %s", sname)
			skipped = append(skipped, sname+": no matching server csv")
			continue
		}
		pairs = append(pairs, pair)
	}
	return pairs, skipped, nil
}
