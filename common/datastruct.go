package common

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// LossLevel is a configured loss probability in parts per million. Using an
// integer key keeps "0.01" and "0.010" from landing in different groups.
type LossLevel int64

const lossScale = 1e6

func ParseLossLevel(s string) (LossLevel, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse loss %q: %w", s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("parse loss %q: not a finite number", s)
	}
	return LossLevel(math.Round(f * lossScale)), nil
}

func (l LossLevel) Float() float64 {
	return float64(l) / lossScale
}

func (l LossLevel) String() string {
	return strconv.FormatFloat(l.Float(), 'f', -1, 64)
}

// Percent renders the level for chart ticks, e.g. 0.01 -> "1.0%".
func (l LossLevel) Percent() string {
	return strconv.FormatFloat(l.Float()*100, 'f', 1, 64) + "%"
}

var tagRe = regexp.MustCompile(`mode\(([^)]+)\)_loss\(([^)]+)\)_cca\(([^)]+)\)_chunk\(([^)]+)\)`)

// RunTag holds the experiment parameters embedded in a log filename.
type RunTag struct {
	Raw      string
	Mode     string
	Loss     LossLevel
	LossText string
	CCA      string
	Chunk    string
}

// ParseRunTag extracts mode(..)_loss(..)_cca(..)_chunk(..) from a filename or tag.
func ParseRunTag(name string) (RunTag, error) {
	m := tagRe.FindStringSubmatch(name)
	if m == nil {
		return RunTag{}, fmt.Errorf("no run tag in %q", name)
	}
	loss, err := ParseLossLevel(m[2])
	if err != nil {
		return RunTag{}, err
	}
	return RunTag{
		Raw:      m[0],
		Mode:     strings.ToLower(m[1]),
		Loss:     loss,
		LossText: m[2],
		CCA:      m[3],
		Chunk:    m[4],
	}, nil
}

type Config struct {
	RunDir          string
	OutRoot         string
	PerRunCDF       bool
	S3Bucket        string
	S3Region        string
	S3Prefix        string
	MongoConfigFile string
	MongoDB         string
	Verbose         bool
}
