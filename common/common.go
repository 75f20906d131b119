package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func MarshalResult(v interface{}) (io.Reader, error) {
	b, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

func UnMarshalResult(r io.Reader, v interface{}) error {
	return json.NewDecoder(r).Decode(v)
}

// OutputDirs is the layout written for one run directory:
// <root>/<run tag>/{summary,figures,reports}.
type OutputDirs struct {
	Base    string
	Summary string
	Figures string
	Reports string
}

// RunName is the last element of the run directory, used as the output folder.
func RunName(runDir string) string {
	return filepath.Base(filepath.Clean(runDir))
}

func MakeOutputDirs(outRoot, runDir string) (OutputDirs, error) {
	base := filepath.Join(outRoot, RunName(runDir))
	od := OutputDirs{
		Base:    base,
		Summary: filepath.Join(base, "summary"),
		Figures: filepath.Join(base, "figures"),
		Reports: filepath.Join(base, "reports"),
	}
	for _, d := range []string{od.Summary, od.Figures, od.Reports} {
		if err := os.MkdirAll(d, 0o775); err != nil {
			return od, fmt.Errorf("create output dir: %w", err)
		}
	}
	return od, nil
}
