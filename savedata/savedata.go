package savedata

import (
	"fmt"
	"io"
	"os"

	"lossanalysis/common"
)

// SaveJSON writes data as indented JSON, replacing any existing file.
func SaveJSON(path string, data interface{}) error {
	r, err := common.MarshalResult(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func LoadJSON(path string, data interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return common.UnMarshalResult(f, data)
}
