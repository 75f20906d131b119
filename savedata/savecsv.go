package savedata

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"lossanalysis/runsummary"
)

var SummaryHeader = []string{"mode", "loss", "duration_s", "goodput_mbps", "p50_ms", "p90_ms", "p95_ms", "p99_ms", "file_loss_rate"}

type SaveCSV struct {
	Name string
	Fp   *os.File
	Data [][]string
}

func (mycsv *SaveCSV) NewCSV(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o775); err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create csv %s: %w", filename, err)
	}
	mycsv.Name = filename
	mycsv.Fp = file
	mycsv.Data = make([][]string, 0)
	return nil
}

func (mycsv *SaveCSV) CloseCSV() error {
	if mycsv.Fp == nil {
		return fmt.Errorf("csv %q not initialised", mycsv.Name)
	}
	w := csv.NewWriter(mycsv.Fp)
	if err := w.WriteAll(mycsv.Data); err != nil {
		_ = mycsv.Fp.Close()
		return fmt.Errorf("write csv %s: %w", mycsv.Name, err)
	}
	return mycsv.Fp.Close()
}

//Append one element to csv data, no actual write
func (mycsv *SaveCSV) AddOneToCSV(data []string) {
	mycsv.Data = append(mycsv.Data, data)
}

// SummaryRecord renders one summary row; undefined values are blank.
func SummaryRecord(r runsummary.Row) []string {
	return []string{
		r.Mode,
		r.Loss.String(),
		ff(r.DurationS),
		ff(r.GoodputMbps),
		fp(r.P50),
		fp(r.P90),
		fp(r.P95),
		fp(r.P99),
		fp(r.FileLossRate),
	}
}

func SaveSummary(path string, rows []runsummary.Row) error {
	sum := &SaveCSV{}
	if err := sum.NewCSV(path); err != nil {
		return err
	}
	sum.AddOneToCSV(SummaryHeader)
	for _, r := range rows {
		sum.AddOneToCSV(SummaryRecord(r))
	}
	return sum.CloseCSV()
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fp(v *float64) string {
	if v == nil {
		return ""
	}
	return ff(*v)
}
