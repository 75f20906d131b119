package savedata

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"lossanalysis/runsummary"
)

// LatencySample is one delivered datagram of one run.
type LatencySample struct {
	Run       string  `parquet:"name=run, type=BYTE_ARRAY, convertedtype=UTF8"`
	Mode      string  `parquet:"name=mode, type=BYTE_ARRAY, convertedtype=UTF8"`
	Loss      float64 `parquet:"name=loss, type=DOUBLE"`
	CCA       string  `parquet:"name=cca, type=BYTE_ARRAY, convertedtype=UTF8"`
	Chunk     string  `parquet:"name=chunk, type=BYTE_ARRAY, convertedtype=UTF8"`
	Rank      int64   `parquet:"name=rank, type=INT64"`
	LatencyMs float64 `parquet:"name=latency_ms, type=DOUBLE"`
}

// ParquetWriter streams latency samples of datagram runs to one file.
type ParquetWriter struct {
	writer    *writer.ParquetWriter
	file      source.ParquetFile
	filePath  string
	batchSize int
	rows      int
	results   []LatencySample
}

func NewParquetWriter(filePath string, batchSize int) (*ParquetWriter, error) {
	file, err := local.NewLocalFileWriter(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet file: %w", err)
	}
	pw, err := writer.NewParquetWriter(file, new(LatencySample), 4)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &ParquetWriter{
		writer:    pw,
		file:      file,
		filePath:  filePath,
		batchSize: batchSize,
		results:   make([]LatencySample, 0, batchSize),
	}, nil
}

// WriteRecord adds the latency samples of a datagram run. Stream runs carry
// no per-message samples and are ignored.
func (pw *ParquetWriter) WriteRecord(rec runsummary.RunRecord) error {
	if rec.Datagram == nil {
		return nil
	}
	for i, lat := range rec.Datagram.LatenciesMs {
		pw.results = append(pw.results, LatencySample{
			Run:       rec.Tag.Raw,
			Mode:      rec.Mode(),
			Loss:      rec.Tag.Loss.Float(),
			CCA:       rec.Tag.CCA,
			Chunk:     rec.Tag.Chunk,
			Rank:      int64(i),
			LatencyMs: lat,
		})
		if len(pw.results) >= pw.batchSize {
			if err := pw.flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (pw *ParquetWriter) flush() error {
	for _, result := range pw.results {
		if err := pw.writer.Write(result); err != nil {
			return fmt.Errorf("failed to write sample: %w", err)
		}
		pw.rows++
	}
	pw.results = pw.results[:0]
	return nil
}

// Close flushes pending samples and finalises the file footer.
func (pw *ParquetWriter) Close() error {
	if err := pw.flush(); err != nil {
		pw.file.Close()
		return err
	}
	if err := pw.writer.WriteStop(); err != nil {
		pw.file.Close()
		return fmt.Errorf("failed to stop parquet writer: %w", err)
	}
	if err := pw.file.Close(); err != nil {
		return fmt.Errorf("failed to close parquet file: %w", err)
	}
	return nil
}

func (pw *ParquetWriter) Rows() int {
	return pw.rows
}

func (pw *ParquetWriter) GetFilePath() string {
	return pw.filePath
}
