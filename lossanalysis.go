package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"lossanalysis/common"
	"lossanalysis/evaluation"
	"lossanalysis/figures"
	"lossanalysis/objstore"
	"lossanalysis/report"
	"lossanalysis/resultdb"
	"lossanalysis/runsummary"
	"lossanalysis/savedata"
	"lossanalysis/tracelog"
)

const (
	parquetBatch  = 4096
	remoteTimeout = 2 * time.Minute
)

func main() {
	var cfg common.Config
	flag.StringVar(&cfg.RunDir, "run-dir", "", "directory holding client_send_*.csv and server_recv_*.csv")
	flag.StringVar(&cfg.OutRoot, "out-root", "results/analysis", "output root")
	flag.BoolVar(&cfg.PerRunCDF, "per-run-cdf", false, "also draw a latency CDF for every datagram run")
	flag.StringVar(&cfg.S3Bucket, "s3-bucket", "", "upload the output tree to this bucket")
	flag.StringVar(&cfg.S3Region, "s3-region", "us-east-1", "bucket region")
	flag.StringVar(&cfg.S3Prefix, "s3-prefix", "", "key prefix for uploaded objects")
	flag.StringVar(&cfg.MongoConfigFile, "mongo-config", "", "json file with mongo credentials; enables the run upsert")
	flag.StringVar(&cfg.MongoDB, "mongo-db", "lossanalysis", "mongo database name")
	flag.BoolVar(&cfg.Verbose, "v", false, "verbose logging")
	flag.Parse()

	if cfg.Verbose {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
	if cfg.RunDir == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(context.Background(), cfg); err != nil {
		log.Fatal(err)
	}
}

// run analyses every log pair in cfg.RunDir and writes the output tree.
func run(ctx context.Context, cfg common.Config) error {
	pairs, skipped, err := common.PairRuns(cfg.RunDir)
	if err != nil {
		return err
	}
	od, err := common.MakeOutputDirs(cfg.OutRoot, cfg.RunDir)
	if err != nil {
		return err
	}

	pw := openParquet(od.Summary)
	prom := savedata.NewPrometheusExporter()
	table := &runsummary.Table{}

	for _, pair := range pairs {
		rec, err := analyzePair(pair)
		if err != nil {
			log.Println("[WARN]", err)
			skipped = append(skipped, filepath.Base(pair.SendPath))
			continue
		}
		logRecord(rec)
		table.Add(rec)
		if pw != nil {
			if err := pw.WriteRecord(rec); err != nil {
				log.Println("[WARN] parquet:", err)
				pw.Close()
				pw = nil
			}
		}
		prom.RecordRun(rec)
		if cfg.PerRunCDF && rec.Datagram != nil {
			perRunCDF(od.Figures, rec)
		}
	}
	if pw != nil {
		if err := pw.Close(); err != nil {
			log.Println("[WARN] parquet:", err)
		} else {
			log.Printf("wrote %d latency samples to %s", pw.Rows(), pw.GetFilePath())
		}
	}
	log.Printf("analysed %d runs, skipped %d", table.Len(), len(skipped))

	rows := table.Rows()
	if err := savedata.SaveSummary(filepath.Join(od.Summary, "summary.csv"), rows); err != nil {
		return err
	}
	if err := savedata.SaveJSON(filepath.Join(od.Summary, "runs.json"), table.Records()); err != nil {
		return err
	}
	if err := prom.WriteTextfile(filepath.Join(od.Summary, "metrics.prom")); err != nil {
		log.Println("[WARN]", err)
	}

	drawn := drawFigures(od.Figures, table.ByLoss())
	in := report.Input{
		RunDir:    cfg.RunDir,
		FigureDir: od.Figures,
		Figures:   drawn,
		Rows:      rows,
		Skipped:   skipped,
	}
	if err := report.Write(filepath.Join(od.Reports, "report.md"), in); err != nil {
		return err
	}
	log.Println("outputs written to", od.Base)

	if cfg.S3Bucket != "" {
		if err := upload(ctx, cfg, od.Base); err != nil {
			log.Println("[WARN] s3 upload:", err)
		}
	}
	if cfg.MongoConfigFile != "" {
		if err := storeRuns(ctx, cfg, table.Records()); err != nil {
			log.Println("[WARN] mongo:", err)
		}
	}
	return nil
}

// openParquet returns nil when the latency file cannot be created; the
// remaining outputs are still written.
func openParquet(dir string) *savedata.ParquetWriter {
	pw, err := savedata.NewParquetWriter(filepath.Join(dir, "latency.parquet"), parquetBatch)
	if err != nil {
		log.Println("[WARN] parquet:", err)
		return nil
	}
	return pw
}

func analyzePair(pair common.RunPair) (runsummary.RunRecord, error) {
	rec := runsummary.RunRecord{
		Tag:      pair.Tag,
		SendPath: pair.SendPath,
		RecvPath: pair.RecvPath,
		Fallback: pair.Fallback,
	}
	if pair.Tag.Mode != tracelog.ModeDatagram && pair.Tag.Mode != tracelog.ModeStream {
		return rec, fmt.Errorf("%s: unknown mode %q", pair.Tag.Raw, pair.Tag.Mode)
	}
	sendEvts, sskip, err := tracelog.ReadLog(pair.SendPath)
	if err != nil {
		return rec, err
	}
	recvEvts, rskip, err := tracelog.ReadLog(pair.RecvPath)
	if err != nil {
		return rec, err
	}
	rec.Skipped = sskip + rskip
	if rec.Skipped > 0 {
		log.Printf("[WARN] %s: dropped %d malformed rows", pair.Tag.Raw, rec.Skipped)
	}

	switch pair.Tag.Mode {
	case tracelog.ModeDatagram:
		m := evaluation.AnalyzeDatagram(sendEvts, recvEvts)
		rec.Datagram = &m
	case tracelog.ModeStream:
		m := evaluation.AnalyzeStream(sendEvts, recvEvts)
		rec.Stream = &m
	}
	return rec, nil
}

func logRecord(rec runsummary.RunRecord) {
	if d := rec.Datagram; d != nil {
		loss := "n/a"
		if d.LossRate != nil {
			loss = fmt.Sprintf("%.2f%%", *d.LossRate*100)
		}
		log.Printf("[DGRAM] %s: loss=%s p50=%s p90=%s p99=%s goodput=%.3fMbps",
			rec.Tag.Raw, loss, msOrNA(d.P50), msOrNA(d.P90), msOrNA(d.P99), d.GoodputMbps)
		if d.DuplicateSends > 0 {
			log.Printf("[WARN] %s: %d units were sent more than once, kept the last send", rec.Tag.Raw, d.DuplicateSends)
		}
	}
	if s := rec.Stream; s != nil {
		log.Printf("[STREAM] %s: duration=%.3fs goodput=%.3fMbps recv=%dB", rec.Tag.Raw, s.DurationS, s.GoodputMbps, s.RecvBytes)
	}
}

func msOrNA(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.3fms", *v)
}

func perRunCDF(dir string, rec runsummary.RunRecord) {
	path := filepath.Join(dir, rec.Tag.Raw+"_latency_cdf.png")
	series := []figures.Series{{Name: rec.Tag.Loss.Percent(), Values: rec.Datagram.LatenciesMs}}
	err := figures.LatencyCDF(path, "Datagram latency CDF "+rec.Tag.Raw, series)
	if err != nil && !errors.Is(err, figures.ErrNoData) {
		log.Println("[WARN] per-run cdf:", err)
	}
}

// drawFigures renders the cross-run figures and returns the names written.
func drawFigures(dir string, groups []runsummary.LossGroup) []string {
	draw := map[string]func(string) error{
		figures.CompletionBarName: func(p string) error { return figures.CompletionBar(p, groups) },
		figures.GoodputBarName:    func(p string) error { return figures.GoodputBar(p, groups) },
		figures.LatencyBoxName:    func(p string) error { return figures.LatencyBox(p, groups) },
		figures.LossCurveName:     func(p string) error { return figures.LossCurve(p, groups) },
		figures.LatencyCDFName: func(p string) error {
			return figures.LatencyCDF(p, "Datagram latency CDF", figures.CDFSeries(groups))
		},
	}
	drawn := []string{}
	for _, name := range figures.Names {
		err := draw[name](filepath.Join(dir, name))
		switch {
		case err == nil:
			drawn = append(drawn, name)
		case errors.Is(err, figures.ErrNoData):
			log.Println("skip figure", name, "(no data)")
		default:
			log.Println("[WARN] figure", name, err)
		}
	}
	return drawn
}

func upload(ctx context.Context, cfg common.Config, base string) error {
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()
	client, err := objstore.NewS3Client(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3Prefix)
	if err != nil {
		return err
	}
	n, err := client.UploadTree(ctx, base)
	if err != nil {
		return err
	}
	log.Printf("uploaded %d objects to s3://%s", n, cfg.S3Bucket)
	return nil
}

func storeRuns(ctx context.Context, cfg common.Config, recs []runsummary.RunRecord) error {
	dbcfg, err := resultdb.LoadConfig(cfg.MongoConfigFile)
	if err != nil {
		return err
	}
	rm, err := resultdb.Connect(ctx, dbcfg, cfg.MongoDB)
	if err != nil {
		return err
	}
	defer rm.Close(context.Background())
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()
	n, err := rm.UpsertRuns(ctx, common.RunName(cfg.RunDir), recs)
	if err != nil {
		return err
	}
	log.Printf("stored %d runs (%d new)", len(recs), n)
	return nil
}
