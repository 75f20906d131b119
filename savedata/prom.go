package savedata

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"lossanalysis/runsummary"
)

// PrometheusExporter renders run metrics in the node exporter textfile
// format so a batch of runs can be scraped after the fact.
type PrometheusExporter struct {
	registry        *prometheus.Registry
	durationGauge   *prometheus.GaugeVec
	goodputGauge    *prometheus.GaugeVec
	latencyGauge    *prometheus.GaugeVec
	lossGauge       *prometheus.GaugeVec
	samplesGauge    *prometheus.GaugeVec
	duplicatesGauge *prometheus.GaugeVec
}

var runLabels = []string{"mode", "loss", "cca", "chunk"}

func NewPrometheusExporter() *PrometheusExporter {
	pe := &PrometheusExporter{
		registry: prometheus.NewRegistry(),
		durationGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lossanalysis_run_duration_seconds",
				Help: "Transfer completion time of the run",
			},
			runLabels,
		),
		goodputGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lossanalysis_run_goodput_mbps",
				Help: "Goodput of the run in Mbps",
			},
			runLabels,
		),
		latencyGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lossanalysis_datagram_latency_ms",
				Help: "Datagram end-to-end latency percentiles in milliseconds",
			},
			append(runLabels, "percentile"),
		),
		lossGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lossanalysis_datagram_loss_ratio",
				Help: "Fraction of sent datagram bytes not fully delivered",
			},
			runLabels,
		),
		samplesGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lossanalysis_datagram_delivered_units",
				Help: "Number of datagram units fully delivered",
			},
			runLabels,
		),
		duplicatesGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lossanalysis_datagram_duplicate_sends",
				Help: "Send events that replaced an earlier send of the same unit",
			},
			runLabels,
		),
	}
	pe.registry.MustRegister(
		pe.durationGauge,
		pe.goodputGauge,
		pe.latencyGauge,
		pe.lossGauge,
		pe.samplesGauge,
		pe.duplicatesGauge,
	)
	return pe
}

func (pe *PrometheusExporter) RecordRun(rec runsummary.RunRecord) {
	lv := []string{rec.Mode(), rec.Tag.Loss.String(), rec.Tag.CCA, rec.Tag.Chunk}
	pe.durationGauge.WithLabelValues(lv...).Set(rec.DurationS())
	pe.goodputGauge.WithLabelValues(lv...).Set(rec.GoodputMbps())
	d := rec.Datagram
	if d == nil {
		return
	}
	for pct, v := range map[string]*float64{"p50": d.P50, "p90": d.P90, "p95": d.P95, "p99": d.P99} {
		if v != nil {
			pe.latencyGauge.WithLabelValues(append(lv, pct)...).Set(*v)
		}
	}
	if d.LossRate != nil {
		pe.lossGauge.WithLabelValues(lv...).Set(*d.LossRate)
	}
	pe.samplesGauge.WithLabelValues(lv...).Set(float64(d.MatchedUnits))
	pe.duplicatesGauge.WithLabelValues(lv...).Set(float64(d.DuplicateSends))
}

// Gatherer exposes the exporter's private registry.
func (pe *PrometheusExporter) Gatherer() prometheus.Gatherer {
	return pe.registry
}

func (pe *PrometheusExporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, pe.Gatherer()); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
