package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	derrors "git.home.luguber.info/inful/docmigrate/internal/foundation/errors"
)

// Namespace prefixes every series.
const Namespace = "docmigrate"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration   *prom.HistogramVec
	runDuration     prom.Histogram
	stageResults    *prom.CounterVec
	documents       *prom.CounterVec
	assetReferences *prom.CounterVec
	missingSnippets prom.Counter
	workers         prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: Namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual migration stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: Namespace,
			Name:      "run_duration_seconds",
			Help:      "Total migration run duration",
			Buckets:   prom.DefBuckets,
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		documents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "documents_total",
			Help:      "Documents processed by outcome",
		}, []string{"outcome"}),
		assetReferences: prom.NewCounterVec(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "asset_references_total",
			Help:      "Image references seen while rewriting, by resolution result",
		}, []string{"result"}),
		missingSnippets: prom.NewCounter(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "missing_snippets_total",
			Help:      "Include directives whose snippet was not found",
		}),
		workers: prom.NewGauge(prom.GaugeOpts{
			Namespace: Namespace,
			Name:      "workers",
			Help:      "Document workers used by the last run",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.runDuration, pr.stageResults, pr.documents,
		pr.assetReferences, pr.missingSnippets, pr.workers)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncDocument(outcome DocumentOutcome) {
	if p == nil {
		return
	}
	p.documents.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddAssetReferences(resolved, missing int) {
	if p == nil {
		return
	}
	p.assetReferences.WithLabelValues("resolved").Add(float64(resolved))
	p.assetReferences.WithLabelValues("missing").Add(float64(missing))
}

func (p *PrometheusRecorder) AddMissingSnippets(n int) {
	if p == nil {
		return
	}
	p.missingSnippets.Add(float64(n))
}

func (p *PrometheusRecorder) SetWorkers(n int) {
	if p == nil {
		return
	}
	p.workers.Set(float64(n))
}

// WriteTextfile writes every series in g to path in the text exposition format.
func WriteTextfile(path string, g prom.Gatherer) error {
	if err := prom.WriteToTextfile(path, g); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "write metrics file").
			WithContext("path", path).
			Build()
	}
	return nil
}
