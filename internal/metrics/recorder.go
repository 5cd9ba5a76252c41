package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultWarning ResultLabel = "warning"
	ResultFatal   ResultLabel = "fatal"
)

// DocumentOutcome labels converted and failed documents.
type DocumentOutcome string

const (
	DocumentMatched   DocumentOutcome = "matched"
	DocumentUnmatched DocumentOutcome = "unmatched"
	DocumentFailed    DocumentOutcome = "failed"
)

// Recorder defines the observability hooks of a migration run.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncDocument(outcome DocumentOutcome)
	AddAssetReferences(resolved, missing int)
	AddMissingSnippets(n int)
	SetWorkers(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncDocument(DocumentOutcome)                {}
func (NoopRecorder) AddAssetReferences(int, int)                {}
func (NoopRecorder) AddMissingSnippets(int)                     {}
func (NoopRecorder) SetWorkers(int)                             {}
