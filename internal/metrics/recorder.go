// Package metrics records build metrics. Components receive a Recorder and
// default to NoopRecorder; the Prometheus implementation is activated when
// metrics.textfile is configured and exported through the node_exporter
// textfile collector format.
package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// BuildOutcomeLabel is the final status of a build.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess  BuildOutcomeLabel = "success"
	BuildOutcomeWarning  BuildOutcomeLabel = "warning"
	BuildOutcomeFailed   BuildOutcomeLabel = "failed"
	BuildOutcomeCanceled BuildOutcomeLabel = "canceled"
)

// Recorder defines observability hooks for build and stage metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	IncPage(status string)
	SetCharacters(n int)
	AddDiagnostics(warnings, errors int)
	AddBrokenLinks(n int)
	ObserveSyncDuration(repo string, d time.Duration, success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)       {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)               {}
func (NoopRecorder) IncStageResult(string, ResultLabel)               {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)                {}
func (NoopRecorder) IncPage(string)                                   {}
func (NoopRecorder) SetCharacters(int)                                {}
func (NoopRecorder) AddDiagnostics(int, int)                          {}
func (NoopRecorder) AddBrokenLinks(int)                               {}
func (NoopRecorder) ObserveSyncDuration(string, time.Duration, bool) {}
