// Package metrics records migration run metrics.
//
// Components receive a Recorder and default to NoopRecorder, so metrics cost
// nothing unless a run asks for them. PrometheusRecorder keeps the series in a
// registry that WriteTextfile exports in the node_exporter textfile format.
package metrics
