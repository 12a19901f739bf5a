// Package metrics counts what a collection run did and exports the result
// as a Prometheus textfile, for node_exporter to pick up after batch runs.
package metrics
