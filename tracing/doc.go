// Package tracing records process lifetimes as OpenTelemetry spans. All
// instrumentation is kept here so that the kernel itself never imports an
// exporter.
package tracing
