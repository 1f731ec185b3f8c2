// Package telemetry persists error-level log records to Parquet files so
// failed batches and aborted runs can be inspected after the fact.
package telemetry
