// Package core provides the business logic for sensor CSV ingestion.
//
// This package is the heart of the pipeline, containing all domain logic
// independent of the filesystem intake loop and the persistence layer. It
// can be driven by the poll loop, one-shot tools, or tests without
// modification.
//
// # Architecture
//
// The package is organized around a per-file data flow:
//
//   - Frame loading: a semicolon-delimited, decimal-comma CSV is parsed into
//     a columnar [Frame]; synthetic unnamed columns are dropped and the
//     dataset's -200 "no reading" sentinel becomes an absent value.
//   - Timestamp building: separate Date (dd/mm/yyyy) and Time (HH.MM.SS)
//     fields combine into one UTC instant per row; mismatches yield an
//     absent timestamp rather than an error.
//   - Validate/transform: [ValidateTransform] reshapes wide measurement
//     columns into long form (one reading per row), canonicalizes reading
//     types, applies inclusive range checks, and partitions rows into valid
//     and invalid sets. Rows with an absent value land in neither set.
//   - Aggregation: [ComputeAggregates] summarizes the valid partition per
//     reading type (count, min, max, mean, sample standard deviation) under
//     a shared timestamp window.
//   - Key derivation: [BuildRawReadings] attaches a deterministic SHA-256
//     dedupe key to every valid reading, giving the store a natural
//     idempotency constraint.
//
// # Partitioning
//
// Every reshaped row is classified by three predicates in precedence order:
// missing sensor id or timestamp makes the row invalid (missing_key_field),
// an absent reading value silently drops the row, and a present value
// outside its configured range makes the row invalid (out_of_range). The
// caller treats a non-empty invalid partition as grounds to quarantine the
// whole file.
//
// # Optional values
//
// "No value" is represented with pgtype validity semantics (Valid=false)
// throughout, so cells flow from CSV parsing to database parameters without
// intermediate sentinel types.
package core
