// Package exporter writes derived feature frames to CSV and XLSX files.
// CSV is the format consumed by downstream model training; XLSX exists for
// manual inspection. NaN cells are written as empty, preserving
// missing-value semantics across the round trip.
package exporter
