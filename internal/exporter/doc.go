// Package exporter writes compliance summaries as CSV.
//
// CSVWriter is the low level writer: it creates parent directories, resolves
// relative paths against a base directory and can prefix a UTF-8 BOM so Excel
// opens the file with the right encoding.
//
// SummaryRecords turns classified sheets into one row per sheet with the
// Met, Not Met and Not Applicable counts:
//
//	w := exporter.NewCSVWriter(outDir, logger)
//	records := exporter.SummaryRecords("cases.xlsx", domain.DirectionGreaterThan, 42, results)
//	err := w.WriteSummary("summary.csv", records)
package exporter
