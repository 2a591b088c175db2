// Package shared holds code used across packages that belongs to no single
// layer. Today that is only the testutil subpackage.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//   - BufferedSlogHandler and NewTestLogger for asserting on structured logs
//   - NewTestMeter and MetricSum for reading OpenTelemetry counters back
//   - Workbook fixtures: CasesSheet, BuildWorkbook, WriteWorkbookFile and
//     ReadWorkbookRows build and decode .xlsx files with excelize
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//		logger, handler := testutil.NewTestLogger(t)
//		data := testutil.BuildWorkbook(t, testutil.CasesSheet("Cases"))
//
//		// exercise code with logger and data
//		testutil.AssertNoErrors(t, handler)
//	}
//
// Nothing here may be imported by production code.
package shared
