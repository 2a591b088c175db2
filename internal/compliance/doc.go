// Package compliance implements the row classification rule of the checker.
//
// A row is tagged by comparing the value of its target column against a
// day threshold:
//
//   - a blank value receives the sheet's blank policy
//   - a value that does not parse as a number is Not Applicable
//   - otherwise the value is Met when it is strictly greater than (or, for
//     the less-than direction, strictly less than) the threshold, and
//     Not Met in every other case, equality included
//
// Classification is pure. It never fails for a single value; errors only come
// from resolving the target column of a sheet.
package compliance
