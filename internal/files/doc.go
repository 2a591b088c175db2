// Package files discovers workbooks on disk for batch checking.
//
// Discovery accepts a directory, a single file or a glob pattern and
// returns the matching workbooks sorted by name. Excel lock files (~$name)
// are always skipped.
//
//	discovery := files.NewDiscovery("", ".xlsx")
//	workbooks, err := discovery.FindWorkbooks("reports/*.xlsx")
package files
