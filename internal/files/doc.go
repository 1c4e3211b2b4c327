// Package files discovers the input workbooks of a merge run.
//
// Discovery lists the .xlsx files of a directory in name order so repeated
// runs over the same directory merge batches in the same sequence. Office
// lock files (~$name.xlsx) and subdirectories are ignored.
//
// Example usage:
//
//	discovery := files.NewDiscovery("/path/to/base")
//	workbooks, err := discovery.FindExcelFiles("dados_xlsx")
package files
