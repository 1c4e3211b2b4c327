// Package exporter writes merged incident records out of the pipeline.
//
// ReportWriter appends records to the active sheet of a template workbook,
// starting below the template header, and styles each row it writes. Rows
// are written in schema order at a cursor that only moves forward, so the
// records of successive input batches follow one another. Trim removes
// whatever template rows remain below the last written row.
//
// WriteRecordsCSV writes an optional CSV copy of the same rows, prefixed
// with a UTF-8 BOM so spreadsheet programs detect the encoding.
package exporter
