// Package shared holds code used by more than one package of the incident
// merger that belongs to no single layer.
//
// # Structure
//
// - testutil: test helpers. A buffered slog handler that captures records
// for assertions, and workbook fixtures that write and read small xlsx
// files through excelize.
//
// # Usage Guidelines
//
// Only non-domain helpers belong here. Anything that knows about incident
// records, report rules or the merge pipeline lives in its own package.
package shared
