// Package dataprocessing turns incident spreadsheets into report records.
//
// # Architecture
//
// The package is organized into five components, leaf first:
//
// 1. Time parser: ParseTime normalizes clock strings, Excel serials and
// timestamps into a minute-resolution time of day
// 2. Interval calculator: ComputeInterval clips an incident window to the
// store's business window
// 3. Reconciler: maps arbitrary source rows onto the fixed report schema and
// applies business-hours overrides
// 4. Batch filter: FilterEmpty drops rows with no meaningful content
// 5. Processor: runs the above over one input batch, in that order
//
// ReadSheet loads the rows of an input workbook.
//
// # Usage
//
//	rows, err := dataprocessing.ReadSheet("dados_xlsx/janeiro.xlsx")
//	if err != nil {
//	    return err
//	}
//	p := dataprocessing.NewProcessor(config.DefaultReportRules(), logger)
//	records, stats := p.ProcessBatch(ctx, "janeiro.xlsx", rows)
//
// # Data Flow
//
//	Excel File → ReadSheet → SourceRows → Reconcile → ComputeInterval → FilterEmpty → Records
//
// # Error Handling
//
// Only ReadSheet returns errors. Bad time values degrade to absent values and
// irregular incident windows leave the computed columns empty; neither stops
// the batch.
package dataprocessing
