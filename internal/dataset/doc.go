// Package dataset defines the record schema and tabular containers for the
// NYC taxi fare feature pipeline. It handles the complete boundary between
// raw CSV exports and the typed records the feature packages consume.
//
// # Components
//
// 1. Record: one trip observation with a validated, fixed schema
// 2. Frame: a column-oriented float64 table with stable column order
// 3. LoadCSV / ReadCSV: raw export parsing with schema validation
// 4. Clean: bad-record removal (non-finite fields, fare outliers,
// out-of-bounds coordinates)
//
// # Usage
//
//	records, err := dataset.LoadCSV("data/raw/train.csv", dataset.LoadOptions{DropKey: true, RequireFare: true}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	kept, stats := dataset.Clean(records, cleanCfg, logger)
package dataset
