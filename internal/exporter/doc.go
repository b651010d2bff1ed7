// Package exporter writes the derived feature tables to disk.
//
// Three output formats are supported:
//
// CSVWriter: core CSV writing with optional UTF-8 BOM for Excel
// compatibility and a StreamWriter for large tables.
//
// FeatureExporter: renders the order, product and seller training
// tables plus the category rollup as CSV files with their canonical
// column names.
//
// Workbook and Parquet writers: the same training tables as a single
// XLSX workbook (one sheet per entity) or as Snappy-compressed Parquet
// files for downstream modeling jobs.
package exporter
