// Package exporter persists tables and reports.
//
// CSVWriter writes comma separated files with a header row. WriteTable
// writes through a temporary file in the target directory and renames it
// into place, so a failed run never leaves a partial output file.
//
// ReadTable loads such a file back, inferring integer columns.
//
// WriteWorkbook writes one or more sheets to an XLSX file for reports that
// are meant to be read by people.
package exporter
