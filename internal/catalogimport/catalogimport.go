// Package catalogimport bulk-loads book records from a CSV file with the
// columns isbn,title,author,year into the catalog.
package catalogimport

// Row is one parsed data line. Line is the 1-based line number in the input.
type Row struct {
	Line   int
	ISBN   string
	Title  string
	Author string
	Year   int
}

// Result summarizes a completed run. Skipped counts rows whose isbn was
// already in the catalog.
type Result struct {
	Rows     int
	Inserted int
	Skipped  int
}
