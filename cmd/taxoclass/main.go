// Command taxoclass classifies reads in a FASTA/FASTQ file (or mate-paired
// pair of files) against a precomputed minimizer index and taxonomy,
// writing a per-read classification line, optional classified/
// unclassified sequence files, and an optional per-taxon summary report.
package main

import (
	"taxoclass/internal/app"
	"taxoclass/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
