// Package cli defines the cobra command surface for taxoclass: flag
// registration and the Options struct internal/app builds a Driver from.
// Parsing itself stays thin — validation beyond "is this flag present"
// belongs to internal/app, not here.
package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// Options holds every flag value the command accepts, independent of
// cobra so internal/app can be tested without building a *cobra.Command.
type Options struct {
	TaxonomyPath  string
	IndexPath     string
	IndexOptsPath string
	SeqFile1      string
	SeqFile2      string
	Paired        bool
	Interleaved   bool
	UseMmap       bool

	Threads             int
	Confidence          float64
	MinimumHitGroups    int64
	QuickMode           bool
	TranslatedSearch    bool
	MinimumQuality      int
	PrintScientificName bool

	OutputPath          string
	ClassifiedOutPath   string
	UnclassifiedOutPath string
	ReportPath          string

	LogJSON bool
	Version bool
}

// NewCommand builds the root cobra.Command. run is invoked with the parsed
// Options once cobra has parsed the flags; positional arguments are not
// counted here (the first two become SeqFile1 and SeqFile2, any others are
// ignored). Its return value becomes the command's error (nil means exit
// code 0).
func NewCommand(stdout, stderr io.Writer, run func(Options) error) *cobra.Command {
	var opt Options

	cmd := &cobra.Command{
		Use:   "taxoclass",
		Short: "Taxonomic sequence classifier",
		Long: `taxoclass assigns each read (or read pair) in a FASTA/FASTQ file to a
node in a taxonomy tree by looking up the canonical minimizers of its
k-mers against a precomputed index, then resolving the per-read hit
counts to a single call via root-to-leaf scoring with a confidence
threshold.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opt.SeqFile1 = args[0]
			}
			if len(args) > 1 {
				opt.SeqFile2 = args[1]
			}
			return run(opt)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVar(&opt.TaxonomyPath, "taxonomy", "", "taxonomy file [*]")
	flags.StringVar(&opt.IndexPath, "index", "", "minimizer index file [*]")
	flags.StringVar(&opt.IndexOptsPath, "index-options", "", "index options file [*]")
	flags.BoolVar(&opt.Paired, "paired", false, "treat input as paired-end mate pairs")
	flags.BoolVar(&opt.Interleaved, "interleaved", false, "paired-end input is one interleaved file (implies --paired)")
	flags.BoolVar(&opt.UseMmap, "mmap", true, "serve the taxonomy and index directly from a memory-mapped file")

	flags.IntVarP(&opt.Threads, "threads", "t", 1, "number of classification worker threads")
	flags.Float64VarP(&opt.Confidence, "confidence", "c", 0, "confidence threshold in [0,1] for climbing to an ancestor call")
	flags.Int64Var(&opt.MinimumHitGroups, "minimum-hit-groups", 2, "minimum number of distinct minimizer hit groups required to classify")
	flags.BoolVarP(&opt.QuickMode, "quick", "q", false, "stop at the first minimum-hit-groups taxon instead of resolving the full trail")
	flags.BoolVar(&opt.TranslatedSearch, "translated", false, "six-frame translate DNA before scanning minimizers")
	flags.IntVar(&opt.MinimumQuality, "minimum-quality-score", 0, "mask FASTQ bases below this Phred score before scanning")
	flags.BoolVar(&opt.PrintScientificName, "use-names", false, "print scientific names instead of external taxon ids")

	flags.StringVarP(&opt.OutputPath, "output", "o", "-", `per-read classification line output path ("-" discards the lines)`)
	flags.StringVar(&opt.ClassifiedOutPath, "classified-out", "", `classified sequence output path (use '#' in paired mode)`)
	flags.StringVar(&opt.UnclassifiedOutPath, "unclassified-out", "", `unclassified sequence output path (use '#' in paired mode)`)
	flags.StringVar(&opt.ReportPath, "report", "", "per-taxon summary report output path")

	flags.BoolVar(&opt.LogJSON, "log-json", false, "emit structured logs as JSON instead of text")
	flags.BoolVarP(&opt.Version, "version", "v", false, "print version and exit")

	return cmd
}
