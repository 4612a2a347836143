package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/statgen/fivex/internal/duckdb"
	"github.com/statgen/fivex/internal/locate"
	"github.com/statgen/fivex/internal/output"
	"github.com/statgen/fivex/internal/qtl"
)

type searchOptions struct {
	variant    string
	gene       string
	minLogP    float64
	clear      bool
	format     string
	outputPath string
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions
	cmd := &cobra.Command{
		Use:   "search <file.duckdb>",
		Short: "Search associations exported with query --export",
		Example: `  fivex search hits.duckdb --variant 1:109274968:G:T
  fivex search hits.duckdb --gene SORT1
  fivex search hits.duckdb --min-logp 7.3 -f json
  fivex search hits.duckdb --clear`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.variant, "variant", "", "variant as chrom:pos:ref:alt")
	f.StringVar(&opts.gene, "gene", "", "gene id (version ignored) or symbol")
	f.Float64Var(&opts.minLogP, "min-logp", 0, "associations with -log10(p) above this value")
	f.BoolVar(&opts.clear, "clear", false, "delete every stored association")
	f.StringVarP(&opts.format, "output-format", "f", "tab", "output format: tab, json")
	f.StringVarP(&opts.outputPath, "output", "o", "", "output file (default: stdout)")
	cmd.MarkFlagsMutuallyExclusive("variant", "gene", "min-logp", "clear")
	cmd.MarkFlagsOneRequired("variant", "gene", "min-logp", "clear")

	return cmd
}

// parseVariant splits chrom:pos:ref:alt. Commas in the position, as shown
// in variant ids, are ignored.
func parseVariant(s string) (chrom string, pos int64, ref, alt string, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return "", 0, "", "", fmt.Errorf("invalid variant %q (want chrom:pos:ref:alt)", s)
	}
	pos, err = parsePos(strings.ReplaceAll(parts[1], ",", ""))
	if err != nil {
		return "", 0, "", "", err
	}
	return locate.NormalizeChrom(parts[0]), pos, parts[2], parts[3], nil
}

func runSearch(path string, opts searchOptions) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("export file: %w", err)
	}
	store, err := duckdb.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if opts.clear {
		return store.Clear()
	}

	var records []*qtl.AssociationRecord
	switch {
	case opts.variant != "":
		chrom, pos, ref, alt, perr := parseVariant(opts.variant)
		if perr != nil {
			return perr
		}
		records, err = store.LookupVariant(chrom, pos, ref, alt)
	case opts.gene != "":
		records, err = store.SearchByGene(opts.gene)
	default:
		records, err = store.SearchSignificant(opts.minLogP)
	}
	if err != nil {
		return err
	}

	out, closeOut, err := outputFile(opts.outputPath)
	if err != nil {
		return err
	}
	defer closeOut()
	writer, ok := output.New(opts.format, out)
	if !ok {
		return fmt.Errorf("unknown output format %q", opts.format)
	}
	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range records {
		if err := writer.Write(r); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}
	return writer.Flush()
}
