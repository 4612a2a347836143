package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/statgen/fivex/internal/duckdb"
	"github.com/statgen/fivex/internal/locate"
	"github.com/statgen/fivex/internal/output"
	"github.com/statgen/fivex/internal/qtl"
)

type queryOptions struct {
	geneName   string
	study      string
	tissue     string
	geneID     string
	transcript string
	pipOnly    bool
	datatype   string
	skipRows   int
	allTissues bool
	format     string
	outputPath string
	exportPath string
}

func newQueryCmd() *cobra.Command {
	var opts queryOptions
	cmd := &cobra.Command{
		Use:   "query <chrom> <pos> [end]",
		Short: "Query associations at a variant or in a region",
		Example: `  fivex query 1 109274968
  fivex query chr1 109000000 109500000 --study GTEx --tissue blood --gene ENSG00000134243
  fivex query 1 109000000 109500000 --study GTEx --all-tissues -f json
  fivex query --gene-name SORT1 --study GTEx --tissue liver
  fivex query 1 109274968 --pip-only --export hits.duckdb`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.geneName != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.RangeArgs(2, 3)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.geneName, "gene-name", "", "query the region of a gene id or symbol (replaces the position arguments)")
	f.StringVar(&opts.study, "study", "", "study name")
	f.StringVar(&opts.tissue, "tissue", "", "tissue name (with --study, reads the study-specific file)")
	f.StringVar(&opts.geneID, "gene", "", "gene id filter (version suffix ignored)")
	f.StringVar(&opts.transcript, "transcript", "", "transcript filter (version suffix ignored)")
	f.BoolVar(&opts.pipOnly, "pip-only", false, "only fine-mapped, genome-wide significant rows")
	f.StringVar(&opts.datatype, "datatype", "ge", "dataset: ge (eQTL) or txrev (sQTL)")
	f.IntVar(&opts.skipRows, "skip-rows", -1, "header rows to skip (default: 1 for study files, else 0)")
	f.BoolVar(&opts.allTissues, "all-tissues", false, "query every tissue of --study concurrently")
	f.StringVarP(&opts.format, "output-format", "f", "tab", "output format: tab, json")
	f.StringVarP(&opts.outputPath, "output", "o", "", "output file (default: stdout)")
	f.StringVar(&opts.exportPath, "export", "", "also write results to this DuckDB file")

	return cmd
}

func parsePos(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	return n, nil
}

// setPosition fills the query window from <chrom> <pos> [end].
func setPosition(q *qtl.Query, args []string) error {
	var err error
	q.Chrom = args[0]
	if q.Start, err = parsePos(args[1]); err != nil {
		return err
	}
	if len(args) == 3 {
		if q.End, err = parsePos(args[2]); err != nil {
			return err
		}
		if q.End < q.Start {
			return fmt.Errorf("end %d precedes start %d", q.End, q.Start)
		}
	}
	return nil
}

// geneRegion turns a gene id or symbol into a region query restricted to
// that gene.
func (a *app) geneRegion(q *qtl.Query, name string) error {
	genes, err := a.genes()
	if err != nil {
		return err
	}
	g, ok := genes.Resolve(name)
	if !ok {
		return fmt.Errorf("unknown gene %q", name)
	}
	q.Chrom, q.Start, q.End = g.Chrom, g.Start, g.End
	if q.GeneID == "" {
		q.GeneID = g.ID
	}
	a.logger.Debug("resolved gene", zap.String("name", name), zap.String("gene_id", g.ID),
		zap.String("chrom", g.Chrom), zap.Int64("start", g.Start), zap.Int64("end", g.End))
	return nil
}

func runQuery(ctx context.Context, args []string, opts queryOptions) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	dt, err := locate.ParseDataType(opts.datatype)
	if err != nil {
		return err
	}
	q := qtl.Query{
		Study:      opts.study,
		Tissue:     opts.tissue,
		GeneID:     opts.geneID,
		Transcript: opts.transcript,
		PIPOnly:    opts.pipOnly,
		DataType:   dt,
	}
	if opts.geneName != "" {
		err = a.geneRegion(&q, opts.geneName)
	} else {
		err = setPosition(&q, args)
	}
	if err != nil {
		return err
	}
	q.RowsToSkip = opts.skipRows
	if q.RowsToSkip < 0 {
		q.RowsToSkip = 0
		if q.Study != "" && (q.Tissue != "" || opts.allTissues) {
			q.RowsToSkip = 1
		}
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

	querier := a.querier(a.annotations())

	var records []*qtl.AssociationRecord
	if opts.allTissues {
		if q.Study == "" {
			return fmt.Errorf("--all-tissues requires --study")
		}
		queries := qtl.StudyQueries(q, q.Study)
		if len(queries) == 0 {
			return fmt.Errorf("unknown study %q", q.Study)
		}
		records, err = querier.QueryMany(ctx, queries, a.cfg.Workers)
	} else {
		records, err = querier.Collect(ctx, q)
	}
	if err != nil {
		return err
	}
	a.logger.Info("query complete", zap.Int("records", len(records)))

	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range records {
		if err := writer.Write(r); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}

	if opts.exportPath != "" {
		store, err := duckdb.Open(opts.exportPath)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.WriteRecords(ctx, records); err != nil {
			return fmt.Errorf("exporting to %s: %w", opts.exportPath, err)
		}
		a.logger.Info("exported", zap.String("path", opts.exportPath), zap.Int("records", len(records)))
	}
	return nil
}
