package main

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/statgen/fivex/internal/gencode"
	"github.com/statgen/fivex/internal/locate"
	"github.com/statgen/fivex/internal/sqlite"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newBestCmd() *cobra.Command {
	var (
		q        sqlite.BestQuery
		datatype string
	)
	cmd := &cobra.Command{
		Use:   "best <chrom>",
		Short: "Show the most significant association for a variant or region",
		Example: `  fivex best 1 --start 109274968
  fivex best 1 --start 109000000 --end 109500000 --gene ENSG00000134243`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Chrom = locate.NormalizeChrom(args[0])
			return runBest(cmd.Context(), q, datatype)
		},
	}
	f := cmd.Flags()
	f.Int64Var(&q.Start, "start", 0, "position, or region start with --end")
	f.Int64Var(&q.End, "end", 0, "region end")
	f.StringVar(&q.Study, "study", "", "study filter")
	f.StringVar(&q.Tissue, "tissue", "", "tissue filter")
	f.StringVar(&q.GeneID, "gene", "", "gene id filter")
	f.StringVar(&datatype, "datatype", "ge", "dataset: ge or txrev")
	return cmd
}

func runBest(ctx context.Context, q sqlite.BestQuery, datatype string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	dt, err := locate.ParseDataType(datatype)
	if err != nil {
		return err
	}
	b, err := a.bestHits(dt)
	if err != nil {
		return err
	}
	defer b.Close()

	hit, err := b.Best(ctx, q)
	if err != nil {
		return err
	}
	return printJSON(hit)
}

func newRSIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rsid <chrom> <pos>",
		Short: "Look up the rsID at a position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePos(args[1])
			if err != nil {
				return err
			}
			return runRSID(cmd.Context(), locate.NormalizeChrom(args[0]), pos)
		},
	}
}

func runRSID(ctx context.Context, chrom string, pos int64) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	r, err := sqlite.OpenRSIDs(a.resolver.RSIDDatabase())
	if err != nil {
		return err
	}
	defer r.Close()

	got, err := r.Lookup(ctx, chrom, pos)
	if err != nil {
		return err
	}
	fmt.Printf("%s\t%d\t%s\t%s\t%s\n", got.Chrom, got.Pos, got.Ref, got.Alt, got.RSID)
	return nil
}

func newGeneCmd() *cobra.Command {
	var transcripts bool
	cmd := &cobra.Command{
		Use:   "gene <id-or-symbol> | gene <chrom> <start> <end>",
		Short: "Show gene coordinates, or the genes in a region",
		Example: `  fivex gene SORT1
  fivex gene ENSG00000134243.11
  fivex gene 1 109000000 109500000
  fivex gene --transcripts ENST00000256637`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 && len(args) != 3 {
				return fmt.Errorf("expected a gene name or <chrom> <start> <end>, got %d arguments", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGene(args, transcripts)
		},
	}
	cmd.Flags().BoolVar(&transcripts, "transcripts", false, "search gencode transcripts instead of genes")
	return cmd
}

func runGene(args []string, transcripts bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	load := a.genes
	if transcripts {
		load = a.transcripts
	}
	features, err := load()
	if err != nil {
		return err
	}

	if len(args) == 3 {
		start, err := parsePos(args[1])
		if err != nil {
			return err
		}
		end, err := parsePos(args[2])
		if err != nil {
			return err
		}
		found := features.Overlapping(args[0], start, end)
		if found == nil {
			found = []*gencode.Feature{}
		}
		return printJSON(found)
	}

	f, ok := features.Resolve(args[0])
	if !ok {
		return fmt.Errorf("unknown gene %q", args[0])
	}
	return printJSON(f)
}
