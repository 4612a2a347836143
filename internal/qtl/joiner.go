package qtl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/statgen/fivex/internal/annotation"
	"github.com/statgen/fivex/internal/tabix"
)

// Scope selects the credible set rows loaded for one query. End == 0 means
// a point query at Start.
type Scope struct {
	Chrom  string
	Start  int64
	End    int64
	Study  string
	Tissue string
	GeneID string
}

func (s Scope) isPoint() bool {
	return s.End == 0
}

func (s Scope) window() tabix.Region {
	if s.isPoint() {
		return tabix.Region{Chrom: s.Chrom, Start: s.Start - 1, End: s.Start + 1}
	}
	return tabix.Region{Chrom: s.Chrom, Start: s.Start - 1, End: s.End + 1}
}

type joinKey struct {
	chrom, ref, alt, study, tissue, gene string
	pos                                  int64
}

func associationKey(r *AssociationRecord) joinKey {
	return joinKey{
		chrom: r.Chromosome, pos: r.Position, ref: r.Ref, alt: r.Alt,
		study: r.Study, tissue: r.Tissue, gene: r.GeneID,
	}
}

func credibleSetKey(c *CredibleSetRecord) joinKey {
	return joinKey{
		chrom: c.Chromosome, pos: c.Position, ref: c.Ref, alt: c.Alt,
		study: c.Study, tissue: c.Tissue, gene: c.GeneID,
	}
}

// CredibleSetJoiner augments associations with the credible set entry
// sharing their variant, study, tissue and gene.
type CredibleSetJoiner struct {
	sets map[joinKey]FineMapping
}

// NewCredibleSetJoiner returns a joiner over already parsed rows. When rows
// share a key the last one wins.
func NewCredibleSetJoiner(rows []*CredibleSetRecord) *CredibleSetJoiner {
	j := &CredibleSetJoiner{sets: make(map[joinKey]FineMapping, len(rows))}
	for _, c := range rows {
		j.add(c)
	}
	return j
}

func (j *CredibleSetJoiner) add(c *CredibleSetRecord) {
	j.sets[credibleSetKey(c)] = c.FineMapping()
}

// LoadCredibleSets fetches the rows of source within scope. A missing file
// or a window outside the index yields an empty joiner.
func LoadCredibleSets(ctx context.Context, fetcher tabix.Fetcher, source string, scope Scope, opts ParserOptions) (*CredibleSetJoiner, error) {
	j := &CredibleSetJoiner{sets: make(map[joinKey]FineMapping)}
	parser := NewCredibleSetParser(opts)
	schema := parser.Schema()

	// Only the study and tissue specific files carry a header row.
	skip := 0
	if opts.perStudy() {
		skip = 1
	}
	lines, err := fetcher.Fetch(ctx, source, scope.window(), tabix.Options{
		ChromColumn: schema.Index(ColChromosome),
		PosColumn:   schema.Index(ColPosition),
		SkipRows:    skip,
	})
	if err != nil {
		if errors.Is(err, tabix.ErrSourceMissing) || errors.Is(err, tabix.ErrInvalidRegion) {
			return j, nil
		}
		return nil, fmt.Errorf("fetch credible sets: %w", err)
	}
	defer lines.Close()

	gene := annotation.BaseGeneID(scope.GeneID)
	for n := 1; ; n++ {
		line, err := lines.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read credible sets: %w", err)
		}
		c, err := parser.Parse(line)
		if err != nil {
			return nil, withLine(err, n)
		}
		if scope.isPoint() {
			if c.Position != scope.Start {
				continue
			}
		} else if gene != "" && annotation.BaseGeneID(c.GeneID) != gene {
			continue
		}
		j.add(c)
	}
	return j, nil
}

// Len returns the number of distinct keys loaded.
func (j *CredibleSetJoiner) Len() int {
	return len(j.sets)
}

// Apply sets the fine-mapping fields of r, using NotFineMapped when no
// credible set entry matches.
func (j *CredibleSetJoiner) Apply(r *AssociationRecord) *AssociationRecord {
	fm, ok := j.sets[associationKey(r)]
	if !ok {
		fm = NotFineMapped
	}
	r.SetFineMapping(fm)
	return r
}

func withLine(err error, line int) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.Line == 0 {
		pe.Line = line
	}
	return err
}

// String is used in debug logs.
func (s Scope) String() string {
	end := "-"
	if !s.isPoint() {
		end = strconv.FormatInt(s.End, 10)
	}
	return fmt.Sprintf("%s:%d-%s", s.Chrom, s.Start, end)
}
