package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statgen/fivex/internal/duckdb"
	"github.com/statgen/fivex/internal/locate"
)

func writeGzip(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
}

func TestParsePos(t *testing.T) {
	n, err := parsePos("109274968")
	require.NoError(t, err)
	assert.Equal(t, int64(109274968), n)

	for _, bad := range []string{"", "0", "-1", "1e6"} {
		_, err := parsePos(bad)
		assert.Error(t, err, bad)
	}
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"query", "serve", "best", "rsid", "gene", "search", "config"} {
		assert.Contains(t, names, want)
	}
}

// writeDataDir writes one merged association row at 1:100 for ENSG1 and
// the annotation files the query command loads.
func writeDataDir(t *testing.T) string {
	t.Helper()
	dataDir := t.TempDir()
	res := locate.NewResolver(dataDir)
	row := strings.Join([]string{"GTEx", "blood", "x", "1", "100", "A", "T", "chr1_100_A_T",
		"5", "0.1", "1e-9", "0.5", "0.1", "SNP", "10", "100", "0.9",
		"ENSG1.contained", "ENSG1", "5.0", "rs1"}, "\t")
	writeGzip(t, res.MergedData("1", 100, locate.GeneExpression), row+"\n")
	writeGzip(t, res.GeneSymbols(), `{"ENSG1": "GENE1", "GENE1": "ENSG1"}`)
	writeGzip(t, res.TSSData(), `{"ENSG1": 150}`)
	writeGzip(t, res.GencodeGenes(), "1\t99\t200\tENSG1.3\tGENE1\t+\n")

	t.Setenv("FIVEX_DATA_DIR", dataDir)
	t.Setenv("FIVEX_ANNOTATION_CACHE", t.TempDir())
	return dataDir
}

func quietConfig(t *testing.T) string {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "fivex.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("log_level: error\n"), 0o644))
	return cfg
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestQueryCommand(t *testing.T) {
	writeDataDir(t)
	cfg := quietConfig(t)
	out := filepath.Join(t.TempDir(), "out.tsv")
	export := filepath.Join(t.TempDir(), "out.duckdb")

	root := newRootCmd()
	root.SetArgs([]string{"--config", cfg, "query", "chr1", "100", "-o", out, "--export", export})
	require.NoError(t, root.Execute())

	lines := readLines(t, out)
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "#variant_id"))
	assert.True(t, strings.HasPrefix(lines[1], "1:100_A/T\t1\t100\t"))
	assert.Contains(t, lines[1], "GENE1")

	store, err := duckdb.Open(export)
	require.NoError(t, err)
	defer store.Close()
	n, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestQueryCommand_ExportTwice(t *testing.T) {
	writeDataDir(t)
	cfg := quietConfig(t)
	export := filepath.Join(t.TempDir(), "out.duckdb")

	for i := 0; i < 2; i++ {
		root := newRootCmd()
		root.SetArgs([]string{"--config", cfg, "query", "1", "100",
			"-o", filepath.Join(t.TempDir(), "out.tsv"), "--export", export})
		require.NoError(t, root.Execute(), "export %d", i+1)
	}
}

func TestQueryCommand_GeneName(t *testing.T) {
	writeDataDir(t)
	cfg := quietConfig(t)
	out := filepath.Join(t.TempDir(), "out.tsv")

	root := newRootCmd()
	root.SetArgs([]string{"--config", cfg, "query", "--gene-name", "gene1", "-o", out})
	require.NoError(t, root.Execute())

	lines := readLines(t, out)
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "1:100_A/T\t"))

	root = newRootCmd()
	root.SetArgs([]string{"--config", cfg, "query", "--gene-name", "NOPE", "-o", out})
	assert.ErrorContains(t, root.Execute(), "unknown gene")

	root = newRootCmd()
	root.SetArgs([]string{"--config", cfg, "query", "--gene-name", "GENE1", "1", "100"})
	assert.Error(t, root.Execute(), "positions and --gene-name are exclusive")
}

func TestSearchCommand(t *testing.T) {
	writeDataDir(t)
	cfg := quietConfig(t)
	export := filepath.Join(t.TempDir(), "out.duckdb")

	root := newRootCmd()
	root.SetArgs([]string{"--config", cfg, "query", "1", "100",
		"-o", filepath.Join(t.TempDir(), "out.tsv"), "--export", export})
	require.NoError(t, root.Execute())

	search := func(args ...string) []string {
		t.Helper()
		out := filepath.Join(t.TempDir(), "found.jsonl")
		root := newRootCmd()
		root.SetArgs(append([]string{"--config", cfg, "search", export, "-f", "json", "-o", out}, args...))
		require.NoError(t, root.Execute())
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		if len(strings.TrimSpace(string(data))) == 0 {
			return nil
		}
		return readLines(t, out)
	}

	assert.Len(t, search("--variant", "chr1:100:A:T"), 1)
	assert.Len(t, search("--gene", "ENSG1.7"), 1)
	assert.Len(t, search("--gene", "GENE1"), 1)
	assert.Len(t, search("--min-logp", "8"), 1)
	assert.Empty(t, search("--min-logp", "10"))
	assert.Empty(t, search("--variant", "1:101:A:T"))

	root = newRootCmd()
	root.SetArgs([]string{"--config", cfg, "search", export, "--clear"})
	require.NoError(t, root.Execute())
	assert.Empty(t, search("--gene", "GENE1"))
}

func TestParseVariant(t *testing.T) {
	chrom, pos, ref, alt, err := parseVariant("chr1:1,000,000:A:T")
	require.NoError(t, err)
	assert.Equal(t, "1", chrom)
	assert.Equal(t, int64(1000000), pos)
	assert.Equal(t, "A", ref)
	assert.Equal(t, "T", alt)

	for _, bad := range []string{"1:100:A", "1:x:A:T", "1:0:A:T"} {
		_, _, _, _, err := parseVariant(bad)
		assert.Error(t, err, bad)
	}
}

func TestConfigCommand(t *testing.T) {
	cfg := quietConfig(t)
	t.Setenv("FIVEX_PREFERRED_STUDY", "GTEx")

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		root := newRootCmd()
		root.SetOut(&out)
		root.SetArgs(append([]string{"--config", cfg}, args...))
		err := root.Execute()
		return out.String(), err
	}

	_, err := run("config", "set", "workers", "8")
	require.NoError(t, err)
	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "workers: 8")
	assert.Contains(t, string(data), "log_level: error", "other keys are kept")
	assert.NotContains(t, string(data), "GTEx", "environment is not written to the file")

	got, err := run("config", "get", "workers")
	require.NoError(t, err)
	assert.Equal(t, "8\n", got)

	_, err = run("config", "set", "annotations.alphamissense", "true")
	assert.ErrorContains(t, err, "unknown config key")
	_, err = run("config", "set", "workers", "lots")
	assert.Error(t, err)
	_, err = run("config", "set", "num_parser", "turbo")
	assert.Error(t, err)
	_, err = run("config", "get", "nope")
	assert.Error(t, err)

	show, err := run("--data-dir", "/explicit", "config")
	require.NoError(t, err)
	assert.Regexp(t, `data_dir\s+/explicit\s+flag`, show)
	assert.Regexp(t, `preferred_study\s+GTEx\s+env`, show)
	assert.Regexp(t, `workers\s+8\s+file`, show)
	assert.Regexp(t, `listen\s+:5000\s+default`, show)

	env, err := run("config", "env")
	require.NoError(t, err)
	assert.Contains(t, env, "FIVEX_DATA_DIR")
}
