package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-covid/internal/duckdb"
	"github.com/inodb/vibe-covid/internal/match"
	"github.com/inodb/vibe-covid/internal/output"
	"github.com/inodb/vibe-covid/internal/protein"
	"github.com/inodb/vibe-covid/internal/reference"
	"github.com/inodb/vibe-covid/internal/typer"
	"github.com/inodb/vibe-covid/internal/vcf"
)

func newTypeCmd() *cobra.Command {
	var (
		outputDir string
		noDB      bool
		noCache   bool
		compress  bool
	)

	cmd := &cobra.Command{
		Use:   "type [options] <vcf|->",
		Short: "Derive protein mutations from a VCF and match them against a catalog",
		Long: `Resolve the variant calls of a VCF into edits, apply them to the coding
regions of the reference genome, derive protein mutation tokens and match
them against the variant catalog. Use - to read the VCF from stdin.

Writes cds_edit.csv, mutations.csv and result.txt to the output directory
and records the run in the run database.`,
		Example: `  vibe-covid type --catalog variants.csv sample.vcf
  vibe-covid type --genbank NC_045512.2.gb --catalog variants.csv -o out sample.vcf.gz
  vibe-covid type --fasta ref.fa --gff ref.gff3 --catalog variants.csv --tolerance 0.2 sample.vcf`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runType(cmd.Context(), args[0], outputDir, compress, !noDB, !noCache)
		},
	}

	flags := cmd.Flags()
	flags.String("genbank", "", "Reference GenBank file (default: downloaded NC_045512.2)")
	flags.String("fasta", "", "Reference FASTA file (with --gff)")
	flags.String("gff", "", "Reference GFF3 or GTF file (with --fasta)")
	flags.String("catalog", "", "Variant catalog CSV")
	flags.String("protein", "S", "Protein to match against the catalog")
	flags.Float64("tolerance", 0, "Tolerated fraction of missing signature mutations")
	flags.Int("workers", 0, "Number of coding regions processed in parallel (0 = all CPUs)")
	flags.Float64("min-qual", 0, "Drop calls with a lower QUAL")
	flags.Bool("pass-only", false, "Keep only calls with FILTER PASS")
	flags.StringVarP(&outputDir, "output", "o", ".", "Output directory")
	flags.BoolVar(&compress, "lz4", false, "Compress the output tables with lz4")
	flags.BoolVar(&noDB, "no-db", false, "Do not record the run in the run database")
	flags.BoolVar(&noCache, "no-cache", false, "Do not use or update the parsed reference cache")

	for key, flag := range map[string]string{
		"reference.genbank": "genbank",
		"reference.fasta":   "fasta",
		"reference.gff":     "gff",
		"catalog":           "catalog",
		"protein":           "protein",
		"tolerance":         "tolerance",
		"workers":           "workers",
		"min_qual":          "min-qual",
		"pass_only":         "pass-only",
	} {
		viper.BindPFlag(key, flags.Lookup(flag))
	}

	return cmd
}

func runType(ctx context.Context, vcfPath, outputDir string, compress, record, useCache bool) error {
	catalogPath := viper.GetString("catalog")
	if catalogPath == "" {
		return &usageError{fmt.Errorf("no catalog given; use --catalog or 'vibe-covid config set catalog <file>'")}
	}

	ref, refDesc, err := loadReference(ctx, useCache)
	if err != nil {
		return err
	}
	regions, err := ref.CodingRegions()
	if err != nil {
		return fmt.Errorf("build coding regions: %w", err)
	}
	logger.Info("loaded reference",
		zap.String("reference", refDesc),
		zap.String("sequence", ref.Genome.ID),
		zap.Int("coding_regions", len(regions)))

	variants, err := readVariants(vcfPath)
	if err != nil {
		return err
	}

	scoring, err := protein.NewScoringMatrix(
		viper.GetInt("scoring.match"),
		viper.GetInt("scoring.mismatch"),
		viper.GetInt("scoring.gap_open"),
		viper.GetInt("scoring.gap_extend"))
	if err != nil {
		return &usageError{fmt.Errorf("invalid scoring: %w", err)}
	}

	ty := typer.NewTyper()
	ty.SetLogger(logger)
	ty.SetScoring(*scoring)
	ty.SetWorkers(viper.GetInt("workers"))
	ty.SetMinQual(viper.GetFloat64("min_qual"))
	ty.SetPassOnly(viper.GetBool("pass_only"))

	res, err := ty.Run(ctx, variants, regions)
	if err != nil {
		return err
	}

	catalog, err := match.LoadCatalog(catalogPath, match.Columns{
		Name:          viper.GetString("catalog_columns.name"),
		FirstDetected: viper.GetString("catalog_columns.first_detected"),
		Mutations:     viper.GetString("catalog_columns.mutations"),
	})
	if err != nil {
		return err
	}

	matcher := match.NewMatcher(viper.GetString("protein"), viper.GetFloat64("tolerance"))
	rep, err := matcher.Match(res.Mutations, catalog)
	if err != nil {
		return fmt.Errorf("match catalog: %w", err)
	}

	if err := writeOutputs(outputDir, compress, res, rep); err != nil {
		return err
	}

	if record {
		id, err := recordRun(ctx, vcfPath, refDesc, matcher, res, rep)
		if err != nil {
			return err
		}
		logger.Info("recorded run", zap.String("run_id", id))
	}

	return rep.WriteText(os.Stdout)
}

// readVariants reads every record of a VCF file, or of stdin for "-".
func readVariants(path string) ([]*vcf.Variant, error) {
	parser, err := vcf.NewParser(path)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	if samples := parser.SampleNames(); len(samples) > 1 {
		logger.Warn("VCF has more than one sample; calls are typed as one sample",
			zap.Strings("samples", samples))
	}

	variants, err := vcf.ReadAll(parser)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	logger.Debug("read variants",
		zap.String("vcf", path),
		zap.Int("lines", parser.LineNumber()),
		zap.Int("records", len(variants)))
	return variants, nil
}

// loadReference reads the configured reference, preferring GenBank. The
// parsed reference is cached under ~/.vibe-covid/cache.
func loadReference(ctx context.Context, useCache bool) (*reference.Reference, string, error) {
	gbPath := viper.GetString("reference.genbank")
	fastaPath := viper.GetString("reference.fasta")
	gffPath := viper.GetString("reference.gff")

	if gbPath == "" && fastaPath == "" && gffPath == "" {
		p, ok := defaultReference()
		if !ok {
			return nil, "", &usageError{fmt.Errorf("no reference given; use --genbank or --fasta/--gff, or run 'vibe-covid download'")}
		}
		gbPath = p
	}
	if gbPath == "" && (fastaPath == "" || gffPath == "") {
		return nil, "", &usageError{fmt.Errorf("--fasta and --gff must be given together")}
	}

	sources := []string{gbPath}
	desc := gbPath
	if gbPath == "" {
		sources = []string{fastaPath, gffPath}
		desc = fastaPath + "+" + gffPath
	}

	fps, err := duckdb.StatFiles(sources...)
	if err != nil {
		return nil, "", err
	}

	rc := duckdb.NewReferenceCache(filepath.Join(dataDir(), "cache"))
	if useCache && rc.Valid(fps...) {
		ref, err := rc.Load()
		if err == nil {
			logger.Debug("using cached reference", zap.String("reference", desc))
			return ref, desc, nil
		}
		logger.Warn("discarding unreadable reference cache", zap.Error(err))
		rc.Clear()
	}

	var ref *reference.Reference
	if gbPath != "" {
		ref, err = reference.LoadGenBank(gbPath)
	} else {
		ref, err = reference.LoadFASTAGFF(ctx, fastaPath, gffPath)
	}
	if err != nil {
		return nil, "", err
	}

	if useCache {
		if err := rc.Write(ref, fps...); err != nil {
			logger.Warn("could not write reference cache", zap.Error(err))
		}
	}
	return ref, desc, nil
}

func writeOutputs(dir string, compress bool, res *typer.Result, rep *match.Report) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	suffix := ""
	if compress {
		suffix = ".lz4"
	}

	if err := output.WriteEdits(filepath.Join(dir, output.EditsFile+suffix), res.Edits); err != nil {
		return err
	}
	if err := output.WriteMutations(filepath.Join(dir, output.MutationsFile+suffix), res.Mutations); err != nil {
		return err
	}
	return output.WriteReport(filepath.Join(dir, output.ReportFile), rep)
}

func recordRun(ctx context.Context, vcfPath, refDesc string, m *match.Matcher, res *typer.Result, rep *match.Report) (string, error) {
	fp := duckdb.FileFingerprint{Path: vcfPath}
	if vcfPath != "-" {
		var err error
		if fp, err = duckdb.StatFile(vcfPath); err != nil {
			return "", fmt.Errorf("stat %s: %w", vcfPath, err)
		}
	}

	store, err := duckdb.Open(viper.GetString("db"))
	if err != nil {
		return "", err
	}
	defer store.Close()

	return store.WriteRun(ctx, &duckdb.Run{
		VCF:       fp,
		Reference: refDesc,
		Protein:   m.Protein,
		Tolerance: m.Tolerance,
		Edits:     res.Edits,
		Mutations: res.Mutations,
		Hits:      rep.Hits,
	})
}
