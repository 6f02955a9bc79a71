package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"datadiff/core/config"
	"datadiff/core/diff"
	"datadiff/core/logger"
	"datadiff/core/reconcile"
	"datadiff/core/record"
	"datadiff/core/schema"
	"datadiff/core/snapshot"
	"datadiff/core/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrChangesFound is returned by compare --fail-on-changes when the stores
// differ.
var ErrChangesFound = errors.New("snapshots differ")

type compareFlags struct {
	configDir     string
	sideA         string
	sideB         string
	format        string
	keys          []string
	values        []string
	dsn           string
	side          string
	limit         int
	report        string
	upload        string
	failOnChanges bool
}

func newCompareCmd() *cobra.Command {
	f := &compareFlags{}
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare snapshot A with snapshot B",
		Long: `Compare loads snapshot A and snapshot B into a diff store and prints every
row that is new, changed or missing, seen from the source side.

Snapshots are JSON arrays, NDJSON or CSV files, or s3://bucket/key objects.
A location ending in "/" reads every object below it.

Examples:
  # Compare two exports keyed by id
  datadiff compare --a old.csv --b new.csv --key id:INT --value name:STRING --value total:MONEY

  # Use B as the source of truth and keep the index on disk
  datadiff compare --a a.json --b b.json --key id:INT --side B --dsn sqlite:/tmp/diff.db

  # Upload the report and fail when anything changed
  datadiff compare --a s3://exports/a/ --b s3://exports/b/ --key id:INT \
    --upload s3://reports/nightly/ --fail-on-changes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.configDir, "config", ".", "Directory holding the .env file")
	flags.StringVar(&f.sideA, "a", "", "Location of snapshot A")
	flags.StringVar(&f.sideB, "b", "", "Location of snapshot B")
	flags.StringVar(&f.format, "format", "", "Snapshot format: json, ndjson or csv (default: by file extension)")
	flags.StringArrayVar(&f.keys, "key", nil, "Key field as name:TYPE, repeatable")
	flags.StringArrayVar(&f.values, "value", nil, "Value field as name:TYPE, repeatable")
	flags.StringVar(&f.dsn, "dsn", "", "Index engine: memory:, sqlite::memory:, sqlite:<path> or mysql:<dsn>")
	flags.StringVar(&f.side, "side", "", "Source of truth, A or B")
	flags.IntVar(&f.limit, "limit", 0, "Rows printed per change kind, 0 prints all")
	flags.StringVar(&f.report, "report", "", "Write the JSON report to this file")
	flags.StringVar(&f.upload, "upload", "", "Upload the JSON report to s3://bucket/key or s3://bucket/prefix/")
	flags.BoolVar(&f.failOnChanges, "fail-on-changes", false, "Exit non-zero when the snapshots differ")
	_ = cmd.MarkFlagRequired("a")
	_ = cmd.MarkFlagRequired("b")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

func init() {
	RootCmd.AddCommand(newCompareCmd())
}

func runCompare(cmd *cobra.Command, f *compareFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig(f.configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, f, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	keys, err := schema.ParseFields(f.keys)
	if err != nil {
		return err
	}
	values, err := schema.ParseFields(f.values)
	if err != nil {
		return err
	}
	format, err := snapshot.ParseFormat(cfg.Compare.Format)
	if err != nil {
		return err
	}

	var client storage.Client
	if storage.IsLocation(f.sideA) || storage.IsLocation(f.sideB) || f.upload != "" {
		client, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
	}

	ds, err := diff.New(ctx, keys, values, diff.WithDatabase(cfg.Database), diff.WithLogger(l))
	if err != nil {
		return err
	}
	defer ds.Close()

	loader := snapshot.NewLoader(client, l)
	for _, side := range []struct {
		location string
		store    *diff.Store
	}{
		{f.sideA, ds.StoreA()},
		{f.sideB, ds.StoreB()},
	} {
		l.Info("Loading snapshot", zap.String("store", side.store.Label()), zap.String("location", side.location))
		_, err := loader.Load(ctx, side.location, format, func(d record.Data) error {
			return side.store.AddRow(ctx, d)
		})
		if err != nil {
			return fmt.Errorf("failed to load store %s: %w", side.store.Label(), err)
		}
	}

	source := ds.StoreA()
	if cfg.Compare.Side == "B" {
		source = ds.StoreB()
	}

	plan, err := reconcile.BuildPlan(ctx, source, reconcile.PlanOptions{
		DoInsert: true,
		DoUpdate: true,
		DoDelete: true,
		Limit:    cfg.Compare.Limit,
	})
	if err != nil {
		return fmt.Errorf("failed to plan: %w", err)
	}

	if err := printActions(cmd.OutOrStdout(), plan); err != nil {
		return err
	}
	logSummary(l, plan)

	if f.report != "" || f.upload != "" {
		report := reconcile.NewReport(plan)
		if f.report != "" {
			if err := report.WriteFile(f.report); err != nil {
				return err
			}
			l.Info("Report written", zap.String("file", f.report), zap.String("id", report.ID))
		}
		if f.upload != "" {
			loc, err := uploadLocation(f.upload, cfg)
			if err != nil {
				return err
			}
			info, err := report.Upload(ctx, client, loc, cfg.Storage.Region)
			if err != nil {
				return err
			}
			l.Info("Report uploaded", zap.String("bucket", info.Bucket), zap.String("key", info.Key), zap.String("id", report.ID))
		}
	}

	if f.failOnChanges {
		changed, err := source.HasAnyChanges(ctx)
		if err != nil {
			return err
		}
		if changed {
			return ErrChangesFound
		}
	}
	return nil
}

// applyFlags lets explicitly set flags override the loaded configuration.
func applyFlags(cmd *cobra.Command, f *compareFlags, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("dsn") {
		cfg.Database.DSN = f.dsn
	}
	if flags.Changed("side") {
		cfg.Compare.Side = f.side
	}
	if flags.Changed("limit") {
		cfg.Compare.Limit = f.limit
	}
	if flags.Changed("format") {
		cfg.Compare.Format = f.format
	}
}

// uploadLocation resolves the --upload target. "s3://" alone means the
// configured bucket and report prefix.
func uploadLocation(target string, cfg *config.Config) (storage.Location, error) {
	if target == storage.Scheme {
		return storage.Location{Bucket: cfg.Storage.Bucket, Key: cfg.Report.Prefix}, nil
	}
	return storage.ParseLocation(target)
}

func printActions(w io.Writer, plan *reconcile.Plan) error {
	for _, action := range plan.Actions {
		if _, err := fmt.Fprintln(w, action.Text); err != nil {
			return err
		}
	}
	return nil
}

func logSummary(l *zap.Logger, plan *reconcile.Plan) {
	s := plan.Summary
	l.Info("Comparison summary",
		zap.String("source", plan.Source),
		zap.Int("source_rows", s.SourceRows),
		zap.Int("target_rows", s.TargetRows),
		zap.Int("new", s.New),
		zap.Int("changed", s.Changed),
		zap.Int("missing", s.Missing),
		zap.Int("unchanged", s.Unchanged),
	)

	shown := len(plan.Actions)
	total := s.New + s.Changed + s.Missing
	if total > shown {
		l.Info("Additional rows not shown", zap.Int("count", total-shown))
	}
}
