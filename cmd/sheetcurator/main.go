// Command sheetcurator validates and repairs HCA entry-sheet workbooks from
// the command line.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sheetcurator/internal/archive"
	archives3 "sheetcurator/internal/archive/s3"
	"sheetcurator/internal/logging"
	"sheetcurator/internal/metrics"
	"sheetcurator/internal/pipeline"
	"sheetcurator/internal/report"
	reportpostgres "sheetcurator/internal/report/postgres"
	reportsqlite "sheetcurator/internal/report/sqlite"
	"sheetcurator/internal/schema"
	"sheetcurator/internal/sheetio/xlsx"
	"sheetcurator/pkg/domain"
)

// errValidationFailed signals a completed run whose result is unsuccessful.
var errValidationFailed = errors.New("validation failed")

type options struct {
	logLevel    string
	logFormat   string
	entityTypes []string
	bionetwork  string
	reportDB    string
	reportDSN   string
	archive     bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if errors.Is(err, errValidationFailed) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "sheetcurator",
		Short:         "Validate and repair HCA entry-sheet workbooks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", logging.FormatText, "log format (text, json)")
	root.PersistentFlags().StringSliceVar(&opts.entityTypes, "entity-types", nil, "entity types to validate (default dataset,donor,sample)")
	root.PersistentFlags().StringVar(&opts.bionetwork, "bionetwork", "", "bionetwork selecting network-specific schema classes")
	root.PersistentFlags().StringVar(&opts.reportDB, "report-db", "", "SQLite run-history database path")
	root.PersistentFlags().StringVar(&opts.reportDSN, "report-dsn", "", "Postgres run-history DSN (takes precedence over --report-db)")
	root.PersistentFlags().BoolVar(&opts.archive, "archive", false, "archive the result to S3 (configured via SHEETCURATOR_ARCHIVE_S3_* env)")

	root.AddCommand(newRunCommand("validate", "Validate a workbook without writing to it", opts, false))
	root.AddCommand(newRunCommand("process", "Validate a workbook, apply available fixes, and revalidate", opts, true))
	return root
}

func newRunCommand(name, short string, opts *options, applyFixes bool) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <workbook.xlsx>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], opts, applyFixes)
		},
	}
}

func run(ctx context.Context, sheetID string, opts *options, applyFixes bool) error {
	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	logger := logging.NewLogger(level, opts.logFormat)

	p := pipeline.New(xlsx.NewReader(), schema.NewProvider(), logger,
		pipeline.WithMetrics(metrics.NewExpvarRecorder(fmt.Sprintf("sheetcurator_%d", os.Getpid()))))

	req := pipeline.Request{Bionetwork: opts.bionetwork}
	for _, name := range opts.entityTypes {
		req.EntityTypes = append(req.EntityTypes, domain.EntityType(name))
	}

	var result *domain.ValidationResult
	if applyFixes {
		result, err = p.Process(ctx, sheetID, req)
	} else {
		result, err = p.Validate(ctx, sheetID, req)
	}
	if err != nil {
		return err
	}

	if err := persist(ctx, opts, sheetID, result); err != nil {
		return err
	}
	if opts.archive {
		if err := publish(ctx, sheetID, result, logger); err != nil {
			return err
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return err
	}
	if !result.Successful {
		return errValidationFailed
	}
	return nil
}

func persist(ctx context.Context, opts *options, sheetID string, result *domain.ValidationResult) error {
	var store report.Store
	switch {
	case opts.reportDSN != "":
		pg, err := reportpostgres.NewStore(ctx, opts.reportDSN)
		if err != nil {
			return err
		}
		defer func() { _ = pg.Close() }()
		store = pg
	case opts.reportDB != "":
		lite, err := reportsqlite.NewStore(opts.reportDB)
		if err != nil {
			return err
		}
		defer func() { _ = lite.Close() }()
		store = lite
	default:
		return nil
	}
	return store.Save(ctx, report.Record{
		SheetID:    sheetID,
		Bionetwork: opts.bionetwork,
		Result:     *result,
	})
}

func publish(ctx context.Context, sheetID string, result *domain.ValidationResult, logger *slog.Logger) error {
	var archiver archive.Archiver
	archiver, err := archives3.OpenFromEnv(ctx)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("reports/%s/%d.json", sanitizeKey(sheetID), time.Now().UTC().UnixNano())
	location, err := archiver.Put(ctx, key, *result)
	if err != nil {
		return err
	}
	logger.Info("report archived", "location", location)
	return nil
}

func sanitizeKey(sheetID string) string {
	out := make([]rune, 0, len(sheetID))
	for _, r := range sheetID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
