package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"merge-service/internal/config"
	"merge-service/internal/export"
	"merge-service/internal/fileio"
	"merge-service/internal/merge/model"
	"merge-service/internal/merge/service"
)

type runOptions struct {
	required  []string
	outDir    string
	headerRow int
	entityKey string
	threshold float64
	parallel  bool
	noExport  bool

	sqlKind  string
	sqlDSN   string
	sqlQuery string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "merge",
		Short:         "Merge heterogeneous tabular sources into one clean table",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var o runOptions
	cmd := &cobra.Command{
		Use:   "run <file>...",
		Short: "Map, validate, merge and export the given files",
		Example: `  merge run customers.xlsx crm.csv api.json --required ID,email
  merge run a.csv --sql-kind sqlite --sql-dsn data.db --sql-query "select * from clients"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && o.sqlKind == "" {
				return errors.New("no sources given")
			}
			err := runMerge(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args, o)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&o.required, "required", nil, "required canonical columns (comma separated)")
	f.StringVar(&o.outDir, "out", "", "export directory (default EXPORT_DIR)")
	f.IntVar(&o.headerRow, "header-row", 1, "1-based header row for csv/xls/xlsx")
	f.StringVar(&o.entityKey, "entity-key", "", "canonical column to group entities by")
	f.Float64Var(&o.threshold, "threshold", -1, "alias acceptance threshold (default MERGE_THRESHOLD)")
	f.BoolVar(&o.parallel, "parallel", false, "match sources in parallel")
	f.BoolVar(&o.noExport, "no-export", false, "print the report only")
	f.StringVar(&o.sqlKind, "sql-kind", "", "extra SQL source: sqlite|postgres|mssql")
	f.StringVar(&o.sqlDSN, "sql-dsn", "", "DSN for the SQL source")
	f.StringVar(&o.sqlQuery, "sql-query", "", "query for the SQL source")
	return cmd
}

type runOutput struct {
	JobID         string               `json:"job_id,omitempty"`
	Report        *model.QualityReport `json:"report"`
	ExportedFiles map[string]string    `json:"exported_files,omitempty"`
	ExportErrors  map[string]string    `json:"export_errors,omitempty"`
}

func runMerge(ctx context.Context, stdout, stderr io.Writer, files []string, o runOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.Load()
	cfg.LogFile = ""
	logger := config.SetupLoggerTo(cfg, stderr)

	mcfg, err := cfg.MergeConfig()
	if err != nil {
		return err
	}
	if o.threshold >= 0 {
		mcfg.Threshold = o.threshold
	}
	if o.parallel {
		mcfg.ParallelMapping = true
	}
	mcfg.EntityKey = o.entityKey

	tables := make([]model.Table, 0, len(files)+1)
	for _, p := range files {
		t, err := readFile(p, o.headerRow)
		if err != nil {
			return err
		}
		tables = append(tables, *t)
	}
	if o.sqlKind != "" {
		t, err := fileio.LoadSQL(ctx, o.sqlKind, o.sqlDSN, o.sqlQuery)
		if err != nil {
			return err
		}
		tables = append(tables, *t)
	}

	engine, err := service.NewEngine(mcfg, logger)
	if err != nil {
		return err
	}
	res, err := engine.Run(ctx, tables, trimAll(o.required))
	if err != nil {
		return err
	}

	out := runOutput{Report: res.Report}
	if !o.noExport {
		dir := o.outDir
		if dir == "" {
			dir = cfg.ExportDir
		}
		exp := export.New(dir, logger)
		outcome, err := exp.ExportAll(ctx, export.NewJobID(), res.Table, res.Report)
		if err != nil {
			return err
		}
		out.JobID = outcome.JobID
		out.ExportedFiles = outcome.Files
		if len(outcome.Errors) > 0 {
			out.ExportErrors = outcome.ErrorMessages()
		}
		defer func() {
			if e := outcome.Err(); e != nil {
				logger.Warn().Err(e).Msg("some sinks failed")
			}
		}()
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func readFile(path string, headerRow int) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return fileio.ReadAny(f, path, headerRow)
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
