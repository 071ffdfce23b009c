package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/visitpivot/internal/analysis"
	cfgpkg "github.com/KaramelBytes/visitpivot/internal/config"
	"github.com/KaramelBytes/visitpivot/internal/parser"
	"github.com/KaramelBytes/visitpivot/internal/report"
	"github.com/spf13/cobra"
)

// pivotFlags are the per-run flags shared by pivot and pivot-batch. Each
// overrides the matching config value only when set.
type pivotFlags struct {
	sheetName  string
	delimiter  string
	maxRows    int
	format     string
	dateFormat string
	timeoutSec int
	noBOM      bool
}

func (pf *pivotFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&pf.sheetName, "sheet-name", "", "XLSX: sheet to read (default \"Report\", else the first sheet)")
	cmd.Flags().StringVar(&pf.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	cmd.Flags().IntVar(&pf.maxRows, "max-rows", 0, "maximum rows to process (0 = unlimited)")
	cmd.Flags().StringVarP(&pf.format, "format", "f", "", "output format: markdown|csv|xlsx|yaml|json")
	cmd.Flags().StringVar(&pf.dateFormat, "date-format", "", "Go layout for date columns (default 02/01/2006)")
	cmd.Flags().IntVar(&pf.timeoutSec, "timeout", 0, "abort a run after N seconds (0 = no limit)")
	cmd.Flags().BoolVar(&pf.noBOM, "no-bom", false, "CSV: omit the UTF-8 byte order mark")
}

// runSettings is the merged view of config and flags for one run.
type runSettings struct {
	parse   parser.Options
	maxRows int
	format  string
	timeout time.Duration
	render  report.RenderOptions
}

func (pf *pivotFlags) resolve(cmd *cobra.Command, c *cfgpkg.Global) (runSettings, error) {
	f := cmd.Flags()
	s := runSettings{
		parse:   parser.Options{SheetName: c.SheetName},
		maxRows: c.MaxRows,
		format:  c.OutputFormat,
		timeout: time.Duration(c.TimeoutSec) * time.Second,
		render:  report.RenderOptions{DateFormat: c.DateDisplayFormat, BOM: c.CSVBOM},
	}
	delim := c.Delimiter
	if f.Changed("delimiter") {
		delim = pf.delimiter
	}
	r, err := parser.ParseDelimiter(delim)
	if err != nil {
		return s, err
	}
	s.parse.Delimiter = r

	if f.Changed("sheet-name") {
		s.parse.SheetName = pf.sheetName
	}
	if f.Changed("max-rows") {
		if pf.maxRows < 0 {
			return s, fmt.Errorf("invalid --max-rows: %d", pf.maxRows)
		}
		s.maxRows = pf.maxRows
	}
	if f.Changed("format") {
		s.format = strings.ToLower(strings.TrimSpace(pf.format))
	}
	switch s.format {
	case report.FormatMarkdown, report.FormatCSV, report.FormatXLSX, report.FormatYAML, report.FormatJSON:
	default:
		return s, fmt.Errorf("unsupported --format: %s (use markdown|csv|xlsx|yaml|json)", s.format)
	}
	if f.Changed("date-format") && pf.dateFormat != "" {
		s.render.DateFormat = pf.dateFormat
	}
	if f.Changed("timeout") {
		s.timeout = time.Duration(pf.timeoutSec) * time.Second
	}
	if pf.noBOM {
		s.render.BOM = false
	}
	return s, nil
}

// pivotFile reads one export and runs the pipeline over it.
func pivotFile(ctx context.Context, path string, s runSettings) (*analysis.Result, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	tbl, err := parser.ReadFile(path, s.parse)
	if err != nil {
		return nil, err
	}
	opt := analysis.DefaultOptions()
	opt.MaxRows = s.maxRows
	opt.Logger = slog.Default().With(slog.String("file", filepath.Base(path)))
	res, err := analysis.Run(ctx, tbl, opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return res, nil
}

// emit prints res to w or writes it to out. Binary and tabular formats
// always go to a file.
func emit(w io.Writer, res *analysis.Result, s runSettings, input, out string) (string, error) {
	render := s.render
	render.Name = filepath.Base(input)
	if out == "" {
		switch s.format {
		case report.FormatMarkdown:
			_, err := io.WriteString(w, report.Markdown(res, render))
			return "", err
		case report.FormatYAML:
			return "", report.WriteYAML(w, res)
		case report.FormatJSON:
			return "", report.WriteJSON(w, res)
		case report.FormatXLSX:
			out = filepath.Join(filepath.Dir(input), report.DefaultXLSXName)
		default:
			out = strings.TrimSuffix(input, filepath.Ext(input)) + ".pivot" + report.Ext(s.format)
		}
	}
	if err := report.WriteFile(out, s.format, res, render); err != nil {
		return "", err
	}
	return out, nil
}

var pvFlags pivotFlags
var pvOutput string

var pivotCmd = &cobra.Command{
	Use:   "pivot <file>",
	Short: "Build the daily visit pivot for one XLSX/CSV export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("input file: %w", err)
		}
		s, err := pvFlags.resolve(cmd, currentConfig())
		if err != nil {
			return err
		}
		res, err := pivotFile(cmd.Context(), path, s)
		if err != nil {
			return err
		}
		written, err := emit(cmd.OutOrStdout(), res, s, path, pvOutput)
		if err != nil {
			return err
		}
		if written != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s (%d visits, %d rows dropped)\n", written, res.Stats.Kept, res.Stats.Dropped())
		}
		if res.Pivot.Empty() {
			fmt.Fprintln(cmd.ErrOrStderr(), "⚠ Warning: no visits left after filtering")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pivotCmd)
	pvFlags.bind(pivotCmd)
	pivotCmd.Flags().StringVarP(&pvOutput, "output", "o", "", "output file (markdown/yaml/json print to stdout when omitted)")
}
