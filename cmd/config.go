package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/visitpivot/internal/config"
	"github.com/KaramelBytes/visitpivot/internal/parser"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set visitpivot configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		out := cmd.OutOrStdout()
		sheet := c.SheetName
		if sheet == "" {
			sheet = "(default: " + parser.DefaultSheet + ", else first sheet)"
		}
		delim := c.Delimiter
		if delim == "" {
			delim = "(sniffed)"
		}
		fmt.Fprintf(out, "sheet_name: %s\n", sheet)
		fmt.Fprintf(out, "delimiter: %s\n", delim)
		fmt.Fprintf(out, "max_rows: %d\n", c.MaxRows)
		fmt.Fprintf(out, "output_format: %s\n", c.OutputFormat)
		fmt.Fprintf(out, "date_display_format: %s\n", c.DateDisplayFormat)
		fmt.Fprintf(out, "csv_bom: %t\n", c.CSVBOM)
		fmt.Fprintf(out, "batch_concurrency: %d\n", c.BatchConcurrency)
		fmt.Fprintf(out, "timeout_sec: %d\n", c.TimeoutSec)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", c.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c := *currentConfig()
		switch key {
		case "sheet_name":
			c.SheetName = val
		case "delimiter":
			if _, err := parser.ParseDelimiter(val); err != nil {
				return err
			}
			c.Delimiter = val
		case "max_rows", "batch_concurrency", "timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for %s: %w", key, err)
			}
			switch key {
			case "max_rows":
				c.MaxRows = i
			case "batch_concurrency":
				c.BatchConcurrency = i
			default:
				c.TimeoutSec = i
			}
		case "output_format":
			c.OutputFormat = strings.ToLower(val)
		case "date_display_format":
			c.DateDisplayFormat = val
		case "csv_bom":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for csv_bom: %w", err)
			}
			c.CSVBOM = b
		case "log_level":
			c.LogLevel = strings.ToLower(val)
		case "log_format":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&c, cfgFile); err != nil {
			return err
		}
		cfg = &c
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
