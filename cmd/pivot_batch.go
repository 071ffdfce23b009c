package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/visitpivot/internal/logging"
	"github.com/KaramelBytes/visitpivot/internal/report"
	"github.com/KaramelBytes/visitpivot/internal/utils"
)

var (
	pbFlags       pivotFlags
	pbOutDir      string
	pbConcurrency int
	pbKeepGoing   bool
	pbQuiet       bool
)

// expandInputs resolves globs and literal paths into a sorted, de-duplicated list.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// outputPaths assigns each input a distinct output file, suffixing __2, __3...
// when two inputs share a base name.
func outputPaths(files []string, dir, ext string) []string {
	taken := map[string]struct{}{}
	out := make([]string, len(files))
	for i, f := range files {
		p := utils.OutputPath(f, dir, ext)
		if _, dup := taken[p]; dup {
			stem := p[:len(p)-len(".pivot"+ext)]
			for idx := 2; ; idx++ {
				cand := fmt.Sprintf("%s__%d.pivot%s", stem, idx, ext)
				if _, ok := taken[cand]; !ok {
					p = cand
					break
				}
			}
		}
		taken[p] = struct{}{}
		out[i] = p
	}
	return out
}

var pivotBatchCmd = &cobra.Command{
	Use:   "pivot-batch <files...>",
	Short: "Build pivots for many exports concurrently, one output file per input",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		c := currentConfig()
		s, err := pbFlags.resolve(cmd, c)
		if err != nil {
			return err
		}
		limit := c.BatchConcurrency
		if cmd.Flags().Changed("concurrency") {
			if pbConcurrency < 1 {
				return fmt.Errorf("invalid --concurrency: %d", pbConcurrency)
			}
			limit = pbConcurrency
		}
		outs := outputPaths(files, pbOutDir, report.Ext(s.format))

		batchID := uuid.NewString()
		ctx := logging.WithBatchID(cmd.Context(), batchID)
		slog.InfoContext(ctx, "batch started", slog.Int("files", len(files)), slog.Int("concurrency", limit))

		var (
			mu     sync.Mutex
			done   int
			failed int
		)
		stdout := cmd.OutOrStdout()
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		for i, path := range files {
			i, path := i, path
			g.Go(func() error {
				res, err := pivotFile(gctx, path, s)
				if err == nil {
					_, err = emit(stdout, res, s, path, outs[i])
				}
				mu.Lock()
				defer mu.Unlock()
				done++
				if err != nil {
					if !pbKeepGoing {
						return err
					}
					failed++
					slog.WarnContext(ctx, "file failed", slog.String("file", path), slog.Any("error", err))
					if !pbQuiet {
						fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] ⚠ %s: %v\n", done, len(files), filepath.Base(path), err)
					}
					return nil
				}
				if !pbQuiet {
					fmt.Fprintf(stdout, "[%d/%d] ✓ Wrote %s (%d visits)\n", done, len(files), outs[i], res.Stats.Kept)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		slog.InfoContext(ctx, "batch finished", slog.Int("files", len(files)), slog.Int("failed", failed))
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(files))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pivotBatchCmd)
	pbFlags.bind(pivotBatchCmd)
	pivotBatchCmd.Flags().StringVar(&pbOutDir, "out-dir", "", "directory for outputs (default: next to each input)")
	pivotBatchCmd.Flags().IntVarP(&pbConcurrency, "concurrency", "j", 0, "files processed in parallel (default from config)")
	pivotBatchCmd.Flags().BoolVar(&pbKeepGoing, "keep-going", false, "continue past files that fail and report them at the end")
	pivotBatchCmd.Flags().BoolVar(&pbQuiet, "quiet", false, "suppress progress output")
}
