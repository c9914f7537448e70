package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/listsum/internal/utils"
)

var (
	sbColumns     []string
	sbQueries     []string
	sbNExamples   int
	sbFormat      string
	sbOutput      string
	sbBundle      string
	sbDesc        string
	sbWorkers     int
	sbQuiet       bool
	sbSkipMissing bool
	sbRead        readFlags
)

type batchJob struct {
	path  string
	field string
	query string
}

var summarizeBatchCmd = &cobra.Command{
	Use:   "summarize-batch <files...>",
	Short: "Summarize several columns across several datasets concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		if len(sbColumns) == 0 && len(sbQueries) == 0 {
			return fmt.Errorf("at least one --columns or --query is required")
		}
		format := strings.ToLower(strings.TrimSpace(sbFormat))
		if format != "text" && format != "json" {
			return fmt.Errorf("unsupported --format: %s (use text|json)", sbFormat)
		}
		opt, err := sbRead.options(cmd.Flags().Changed("list-sep"))
		if err != nil {
			return err
		}
		n := settings().NExamples
		if cmd.Flags().Changed("n-examples") {
			n = sbNExamples
		}
		workers := settings().Workers
		if sbWorkers > 0 {
			workers = sbWorkers
		}
		if workers <= 0 {
			workers = 1
		}

		var jobs []batchJob
		for _, f := range files {
			for _, c := range sbColumns {
				if c = strings.TrimSpace(c); c != "" {
					jobs = append(jobs, batchJob{path: f, field: c})
				}
			}
			for _, q := range sbQueries {
				jobs = append(jobs, batchJob{path: f, query: q})
			}
		}

		results := make([]*columnResult, len(jobs))
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(workers)
		for i, job := range jobs {
			i, job := i, job
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				res, err := summarizeColumn(job.path, job.field, job.query, opt, n)
				if err != nil {
					if sbSkipMissing && isUnknownField(err) {
						slog.Warn("skipping missing column", "file", job.path, "column", job.field)
						return nil
					}
					return fmt.Errorf("%s: %w", filepath.Base(job.path), err)
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		var done []*columnResult
		for i, res := range results {
			if res == nil {
				continue
			}
			if !sbQuiet {
				fmt.Fprintf(w, "[%d/%d] %s :: %s\n", i+1, len(jobs), res.Source, res.label())
			}
			for _, warn := range res.Warnings {
				fmt.Fprintf(os.Stderr, "⚠ Warning: %s: %s\n", res.Source, warn)
			}
			done = append(done, res)
		}

		var out string
		if format == "json" {
			b, err := utils.PrettyJSON(done)
			if err != nil {
				return err
			}
			out = strings.TrimSuffix(string(b), "\n")
		} else {
			var sb strings.Builder
			for i, res := range done {
				if i > 0 {
					sb.WriteString("\n\n")
				}
				fmt.Fprintf(&sb, "--- Column: %s (%s) ---\n", res.label(), res.Source)
				sb.WriteString(res.Text)
			}
			out = sb.String()
		}

		written := false
		if sbOutput != "" {
			if err := writeOutput(sbOutput, []byte(out+"\n")); err != nil {
				return err
			}
			fmt.Fprintf(w, "✓ Wrote %d summaries to %s\n", len(done), sbOutput)
			written = true
		}
		if sbBundle != "" {
			b, err := attachToBundle(sbBundle, sbDesc, done...)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "✓ Added %d summaries to bundle '%s'\n", len(done), b.Name)
			written = true
		}
		if !written {
			fmt.Fprintln(w, out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summarizeBatchCmd)
	summarizeBatchCmd.Flags().StringSliceVar(&sbColumns, "columns", nil, "comma-separated columns to summarize in every file (repeatable)")
	summarizeBatchCmd.Flags().StringArrayVar(&sbQueries, "query", nil, "jq expression evaluated per record (repeatable)")
	summarizeBatchCmd.Flags().IntVarP(&sbNExamples, "n-examples", "n", 10, "rows in each value/count table (overrides config)")
	summarizeBatchCmd.Flags().StringVar(&sbFormat, "format", "text", "output format: text|json")
	summarizeBatchCmd.Flags().StringVarP(&sbOutput, "output", "o", "", "optional path to write all summaries")
	summarizeBatchCmd.Flags().StringVarP(&sbBundle, "bundle", "b", "", "bundle name to attach the summaries to")
	summarizeBatchCmd.Flags().StringVar(&sbDesc, "desc", "", "description when attaching to a bundle")
	summarizeBatchCmd.Flags().IntVar(&sbWorkers, "workers", 0, "concurrent summaries (overrides config)")
	summarizeBatchCmd.Flags().BoolVar(&sbQuiet, "quiet", false, "suppress progress lines")
	summarizeBatchCmd.Flags().BoolVar(&sbSkipMissing, "skip-missing", false, "skip files that lack a requested column")
	addReadFlags(summarizeBatchCmd, &sbRead)
}
