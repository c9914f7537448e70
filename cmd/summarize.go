package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/listsum/internal/utils"
)

var (
	sumColumn    string
	sumQuery     string
	sumNExamples int
	sumFormat    string
	sumOutput    string
	sumBundle    string
	sumDesc      string
	sumRead      readFlags
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file>",
	Short: "Summarize one column of a dataset",
	Long: `Summarize one column of a dataset as a fixed text block: item count,
None count, numeric statistics or distinct-value counts, and a value/count table.

Select the column with --column, or extract a value (or a list) per record with
a jq expression via --query, e.g. --query '[.turns[].speaker]'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if sumColumn != "" && sumQuery != "" {
			return fmt.Errorf("use either --column or --query, not both")
		}
		format := strings.ToLower(strings.TrimSpace(sumFormat))
		if format != "text" && format != "json" {
			return fmt.Errorf("unsupported --format: %s (use text|json)", sumFormat)
		}
		opt, err := sumRead.options(cmd.Flags().Changed("list-sep"))
		if err != nil {
			return err
		}
		n := settings().NExamples
		if cmd.Flags().Changed("n-examples") {
			n = sumNExamples
		}

		res, err := summarizeColumn(args[0], sumColumn, sumQuery, opt, n)
		if err != nil {
			return err
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", w)
		}

		out := res.Text
		if format == "json" {
			b, err := utils.PrettyJSON(res)
			if err != nil {
				return err
			}
			out = strings.TrimSuffix(string(b), "\n")
		}

		// Decide where to write: --output path, or attach to bundle, or stdout
		w := cmd.OutOrStdout()
		written := false
		if sumOutput != "" {
			if err := writeOutput(sumOutput, []byte(out+"\n")); err != nil {
				return err
			}
			fmt.Fprintf(w, "✓ Wrote summary to %s\n", sumOutput)
			written = true
		}
		if sumBundle != "" {
			b, err := attachToBundle(sumBundle, sumDesc, res)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "✓ Added summary of '%s' to bundle '%s'\n", res.label(), b.Name)
			written = true
		}
		if !written {
			fmt.Fprintln(w, out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().StringVarP(&sumColumn, "column", "c", "", "column/field to summarize")
	summarizeCmd.Flags().StringVarP(&sumQuery, "query", "q", "", "jq expression evaluated per record")
	summarizeCmd.Flags().IntVarP(&sumNExamples, "n-examples", "n", 10, "rows in each value/count table (overrides config)")
	summarizeCmd.Flags().StringVar(&sumFormat, "format", "text", "output format: text|json")
	summarizeCmd.Flags().StringVarP(&sumOutput, "output", "o", "", "optional path to write the summary")
	summarizeCmd.Flags().StringVarP(&sumBundle, "bundle", "b", "", "bundle name to attach the summary to")
	summarizeCmd.Flags().StringVar(&sumDesc, "desc", "", "description when attaching to a bundle")
	addReadFlags(summarizeCmd, &sumRead)
}

// addReadFlags registers the dataset reading flags on c.
func addReadFlags(c *cobra.Command, rf *readFlags) {
	c.Flags().StringVar(&rf.listSep, "list-sep", "", "split text cells on this separator into lists (overrides config)")
	c.Flags().StringVar(&rf.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab'")
	c.Flags().StringVar(&rf.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	c.Flags().StringVar(&rf.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	c.Flags().StringVar(&rf.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	c.Flags().IntVar(&rf.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	c.Flags().IntVar(&rf.maxRows, "max-rows", 0, "maximum rows to read (0 = unlimited)")
}
