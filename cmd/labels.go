package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/listsum/internal/summary"
)

var (
	lblColumn string
	lblQuery  string
	lblLimit  int
	lblOutput string
	lblRead   readFlags
)

var labelsCmd = &cobra.Command{
	Use:   "labels <file>",
	Short: "Print a label frequency table for a dataset column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := lblRead.options(cmd.Flags().Changed("list-sep"))
		if err != nil {
			return err
		}
		limit := settings().LabelLimit
		if cmd.Flags().Changed("limit") {
			limit = lblLimit
		}
		l, err := datasetLoader()
		if err != nil {
			return err
		}
		ds, err := l.Load(args[0], opt)
		if err != nil {
			return err
		}
		var items []summary.Item
		if lblQuery != "" {
			items, err = ds.Query(lblQuery)
		} else {
			items, err = ds.Column(lblColumn)
		}
		if err != nil {
			return err
		}
		table, err := summary.LabelTable(items, limit)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if lblOutput != "" {
			if err := writeOutput(lblOutput, []byte(table)); err != nil {
				return err
			}
			fmt.Fprintf(w, "✓ Wrote label table to %s\n", lblOutput)
			return nil
		}
		fmt.Fprint(w, table)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(labelsCmd)
	labelsCmd.Flags().StringVarP(&lblColumn, "column", "c", "label", "label column")
	labelsCmd.Flags().StringVarP(&lblQuery, "query", "q", "", "jq expression producing the label per record")
	labelsCmd.Flags().IntVar(&lblLimit, "limit", summary.DefaultLabelLimit, "maximum rows (overrides config)")
	labelsCmd.Flags().StringVarP(&lblOutput, "output", "o", "", "optional path to write the table")
	addReadFlags(labelsCmd, &lblRead)
}
