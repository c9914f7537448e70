package cmd

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/KaramelBytes/listsum/internal/bundle"
	"github.com/KaramelBytes/listsum/internal/utils"
)

var (
	bndInitDesc    string
	bndShowContext bool
	bndShowTokens  bool
	bndShowBudget  int
	bndShowOutput  string
)

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Manage bundles of column summaries",
}

var bundleInitCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Create a new, empty bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		dir, err := resolveBundleDir(name)
		if err != nil {
			return err
		}
		// Refuse to overwrite an existing bundle.
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			if _, err := bundle.Load(dir); err == nil {
				return fmt.Errorf("bundle already exists at %s", dir)
			}
			entries, err := os.ReadDir(dir)
			if err != nil {
				return fmt.Errorf("inspect bundle directory: %w", err)
			}
			if len(entries) > 0 {
				return fmt.Errorf("directory %s already exists and is not empty; refusing to initialize bundle", dir)
			}
		} else if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("stat bundle directory: %w", err)
		}
		b := bundle.New(name, bndInitDesc, dir)
		if err := b.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Bundle initialized: %s\n", dir)
		return nil
	},
}

var bundleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bundles with entry and token counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := bundlesDir()
		if err != nil {
			return err
		}
		bundles, err := bundle.List(root)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(bundles) == 0 {
			fmt.Fprintln(w, "(no bundles)")
			return nil
		}
		p := message.NewPrinter(language.English)
		for _, b := range bundles {
			p.Fprintf(w, "- %s: %d summaries, ~%d tokens", b.Name, len(b.Entries), b.Tokens())
			if b.Description != "" {
				fmt.Fprintf(w, " (%s)", b.Description)
			}
			fmt.Fprintln(w)
		}
		return nil
	},
}

var bundleShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a bundle's entries, or its assembled prompt context with --context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := loadBundle(args[0])
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		p := message.NewPrinter(language.English)

		if bndShowContext {
			ctx, tokens, err := b.BuildContext()
			if err != nil {
				return err
			}
			if bndShowBudget > 0 && tokens > bndShowBudget {
				fmt.Fprintf(os.Stderr, "⚠ Warning: context is ~%d tokens, truncating to %d\n", tokens, bndShowBudget)
				ctx = utils.TruncateToTokenLimit(ctx, bndShowBudget)
			}
			if bndShowOutput != "" {
				if err := writeOutput(bndShowOutput, []byte(ctx)); err != nil {
					return err
				}
				p.Fprintf(w, "✓ Wrote context (~%d tokens) to %s\n", utils.CountTokens(ctx), bndShowOutput)
				return nil
			}
			fmt.Fprint(w, ctx)
			return nil
		}

		fmt.Fprintf(w, "Bundle: %s\n", b.Name)
		if b.Description != "" {
			fmt.Fprintf(w, "Description: %s\n", b.Description)
		}
		if b.Instructions != "" {
			fmt.Fprintf(w, "Instructions: %s\n", b.Instructions)
		}
		entries := b.Ordered()
		if len(entries) == 0 {
			fmt.Fprintln(w, "(no summaries)")
			return nil
		}
		for _, e := range entries {
			p.Fprintf(w, "- %s: %s (%s) [%s, ~%d tokens, %s]\n",
				e.ID, e.Label(), e.Source, e.Category, e.Tokens, e.AddedAt.Format(time.RFC3339))
		}
		if bndShowTokens {
			bd := b.Breakdown()
			keys := make([]string, 0, len(bd))
			for k := range bd {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintln(w, "Token breakdown:")
			for _, k := range keys {
				p.Fprintf(w, "  %s: %d\n", k, bd[k])
			}
		}
		return nil
	},
}

var bundleRemoveCmd = &cobra.Command{
	Use:   "remove <name> <entry-id>",
	Short: "Remove a summary from a bundle by id or unique id prefix",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := loadBundle(args[0])
		if err != nil {
			return err
		}
		e, err := b.Remove(args[1])
		if err != nil {
			return err
		}
		if err := b.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s (%s) from bundle '%s'\n", e.Label(), e.Source, b.Name)
		return nil
	},
}

var bundleInstructCmd = &cobra.Command{
	Use:   "instruct <name> <instructions>",
	Short: "Set or update bundle instructions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := loadBundle(args[0])
		if err != nil {
			return err
		}
		b.SetInstructions(args[1])
		if err := b.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Instructions updated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bundleCmd)
	bundleCmd.AddCommand(bundleInitCmd, bundleListCmd, bundleShowCmd, bundleRemoveCmd, bundleInstructCmd)

	bundleInitCmd.Flags().StringVarP(&bndInitDesc, "desc", "d", "", "bundle description")
	bundleShowCmd.Flags().BoolVar(&bndShowContext, "context", false, "print the assembled prompt context")
	bundleShowCmd.Flags().BoolVar(&bndShowTokens, "tokens", false, "print a per-section token breakdown")
	bundleShowCmd.Flags().IntVar(&bndShowBudget, "budget", 0, "truncate the context to roughly this many tokens (0 = no limit)")
	bundleShowCmd.Flags().StringVarP(&bndShowOutput, "output", "o", "", "write the context to a file instead of stdout")
}

func loadBundle(name string) (*bundle.Bundle, error) {
	dir, err := resolveBundleDir(name)
	if err != nil {
		return nil, err
	}
	return bundle.Load(dir)
}

// attachToBundle appends results to the named bundle and saves it.
func attachToBundle(name, desc string, results ...*columnResult) (*bundle.Bundle, error) {
	b, err := loadBundle(name)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i, r := range results {
		b.AddSummary(bundle.Entry{
			Source:      r.Source,
			Path:        r.Path,
			Field:       r.Field,
			Query:       r.Query,
			Category:    r.Summary.Category.String(),
			NExamples:   r.Summary.NExamples,
			Description: desc,
			Summary:     r.Text,
			// keep batch order stable when entries are sorted by time
			AddedAt: now.Add(time.Duration(i) * time.Microsecond),
		})
	}
	if err := b.Save(); err != nil {
		return nil, err
	}
	return b, nil
}
