package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"agriinsight/internal/dataset"
	"agriinsight/internal/domain"
)

type filterFlags struct {
	states []string
	crops  []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.states, "state", nil, "keep only these states (repeatable or comma separated)")
	cmd.Flags().StringSliceVar(&f.crops, "crop", nil, "keep only these commodities (repeatable or comma separated)")
}

func (f *filterFlags) filter() dataset.Filter {
	return dataset.Filter{States: f.states, Crops: f.crops}
}

func newDataCmd(opts *rootOptions) *cobra.Command {
	var (
		filters filterFlags
		limit   int
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Browse crop production records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := opts.backend.Records(cmd.Context())
			filtered := dataset.Apply(all, filters.filter())
			page := dataset.Head(filtered, limit)
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, page.Rows)
			}
			if all.Empty() {
				fmt.Fprintln(out, "No records returned by the dataset API.")
				return nil
			}
			fmt.Fprintf(out, "Records: %d (filtered: %d)\n", all.Len(), filtered.Len())
			return writeTable(out, page)
		},
	}
	filters.register(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum rows to print; -1 for all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output rows as JSON")
	return cmd
}

func newInsightCmd(opts *rootOptions) *cobra.Command {
	var filters filterFlags
	cmd := &cobra.Command{
		Use:   "insight [question]",
		Short: "Answer a data question without the language model",
		Long: `Runs the rule-based interpreter over the (optionally filtered) dataset.
Understands "highest production", "lowest production" and
"top producers of <crop> in <state>".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := strings.TrimSpace(strings.Join(args, " "))
			if q == "" {
				return errNoAnalysis
			}
			table := dataset.Apply(opts.backend.Records(cmd.Context()), filters.filter())
			fmt.Fprintln(cmd.OutOrStdout(), opts.backend.Insight(q, table))
			return nil
		},
	}
	filters.register(cmd)
	return cmd
}

func writeTable(w io.Writer, t domain.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	for _, rec := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cells[i] = rec[c]
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
