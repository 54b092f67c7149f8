package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/ppiankov/leakprobe/internal/verbalize"
	"github.com/spf13/cobra"
)

var benchmarksCmd = &cobra.Command{
	Use:   "benchmarks",
	Short: "List supported benchmarks and how their queries are built",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tINPUT\tID\tBLANKS\tLANG\tRECALL\tSOURCE")
		for _, name := range verbalize.Names() {
			b, err := verbalize.Lookup(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.1f\t%s (%s)\n",
				b.Name, b.InputField, b.IDField, b.Policy, b.Language, b.RecallThreshold, b.HFName, b.Split)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(benchmarksCmd)
}
