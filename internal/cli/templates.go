package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/paiban/gashift/pkg/scheduler/constraint/builtin"
)

func newTemplatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "列出内置约束模板及默认参数",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "模板\t名称\t类别\t范围\t权重\t参数")
			for _, t := range builtin.NewRegistry().List() {
				params := make([]string, 0, len(t.Params))
				for _, p := range t.Params {
					params = append(params, fmt.Sprintf("%s=%v", p.Name, p.Default))
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%g\t%s\n",
					t.ID, t.Name, t.Category, t.Scope, t.DefaultWeight, strings.Join(params, " "))
			}
			return tw.Flush()
		},
	}
}
