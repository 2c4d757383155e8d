package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paiban/gashift/pkg/errors"
	"github.com/paiban/gashift/pkg/scheduler/optimizer"
)

func newValidateCommand(root *rootOptions) *cobra.Command {
	var input, constraints string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "检查输入与约束配置，不运行算法",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			in, configs, err := loadProblem(cfg, input, constraints)
			if err != nil {
				return err
			}

			engine, err := optimizer.New(in, configs, cfg.GA, nil)
			if err != nil {
				var ve *errors.ValidationErrors
				if errors.As(err, &ve) {
					out := cmd.ErrOrStderr()
					for _, e := range ve.Errors {
						fmt.Fprintf(out, "  %s: %s\n", e.Field, e.Message)
					}
				}
				return err
			}

			p := engine.Problem()
			summary := engine.Manager().Summary()
			fmt.Fprintf(cmd.OutOrStdout(), "配置有效：%d 名员工，%d 天，约束 %v 条（硬 %v，软 %v），硬约束基础惩罚 %g\n",
				len(p.Employees), p.Days(), summary["total"], summary["hard"], summary["soft"], summary["hard_floor"])
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "排班输入文件 (yaml/json)")
	cmd.Flags().StringVar(&constraints, "constraints", "", "约束配置文件，根键 constraints")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
