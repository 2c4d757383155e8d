package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/paiban/gashift/pkg/errors"
	"github.com/paiban/gashift/pkg/logger"
	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/constraint"
	"github.com/paiban/gashift/pkg/scheduler/constraint/builtin"
	"github.com/paiban/gashift/pkg/scheduler/matrix"
	"github.com/paiban/gashift/pkg/swap"
)

type swapOptions struct {
	*rootOptions
	input       string
	result      string
	constraints string
	output      string
	employee    string
	day         int
	target      string
	returnDay   int
	limit       int
}

func newSwapCommand(root *rootOptions) *cobra.Command {
	o := &swapOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "评估换班请求；未指定 --target 时推荐代班人选",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.run(cmd)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.input, "input", "i", "", "排班输入文件 (yaml/json)")
	f.StringVarP(&o.result, "result", "r", "", "run 命令输出的结果文件")
	f.StringVar(&o.constraints, "constraints", "", "约束配置文件，根键 constraints")
	f.StringVarP(&o.output, "output", "o", "", "输出文件，默认标准输出")
	f.StringVarP(&o.employee, "employee", "e", "", "申请休息的员工 ID")
	f.IntVarP(&o.day, "day", "d", 0, "申请休息的日期（1 起始）")
	f.StringVar(&o.target, "target", "", "代班员工 ID")
	f.IntVar(&o.returnDay, "return-day", 0, "互换时的补班日期，为 0 表示代班")
	f.IntVar(&o.limit, "limit", 5, "推荐数量上限")
	for _, name := range []string{"input", "result", "employee", "day"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (o *swapOptions) run(cmd *cobra.Command) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	in, configs, err := loadProblem(cfg, o.input, o.constraints)
	if err != nil {
		return err
	}
	if len(configs) == 0 {
		configs = builtin.DefaultSet()
	}
	problem, err := constraint.NewProblem(in)
	if err != nil {
		return err
	}
	manager, err := builtin.NewRegistry().Compile(configs, problem)
	if err != nil {
		return err
	}
	schedule, err := loadSchedule(o.result, problem)
	if err != nil {
		return err
	}

	logger.Debug().Str("employee", o.employee).Int("day", o.day).Str("target", o.target).Msg("评估换班")
	if o.target == "" {
		opts := swap.DefaultRecommendOptions()
		opts.MaxRecommendations = o.limit
		recs, err := swap.NewRecommender(problem, manager).RecommendSwapTargets(schedule, o.employee, o.day, opts)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), o.output, recs)
	}

	req := &swap.SwapRequest{EmployeeID: o.employee, Day: o.day, TargetID: o.target, Type: swap.SwapTakeOver}
	if o.returnDay > 0 {
		req.Type = swap.SwapExchange
		req.ReturnDay = o.returnDay
	}
	eval, err := swap.NewSwapEvaluator(problem, manager).EvaluateSwap(schedule, req)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), o.output, struct {
		*swap.SwapEvaluation
		Schedule [][]int `json:"schedule"`
	}{eval, eval.Schedule.Codes()})
}

// loadSchedule 读取结果文件中的最优排班，员工顺序须与输入一致
func loadSchedule(path string, p *constraint.Problem) (*matrix.Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, fmt.Sprintf("读取结果文件失败: %s", path))
	}
	var res model.ShiftResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, fmt.Sprintf("解析结果文件失败: %s", path))
	}
	if !slices.Equal(res.EmployeeIDs, p.EmployeeIDs()) {
		return nil, errors.Structural("结果中的员工 %v 与输入 %v 不一致", res.EmployeeIDs, p.EmployeeIDs())
	}
	m, err := matrix.FromCodes(res.BestSchedule)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStructural, "结果排班无效")
	}
	if m.Rows() != len(p.Employees) || m.Cols() != p.Days() {
		return nil, errors.Structural("结果排班尺寸与输入不一致").
			WithDetails(fmt.Sprintf("结果为 %dx%d，输入为 %dx%d", m.Rows(), m.Cols(), len(p.Employees), p.Days()))
	}
	return m, nil
}
