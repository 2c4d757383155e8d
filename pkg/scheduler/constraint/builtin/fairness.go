package builtin

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/constraint"
)

// EqualWeekendDistributionConstraint 周末休息天数在员工之间均衡
type EqualWeekendDistributionConstraint struct {
	BaseConstraint
	maxDiff int
	penalty float64
}

var equalWeekendDistributionTemplate = constraint.Template{
	ID:            "equal_weekend_distribution",
	Name:          "周末休息均衡",
	Description:   "各员工周末休息天数的极差超过容差时，按超出部分计罚",
	Scope:         constraint.ScopeFairness,
	Category:      constraint.CategorySoft,
	DefaultWeight: 1,
	Params: []constraint.ParamDef{
		{Name: "max_diff", Type: constraint.ParamInt, Default: 2, Min: constraint.Bound(0), Description: "允许的最大差值"},
		{Name: "penalty_per_excess", Type: constraint.ParamFloat, Default: 3.0, Min: constraint.Bound(0), Description: "每超出一天的惩罚"},
	},
	New: func(s *constraint.Spec, _ *constraint.Problem) constraint.Constraint {
		return &EqualWeekendDistributionConstraint{
			BaseConstraint: NewBaseConstraint(s),
			maxDiff:        s.Params.Int("max_diff"),
			penalty:        s.Params.Float("penalty_per_excess"),
		}
	},
}

// Evaluate 评估整个排班
func (c *EqualWeekendDistributionConstraint) Evaluate(ctx *constraint.Context) (float64, []model.Violation) {
	weekends := ctx.Problem.Calendar.WeekendIndexes()
	n := len(ctx.Problem.Employees)
	if n < 2 || len(weekends) == 0 {
		return 0, nil
	}

	offs := make([]float64, n)
	for e := 0; e < n; e++ {
		for _, d := range weekends {
			if !ctx.Matrix.IsWork(e, d) {
				offs[e]++
			}
		}
	}

	spread := floats.Max(offs) - floats.Min(offs)
	excess := spread - float64(c.maxDiff)
	if excess <= 0 {
		return 0, nil
	}
	penalty := excess * c.penalty
	return penalty, []model.Violation{c.CreateViolation("", -1,
		fmt.Sprintf("周末休息天数最多 %.0f 天、最少 %.0f 天，差值超过 %d 天", floats.Max(offs), floats.Min(offs), c.maxDiff),
		penalty)}
}

// EqualHolidayDistributionConstraint 每位员工的休息日在一周各天之间分布均匀
type EqualHolidayDistributionConstraint struct {
	BaseConstraint
	weight float64
}

var equalHolidayDistributionTemplate = constraint.Template{
	ID:            "equal_holiday_distribution",
	Name:          "休息日星期分布均衡",
	Description:   "按员工统计各星期几的休息次数，标准差越大惩罚越高",
	Scope:         constraint.ScopeFairness,
	Category:      constraint.CategorySoft,
	DefaultWeight: 1,
	Params: []constraint.ParamDef{
		{Name: "penalty_weight", Type: constraint.ParamFloat, Default: 1.0, Min: constraint.Bound(0), Description: "标准差系数"},
	},
	New: func(s *constraint.Spec, _ *constraint.Problem) constraint.Constraint {
		return &EqualHolidayDistributionConstraint{BaseConstraint: NewBaseConstraint(s), weight: s.Params.Float("penalty_weight")}
	},
}

// Evaluate 评估整个排班
func (c *EqualHolidayDistributionConstraint) Evaluate(ctx *constraint.Context) (float64, []model.Violation) {
	var violations []model.Violation
	total := 0.0
	days := ctx.Problem.Calendar.Days

	for e, emp := range ctx.Problem.Employees {
		counts := make([]float64, 7)
		for d, day := range days {
			if !ctx.Matrix.IsWork(e, d) {
				counts[day.Weekday]++
			}
		}
		_, std := stat.PopMeanStdDev(counts, nil)
		if std == 0 {
			continue
		}
		penalty := std * c.weight
		total += penalty
		violations = append(violations, c.CreateViolation(emp.ID, -1,
			fmt.Sprintf("员工 %s 休息日的星期分布标准差为 %.2f", emp.Name, std),
			penalty))
	}
	return total, violations
}

// MaxPenalty 极差不超过周末天数
func (c *EqualWeekendDistributionConstraint) MaxPenalty(p *constraint.Problem) float64 {
	if len(p.Employees) < 2 {
		return 0
	}
	return float64(atLeastZero(len(p.Calendar.WeekendIndexes())-c.maxDiff)) * c.penalty
}

// MaxPenalty 标准差不超过单个星期几的最大休息次数
func (c *EqualHolidayDistributionConstraint) MaxPenalty(p *constraint.Problem) float64 {
	return float64(len(p.Employees)*((p.Days()+6)/7)) * c.weight
}
