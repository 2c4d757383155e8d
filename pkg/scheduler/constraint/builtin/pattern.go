package builtin

import (
	"fmt"

	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/constraint"
)

// AvoidLongConsecutiveWorkConstraint 长连勤按平方递增惩罚
type AvoidLongConsecutiveWorkConstraint struct {
	BaseConstraint
	threshold int
	weight    float64
}

var avoidLongConsecutiveWorkTemplate = constraint.Template{
	ID:            "avoid_long_consecutive_work",
	Name:          "避免长连勤",
	Description:   "连续出勤达到阈值后，每段按 (长度-阈值+1)² 计罚",
	Scope:         constraint.ScopePattern,
	Category:      constraint.CategorySoft,
	DefaultWeight: 1,
	Params: []constraint.ParamDef{
		{Name: "threshold", Type: constraint.ParamInt, Default: 5, Min: constraint.Bound(1), Max: constraint.Bound(31), Description: "开始计罚的连勤天数"},
		{Name: "penalty_weight", Type: constraint.ParamFloat, Default: 1.0, Min: constraint.Bound(0), Description: "平方项系数"},
	},
	New: func(s *constraint.Spec, _ *constraint.Problem) constraint.Constraint {
		return &AvoidLongConsecutiveWorkConstraint{
			BaseConstraint: NewBaseConstraint(s),
			threshold:      s.Params.Int("threshold"),
			weight:         s.Params.Float("penalty_weight"),
		}
	},
}

// Evaluate 评估整个排班
func (c *AvoidLongConsecutiveWorkConstraint) Evaluate(ctx *constraint.Context) (float64, []model.Violation) {
	var violations []model.Violation
	total := 0.0

	for e, emp := range ctx.Problem.Employees {
		for _, run := range ctx.Matrix.Runs(e) {
			if !run.Work || run.Len < c.threshold {
				continue
			}
			over := float64(run.Len - c.threshold + 1)
			penalty := over * over * c.weight
			total += penalty
			violations = append(violations, c.CreateViolation(emp.ID, run.Start,
				fmt.Sprintf("员工 %s 从 %d 日起连续工作 %d 天", emp.Name, run.Start+1, run.Len),
				penalty))
		}
	}
	return total, violations
}

// IsolatedPatternConstraint 检测三日模式 X-Y-X 的孤立日
type IsolatedPatternConstraint struct {
	BaseConstraint
	// middleWork 为 true 时检测 休-班-休，否则检测 班-休-班
	middleWork bool
	penalty    float64
	label      string
}

func isolatedTemplate(id, name, description string, middleWork bool, defaultPenalty float64, label string) constraint.Template {
	return constraint.Template{
		ID:            id,
		Name:          name,
		Description:   description,
		Scope:         constraint.ScopePattern,
		Category:      constraint.CategorySoft,
		DefaultWeight: 1,
		Params: []constraint.ParamDef{
			{Name: "penalty_weight", Type: constraint.ParamFloat, Default: defaultPenalty, Min: constraint.Bound(0), Description: "每次出现的惩罚"},
		},
		New: func(s *constraint.Spec, _ *constraint.Problem) constraint.Constraint {
			return &IsolatedPatternConstraint{
				BaseConstraint: NewBaseConstraint(s),
				middleWork:     middleWork,
				penalty:        s.Params.Float("penalty_weight"),
				label:          label,
			}
		},
	}
}

var (
	noIsolatedHolidaysTemplate = isolatedTemplate("no_isolated_holidays", "避免拆散连休",
		"休-班-休 会把连休拆开，每次出现计罚", true, 10, "连休被单日出勤拆开")
	noIsolatedWorkdaysTemplate = isolatedTemplate("no_isolated_workdays", "避免孤立出勤日",
		"前后均为休息的单日出勤，每次出现计罚", true, 5, "孤立出勤日")
	noIsolatedRestDaysTemplate = isolatedTemplate("no_isolated_rest_days", "避免孤立休息日",
		"前后均为出勤的单日休息，每次出现计罚", false, 5, "孤立休息日")
)

// Evaluate 评估整个排班
func (c *IsolatedPatternConstraint) Evaluate(ctx *constraint.Context) (float64, []model.Violation) {
	var violations []model.Violation
	total := 0.0
	days := ctx.Problem.Days()

	for e, emp := range ctx.Problem.Employees {
		for d := 1; d+1 < days; d++ {
			mid := ctx.Matrix.IsWork(e, d)
			if mid != c.middleWork || ctx.Matrix.IsWork(e, d-1) == mid || ctx.Matrix.IsWork(e, d+1) == mid {
				continue
			}
			total += c.penalty
			violations = append(violations, c.CreateViolation(emp.ID, d,
				fmt.Sprintf("员工 %s 在 %d 日出现%s", emp.Name, d+1, c.label),
				c.penalty))
		}
	}
	return total, violations
}

// ConsecutiveHolidayBonusConstraint 鼓励连休：过短的休息段按缺少天数计罚
type ConsecutiveHolidayBonusConstraint struct {
	BaseConstraint
	threshold int
	perDay    float64
}

var consecutiveHolidayBonusTemplate = constraint.Template{
	ID:            "consecutive_holiday_bonus",
	Name:          "连休奖励",
	Description:   "休息段短于阈值时按 (阈值-长度)×每日系数 计罚，连休越长惩罚越低",
	Scope:         constraint.ScopePattern,
	Category:      constraint.CategorySoft,
	DefaultWeight: 1,
	Params: []constraint.ParamDef{
		{Name: "threshold", Type: constraint.ParamInt, Default: 2, Min: constraint.Bound(1), Max: constraint.Bound(31), Description: "期望的最短连休天数"},
		{Name: "bonus_per_day", Type: constraint.ParamFloat, Default: 2.0, Min: constraint.Bound(0), Description: "每缺少一天连休的惩罚"},
	},
	New: func(s *constraint.Spec, _ *constraint.Problem) constraint.Constraint {
		return &ConsecutiveHolidayBonusConstraint{
			BaseConstraint: NewBaseConstraint(s),
			threshold:      s.Params.Int("threshold"),
			perDay:         s.Params.Float("bonus_per_day"),
		}
	},
}

// Evaluate 评估整个排班
func (c *ConsecutiveHolidayBonusConstraint) Evaluate(ctx *constraint.Context) (float64, []model.Violation) {
	var violations []model.Violation
	total := 0.0

	for e, emp := range ctx.Problem.Employees {
		for _, run := range ctx.Matrix.Runs(e) {
			if run.Work || run.Len >= c.threshold {
				continue
			}
			penalty := float64(c.threshold-run.Len) * c.perDay
			total += penalty
			violations = append(violations, c.CreateViolation(emp.ID, run.Start,
				fmt.Sprintf("员工 %s 在 %d 日起仅连休 %d 天", emp.Name, run.Start+1, run.Len),
				penalty))
		}
	}
	return total, violations
}

// MaxPenalty 平方项对连勤长度超可加，单段最长连勤给出上界
func (c *AvoidLongConsecutiveWorkConstraint) MaxPenalty(p *constraint.Problem) float64 {
	over := float64(atLeastZero(p.Days() - c.threshold + 1))
	return float64(len(p.Employees)) * over * over * c.weight
}

// MaxPenalty 实现 constraint.Constraint
func (c *IsolatedPatternConstraint) MaxPenalty(p *constraint.Problem) float64 {
	return float64(len(p.Employees)*atLeastZero(p.Days()-2)) * c.penalty
}

// MaxPenalty 每人至多 (days+1)/2 段休息
func (c *ConsecutiveHolidayBonusConstraint) MaxPenalty(p *constraint.Problem) float64 {
	return float64(len(p.Employees)*((p.Days()+1)/2)*(c.threshold-1)) * c.perDay
}
