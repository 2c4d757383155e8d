package builtin

import (
	"fmt"

	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/constraint"
)

// MaxConsecutiveWorkConstraint 最大连续出勤天数（硬约束）
type MaxConsecutiveWorkConstraint struct {
	BaseConstraint
	maxDays int
	perDay  float64
}

var maxConsecutiveWorkTemplate = constraint.Template{
	ID:            "max_consecutive_work",
	Name:          "连续出勤上限",
	Description:   "连续出勤天数超过上限时，按超出天数计罚",
	Scope:         constraint.ScopeEmployee,
	Category:      constraint.CategoryHard,
	DefaultWeight: 1,
	Params: []constraint.ParamDef{
		{Name: "max_days", Type: constraint.ParamInt, Default: 6, Min: constraint.Bound(1), Max: constraint.Bound(31), Description: "最多连续出勤天数"},
		{Name: "penalty_per_day", Type: constraint.ParamFloat, Default: 10.0, Min: constraint.Bound(0), Description: "每超出一天的惩罚"},
	},
	New: func(s *constraint.Spec, _ *constraint.Problem) constraint.Constraint {
		return &MaxConsecutiveWorkConstraint{
			BaseConstraint: NewBaseConstraint(s),
			maxDays:        s.Params.Int("max_days"),
			perDay:         s.Params.Float("penalty_per_day"),
		}
	},
}

// Evaluate 评估整个排班
func (c *MaxConsecutiveWorkConstraint) Evaluate(ctx *constraint.Context) (float64, []model.Violation) {
	var violations []model.Violation
	total := 0.0

	for e, emp := range ctx.Problem.Employees {
		for _, run := range ctx.Matrix.Runs(e) {
			if !run.Work || run.Len <= c.maxDays {
				continue
			}
			penalty := float64(run.Len-c.maxDays) * c.perDay
			total += penalty
			violations = append(violations, c.CreateViolation(emp.ID, run.Start,
				fmt.Sprintf("员工 %s 从 %d 日起连续工作 %d 天，超过限制 %d 天", emp.Name, run.Start+1, run.Len, c.maxDays),
				penalty))
		}
	}
	return total, violations
}

// RestAfterConsecutiveWorkConstraint 连续出勤达到阈值后次日应休息
type RestAfterConsecutiveWorkConstraint struct {
	BaseConstraint
	threshold int
	penalty   float64
}

var restAfterConsecutiveWorkTemplate = constraint.Template{
	ID:            "rest_after_consecutive_work",
	Name:          "连勤后休息",
	Description:   "连续出勤达到指定天数后次日仍出勤则计罚",
	Scope:         constraint.ScopeEmployee,
	Category:      constraint.CategorySoft,
	DefaultWeight: 1,
	Params: []constraint.ParamDef{
		{Name: "consecutive_threshold", Type: constraint.ParamInt, Default: 5, Min: constraint.Bound(1), Max: constraint.Bound(31), Description: "连续出勤天数阈值"},
		{Name: "penalty_weight", Type: constraint.ParamFloat, Default: 8.0, Min: constraint.Bound(0), Description: "每次违反的惩罚"},
	},
	New: func(s *constraint.Spec, _ *constraint.Problem) constraint.Constraint {
		return &RestAfterConsecutiveWorkConstraint{
			BaseConstraint: NewBaseConstraint(s),
			threshold:      s.Params.Int("consecutive_threshold"),
			penalty:        s.Params.Float("penalty_weight"),
		}
	},
}

// Evaluate 评估整个排班
func (c *RestAfterConsecutiveWorkConstraint) Evaluate(ctx *constraint.Context) (float64, []model.Violation) {
	var violations []model.Violation
	total := 0.0
	days := ctx.Problem.Days()

	for e, emp := range ctx.Problem.Employees {
		consecutive := 0
		for d := 0; d < days; d++ {
			if ctx.Matrix.IsWork(e, d) {
				consecutive++
			} else {
				consecutive = 0
			}
			if consecutive == c.threshold && d+1 < days && ctx.Matrix.IsWork(e, d+1) {
				total += c.penalty
				violations = append(violations, c.CreateViolation(emp.ID, d+1,
					fmt.Sprintf("员工 %s 连续工作 %d 天后 %d 日未休息", emp.Name, c.threshold, d+2),
					c.penalty))
			}
		}
	}
	return total, violations
}

// MinDaysOffPerWeekConstraint 任意连续 7 天内的最少休息天数
type MinDaysOffPerWeekConstraint struct {
	BaseConstraint
	minOff  int
	penalty float64
}

var minDaysOffPerWeekTemplate = constraint.Template{
	ID:            "min_days_off_per_week",
	Name:          "每周最少休息",
	Description:   "7 天滑动窗口内休息天数不足时按缺少天数计罚",
	Scope:         constraint.ScopeEmployee,
	Category:      constraint.CategorySoft,
	DefaultWeight: 1,
	Params: []constraint.ParamDef{
		{Name: "min_off", Type: constraint.ParamInt, Default: 1, Min: constraint.Bound(0), Max: constraint.Bound(7), Description: "每 7 天最少休息天数"},
		{Name: "penalty_per_missing", Type: constraint.ParamFloat, Default: 8.0, Min: constraint.Bound(0), Description: "每缺少一天的惩罚"},
	},
	New: func(s *constraint.Spec, _ *constraint.Problem) constraint.Constraint {
		return &MinDaysOffPerWeekConstraint{
			BaseConstraint: NewBaseConstraint(s),
			minOff:         s.Params.Int("min_off"),
			penalty:        s.Params.Float("penalty_per_missing"),
		}
	},
}

// Evaluate 评估整个排班
func (c *MinDaysOffPerWeekConstraint) Evaluate(ctx *constraint.Context) (float64, []model.Violation) {
	const window = 7
	var violations []model.Violation
	total := 0.0
	days := ctx.Problem.Days()
	if days < window {
		return 0, nil
	}

	for e, emp := range ctx.Problem.Employees {
		offs := 0
		for d := 0; d < window; d++ {
			if !ctx.Matrix.IsWork(e, d) {
				offs++
			}
		}
		for start := 0; ; start++ {
			if offs < c.minOff {
				penalty := float64(c.minOff-offs) * c.penalty
				total += penalty
				violations = append(violations, c.CreateViolation(emp.ID, start,
					fmt.Sprintf("员工 %s 在 %d-%d 日仅休息 %d 天，少于 %d 天", emp.Name, start+1, start+window, offs, c.minOff),
					penalty))
			}
			if start+window >= days {
				break
			}
			if !ctx.Matrix.IsWork(e, start) {
				offs--
			}
			if !ctx.Matrix.IsWork(e, start+window) {
				offs++
			}
		}
	}
	return total, violations
}

// WeekendRestConstraint 月内最少周末休息天数
type WeekendRestConstraint struct {
	BaseConstraint
	minOffs int
	penalty float64
}

var weekendRestTemplate = constraint.Template{
	ID:            "weekend_rest",
	Name:          "周末休息保障",
	Description:   "周六日休息天数不足时按缺少天数计罚",
	Scope:         constraint.ScopeEmployee,
	Category:      constraint.CategorySoft,
	DefaultWeight: 1,
	Params: []constraint.ParamDef{
		{Name: "min_weekend_offs", Type: constraint.ParamInt, Default: 2, Min: constraint.Bound(0), Max: constraint.Bound(10), Description: "每月最少周末休息天数"},
		{Name: "penalty_per_missing", Type: constraint.ParamFloat, Default: 5.0, Min: constraint.Bound(0), Description: "每缺少一天的惩罚"},
	},
	New: func(s *constraint.Spec, _ *constraint.Problem) constraint.Constraint {
		return &WeekendRestConstraint{
			BaseConstraint: NewBaseConstraint(s),
			minOffs:        s.Params.Int("min_weekend_offs"),
			penalty:        s.Params.Float("penalty_per_missing"),
		}
	},
}

// Evaluate 评估整个排班
func (c *WeekendRestConstraint) Evaluate(ctx *constraint.Context) (float64, []model.Violation) {
	weekends := ctx.Problem.Calendar.WeekendIndexes()
	if len(weekends) == 0 {
		return 0, nil
	}
	var violations []model.Violation
	total := 0.0

	for e, emp := range ctx.Problem.Employees {
		offs := 0
		for _, d := range weekends {
			if !ctx.Matrix.IsWork(e, d) {
				offs++
			}
		}
		if offs < c.minOffs {
			penalty := float64(c.minOffs-offs) * c.penalty
			total += penalty
			violations = append(violations, c.CreateViolation(emp.ID, -1,
				fmt.Sprintf("员工 %s 周末仅休息 %d 天，少于 %d 天", emp.Name, offs, c.minOffs),
				penalty))
		}
	}
	return total, violations
}

// HolidayCountConstraint 休息天数与合同约定一致
type HolidayCountConstraint struct {
	BaseConstraint
	penalty float64
}

var holidayCountTemplate = constraint.Template{
	ID:            "holiday_count",
	Name:          "合同休息天数",
	Description:   "每位员工的休息天数（含希望休与不可出勤）偏离合同休息天数时计罚",
	Scope:         constraint.ScopeEmployee,
	Category:      constraint.CategorySoft,
	DefaultWeight: 1,
	Params: []constraint.ParamDef{
		{Name: "penalty_per_diff", Type: constraint.ParamFloat, Default: 10.0, Min: constraint.Bound(0), Description: "每差一天的惩罚"},
	},
	New: func(s *constraint.Spec, _ *constraint.Problem) constraint.Constraint {
		return &HolidayCountConstraint{BaseConstraint: NewBaseConstraint(s), penalty: s.Params.Float("penalty_per_diff")}
	},
}

// Evaluate 评估整个排班；未设置合同休息天数的员工不参与
func (c *HolidayCountConstraint) Evaluate(ctx *constraint.Context) (float64, []model.Violation) {
	var violations []model.Violation
	total := 0.0

	for e, emp := range ctx.Problem.Employees {
		if emp.RequiredHolidays <= 0 {
			continue
		}
		diff := ctx.Matrix.OffCount(e) - emp.RequiredHolidays
		if diff == 0 {
			continue
		}
		if diff < 0 {
			diff = -diff
		}
		penalty := float64(diff) * c.penalty
		total += penalty
		violations = append(violations, c.CreateViolation(emp.ID, -1,
			fmt.Sprintf("员工 %s 休息 %d 天，合同约定 %d 天", emp.Name, ctx.Matrix.OffCount(e), emp.RequiredHolidays),
			penalty))
	}
	return total, violations
}

// VacationDaysLimitConstraint 希望休天数不超过假期余额
type VacationDaysLimitConstraint struct {
	BaseConstraint
	penalty float64
}

var vacationDaysLimitTemplate = constraint.Template{
	ID:            "vacation_days_limit",
	Name:          "假期余额上限",
	Description:   "希望休天数超过可用假期余额时按超出天数计罚",
	Scope:         constraint.ScopeEmployee,
	Category:      constraint.CategorySoft,
	DefaultWeight: 1,
	Params: []constraint.ParamDef{
		{Name: "penalty_per_excess", Type: constraint.ParamFloat, Default: 20.0, Min: constraint.Bound(0), Description: "每超出一天的惩罚"},
	},
	New: func(s *constraint.Spec, _ *constraint.Problem) constraint.Constraint {
		return &VacationDaysLimitConstraint{BaseConstraint: NewBaseConstraint(s), penalty: s.Params.Float("penalty_per_excess")}
	},
}

// Evaluate 评估整个排班；假期余额为 0 的员工不参与
func (c *VacationDaysLimitConstraint) Evaluate(ctx *constraint.Context) (float64, []model.Violation) {
	var violations []model.Violation
	total := 0.0

	for e, emp := range ctx.Problem.Employees {
		if emp.VacationDays <= 0 {
			continue
		}
		wishes := ctx.Matrix.CountCode(e, model.CellWishOff)
		if wishes <= emp.VacationDays {
			continue
		}
		penalty := float64(wishes-emp.VacationDays) * c.penalty
		total += penalty
		violations = append(violations, c.CreateViolation(emp.ID, -1,
			fmt.Sprintf("员工 %s 希望休 %d 天，超过假期余额 %d 天", emp.Name, wishes, emp.VacationDays),
			penalty))
	}
	return total, violations
}

// UnavailableDayConstraint 固定单元格必须保持输入编码（硬约束）
type UnavailableDayConstraint struct {
	BaseConstraint
	penalty float64
}

var unavailableDayTemplate = constraint.Template{
	ID:            "unavailable_day_hard",
	Name:          "不可出勤日保护",
	Description:   "不可出勤或希望休的单元格被改动时给予极高惩罚",
	Scope:         constraint.ScopeEmployee,
	Category:      constraint.CategoryHard,
	DefaultWeight: 1,
	Params: []constraint.ParamDef{
		{Name: "penalty_per_violation", Type: constraint.ParamFloat, Default: 1000.0, Min: constraint.Bound(0), Description: "每个被改动单元格的惩罚"},
	},
	New: func(s *constraint.Spec, _ *constraint.Problem) constraint.Constraint {
		return &UnavailableDayConstraint{BaseConstraint: NewBaseConstraint(s), penalty: s.Params.Float("penalty_per_violation")}
	},
}

// Evaluate 评估整个排班
func (c *UnavailableDayConstraint) Evaluate(ctx *constraint.Context) (float64, []model.Violation) {
	var violations []model.Violation
	total := 0.0
	base := ctx.Problem.Base

	for e, emp := range ctx.Problem.Employees {
		for d := 0; d < base.Cols(); d++ {
			want := base.CodeAt(e, d)
			if !want.IsFixed() || ctx.Matrix.CodeAt(e, d) == want {
				continue
			}
			total += c.penalty
			violations = append(violations, c.CreateViolation(emp.ID, d,
				fmt.Sprintf("员工 %s 在 %d 日的 %s 被改为 %s", emp.Name, d+1, want, ctx.Matrix.CodeAt(e, d)),
				c.penalty))
		}
	}
	return total, violations
}

// MaxPenalty 每人至多一段超限连勤
func (c *MaxConsecutiveWorkConstraint) MaxPenalty(p *constraint.Problem) float64 {
	return float64(len(p.Employees)*atLeastZero(p.Days()-c.maxDays)) * c.perDay
}

// MaxPenalty 实现 constraint.Constraint
func (c *RestAfterConsecutiveWorkConstraint) MaxPenalty(p *constraint.Problem) float64 {
	return float64(len(p.Employees)*p.Days()) * c.penalty
}

// MaxPenalty 每个 7 天窗口至多缺 min_off 天
func (c *MinDaysOffPerWeekConstraint) MaxPenalty(p *constraint.Problem) float64 {
	windows := atLeastZero(p.Days() - 6)
	return float64(len(p.Employees)*windows*c.minOff) * c.penalty
}

// MaxPenalty 实现 constraint.Constraint
func (c *WeekendRestConstraint) MaxPenalty(p *constraint.Problem) float64 {
	return float64(len(p.Employees)*c.minOffs) * c.penalty
}

// MaxPenalty 休息天数在 0..days 之间
func (c *HolidayCountConstraint) MaxPenalty(p *constraint.Problem) float64 {
	total := 0
	for _, emp := range p.Employees {
		if emp.RequiredHolidays <= 0 {
			continue
		}
		total += max(emp.RequiredHolidays, p.Days()-emp.RequiredHolidays)
	}
	return float64(total) * c.penalty
}

// MaxPenalty 实现 constraint.Constraint
func (c *VacationDaysLimitConstraint) MaxPenalty(p *constraint.Problem) float64 {
	total := 0
	for _, emp := range p.Employees {
		if emp.VacationDays <= 0 {
			continue
		}
		total += atLeastZero(p.Days() - emp.VacationDays)
	}
	return float64(total) * c.penalty
}

// MaxPenalty 按输入中固定单元格数计算
func (c *UnavailableDayConstraint) MaxPenalty(p *constraint.Problem) float64 {
	fixed := 0
	for e := range p.Employees {
		for d := 0; d < p.Base.Cols(); d++ {
			if p.Base.CodeAt(e, d).IsFixed() {
				fixed++
			}
		}
	}
	return float64(fixed) * c.penalty
}
