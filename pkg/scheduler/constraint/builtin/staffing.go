package builtin

import (
	"fmt"
	"sort"

	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/constraint"
)

// RequiredWorkersMatchConstraint 每日出勤人数与需求人数一致
type RequiredWorkersMatchConstraint struct {
	BaseConstraint
	penalty float64
}

var requiredWorkersMatchTemplate = constraint.Template{
	ID:            "required_workers_match",
	Name:          "出勤人数匹配",
	Description:   "每日出勤人数与需求人数之差的绝对值计罚",
	Scope:         constraint.ScopeDay,
	Category:      constraint.CategorySoft,
	DefaultWeight: 1,
	Params: []constraint.ParamDef{
		{Name: "penalty_per_diff", Type: constraint.ParamFloat, Default: 4.0, Min: constraint.Bound(0), Description: "每差一人的惩罚"},
	},
	New: func(s *constraint.Spec, _ *constraint.Problem) constraint.Constraint {
		return &RequiredWorkersMatchConstraint{BaseConstraint: NewBaseConstraint(s), penalty: s.Params.Float("penalty_per_diff")}
	},
}

// Evaluate 评估整个排班
func (c *RequiredWorkersMatchConstraint) Evaluate(ctx *constraint.Context) (float64, []model.Violation) {
	var violations []model.Violation
	total := 0.0

	for d := 0; d < ctx.Problem.Days(); d++ {
		workers := ctx.Matrix.WorkersOn(d)
		required := ctx.Problem.Required(d)
		diff := workers - required
		if diff < 0 {
			diff = -diff
		}
		if diff == 0 {
			continue
		}
		penalty := float64(diff) * c.penalty
		total += penalty
		violations = append(violations, c.CreateViolation("", d,
			fmt.Sprintf("%d 日出勤 %d 人，需求 %d 人", d+1, workers, required),
			penalty))
	}
	return total, violations
}

// MinStaffingConstraint 各分区每日最少出勤人数
type MinStaffingConstraint struct {
	BaseConstraint
	penalty float64
}

var minStaffingTemplate = constraint.Template{
	ID:            "min_staffing",
	Name:          "分区最低配置",
	Description:   "按人员需求中各分区的最少人数检查每日出勤，不足部分计罚",
	Scope:         constraint.ScopeDay,
	Category:      constraint.CategorySoft,
	DefaultWeight: 1,
	Params: []constraint.ParamDef{
		{Name: "penalty_per_missing", Type: constraint.ParamFloat, Default: 10.0, Min: constraint.Bound(0), Description: "每缺一人的惩罚"},
	},
	New: func(s *constraint.Spec, _ *constraint.Problem) constraint.Constraint {
		return &MinStaffingConstraint{BaseConstraint: NewBaseConstraint(s), penalty: s.Params.Float("penalty_per_missing")}
	},
}

// Evaluate 评估整个排班
func (c *MinStaffingConstraint) Evaluate(ctx *constraint.Context) (float64, []model.Violation) {
	var violations []model.Violation
	total := 0.0
	emps := ctx.Problem.Employees

	for d, req := range ctx.Problem.Staffing {
		if len(req.Sections) == 0 {
			continue
		}
		sections := make([]string, 0, len(req.Sections))
		for sec := range req.Sections {
			sections = append(sections, sec)
		}
		sort.Strings(sections)

		for _, sec := range sections {
			min := req.Sections[sec]
			have := ctx.Matrix.WorkersWhere(d, func(e int) bool { return emps[e].Section == sec })
			if have >= min {
				continue
			}
			penalty := float64(min-have) * c.penalty
			total += penalty
			violations = append(violations, c.CreateViolation("", d,
				fmt.Sprintf("%d 日分区 %s 出勤 %d 人，至少需要 %d 人", d+1, sec, have, min),
				penalty))
		}
	}
	return total, violations
}

// WorkersOnDateConstraint 指定日期的出勤人数上下限
type WorkersOnDateConstraint struct {
	BaseConstraint
	days    []int // 0 起始
	limit   int
	max     bool
	penalty float64
}

func workersOnDateFactory(max bool) constraint.Factory {
	limitParam, penaltyParam := "min_workers", "penalty_per_missing"
	if max {
		limitParam, penaltyParam = "max_workers", "penalty_per_excess"
	}
	return func(s *constraint.Spec, p *constraint.Problem) constraint.Constraint {
		days := make([]int, 0, len(s.Params.Ints("target_days")))
		for _, d := range s.Params.Ints("target_days") {
			if !p.Calendar.Contains(d) {
				s.Errorf("target_days", "日期 %d 超出 1..%d", d, p.Days())
				continue
			}
			days = append(days, d-1)
		}
		return &WorkersOnDateConstraint{
			BaseConstraint: NewBaseConstraint(s),
			days:           days,
			limit:          s.Params.Int(limitParam),
			max:            max,
			penalty:        s.Params.Float(penaltyParam),
		}
	}
}

var minWorkersOnDateTemplate = constraint.Template{
	ID:            "min_workers_on_date",
	Name:          "指定日最少出勤",
	Description:   "指定日期出勤人数低于下限时按缺少人数计罚",
	Scope:         constraint.ScopeDay,
	Category:      constraint.CategorySoft,
	DefaultWeight: 1,
	Params: []constraint.ParamDef{
		{Name: "target_days", Type: constraint.ParamIntList, Default: []int{}, Description: "1 起始的日期列表"},
		{Name: "min_workers", Type: constraint.ParamInt, Default: 5, Min: constraint.Bound(0), Description: "最少出勤人数"},
		{Name: "penalty_per_missing", Type: constraint.ParamFloat, Default: 10.0, Min: constraint.Bound(0), Description: "每缺一人的惩罚"},
	},
	New: workersOnDateFactory(false),
}

var maxWorkersOnDateTemplate = constraint.Template{
	ID:            "max_workers_on_date",
	Name:          "指定日最多出勤",
	Description:   "指定日期出勤人数超过上限时按超出人数计罚",
	Scope:         constraint.ScopeDay,
	Category:      constraint.CategorySoft,
	DefaultWeight: 1,
	Params: []constraint.ParamDef{
		{Name: "target_days", Type: constraint.ParamIntList, Default: []int{}, Description: "1 起始的日期列表"},
		{Name: "max_workers", Type: constraint.ParamInt, Default: 8, Min: constraint.Bound(0), Description: "最多出勤人数"},
		{Name: "penalty_per_excess", Type: constraint.ParamFloat, Default: 10.0, Min: constraint.Bound(0), Description: "每多一人的惩罚"},
	},
	New: workersOnDateFactory(true),
}

// Evaluate 评估整个排班
func (c *WorkersOnDateConstraint) Evaluate(ctx *constraint.Context) (float64, []model.Violation) {
	var violations []model.Violation
	total := 0.0

	for _, d := range c.days {
		workers := ctx.Matrix.WorkersOn(d)
		var gap int
		var msg string
		if c.max {
			gap = workers - c.limit
			msg = fmt.Sprintf("%d 日出勤 %d 人，超过上限 %d 人", d+1, workers, c.limit)
		} else {
			gap = c.limit - workers
			msg = fmt.Sprintf("%d 日出勤 %d 人，低于下限 %d 人", d+1, workers, c.limit)
		}
		if gap <= 0 {
			continue
		}
		penalty := float64(gap) * c.penalty
		total += penalty
		violations = append(violations, c.CreateViolation("", d, msg, penalty))
	}
	return total, violations
}

// MinSkilledWorkersConstraint 每日具备某技能的最少出勤人数
type MinSkilledWorkersConstraint struct {
	BaseConstraint
	skill    string
	minCount int
	penalty  float64
}

var minSkilledWorkersTemplate = constraint.Template{
	ID:            "min_skilled_workers",
	Name:          "技能人员配置",
	Description:   "每日具备指定技能的出勤人数不足时按缺少人数计罚",
	Scope:         constraint.ScopeDay,
	Category:      constraint.CategorySoft,
	DefaultWeight: 1,
	Params: []constraint.ParamDef{
		{Name: "skill_name", Type: constraint.ParamString, Default: "", Description: "技能名称"},
		{Name: "min_count", Type: constraint.ParamInt, Default: 1, Min: constraint.Bound(0), Description: "每日最少人数"},
		{Name: "penalty_per_missing", Type: constraint.ParamFloat, Default: 15.0, Min: constraint.Bound(0), Description: "每缺一人的惩罚"},
	},
	New: func(s *constraint.Spec, _ *constraint.Problem) constraint.Constraint {
		skill := s.Params.String("skill_name")
		if skill == "" {
			s.Errorf("skill_name", "技能名称不能为空")
		}
		return &MinSkilledWorkersConstraint{
			BaseConstraint: NewBaseConstraint(s),
			skill:          skill,
			minCount:       s.Params.Int("min_count"),
			penalty:        s.Params.Float("penalty_per_missing"),
		}
	},
}

// Evaluate 评估整个排班
func (c *MinSkilledWorkersConstraint) Evaluate(ctx *constraint.Context) (float64, []model.Violation) {
	var violations []model.Violation
	total := 0.0
	emps := ctx.Problem.Employees

	for d := 0; d < ctx.Problem.Days(); d++ {
		have := ctx.Matrix.WorkersWhere(d, func(e int) bool { return emps[e].HasSkill(c.skill) })
		if have >= c.minCount {
			continue
		}
		penalty := float64(c.minCount-have) * c.penalty
		total += penalty
		violations = append(violations, c.CreateViolation("", d,
			fmt.Sprintf("%d 日具备技能 %s 的出勤 %d 人，至少需要 %d 人", d+1, c.skill, have, c.minCount),
			penalty))
	}
	return total, violations
}

// ClosedDayConstraint 定休日不应有人出勤
type ClosedDayConstraint struct {
	BaseConstraint
	closed  map[int]bool
	penalty float64
}

var closedDayTemplate = constraint.Template{
	ID:            "closed_day",
	Name:          "定休日",
	Description:   "定休的星期几仍有人出勤时按人数计罚，特殊工作日除外",
	Scope:         constraint.ScopeDay,
	Category:      constraint.CategorySoft,
	DefaultWeight: 1,
	Params: []constraint.ParamDef{
		{Name: "closed_weekdays", Type: constraint.ParamIntList, Default: []int{}, Description: "定休的星期几，0=周日 … 6=周六"},
		{Name: "penalty_per_worker", Type: constraint.ParamFloat, Default: 20.0, Min: constraint.Bound(0), Description: "每名出勤人员的惩罚"},
	},
	New: func(s *constraint.Spec, _ *constraint.Problem) constraint.Constraint {
		closed := make(map[int]bool)
		for _, wd := range s.Params.Ints("closed_weekdays") {
			if wd < 0 || wd > 6 {
				s.Errorf("closed_weekdays", "星期 %d 超出 0..6", wd)
				continue
			}
			closed[wd] = true
		}
		return &ClosedDayConstraint{
			BaseConstraint: NewBaseConstraint(s),
			closed:         closed,
			penalty:        s.Params.Float("penalty_per_worker"),
		}
	},
}

// Evaluate 评估整个排班
func (c *ClosedDayConstraint) Evaluate(ctx *constraint.Context) (float64, []model.Violation) {
	if len(c.closed) == 0 {
		return 0, nil
	}
	var violations []model.Violation
	total := 0.0

	for d, day := range ctx.Problem.Calendar.Days {
		if day.SpecialWorkday || !c.closed[int(day.Weekday)] {
			continue
		}
		workers := ctx.Matrix.WorkersOn(d)
		if workers == 0 {
			continue
		}
		penalty := float64(workers) * c.penalty
		total += penalty
		violations = append(violations, c.CreateViolation("", d,
			fmt.Sprintf("%d 日为定休日，仍有 %d 人出勤", d+1, workers),
			penalty))
	}
	return total, violations
}

// MaxPenalty 每日偏差至多 max(需求, 人数-需求)
func (c *RequiredWorkersMatchConstraint) MaxPenalty(p *constraint.Problem) float64 {
	n := len(p.Employees)
	total := 0
	for d := 0; d < p.Days(); d++ {
		required := p.Required(d)
		total += max(required, n-required)
	}
	return float64(total) * c.penalty
}

// MaxPenalty 实现 constraint.Constraint
func (c *MinStaffingConstraint) MaxPenalty(p *constraint.Problem) float64 {
	total := 0
	for _, req := range p.Staffing {
		for _, n := range req.Sections {
			total += atLeastZero(n)
		}
	}
	return float64(total) * c.penalty
}

// MaxPenalty 实现 constraint.Constraint
func (c *WorkersOnDateConstraint) MaxPenalty(p *constraint.Problem) float64 {
	gap := c.limit
	if c.max {
		gap = len(p.Employees) - c.limit
	}
	return float64(len(c.days)*atLeastZero(gap)) * c.penalty
}

// MaxPenalty 实现 constraint.Constraint
func (c *MinSkilledWorkersConstraint) MaxPenalty(p *constraint.Problem) float64 {
	return float64(p.Days()*atLeastZero(c.minCount)) * c.penalty
}

// MaxPenalty 实现 constraint.Constraint
func (c *ClosedDayConstraint) MaxPenalty(p *constraint.Problem) float64 {
	if len(c.closed) == 0 {
		return 0
	}
	return float64(p.Days()*len(p.Employees)) * c.penalty
}
