package builtin

import (
	"fmt"
	"strings"

	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/constraint"
)

// SectionMinWorkersConstraint 若干分区合计的每日最少出勤人数（餐饮门店常见）
type SectionMinWorkersConstraint struct {
	BaseConstraint
	sections []string
	min      int
	penalty  float64
}

var sectionMinWorkersTemplate = constraint.Template{
	ID:            "section_min_workers",
	Name:          "厨房分区最低人数",
	Description:   "属于指定分区的出勤人数合计低于下限时按缺少人数计罚",
	Scope:         constraint.ScopeFacility,
	Category:      constraint.CategorySoft,
	DefaultWeight: 1,
	Params: []constraint.ParamDef{
		{Name: "sections", Type: constraint.ParamStringList,
			Default:     []string{model.SectionPrep, model.SectionLunch, model.SectionPrepLunch},
			Description: "计入的分区"},
		{Name: "min_workers", Type: constraint.ParamInt, Default: 3, Min: constraint.Bound(0), Description: "每日最少人数"},
		{Name: "penalty_per_missing", Type: constraint.ParamFloat, Default: 50.0, Min: constraint.Bound(0), Description: "每缺一人的惩罚"},
	},
	New: func(s *constraint.Spec, _ *constraint.Problem) constraint.Constraint {
		sections := s.Params.Strings("sections")
		if len(sections) == 0 {
			s.Errorf("sections", "至少需要一个分区")
		}
		return &SectionMinWorkersConstraint{
			BaseConstraint: NewBaseConstraint(s),
			sections:       sections,
			min:            s.Params.Int("min_workers"),
			penalty:        s.Params.Float("penalty_per_missing"),
		}
	},
}

// Evaluate 评估整个排班
func (c *SectionMinWorkersConstraint) Evaluate(ctx *constraint.Context) (float64, []model.Violation) {
	var violations []model.Violation
	total := 0.0
	emps := ctx.Problem.Employees

	for d := 0; d < ctx.Problem.Days(); d++ {
		have := ctx.Matrix.WorkersWhere(d, func(e int) bool { return emps[e].InSection(c.sections...) })
		if have >= c.min {
			continue
		}
		penalty := float64(c.min-have) * c.penalty
		total += penalty
		violations = append(violations, c.CreateViolation("", d,
			fmt.Sprintf("%d 日分区 %s 合计出勤 %d 人，至少需要 %d 人", d+1, strings.Join(c.sections, "/"), have, c.min),
			penalty))
	}
	return total, violations
}

// SubstituteConstraint 替班规则：主岗员工休息时替班员工必须出勤
type SubstituteConstraint struct {
	BaseConstraint
	primary    int
	substitute int
	penalty    float64
}

var substituteTemplate = constraint.Template{
	ID:            "substitute_constraint",
	Name:          "替班规则",
	Description:   "primary_id 休息的日期 substitute_id 也休息时计罚",
	Scope:         constraint.ScopeFacility,
	Category:      constraint.CategoryHard,
	DefaultWeight: 1,
	Params: []constraint.ParamDef{
		{Name: "primary_id", Type: constraint.ParamString, Default: "", Description: "主岗员工 ID"},
		{Name: "substitute_id", Type: constraint.ParamString, Default: "", Description: "替班员工 ID"},
		{Name: "penalty_weight", Type: constraint.ParamFloat, Default: 40.0, Min: constraint.Bound(0), Description: "每次违反的惩罚"},
	},
	New: func(s *constraint.Spec, p *constraint.Problem) constraint.Constraint {
		lookup := func(param string) int {
			id := s.Params.String(param)
			if id == "" {
				s.Errorf(param, "员工 ID 不能为空")
				return -1
			}
			i, ok := p.EmployeeIndex(id)
			if !ok {
				s.Errorf(param, "员工 %q 不存在", id)
				return -1
			}
			return i
		}
		primary, substitute := lookup("primary_id"), lookup("substitute_id")
		if primary >= 0 && primary == substitute {
			s.Errorf("substitute_id", "替班员工不能与主岗员工相同")
		}
		return &SubstituteConstraint{
			BaseConstraint: NewBaseConstraint(s),
			primary:        primary,
			substitute:     substitute,
			penalty:        s.Params.Float("penalty_weight"),
		}
	},
}

// Evaluate 评估整个排班
func (c *SubstituteConstraint) Evaluate(ctx *constraint.Context) (float64, []model.Violation) {
	var violations []model.Violation
	total := 0.0
	primary := ctx.Problem.Employees[c.primary]
	substitute := ctx.Problem.Employees[c.substitute]

	for d := 0; d < ctx.Problem.Days(); d++ {
		if ctx.Matrix.IsWork(c.primary, d) || ctx.Matrix.IsWork(c.substitute, d) {
			continue
		}
		total += c.penalty
		violations = append(violations, c.CreateViolation(substitute.ID, d,
			fmt.Sprintf("%d 日 %s 休息，替班 %s 也休息", d+1, primary.Name, substitute.Name),
			c.penalty))
	}
	return total, violations
}

// MaxPenalty 实现 constraint.Constraint
func (c *SectionMinWorkersConstraint) MaxPenalty(p *constraint.Problem) float64 {
	return float64(p.Days()*atLeastZero(c.min)) * c.penalty
}

// MaxPenalty 实现 constraint.Constraint
func (c *SubstituteConstraint) MaxPenalty(p *constraint.Problem) float64 {
	return float64(p.Days()) * c.penalty
}
