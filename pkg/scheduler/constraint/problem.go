package constraint

import (
	"fmt"
	"sort"

	"github.com/paiban/gashift/pkg/errors"
	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/matrix"
)

// Problem 一次运行的只读静态数据
type Problem struct {
	Employees []model.Employee
	Calendar  model.Calendar
	// Staffing 按 0 起始日下标存放
	Staffing []model.DayStaffing
	// Base 仅含固定单元格的初始矩阵
	Base *matrix.Matrix

	index    map[string]int
	sections map[string]bool
}

// NewProblem 校验输入并构建问题；所有引用错误一次性汇总返回
func NewProblem(in *model.ShiftInput) (*Problem, error) {
	ve := &errors.ValidationErrors{}

	employees := make([]model.Employee, len(in.Employees))
	copy(employees, in.Employees)
	model.EnsureIDs(employees)

	p := &Problem{
		Employees: employees,
		index:     make(map[string]int, len(employees)),
		sections:  make(map[string]bool),
	}
	for i, e := range employees {
		if _, dup := p.index[e.ID]; dup {
			ve.Addf(fmt.Sprintf("employees[%d].id", i), "员工 ID %q 重复", e.ID)
			continue
		}
		p.index[e.ID] = i
		if e.Section != "" {
			p.sections[e.Section] = true
		}
	}

	// 日历无效时跳过日期范围检查，其余引用错误照常收集
	cal, err := in.Calendar.Build()
	calOK := err == nil
	if !calOK {
		ve.Add("calendar", err.Error())
	}
	p.Calendar = cal
	days := cal.Len()
	outOfRange := func(d int) bool { return calOK && !cal.Contains(d) }

	for i, e := range employees {
		for _, d := range e.PreferredDaysOff {
			if outOfRange(d) {
				ve.Addf(fmt.Sprintf("employees[%d].preferred_days_off", i), "日期 %d 超出 1..%d", d, days)
			}
		}
		for _, d := range e.UnavailableDays {
			if outOfRange(d) {
				ve.Addf(fmt.Sprintf("employees[%d].unavailable_days", i), "日期 %d 超出 1..%d", d, days)
			}
		}
	}

	b := matrix.NewBuilder(len(employees), days)
	for i, fc := range in.FixedCells {
		field := fmt.Sprintf("fixed_cells[%d]", i)
		if _, ok := p.index[fc.EmployeeID]; !ok {
			ve.Addf(field+".employee_id", "员工 %q 不存在", fc.EmployeeID)
		}
		if outOfRange(fc.Day) {
			ve.Addf(field+".day", "日期 %d 超出 1..%d", fc.Day, days)
		}
		if !fc.Code.IsFixed() {
			ve.Addf(field+".code", "编码 %d 不是固定编码（只允许 2 或 3）", fc.Code)
		}
	}
	if !ve.HasErrors() {
		withIDs := *in
		withIDs.Employees = employees
		for _, fc := range withIDs.AllFixedCells() {
			if err := b.Fix(p.index[fc.EmployeeID], fc.Day-1, fc.Code); err != nil {
				ve.Add("fixed_cells", err.Error())
			}
		}
	}
	p.Base = b.Build()

	p.Staffing = make([]model.DayStaffing, days)
	for d := range p.Staffing {
		p.Staffing[d] = model.DayStaffing{Day: d + 1, Total: in.DefaultStaffing}
	}
	seen := make(map[int]bool, len(in.Staffing))
	for i, s := range in.Staffing {
		field := fmt.Sprintf("staffing_requirements[%d]", i)
		if outOfRange(s.Day) {
			ve.Addf(field+".day", "日期 %d 超出 1..%d", s.Day, days)
			continue
		}
		if seen[s.Day] {
			ve.Addf(field+".day", "日期 %d 重复配置", s.Day)
			continue
		}
		seen[s.Day] = true
		for _, sec := range sortedKeys(s.Sections) {
			n := s.Sections[sec]
			if !p.sections[sec] {
				ve.Addf(field+".sections."+sec, "没有员工属于分区 %q", sec)
			}
			if n < 0 {
				ve.Addf(field+".sections."+sec, "人数不能为负: %d", n)
			}
		}
		if calOK {
			p.Staffing[s.Day-1] = s
		}
	}

	if ve.HasErrors() {
		return nil, ve.ToAppError()
	}
	return p, nil
}

// Days 天数
func (p *Problem) Days() int {
	return p.Calendar.Len()
}

// EmployeeIndex 按 ID 查找行号
func (p *Problem) EmployeeIndex(id string) (int, bool) {
	i, ok := p.index[id]
	return i, ok
}

// HasSection 是否有员工属于该分区
func (p *Problem) HasSection(section string) bool {
	return p.sections[section]
}

// Required 某天（0 起始）所需总人数
func (p *Problem) Required(d int) int {
	return p.Staffing[d].Total
}

// EmployeeIDs 行顺序的员工 ID
func (p *Problem) EmployeeIDs() []string {
	ids := make([]string, len(p.Employees))
	for i, e := range p.Employees {
		ids[i] = e.ID
	}
	return ids
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
