package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/gashift/pkg/errors"
	"github.com/paiban/gashift/pkg/model"
)

func TestRequiredWorkersMatch(t *testing.T) {
	p := newTestProblemFrom(t, &model.ShiftInput{
		Employees:       []model.Employee{emp("a"), emp("b")},
		Calendar:        model.CalendarSpec{Year: 2024, Month: 1, Days: 3},
		DefaultStaffing: 2,
	})
	c := compileOne(t, p, "required_workers_match", nil)

	penalty, vs := evaluate(t, c, p, [][]int{row("WWO"), row("WOO")})
	assert.Equal(t, 12.0, penalty)
	require.Len(t, vs, 2)
	assert.Equal(t, 2, vs[0].Day)
	assert.Empty(t, vs[0].EmployeeID)
}

func TestMinStaffing(t *testing.T) {
	a, b, h := emp("a"), emp("b"), emp("h")
	a.Section, b.Section, h.Section = model.SectionPrep, model.SectionPrep, model.SectionHall
	p := newTestProblemFrom(t, &model.ShiftInput{
		Employees: []model.Employee{a, b, h},
		Calendar:  model.CalendarSpec{Year: 2024, Month: 1, Days: 2},
		Staffing: []model.DayStaffing{
			{Day: 2, Total: 2, Sections: map[string]int{model.SectionPrep: 2, model.SectionHall: 1}},
		},
	})
	c := compileOne(t, p, "min_staffing", nil)

	penalty, vs := evaluate(t, c, p, [][]int{row("WW"), row("WO"), row("WW")})
	assert.Equal(t, 10.0, penalty)
	require.Len(t, vs, 1)
	assert.Equal(t, 2, vs[0].Day)
}

func TestWorkersOnDate(t *testing.T) {
	p := newTestProblem(t, 3, emp("a"), emp("b"))

	c := compileOne(t, p, "min_workers_on_date", map[string]interface{}{"target_days": []interface{}{2}, "min_workers": 2})
	penalty, vs := evaluate(t, c, p, [][]int{row("WWW"), row("OOO")})
	assert.Equal(t, 10.0, penalty)
	require.Len(t, vs, 1)
	assert.Equal(t, 2, vs[0].Day)

	c = compileOne(t, p, "max_workers_on_date", map[string]interface{}{"target_days": "1, 3", "max_workers": 1})
	penalty, vs = evaluate(t, c, p, [][]int{row("WWW"), row("WOO")})
	assert.Equal(t, 10.0, penalty)
	assert.Len(t, vs, 1)
}

func TestWorkersOnDate_DayOutOfRange(t *testing.T) {
	p := newTestProblem(t, 3, emp("a"))
	_, err := NewRegistry().Compile([]model.ConstraintConfig{
		{TemplateID: "min_workers_on_date", Params: map[string]interface{}{"target_days": []int{9}}},
	}, p)
	require.Error(t, err)

	var ve *errors.ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"constraints[0].params.target_days"}, ve.FieldNames())
}

func TestMinSkilledWorkers(t *testing.T) {
	a := emp("a")
	a.Skills = []string{"cook"}
	p := newTestProblem(t, 2, a, emp("b"))

	c := compileOne(t, p, "min_skilled_workers", map[string]interface{}{"skill_name": "cook"})
	penalty, vs := evaluate(t, c, p, [][]int{row("WO"), row("WW")})
	assert.Equal(t, 15.0, penalty)
	require.Len(t, vs, 1)
	assert.Equal(t, 2, vs[0].Day)

	_, err := NewRegistry().Compile([]model.ConstraintConfig{{TemplateID: "min_skilled_workers"}}, p)
	assert.Error(t, err, "技能名称必填")
}

func TestClosedDay(t *testing.T) {
	p := newTestProblem(t, 3, emp("a"), emp("b"))
	c := compileOne(t, p, "closed_day", map[string]interface{}{"closed_weekdays": []int{1}})

	penalty, vs := evaluate(t, c, p, [][]int{row("WWW"), row("WOW")})
	assert.Equal(t, 40.0, penalty)
	require.Len(t, vs, 1)
	assert.Equal(t, 1, vs[0].Day)

	special := newTestProblemFrom(t, &model.ShiftInput{
		Employees: []model.Employee{emp("a")},
		Calendar:  model.CalendarSpec{Year: 2024, Month: 1, Days: 3, SpecialWorkdays: []int{1}},
	})
	c = compileOne(t, special, "closed_day", map[string]interface{}{"closed_weekdays": []int{1}})
	penalty, _ = evaluate(t, c, special, [][]int{row("WWW")})
	assert.Zero(t, penalty, "特殊工作日不按定休处理")

	_, err := NewRegistry().Compile([]model.ConstraintConfig{
		{TemplateID: "closed_day", Params: map[string]interface{}{"closed_weekdays": []int{7}}},
	}, p)
	assert.Error(t, err)
}
