package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/gashift/pkg/errors"
	"github.com/paiban/gashift/pkg/model"
)

func TestNewProblem(t *testing.T) {
	in := &model.ShiftInput{
		Employees: []model.Employee{
			{ID: "a", Name: "A", Section: model.SectionPrep, PreferredDaysOff: []int{2}, UnavailableDays: []int{2, 4}},
			{Name: "B"},
		},
		Calendar:        model.CalendarSpec{Year: 2024, Month: 2},
		FixedCells:      []model.FixedCell{{EmployeeID: "a", Day: 1, Code: model.CellWishOff}},
		Staffing:        []model.DayStaffing{{Day: 3, Total: 1, Sections: map[string]int{model.SectionPrep: 1}}},
		DefaultStaffing: 2,
	}
	p, err := NewProblem(in)
	require.NoError(t, err)

	assert.Equal(t, 29, p.Days())
	assert.NotEmpty(t, p.Employees[1].ID, "缺失的 ID 自动生成")
	assert.Empty(t, in.Employees[1].ID, "不修改调用方的输入")

	assert.Equal(t, model.CellWishOff, p.Base.CodeAt(0, 0))
	assert.Equal(t, model.CellUnavailable, p.Base.CodeAt(0, 1), "不可出勤优先于希望休")
	assert.Equal(t, model.CellUnavailable, p.Base.CodeAt(0, 3))
	assert.Equal(t, model.CellOpen, p.Base.CodeAt(1, 0))

	assert.Equal(t, 2, p.Required(0))
	assert.Equal(t, 1, p.Required(2))
	assert.True(t, p.HasSection(model.SectionPrep))

	i, ok := p.EmployeeIndex("a")
	assert.True(t, ok)
	assert.Equal(t, 0, i)
	assert.Equal(t, []string{"a", p.Employees[1].ID}, p.EmployeeIDs())
}

func TestNewProblem_AggregatesErrors(t *testing.T) {
	in := &model.ShiftInput{
		Employees: []model.Employee{
			{ID: "a", PreferredDaysOff: []int{0}},
			{ID: "a", UnavailableDays: []int{31}},
		},
		Calendar: model.CalendarSpec{Year: 2024, Month: 2},
		FixedCells: []model.FixedCell{
			{EmployeeID: "ghost", Day: 40, Code: model.CellAssignedOff},
		},
		Staffing: []model.DayStaffing{
			{Day: 1, Sections: map[string]int{"kitchen": -1}},
			{Day: 1},
		},
	}
	_, err := NewProblem(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeValidationFail))

	var ve *errors.ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{
		"employees[0].preferred_days_off",
		"employees[1].id",
		"employees[1].unavailable_days",
		"fixed_cells[0].code",
		"fixed_cells[0].day",
		"fixed_cells[0].employee_id",
		"staffing_requirements[0].sections.kitchen",
		"staffing_requirements[1].day",
	}, ve.FieldNames())
}

func TestNewProblem_BadCalendar(t *testing.T) {
	_, err := NewProblem(&model.ShiftInput{
		Employees: []model.Employee{{ID: "a"}},
		Calendar:  model.CalendarSpec{Year: 2024, Month: 13},
	})
	require.Error(t, err)

	var ve *errors.ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"calendar"}, ve.FieldNames())
}

func TestNewProblem_BadCalendarKeepsOtherErrors(t *testing.T) {
	_, err := NewProblem(&model.ShiftInput{
		Employees:  []model.Employee{{ID: "a"}, {ID: "a"}},
		Calendar:   model.CalendarSpec{Year: 2024, Month: 13},
		FixedCells: []model.FixedCell{{EmployeeID: "ghost", Day: 40, Code: model.CellWishOff}},
		Staffing:   []model.DayStaffing{{Day: 1, Total: 1, Sections: map[string]int{model.SectionHall: 1}}},
	})
	require.Error(t, err)

	var ve *errors.ValidationErrors
	require.True(t, errors.As(err, &ve))
	fields := ve.FieldNames()
	assert.Contains(t, fields, "calendar")
	assert.Contains(t, fields, "employees[1].id")
	assert.Contains(t, fields, "fixed_cells[0].employee_id")
	assert.Contains(t, fields, "staffing_requirements[0].sections.hall")
	assert.NotContains(t, fields, "fixed_cells[0].day", "日历无效时不检查日期范围")
}
