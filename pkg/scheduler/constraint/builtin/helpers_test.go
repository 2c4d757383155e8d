package builtin

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paiban/gashift/pkg/errors"
	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/constraint"
	"github.com/paiban/gashift/pkg/scheduler/matrix"
)

// 2024 年 1 月 1 日是周一
func newTestProblem(t *testing.T, days int, employees ...model.Employee) *constraint.Problem {
	t.Helper()
	return newTestProblemFrom(t, &model.ShiftInput{
		Employees: employees,
		Calendar:  model.CalendarSpec{Year: 2024, Month: 1, Days: days},
	})
}

func newTestProblemFrom(t *testing.T, in *model.ShiftInput) *constraint.Problem {
	t.Helper()
	p, err := constraint.NewProblem(in)
	require.NoError(t, err)
	return p
}

func emp(id string) model.Employee {
	return model.Employee{ID: id, Name: id}
}

func compileOne(t *testing.T, p *constraint.Problem, id string, params map[string]interface{}) constraint.Constraint {
	t.Helper()
	m, err := NewRegistry().Compile([]model.ConstraintConfig{{TemplateID: id, Params: params}}, p)
	require.NoError(t, err)
	require.Equal(t, 1, m.Count())
	return m.GetAll()[0]
}

func evaluate(t *testing.T, c constraint.Constraint, p *constraint.Problem, codes [][]int) (float64, []model.Violation) {
	t.Helper()
	return c.Evaluate(mustContext(t, p, codes))
}

// 用 W/O 字符串描述一行：W=出勤，O=休息
func row(s string) []int {
	out := make([]int, len(s))
	for i, ch := range s {
		if ch == 'O' {
			out[i] = int(model.CellAssignedOff)
		}
	}
	return out
}

func mustContext(t *testing.T, p *constraint.Problem, codes [][]int) *constraint.Context {
	t.Helper()
	m, err := matrix.FromCodes(codes)
	require.NoError(t, err)
	ctx, err := constraint.NewContext(m, p)
	require.NoError(t, err)
	return ctx
}

func validationFields(t *testing.T, err error) []string {
	t.Helper()
	var ve *errors.ValidationErrors
	require.True(t, errors.As(err, &ve), "期望验证错误，得到 %v", err)
	return ve.FieldNames()
}
