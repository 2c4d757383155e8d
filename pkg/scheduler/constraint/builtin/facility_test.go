package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/gashift/pkg/errors"
	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/constraint"
	"github.com/paiban/gashift/pkg/scheduler/matrix"
)

func TestSectionMinWorkers(t *testing.T) {
	sections := []string{model.SectionPrep, model.SectionLunch, model.SectionHall, model.SectionPrepLunch}
	employees := make([]model.Employee, len(sections))
	for i, s := range sections {
		employees[i] = emp(s)
		employees[i].Section = s
	}
	p := newTestProblem(t, 2, employees...)
	c := compileOne(t, p, "section_min_workers", nil)

	penalty, vs := evaluate(t, c, p, [][]int{row("WO"), row("WW"), row("WW"), row("WW")})
	assert.Equal(t, 50.0, penalty)
	require.Len(t, vs, 1)
	assert.Equal(t, 2, vs[0].Day)

	c = compileOne(t, p, "section_min_workers", map[string]interface{}{"sections": "hall", "min_workers": 1})
	penalty, _ = evaluate(t, c, p, [][]int{row("OO"), row("OO"), row("WW"), row("OO")})
	assert.Zero(t, penalty)
}

func TestSubstituteConstraint(t *testing.T) {
	p := newTestProblem(t, 3, emp("chef"), emp("sous"))
	params := map[string]interface{}{"primary_id": "chef", "substitute_id": "sous"}
	c := compileOne(t, p, "substitute_constraint", params)
	assert.Equal(t, constraint.CategoryHard, c.Category())

	codes := [][]int{row("OWO"), row("WWO")}
	penalty, vs := evaluate(t, c, p, codes)
	assert.Equal(t, 40.0, penalty)
	require.Len(t, vs, 1)
	assert.Equal(t, 3, vs[0].Day)
	assert.Equal(t, "sous", vs[0].EmployeeID)
	assert.Equal(t, model.SeverityError, vs[0].Severity)

	// 经管理器聚合后硬约束附加基础惩罚
	mgr, err := NewRegistry().Compile([]model.ConstraintConfig{{TemplateID: "substitute_constraint", Params: params}}, p)
	require.NoError(t, err)
	m, err := matrix.FromCodes(codes)
	require.NoError(t, err)
	ctx, err := constraint.NewContext(m, p)
	require.NoError(t, err)
	result := mgr.Evaluate(ctx)
	assert.Equal(t, 40+constraint.HardViolationFloor, result.Hard)
	assert.False(t, result.IsFeasible())
}

func TestSubstituteConstraint_UnknownEmployee(t *testing.T) {
	p := newTestProblem(t, 3, emp("chef"), emp("sous"))
	_, err := NewRegistry().Compile([]model.ConstraintConfig{
		{TemplateID: "substitute_constraint", Params: map[string]interface{}{"primary_id": "chef", "substitute_id": "ghost"}},
		{TemplateID: "substitute_constraint", Params: map[string]interface{}{"primary_id": "chef", "substitute_id": "chef"}},
	}, p)
	require.Error(t, err)

	var ve *errors.ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{
		"constraints[0].params.substitute_id",
		"constraints[1].params.substitute_id",
	}, ve.FieldNames())
}
