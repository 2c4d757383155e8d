package builtin

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/constraint"
)

func TestNewRegistry_AllTemplates(t *testing.T) {
	r := NewRegistry()
	ids := r.IDs()
	assert.Len(t, ids, len(Templates()))
	assert.True(t, sort.StringsAreSorted(ids))

	for _, tpl := range Templates() {
		got, ok := r.Get(tpl.ID)
		require.True(t, ok, tpl.ID)
		assert.NotEmpty(t, got.Name, tpl.ID)
		assert.Greater(t, got.DefaultWeight, 0.0, tpl.ID)
	}
	assert.Len(t, r.ListByScope(constraint.ScopeFairness), 2)
}

func TestTemplates_DefaultsCompile(t *testing.T) {
	needsParams := map[string]bool{"min_skilled_workers": true, "substitute_constraint": true}
	p := newTestProblem(t, 14, emp("a"), emp("b"))

	for _, tpl := range Templates() {
		if needsParams[tpl.ID] {
			continue
		}
		t.Run(tpl.ID, func(t *testing.T) {
			c := compileOne(t, p, tpl.ID, nil)
			assert.Equal(t, tpl.Category, c.Category())
			penalty, _ := evaluate(t, c, p, p.Base.Codes())
			assert.GreaterOrEqual(t, penalty, 0.0)
		})
	}
}

func TestDefaultSet(t *testing.T) {
	p := newTestProblemFrom(t, &model.ShiftInput{
		Employees:       []model.Employee{emp("a"), emp("b")},
		Calendar:        model.CalendarSpec{Year: 2024, Month: 1, Days: 5},
		DefaultStaffing: 1,
	})
	m, err := NewRegistry().Compile(DefaultSet(), p)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Count())
	assert.Empty(t, m.GetByCategory(constraint.CategoryHard))

	m, err = NewRegistry().Compile(RestaurantSet(), p)
	require.NoError(t, err)
	assert.Equal(t, 7, m.Count())
	assert.Equal(t, "max_consecutive_work", m.GetAll()[0].ID(), "硬约束排在前面")
}

func TestCompile_UnknownTemplateAndParams(t *testing.T) {
	p := newTestProblem(t, 5, emp("a"))
	_, err := NewRegistry().Compile([]model.ConstraintConfig{
		{TemplateID: "no_such_rule"},
		{TemplateID: "max_consecutive_work", Params: map[string]interface{}{"max_days": 0, "bogus": 1}},
		{TemplateID: "weekend_rest", Weight: model.Float(-1)},
		{TemplateID: "max_consecutive_work", Enabled: model.Bool(false), Params: map[string]interface{}{"max_days": "x"}},
	}, p)
	require.Error(t, err)

	assert.Equal(t, []string{
		"constraints[0].template_id",
		"constraints[1].params.bogus",
		"constraints[1].params.max_days",
		"constraints[2].weight",
	}, validationFields(t, err))
}

func TestCompile_WeightZeroAndHardOverride(t *testing.T) {
	p := newTestProblem(t, 5, emp("a"))
	m, err := NewRegistry().Compile([]model.ConstraintConfig{
		{TemplateID: "no_isolated_holidays", Weight: model.Float(0), Hard: model.Bool(true)},
	}, p)
	require.NoError(t, err)

	ctx := mustContext(t, p, [][]int{row("OWOWW")})
	result := m.Evaluate(ctx)
	assert.Zero(t, result.Total, "权重 0 不计分")
	require.Len(t, result.Violations, 1, "违反明细照常输出")
	assert.Equal(t, model.SeverityError, result.Violations[0].Severity)
	assert.Zero(t, result.Violations[0].Penalty)
}
