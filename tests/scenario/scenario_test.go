// Package scenario 提供场景测试
package scenario

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/gashift/pkg/logger"
	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/constraint/builtin"
	"github.com/paiban/gashift/pkg/scheduler/matrix"
	"github.com/paiban/gashift/pkg/scheduler/optimizer"
	"github.com/paiban/gashift/pkg/stats"
	"github.com/paiban/gashift/pkg/validator"
)

func quiet() optimizer.Option {
	return optimizer.WithLogger(logger.NewSchedulerLoggerFrom(zerolog.Nop()))
}

func run(t *testing.T, in *model.ShiftInput, configs []model.ConstraintConfig, cfg model.GAConfig) (*optimizer.Engine, *model.ShiftResult) {
	t.Helper()
	e, err := optimizer.New(in, configs, cfg, nil, quiet())
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)
	return e, res
}

func assertHistoryNonIncreasing(t *testing.T, history []float64) {
	t.Helper()
	for i := 1; i < len(history); i++ {
		assert.LessOrEqual(t, history[i], history[i-1], "第 %d 代历史最优上升", i)
	}
}

// TestWeeklyUnavailableDay 一周三人，X 每周三不可出勤，每天需要 2 人
func TestWeeklyUnavailableDay(t *testing.T) {
	// 2024-01-03 为周三
	in := &model.ShiftInput{
		Employees: []model.Employee{
			{ID: "X", Name: "X", UnavailableDays: []int{3}},
			{ID: "Y", Name: "Y"},
			{ID: "Z", Name: "Z"},
		},
		Calendar:        model.CalendarSpec{Year: 2024, Month: 1, Days: 7},
		DefaultStaffing: 2,
	}
	configs := []model.ConstraintConfig{
		{TemplateID: "max_consecutive_work", Params: map[string]interface{}{"max_days": 5}},
		{TemplateID: "required_workers_match"},
	}
	cfg := model.DefaultGAConfig().WithSeed(20240103)
	cfg.GenerationCount = 20
	cfg.PopulationSize = 50

	_, res := run(t, in, configs, cfg)

	assert.Zero(t, res.HardPenalty)
	assert.True(t, res.Feasible())
	assert.Equal(t, int(model.CellUnavailable), res.BestSchedule[0][2], "X 的周三保持不可出勤")
	assert.Len(t, res.GenerationHistory, 20)
	assertHistoryNonIncreasing(t, res.GenerationHistory)

	_, again := run(t, in, configs, cfg)
	assert.Equal(t, res.BestSchedule, again.BestSchedule, "相同种子结果一致")
	assert.Equal(t, res.GenerationHistory, again.GenerationHistory)
}

func restaurantInput() *model.ShiftInput {
	return &model.ShiftInput{
		Employees: []model.Employee{
			{ID: "c1", Name: "王厨", Section: model.SectionPrep, RequiredHolidays: 9, PreferredDaysOff: []int{1, 2}},
			{ID: "c2", Name: "李厨", Section: model.SectionPrep, RequiredHolidays: 9},
			{ID: "c3", Name: "张厨", Section: model.SectionLunch, RequiredHolidays: 9, UnavailableDays: []int{15}},
			{ID: "c4", Name: "赵厨", Section: model.SectionPrepLunch, RequiredHolidays: 9},
			{ID: "h1", Name: "陈", Section: model.SectionHall, RequiredHolidays: 8, VacationDays: 2},
			{ID: "h2", Name: "刘", Section: model.SectionHall, Type: model.EmployeePartTime, RequiredHolidays: 12},
		},
		Calendar:        model.CalendarSpec{Year: 2024, Month: 6},
		DefaultStaffing: 4,
		Staffing: []model.DayStaffing{
			{Day: 1, Total: 5, Sections: map[string]int{model.SectionPrep: 2}},
			{Day: 15, Total: 3},
		},
	}
}

// TestRestaurantMonth 餐饮门店整月排班
func TestRestaurantMonth(t *testing.T) {
	in := restaurantInput()
	cfg := model.DefaultGAConfig().WithSeed(7)
	cfg.GenerationCount = 30
	cfg.PopulationSize = 40
	cfg.HolidayRepair = true

	e, res := run(t, in, builtin.RestaurantSet(), cfg)
	require.Len(t, res.BestSchedule, len(in.Employees))
	require.Len(t, res.BestSchedule[0], 30)
	assertHistoryNonIncreasing(t, res.GenerationHistory)

	m, err := matrix.FromCodes(res.BestSchedule)
	require.NoError(t, err)
	p := e.Problem()
	for emp := range p.Employees {
		for d := 0; d < p.Days(); d++ {
			if p.Base.IsFixed(emp, d) {
				assert.Equal(t, p.Base.CodeAt(emp, d), m.CodeAt(emp, d))
			}
		}
		// 修复后休息天数等于合同要求
		assert.Equal(t, p.Employees[emp].RequiredHolidays, m.OffCount(emp), "员工 %s", p.Employees[emp].ID)
	}

	report, err := validator.NewConflictDetector(nil).ValidateResult(p, e.Manager(), res)
	require.NoError(t, err)
	assert.Equal(t, res.BestScore, report.Total)
	assert.Equal(t, res.Feasible(), report.Feasible)
	for _, c := range report.Conflicts {
		assert.NotEqual(t, validator.ConflictWishOff, c.Type)
		assert.NotEqual(t, validator.ConflictHolidayCount, c.Type)
	}

	summary := stats.Summarize(p, m)
	assert.Len(t, summary.Fairness.EmployeeStats, len(in.Employees))
	assert.Len(t, summary.Coverage.DailyCoverage, 30)
	assert.Equal(t, 5+3+28*4, summary.Coverage.RequiredTotal)
}

// TestWeightZeroDiagnostics 权重为 0 的约束只输出违反明细
func TestWeightZeroDiagnostics(t *testing.T) {
	in := restaurantInput()
	cfg := model.DefaultGAConfig().WithSeed(3)
	cfg.GenerationCount = 5
	cfg.PopulationSize = 10
	cfg.EliteCount = 2

	configs := []model.ConstraintConfig{
		{TemplateID: "required_workers_match", Weight: model.Float(0)},
		{TemplateID: "min_days_off_per_week", Weight: model.Float(0), Params: map[string]interface{}{"min_off": 7}},
	}
	_, res := run(t, in, configs, cfg)

	assert.Zero(t, res.BestScore)
	assert.NotEmpty(t, res.Violations)
	for _, v := range res.Violations {
		assert.Zero(t, v.Penalty)
	}
}
