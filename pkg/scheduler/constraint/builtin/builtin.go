package builtin

import (
	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/constraint"
)

// Templates 返回全部内置模板
func Templates() []constraint.Template {
	return []constraint.Template{
		// 员工维度
		maxConsecutiveWorkTemplate,
		restAfterConsecutiveWorkTemplate,
		minDaysOffPerWeekTemplate,
		weekendRestTemplate,
		holidayCountTemplate,
		vacationDaysLimitTemplate,
		unavailableDayTemplate,
		// 模式
		avoidLongConsecutiveWorkTemplate,
		noIsolatedHolidaysTemplate,
		noIsolatedWorkdaysTemplate,
		noIsolatedRestDaysTemplate,
		consecutiveHolidayBonusTemplate,
		// 日维度
		requiredWorkersMatchTemplate,
		minStaffingTemplate,
		minWorkersOnDateTemplate,
		maxWorkersOnDateTemplate,
		minSkilledWorkersTemplate,
		closedDayTemplate,
		// 公平性
		equalWeekendDistributionTemplate,
		equalHolidayDistributionTemplate,
		// 门店规则
		sectionMinWorkersTemplate,
		substituteTemplate,
	}
}

// Register 把内置模板注册到已有注册表
func Register(r *constraint.Registry) {
	for _, t := range Templates() {
		r.MustRegister(t)
	}
}

// NewRegistry 创建包含全部内置模板的注册表
func NewRegistry() *constraint.Registry {
	r := constraint.NewRegistry()
	Register(r)
	return r
}

// DefaultSet 未配置约束时使用的默认约束集
func DefaultSet() []model.ConstraintConfig {
	return []model.ConstraintConfig{
		{TemplateID: "avoid_long_consecutive_work", Params: map[string]interface{}{"threshold": 5, "penalty_weight": 1.0}},
		{TemplateID: "no_isolated_holidays", Params: map[string]interface{}{"penalty_weight": 10.0}},
		{TemplateID: "required_workers_match", Params: map[string]interface{}{"penalty_per_diff": 4.0}},
	}
}

// RestaurantSet 餐饮门店常用约束集：默认约束加厨房分区人数与合同休息天数
func RestaurantSet() []model.ConstraintConfig {
	set := DefaultSet()
	return append(set,
		model.ConstraintConfig{TemplateID: "max_consecutive_work"},
		model.ConstraintConfig{TemplateID: "holiday_count"},
		model.ConstraintConfig{TemplateID: "section_min_workers"},
		model.ConstraintConfig{TemplateID: "equal_weekend_distribution"},
	)
}
