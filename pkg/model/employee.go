// Package model 定义排班引擎的输入输出数据模型
package model

import (
	"github.com/google/uuid"
)

// EmployeeType 雇佣类别
type EmployeeType string

const (
	EmployeeFullTime EmployeeType = "full_time" // 正式
	EmployeePartTime EmployeeType = "part_time" // 兼职
)

// 常用岗位分区
const (
	SectionPrep      = "prep"       // 备餐
	SectionLunch     = "lunch"      // 午市
	SectionPrepLunch = "prep_lunch" // 备餐+午市
	SectionHall      = "hall"       // 前厅
)

// Employee 员工，运行期间只读
type Employee struct {
	ID      string       `json:"id" yaml:"id"`
	Name    string       `json:"name" yaml:"name"`
	Type    EmployeeType `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,oneof=full_time part_time"`
	Section string       `json:"section,omitempty" yaml:"section,omitempty"`
	Skills  []string     `json:"skills,omitempty" yaml:"skills,omitempty"`

	// 合同约定的月休息天数
	RequiredHolidays int `json:"required_holidays" yaml:"required_holidays" validate:"gte=0"`
	// 可用假期余额
	VacationDays int `json:"vacation_days" yaml:"vacation_days" validate:"gte=0"`

	// 以下日期均为 1 起始的日号
	PreferredDaysOff []int `json:"preferred_days_off,omitempty" yaml:"preferred_days_off,omitempty"`
	UnavailableDays  []int `json:"unavailable_days,omitempty" yaml:"unavailable_days,omitempty"`
}

// HasSkill 检查员工是否具备某技能
func (e *Employee) HasSkill(skill string) bool {
	for _, s := range e.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// InSection 检查员工是否属于任一分区
func (e *Employee) InSection(sections ...string) bool {
	for _, s := range sections {
		if e.Section == s {
			return true
		}
	}
	return false
}

// IsFullTime 未填写类别时按正式员工处理
func (e *Employee) IsFullTime() bool {
	return e.Type == "" || e.Type == EmployeeFullTime
}

// RestQuota 计算期望休息天数：合同休息日优先，其次假期余额，最后按每周一天估算
func (e *Employee) RestQuota(days int) int {
	switch {
	case e.RequiredHolidays > 0:
		return e.RequiredHolidays
	case e.VacationDays > 0:
		return e.VacationDays
	default:
		return days / 7
	}
}

// EnsureIDs 为缺少 ID 的员工补齐 UUID
func EnsureIDs(employees []Employee) {
	for i := range employees {
		if employees[i].ID == "" {
			employees[i].ID = uuid.NewString()
		}
	}
}
