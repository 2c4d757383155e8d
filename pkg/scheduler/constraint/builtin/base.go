// Package builtin 提供内置约束模板
package builtin

import (
	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/constraint"
)

// BaseConstraint 约束基类
type BaseConstraint struct {
	id       string
	name     string
	scope    constraint.Scope
	category constraint.Category
	weight   float64
	params   constraint.Params
}

// NewBaseConstraint 由编译规格创建基础约束
func NewBaseConstraint(s *constraint.Spec) BaseConstraint {
	return BaseConstraint{
		id:       s.Template.ID,
		name:     s.Template.Name,
		scope:    s.Template.Scope,
		category: s.Category,
		weight:   s.Weight,
		params:   s.Params,
	}
}

// ID 返回模板标识
func (c *BaseConstraint) ID() string { return c.id }

// Name 返回约束名称
func (c *BaseConstraint) Name() string { return c.name }

// Scope 返回作用范围
func (c *BaseConstraint) Scope() constraint.Scope { return c.scope }

// Category 返回约束类别
func (c *BaseConstraint) Category() constraint.Category { return c.category }

// Weight 返回约束权重
func (c *BaseConstraint) Weight() float64 { return c.weight }

// Params 返回编译后的参数
func (c *BaseConstraint) Params() constraint.Params { return c.params }

// CreateViolation 创建违反详情；day 为 0 起始下标，-1 表示整月
func (c *BaseConstraint) CreateViolation(empID string, day int, message string, penalty float64) model.Violation {
	severity := model.SeverityWarning
	if c.category == constraint.CategoryHard {
		severity = model.SeverityError
	}
	return model.Violation{
		ConstraintID: c.id,
		Severity:     severity,
		Message:      message,
		EmployeeID:   empID,
		Day:          day + 1,
		Penalty:      penalty,
	}
}

func atLeastZero(n int) int {
	return max(n, 0)
}
