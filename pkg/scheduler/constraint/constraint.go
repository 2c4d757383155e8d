// Package constraint 定义约束接口、模板注册表和管理器
package constraint

import (
	"math"

	"github.com/paiban/gashift/pkg/errors"
	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/matrix"
)

// Category 约束类别
type Category string

const (
	CategoryHard Category = "hard" // 硬约束（必须满足）
	CategorySoft Category = "soft" // 软约束（尽量满足）
)

// Scope 约束作用范围
type Scope string

const (
	ScopePattern  Scope = "pattern"  // 出勤/休息模式
	ScopeDay      Scope = "day"      // 单日人数
	ScopeEmployee Scope = "employee" // 单个员工
	ScopeFairness Scope = "fairness" // 员工间公平
	ScopeFacility Scope = "facility" // 门店特有规则
)

const (
	// MaxPenalty 惩罚值饱和上限，任何聚合结果不超过该值
	MaxPenalty = 1e15
	// HardViolationFloor 每次硬约束违反附加的基础惩罚的下限。
	// 编译时按软约束上界抬高，见 Manager.Calibrate。
	HardViolationFloor = 1e6
)

// Constraint 约束接口
type Constraint interface {
	// ID 模板标识
	ID() string

	// Name 显示名称
	Name() string

	// Scope 作用范围
	Scope() Scope

	// Category 硬/软约束
	Category() Category

	// Weight 权重，0 表示不计分
	Weight() float64

	// Evaluate 评估整张排班表，返回未加权惩罚（>=0）和违反明细。
	// 必须是纯函数：相同输入总是得到相同输出，规则违反通过返回值表达。
	Evaluate(ctx *Context) (penalty float64, details []model.Violation)

	// MaxPenalty 任意排班下 Evaluate 可能返回的最大未加权惩罚
	MaxPenalty(p *Problem) float64
}

// Context 评估上下文
type Context struct {
	Matrix  *matrix.Matrix
	Problem *Problem
}

// NewContext 创建评估上下文，矩阵维度与问题不符时返回结构性错误
func NewContext(m *matrix.Matrix, p *Problem) (*Context, error) {
	if m == nil || p == nil {
		return nil, errors.Structural("矩阵或问题为空")
	}
	if m.Rows() != len(p.Employees) || m.Cols() != p.Days() {
		return nil, errors.Structural("矩阵维度 %dx%d 与输入 %dx%d 不符",
			m.Rows(), m.Cols(), len(p.Employees), p.Days())
	}
	return &Context{Matrix: m, Problem: p}, nil
}

// Score 单条约束的得分
type Score struct {
	ConstraintID string   `json:"constraint_id"`
	Name         string   `json:"name"`
	Category     Category `json:"category"`
	Weight       float64  `json:"weight"`
	Raw          float64  `json:"raw"`
	Penalty      float64  `json:"penalty"`
	Violations   int      `json:"violations"`
}

// Result 约束评估结果
type Result struct {
	Total      float64           `json:"total"`
	Hard       float64           `json:"hard"`
	Soft       float64           `json:"soft"`
	Violations []model.Violation `json:"violations"`
	Scores     []Score           `json:"scores"`
}

// IsFeasible 硬约束全部满足
func (r *Result) IsFeasible() bool {
	return r.Hard == 0
}

// Saturate 把惩罚值限制在 [0, MaxPenalty]
func Saturate(v float64) float64 {
	switch {
	case math.IsNaN(v), v >= MaxPenalty:
		return MaxPenalty
	case v < 0:
		return 0
	default:
		return v
	}
}

// SatAdd 饱和加法
func SatAdd(a, b float64) float64 {
	return Saturate(a + b)
}

// SatMul 饱和乘法，任一因子为 0 时结果为 0
func SatMul(a, b float64) float64 {
	if a == 0 || b == 0 {
		return 0
	}
	return Saturate(a * b)
}
