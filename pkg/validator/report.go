// Package validator 提供排班结果验证功能
package validator

import (
	"fmt"
	"sort"

	"github.com/paiban/gashift/pkg/errors"
	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/constraint"
	"github.com/paiban/gashift/pkg/scheduler/matrix"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictConstraint   ConflictType = "constraint"    // 约束违反
	ConflictHolidayCount ConflictType = "holiday_count" // 休息天数与合同不符
	ConflictWishOff      ConflictType = "wish_off"      // 希望休未保留
	ConflictFixedCell    ConflictType = "fixed_cell"    // 固定单元格被修改
)

// Conflict 冲突信息
type Conflict struct {
	Type         ConflictType   `json:"type"`
	Severity     model.Severity `json:"severity"`
	ConstraintID string         `json:"constraint_id,omitempty"`
	EmployeeID   string         `json:"employee_id,omitempty"`
	Day          int            `json:"day,omitempty"`
	Message      string         `json:"message"`
	Penalty      float64        `json:"penalty,omitempty"`
}

// ConstraintReport 单个约束的评估汇总
type ConstraintReport struct {
	ConstraintID string              `json:"constraint_id"`
	Name         string              `json:"name"`
	Category     constraint.Category `json:"category"`
	Penalty      float64             `json:"penalty"`
	Violations   int                 `json:"violations"`
	Severity     model.Severity      `json:"severity,omitempty"`
}

// Report 验证报告
type Report struct {
	Feasible     bool               `json:"feasible"`
	Total        float64            `json:"total"`
	Hard         float64            `json:"hard"`
	Soft         float64            `json:"soft"`
	Constraints  []ConstraintReport `json:"constraints"`
	Conflicts    []Conflict         `json:"conflicts"`
	ErrorCount   int                `json:"error_count"`
	WarningCount int                `json:"warning_count"`
}

// DetectorConfig 检测器配置
type DetectorConfig struct {
	ErrorThreshold   float64 // 惩罚值达到该阈值视为错误
	CheckHolidays    bool    // 是否检查合同休息天数
	CheckFixedCells  bool    // 是否检查固定单元格
	IncludeViolation bool    // 是否把约束违反明细并入冲突列表
}

// DefaultDetectorConfig 返回默认配置
func DefaultDetectorConfig() *DetectorConfig {
	return &DetectorConfig{
		ErrorThreshold:   10,
		CheckHolidays:    true,
		CheckFixedCells:  true,
		IncludeViolation: true,
	}
}

// ConflictDetector 冲突检测器
type ConflictDetector struct {
	config *DetectorConfig
}

// NewConflictDetector 创建冲突检测器
func NewConflictDetector(config *DetectorConfig) *ConflictDetector {
	if config == nil {
		config = DefaultDetectorConfig()
	}
	return &ConflictDetector{config: config}
}

// Severity 按惩罚值判定严重程度
func (d *ConflictDetector) Severity(penalty float64) model.Severity {
	if penalty >= d.config.ErrorThreshold {
		return model.SeverityError
	}
	return model.SeverityWarning
}

// Validate 重新评估排班并生成报告。矩阵尺寸与问题不符时返回 STRUCTURAL_ERROR。
func (d *ConflictDetector) Validate(p *constraint.Problem, m *constraint.Manager, schedule *matrix.Matrix) (*Report, error) {
	ctx, err := constraint.NewContext(schedule, p)
	if err != nil {
		return nil, err
	}
	result := m.Evaluate(ctx)

	report := &Report{
		Feasible:    result.IsFeasible(),
		Total:       result.Total,
		Hard:        result.Hard,
		Soft:        result.Soft,
		Constraints: make([]ConstraintReport, 0, len(result.Scores)),
		Conflicts:   make([]Conflict, 0),
	}

	for _, s := range result.Scores {
		cr := ConstraintReport{
			ConstraintID: s.ConstraintID,
			Name:         s.Name,
			Category:     s.Category,
			Penalty:      s.Penalty,
			Violations:   s.Violations,
		}
		if s.Violations > 0 {
			cr.Severity = d.Severity(s.Penalty)
		}
		report.Constraints = append(report.Constraints, cr)
	}

	if d.config.IncludeViolation {
		report.Conflicts = append(report.Conflicts, d.detectViolations(result.Violations)...)
	}
	if d.config.CheckHolidays {
		report.Conflicts = append(report.Conflicts, d.detectHolidayCount(p, schedule)...)
	}
	if d.config.CheckFixedCells {
		report.Conflicts = append(report.Conflicts, d.detectFixedCells(p, schedule)...)
	}

	sort.SliceStable(report.Conflicts, func(i, j int) bool {
		a, b := report.Conflicts[i], report.Conflicts[j]
		if a.Severity != b.Severity {
			return a.Severity == model.SeverityError
		}
		return a.Penalty > b.Penalty
	})
	for _, c := range report.Conflicts {
		if c.Severity == model.SeverityError {
			report.ErrorCount++
		} else {
			report.WarningCount++
		}
	}
	return report, nil
}

// ValidateResult 校验引擎输出的排班结果
func (d *ConflictDetector) ValidateResult(p *constraint.Problem, m *constraint.Manager, result *model.ShiftResult) (*Report, error) {
	if result == nil {
		return nil, errors.New(errors.CodeInvalidInput, "排班结果为空")
	}
	if len(result.EmployeeIDs) > 0 {
		ids := p.EmployeeIDs()
		if len(ids) != len(result.EmployeeIDs) {
			return nil, errors.Structural("结果包含 %d 名员工，问题包含 %d 名", len(result.EmployeeIDs), len(ids))
		}
		for i, id := range result.EmployeeIDs {
			if ids[i] != id {
				return nil, errors.Structural("第 %d 行员工为 %s，期望 %s", i, id, ids[i])
			}
		}
	}
	schedule, err := matrix.FromCodes(result.BestSchedule)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStructural, "排班矩阵无法解码")
	}
	return d.Validate(p, m, schedule)
}

// detectViolations 把约束违反明细转为冲突
func (d *ConflictDetector) detectViolations(violations []model.Violation) []Conflict {
	conflicts := make([]Conflict, 0, len(violations))
	for _, v := range violations {
		conflicts = append(conflicts, Conflict{
			Type:         ConflictConstraint,
			Severity:     d.Severity(v.Penalty),
			ConstraintID: v.ConstraintID,
			EmployeeID:   v.EmployeeID,
			Day:          v.Day,
			Message:      v.Message,
			Penalty:      v.Penalty,
		})
	}
	return conflicts
}

// detectHolidayCount 检查设置了合同休息天数的员工
func (d *ConflictDetector) detectHolidayCount(p *constraint.Problem, schedule *matrix.Matrix) []Conflict {
	var conflicts []Conflict
	for e, emp := range p.Employees {
		if emp.RequiredHolidays <= 0 {
			continue
		}
		off := schedule.OffCount(e)
		if off == emp.RequiredHolidays {
			continue
		}
		diff := off - emp.RequiredHolidays
		if diff < 0 {
			diff = -diff
		}
		conflicts = append(conflicts, Conflict{
			Type:       ConflictHolidayCount,
			Severity:   d.Severity(float64(diff)),
			EmployeeID: emp.ID,
			Message:    fmt.Sprintf("员工 %s 休息 %d 天，合同要求 %d 天", displayName(emp), off, emp.RequiredHolidays),
			Penalty:    float64(diff),
		})
	}
	return conflicts
}

// detectFixedCells 检查希望休与不可出勤是否保留
func (d *ConflictDetector) detectFixedCells(p *constraint.Problem, schedule *matrix.Matrix) []Conflict {
	var conflicts []Conflict
	for e, emp := range p.Employees {
		for day := 0; day < p.Days(); day++ {
			want := p.Base.CodeAt(e, day)
			if !want.IsFixed() || schedule.CodeAt(e, day) == want {
				continue
			}
			typ := ConflictFixedCell
			if want == model.CellWishOff {
				typ = ConflictWishOff
			}
			conflicts = append(conflicts, Conflict{
				Type:       typ,
				Severity:   model.SeverityError,
				EmployeeID: emp.ID,
				Day:        day + 1,
				Message: fmt.Sprintf("员工 %s 第 %d 天应为 %s，实际为 %s",
					displayName(emp), day+1, want, schedule.CodeAt(e, day)),
			})
		}
	}
	return conflicts
}

func displayName(emp model.Employee) string {
	if emp.Name != "" {
		return emp.Name
	}
	return emp.ID
}
