// Package stats 提供排班统计分析功能
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/constraint"
	"github.com/paiban/gashift/pkg/scheduler/matrix"
)

// FairnessMetrics 公平性指标
type FairnessMetrics struct {
	// 出勤天数
	WorkGini    float64 `json:"work_gini"` // 基尼系数 (0=完全公平, 1=完全不公平)
	WorkStdDev  float64 `json:"work_std_dev"`
	AvgWorkDays float64 `json:"avg_work_days"`
	MaxWorkDays float64 `json:"max_work_days"`
	MinWorkDays float64 `json:"min_work_days"`
	WorkRange   float64 `json:"work_range"`

	// 周末休息
	WeekendOffGini   float64 `json:"weekend_off_gini"`
	WeekendOffStdDev float64 `json:"weekend_off_std_dev"`
	WeekendOffRange  float64 `json:"weekend_off_range"`

	EmployeeStats []EmployeeStat `json:"employee_stats"`

	// 综合评分 (0-100)
	OverallFairnessScore float64 `json:"overall_fairness_score"`
}

// EmployeeStat 员工统计
type EmployeeStat struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	FullTime     bool   `json:"full_time"`
	WorkDays     int    `json:"work_days"`
	OffDays      int    `json:"off_days"`
	AssignedOff  int    `json:"assigned_off"`
	WishOff      int    `json:"wish_off"`
	Unavailable  int    `json:"unavailable"`
	WeekendOff   int    `json:"weekend_off"`
	LongestRun   int    `json:"longest_run"` // 最长连续出勤
	// 与合同休息天数之差，未设置合同时为 0
	HolidayDiff int     `json:"holiday_diff"`
	Deviation   float64 `json:"deviation"` // 出勤天数与平均值的偏差百分比
}

// FairnessAnalyzer 公平性分析器
type FairnessAnalyzer struct{}

// NewFairnessAnalyzer 创建公平性分析器
func NewFairnessAnalyzer() *FairnessAnalyzer {
	return &FairnessAnalyzer{}
}

// Analyze 分析排班公平性
func (f *FairnessAnalyzer) Analyze(p *constraint.Problem, m *matrix.Matrix) *FairnessMetrics {
	if len(p.Employees) == 0 {
		return &FairnessMetrics{OverallFairnessScore: 100}
	}

	employeeStats := f.calculateEmployeeStats(p, m)
	work := make([]float64, len(employeeStats))
	weekend := make([]float64, len(employeeStats))
	for i, s := range employeeStats {
		work[i] = float64(s.WorkDays)
		weekend[i] = float64(s.WeekendOff)
	}

	avg, std := stat.PopMeanStdDev(work, nil)
	_, weekendStd := stat.PopMeanStdDev(weekend, nil)
	for i := range employeeStats {
		if avg > 0 {
			employeeStats[i].Deviation = (work[i] - avg) / avg * 100
		}
	}

	workGini := calculateGini(work)
	weekendGini := calculateGini(weekend)

	sort.SliceStable(employeeStats, func(i, j int) bool {
		return employeeStats[i].WorkDays > employeeStats[j].WorkDays
	})

	return &FairnessMetrics{
		WorkGini:             workGini,
		WorkStdDev:           std,
		AvgWorkDays:          avg,
		MaxWorkDays:          floats.Max(work),
		MinWorkDays:          floats.Min(work),
		WorkRange:            floats.Max(work) - floats.Min(work),
		WeekendOffGini:       weekendGini,
		WeekendOffStdDev:     weekendStd,
		WeekendOffRange:      floats.Max(weekend) - floats.Min(weekend),
		EmployeeStats:        employeeStats,
		OverallFairnessScore: calculateOverallScore(workGini, weekendGini, std, avg),
	}
}

// calculateEmployeeStats 按行顺序统计每位员工
func (f *FairnessAnalyzer) calculateEmployeeStats(p *constraint.Problem, m *matrix.Matrix) []EmployeeStat {
	weekends := p.Calendar.WeekendIndexes()
	result := make([]EmployeeStat, len(p.Employees))
	for e, emp := range p.Employees {
		s := EmployeeStat{
			EmployeeID:   emp.ID,
			EmployeeName: emp.Name,
			FullTime:     emp.IsFullTime(),
			OffDays:      m.OffCount(e),
			AssignedOff:  m.CountCode(e, model.CellAssignedOff),
			WishOff:      m.CountCode(e, model.CellWishOff),
			Unavailable:  m.CountCode(e, model.CellUnavailable),
			LongestRun:   m.LongestWorkRun(e),
		}
		s.WorkDays = m.Cols() - s.OffDays
		for _, d := range weekends {
			if !m.IsWork(e, d) {
				s.WeekendOff++
			}
		}
		if emp.RequiredHolidays > 0 {
			s.HolidayDiff = s.OffDays - emp.RequiredHolidays
		}
		result[e] = s
	}
	return result
}

// calculateGini 计算基尼系数
func calculateGini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := floats.Sum(sorted)
	if sum == 0 {
		return 0
	}

	gini := 0.0
	for i, v := range sorted {
		gini += (2*float64(i+1) - float64(n) - 1) * v
	}
	gini = gini / (float64(n) * sum)
	return math.Max(0, math.Min(1, gini))
}

// calculateOverallScore 计算综合公平性评分
func calculateOverallScore(workGini, weekendGini, stdDev, avg float64) float64 {
	const (
		workWeight    = 0.5
		weekendWeight = 0.3
		stdDevWeight  = 0.2
	)

	workScore := (1 - workGini) * 100
	weekendScore := (1 - weekendGini) * 100

	// 变异系数越低分数越高
	cvScore := 100.0
	if avg > 0 {
		cv := stdDev / avg
		cvScore = math.Max(0, 100-cv*200)
	}

	score := workWeight*workScore + weekendWeight*weekendScore + stdDevWeight*cvScore
	return math.Max(0, math.Min(100, score))
}

// CompareSchedules 比较两个排班方案的公平性
func (f *FairnessAnalyzer) CompareSchedules(p *constraint.Problem, a, b *matrix.Matrix) map[string]float64 {
	m1 := f.Analyze(p, a)
	m2 := f.Analyze(p, b)

	return map[string]float64{
		"work_gini_diff":          m2.WorkGini - m1.WorkGini,
		"weekend_off_gini_diff":   m2.WeekendOffGini - m1.WeekendOffGini,
		"overall_score_diff":      m2.OverallFairnessScore - m1.OverallFairnessScore,
		"schedule1_overall_score": m1.OverallFairnessScore,
		"schedule2_overall_score": m2.OverallFairnessScore,
	}
}
