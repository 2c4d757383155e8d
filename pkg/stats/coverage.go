package stats

import (
	"sort"

	"github.com/paiban/gashift/pkg/scheduler/constraint"
	"github.com/paiban/gashift/pkg/scheduler/matrix"
)

// CoverageMetrics 人员覆盖指标
type CoverageMetrics struct {
	// RequiredTotal 全月需求人次
	RequiredTotal int `json:"required_total"`
	// CoveredTotal 需求范围内实际出勤人次（超出需求的部分不计）
	CoveredTotal    int     `json:"covered_total"`
	OverallCoverage float64 `json:"overall_coverage"` // 整体覆盖率 (%)

	DailyCoverage []DayCoverage `json:"daily_coverage"`

	// 按分区统计的覆盖率 (%)
	SectionCoverage map[string]float64 `json:"section_coverage"`

	Understaffed []UnderstaffedDay `json:"understaffed"`
	Overstaffed  []int             `json:"overstaffed"` // 出勤多于需求的日号
}

// DayCoverage 每日覆盖情况
type DayCoverage struct {
	Day          int     `json:"day"`
	Workers      int     `json:"workers"`
	Required     int     `json:"required"`
	CoverageRate float64 `json:"coverage_rate"`
}

// UnderstaffedDay 人手不足的日期
type UnderstaffedDay struct {
	Day      int    `json:"day"`
	Section  string `json:"section,omitempty"`
	Required int    `json:"required"`
	Actual   int    `json:"actual"`
	Shortage int    `json:"shortage"`
}

// CoverageAnalyzer 覆盖率分析器
type CoverageAnalyzer struct{}

// NewCoverageAnalyzer 创建覆盖率分析器
func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{}
}

// Analyze 按人员需求分析每日出勤覆盖
func (c *CoverageAnalyzer) Analyze(p *constraint.Problem, m *matrix.Matrix) *CoverageMetrics {
	metrics := &CoverageMetrics{
		DailyCoverage:   make([]DayCoverage, 0, p.Days()),
		SectionCoverage: make(map[string]float64),
	}
	sectionRequired := make(map[string]int)
	sectionCovered := make(map[string]int)

	for d, req := range p.Staffing {
		workers := m.WorkersOn(d)
		day := DayCoverage{Day: d + 1, Workers: workers, Required: req.Total, CoverageRate: 100}
		if req.Total > 0 {
			day.CoverageRate = rate(minInt(workers, req.Total), req.Total)
		}
		metrics.DailyCoverage = append(metrics.DailyCoverage, day)
		metrics.RequiredTotal += req.Total
		metrics.CoveredTotal += minInt(workers, req.Total)

		if workers < req.Total {
			metrics.Understaffed = append(metrics.Understaffed, UnderstaffedDay{
				Day: d + 1, Required: req.Total, Actual: workers, Shortage: req.Total - workers,
			})
		} else if req.Total > 0 && workers > req.Total {
			metrics.Overstaffed = append(metrics.Overstaffed, d+1)
		}

		sections := make([]string, 0, len(req.Sections))
		for sec := range req.Sections {
			sections = append(sections, sec)
		}
		sort.Strings(sections)
		for _, sec := range sections {
			need := req.Sections[sec]
			have := m.WorkersWhere(d, func(e int) bool { return p.Employees[e].Section == sec })
			sectionRequired[sec] += need
			sectionCovered[sec] += minInt(have, need)
			if have < need {
				metrics.Understaffed = append(metrics.Understaffed, UnderstaffedDay{
					Day: d + 1, Section: sec, Required: need, Actual: have, Shortage: need - have,
				})
			}
		}
	}

	metrics.OverallCoverage = 100
	if metrics.RequiredTotal > 0 {
		metrics.OverallCoverage = rate(metrics.CoveredTotal, metrics.RequiredTotal)
	}
	for sec, need := range sectionRequired {
		metrics.SectionCoverage[sec] = 100
		if need > 0 {
			metrics.SectionCoverage[sec] = rate(sectionCovered[sec], need)
		}
	}
	return metrics
}

// Summary 一次排班结果的统计汇总
type Summary struct {
	Fairness *FairnessMetrics `json:"fairness"`
	Coverage *CoverageMetrics `json:"coverage"`
}

// Summarize 计算公平性与覆盖率
func Summarize(p *constraint.Problem, m *matrix.Matrix) *Summary {
	return &Summary{
		Fairness: NewFairnessAnalyzer().Analyze(p, m),
		Coverage: NewCoverageAnalyzer().Analyze(p, m),
	}
}

func rate(n, total int) float64 {
	return float64(n) / float64(total) * 100
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
