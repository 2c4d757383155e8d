package constraint

import (
	"math"
	"sort"
	"sync"

	"github.com/paiban/gashift/pkg/logger"
	"github.com/paiban/gashift/pkg/model"
)

// Manager 约束管理器，持有一次运行所启用的约束实例。
// 运行期间只读，可被多个评分 goroutine 并发调用 Evaluate。
type Manager struct {
	constraints []Constraint
	hardFloor   float64
	mu          sync.RWMutex
	logger      *logger.SchedulerLogger
}

// NewManager 创建约束管理器
func NewManager() *Manager {
	return &Manager{
		constraints: make([]Constraint, 0),
		hardFloor:   HardViolationFloor,
		logger:      logger.NewSchedulerLogger(),
	}
}

// SetLogger 替换日志器
func (m *Manager) SetLogger(l *logger.SchedulerLogger) {
	m.mu.Lock()
	m.logger = l
	m.mu.Unlock()
}

// Register 注册约束。同一模板可以注册多个实例（例如不同日期的人数要求）。
// 硬约束排在前面，同类别保持注册顺序。
func (m *Manager) Register(c Constraint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.constraints = append(m.constraints, c)
	sort.SliceStable(m.constraints, func(i, j int) bool {
		ci, cj := m.constraints[i], m.constraints[j]
		return ci.Category() == CategoryHard && cj.Category() != CategoryHard
	})
}

// GetAll 获取所有约束
func (m *Manager) GetAll() []Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Constraint, len(m.constraints))
	copy(result, m.constraints)
	return result
}

// GetByCategory 按类别获取约束
func (m *Manager) GetByCategory(cat Category) []Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Constraint
	for _, c := range m.constraints {
		if c.Category() == cat {
			result = append(result, c)
		}
	}
	return result
}

// Calibrate 按软约束惩罚上界设置硬约束基础惩罚：max(HardViolationFloor, Σ 权重 × 上界 + 1)。
// 任一硬约束违反的排班因此排在所有可行排班之后。存在硬约束且上界达到 MaxPenalty 时无法保证，返回 false。
func (m *Manager) Calibrate(p *Problem) (float64, bool) {
	if len(m.GetByCategory(CategoryHard)) == 0 {
		return m.HardFloor(), true
	}
	bound := 0.0
	for _, c := range m.GetByCategory(CategorySoft) {
		bound = SatAdd(bound, SatMul(Saturate(c.MaxPenalty(p)), c.Weight()))
	}
	floor := math.Max(HardViolationFloor, bound+1)
	if floor >= MaxPenalty {
		return bound, false
	}
	m.mu.Lock()
	m.hardFloor = floor
	m.mu.Unlock()
	return floor, true
}

// HardFloor 每次硬约束违反附加的基础惩罚
func (m *Manager) HardFloor() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hardFloor
}

// Evaluate 评估所有约束：总惩罚 = Σ 权重 × 原始惩罚，硬约束每次违反另加 HardFloor。
// 权重为 0 的约束不计分，但违反明细照常返回。
func (m *Manager) Evaluate(ctx *Context) *Result {
	m.mu.RLock()
	constraints := m.constraints
	floor := m.hardFloor
	m.mu.RUnlock()

	result := &Result{
		Violations: make([]model.Violation, 0),
		Scores:     make([]Score, 0, len(constraints)),
	}

	for _, c := range constraints {
		raw, details := c.Evaluate(ctx)
		if raw < 0 || math.IsNaN(raw) {
			raw = 0
		}
		raw = Saturate(raw)
		w := c.Weight()
		hard := c.Category() == CategoryHard

		penalty := SatMul(raw, w)
		if hard && penalty > 0 {
			occurrences := len(details)
			if occurrences == 0 {
				occurrences = 1
			}
			penalty = SatAdd(penalty, SatMul(floor, float64(occurrences)))
		}

		for _, d := range details {
			if d.ConstraintID == "" {
				d.ConstraintID = c.ID()
			}
			d.Penalty = SatMul(d.Penalty, w)
			result.Violations = append(result.Violations, d)
		}

		if hard {
			result.Hard = SatAdd(result.Hard, penalty)
		} else {
			result.Soft = SatAdd(result.Soft, penalty)
		}
		result.Scores = append(result.Scores, Score{
			ConstraintID: c.ID(),
			Name:         c.Name(),
			Category:     c.Category(),
			Weight:       w,
			Raw:          raw,
			Penalty:      penalty,
			Violations:   len(details),
		})
	}

	result.Total = SatAdd(result.Hard, result.Soft)
	return result
}

// Explain 评估并把违反明细写入调试日志，用于最终结果
func (m *Manager) Explain(ctx *Context) *Result {
	result := m.Evaluate(ctx)
	m.mu.RLock()
	l := m.logger
	m.mu.RUnlock()
	for _, v := range result.Violations {
		l.ConstraintViolation(v.ConstraintID, v.Message, v.Penalty)
	}
	return result
}

// Count 返回约束数量
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.constraints)
}

// Summary 返回约束摘要
func (m *Manager) Summary() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hard := 0
	soft := 0
	for _, c := range m.constraints {
		if c.Category() == CategoryHard {
			hard++
		} else {
			soft++
		}
	}

	return map[string]interface{}{
		"total":      len(m.constraints),
		"hard":       hard,
		"soft":       soft,
		"hard_floor": m.hardFloor,
	}
}
