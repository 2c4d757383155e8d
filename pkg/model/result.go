package model

// Severity 违反严重程度
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Violation 约束违反记录
type Violation struct {
	ConstraintID string   `json:"constraint_id"`
	Severity     Severity `json:"severity"`
	Message      string   `json:"message"`
	EmployeeID   string   `json:"employee_id,omitempty"`
	Day          int      `json:"day,omitempty"` // 1 起始，0 表示整月
	Penalty      float64  `json:"penalty"`
}

// ShiftResult 排班输出
type ShiftResult struct {
	RunID string `json:"run_id"`
	// BestSchedule 行顺序与 EmployeeIDs 一致
	BestSchedule      [][]int     `json:"best_schedule"`
	EmployeeIDs       []string    `json:"employee_ids"`
	BestScore         float64     `json:"best_score"`
	HardPenalty       float64     `json:"hard_penalty"`
	SoftPenalty       float64     `json:"soft_penalty"`
	// GenerationHistory 每代结束时截至该代的全局最优惩罚，而非该代种群最优，因此不增
	GenerationHistory []float64   `json:"generation_history"`
	Generations       int         `json:"generations"`
	Seed              int64       `json:"seed"`
	Cancelled         bool        `json:"cancelled,omitempty"`
	Violations        []Violation `json:"violations"`
	DurationMS        int64       `json:"duration_ms"`
}

// Feasible 硬约束全部满足
func (r *ShiftResult) Feasible() bool {
	return r.HardPenalty == 0
}
