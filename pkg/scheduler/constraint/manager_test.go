package constraint

import (
	"math"
	"testing"

	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/matrix"
)

func TestManager_Register(t *testing.T) {
	manager := NewManager()

	manager.Register(&MockConstraint{id: "soft1", category: CategorySoft, weight: 1})
	manager.Register(&MockConstraint{id: "hard1", category: CategoryHard, weight: 1})
	manager.Register(&MockConstraint{id: "soft2", category: CategorySoft, weight: 1})

	constraints := manager.GetAll()
	if len(constraints) != 3 {
		t.Fatalf("Expected 3 constraints, got %d", len(constraints))
	}
	// 硬约束在前，软约束保持注册顺序
	want := []string{"hard1", "soft1", "soft2"}
	for i, c := range constraints {
		if c.ID() != want[i] {
			t.Errorf("constraints[%d] = %s, want %s", i, c.ID(), want[i])
		}
	}
}

func TestManager_GetByCategory(t *testing.T) {
	manager := NewManager()

	manager.Register(&MockConstraint{id: "hard1", category: CategoryHard})
	manager.Register(&MockConstraint{id: "soft1", category: CategorySoft})

	if n := len(manager.GetByCategory(CategoryHard)); n != 1 {
		t.Errorf("Expected 1 hard constraint, got %d", n)
	}
	if n := len(manager.GetByCategory(CategorySoft)); n != 1 {
		t.Errorf("Expected 1 soft constraint, got %d", n)
	}
}

func TestManager_Evaluate(t *testing.T) {
	manager := NewManager()
	manager.Register(&MockConstraint{id: "soft", category: CategorySoft, weight: 2, raw: 3, details: 1})
	manager.Register(&MockConstraint{id: "pass", category: CategoryHard, weight: 1})

	result := manager.Evaluate(mockContext(t))

	if result.Soft != 6 {
		t.Errorf("Expected soft penalty 6, got %v", result.Soft)
	}
	if result.Hard != 0 || !result.IsFeasible() {
		t.Errorf("Expected feasible result, got hard=%v", result.Hard)
	}
	if result.Total != 6 {
		t.Errorf("Expected total 6, got %v", result.Total)
	}
	if len(result.Violations) != 1 || result.Violations[0].Penalty != 2 {
		t.Errorf("Expected one weighted violation, got %+v", result.Violations)
	}
	if len(result.Scores) != 2 {
		t.Errorf("Expected 2 scores, got %d", len(result.Scores))
	}
}

func TestManager_HardDominatesSoft(t *testing.T) {
	hard := NewManager()
	hard.Register(&MockConstraint{id: "hard", category: CategoryHard, weight: 1, raw: 1, details: 1})

	soft := NewManager()
	soft.Register(&MockConstraint{id: "soft", category: CategorySoft, weight: 1, raw: 999_999, details: 50})

	ctx := mockContext(t)
	h, s := hard.Evaluate(ctx), soft.Evaluate(ctx)
	if h.Total <= s.Total {
		t.Errorf("Expected one hard violation (%v) to outrank large soft penalty (%v)", h.Total, s.Total)
	}
	if h.Hard != 1+HardViolationFloor {
		t.Errorf("Expected hard penalty %v, got %v", 1+HardViolationFloor, h.Hard)
	}
}

func TestManager_WeightZeroStillReports(t *testing.T) {
	manager := NewManager()
	manager.Register(&MockConstraint{id: "muted", category: CategoryHard, weight: 0, raw: 5, details: 2})

	result := manager.Evaluate(mockContext(t))
	if result.Total != 0 {
		t.Errorf("Expected zero total, got %v", result.Total)
	}
	if len(result.Violations) != 2 {
		t.Errorf("Expected 2 violations, got %d", len(result.Violations))
	}
}

func TestManager_Saturation(t *testing.T) {
	manager := NewManager()
	manager.Register(&MockConstraint{id: "huge", category: CategorySoft, weight: 1e10, raw: 1e10})
	manager.Register(&MockConstraint{id: "huge2", category: CategorySoft, weight: 1, raw: math.Inf(1)})
	manager.Register(&MockConstraint{id: "nan", category: CategorySoft, weight: 1, raw: math.NaN()})
	manager.Register(&MockConstraint{id: "neg", category: CategorySoft, weight: 1, raw: -5})

	result := manager.Evaluate(mockContext(t))
	if result.Total != MaxPenalty {
		t.Errorf("Expected saturated total %v, got %v", MaxPenalty, result.Total)
	}
	for _, sc := range result.Scores {
		if sc.Penalty < 0 || sc.Penalty > MaxPenalty {
			t.Errorf("%s penalty out of range: %v", sc.ConstraintID, sc.Penalty)
		}
	}
}

func TestManager_Calibrate(t *testing.T) {
	p := mockProblem(t)

	manager := NewManager()
	if manager.HardFloor() != HardViolationFloor {
		t.Fatalf("Expected default floor %v, got %v", HardViolationFloor, manager.HardFloor())
	}
	manager.Register(&MockConstraint{id: "hard", category: CategoryHard, weight: 1, raw: 1, details: 1})
	manager.Register(&MockConstraint{id: "soft", category: CategorySoft, weight: 1e5, raw: 30})
	manager.Register(&MockConstraint{id: "muted", category: CategorySoft, weight: 0, raw: 1e12})

	floor, ok := manager.Calibrate(p)
	if !ok {
		t.Fatal("Expected calibration to succeed")
	}
	if floor != 3e6+1 || manager.HardFloor() != floor {
		t.Errorf("Expected floor %v, got %v (HardFloor %v)", 3e6+1, floor, manager.HardFloor())
	}

	// 单次硬违反仍压过软约束上界
	result := manager.Evaluate(mockContext(t))
	if result.Hard <= 3e6 {
		t.Errorf("Expected hard penalty above soft bound, got %v", result.Hard)
	}
}

func TestManager_CalibrateSmallSoftBound(t *testing.T) {
	manager := NewManager()
	manager.Register(&MockConstraint{id: "hard", category: CategoryHard, weight: 1})
	manager.Register(&MockConstraint{id: "soft", category: CategorySoft, weight: 1, raw: 10})

	floor, ok := manager.Calibrate(mockProblem(t))
	if !ok || floor != HardViolationFloor {
		t.Errorf("Expected floor %v, got %v ok=%v", HardViolationFloor, floor, ok)
	}
}

func TestManager_CalibrateOverflow(t *testing.T) {
	manager := NewManager()
	manager.Register(&MockConstraint{id: "hard", category: CategoryHard, weight: 1})
	manager.Register(&MockConstraint{id: "soft", category: CategorySoft, weight: 1e10, raw: 1e10})

	if _, ok := manager.Calibrate(mockProblem(t)); ok {
		t.Error("Expected calibration to fail when soft bound saturates")
	}
	// 没有硬约束时无需保证
	soft := NewManager()
	soft.Register(&MockConstraint{id: "soft", category: CategorySoft, weight: 1e10, raw: 1e10})
	if _, ok := soft.Calibrate(mockProblem(t)); !ok {
		t.Error("Expected soft-only manager to calibrate")
	}
	if manager.HardFloor() != HardViolationFloor {
		t.Errorf("Failed calibration must keep floor, got %v", manager.HardFloor())
	}
}

func TestManager_Summary(t *testing.T) {
	manager := NewManager()
	manager.Register(&MockConstraint{id: "h", category: CategoryHard})
	manager.Register(&MockConstraint{id: "s1", category: CategorySoft})
	manager.Register(&MockConstraint{id: "s2", category: CategorySoft})

	summary := manager.Summary()
	if summary["total"] != 3 || summary["hard"] != 1 || summary["soft"] != 2 || summary["hard_floor"] != HardViolationFloor {
		t.Errorf("Unexpected summary %v", summary)
	}
}

func TestNewContext_DimensionMismatch(t *testing.T) {
	p := mockProblem(t)
	if _, err := NewContext(matrix.New(2, 3), p); err == nil {
		t.Error("Expected structural error for wrong dimensions")
	}
	if _, err := NewContext(nil, p); err == nil {
		t.Error("Expected error for nil matrix")
	}
}

// MockConstraint 测试用约束
type MockConstraint struct {
	id       string
	category Category
	weight   float64
	raw      float64
	details  int
}

func (m *MockConstraint) ID() string         { return m.id }
func (m *MockConstraint) Name() string       { return m.id }
func (m *MockConstraint) Scope() Scope       { return ScopePattern }
func (m *MockConstraint) Category() Category { return m.category }
func (m *MockConstraint) Weight() float64    { return m.weight }

func (m *MockConstraint) Evaluate(_ *Context) (float64, []model.Violation) {
	var out []model.Violation
	for i := 0; i < m.details; i++ {
		out = append(out, model.Violation{Message: m.id, Penalty: 1})
	}
	return m.raw, out
}

func (m *MockConstraint) MaxPenalty(_ *Problem) float64 { return m.raw }

func mockProblem(t *testing.T) *Problem {
	t.Helper()
	p, err := NewProblem(&model.ShiftInput{
		Employees: []model.Employee{{ID: "a", Name: "A"}},
		Calendar:  model.CalendarSpec{Year: 2024, Month: 1, Days: 3},
	})
	if err != nil {
		t.Fatalf("NewProblem: %v", err)
	}
	return p
}

func mockContext(t *testing.T) *Context {
	t.Helper()
	p := mockProblem(t)
	ctx, err := NewContext(p.Base, p)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return ctx
}
