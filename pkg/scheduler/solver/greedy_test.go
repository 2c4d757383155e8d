package solver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/constraint"
	"github.com/paiban/gashift/pkg/scheduler/matrix"
)

func problem(t *testing.T, staffing int, emps ...model.Employee) *constraint.Problem {
	t.Helper()
	p, err := constraint.NewProblem(&model.ShiftInput{
		Employees:       emps,
		Calendar:        model.CalendarSpec{Year: 2024, Month: 1, Days: 7},
		DefaultStaffing: staffing,
	})
	require.NoError(t, err)
	return p
}

func rows(m *matrix.Matrix) []string {
	out := make([]string, m.Rows())
	for e := range out {
		for d := 0; d < m.Cols(); d++ {
			switch m.CodeAt(e, d) {
			case model.CellOpen:
				out[e] += "W"
			case model.CellAssignedOff:
				out[e] += "O"
			default:
				out[e] += "F"
			}
		}
	}
	return out
}

func TestGreedySolver_Solve(t *testing.T) {
	s := NewGreedySolver()
	assert.Equal(t, "GreedySolver", s.Name())

	tests := []struct {
		name     string
		staffing int
		emps     []model.Employee
		want     []string
	}{
		{
			name:     "surplus spread over days",
			staffing: 2,
			emps:     []model.Employee{{ID: "a"}, {ID: "b"}, {ID: "c"}},
			want:     []string{"OWWWWWW", "WOWWWWW", "WWOWWWW"},
		},
		{
			name:     "no surplus falls back to least short day",
			staffing: 3,
			emps:     []model.Employee{{ID: "a"}, {ID: "b"}, {ID: "c"}},
			want:     []string{"OWWWWWW", "WOWWWWW", "WWOWWWW"},
		},
		{
			name:     "off yesterday breaks ties",
			staffing: 1,
			emps:     []model.Employee{{ID: "a", RequiredHolidays: 2}, {ID: "b", RequiredHolidays: 2}},
			want:     []string{"OWWOWWW", "WOOWWWW"},
		},
		{
			name:     "fixed cells count toward quota",
			staffing: 1,
			emps:     []model.Employee{{ID: "a", RequiredHolidays: 1, UnavailableDays: []int{4}}, {ID: "b", RequiredHolidays: 1}},
			want:     []string{"WWWFWWW", "OWWWWWW"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := s.Solve(context.Background(), problem(t, tt.staffing, tt.emps...))
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows(m))
		})
	}
}

func TestGreedySolver_Deterministic(t *testing.T) {
	p := problem(t, 2, model.Employee{ID: "a", RequiredHolidays: 3}, model.Employee{ID: "b"}, model.Employee{ID: "c"})
	s := NewGreedySolver()
	assert.True(t, s.Seed(p).Build().Equal(s.Seed(p).Build()))
}

func TestGreedySolver_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewGreedySolver().Solve(ctx, problem(t, 1, model.Employee{ID: "a"}))
	assert.ErrorIs(t, err, context.Canceled)
}
