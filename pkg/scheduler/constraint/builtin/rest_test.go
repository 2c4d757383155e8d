package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/gashift/pkg/model"
)

func TestMaxConsecutiveWork(t *testing.T) {
	p := newTestProblem(t, 8, emp("a"))
	c := compileOne(t, p, "max_consecutive_work", nil)

	tests := []struct {
		name        string
		row         string
		wantPenalty float64
		wantCount   int
	}{
		{"未超限", "WWWWWWOW", 0, 0},
		{"连续8天", "WWWWWWWW", 20, 1},
		{"刚好7天", "OWWWWWWW", 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			penalty, vs := evaluate(t, c, p, [][]int{row(tt.row)})
			assert.Equal(t, tt.wantPenalty, penalty)
			assert.Len(t, vs, tt.wantCount)
			for _, v := range vs {
				assert.Equal(t, model.SeverityError, v.Severity)
				assert.Equal(t, "a", v.EmployeeID)
			}
		})
	}
}

func TestRestAfterConsecutiveWork(t *testing.T) {
	p := newTestProblem(t, 7, emp("a"))
	c := compileOne(t, p, "rest_after_consecutive_work", nil)

	penalty, vs := evaluate(t, c, p, [][]int{row("WWWWWWW")})
	assert.Equal(t, 8.0, penalty)
	require.Len(t, vs, 1)
	assert.Equal(t, 6, vs[0].Day)

	penalty, vs = evaluate(t, c, p, [][]int{row("WWWWWOW")})
	assert.Zero(t, penalty)
	assert.Empty(t, vs)
}

func TestMinDaysOffPerWeek(t *testing.T) {
	p := newTestProblem(t, 8, emp("a"))
	c := compileOne(t, p, "min_days_off_per_week", nil)

	penalty, vs := evaluate(t, c, p, [][]int{row("WWWWWWWW")})
	assert.Equal(t, 16.0, penalty)
	assert.Len(t, vs, 2)

	// 第 4 天休息覆盖两个窗口
	penalty, _ = evaluate(t, c, p, [][]int{row("WWWOWWWW")})
	assert.Zero(t, penalty)

	short := newTestProblem(t, 5, emp("a"))
	c = compileOne(t, short, "min_days_off_per_week", nil)
	penalty, _ = evaluate(t, c, short, [][]int{row("WWWWW")})
	assert.Zero(t, penalty, "不足 7 天不检查")
}

func TestWeekendRest(t *testing.T) {
	// 1 月 6、7、13、14 日为周末
	p := newTestProblem(t, 14, emp("a"))
	c := compileOne(t, p, "weekend_rest", nil)

	penalty, vs := evaluate(t, c, p, [][]int{row("WWWWWWWWWWWWWW")})
	assert.Equal(t, 10.0, penalty)
	require.Len(t, vs, 1)
	assert.Equal(t, 0, vs[0].Day, "整月违反不对应具体日期")

	penalty, _ = evaluate(t, c, p, [][]int{row("WWWWWOWWWWWWWW")})
	assert.Equal(t, 5.0, penalty)

	penalty, _ = evaluate(t, c, p, [][]int{row("WWWWWOOWWWWWWW")})
	assert.Zero(t, penalty)
}

func TestHolidayCount(t *testing.T) {
	a := emp("a")
	a.RequiredHolidays = 2
	p := newTestProblem(t, 7, a, emp("b"))
	c := compileOne(t, p, "holiday_count", nil)

	penalty, vs := evaluate(t, c, p, [][]int{row("OWOWOWW"), row("WWWWWWW")})
	assert.Equal(t, 10.0, penalty)
	require.Len(t, vs, 1)
	assert.Equal(t, "a", vs[0].EmployeeID)

	penalty, _ = evaluate(t, c, p, [][]int{row("OWWWOWW"), row("WWWWWWW")})
	assert.Zero(t, penalty)
}

func TestVacationDaysLimit(t *testing.T) {
	a := emp("a")
	a.VacationDays = 1
	a.PreferredDaysOff = []int{1, 2}
	p := newTestProblem(t, 4, a)
	c := compileOne(t, p, "vacation_days_limit", nil)

	penalty, vs := evaluate(t, c, p, p.Base.Codes())
	assert.Equal(t, 20.0, penalty)
	assert.Len(t, vs, 1)
}

func TestUnavailableDayHard(t *testing.T) {
	a := emp("a")
	a.PreferredDaysOff = []int{1}
	a.UnavailableDays = []int{3}
	p := newTestProblem(t, 4, a)
	c := compileOne(t, p, "unavailable_day_hard", nil)

	penalty, vs := evaluate(t, c, p, p.Base.Codes())
	assert.Zero(t, penalty)
	assert.Empty(t, vs)

	tampered := p.Base.Codes()
	tampered[0][0] = int(model.CellOpen)
	tampered[0][2] = int(model.CellWishOff)
	penalty, vs = evaluate(t, c, p, tampered)
	assert.Equal(t, 2000.0, penalty)
	require.Len(t, vs, 2)
	assert.Equal(t, 1, vs[0].Day)
	assert.Equal(t, 3, vs[1].Day)
}
