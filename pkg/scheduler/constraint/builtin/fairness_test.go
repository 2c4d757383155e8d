package builtin

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualWeekendDistribution(t *testing.T) {
	// 1 月 6、7 日为周末
	p := newTestProblem(t, 7, emp("a"), emp("b"))
	codes := [][]int{row("WWWWWOO"), row("WWWWWWW")}

	c := compileOne(t, p, "equal_weekend_distribution", nil)
	penalty, _ := evaluate(t, c, p, codes)
	assert.Zero(t, penalty, "差值 2 在默认容差内")

	c = compileOne(t, p, "equal_weekend_distribution", map[string]interface{}{"max_diff": 0})
	penalty, vs := evaluate(t, c, p, codes)
	assert.Equal(t, 6.0, penalty)
	require.Len(t, vs, 1)
	assert.Equal(t, 0, vs[0].Day)

	single := newTestProblem(t, 7, emp("a"))
	c = compileOne(t, single, "equal_weekend_distribution", map[string]interface{}{"max_diff": 0})
	penalty, _ = evaluate(t, c, single, [][]int{row("WWWWWOO")})
	assert.Zero(t, penalty)
}

func TestEqualHolidayDistribution(t *testing.T) {
	// 前 7 天恰好覆盖一周各天
	p := newTestProblem(t, 7, emp("a"), emp("b"), emp("c"))
	c := compileOne(t, p, "equal_holiday_distribution", nil)

	penalty, vs := evaluate(t, c, p, [][]int{row("OWWWWWW"), row("WWWWWWW"), row("OOOOOOO")})
	assert.InDelta(t, math.Sqrt(6)/7, penalty, 1e-9)
	require.Len(t, vs, 1)
	assert.Equal(t, "a", vs[0].EmployeeID)
}
