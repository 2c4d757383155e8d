package optimizer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/gashift/pkg/model"
	"github.com/paiban/gashift/pkg/scheduler/constraint"
	"github.com/paiban/gashift/pkg/scheduler/constraint/builtin"
)

func quotaProblem(t *testing.T) *constraint.Problem {
	t.Helper()
	p, err := constraint.NewProblem(&model.ShiftInput{
		Employees: []model.Employee{
			{ID: "a", RequiredHolidays: 10, UnavailableDays: []int{1, 2}},
			{ID: "b", VacationDays: 3},
			{ID: "c"},
		},
		Calendar:        model.CalendarSpec{Year: 2024, Month: 4},
		DefaultStaffing: 2,
	})
	require.NoError(t, err)
	return p
}

func TestGenerateInitial_Reproducible(t *testing.T) {
	p := quotaProblem(t)
	ops := NewOperators(model.DefaultGAConfig(), p)

	a := GenerateInitial(p, 20, ops, rand.New(rand.NewSource(99)))
	b := GenerateInitial(p, 20, ops, rand.New(rand.NewSource(99)))
	require.Len(t, a, 20)
	for i := range a {
		assert.True(t, a[i].Matrix().Equal(b[i].Matrix()), "个体 %d 不一致", i)
		assertFixedPreserved(t, p, a[i].Matrix())
	}
}

func TestGenerateInitial_QuotaBias(t *testing.T) {
	p := quotaProblem(t)
	ops := &Operators{problem: p}
	pop := GenerateInitial(p, 200, ops, rand.New(rand.NewSource(1)))

	sums := make([]float64, len(p.Employees))
	for _, ind := range pop {
		for e := range p.Employees {
			sums[e] += float64(ind.Matrix().OffCount(e))
		}
	}
	n := float64(len(pop))
	assert.InDelta(t, 10, sums[0]/n, 1.0, "按合同休息天数")
	assert.InDelta(t, 3, sums[1]/n, 1.0, "回退到假期余额")
	assert.InDelta(t, 4, sums[2]/n, 1.0, "回退到 天数/7")
}

func TestGenerateInitial_RepairHitsQuota(t *testing.T) {
	p := quotaProblem(t)
	ops := &Operators{Repair: true, problem: p}
	for _, ind := range GenerateInitial(p, 30, ops, rand.New(rand.NewSource(2))) {
		assert.Equal(t, 10, ind.Matrix().OffCount(0))
	}
}

func TestEvolution_FixedCellsNeverChange(t *testing.T) {
	p := quotaProblem(t)
	mgr, err := builtin.NewRegistry().Compile(builtin.RestaurantSet(), p)
	require.NoError(t, err)

	cfg := model.DefaultGAConfig()
	cfg.MutationRate = 0.3
	ops := NewOperators(cfg, p)
	ev := NewParallelEvaluator(2, mgr, p)
	rng := rand.New(rand.NewSource(5))

	pop := GenerateInitial(p, 12, ops, rng)
	for g := 0; g < 8; g++ {
		_, err := ev.EvaluateBatch(pop)
		require.NoError(t, err)
		pop.Sort()
		for _, ind := range pop {
			assertFixedPreserved(t, p, ind.Matrix())
		}
		pop = BreedNext(pop, 3, ops, rng)
	}
}

func TestParallelEvaluator_WorkerCountIndependent(t *testing.T) {
	p := quotaProblem(t)
	mgr, err := builtin.NewRegistry().Compile(builtin.RestaurantSet(), p)
	require.NoError(t, err)
	ops := NewOperators(model.DefaultGAConfig(), p)

	one := GenerateInitial(p, 16, ops, rand.New(rand.NewSource(8)))
	many := GenerateInitial(p, 16, ops, rand.New(rand.NewSource(8)))

	n, err := NewParallelEvaluator(1, mgr, p).EvaluateBatch(one)
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	_, err = NewParallelEvaluator(8, mgr, p).EvaluateBatch(many)
	require.NoError(t, err)

	for i := range one {
		assert.Equal(t, one[i].Penalty(), many[i].Penalty())
	}

	n, err = NewParallelEvaluator(4, mgr, p).EvaluateBatch(one)
	require.NoError(t, err)
	assert.Zero(t, n, "已评分的个体不再重复评分")
}

func TestPopulation_SortAndBest(t *testing.T) {
	a, b, c := scored(5), scored(1), scored(1)
	pop := Population{a, b, c, NewIndividual(nil)}
	assert.Same(t, b, pop.Best())

	pop.Sort()
	assert.Same(t, b, pop[0])
	assert.Same(t, c, pop[1], "稳定排序")
	assert.Same(t, a, pop[2])
	assert.False(t, pop[3].Scored())
	assert.Nil(t, Population{}.Best())
}

func TestGenerateInitial_GreedySeed(t *testing.T) {
	p := quotaProblem(t)
	cfg := model.DefaultGAConfig()
	cfg.GreedySeed = true
	cfg.HolidayRepair = false
	ops := NewOperators(cfg, p)
	require.NotNil(t, ops.Seeder)

	a := GenerateInitial(p, 5, ops, rand.New(rand.NewSource(1)))
	b := GenerateInitial(p, 5, ops, rand.New(rand.NewSource(2)))
	assert.True(t, a[0].Matrix().Equal(b[0].Matrix()), "贪心个体与随机种子无关")
	assertFixedPreserved(t, p, a[0].Matrix())
	assert.Equal(t, 10, a[0].Matrix().OffCount(0))

	assert.Nil(t, NewOperators(model.DefaultGAConfig(), p).Seeder)
}
