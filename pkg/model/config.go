package model

// GAConfig 遗传算法参数
type GAConfig struct {
	GenerationCount int     `json:"generation_count" yaml:"generation_count" validate:"gt=0"`
	PopulationSize  int     `json:"population_size" yaml:"population_size" validate:"gte=2"`
	EliteCount      int     `json:"elite_count" yaml:"elite_count" validate:"gte=0,ltfield=PopulationSize"`
	CrossoverRate   float64 `json:"crossover_rate" yaml:"crossover_rate" validate:"gte=0,lte=1"`
	MutationRate    float64 `json:"mutation_rate" yaml:"mutation_rate" validate:"gte=0,lte=1"`
	// RandomSeed 为空时使用时钟种子，并在结果中回报
	RandomSeed *int64 `json:"random_seed,omitempty" yaml:"random_seed,omitempty"`

	TournamentSize int `json:"tournament_size" yaml:"tournament_size" validate:"gte=1"`
	// Workers 评分并发数，0 表示 runtime.NumCPU()
	Workers int `json:"workers" yaml:"workers" validate:"gte=0"`
	// HolidayRepair 每个新个体按合同休息天数修正
	HolidayRepair bool `json:"holiday_repair" yaml:"holiday_repair"`
	// LocalSearchIterations 结束后对最优解做模拟退火精修的迭代次数，0 关闭
	LocalSearchIterations int `json:"local_search_iterations" yaml:"local_search_iterations" validate:"gte=0"`
	// GreedySeed 初始种群的第一个个体由贪心构造
	GreedySeed bool `json:"greedy_seed" yaml:"greedy_seed"`
}

// DefaultGAConfig 默认参数
func DefaultGAConfig() GAConfig {
	return GAConfig{
		GenerationCount: 50,
		PopulationSize:  100,
		EliteCount:      20,
		CrossoverRate:   0.5,
		MutationRate:    0.05,
		TournamentSize:  3,
		HolidayRepair:   true,
	}
}

// WithSeed 返回设置了种子的副本
func (c GAConfig) WithSeed(seed int64) GAConfig {
	c.RandomSeed = &seed
	return c
}

// ConstraintConfig 单条约束配置
type ConstraintConfig struct {
	TemplateID string `json:"template_id" yaml:"template_id"`
	// Enabled 为空视为启用
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// Weight 覆盖模板默认权重；0 表示不计分但仍输出违反明细
	Weight *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	// Hard 覆盖模板的硬/软约束属性
	Hard   *bool                  `json:"hard,omitempty" yaml:"hard,omitempty"`
	Params map[string]interface{} `json:"params,omitempty" yaml:"params,omitempty"`
}

// IsEnabled 是否启用
func (c ConstraintConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Bool 返回布尔指针
func Bool(v bool) *bool {
	return &v
}

// Float 返回浮点指针
func Float(v float64) *float64 {
	return &v
}
