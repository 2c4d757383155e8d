package constraint

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/paiban/gashift/pkg/errors"
	"github.com/paiban/gashift/pkg/model"
)

// Factory 用已校验的参数构造约束实例。
// 引用不存在的员工、日期、分区时通过 Spec.Errorf 报告，返回值会被丢弃。
type Factory func(s *Spec, p *Problem) Constraint

// Template 约束模板
type Template struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Scope         Scope      `json:"scope"`
	Category      Category   `json:"category"`
	DefaultWeight float64    `json:"default_weight"`
	Params        []ParamDef `json:"params"`
	New           Factory    `json:"-"`
}

// Spec 一次编译所需的全部信息
type Spec struct {
	Template *Template
	Category Category
	Weight   float64
	Params   Params

	field string
	ve    *errors.ValidationErrors
}

// Errorf 报告参数错误
func (s *Spec) Errorf(param, format string, args ...interface{}) {
	s.ve.Addf(s.field+".params."+param, format, args...)
}

// Registry 模板注册表：模板 ID → 构造器、硬/软属性、默认权重
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]*Template)}
}

// Register 注册模板，同 ID 覆盖
func (r *Registry) Register(t Template) error {
	if t.ID == "" {
		return fmt.Errorf("模板 ID 不能为空")
	}
	if t.New == nil {
		return fmt.Errorf("模板 %s 缺少构造器", t.ID)
	}
	if t.Category != CategoryHard && t.Category != CategorySoft {
		return fmt.Errorf("模板 %s 类别无效: %q", t.ID, t.Category)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tt := t
	r.templates[t.ID] = &tt
	return nil
}

// MustRegister 注册失败时 panic，用于内置模板
func (r *Registry) MustRegister(t Template) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Get 获取模板
func (r *Registry) Get(id string) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[id]
	return t, ok
}

// IDs 按字母序返回所有模板 ID
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// List 按 ID 排序返回所有模板
func (r *Registry) List() []Template {
	ids := r.IDs()
	out := make([]Template, 0, len(ids))
	for _, id := range ids {
		t, _ := r.Get(id)
		out = append(out, *t)
	}
	return out
}

// ListByScope 按作用范围筛选
func (r *Registry) ListByScope(scope Scope) []Template {
	var out []Template
	for _, t := range r.List() {
		if t.Scope == scope {
			out = append(out, t)
		}
	}
	return out
}

// CheckIDs 只检查模板 ID，用于输入本身无效、无法完整编译时仍能报告未知模板
func (r *Registry) CheckIDs(configs []model.ConstraintConfig) *errors.ValidationErrors {
	ve := &errors.ValidationErrors{}
	for i, cfg := range configs {
		if !cfg.IsEnabled() {
			continue
		}
		r.checkID(ve, fmt.Sprintf("constraints[%d]", i), cfg.TemplateID)
	}
	return ve
}

func (r *Registry) checkID(ve *errors.ValidationErrors, field, id string) (*Template, bool) {
	if id == "" {
		ve.Add(field+".template_id", "模板 ID 不能为空")
		return nil, false
	}
	t, ok := r.Get(id)
	if !ok {
		ve.Addf(field+".template_id", "未知约束模板 %q，可用: %s", id, strings.Join(r.IDs(), ", "))
		return nil, false
	}
	return t, true
}

// Compile 校验并编译约束配置为管理器。
// 未知模板、参数类型/范围错误、引用不存在的对象会全部收集后一次返回。
func (r *Registry) Compile(configs []model.ConstraintConfig, p *Problem) (*Manager, error) {
	ve := &errors.ValidationErrors{}
	m := NewManager()

	for i, cfg := range configs {
		if !cfg.IsEnabled() {
			continue
		}
		field := fmt.Sprintf("constraints[%d]", i)
		t, ok := r.checkID(ve, field, cfg.TemplateID)
		if !ok {
			continue
		}

		spec := &Spec{
			Template: t,
			Category: t.Category,
			Weight:   t.DefaultWeight,
			Params:   make(Params, len(t.Params)),
			field:    field,
			ve:       ve,
		}
		if cfg.Weight != nil {
			w := *cfg.Weight
			if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				ve.Addf(field+".weight", "权重必须是非负有限数，得到 %v", w)
				continue
			}
			spec.Weight = w
		}
		if cfg.Hard != nil {
			spec.Category = CategorySoft
			if *cfg.Hard {
				spec.Category = CategoryHard
			}
		}

		before := len(ve.Errors)
		known := make(map[string]bool, len(t.Params))
		for _, def := range t.Params {
			known[def.Name] = true
			raw, given := cfg.Params[def.Name]
			if !given {
				raw = def.Default
			}
			v, err := def.normalize(raw)
			if err != nil {
				spec.Errorf(def.Name, "%v", err)
				continue
			}
			spec.Params[def.Name] = v
		}
		for _, name := range sortedParamNames(cfg.Params) {
			if !known[name] {
				spec.Errorf(name, "模板 %s 没有该参数", t.ID)
			}
		}
		if len(ve.Errors) > before {
			continue
		}

		c := t.New(spec, p)
		if len(ve.Errors) > before || c == nil {
			continue
		}
		m.Register(c)
	}

	if !ve.HasErrors() {
		if bound, ok := m.Calibrate(p); !ok {
			ve.Addf("constraints", "软约束惩罚上界 %g 过大，硬约束无法保证优先，请降低权重", bound)
		}
	}
	if ve.HasErrors() {
		return nil, ve.ToAppError()
	}
	return m, nil
}

func sortedParamNames(params map[string]interface{}) []string {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
