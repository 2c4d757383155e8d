package constraint

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParamType 参数类型
type ParamType string

const (
	ParamInt        ParamType = "int"
	ParamFloat      ParamType = "float"
	ParamBool       ParamType = "bool"
	ParamString     ParamType = "string"
	ParamIntList    ParamType = "int_list"    // 例如日期列表，可写作 "1,15,30"
	ParamStringList ParamType = "string_list" // 例如分区列表，可写作 "prep,lunch"
)

// ParamDef 模板参数定义
type ParamDef struct {
	Name        string      `json:"name"`
	Type        ParamType   `json:"type"`
	Default     interface{} `json:"default"`
	Min         *float64    `json:"min,omitempty"`
	Max         *float64    `json:"max,omitempty"`
	Description string      `json:"description"`
}

// Bound 返回数值边界指针
func Bound(v float64) *float64 {
	return &v
}

// Params 已归一化的参数表，值类型与 ParamDef.Type 一一对应
type Params map[string]interface{}

// Int 读取整数参数
func (p Params) Int(name string) int {
	v, _ := p[name].(int)
	return v
}

// Float 读取浮点参数
func (p Params) Float(name string) float64 {
	v, _ := p[name].(float64)
	return v
}

// Bool 读取布尔参数
func (p Params) Bool(name string) bool {
	v, _ := p[name].(bool)
	return v
}

// String 读取字符串参数
func (p Params) String(name string) string {
	v, _ := p[name].(string)
	return v
}

// Ints 读取整数列表参数
func (p Params) Ints(name string) []int {
	v, _ := p[name].([]int)
	return v
}

// Strings 读取字符串列表参数
func (p Params) Strings(name string) []string {
	v, _ := p[name].([]string)
	return v
}

// normalize 把配置文件中的原始值转换为定义的类型并检查边界
func (d ParamDef) normalize(raw interface{}) (interface{}, error) {
	switch d.Type {
	case ParamInt:
		f, err := toFloat(raw)
		if err != nil {
			return nil, err
		}
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("需要整数，得到 %v", raw)
		}
		if err := d.checkBounds(f); err != nil {
			return nil, err
		}
		return int(f), nil
	case ParamFloat:
		f, err := toFloat(raw)
		if err != nil {
			return nil, err
		}
		if err := d.checkBounds(f); err != nil {
			return nil, err
		}
		return f, nil
	case ParamBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("需要布尔值，得到 %q", v)
			}
			return b, nil
		}
		return nil, fmt.Errorf("需要布尔值，得到 %T", raw)
	case ParamString:
		switch v := raw.(type) {
		case string:
			return v, nil
		case nil:
			return "", nil
		}
		return fmt.Sprint(raw), nil
	case ParamIntList:
		items, err := toList(raw)
		if err != nil {
			return nil, err
		}
		out := make([]int, 0, len(items))
		for _, it := range items {
			f, err := toFloat(it)
			if err != nil || f != math.Trunc(f) {
				return nil, fmt.Errorf("列表元素 %v 不是整数", it)
			}
			out = append(out, int(f))
		}
		return out, nil
	case ParamStringList:
		items, err := toList(raw)
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, fmt.Sprint(it))
		}
		return out, nil
	}
	return nil, fmt.Errorf("未知参数类型 %s", d.Type)
}

func (d ParamDef) checkBounds(f float64) error {
	if d.Min != nil && f < *d.Min {
		return fmt.Errorf("值 %v 小于下限 %v", f, *d.Min)
	}
	if d.Max != nil && f > *d.Max {
		return fmt.Errorf("值 %v 大于上限 %v", f, *d.Max)
	}
	return nil
}

func toFloat(raw interface{}) (float64, error) {
	var f float64
	switch v := raw.(type) {
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case float64:
		f = v
	case float32:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("需要数值，得到 %q", v)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("需要数值，得到 %T", raw)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("数值 %v 无效", f)
	}
	return f, nil
}

func toList(raw interface{}) ([]interface{}, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		return v, nil
	case []int:
		out := make([]interface{}, len(v))
		for i, x := range v {
			out[i] = x
		}
		return out, nil
	case []string:
		out := make([]interface{}, len(v))
		for i, x := range v {
			out[i] = x
		}
		return out, nil
	case string:
		var out []interface{}
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	case int, int64, float64:
		return []interface{}{v}, nil
	}
	return nil, fmt.Errorf("需要列表，得到 %T", raw)
}
