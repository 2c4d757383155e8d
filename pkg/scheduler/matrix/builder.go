package matrix

import (
	"fmt"

	"github.com/paiban/gashift/pkg/model"
)

// Builder 可写的矩阵草稿，Build 后失效
type Builder struct {
	m *Matrix
}

// NewBuilder 从全 OPEN 的矩阵开始构建
func NewBuilder(rows, cols int) *Builder {
	return &Builder{m: New(rows, cols)}
}

func (b *Builder) check(e, d int) error {
	if b.m == nil {
		return fmt.Errorf("builder 已经 Build")
	}
	if e < 0 || e >= b.m.rows || d < 0 || d >= b.m.cols {
		return fmt.Errorf("单元格 (%d,%d) 超出 %dx%d", e, d, b.m.rows, b.m.cols)
	}
	return nil
}

// Fix 写入固定编码；已固定的单元格只允许写入更严格的 UNAVAILABLE
func (b *Builder) Fix(e, d int, code model.CellCode) error {
	if err := b.check(e, d); err != nil {
		return err
	}
	if !code.IsFixed() {
		return fmt.Errorf("编码 %s 不是固定编码", code)
	}
	cur := b.m.CodeAt(e, d)
	if cur.IsFixed() && code < cur {
		return nil
	}
	b.m.cells[e*b.m.cols+d] = code
	return nil
}

// Set 写入可变编码，拒绝覆盖固定单元格
func (b *Builder) Set(e, d int, code model.CellCode) error {
	if err := b.check(e, d); err != nil {
		return err
	}
	if code.IsFixed() {
		return fmt.Errorf("Set 不接受固定编码 %s，请使用 Fix", code)
	}
	if b.m.CodeAt(e, d).IsFixed() {
		return fmt.Errorf("单元格 (%d,%d) 为固定编码 %s", e, d, b.m.CodeAt(e, d))
	}
	b.m.cells[e*b.m.cols+d] = code
	return nil
}

// Flip 在出勤与安排休息之间翻转，固定单元格返回 false
func (b *Builder) Flip(e, d int) bool {
	if b.check(e, d) != nil {
		return false
	}
	i := e*b.m.cols + d
	switch b.m.cells[i] {
	case model.CellOpen:
		b.m.cells[i] = model.CellAssignedOff
	case model.CellAssignedOff:
		b.m.cells[i] = model.CellOpen
	default:
		return false
	}
	return true
}

// CodeAt 读取草稿中的单元格
func (b *Builder) CodeAt(e, d int) model.CellCode {
	return b.m.CodeAt(e, d)
}

// Build 返回构建完成的矩阵
func (b *Builder) Build() *Matrix {
	m := b.m
	b.m = nil
	return m
}
