// Package matrix 排班解的编码：员工 × 日期 的单元格编码网格
package matrix

import (
	"fmt"
	"hash/fnv"

	"github.com/paiban/gashift/pkg/model"
)

// Matrix 一个候选排班。构建完成后只读，修改必须经由 Builder 产生新实例。
type Matrix struct {
	rows  int
	cols  int
	cells []model.CellCode
}

// Run 连续相同状态的一段
type Run struct {
	Start int  // 0 起始
	Len   int  // 天数
	Work  bool // true 为出勤段
}

// New 创建全部为 OPEN 的矩阵
func New(rows, cols int) *Matrix {
	return &Matrix{rows: rows, cols: cols, cells: make([]model.CellCode, rows*cols)}
}

// FromCodes 由边界整数网格解码
func FromCodes(codes [][]int) (*Matrix, error) {
	rows := len(codes)
	cols := 0
	if rows > 0 {
		cols = len(codes[0])
	}
	m := New(rows, cols)
	for e, row := range codes {
		if len(row) != cols {
			return nil, fmt.Errorf("第 %d 行长度 %d 与首行 %d 不一致", e, len(row), cols)
		}
		for d, v := range row {
			c, err := model.ParseCellCode(v)
			if err != nil {
				return nil, fmt.Errorf("单元格 (%d,%d): %w", e, d, err)
			}
			m.cells[e*cols+d] = c
		}
	}
	return m, nil
}

// Codes 编码为边界整数网格
func (m *Matrix) Codes() [][]int {
	out := make([][]int, m.rows)
	for e := 0; e < m.rows; e++ {
		row := make([]int, m.cols)
		for d := 0; d < m.cols; d++ {
			row[d] = int(m.cells[e*m.cols+d])
		}
		out[e] = row
	}
	return out
}

// Rows 员工数
func (m *Matrix) Rows() int { return m.rows }

// Cols 天数
func (m *Matrix) Cols() int { return m.cols }

// CodeAt 读取单元格
func (m *Matrix) CodeAt(e, d int) model.CellCode {
	return m.cells[e*m.cols+d]
}

// IsFixed 单元格是否为固定的希望休或不可出勤
func (m *Matrix) IsFixed(e, d int) bool {
	return m.CodeAt(e, d).IsFixed()
}

// IsWork 单元格是否出勤
func (m *Matrix) IsWork(e, d int) bool {
	return m.CodeAt(e, d) == model.CellOpen
}

// Row 返回一行的副本
func (m *Matrix) Row(e int) []model.CellCode {
	row := make([]model.CellCode, m.cols)
	copy(row, m.cells[e*m.cols:(e+1)*m.cols])
	return row
}

// Equal 按单元格内容比较
func (m *Matrix) Equal(o *Matrix) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i := range m.cells {
		if m.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Hash FNV-1a 内容哈希
func (m *Matrix) Hash() uint64 {
	h := fnv.New64a()
	buf := make([]byte, len(m.cells))
	for i, c := range m.cells {
		buf[i] = byte(c)
	}
	h.Write(buf)
	return h.Sum64()
}

// OffCount 员工休息天数（含固定休）
func (m *Matrix) OffCount(e int) int {
	n := 0
	for d := 0; d < m.cols; d++ {
		if !m.IsWork(e, d) {
			n++
		}
	}
	return n
}

// CountCode 员工某编码的天数
func (m *Matrix) CountCode(e int, code model.CellCode) int {
	n := 0
	for d := 0; d < m.cols; d++ {
		if m.CodeAt(e, d) == code {
			n++
		}
	}
	return n
}

// WorkersOn 某天出勤人数
func (m *Matrix) WorkersOn(d int) int {
	n := 0
	for e := 0; e < m.rows; e++ {
		if m.IsWork(e, d) {
			n++
		}
	}
	return n
}

// WorkersWhere 某天满足条件的出勤人数
func (m *Matrix) WorkersWhere(d int, pred func(e int) bool) int {
	n := 0
	for e := 0; e < m.rows; e++ {
		if m.IsWork(e, d) && pred(e) {
			n++
		}
	}
	return n
}

// Runs 员工的出勤/休息分段
func (m *Matrix) Runs(e int) []Run {
	var runs []Run
	for d := 0; d < m.cols; d++ {
		w := m.IsWork(e, d)
		if n := len(runs); n > 0 && runs[n-1].Work == w {
			runs[n-1].Len++
			continue
		}
		runs = append(runs, Run{Start: d, Len: 1, Work: w})
	}
	return runs
}

// LongestWorkRun 最长连续出勤天数
func (m *Matrix) LongestWorkRun(e int) int {
	longest := 0
	for _, r := range m.Runs(e) {
		if r.Work && r.Len > longest {
			longest = r.Len
		}
	}
	return longest
}

// Builder 构建新的候选矩阵
func (m *Matrix) Builder() *Builder {
	cells := make([]model.CellCode, len(m.cells))
	copy(cells, m.cells)
	return &Builder{m: &Matrix{rows: m.rows, cols: m.cols, cells: cells}}
}

// String 调试输出
func (m *Matrix) String() string {
	buf := make([]byte, 0, m.rows*(m.cols+1))
	for e := 0; e < m.rows; e++ {
		for d := 0; d < m.cols; d++ {
			buf = append(buf, '0'+byte(m.CodeAt(e, d)))
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}
