package model

import "fmt"

// CellCode 排班表单元格编码
type CellCode uint8

const (
	CellOpen        CellCode = 0 // 可排班（输出中表示出勤）
	CellAssignedOff CellCode = 1 // 算法安排的休息
	CellWishOff     CellCode = 2 // 希望休（固定）
	CellUnavailable CellCode = 3 // 不可出勤（固定）
)

// ParseCellCode 解析边界上的整数编码
func ParseCellCode(v int) (CellCode, error) {
	if v < int(CellOpen) || v > int(CellUnavailable) {
		return 0, fmt.Errorf("未知单元格编码 %d", v)
	}
	return CellCode(v), nil
}

// IsFixed 固定单元格在整个运行期间不可修改
func (c CellCode) IsFixed() bool {
	return c == CellWishOff || c == CellUnavailable
}

// IsWork 是否出勤
func (c CellCode) IsWork() bool {
	return c == CellOpen
}

// IsOff 是否休息（含固定休）
func (c CellCode) IsOff() bool {
	return c != CellOpen
}

// String 实现 fmt.Stringer
func (c CellCode) String() string {
	switch c {
	case CellOpen:
		return "OPEN"
	case CellAssignedOff:
		return "ASSIGNED_OFF"
	case CellWishOff:
		return "WISH_OFF"
	case CellUnavailable:
		return "UNAVAILABLE"
	default:
		return fmt.Sprintf("CellCode(%d)", uint8(c))
	}
}
