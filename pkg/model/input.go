package model

// FixedCell 固定单元格引用
type FixedCell struct {
	EmployeeID string   `json:"employee_id" yaml:"employee_id"`
	Day        int      `json:"day" yaml:"day"` // 1 起始
	Code       CellCode `json:"code" yaml:"code"`
}

// DayStaffing 单日人员需求
type DayStaffing struct {
	Day      int            `json:"day" yaml:"day"`
	Total    int            `json:"total" yaml:"total" validate:"gte=0"`
	Sections map[string]int `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// ShiftInput 排班输入
type ShiftInput struct {
	Employees  []Employee    `json:"employees" yaml:"employees" validate:"required,min=1,dive"`
	Calendar   CalendarSpec  `json:"calendar" yaml:"calendar"`
	FixedCells []FixedCell   `json:"fixed_cells,omitempty" yaml:"fixed_cells,omitempty"`
	Staffing   []DayStaffing `json:"staffing_requirements,omitempty" yaml:"staffing_requirements,omitempty" validate:"dive"`
	// DefaultStaffing 未单独配置的日期所需出勤人数
	DefaultStaffing int `json:"default_staffing,omitempty" yaml:"default_staffing,omitempty" validate:"gte=0"`
}

// AllFixedCells 合并显式固定单元格与员工希望休/不可出勤日。
// 同一单元格既是希望休又不可出勤时以不可出勤为准。
func (in *ShiftInput) AllFixedCells() []FixedCell {
	cells := make([]FixedCell, 0, len(in.FixedCells))
	for _, e := range in.Employees {
		for _, d := range e.PreferredDaysOff {
			cells = append(cells, FixedCell{EmployeeID: e.ID, Day: d, Code: CellWishOff})
		}
	}
	cells = append(cells, in.FixedCells...)
	for _, e := range in.Employees {
		for _, d := range e.UnavailableDays {
			cells = append(cells, FixedCell{EmployeeID: e.ID, Day: d, Code: CellUnavailable})
		}
	}
	return cells
}
