package model

import (
	"fmt"
	"time"
)

// Day 日历中的一天
type Day struct {
	Number         int          `json:"number"` // 1 起始
	Date           time.Time    `json:"date"`
	Weekday        time.Weekday `json:"weekday"`
	SpecialWorkday bool         `json:"special_workday,omitempty"`
}

// IsWeekend 周六或周日
func (d Day) IsWeekend() bool {
	return d.Weekday == time.Saturday || d.Weekday == time.Sunday
}

// Calendar 排班月份日历，运行期间只读
type Calendar struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Days  []Day `json:"days"`
}

// CalendarSpec 日历输入
type CalendarSpec struct {
	Year  int `json:"year" yaml:"year" validate:"gte=1900,lte=9999"`
	Month int `json:"month" yaml:"month" validate:"gte=1,lte=12"`
	// Days 大于 0 时只排当月前 N 天
	Days            int   `json:"days,omitempty" yaml:"days,omitempty" validate:"gte=0,lte=31"`
	SpecialWorkdays []int `json:"special_workdays,omitempty" yaml:"special_workdays,omitempty"`
}

// NewCalendar 构建日历；days<=0 表示整月
func NewCalendar(year, month, days int, specialWorkdays ...int) (Calendar, error) {
	if month < 1 || month > 12 {
		return Calendar{}, fmt.Errorf("月份 %d 超出范围", month)
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthLen := first.AddDate(0, 1, -1).Day()
	if days <= 0 {
		days = monthLen
	}
	if days > monthLen {
		return Calendar{}, fmt.Errorf("%d-%02d 只有 %d 天，无法排 %d 天", year, month, monthLen, days)
	}

	special := make(map[int]bool, len(specialWorkdays))
	for _, d := range specialWorkdays {
		if d < 1 || d > days {
			return Calendar{}, fmt.Errorf("特殊工作日 %d 超出范围", d)
		}
		special[d] = true
	}

	cal := Calendar{Year: year, Month: month, Days: make([]Day, days)}
	for i := 0; i < days; i++ {
		date := first.AddDate(0, 0, i)
		cal.Days[i] = Day{
			Number:         i + 1,
			Date:           date,
			Weekday:        date.Weekday(),
			SpecialWorkday: special[i+1],
		}
	}
	return cal, nil
}

// Build 按输入构建日历
func (s CalendarSpec) Build() (Calendar, error) {
	return NewCalendar(s.Year, s.Month, s.Days, s.SpecialWorkdays...)
}

// Len 天数
func (c Calendar) Len() int {
	return len(c.Days)
}

// Contains 日号是否在日历范围内
func (c Calendar) Contains(day int) bool {
	return day >= 1 && day <= len(c.Days)
}

// WeekendIndexes 返回所有周末的 0 起始下标
func (c Calendar) WeekendIndexes() []int {
	idx := make([]int, 0, len(c.Days)/3)
	for i, d := range c.Days {
		if d.IsWeekend() {
			idx = append(idx, i)
		}
	}
	return idx
}
