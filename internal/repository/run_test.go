package repository

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/gashift/pkg/model"
)

// rowScanner 把一组参数按顺序写入 Scan 目标，模拟驱动读取
type rowScanner struct {
	values []interface{}
	err    error
}

func (s rowScanner) Scan(dest ...interface{}) error {
	if s.err != nil {
		return s.err
	}
	if len(dest) != len(s.values) {
		return fmt.Errorf("列数 %d 与值数 %d 不符", len(dest), len(s.values))
	}
	for i, d := range dest {
		v := s.values[i]
		if valuer, ok := v.(driver.Valuer); ok {
			var err error
			if v, err = valuer.Value(); err != nil {
				return err
			}
		}
		if scanner, ok := d.(sql.Scanner); ok {
			if err := scanner.Scan(v); err != nil {
				return err
			}
			continue
		}
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

func sampleResult() (*model.ShiftInput, *model.ShiftResult) {
	in := &model.ShiftInput{Calendar: model.CalendarSpec{Year: 2024, Month: 3}}
	res := &model.ShiftResult{
		RunID:             "run-1",
		BestSchedule:      [][]int{{0, 1, 2}, {3, 0, 0}},
		EmployeeIDs:       []string{"e1", "e2"},
		BestScore:         12.5,
		SoftPenalty:       12.5,
		GenerationHistory: []float64{30, 20, 12.5},
		Generations:       3,
		Seed:              99,
		Violations: []model.Violation{
			{ConstraintID: "holiday_count", Severity: model.SeverityWarning, Message: "休息天数不足", EmployeeID: "e1", Penalty: 12.5},
		},
		DurationMS: 150,
	}
	return in, res
}

func TestNewRun(t *testing.T) {
	in, res := sampleResult()
	run := NewRun(in, res)
	assert.Equal(t, 2024, run.Year)
	assert.Equal(t, 3, run.Month)
	assert.True(t, run.Feasible)
	assert.Equal(t, res, run.Result())
}

func TestScanRun_RoundTrip(t *testing.T) {
	in, res := sampleResult()
	run := NewRun(in, res)
	run.CreatedAt = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	args, err := run.values()
	require.NoError(t, err)
	require.Len(t, args, 17)

	got, err := scanRun(rowScanner{values: args})
	require.NoError(t, err)
	assert.Equal(t, run, got)
}

func TestScanRun_EmptyCollections(t *testing.T) {
	run := &Run{RunID: "r", EmployeeIDs: []string{}}
	args, err := run.values()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), args[14], "空历史写为 JSON 数组")
	assert.Equal(t, []byte("[]"), args[15])
}

func TestScanRun_Errors(t *testing.T) {
	_, err := scanRun(rowScanner{err: sql.ErrNoRows})
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = scanRun(rowScanner{err: fmt.Errorf("连接断开")})
	assert.Error(t, err)
}

func TestBuildWhere(t *testing.T) {
	tests := []struct {
		name   string
		filter ListFilter
		where  string
		args   []interface{}
	}{
		{"no filter", DefaultListFilter(), "", nil},
		{"month", DefaultListFilter().WithMonth(2024, 2), "WHERE year = $1 AND month = $2", []interface{}{2024, 2}},
		{"feasible only", DefaultListFilter().WithFeasible(true), "WHERE feasible = $1", []interface{}{true}},
		{
			"all",
			DefaultListFilter().WithMonth(2024, 2).WithFeasible(false),
			"WHERE year = $1 AND month = $2 AND feasible = $3",
			[]interface{}{2024, 2, false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildWhere(tt.filter)
			assert.Equal(t, tt.where, where)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "created_at DESC", orderClause(DefaultListFilter()))
	assert.Equal(t, "best_score ASC", orderClause(ListFilter{OrderBy: "best_score", OrderDir: "ASC"}))
	assert.Equal(t, "created_at DESC", orderClause(ListFilter{OrderBy: "id; DROP TABLE gashift_runs"}))

	f := DefaultListFilter().WithLimit(5).WithOffset(10)
	assert.Equal(t, 5, f.Limit)
	assert.Equal(t, 10, f.Offset)
}
