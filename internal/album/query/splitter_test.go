package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit_MonthDayWithResidual(t *testing.T) {
	expr, rest := Split("1.18 海边")

	assert.Equal(t, DateKindMonthDay, expr.Kind)
	assert.Equal(t, 1, expr.Month)
	assert.Equal(t, 18, expr.Day)
	assert.Equal(t, "海边", rest)
}

func TestSplit_FullDate(t *testing.T) {
	expr, rest := Split("2026-01-17 的照片")

	assert.Equal(t, DateKindDate, expr.Kind)
	assert.Equal(t, 2026, expr.Year)
	assert.Equal(t, 1, expr.Month)
	assert.Equal(t, 17, expr.Day)
	assert.Equal(t, "", rest)
}

func TestSplit_ChineseFullDate(t *testing.T) {
	expr, rest := Split("2025年3月8日 生日聚会")

	assert.Equal(t, DateKindDate, expr.Kind)
	assert.Equal(t, 2025, expr.Year)
	assert.Equal(t, 3, expr.Month)
	assert.Equal(t, 8, expr.Day)
	assert.Equal(t, "生日聚会", rest)
}

func TestSplit_ChineseMonthDay(t *testing.T) {
	expr, rest := Split("1月18日的照片")

	assert.Equal(t, DateKindMonthDay, expr.Kind)
	assert.Equal(t, 1, expr.Month)
	assert.Equal(t, 18, expr.Day)
	assert.Equal(t, "", rest)
}

func TestSplit_PureDateQuery(t *testing.T) {
	expr, rest := Split("1.18")

	assert.Equal(t, DateKindMonthDay, expr.Kind)
	assert.Equal(t, "", rest)
}

func TestSplit_NoDate(t *testing.T) {
	expr, rest := Split("帮我找找相册里面关于表格的照片")

	assert.Equal(t, DateKindNone, expr.Kind)
	assert.Equal(t, "帮我找找相册里面关于表格的照片", rest, "text without a date passes through verbatim")
}

func TestSplit_Idempotent(t *testing.T) {
	_, once := Split("1.18 海边")
	expr, twice := Split(once)

	assert.Equal(t, DateKindNone, expr.Kind)
	assert.Equal(t, once, twice)
}

func TestSplit_EmptyInput(t *testing.T) {
	expr, rest := Split("")

	assert.Equal(t, DateKindNone, expr.Kind)
	assert.Equal(t, "", rest)
}

func TestSplit_InvalidMonthDayFallsThrough(t *testing.T) {
	expr, rest := Split("13.45 夕阳")

	assert.Equal(t, DateKindNone, expr.Kind)
	assert.Equal(t, "13.45 夕阳", rest)
}

func TestSplit_FullDateTakesPriority(t *testing.T) {
	expr, _ := Split("2024.5.20 和 6月1日")

	assert.Equal(t, DateKindDate, expr.Kind)
	assert.Equal(t, 2024, expr.Year)
	assert.Equal(t, 5, expr.Month)
	assert.Equal(t, 20, expr.Day)
}
