package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"pocketbook/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryHandler_GetSummary(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	cfg := &config.Config{Server: config.ServerConfig{Mode: "debug"}}
	config.GlobalConfig = cfg
	defer func() { config.GlobalConfig = nil }()

	// 两笔支出 10.00 + 5.50，没有任何收入记录
	mock.ExpectQuery("SELECT SUM\\(price\\) FROM `expenses`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(15.50))
	mock.ExpectQuery("SELECT SUM\\(amount\\) FROM `incomes`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	h := NewSummaryHandler()
	router.GET("/statistics/summary", h.GetSummary)

	req := httptest.NewRequest("GET", "/statistics/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 15.5, data["total_expense"])
	// 没有收入记录时字段整体缺省，而不是返回 0
	_, hasIncome := data["total_income"]
	assert.False(t, hasIncome)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryHandler_GetSummary_ZeroIsNotAbsent(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	cfg := &config.Config{Server: config.ServerConfig{Mode: "debug"}}
	config.GlobalConfig = cfg
	defer func() { config.GlobalConfig = nil }()

	// 存在记录但总和恰好为 0，字段应当返回 0 而不是缺省
	mock.ExpectQuery("SELECT SUM\\(price\\) FROM `expenses`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0.0))
	mock.ExpectQuery("SELECT SUM\\(amount\\) FROM `incomes`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(nil))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	h := NewSummaryHandler()
	router.GET("/statistics/summary", h.GetSummary)

	req := httptest.NewRequest("GET", "/statistics/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	expense, hasExpense := data["total_expense"]
	assert.True(t, hasExpense)
	assert.Equal(t, float64(0), expense)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryHandler_GetCategoryBreakdown(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	cfg := &config.Config{Server: config.ServerConfig{Mode: "debug"}}
	config.GlobalConfig = cfg
	defer func() { config.GlobalConfig = nil }()

	// 没有支出的分类不出现在结果里
	mock.ExpectQuery("SELECT categories.name AS category.*FROM `expenses`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"category", "total", "count"}).
			AddRow("餐饮", 120.50, 8).
			AddRow("交通", 45.00, 3))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	h := NewSummaryHandler()
	router.GET("/statistics/categories", h.GetCategoryBreakdown)

	req := httptest.NewRequest("GET", "/statistics/categories", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	items := resp["data"].([]interface{})
	require.Len(t, items, 2)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "餐饮", first["category"])
	assert.Equal(t, 120.5, first["total"])
	assert.Equal(t, float64(8), first["count"])
	require.NoError(t, mock.ExpectationsWereMet())
}
