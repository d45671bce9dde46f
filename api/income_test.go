package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"pocketbook/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func incomeRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "name", "source_id", "amount", "income_date",
		"created_at", "updated_at", "deleted_at",
	})
}

func incomeSourceRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "name", "type_of_income", "permanent",
		"created_at", "updated_at", "deleted_at",
	})
}

func TestIncomeHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	cfg := &config.Config{Server: config.ServerConfig{Mode: "debug"}}
	config.GlobalConfig = cfg
	defer func() { config.GlobalConfig = nil }()

	now := time.Now()

	// 收入来源必须属于当前用户
	mock.ExpectQuery("SELECT .* FROM `income_sources`").
		WithArgs(uint(1), uint(1)).
		WillReturnRows(incomeSourceRows().AddRow(1, 1, "工资", "salary", true, now, now, nil))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `incomes`").
		WillReturnResult(sqlmock.NewResult(5, 1))
	expectGrantDefaults(mock)
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	h := NewIncomeHandler()
	router.POST("/incomes", h.Create)

	body := `{"name":"一月工资","source_id":1,"amount":5000.00,"income_date":"2024-01-15"}`
	req := httptest.NewRequest("POST", "/incomes", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "创建成功", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(5000), data["amount"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeHandler_Create_ForeignSource(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	cfg := &config.Config{Server: config.ServerConfig{Mode: "debug"}}
	config.GlobalConfig = cfg
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectQuery("SELECT .* FROM `income_sources`").
		WithArgs(uint(42), uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	h := NewIncomeHandler()
	router.POST("/incomes", h.Create)

	body := `{"name":"一月工资","source_id":42,"amount":5000.00}`
	req := httptest.NewRequest("POST", "/incomes", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "无效的收入来源", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeHandler_List(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	cfg := &config.Config{Server: config.ServerConfig{Mode: "debug"}}
	config.GlobalConfig = cfg
	defer func() { config.GlobalConfig = nil }()

	now := time.Now()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `incomes`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(2))
	// 按收入来源排序
	mock.ExpectQuery("SELECT .* FROM `incomes` .*ORDER BY source_id ASC").
		WithArgs(uint(1)).
		WillReturnRows(incomeRows().
			AddRow(1, 1, "一月工资", 1, 5000.00, now, now, now, nil).
			AddRow(2, 1, "兼职", 2, 800.00, now, now, now, nil))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	h := NewIncomeHandler()
	router.GET("/incomes", h.List)

	req := httptest.NewRequest("GET", "/incomes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeHandler_Get_OtherUsersRecord(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	cfg := &config.Config{Server: config.ServerConfig{Mode: "debug"}}
	config.GlobalConfig = cfg
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectQuery("SELECT .* FROM `incomes`").
		WithArgs(uint64(3), uint(9)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	router := gin.New()
	router.Use(setUserIDMiddleware(9))
	h := NewIncomeHandler()
	router.GET("/incomes/:id", h.Get)

	req := httptest.NewRequest("GET", "/incomes/3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "记录不存在", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeHandler_Options(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	cfg := &config.Config{Server: config.ServerConfig{Mode: "debug"}}
	config.GlobalConfig = cfg
	defer func() { config.GlobalConfig = nil }()

	now := time.Now()
	// 下拉选项只包含当前用户自己的收入来源
	mock.ExpectQuery("SELECT .* FROM `income_sources`").
		WithArgs(uint(1)).
		WillReturnRows(incomeSourceRows().
			AddRow(1, 1, "工资", "salary", true, now, now, nil))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	h := NewIncomeHandler()
	router.GET("/incomes/options", h.Options)

	req := httptest.NewRequest("GET", "/incomes/options", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	sources := data["sources"].([]interface{})
	require.Len(t, sources, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
