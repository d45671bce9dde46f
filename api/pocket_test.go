package api

import (
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

func pocketRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "name", "limit", "funds", "created_at", "updated_at", "deleted_at"})
}

func TestPocketHandler_Delete_CascadesExpenses(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	cfg := &config.Config{Server: config.ServerConfig{Mode: "debug"}}
	config.GlobalConfig = cfg
	defer func() { config.GlobalConfig = nil }()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `pockets`").
		WithArgs(uint64(2), uint(1)).
		WillReturnRows(pocketRows().AddRow(2, 1, "现金", 1000.0, 500.0, now, now, nil))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `grants`").
		WillReturnRows(grantCountRows(1))

	// 引用该钱包的支出连同其授权一并删除
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `id` FROM `expenses`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21).AddRow(22))
	mock.ExpectExec("UPDATE `expenses` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM `grants`").
		WillReturnResult(sqlmock.NewResult(0, 6))
	mock.ExpectExec("DELETE FROM `grants`").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("UPDATE `pockets` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	h := NewPocketHandler()
	router.DELETE("/pockets/:id", h.Delete)

	req := httptest.NewRequest("DELETE", "/pockets/2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "删除成功", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}
