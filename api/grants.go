package api

import (
	"pocketbook/database"
	"pocketbook/service"

	"github.com/gin-gonic/gin"
)

// requireGrant 校验当前用户对某条记录是否持有指定操作权限
// 调用前必须已按 user_id 过滤确认记录归属本人；授权缺失时写出 403 并返回 false
func requireGrant(c *gin.Context, userID uint, kind string, recordID uint, action string) bool {
	ok, err := service.HasGrant(database.DB, userID, kind, recordID, action)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "权限校验失败"))
		return false
	}
	if !ok {
		Forbidden(c, "权限不足")
		return false
	}
	return true
}
