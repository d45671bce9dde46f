package service

import (
	"pocketbook/models"

	"gorm.io/gorm"
)

// GrantDefaults 把 view/change/delete 三项记录级权限授予创建者
// 与记录写入处于同一事务；重复授予通过 FirstOrCreate 幂等处理
func GrantDefaults(tx *gorm.DB, userID uint, kind string, recordID uint) error {
	for _, action := range models.GetActions() {
		grant := models.Grant{
			UserID:   userID,
			Kind:     kind,
			RecordID: recordID,
			Action:   action,
		}
		if err := tx.Where(models.Grant{
			UserID:   userID,
			Kind:     kind,
			RecordID: recordID,
			Action:   action,
		}).FirstOrCreate(&grant).Error; err != nil {
			return err
		}
	}
	return nil
}

// HasGrant 检查用户对某条记录是否持有指定操作权限
// 每次调用实时查库，不做缓存
func HasGrant(db *gorm.DB, userID uint, kind string, recordID uint, action string) (bool, error) {
	var count int64
	err := db.Model(&models.Grant{}).
		Where("user_id = ? AND kind = ? AND record_id = ? AND action = ?", userID, kind, recordID, action).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RevokeGrant 回收用户对某条记录的单项权限，不存在时为空操作
func RevokeGrant(tx *gorm.DB, userID uint, kind string, recordID uint, action string) error {
	return tx.Where("user_id = ? AND kind = ? AND record_id = ? AND action = ?",
		userID, kind, recordID, action).
		Delete(&models.Grant{}).Error
}

// RevokeRecordGrants 记录删除时回收该记录上的全部授权
func RevokeRecordGrants(tx *gorm.DB, kind string, recordID uint) error {
	return tx.Where("kind = ? AND record_id = ?", kind, recordID).
		Delete(&models.Grant{}).Error
}

// RevokeRecordsGrants 批量回收多条记录的授权，供级联删除使用
func RevokeRecordsGrants(tx *gorm.DB, kind string, recordIDs []uint) error {
	if len(recordIDs) == 0 {
		return nil
	}
	return tx.Where("kind = ? AND record_id IN ?", kind, recordIDs).
		Delete(&models.Grant{}).Error
}
