package utils

import (
	"encoding/json"
	"log"

	"github.com/peaceghost-hub/EasyAccomodation/models"
	"github.com/peaceghost-hub/EasyAccomodation/storage"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// Audit records an admin action with before/after snapshots. Failures are
// logged and swallowed so auditing never blocks the action itself.
func Audit(ctx iris.Context, action string, resourceType string, resourceID uint, before interface{}, after interface{}) {
	var adminID uint
	if claims, ok := jwt.Get(ctx).(*AccessToken); ok {
		adminID = claims.ID
	}

	beforeJSON, _ := json.Marshal(before)
	afterJSON, _ := json.Marshal(after)

	entry := models.AuditLog{
		AdminUserID:  adminID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
		IPAddress:    ctx.RemoteAddr(),
	}
	if err := storage.DB.Create(&entry).Error; err != nil {
		log.Println("audit write failed:", err)
	}
}
