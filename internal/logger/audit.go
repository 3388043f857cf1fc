package logger

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// AuditAction log một hành động audit
type AuditAction struct {
	Action       string                 `json:"action"`        // Tên hành động (ví dụ: "review_approve", "group_archive")
	UserID       string                 `json:"user_id"`       // ID người dùng thực hiện
	ResourceID   string                 `json:"resource_id"`   // ID tài nguyên bị ảnh hưởng
	ResourceType string                 `json:"resource_type"` // Loại tài nguyên (ví dụ: "ad_unit", "ad_group", "recipe")
	IP           string                 `json:"ip"`            // IP address
	UserAgent    string                 `json:"user_agent"`    // User agent
	Details      map[string]interface{} `json:"details"`       // Chi tiết bổ sung
	Timestamp    time.Time              `json:"timestamp"`     // Thời gian
}

// requestFields gom thông tin request cho log entry (method, path, ip, request id)
func requestFields(c fiber.Ctx) logrus.Fields {
	return logrus.Fields{
		"method":     c.Method(),
		"path":       c.Path(),
		"ip":         c.IP(),
		"request_id": c.Get("X-Request-ID"),
	}
}

// WithRequest tạo log entry trên app logger gắn sẵn thông tin request
func WithRequest(c fiber.Ctx) *logrus.Entry {
	return GetAppLogger().WithFields(requestFields(c))
}

// WithRequestError tạo log entry trên error logger gắn sẵn thông tin request.
// Dùng cho error handler và panic recover, tách file log lỗi khỏi log app.
func WithRequestError(c fiber.Ctx) *logrus.Entry {
	return GetErrorLogger().WithFields(requestFields(c))
}

// LogAction log một hành động audit
func LogAction(action string, c fiber.Ctx, details map[string]interface{}) {
	auditLogger := GetAuditLogger()

	if details == nil {
		details = make(map[string]interface{})
	}

	audit := AuditAction{
		Action:    action,
		IP:        c.IP(),
		UserAgent: c.Get("User-Agent"),
		Details:   details,
		Timestamp: time.Now(),
	}

	// Lấy user ID từ context nếu có
	if userID := c.Locals("userID"); userID != nil {
		if uid, ok := userID.(string); ok {
			audit.UserID = uid
		}
	}

	// Lấy group ID từ context nếu có (review-link token gắn vào session)
	if groupID := c.Locals("groupID"); groupID != nil {
		if gid, ok := groupID.(string); ok {
			audit.Details["group_id"] = gid
		}
	}

	// Lấy request ID
	if requestID := c.Get("X-Request-ID"); requestID != "" {
		audit.Details["request_id"] = requestID
	}

	auditLogger.WithFields(logrus.Fields{
		"action":        audit.Action,
		"user_id":       audit.UserID,
		"resource_id":   audit.ResourceID,
		"resource_type": audit.ResourceType,
		"ip":            audit.IP,
		"user_agent":    audit.UserAgent,
		"details":       audit.Details,
		"timestamp":     audit.Timestamp,
	}).Info("Audit log")
}

// LogCRUD log các thao tác CRUD
func LogCRUD(operation string, resourceType string, resourceID string, c fiber.Ctx, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["operation"] = operation
	details["resource_type"] = resourceType
	details["resource_id"] = resourceID

	LogAction("crud_"+operation, c, details)
}

// LogDecision log một quyết định review (approve/reject/edit) cho ad unit hoặc recipe
func LogDecision(resourceType string, resourceID string, decision string, c fiber.Ctx, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["resource_type"] = resourceType
	details["resource_id"] = resourceID
	details["decision"] = decision

	LogAction("review_"+decision, c, details)
}
