package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/ianwagner/campfire-sub002/internal/common"
	"github.com/ianwagner/campfire-sub002/internal/global"
	"github.com/ianwagner/campfire-sub002/internal/logger"
)

// ReviewLinkClaims chứa data được mã hóa trong token review-link.
// Mỗi token gắn với một ad group, reviewer mở link chỉ thao tác được trong group đó.
type ReviewLinkClaims struct {
	GroupID  string `json:"groupId"`
	Reviewer string `json:"reviewer"` // Tên hoặc email reviewer (hiển thị trong audit log)
	jwt.StandardClaims
}

// IssueReviewLinkToken phát hành token review-link cho một group.
// Token được ký HS256 với JwtSecret từ config, hết hạn sau ttl.
//
// Parameters:
// - groupID: ID của ad group (hex string)
// - reviewer: Định danh reviewer (tên hoặc email)
// - ttl: Thời gian sống của token
//
// Returns:
// - string: JWT token đã ký
// - error: Lỗi nếu có
func IssueReviewLinkToken(groupID string, reviewer string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := ReviewLinkClaims{
		GroupID:  groupID,
		Reviewer: reviewer,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(global.ServerConfig.JwtSecret))
	if err != nil {
		return "", common.NewError(
			common.ErrCodeInternalServer,
			fmt.Sprintf("Không thể ký token review-link: %v", err),
			common.StatusInternalServerError,
			err,
		)
	}
	return signed, nil
}

// ParseReviewLinkToken parse và validate token review-link.
// Trả về claims nếu token hợp lệ và chưa hết hạn.
func ParseReviewLinkToken(tokenStr string) (*ReviewLinkClaims, error) {
	claims := &ReviewLinkClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("phương thức ký không hợp lệ: %v", t.Header["alg"])
		}
		return []byte(global.ServerConfig.JwtSecret), nil
	})
	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrTokenInvalid
	}
	if !token.Valid {
		return nil, common.ErrTokenInvalid
	}
	return claims, nil
}

// ReviewLinkMiddleware middleware xác thực token review-link cho Fiber.
// Token được lấy từ header Authorization (Bearer ...) hoặc query param "token"
// (reviewer mở link trực tiếp từ email nên cần hỗ trợ query param).
// Sau khi validate, lưu group_id và reviewer vào context để handler sử dụng.
func ReviewLinkMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Lấy token từ header hoặc query param
		tokenStr := ""
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				HandleErrorResponse(c, common.ErrTokenInvalid)
				return nil
			}
			tokenStr = parts[1]
		} else {
			tokenStr = c.Query("token")
		}

		if tokenStr == "" {
			// Chỉ log khi thiếu token (lỗi quan trọng)
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
			}).Warn("❌ [REVIEW-LINK] Missing review-link token")
			HandleErrorResponse(c, common.ErrTokenMissing)
			return nil
		}

		claims, err := ParseReviewLinkToken(tokenStr)
		if err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":  c.Path(),
				"error": err.Error(),
			}).Warn("❌ [REVIEW-LINK] Invalid review-link token")
			HandleErrorResponse(c, err)
			return nil
		}

		// Lưu thông tin review-link vào context
		c.Locals("group_id", claims.GroupID)
		c.Locals("reviewer", claims.Reviewer)

		return c.Next()
	}
}

// ErrGroupScope trả về khi resource không thuộc group trong token review-link
var ErrGroupScope = common.NewError(
	common.ErrCodeAuth,
	"Token review-link không có quyền truy cập group này",
	common.StatusForbidden,
	nil,
)

// CheckGroupScope so khớp group trong token với group của resource.
// tokenGroupID/resourceGroupID đều là hex string của ObjectID.
func CheckGroupScope(tokenGroupID string, resourceGroupID string) error {
	if tokenGroupID == "" || resourceGroupID == "" || tokenGroupID != resourceGroupID {
		return ErrGroupScope
	}
	return nil
}

// RequireGroupScope middleware kiểm tra route param :groupId (hoặc :id khi route
// thao tác trực tiếp trên group) khớp với group trong token review-link.
// Ngăn reviewer dùng token của group này để thao tác trên group khác.
func RequireGroupScope(paramName string) fiber.Handler {
	return func(c fiber.Ctx) error {
		tokenGroupID, _ := c.Locals("group_id").(string)
		if err := CheckGroupScope(tokenGroupID, c.Params(paramName)); err != nil {
			HandleErrorResponse(c, err)
			return nil
		}
		return c.Next()
	}
}

// CheckResourceGroupScope dùng cho các route mà group chỉ biết được sau khi
// load resource từ store (quyết định per-unit theo :id). Handler load unit
// rồi gọi hàm này trước khi ghi bất kỳ quyết định nào.
func CheckResourceGroupScope(c fiber.Ctx, resourceGroupID string) error {
	tokenGroupID, _ := c.Locals("group_id").(string)
	return CheckGroupScope(tokenGroupID, resourceGroupID)
}
