package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecipeStatus định nghĩa các trạng thái review của một recipe.
// Recipe KHÔNG versioning: yêu cầu chỉnh sửa không fork recipe mới,
// cùng document đổi status và tích lũy history. Ai đưa edit_requested
// quay lại ready là việc của pipeline bên ngoài.
const (
	RecipeStatusPending       = "pending"        // Mới tạo, chưa sẵn sàng review
	RecipeStatusReady         = "ready"          // Sẵn sàng cho agency review
	RecipeStatusApproved      = "approved"       // Đã duyệt
	RecipeStatusRejected      = "rejected"       // Đã từ chối
	RecipeStatusEditRequested = "edit_requested" // Yêu cầu chỉnh sửa
)

// RecipeAction các action review hợp lệ và status tương ứng
const (
	RecipeActionApprove = "approve"
	RecipeActionReject  = "reject"
	RecipeActionEdit    = "edit"
)

// HistoryEntry là một mục trong history append-only của recipe,
// ghi lại đầy đủ actor context của mỗi quyết định.
type HistoryEntry struct {
	UserID    string `json:"userId" bson:"userId"`                         // ID người quyết định
	UserEmail string `json:"userEmail" bson:"userEmail"`                   // Email người quyết định
	UserName  string `json:"userName" bson:"userName"`                     // Tên hiển thị
	UserRole  string `json:"userRole,omitempty" bson:"userRole,omitempty"` // Vai trò (optional)
	Action    string `json:"action" bson:"action"`                         // approve, reject, edit
	Comment   string `json:"comment,omitempty" bson:"comment,omitempty"`   // Ghi chú, chỉ có với edit
	Timestamp int64  `json:"timestamp" bson:"timestamp"`                   // Thời điểm quyết định (unix milli)
}

// Recipe đại diện cho một bundle creative nhiều asset, được agency review
// như một đơn vị trước khi giao cho client.
type Recipe struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`           // ID của recipe
	GroupID   primitive.ObjectID `json:"groupId" bson:"groupId"`                      // Group sở hữu
	BrandCode string             `json:"brandCode" bson:"brandCode" index:"single:1"` // Brand denormalized cho query cross-group
	Type      string             `json:"type,omitempty" bson:"type,omitempty"`        // Loại recipe

	// Components là cấu trúc creative của recipe (copy, layout, asset refs),
	// schema do pipeline thiết kế định nghĩa, core này chỉ đọc/ghi nguyên khối
	Components map[string]interface{} `json:"components,omitempty" bson:"components,omitempty"`

	// ===== REVIEW STATE =====
	Status  string         `json:"status" bson:"status" default:"pending" index:"single:1"` // Trạng thái review
	History []HistoryEntry `json:"history,omitempty" bson:"history,omitempty"`              // Log quyết định append-only
	Comment string         `json:"comment,omitempty" bson:"comment,omitempty"`              // Comment edit gần nhất (mirror mục edit mới nhất trong history)

	// ===== AUDIT =====
	LastUpdatedBy string `json:"lastUpdatedBy,omitempty" bson:"lastUpdatedBy,omitempty"` // Người quyết định gần nhất
	LastUpdatedAt int64  `json:"lastUpdatedAt,omitempty" bson:"lastUpdatedAt,omitempty"` // Thời điểm quyết định gần nhất (unix milli)
	CreatedAt     int64  `json:"createdAt" bson:"createdAt"`                             // Thời gian tạo
	UpdatedAt     int64  `json:"updatedAt" bson:"updatedAt"`                             // Thời gian cập nhật

	// Chặn xóa cứng khi còn asset render thuộc recipe
	_Relationships struct{} `bson:"-" json:"-" relationship:"collection:recipe_assets,field:recipeId,message:Không thể xóa recipe vì còn %d asset thuộc recipe này. Vui lòng xóa các asset trước."`
}

// StatusForAction map action review sang status đích.
// Trả về rỗng nếu action không hợp lệ.
func StatusForAction(action string) string {
	switch action {
	case RecipeActionApprove:
		return RecipeStatusApproved
	case RecipeActionReject:
		return RecipeStatusRejected
	case RecipeActionEdit:
		return RecipeStatusEditRequested
	default:
		return ""
	}
}
