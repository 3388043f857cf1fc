package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdGroupStatus định nghĩa các trạng thái của một ad group.
// Thứ tự tiến: pending → in review → ready → done.
// archived chỉ đạt được qua action archive tường minh (không phải side effect của quyết định review).
// done → ready/pending chỉ qua action "reopen for review" tường minh.
const (
	AdGroupStatusPending  = "pending"   // Mới tạo, chưa có asset sẵn sàng
	AdGroupStatusInReview = "in review" // Đang trong phiên review
	AdGroupStatusReady    = "ready"     // Asset đã sẵn sàng để review
	AdGroupStatusDone     = "done"      // Mọi slot active đã resolved
	AdGroupStatusArchived = "archived"  // Đã lưu trữ (qua action archive tường minh)
)

// GroupVisibility các chế độ hiển thị của review link
const (
	GroupVisibilityPublic  = "public"  // Ai có link đều xem được
	GroupVisibilityPrivate = "private" // Yêu cầu auth hoặc password
)

// ReviewProgress là cursor resume phiên review, lưu trên group document.
// Bị clear (null) khi group chuyển sang done.
type ReviewProgress struct {
	CurrentUnitID *primitive.ObjectID `json:"currentUnitId,omitempty" bson:"currentUnitId,omitempty"` // Unit đang xem dở
	Position      int                 `json:"position" bson:"position"`                               // Vị trí trong working set
	Total         int                 `json:"total" bson:"total"`                                     // Tổng số unit trong working set lúc bắt đầu phiên
}

// AdGroup đại diện cho một nhóm ad unit được review cùng nhau.
// Group document là shared mutable state duy nhất có write-write hazard:
// advisory lock (reviewLockedBy/At) tồn tại để hai reviewer không cùng mở một phiên.
type AdGroup struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`           // ID của group
	Name      string             `json:"name" bson:"name"`                            // Tên group
	BrandCode string             `json:"brandCode" bson:"brandCode" index:"single:1"` // Brand sở hữu

	// ===== REVIEW STATE =====
	Status         string          `json:"status" bson:"status" default:"pending" index:"single:1"`    // Trạng thái: pending, in review, ready, done, archived
	ReviewProgress *ReviewProgress `json:"reviewProgress,omitempty" bson:"reviewProgress,omitempty"`   // Cursor resume, null khi done

	// ===== ADVISORY LOCK =====
	ReviewLockedBy string `json:"reviewLockedBy,omitempty" bson:"reviewLockedBy,omitempty"` // Reviewer đang giữ khóa phiên review
	ReviewLockedAt int64  `json:"reviewLockedAt,omitempty" bson:"reviewLockedAt,omitempty"` // Thời điểm giành khóa (unix milli)

	// ===== ACCESS CONTROL (review link) =====
	Visibility      string `json:"visibility,omitempty" bson:"visibility,omitempty" default:"public"` // public hoặc private
	RequireAuth     bool   `json:"requireAuth" bson:"requireAuth"`                                    // Yêu cầu đăng nhập khi mở link
	RequirePassword bool   `json:"requirePassword" bson:"requirePassword"`                            // Yêu cầu password khi mở link
	Password        string `json:"-" bson:"password,omitempty"`                                       // Password của link (không trả về qua JSON)

	// ===== ARCHIVE =====
	ArchivedAt int64  `json:"archivedAt,omitempty" bson:"archivedAt,omitempty"` // Thời điểm archive (unix milli)
	ArchivedBy string `json:"archivedBy,omitempty" bson:"archivedBy,omitempty"` // Người thực hiện archive

	// ===== METADATA =====
	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật

	// Chặn xóa cứng khi còn ad/recipe thuộc group (dùng archive thay vì xóa)
	_Relationships struct{} `bson:"-" json:"-" relationship:"collection:ad_units,field:groupId,message:Không thể xóa group vì còn %d ad thuộc group này. Vui lòng archive group thay vì xóa.|collection:recipes,field:groupId,message:Không thể xóa group vì còn %d recipe thuộc group này."`
}
