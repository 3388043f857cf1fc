package models

import (
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdUnitStatus định nghĩa các trạng thái review của một ad unit
const (
	AdUnitStatusReady         = "ready"          // Đã render xong, chờ review
	AdUnitStatusPending       = "pending"        // Revision mới tạo, chờ designer render lại
	AdUnitStatusApproved      = "approved"       // Reviewer đã duyệt
	AdUnitStatusRejected      = "rejected"       // Reviewer đã từ chối
	AdUnitStatusEditRequested = "edit_requested" // Reviewer yêu cầu chỉnh sửa (đã spawn revision mới)
	AdUnitStatusArchived      = "archived"       // Version cũ bị thay thế bởi version mới hơn
)

// AspectRatio các tỉ lệ khung hình được hỗ trợ, theo thứ tự ưu tiên hiển thị
const (
	AspectRatio9x16 = "9x16"
	AspectRatio3x5  = "3x5"
	AspectRatio1x1  = "1x1"
)

// SlotKey là định danh logic của một "slot" quảng cáo.
// Tất cả các version của cùng một vị trí creative (brand + group + recipe + aspect ratio)
// chia sẻ cùng một SlotKey. SlotKey được tính MỘT LẦN lúc ingest (parse từ filename)
// và lưu vào document, không parse lại filename ở runtime.
type SlotKey struct {
	BrandCode   string `json:"brandCode" bson:"brandCode"`     // Mã brand (ví dụ: BR1)
	GroupID     string `json:"groupId" bson:"groupId"`         // Mã group trong filename (ví dụ: G1)
	RecipeCode  string `json:"recipeCode" bson:"recipeCode"`   // Mã recipe (ví dụ: RC1)
	AspectRatio string `json:"aspectRatio" bson:"aspectRatio"` // Tỉ lệ khung hình (ví dụ: 9x16)
}

// Equal so sánh hai slot key theo cả 4 thành phần.
func (k SlotKey) Equal(other SlotKey) bool {
	return k.BrandCode == other.BrandCode &&
		k.GroupID == other.GroupID &&
		k.RecipeCode == other.RecipeCode &&
		k.AspectRatio == other.AspectRatio
}

// IsZero trả về true nếu slot key chưa được set (document ingest trước khi có parser).
func (k SlotKey) IsZero() bool {
	return k.BrandCode == "" && k.GroupID == "" && k.RecipeCode == "" && k.AspectRatio == ""
}

// ParseSlotKeyFromFilename parse slot key từ filename theo convention của pipeline render:
// <brandCode>_<groupCode>_<recipeCode>_<aspectRatio>_V<version>.<ext>
// Ví dụ: BR1_G1_RC1_9x16_V2.png
//
// Returns:
// - SlotKey: Slot key đã parse
// - error: Lỗi nếu filename không đúng convention
func ParseSlotKeyFromFilename(filename string) (SlotKey, error) {
	// Bỏ extension trước khi split
	name := filename
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}

	parts := strings.Split(name, "_")
	if len(parts) < 4 {
		return SlotKey{}, fmt.Errorf("filename '%s' không đúng convention <brand>_<group>_<recipe>_<aspect>_V<n>", filename)
	}

	return SlotKey{
		BrandCode:   parts[0],
		GroupID:     parts[1],
		RecipeCode:  parts[2],
		AspectRatio: parts[3],
	}, nil
}

// NextVersionFilename dựng filename cho một version mới theo cùng convention:
// token _V<n> cuối (nếu có) được thay bằng _V<version>, extension giữ nguyên.
// Ví dụ: BR1_G1_RC1_9x16_V1.png với version 3 -> BR1_G1_RC1_9x16_V3.png.
// File render của revision sẽ xuất hiện tại đúng đường dẫn này trong bucket.
func NextVersionFilename(filename string, version int) string {
	if filename == "" {
		return ""
	}

	ext := ""
	name := filename
	if idx := strings.LastIndex(name, "."); idx > 0 {
		ext = name[idx:]
		name = name[:idx]
	}

	parts := strings.Split(name, "_")
	last := parts[len(parts)-1]
	if len(last) >= 2 && (last[0] == 'V' || last[0] == 'v') {
		if _, err := strconv.Atoi(last[1:]); err == nil {
			parts = parts[:len(parts)-1]
		}
	}
	return strings.Join(parts, "_") + fmt.Sprintf("_V%d", version) + ext
}

// AdUnit đại diện cho một creative asset đã render trong một group.
// Mỗi slot (SlotKey) có thể có nhiều version tạo thành một lineage:
// root version 1 + các revision sinh ra từ yêu cầu chỉnh sửa.
// Lineage được lưu phẳng: mọi revision đều trỏ rootId về cùng một root
// (không tạo chain sâu), tra cứu tổ tiên luôn là một lần lookup.
type AdUnit struct {
	ID      primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của ad unit
	GroupID primitive.ObjectID `json:"groupId" bson:"groupId"`            // Group sở hữu

	// ===== SLOT IDENTITY =====
	BrandCode string  `json:"brandCode" bson:"brandCode" index:"single:1"` // Brand code denormalized cho query cross-group
	Filename  string  `json:"filename" bson:"filename"`                    // Tên file gốc từ pipeline render
	SlotKey   SlotKey `json:"slotKey" bson:"slotKey"`                      // Định danh slot, tính lúc ingest từ filename

	// ===== ASSET LOCATION =====
	URL         string `json:"url,omitempty" bson:"url,omitempty"`                 // URL công khai của asset
	FirebaseURL string `json:"firebaseUrl,omitempty" bson:"firebaseUrl,omitempty"` // URL trong Firebase Storage (immutable sau khi set)

	// ===== LINEAGE =====
	Version    int                 `json:"version" bson:"version" default:"1"`                // Số version, tăng dần trong lineage, root = 1
	ParentAdID *primitive.ObjectID `json:"parentAdId,omitempty" bson:"parentAdId,omitempty"`  // Trỏ về ROOT của lineage (lineage phẳng), null nếu là root
	RootID     *primitive.ObjectID `json:"rootId,omitempty" bson:"rootId,omitempty"`          // ID của root lineage, set cho mọi revision (trùng ParentAdID)

	// ===== REVIEW STATE =====
	Status     string `json:"status" bson:"status" default:"ready" index:"single:1"` // Trạng thái: ready, pending, approved, rejected, edit_requested, archived
	IsResolved bool   `json:"isResolved" bson:"isResolved"`                          // true khi version này đã nhận quyết định terminal
	Comment    string `json:"comment,omitempty" bson:"comment,omitempty"`            // Ghi chú của reviewer, chỉ có khi edit_requested

	// ===== AUDIT =====
	LastUpdatedBy string `json:"lastUpdatedBy,omitempty" bson:"lastUpdatedBy,omitempty"` // Reviewer thực hiện quyết định gần nhất
	LastUpdatedAt int64  `json:"lastUpdatedAt,omitempty" bson:"lastUpdatedAt,omitempty"` // Thời điểm quyết định gần nhất (unix milli)
	CreatedAt     int64  `json:"createdAt" bson:"createdAt"`                             // Thời gian tạo
	UpdatedAt     int64  `json:"updatedAt" bson:"updatedAt"`                             // Thời gian cập nhật
}

// LineageRootID trả về ID root của lineage chứa unit này.
// Root tự trỏ về chính nó; revision trỏ về RootID (hoặc ParentAdID khi data cũ chưa có RootID).
func (u *AdUnit) LineageRootID() primitive.ObjectID {
	if u.RootID != nil {
		return *u.RootID
	}
	if u.ParentAdID != nil {
		return *u.ParentAdID
	}
	return u.ID
}

// IsRoot trả về true nếu unit là root của lineage (version đầu tiên).
func (u *AdUnit) IsRoot() bool {
	return u.ParentAdID == nil
}
