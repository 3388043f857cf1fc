package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecipeDecision là một decision-event phẳng trong log per-group,
// tách biệt với history trên recipe document. Log này phục vụ audit/analytics
// độc lập với mutable state của recipe: recipe có thể đổi status nhiều lần
// nhưng mỗi event ở đây là bất biến sau khi ghi.
type RecipeDecision struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của event
	GroupID  primitive.ObjectID `json:"groupId" bson:"groupId"`            // Group chứa recipe
	RecipeID primitive.ObjectID `json:"recipeId" bson:"recipeId"`          // Recipe được quyết định

	Decision string `json:"decision" bson:"decision"`                   // approve, reject, edit
	Comment  string `json:"comment,omitempty" bson:"comment,omitempty"` // Ghi chú kèm quyết định

	// ===== ACTOR CONTEXT =====
	UserID       string `json:"userId" bson:"userId"`                         // ID người quyết định
	UserEmail    string `json:"userEmail" bson:"userEmail"`                   // Email người quyết định
	ReviewerName string `json:"reviewerName" bson:"reviewerName"`             // Tên hiển thị
	UserRole     string `json:"userRole,omitempty" bson:"userRole,omitempty"` // Vai trò (optional)

	Timestamp int64 `json:"timestamp" bson:"timestamp"` // Thời điểm quyết định (unix milli)
	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian ghi event
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật (event bất biến, trùng createdAt)
}
