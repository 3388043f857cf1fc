package models

import (
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// aspectPriority thứ tự ưu tiên hiển thị của các tỉ lệ khung hình.
// Tỉ lệ không có trong bảng xếp cuối.
var aspectPriority = map[string]int{
	"9x16": 0,
	"3x5":  1,
	"1x1":  2,
}

// RecipeAsset là một asset đã render thuộc recipe (subcollection, read-only
// trong luồng review: pipeline render ghi, reviewer chỉ xem).
type RecipeAsset struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`                  // ID của asset
	RecipeID    primitive.ObjectID `json:"recipeId" bson:"recipeId"`                           // Recipe sở hữu
	AspectRatio string             `json:"aspectRatio" bson:"aspectRatio"`                     // Tỉ lệ khung hình (9x16, 3x5, 1x1, ...)
	Filename    string             `json:"filename,omitempty" bson:"filename,omitempty"`       // Tên file render
	URL         string             `json:"url,omitempty" bson:"url,omitempty"`                 // URL công khai
	FirebaseURL string             `json:"firebaseUrl,omitempty" bson:"firebaseUrl,omitempty"` // URL trong Firebase Storage
	CreatedAt   int64              `json:"createdAt" bson:"createdAt"`                         // Thời gian tạo
	UpdatedAt   int64              `json:"updatedAt" bson:"updatedAt"`                         // Thời gian cập nhật
}

// SortAssetsByAspectPriority sắp asset theo ưu tiên tỉ lệ 9x16 → 3x5 → 1x1,
// tỉ lệ lạ xếp cuối. Sort ổn định để thứ tự trong cùng một tỉ lệ không đổi.
// Asset đầu tiên sau khi sort là "hero" preview của recipe.
func SortAssetsByAspectPriority(assets []RecipeAsset) {
	sort.SliceStable(assets, func(i, j int) bool {
		return aspectRank(assets[i].AspectRatio) < aspectRank(assets[j].AspectRatio)
	})
}

func aspectRank(aspectRatio string) int {
	if rank, ok := aspectPriority[aspectRatio]; ok {
		return rank
	}
	return len(aspectPriority)
}
