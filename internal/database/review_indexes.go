// Package database - Index bổ sung cho luồng review (nested fields, compound) không thể định nghĩa qua model tags.
package database

import (
	"context"
	"strings"

	"github.com/ianwagner/campfire-sub002/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateReviewIndexes tạo các index bổ sung cho luồng review.
// Gọi sau khi các collection đã được đăng ký vào registry.
func CreateReviewIndexes(ctx context.Context, db *mongo.Database) error {
	// ad_units: (groupId, isResolved): tải working set pending của một group
	adUnits := db.Collection(global.MongoDB_ColNames.AdUnits)
	if _, err := adUnits.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "groupId", Value: 1},
			{Key: "isResolved", Value: 1},
		},
		Options: options.Index().SetName("ad_unit_group_resolved"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// ad_units: (rootId, version): tra cứu lineage theo root, sắp theo version
	if _, err := adUnits.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "rootId", Value: 1},
			{Key: "version", Value: 1},
		},
		Options: options.Index().SetName("ad_unit_root_version").SetSparse(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// ad_units: (slotKey.brandCode, slotKey.groupId, slotKey.recipeCode, slotKey.aspectRatio, version)
	// unique: mỗi slot chỉ có MỘT document cho mỗi version, chặn revision trùng
	// version trong cùng lineage ngay tại store
	if _, err := adUnits.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "slotKey.brandCode", Value: 1},
			{Key: "slotKey.groupId", Value: 1},
			{Key: "slotKey.recipeCode", Value: 1},
			{Key: "slotKey.aspectRatio", Value: 1},
			{Key: "version", Value: 1},
		},
		Options: options.Index().SetName("ad_unit_slot_key_version").SetUnique(true).SetSparse(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// ad_units: (brandCode, isResolved): query cross-group theo brand
	if _, err := adUnits.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "brandCode", Value: 1},
			{Key: "isResolved", Value: 1},
		},
		Options: options.Index().SetName("ad_unit_brand_resolved"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// recipes: (groupId, status): danh sách recipe ready của group
	recipes := db.Collection(global.MongoDB_ColNames.Recipes)
	if _, err := recipes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "groupId", Value: 1},
			{Key: "status", Value: 1},
		},
		Options: options.Index().SetName("recipe_group_status"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// recipes: (brandCode, status): query cross-group theo brand code set
	if _, err := recipes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "brandCode", Value: 1},
			{Key: "status", Value: 1},
		},
		Options: options.Index().SetName("recipe_brand_status"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// recipe_assets: (recipeId): subcollection lookup
	recipeAssets := db.Collection(global.MongoDB_ColNames.RecipeAssets)
	if _, err := recipeAssets.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "recipeId", Value: 1},
		},
		Options: options.Index().SetName("recipe_asset_recipe"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// recipe_decisions: (groupId, timestamp): log quyết định theo group, mới nhất trước
	recipeDecisions := db.Collection(global.MongoDB_ColNames.RecipeDecisions)
	if _, err := recipeDecisions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "groupId", Value: 1},
			{Key: "timestamp", Value: -1},
		},
		Options: options.Index().SetName("recipe_decision_group_time"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}
