// Package router đăng ký các route thuộc domain Recipe: recipe, asset, decision log.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	recipehdl "github.com/ianwagner/campfire-sub002/internal/api/recipe/handler"
	apirouter "github.com/ianwagner/campfire-sub002/internal/api/router"
)

// Register đăng ký tất cả route của domain recipe lên v1.
//
// Review recipe là surface agency-side (actor gửi kèm identity trong body),
// không đi qua token review-link như surface reviewer của ad unit.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	recipeHandler, err := recipehdl.NewRecipeHandler()
	if err != nil {
		return fmt.Errorf("create recipe handler: %w", err)
	}
	assetHandler, err := recipehdl.NewRecipeAssetHandler()
	if err != nil {
		return fmt.Errorf("create recipe asset handler: %w", err)
	}

	// CRUD recipe: pipeline ingest + dashboard đọc.
	// Status không đổi qua update thường, chỉ qua endpoint decide.
	r.RegisterCRUDRoutes(v1, "/recipes", recipeHandler, apirouter.IngestOnlyConfig, nil)
	// CRUD asset: pipeline render ghi vào
	r.RegisterCRUDRoutes(v1, "/recipe-assets", assetHandler, apirouter.IngestOnlyConfig, nil)

	// Quyết định review per-recipe (approve / reject / edit)
	apirouter.RegisterRouteWithMiddleware(v1, "/recipes", "POST", "/:id/decide", nil, recipeHandler.Decide)

	// Working set ready của group, kèm asset đã sắp ưu tiên + hero preview
	apirouter.RegisterRouteWithMiddleware(v1, "/recipes", "GET", "/by-group/:groupId", nil, recipeHandler.GetReadyByGroup)

	// Query cross-group theo brand code (dashboard notifications)
	apirouter.RegisterRouteWithMiddleware(v1, "/recipes", "GET", "/by-brand", nil, recipeHandler.GetReadyByBrandCodes)

	// Log decision-event của group, mới nhất trước
	apirouter.RegisterRouteWithMiddleware(v1, "/recipes", "GET", "/decisions/:groupId", nil, recipeHandler.GetDecisionsByGroup)

	return nil
}
