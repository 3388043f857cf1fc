package recipehdl

import (
	"fmt"

	basehdl "github.com/ianwagner/campfire-sub002/internal/api/base/handler"
	recipedto "github.com/ianwagner/campfire-sub002/internal/api/recipe/dto"
	recipemodels "github.com/ianwagner/campfire-sub002/internal/api/recipe/models"
	recipesvc "github.com/ianwagner/campfire-sub002/internal/api/recipe/service"
)

// RecipeAssetHandler xử lý CRUD cho recipe asset.
// Asset do pipeline render ghi vào, review flow chỉ đọc.
type RecipeAssetHandler struct {
	*basehdl.BaseHandler[recipemodels.RecipeAsset, recipedto.RecipeAssetCreateInput, recipedto.RecipeAssetUpdateInput]
	RecipeAssetService *recipesvc.RecipeAssetService
}

// NewRecipeAssetHandler tạo mới RecipeAssetHandler
func NewRecipeAssetHandler() (*RecipeAssetHandler, error) {
	assetService, err := recipesvc.NewRecipeAssetService()
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe asset service: %v", err)
	}
	hdl := &RecipeAssetHandler{
		RecipeAssetService: assetService,
	}
	hdl.BaseHandler = basehdl.NewBaseHandler[recipemodels.RecipeAsset, recipedto.RecipeAssetCreateInput, recipedto.RecipeAssetUpdateInput](assetService.BaseServiceMongo)
	return hdl, nil
}
