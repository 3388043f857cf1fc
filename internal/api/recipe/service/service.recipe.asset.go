package recipesvc

import (
	"fmt"

	basesvc "github.com/ianwagner/campfire-sub002/internal/api/base/service"
	recipemodels "github.com/ianwagner/campfire-sub002/internal/api/recipe/models"
	"github.com/ianwagner/campfire-sub002/internal/common"
	"github.com/ianwagner/campfire-sub002/internal/global"
)

// RecipeAssetService là service quản lý asset của recipe.
// Luồng review chỉ đọc; pipeline render ghi qua CRUD ingest.
type RecipeAssetService struct {
	basesvc.BaseServiceMongo[recipemodels.RecipeAsset]
}

// NewRecipeAssetService tạo mới RecipeAssetService
func NewRecipeAssetService() (*RecipeAssetService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.RecipeAssets)
	if !exist {
		return nil, fmt.Errorf("failed to get recipe_assets collection: %v", common.ErrNotFound)
	}
	return &RecipeAssetService{
		BaseServiceMongo: basesvc.NewBaseServiceMongo[recipemodels.RecipeAsset](collection),
	}, nil
}
