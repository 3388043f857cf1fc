package recipesvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "github.com/ianwagner/campfire-sub002/internal/api/base/service"
	recipemodels "github.com/ianwagner/campfire-sub002/internal/api/recipe/models"
	"github.com/ianwagner/campfire-sub002/internal/common"
	"github.com/ianwagner/campfire-sub002/internal/global"
)

// RecipeDecisionService là service cho log decision-event phẳng per-group.
// Event là append-only: chỉ insert và đọc, không update/delete.
type RecipeDecisionService struct {
	basesvc.BaseServiceMongo[recipemodels.RecipeDecision]
}

// NewRecipeDecisionService tạo mới RecipeDecisionService
func NewRecipeDecisionService() (*RecipeDecisionService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.RecipeDecisions)
	if !exist {
		return nil, fmt.Errorf("failed to get recipe_decisions collection: %v", common.ErrNotFound)
	}
	return &RecipeDecisionService{
		BaseServiceMongo: basesvc.NewBaseServiceMongo[recipemodels.RecipeDecision](collection),
	}, nil
}

// FindByGroup tải decision event của một group, mới nhất trước.
func (s *RecipeDecisionService) FindByGroup(ctx context.Context, groupID primitive.ObjectID) ([]recipemodels.RecipeDecision, error) {
	filter := map[string]interface{}{"groupId": groupID}
	opts := options.Find().SetSort(map[string]interface{}{"timestamp": -1})
	return s.Find(ctx, filter, opts)
}
