package recipesvc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "github.com/ianwagner/campfire-sub002/internal/api/base/service"
	recipemodels "github.com/ianwagner/campfire-sub002/internal/api/recipe/models"
	"github.com/ianwagner/campfire-sub002/internal/common"
	"github.com/ianwagner/campfire-sub002/internal/global"
	"github.com/ianwagner/campfire-sub002/internal/logger"
	"github.com/ianwagner/campfire-sub002/internal/utility"
)

// brandCodeChunkSize giới hạn số brand code trong một query $in (store giới hạn 10).
const brandCodeChunkSize = 10

// DecisionActor là actor context đầy đủ của một quyết định recipe
type DecisionActor struct {
	UserID       string
	UserEmail    string
	ReviewerName string
	UserRole     string
}

// RecipeService là service quản lý recipe và state machine review recipe-granularity.
// Đơn giản hơn state machine per-asset: không versioning, không fork,
// quyết định đổi status trực tiếp và tích lũy history.
type RecipeService struct {
	basesvc.BaseServiceMongo[recipemodels.Recipe]
	assetService    *RecipeAssetService
	decisionService *RecipeDecisionService
}

// NewRecipeService tạo mới RecipeService
func NewRecipeService() (*RecipeService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Recipes)
	if !exist {
		return nil, fmt.Errorf("failed to get recipes collection: %v", common.ErrNotFound)
	}
	assetService, err := NewRecipeAssetService()
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe asset service: %v", err)
	}
	decisionService, err := NewRecipeDecisionService()
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe decision service: %v", err)
	}
	return &RecipeService{
		BaseServiceMongo: basesvc.NewBaseServiceMongo[recipemodels.Recipe](collection),
		assetService:     assetService,
		decisionService:  decisionService,
	}, nil
}

// FindReadyByGroup tải các recipe sẵn sàng review của một group.
func (s *RecipeService) FindReadyByGroup(ctx context.Context, groupID primitive.ObjectID) ([]recipemodels.Recipe, error) {
	filter := map[string]interface{}{
		"groupId": groupID,
		"status":  recipemodels.RecipeStatusReady,
	}
	return s.Find(ctx, filter, nil)
}

// FindReadyByBrandCodes tải recipe ready cross-group theo tập brand code.
// Store giới hạn 10 code mỗi query $in nên service chia codes thành
// ceil(N/10) query (mỗi query ≤10 code), gộp kết quả và dedup theo recipe id.
func (s *RecipeService) FindReadyByBrandCodes(ctx context.Context, brandCodes []string) ([]recipemodels.Recipe, error) {
	brandCodes = utility.Dedup(brandCodes)
	if len(brandCodes) == 0 {
		return []recipemodels.Recipe{}, nil
	}

	var merged []recipemodels.Recipe
	seen := make(map[primitive.ObjectID]bool)
	for _, chunk := range utility.Chunk(brandCodes, brandCodeChunkSize) {
		filter := map[string]interface{}{
			"brandCode": map[string]interface{}{"$in": chunk},
			"status":    recipemodels.RecipeStatusReady,
		}
		recipes, err := s.Find(ctx, filter, nil)
		if err != nil {
			return nil, err
		}
		for _, recipe := range recipes {
			if seen[recipe.ID] {
				continue
			}
			seen[recipe.ID] = true
			merged = append(merged, recipe)
		}
	}
	if merged == nil {
		merged = []recipemodels.Recipe{}
	}
	return merged, nil
}

// LoadAssets tải subcollection asset của recipe, sắp theo ưu tiên tỉ lệ
// khung hình (9x16 → 3x5 → 1x1, tỉ lệ lạ cuối). Asset đầu tiên là hero preview.
func (s *RecipeService) LoadAssets(ctx context.Context, recipeID primitive.ObjectID) ([]recipemodels.RecipeAsset, error) {
	assets, err := s.assetService.Find(ctx, map[string]interface{}{"recipeId": recipeID}, nil)
	if err != nil {
		return nil, err
	}
	recipemodels.SortAssetsByAspectPriority(assets)
	return assets, nil
}

// Decide áp một quyết định review lên recipe:
// - map action sang status (approve→approved, reject→rejected, edit→edit_requested),
// - append một mục history với đầy đủ actor context và timestamp,
// - persist status, comment (chỉ non-empty cho edit), audit fields và history
//   trong MỘT update duy nhất,
// - ghi riêng một decision-event vào log phẳng per-group (audit độc lập
//   với mutable state của recipe).
//
// Action edit với comment rỗng bị chặn với ValidationError trước khi đụng store.
func (s *RecipeService) Decide(ctx context.Context, recipeID primitive.ObjectID, action string, actor DecisionActor, comment string) (recipemodels.Recipe, error) {
	var zero recipemodels.Recipe

	status := recipemodels.StatusForAction(action)
	if status == "" {
		return zero, common.ErrInvalidDecision
	}
	// Validation gate: edit phải có nội dung ghi chú
	if action == recipemodels.RecipeActionEdit && strings.TrimSpace(comment) == "" {
		return zero, common.ErrCommentRequired
	}
	// Comment chỉ đi kèm edit
	if action != recipemodels.RecipeActionEdit {
		comment = ""
	}

	recipe, err := s.FindOneById(ctx, recipeID)
	if err != nil {
		return zero, err
	}

	now := time.Now().UnixMilli()
	entry := recipemodels.HistoryEntry{
		UserID:    actor.UserID,
		UserEmail: actor.UserEmail,
		UserName:  actor.ReviewerName,
		UserRole:  actor.UserRole,
		Action:    action,
		Comment:   comment,
		Timestamp: now,
	}

	// Một update duy nhất: $set state + $push history
	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"status":        status,
			"comment":       comment,
			"lastUpdatedBy": actor.ReviewerName,
			"lastUpdatedAt": now,
		},
		Push: map[string]interface{}{
			"history": entry,
		},
	}
	updated, err := s.UpdateById(ctx, recipeID, updateData)
	if err != nil {
		return zero, err
	}

	// Decision-event vào log phẳng per-group, tách khỏi recipe document
	event := recipemodels.RecipeDecision{
		GroupID:      recipe.GroupID,
		RecipeID:     recipeID,
		Decision:     action,
		Comment:      comment,
		UserID:       actor.UserID,
		UserEmail:    actor.UserEmail,
		ReviewerName: actor.ReviewerName,
		UserRole:     actor.UserRole,
		Timestamp:    now,
	}
	if _, err := s.decisionService.InsertOne(ctx, event); err != nil {
		// Recipe đã cập nhật thành công; event fail chỉ mất một dòng audit log,
		// log lỗi thay vì fail cả quyết định
		logger.GetAppLogger().WithError(err).WithFields(logrus.Fields{
			"recipe_id": recipeID.Hex(),
			"decision":  action,
		}).Error("Không ghi được decision event vào log")
	}

	logger.GetAuditLogger().WithFields(logrus.Fields{
		"resource_type": "recipe",
		"resource_id":   recipeID.Hex(),
		"group_id":      recipe.GroupID.Hex(),
		"decision":      action,
		"actor":         actor.UserEmail,
	}).Info("Recipe review decision")
	return updated, nil
}

// FindDecisionsByGroup tải log decision-event của một group, mới nhất trước.
func (s *RecipeService) FindDecisionsByGroup(ctx context.Context, groupID primitive.ObjectID) ([]recipemodels.RecipeDecision, error) {
	return s.decisionService.FindByGroup(ctx, groupID)
}
