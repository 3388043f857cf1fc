package recipehdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/ianwagner/campfire-sub002/internal/api/base/handler"
	recipedto "github.com/ianwagner/campfire-sub002/internal/api/recipe/dto"
	recipemodels "github.com/ianwagner/campfire-sub002/internal/api/recipe/models"
	recipesvc "github.com/ianwagner/campfire-sub002/internal/api/recipe/service"
	"github.com/ianwagner/campfire-sub002/internal/common"
	"github.com/ianwagner/campfire-sub002/internal/logger"
	"github.com/ianwagner/campfire-sub002/internal/utility"
)

// RecipeHandler xử lý các request review recipe-granularity (agency-side).
type RecipeHandler struct {
	*basehdl.BaseHandler[recipemodels.Recipe, recipedto.RecipeCreateInput, recipedto.RecipeUpdateInput]
	RecipeService *recipesvc.RecipeService
}

// NewRecipeHandler tạo mới RecipeHandler
func NewRecipeHandler() (*RecipeHandler, error) {
	recipeService, err := recipesvc.NewRecipeService()
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe service: %v", err)
	}
	hdl := &RecipeHandler{
		RecipeService: recipeService,
	}
	hdl.BaseHandler = basehdl.NewBaseHandler[recipemodels.Recipe, recipedto.RecipeCreateInput, recipedto.RecipeUpdateInput](recipeService.BaseServiceMongo)
	return hdl, nil
}

// validateRecipeID kiểm tra :id trong URL là một ObjectID hợp lệ
func (h *RecipeHandler) validateRecipeID(c fiber.Ctx) (string, error) {
	id := h.GetIDFromContext(c)
	if id == "" || utility.String2ObjectID(id).IsZero() {
		return "", common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("ID '%s' không đúng định dạng MongoDB ObjectID (phải là chuỗi hex 24 ký tự)", id),
			common.StatusBadRequest,
			nil,
		)
	}
	return id, nil
}

// Decide áp một quyết định review lên recipe.
// Action edit với comment rỗng bị chặn với ValidationError.
func (h *RecipeHandler) Decide(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.validateRecipeID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input recipedto.RecipeDecideInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		actor := recipesvc.DecisionActor{
			UserID:       input.UserID,
			UserEmail:    input.UserEmail,
			ReviewerName: input.ReviewerName,
			UserRole:     input.UserRole,
		}
		recipe, err := h.RecipeService.Decide(c.Context(), utility.String2ObjectID(id), input.Action, actor, input.Comment)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		logger.LogDecision("recipe", id, input.Action, c, map[string]interface{}{"comment": input.Comment})

		h.HandleResponse(c, recipe, nil)
		return nil
	})
}

// GetReadyByGroup trả về các recipe sẵn sàng review của một group,
// kèm assets đã sắp theo ưu tiên tỉ lệ và hero preview của từng recipe.
func (h *RecipeHandler) GetReadyByGroup(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		groupID := c.Params("groupId")
		if groupID == "" || utility.String2ObjectID(groupID).IsZero() {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				"Group ID không đúng định dạng MongoDB ObjectID",
				common.StatusBadRequest,
				nil,
			))
			return nil
		}

		recipes, err := h.RecipeService.FindReadyByGroup(c.Context(), utility.String2ObjectID(groupID))
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		result, err := h.attachAssets(c, recipes)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleResponse(c, result, nil)
		return nil
	})
}

// GetReadyByBrandCodes trả về recipe ready cross-group theo tập brand code
// (query string codes, phân cách dấu phẩy). Service tự chunk thành các query
// ≤10 code và dedup kết quả theo recipe id.
func (h *RecipeHandler) GetReadyByBrandCodes(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		codes := utility.SplitAndTrim(c.Query("codes"), ",")
		if len(codes) == 0 {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput,
				"Thiếu query param codes (danh sách brand code phân cách dấu phẩy)",
				common.StatusBadRequest,
				nil,
			))
			return nil
		}

		recipes, err := h.RecipeService.FindReadyByBrandCodes(c.Context(), codes)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		result, err := h.attachAssets(c, recipes)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleResponse(c, result, nil)
		return nil
	})
}

// attachAssets gắn assets (đã sắp theo ưu tiên tỉ lệ) và hero preview vào từng recipe
func (h *RecipeHandler) attachAssets(c fiber.Ctx, recipes []recipemodels.Recipe) ([]fiber.Map, error) {
	result := make([]fiber.Map, 0, len(recipes))
	for _, recipe := range recipes {
		assets, err := h.RecipeService.LoadAssets(c.Context(), recipe.ID)
		if err != nil {
			return nil, err
		}
		entry := fiber.Map{
			"recipe": recipe,
			"assets": assets,
		}
		if len(assets) > 0 {
			entry["hero"] = assets[0]
		}
		result = append(result, entry)
	}
	return result, nil
}

// GetDecisionsByGroup trả về log decision-event của group, mới nhất trước.
func (h *RecipeHandler) GetDecisionsByGroup(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		groupID := c.Params("groupId")
		if groupID == "" || utility.String2ObjectID(groupID).IsZero() {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				"Group ID không đúng định dạng MongoDB ObjectID",
				common.StatusBadRequest,
				nil,
			))
			return nil
		}

		decisions, err := h.RecipeService.FindDecisionsByGroup(c.Context(), utility.String2ObjectID(groupID))
		h.HandleResponse(c, decisions, err)
		return nil
	})
}
