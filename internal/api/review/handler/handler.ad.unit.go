package reviewhdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/ianwagner/campfire-sub002/internal/api/base/handler"
	"github.com/ianwagner/campfire-sub002/internal/api/middleware"
	reviewdto "github.com/ianwagner/campfire-sub002/internal/api/review/dto"
	reviewmodels "github.com/ianwagner/campfire-sub002/internal/api/review/models"
	reviewsvc "github.com/ianwagner/campfire-sub002/internal/api/review/service"
	"github.com/ianwagner/campfire-sub002/internal/common"
	"github.com/ianwagner/campfire-sub002/internal/logger"
	"github.com/ianwagner/campfire-sub002/internal/utility"
)

// AdUnitHandler xử lý các request liên quan đến ad unit:
// ingest từ pipeline render + state machine review (approve/reject/request-edit).
type AdUnitHandler struct {
	*basehdl.BaseHandler[reviewmodels.AdUnit, reviewdto.AdUnitCreateInput, reviewdto.AdUnitUpdateInput]
	AdUnitService  *reviewsvc.AdUnitService
	AdGroupService *reviewsvc.AdGroupService
}

// NewAdUnitHandler tạo mới AdUnitHandler
func NewAdUnitHandler() (*AdUnitHandler, error) {
	adUnitService, err := reviewsvc.NewAdUnitService()
	if err != nil {
		return nil, fmt.Errorf("failed to create ad unit service: %v", err)
	}
	adGroupService, err := reviewsvc.NewAdGroupService()
	if err != nil {
		return nil, fmt.Errorf("failed to create ad group service: %v", err)
	}
	hdl := &AdUnitHandler{
		AdUnitService:  adUnitService,
		AdGroupService: adGroupService,
	}
	hdl.BaseHandler = basehdl.NewBaseHandler[reviewmodels.AdUnit, reviewdto.AdUnitCreateInput, reviewdto.AdUnitUpdateInput](adUnitService.BaseServiceMongo)
	return hdl, nil
}

// InsertOne ingest một ad unit mới từ pipeline render.
// Ghi đè base CRUD để slot key được tính lúc ingest (parse filename một lần,
// lưu vào document) và lineage được chuẩn hóa phẳng.
func (h *AdUnitHandler) InsertOne(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input reviewdto.AdUnitCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON hoặc không khớp với cấu trúc yêu cầu. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		model, err := h.TransformCreateInputToModel(&input)
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Lỗi transform dữ liệu: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		data, err := h.AdUnitService.Ingest(c.Context(), *model)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// InsertMany ingest một batch ad unit từ pipeline render, từng unit qua Ingest
// để đảm bảo slot key và lineage được chuẩn hóa.
func (h *AdUnitHandler) InsertMany(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var inputs []reviewdto.AdUnitCreateInput
		if err := h.ParseRequestBody(c, &inputs); err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên phải là một mảng JSON và các phần tử phải khớp với cấu trúc yêu cầu. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		results := make([]reviewmodels.AdUnit, 0, len(inputs))
		for i := range inputs {
			if err := h.ValidateInput(&inputs[i]); err != nil {
				h.HandleResponse(c, nil, err)
				return nil
			}
			model, err := h.TransformCreateInputToModel(&inputs[i])
			if err != nil {
				h.HandleResponse(c, nil, common.NewError(
					common.ErrCodeValidationFormat,
					fmt.Sprintf("Lỗi transform dữ liệu item %d: %v", i+1, err),
					common.StatusBadRequest,
					err,
				))
				return nil
			}
			inserted, err := h.AdUnitService.Ingest(c.Context(), *model)
			if err != nil {
				h.HandleResponse(c, nil, err)
				return nil
			}
			results = append(results, inserted)
		}

		h.HandleResponse(c, results, nil)
		return nil
	})
}

// reviewerFromContext lấy định danh reviewer từ token review-link đã được middleware validate
func reviewerFromContext(c fiber.Ctx) string {
	if reviewer, ok := c.Locals("reviewer").(string); ok && reviewer != "" {
		return reviewer
	}
	return "unknown"
}

// validateUnitID kiểm tra :id trong URL là một ObjectID hợp lệ
func (h *AdUnitHandler) validateUnitID(c fiber.Ctx) (string, error) {
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

// requireUnitInTokenScope tải unit theo ID và chặn quyết định cross-group:
// token review-link của group A không ghi được quyết định lên unit của group B.
func (h *AdUnitHandler) requireUnitInTokenScope(c fiber.Ctx, id string) error {
	unit, err := h.AdUnitService.FindOneById(c.Context(), utility.String2ObjectID(id))
	if err != nil {
		return err
	}
	return middleware.CheckResourceGroupScope(c, unit.GroupID.Hex())
}

// Approve duyệt một ad unit. Chỉ đúng unit theo :id được ghi,
// sau đó chạy lại completion check của group.
func (h *AdUnitHandler) Approve(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.validateUnitID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.requireUnitInTokenScope(c, id); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		reviewer := reviewerFromContext(c)

		unit, err := h.AdUnitService.Approve(c.Context(), utility.String2ObjectID(id), reviewer)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		logger.LogDecision("ad_unit", id, reviewmodels.AdUnitStatusApproved, c, nil)

		// Completion check là convergent: fail ở đây không làm hỏng quyết định đã ghi,
		// lần check kế tiếp sẽ thử lại
		groupDone, err := h.AdGroupService.RecheckCompletion(c.Context(), unit.GroupID)
		if err != nil {
			h.HandleResponse(c, fiber.Map{"unit": unit, "groupDone": false, "completionError": err.Error()}, nil)
			return nil
		}

		h.HandleResponse(c, fiber.Map{"unit": unit, "groupDone": groupDone}, nil)
		return nil
	})
}

// Reject từ chối một ad unit, sau đó chạy lại completion check của group.
func (h *AdUnitHandler) Reject(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.validateUnitID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.requireUnitInTokenScope(c, id); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		reviewer := reviewerFromContext(c)

		unit, err := h.AdUnitService.Reject(c.Context(), utility.String2ObjectID(id), reviewer)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		logger.LogDecision("ad_unit", id, reviewmodels.AdUnitStatusRejected, c, nil)

		groupDone, err := h.AdGroupService.RecheckCompletion(c.Context(), unit.GroupID)
		if err != nil {
			h.HandleResponse(c, fiber.Map{"unit": unit, "groupDone": false, "completionError": err.Error()}, nil)
			return nil
		}

		h.HandleResponse(c, fiber.Map{"unit": unit, "groupDone": groupDone}, nil)
		return nil
	})
}

// RequestEdit yêu cầu chỉnh sửa một ad unit.
// Comment rỗng bị chặn với ValidationError trước khi đụng tới store.
// Thành công trả về cả unit đã cập nhật lẫn revision mới (nil nếu re-submission).
func (h *AdUnitHandler) RequestEdit(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.validateUnitID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.requireUnitInTokenScope(c, id); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input reviewdto.RequestEditInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}
		reviewer := reviewerFromContext(c)

		unit, revision, err := h.AdUnitService.RequestEdit(c.Context(), utility.String2ObjectID(id), input.Comment, reviewer)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		logger.LogDecision("ad_unit", id, reviewmodels.AdUnitStatusEditRequested, c, map[string]interface{}{"comment": input.Comment})

		h.HandleResponse(c, fiber.Map{"unit": unit, "revision": revision}, nil)
		return nil
	})
}

// GetPendingByGroup trả về working set của phiên review:
// các unit chưa resolved, chưa archive của group. Unit đã resolved không bao giờ
// quay lại working set, kể cả khi status còn là ready.
func (h *AdUnitHandler) GetPendingByGroup(c fiber.Ctx) error {
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

		units, err := h.AdUnitService.FindPendingByGroup(c.Context(), utility.String2ObjectID(groupID))
		h.HandleResponse(c, units, err)
		return nil
	})
}

// GetLineages dựng toàn bộ lineage của group: mỗi slot một chuỗi version tăng dần
// kèm version active. Cursor hiển thị là view-state của client, server chỉ trả data.
func (h *AdUnitHandler) GetLineages(c fiber.Ctx) error {
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

		chains, err := h.AdUnitService.ResolveGroupChains(c.Context(), utility.String2ObjectID(groupID))
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		result := make([]fiber.Map, 0, len(chains))
		for _, chain := range chains {
			entry := fiber.Map{
				"rootId":   chain.RootID,
				"slotKey":  chain.SlotKey,
				"versions": chain.Versions,
			}
			if active := chain.Active(); active != nil {
				entry["activeVersion"] = active.Version
			}
			result = append(result, entry)
		}
		h.HandleResponse(c, result, nil)
		return nil
	})
}

// GetByBrandCodes tải unit cross-group theo tập brand code (query string codes,
// phân cách dấu phẩy). Service tự chunk thành các query ≤10 code và dedup kết quả.
func (h *AdUnitHandler) GetByBrandCodes(c fiber.Ctx) error {
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
		onlyUnresolved := c.Query("unresolved", "false") == "true"

		units, err := h.AdUnitService.FindByBrandCodes(c.Context(), codes, onlyUnresolved)
		h.HandleResponse(c, units, err)
		return nil
	})
}
