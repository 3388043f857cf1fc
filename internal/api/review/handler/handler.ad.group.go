package reviewhdl

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/ianwagner/campfire-sub002/internal/api/base/handler"
	"github.com/ianwagner/campfire-sub002/internal/api/middleware"
	reviewdto "github.com/ianwagner/campfire-sub002/internal/api/review/dto"
	reviewmodels "github.com/ianwagner/campfire-sub002/internal/api/review/models"
	reviewsvc "github.com/ianwagner/campfire-sub002/internal/api/review/service"
	"github.com/ianwagner/campfire-sub002/internal/cache"
	"github.com/ianwagner/campfire-sub002/internal/common"
	"github.com/ianwagner/campfire-sub002/internal/global"
	"github.com/ianwagner/campfire-sub002/internal/logger"
	"github.com/ianwagner/campfire-sub002/internal/utility"
)

// AdGroupHandler xử lý các request liên quan đến ad group:
// phiên review (enter/exit với advisory lock), review link, archive/restore/reopen,
// và mốc last-viewed (cache redis, best-effort).
type AdGroupHandler struct {
	*basehdl.BaseHandler[reviewmodels.AdGroup, reviewdto.AdGroupCreateInput, reviewdto.AdGroupUpdateInput]
	AdGroupService *reviewsvc.AdGroupService
	AdUnitService  *reviewsvc.AdUnitService
	LastViewed     *cache.LastViewedStore // nil nếu redis tắt
}

// NewAdGroupHandler tạo mới AdGroupHandler
func NewAdGroupHandler() (*AdGroupHandler, error) {
	adGroupService, err := reviewsvc.NewAdGroupService()
	if err != nil {
		return nil, fmt.Errorf("failed to create ad group service: %v", err)
	}
	adUnitService, err := reviewsvc.NewAdUnitService()
	if err != nil {
		return nil, fmt.Errorf("failed to create ad unit service: %v", err)
	}
	hdl := &AdGroupHandler{
		AdGroupService: adGroupService,
		AdUnitService:  adUnitService,
	}
	if global.Redis_Session != nil {
		ttl := time.Duration(global.ServerConfig.LastViewedTTLHours) * time.Hour
		hdl.LastViewed = cache.NewLastViewedStoreWithClient(global.Redis_Session, ttl)
	}
	hdl.BaseHandler = basehdl.NewBaseHandler[reviewmodels.AdGroup, reviewdto.AdGroupCreateInput, reviewdto.AdGroupUpdateInput](adGroupService.BaseServiceMongo)
	return hdl, nil
}

// validateGroupID kiểm tra :id trong URL là một ObjectID hợp lệ
func (h *AdGroupHandler) validateGroupID(c fiber.Ctx) (string, error) {
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

// IssueReviewLink phát hành token review-link cho một group.
// Kiểm tra điều kiện truy cập của group (visibility/requireAuth/requirePassword)
// trước khi ký token. Endpoint này không đi qua ReviewLinkMiddleware.
func (h *AdGroupHandler) IssueReviewLink(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.validateGroupID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input reviewdto.ReviewLinkInput
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

		// Surface xác thực user nằm ngoài core này; coi caller đã đăng nhập
		// khi có header Authorization của hệ thống dashboard
		authenticated := c.Get("Authorization") != ""

		group, err := h.AdGroupService.VerifyAccess(c.Context(), utility.String2ObjectID(id), input.Password, authenticated)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		ttl := time.Duration(global.ServerConfig.ReviewLinkTTLMinutes) * time.Minute
		token, err := middleware.IssueReviewLinkToken(group.ID.Hex(), input.Reviewer, ttl)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		logger.LogAction("review_link_issued", c, map[string]interface{}{
			"group_id": group.ID.Hex(),
			"reviewer": input.Reviewer,
		})
		h.HandleResponse(c, fiber.Map{
			"token":     token,
			"expiresIn": int(ttl.Seconds()),
			"group":     group,
		}, nil)
		return nil
	})
}

// EnterReview mở phiên review: giành advisory lock trên group.
// Lock bị từ chối trả về lỗi khóa riêng biệt (không phải lỗi ghi generic)
// và KHÔNG được retry tự động.
func (h *AdGroupHandler) EnterReview(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.validateGroupID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		reviewer := reviewerFromContext(c)

		group, err := h.AdGroupService.AcquireReviewLock(c.Context(), utility.String2ObjectID(id), reviewer)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		// Working set của phiên: unit chưa resolved, chưa archive
		units, err := h.AdUnitService.FindPendingByGroup(c.Context(), group.ID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		h.HandleResponse(c, fiber.Map{"group": group, "pending": units}, nil)
		return nil
	})
}

// ExitReview thoát phiên review: chạy completion check lần cuối rồi nhả lock.
// Group đã done thì check là no-op (idempotent, không ghi thêm write đổi status).
func (h *AdGroupHandler) ExitReview(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.validateGroupID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		reviewer := reviewerFromContext(c)
		groupID := utility.String2ObjectID(id)

		groupDone, err := h.AdGroupService.RecheckCompletion(c.Context(), groupID)
		if err != nil {
			// Completion fail để lại group ở trạng thái stale-but-safe,
			// vẫn nhả lock để reviewer khác vào được
			releaseErr := h.AdGroupService.ReleaseReviewLock(c.Context(), groupID, reviewer)
			h.HandleResponse(c, fiber.Map{"groupDone": false, "completionError": err.Error(), "lockReleased": releaseErr == nil}, nil)
			return nil
		}

		if err := h.AdGroupService.ReleaseReviewLock(c.Context(), groupID, reviewer); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		h.HandleResponse(c, fiber.Map{"groupDone": groupDone}, nil)
		return nil
	})
}

// SaveProgress lưu cursor resume phiên review lên group document.
func (h *AdGroupHandler) SaveProgress(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.validateGroupID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input reviewdto.ReviewProgressInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		progress := &reviewmodels.ReviewProgress{
			Position: input.Position,
			Total:    input.Total,
		}
		if input.CurrentUnitID != "" {
			unitID := utility.String2ObjectID(input.CurrentUnitID)
			if !unitID.IsZero() {
				progress.CurrentUnitID = &unitID
			}
		}

		err = h.AdGroupService.SaveReviewProgress(c.Context(), utility.String2ObjectID(id), progress)
		h.HandleResponse(c, nil, err)
		return nil
	})
}

// Archive lưu trữ group qua action tường minh.
func (h *AdGroupHandler) Archive(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.validateGroupID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		actor := reviewerFromContext(c)

		group, err := h.AdGroupService.Archive(c.Context(), utility.String2ObjectID(id), actor)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		logger.LogAction("group_archive", c, map[string]interface{}{"group_id": id})
		h.HandleResponse(c, group, nil)
		return nil
	})
}

// Restore khôi phục group đã archive về pending.
func (h *AdGroupHandler) Restore(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.validateGroupID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		actor := reviewerFromContext(c)

		group, err := h.AdGroupService.Restore(c.Context(), utility.String2ObjectID(id), actor)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		logger.LogAction("group_restore", c, map[string]interface{}{"group_id": id})
		h.HandleResponse(c, group, nil)
		return nil
	})
}

// Reopen mở lại group đã done để review tiếp.
func (h *AdGroupHandler) Reopen(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.validateGroupID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		actor := reviewerFromContext(c)

		group, err := h.AdGroupService.Reopen(c.Context(), utility.String2ObjectID(id), actor)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		logger.LogAction("group_reopen", c, map[string]interface{}{"group_id": id})
		h.HandleResponse(c, group, nil)
		return nil
	})
}

// TouchLastViewed ghi mốc thời gian reviewer xem group (cache redis, best-effort).
// Redis tắt hoặc lỗi không làm fail request: đây không phải state chính thức.
func (h *AdGroupHandler) TouchLastViewed(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.validateGroupID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		reviewer := reviewerFromContext(c)

		if h.LastViewed == nil {
			h.HandleResponse(c, fiber.Map{"cached": false}, nil)
			return nil
		}
		if err := h.LastViewed.Touch(c.Context(), reviewer, id, time.Now()); err != nil {
			// Best-effort: log và trả về cached=false thay vì fail
			logger.GetAppLogger().WithError(err).Warn("Không ghi được mốc last-viewed vào redis")
			h.HandleResponse(c, fiber.Map{"cached": false}, nil)
			return nil
		}
		h.HandleResponse(c, fiber.Map{"cached": true}, nil)
		return nil
	})
}

// GetLastViewed trả về mốc xem gần nhất của reviewer với group.
// Không có dữ liệu trả về null (chưa xem hoặc mốc đã hết TTL).
func (h *AdGroupHandler) GetLastViewed(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.validateGroupID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		reviewer := reviewerFromContext(c)

		if h.LastViewed == nil {
			h.HandleResponse(c, fiber.Map{"lastViewedAt": nil}, nil)
			return nil
		}
		at, err := h.LastViewed.Get(c.Context(), reviewer, id)
		if err != nil {
			logger.GetAppLogger().WithError(err).Warn("Không đọc được mốc last-viewed từ redis")
			h.HandleResponse(c, fiber.Map{"lastViewedAt": nil}, nil)
			return nil
		}
		if at.IsZero() {
			h.HandleResponse(c, fiber.Map{"lastViewedAt": nil}, nil)
			return nil
		}
		h.HandleResponse(c, fiber.Map{"lastViewedAt": at.UnixMilli()}, nil)
		return nil
	})
}
