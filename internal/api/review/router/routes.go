// Package router đăng ký các route thuộc domain Review: Ad Groups, Ad Units, phiên review.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/ianwagner/campfire-sub002/internal/api/middleware"
	reviewhdl "github.com/ianwagner/campfire-sub002/internal/api/review/handler"
	apirouter "github.com/ianwagner/campfire-sub002/internal/api/router"
)

// Register đăng ký tất cả route của domain review lên v1.
//
// Hai surface tách prefix riêng để middleware không dính chéo
// (group.Use áp cho mọi route cùng prefix):
// - Surface dashboard/pipeline (không cần token review-link): CRUD + action quản trị
// - Surface reviewer (/review/...): mọi route đi qua ReviewLinkMiddleware
func Register(v1 fiber.Router, r *apirouter.Router) error {
	adGroupHandler, err := reviewhdl.NewAdGroupHandler()
	if err != nil {
		return fmt.Errorf("create ad group handler: %w", err)
	}
	adUnitHandler, err := reviewhdl.NewAdUnitHandler()
	if err != nil {
		return fmt.Errorf("create ad unit handler: %w", err)
	}

	// ===== SURFACE DASHBOARD / PIPELINE =====

	// CRUD group: dashboard quản lý group
	r.RegisterCRUDRoutes(v1, "/ad-groups", adGroupHandler, apirouter.ReadWriteConfig, nil)
	// CRUD unit: pipeline render ingest asset + dashboard đọc
	r.RegisterCRUDRoutes(v1, "/ad-units", adUnitHandler, apirouter.IngestOnlyConfig, nil)

	// Phát hành token review-link (kiểm tra visibility/password của group bên trong)
	apirouter.RegisterRouteWithMiddleware(v1, "/ad-groups", "POST", "/:id/review-link", nil, adGroupHandler.IssueReviewLink)

	// Action quản trị group (archive tường minh, không phải side effect của review)
	apirouter.RegisterRouteWithMiddleware(v1, "/ad-groups", "POST", "/:id/archive", nil, adGroupHandler.Archive)
	apirouter.RegisterRouteWithMiddleware(v1, "/ad-groups", "POST", "/:id/restore", nil, adGroupHandler.Restore)
	apirouter.RegisterRouteWithMiddleware(v1, "/ad-groups", "POST", "/:id/reopen", nil, adGroupHandler.Reopen)

	// Query cross-group theo brand code (dashboard notifications)
	apirouter.RegisterRouteWithMiddleware(v1, "/ad-units", "GET", "/by-brand", nil, adUnitHandler.GetByBrandCodes)

	// ===== SURFACE REVIEWER (token review-link bắt buộc) =====

	reviewLink := middleware.ReviewLinkMiddleware()
	groupScope := middleware.RequireGroupScope("id")
	groupScopeParam := middleware.RequireGroupScope("groupId")

	// Phiên review trên group
	apirouter.RegisterRouteWithMiddleware(v1, "/review/groups", "POST", "/:id/enter", []fiber.Handler{reviewLink, groupScope}, adGroupHandler.EnterReview)
	apirouter.RegisterRouteWithMiddleware(v1, "/review/groups", "POST", "/:id/exit", []fiber.Handler{reviewLink, groupScope}, adGroupHandler.ExitReview)
	apirouter.RegisterRouteWithMiddleware(v1, "/review/groups", "PUT", "/:id/progress", []fiber.Handler{reviewLink, groupScope}, adGroupHandler.SaveProgress)

	// Working set + lineage của group
	apirouter.RegisterRouteWithMiddleware(v1, "/review/groups", "GET", "/:groupId/pending", []fiber.Handler{reviewLink, groupScopeParam}, adUnitHandler.GetPendingByGroup)
	apirouter.RegisterRouteWithMiddleware(v1, "/review/groups", "GET", "/:groupId/lineages", []fiber.Handler{reviewLink, groupScopeParam}, adUnitHandler.GetLineages)

	// Mốc last-viewed (cache redis, best-effort)
	apirouter.RegisterRouteWithMiddleware(v1, "/review/groups", "POST", "/:id/last-viewed", []fiber.Handler{reviewLink, groupScope}, adGroupHandler.TouchLastViewed)
	apirouter.RegisterRouteWithMiddleware(v1, "/review/groups", "GET", "/:id/last-viewed", []fiber.Handler{reviewLink, groupScope}, adGroupHandler.GetLastViewed)

	// Quyết định review per-unit
	apirouter.RegisterRouteWithMiddleware(v1, "/review/units", "POST", "/approve/:id", []fiber.Handler{reviewLink}, adUnitHandler.Approve)
	apirouter.RegisterRouteWithMiddleware(v1, "/review/units", "POST", "/reject/:id", []fiber.Handler{reviewLink}, adUnitHandler.Reject)
	apirouter.RegisterRouteWithMiddleware(v1, "/review/units", "POST", "/request-edit/:id", []fiber.Handler{reviewLink}, adUnitHandler.RequestEdit)

	return nil
}
