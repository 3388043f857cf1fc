package reviewsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "github.com/ianwagner/campfire-sub002/internal/api/base/service"
	reviewmodels "github.com/ianwagner/campfire-sub002/internal/api/review/models"
	"github.com/ianwagner/campfire-sub002/internal/common"
	"github.com/ianwagner/campfire-sub002/internal/global"
	"github.com/ianwagner/campfire-sub002/internal/logger"
)

// AdGroupService là service quản lý ad group: advisory lock, completion aggregator,
// archive/restore/reopen và kiểm tra quyền truy cập review link.
// Store được embed qua interface để test thay bằng store in-memory.
type AdGroupService struct {
	basesvc.BaseServiceMongo[reviewmodels.AdGroup]
	adUnitService *AdUnitService
}

// NewAdGroupService tạo mới AdGroupService
func NewAdGroupService() (*AdGroupService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.AdGroups)
	if !exist {
		return nil, fmt.Errorf("failed to get ad_groups collection: %v", common.ErrNotFound)
	}
	adUnitService, err := NewAdUnitService()
	if err != nil {
		return nil, fmt.Errorf("failed to create ad unit service: %v", err)
	}
	return &AdGroupService{
		BaseServiceMongo: basesvc.NewBaseServiceMongo[reviewmodels.AdGroup](collection),
		adUnitService:    adUnitService,
	}, nil
}

// AcquireReviewLock giành advisory lock trên group trước khi reviewer được submit quyết định.
// Lock là conditional write trên group document: chỉ thành công khi chưa ai giữ khóa
// hoặc chính reviewer này đang giữ (re-entrant trong cùng phiên).
//
// Nếu store từ chối vì permission-denied, trả về ErrGroupLocked (phân biệt với
// lỗi ghi generic) và KHÔNG tự retry. Reviewer có thể thử lại bằng một action mới.
func (s *AdGroupService) AcquireReviewLock(ctx context.Context, groupID primitive.ObjectID, reviewer string) (reviewmodels.AdGroup, error) {
	var zero reviewmodels.AdGroup

	filter := map[string]interface{}{
		"_id": groupID,
		"$or": []map[string]interface{}{
			{"reviewLockedBy": map[string]interface{}{"$exists": false}},
			{"reviewLockedBy": ""},
			{"reviewLockedBy": reviewer},
		},
	}
	updateData := &basesvc.UpdateData{Set: map[string]interface{}{
		"reviewLockedBy": reviewer,
		"reviewLockedAt": time.Now().UnixMilli(),
	}}

	// Trả về post-image để response chứa đúng reviewLockedBy/At vừa ghi
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	group, err := s.FindOneAndUpdate(ctx, filter, updateData, opts)
	if err != nil {
		if common.IsPermissionDenied(err) {
			return zero, common.ErrGroupLocked
		}
		if err == common.ErrNotFound {
			// Group tồn tại nhưng khóa đang bị giữ bởi reviewer khác,
			// hoặc group không tồn tại. Phân biệt hai trường hợp.
			exists, existsErr := s.DocumentExists(ctx, map[string]interface{}{"_id": groupID})
			if existsErr == nil && exists {
				return zero, common.ErrGroupLocked
			}
			return zero, common.ErrNotFound
		}
		return zero, err
	}

	logger.GetAuditLogger().WithFields(logrus.Fields{
		"resource_type": "ad_group",
		"resource_id":   groupID.Hex(),
		"actor":         reviewer,
	}).Info("Review lock acquired")
	return group, nil
}

// ReleaseReviewLock nhả advisory lock khi reviewer thoát phiên.
// Chỉ người giữ khóa mới nhả được; nhả khóa không tồn tại là no-op.
func (s *AdGroupService) ReleaseReviewLock(ctx context.Context, groupID primitive.ObjectID, reviewer string) error {
	filter := map[string]interface{}{
		"_id":            groupID,
		"reviewLockedBy": reviewer,
	}
	updateData := &basesvc.UpdateData{Unset: map[string]interface{}{
		"reviewLockedBy": "",
		"reviewLockedAt": "",
	}}
	_, err := s.UpdateOne(ctx, filter, updateData, nil)
	if err == common.ErrNotFound {
		return nil // khóa đã được nhả hoặc thuộc reviewer khác
	}
	return err
}

// IsGroupComplete là predicate thuần: group "done" khi mọi slot active,
// non-archived đều đã resolved. Các version archived bị loại hoàn toàn khỏi
// phép tính. Group không có unit nào thì chưa done.
//
// Hàm nhận tập unit đã load (không tự fetch) để completion check lúc thoát
// phiên chạy trên state in-memory, đúng semantics chỉ-fire-một-lần.
func IsGroupComplete(units []reviewmodels.AdUnit) bool {
	// Gom theo lineage root, tìm version active của mỗi slot
	type slotState struct {
		maxVersion int
		resolved   bool
	}
	slots := make(map[primitive.ObjectID]*slotState)
	for i := range units {
		u := &units[i]
		if u.Status == reviewmodels.AdUnitStatusArchived {
			continue
		}
		rootID := u.LineageRootID()
		st, ok := slots[rootID]
		if !ok {
			st = &slotState{maxVersion: -1}
			slots[rootID] = st
		}
		if u.Version > st.maxVersion {
			st.maxVersion = u.Version
			st.resolved = u.IsResolved
		}
	}

	if len(slots) == 0 {
		return false
	}
	for _, st := range slots {
		if !st.resolved {
			return false
		}
	}
	return true
}

// CompleteIfResolved kiểm tra và chốt completion cho group.
// Khi mọi slot active đã resolved, group chuyển {status: done, reviewProgress: null}
// trong ĐÚNG MỘT write. Idempotent: group đã done thì không ghi gì thêm
// (mở group done để xem rồi thoát không phát sinh write đổi status).
//
// Aggregator là convergent chứ không transactional: nếu write này fail,
// group giữ state cũ (stale nhưng an toàn) và lần check kế tiếp sẽ thử lại.
func (s *AdGroupService) CompleteIfResolved(ctx context.Context, groupID primitive.ObjectID, units []reviewmodels.AdUnit) (bool, error) {
	group, err := s.FindOneById(ctx, groupID)
	if err != nil {
		return false, err
	}

	// Idempotent: đã done thì không ghi lại
	if group.Status == reviewmodels.AdGroupStatusDone {
		return false, nil
	}
	// Archive là trạng thái tường minh, completion không đụng tới
	if group.Status == reviewmodels.AdGroupStatusArchived {
		return false, nil
	}

	if !IsGroupComplete(units) {
		return false, nil
	}

	updateData := &basesvc.UpdateData{Set: map[string]interface{}{
		"status":         reviewmodels.AdGroupStatusDone,
		"reviewProgress": nil,
	}}
	if _, err := s.UpdateById(ctx, groupID, updateData); err != nil {
		return false, err
	}

	logger.GetAuditLogger().WithFields(logrus.Fields{
		"resource_type": "ad_group",
		"resource_id":   groupID.Hex(),
		"status":        reviewmodels.AdGroupStatusDone,
	}).Info("Group review completed")
	return true, nil
}

// RecheckCompletion tải working set hiện tại của group từ store rồi chạy CompleteIfResolved.
// Dùng sau mỗi quyết định per-unit (khác với completion check lúc thoát phiên,
// vốn chạy trên state in-memory do caller giữ).
func (s *AdGroupService) RecheckCompletion(ctx context.Context, groupID primitive.ObjectID) (bool, error) {
	units, err := s.adUnitService.FindByGroup(ctx, groupID, true)
	if err != nil {
		return false, err
	}
	return s.CompleteIfResolved(ctx, groupID, units)
}

// SaveReviewProgress lưu cursor resume của phiên review lên group document.
// Không ghi khi group đã done (progress đã bị clear vĩnh viễn).
// Status chỉ tiến pending -> in review; group đang ready không bị kéo lùi
// chỉ vì phiên review lưu cursor.
func (s *AdGroupService) SaveReviewProgress(ctx context.Context, groupID primitive.ObjectID, progress *reviewmodels.ReviewProgress) error {
	filter := map[string]interface{}{
		"_id": groupID,
		"status": map[string]interface{}{
			"$in": []string{reviewmodels.AdGroupStatusPending, reviewmodels.AdGroupStatusInReview},
		},
	}
	updateData := &basesvc.UpdateData{Set: map[string]interface{}{
		"reviewProgress": progress,
		"status":         reviewmodels.AdGroupStatusInReview,
	}}
	_, err := s.UpdateOne(ctx, filter, updateData, nil)
	if err == nil {
		return nil
	}
	if err != common.ErrNotFound {
		return err
	}

	// Group không ở pending/in review: chỉ lưu cursor, giữ nguyên status
	filter = map[string]interface{}{
		"_id": groupID,
		"status": map[string]interface{}{
			"$nin": []string{reviewmodels.AdGroupStatusDone, reviewmodels.AdGroupStatusArchived},
		},
	}
	updateData = &basesvc.UpdateData{Set: map[string]interface{}{
		"reviewProgress": progress,
	}}
	_, err = s.UpdateOne(ctx, filter, updateData, nil)
	if err == common.ErrNotFound {
		return nil // group đã done/archive, bỏ qua cursor
	}
	return err
}

// Archive lưu trữ group qua action tường minh. Chỉ group chưa done mới archive được
// từ luồng review; group done phải reopen trước.
func (s *AdGroupService) Archive(ctx context.Context, groupID primitive.ObjectID, actor string) (reviewmodels.AdGroup, error) {
	var zero reviewmodels.AdGroup

	group, err := s.FindOneById(ctx, groupID)
	if err != nil {
		return zero, err
	}
	if group.Status == reviewmodels.AdGroupStatusArchived {
		return group, nil // đã archive, idempotent
	}

	updateData := &basesvc.UpdateData{Set: map[string]interface{}{
		"status":     reviewmodels.AdGroupStatusArchived,
		"archivedAt": time.Now().UnixMilli(),
		"archivedBy": actor,
	}}
	updated, err := s.UpdateById(ctx, groupID, updateData)
	if err != nil {
		return zero, err
	}

	logger.GetAuditLogger().WithFields(logrus.Fields{
		"resource_type": "ad_group",
		"resource_id":   groupID.Hex(),
		"actor":         actor,
	}).Info("Group archived")
	return updated, nil
}

// Restore khôi phục group đã archive về pending, clear dấu vết archive.
func (s *AdGroupService) Restore(ctx context.Context, groupID primitive.ObjectID, actor string) (reviewmodels.AdGroup, error) {
	var zero reviewmodels.AdGroup

	group, err := s.FindOneById(ctx, groupID)
	if err != nil {
		return zero, err
	}
	if group.Status != reviewmodels.AdGroupStatusArchived {
		return zero, common.NewError(
			common.ErrCodeBusinessState,
			"Chỉ group đã archive mới restore được",
			common.StatusBadRequest,
			nil,
		)
	}

	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"status":     reviewmodels.AdGroupStatusPending,
			"archivedAt": nil,
			"archivedBy": nil,
		},
	}
	updated, err := s.UpdateById(ctx, groupID, updateData)
	if err != nil {
		return zero, err
	}

	logger.GetAuditLogger().WithFields(logrus.Fields{
		"resource_type": "ad_group",
		"resource_id":   groupID.Hex(),
		"actor":         actor,
	}).Info("Group restored")
	return updated, nil
}

// Reopen mở lại group đã done để review tiếp (action "reopen for review" tường minh,
// không bao giờ xảy ra như side effect của một quyết định).
func (s *AdGroupService) Reopen(ctx context.Context, groupID primitive.ObjectID, actor string) (reviewmodels.AdGroup, error) {
	var zero reviewmodels.AdGroup

	group, err := s.FindOneById(ctx, groupID)
	if err != nil {
		return zero, err
	}
	if group.Status != reviewmodels.AdGroupStatusDone {
		return zero, common.NewError(
			common.ErrCodeBusinessState,
			"Chỉ group đã done mới reopen được",
			common.StatusBadRequest,
			nil,
		)
	}

	updateData := &basesvc.UpdateData{Set: map[string]interface{}{
		"status": reviewmodels.AdGroupStatusReady,
	}}
	updated, err := s.UpdateById(ctx, groupID, updateData)
	if err != nil {
		return zero, err
	}

	logger.GetAuditLogger().WithFields(logrus.Fields{
		"resource_type": "ad_group",
		"resource_id":   groupID.Hex(),
		"actor":         actor,
	}).Info("Group reopened for review")
	return updated, nil
}

// VerifyAccess kiểm tra điều kiện truy cập review link của group
// (visibility/requireAuth/requirePassword) trước khi phát hành token.
// authenticated là kết quả xác thực của surface bên ngoài (out of scope ở đây).
func (s *AdGroupService) VerifyAccess(ctx context.Context, groupID primitive.ObjectID, password string, authenticated bool) (reviewmodels.AdGroup, error) {
	var zero reviewmodels.AdGroup

	group, err := s.FindOneById(ctx, groupID)
	if err != nil {
		return zero, err
	}
	if group.Status == reviewmodels.AdGroupStatusArchived {
		return zero, common.NewError(
			common.ErrCodeBusinessState,
			"Group đã được lưu trữ, không thể mở phiên review",
			common.StatusBadRequest,
			nil,
		)
	}

	if group.RequireAuth && !authenticated {
		return zero, common.NewError(
			common.ErrCodeAuth,
			"Group này yêu cầu đăng nhập để review",
			common.StatusUnauthorized,
			nil,
		)
	}
	if group.RequirePassword && group.Password != password {
		return zero, common.NewError(
			common.ErrCodeAuth,
			"Password review link không đúng",
			common.StatusUnauthorized,
			nil,
		)
	}
	return group, nil
}
