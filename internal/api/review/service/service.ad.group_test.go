package reviewsvc

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	reviewmodels "github.com/ianwagner/campfire-sub002/internal/api/review/models"
	"github.com/ianwagner/campfire-sub002/internal/common"
)

func unit(rootID *primitive.ObjectID, version int, status string, resolved bool) reviewmodels.AdUnit {
	u := reviewmodels.AdUnit{
		ID:         primitive.NewObjectID(),
		Version:    version,
		Status:     status,
		IsResolved: resolved,
	}
	if rootID != nil {
		u.ParentAdID = rootID
		u.RootID = rootID
	}
	return u
}

func TestIsGroupCompleteEmptyGroup(t *testing.T) {
	if IsGroupComplete(nil) {
		t.Error("group không có unit nào thì chưa done")
	}
	if IsGroupComplete([]reviewmodels.AdUnit{}) {
		t.Error("group rỗng thì chưa done")
	}
}

func TestIsGroupCompleteAllResolved(t *testing.T) {
	units := []reviewmodels.AdUnit{
		unit(nil, 1, reviewmodels.AdUnitStatusApproved, true),
		unit(nil, 1, reviewmodels.AdUnitStatusRejected, true),
	}
	if !IsGroupComplete(units) {
		t.Error("mọi slot đã resolved, group phải done")
	}
}

func TestIsGroupCompleteOneUnresolvedBlocks(t *testing.T) {
	units := []reviewmodels.AdUnit{
		unit(nil, 1, reviewmodels.AdUnitStatusApproved, true),
		unit(nil, 1, reviewmodels.AdUnitStatusReady, false),
	}
	if IsGroupComplete(units) {
		t.Error("còn slot chưa resolved, group không được done")
	}
}

func TestIsGroupCompleteUsesActiveVersionPerSlot(t *testing.T) {
	rootID := primitive.NewObjectID()
	root := reviewmodels.AdUnit{
		ID:         rootID,
		Version:    1,
		Status:     reviewmodels.AdUnitStatusEditRequested,
		IsResolved: true,
	}
	// Revision pending chưa resolved là version active của slot
	revision := unit(&rootID, 2, reviewmodels.AdUnitStatusPending, false)

	if IsGroupComplete([]reviewmodels.AdUnit{root, revision}) {
		t.Error("version active của slot chưa resolved, group không được done")
	}

	// Khi revision đã resolved, cả lineage coi như xong dù version 1 là edit_requested
	revision.IsResolved = true
	revision.Status = reviewmodels.AdUnitStatusApproved
	if !IsGroupComplete([]reviewmodels.AdUnit{root, revision}) {
		t.Error("version active đã resolved, group phải done")
	}
}

func TestIsGroupCompleteIgnoresArchivedVersions(t *testing.T) {
	rootID := primitive.NewObjectID()
	archived := reviewmodels.AdUnit{
		ID:         rootID,
		Version:    1,
		Status:     reviewmodels.AdUnitStatusArchived,
		IsResolved: false, // version archive cũ chưa từng resolved
	}
	active := unit(&rootID, 2, reviewmodels.AdUnitStatusApproved, true)

	if !IsGroupComplete([]reviewmodels.AdUnit{archived, active}) {
		t.Error("version archived phải bị loại khỏi phép tính completion")
	}
}

func TestIsGroupCompleteAllArchived(t *testing.T) {
	units := []reviewmodels.AdUnit{
		unit(nil, 1, reviewmodels.AdUnitStatusArchived, true),
	}
	if IsGroupComplete(units) {
		t.Error("group chỉ còn version archived thì không có slot active, chưa done")
	}
}

func TestCompleteIfResolvedMarksDoneInOneWrite(t *testing.T) {
	store := newFakeGroupStore(reviewmodels.AdGroup{
		Status:         reviewmodels.AdGroupStatusInReview,
		ReviewProgress: &reviewmodels.ReviewProgress{Position: 3, Total: 3},
	})
	svc := &AdGroupService{BaseServiceMongo: store}
	units := []reviewmodels.AdUnit{
		unit(nil, 1, reviewmodels.AdUnitStatusApproved, true),
		unit(nil, 1, reviewmodels.AdUnitStatusRejected, true),
	}

	changed, err := svc.CompleteIfResolved(context.Background(), store.group.ID, units)
	if err != nil {
		t.Fatalf("complete lỗi: %v", err)
	}
	if !changed {
		t.Fatal("group phải được chốt done")
	}
	if store.writes != 1 {
		t.Errorf("chốt done phải là đúng một write, got %d", store.writes)
	}
	if store.group.Status != reviewmodels.AdGroupStatusDone {
		t.Errorf("status phải là done, got %q", store.group.Status)
	}
	if store.group.ReviewProgress != nil {
		t.Error("reviewProgress phải bị clear khi group done")
	}
}

func TestCompleteIfResolvedIdempotentOnDoneGroup(t *testing.T) {
	store := newFakeGroupStore(reviewmodels.AdGroup{Status: reviewmodels.AdGroupStatusDone})
	svc := &AdGroupService{BaseServiceMongo: store}
	units := []reviewmodels.AdUnit{
		unit(nil, 1, reviewmodels.AdUnitStatusApproved, true),
	}

	// Mở group done xem lại rồi thoát: check chạy lại nhưng không ghi gì
	for i := 0; i < 3; i++ {
		changed, err := svc.CompleteIfResolved(context.Background(), store.group.ID, units)
		if err != nil {
			t.Fatalf("lần %d: complete lỗi: %v", i, err)
		}
		if changed {
			t.Fatalf("lần %d: group đã done, không được chốt lại", i)
		}
	}
	if store.writes != 0 {
		t.Errorf("group done không được nhận write nào, got %d", store.writes)
	}
}

func TestRecheckCompletionLoadsWorkingSet(t *testing.T) {
	groupStore := newFakeGroupStore(reviewmodels.AdGroup{Status: reviewmodels.AdGroupStatusInReview})
	resolved := unit(nil, 1, reviewmodels.AdUnitStatusApproved, true)
	resolved.GroupID = groupStore.group.ID
	unitStore := newFakeUnitStore(resolved)
	svc := &AdGroupService{
		BaseServiceMongo: groupStore,
		adUnitService:    &AdUnitService{BaseServiceMongo: unitStore},
	}

	changed, err := svc.RecheckCompletion(context.Background(), groupStore.group.ID)
	if err != nil {
		t.Fatalf("recheck lỗi: %v", err)
	}
	if !changed || groupStore.group.Status != reviewmodels.AdGroupStatusDone {
		t.Errorf("mọi slot đã resolved, group phải done, got status=%q", groupStore.group.Status)
	}
}

func TestAcquireReviewLockHeldByOtherReviewer(t *testing.T) {
	store := newFakeGroupStore(reviewmodels.AdGroup{
		Status:         reviewmodels.AdGroupStatusReady,
		ReviewLockedBy: "alice@brand.vn",
		ReviewLockedAt: 1700000000000,
	})
	svc := &AdGroupService{BaseServiceMongo: store}

	_, err := svc.AcquireReviewLock(context.Background(), store.group.ID, "bob@brand.vn")
	if err != common.ErrGroupLocked {
		t.Fatalf("khóa đang bị giữ phải trả về ErrGroupLocked, got %v", err)
	}
	if store.group.ReviewLockedBy != "alice@brand.vn" {
		t.Errorf("khóa không được đổi chủ, got %q", store.group.ReviewLockedBy)
	}
	if store.writes != 0 {
		t.Errorf("lần giành khóa thất bại không được ghi gì, got %d write", store.writes)
	}
}

func TestAcquireReviewLockReentrant(t *testing.T) {
	store := newFakeGroupStore(reviewmodels.AdGroup{
		Status:         reviewmodels.AdGroupStatusReady,
		ReviewLockedBy: "alice@brand.vn",
	})
	svc := &AdGroupService{BaseServiceMongo: store}

	group, err := svc.AcquireReviewLock(context.Background(), store.group.ID, "alice@brand.vn")
	if err != nil {
		t.Fatalf("người giữ khóa phải giành lại được trong cùng phiên: %v", err)
	}
	if group.ReviewLockedBy != "alice@brand.vn" {
		t.Errorf("khóa phải vẫn thuộc alice, got %q", group.ReviewLockedBy)
	}
}

func TestAcquireReviewLockReturnsFreshLockFields(t *testing.T) {
	store := newFakeGroupStore(reviewmodels.AdGroup{Status: reviewmodels.AdGroupStatusReady})
	svc := &AdGroupService{BaseServiceMongo: store}

	group, err := svc.AcquireReviewLock(context.Background(), store.group.ID, "alice@brand.vn")
	if err != nil {
		t.Fatalf("giành khóa trên group tự do lỗi: %v", err)
	}
	// Response phải chứa post-image: lock vừa ghi, không phải document trước khi ghi
	if group.ReviewLockedBy != "alice@brand.vn" {
		t.Errorf("reviewLockedBy trong response phải là người vừa giành khóa, got %q", group.ReviewLockedBy)
	}
	if group.ReviewLockedAt == 0 {
		t.Error("reviewLockedAt trong response phải là thời điểm vừa ghi")
	}
	if store.lastLockOpts == nil || store.lastLockOpts.ReturnDocument == nil ||
		*store.lastLockOpts.ReturnDocument != options.After {
		t.Error("conditional write của lock phải yêu cầu post-image")
	}
}

func TestAcquireReviewLockUnknownGroup(t *testing.T) {
	store := newFakeGroupStore(reviewmodels.AdGroup{Status: reviewmodels.AdGroupStatusReady})
	svc := &AdGroupService{BaseServiceMongo: store}

	_, err := svc.AcquireReviewLock(context.Background(), primitive.NewObjectID(), "alice@brand.vn")
	if err != common.ErrNotFound {
		t.Fatalf("group không tồn tại phải trả về ErrNotFound, không phải lỗi lock, got %v", err)
	}
}

func TestReleaseReviewLockOnlyByHolder(t *testing.T) {
	store := newFakeGroupStore(reviewmodels.AdGroup{
		Status:         reviewmodels.AdGroupStatusReady,
		ReviewLockedBy: "alice@brand.vn",
		ReviewLockedAt: 1700000000000,
	})
	svc := &AdGroupService{BaseServiceMongo: store}
	ctx := context.Background()

	// Người khác nhả khóa: no-op, không lỗi
	if err := svc.ReleaseReviewLock(ctx, store.group.ID, "bob@brand.vn"); err != nil {
		t.Fatalf("nhả khóa của người khác phải là no-op: %v", err)
	}
	if store.group.ReviewLockedBy != "alice@brand.vn" {
		t.Error("khóa không được mất khi người khác nhả")
	}

	if err := svc.ReleaseReviewLock(ctx, store.group.ID, "alice@brand.vn"); err != nil {
		t.Fatalf("người giữ khóa nhả lỗi: %v", err)
	}
	if store.group.ReviewLockedBy != "" || store.group.ReviewLockedAt != 0 {
		t.Errorf("khóa phải được clear, got %q/%d", store.group.ReviewLockedBy, store.group.ReviewLockedAt)
	}
}

func TestSaveReviewProgressAdvancesPendingToInReview(t *testing.T) {
	store := newFakeGroupStore(reviewmodels.AdGroup{Status: reviewmodels.AdGroupStatusPending})
	svc := &AdGroupService{BaseServiceMongo: store}
	progress := &reviewmodels.ReviewProgress{Position: 1, Total: 5}

	if err := svc.SaveReviewProgress(context.Background(), store.group.ID, progress); err != nil {
		t.Fatalf("save progress lỗi: %v", err)
	}
	if store.group.Status != reviewmodels.AdGroupStatusInReview {
		t.Errorf("group pending phải chuyển in review khi phiên bắt đầu, got %q", store.group.Status)
	}
	if store.group.ReviewProgress == nil || store.group.ReviewProgress.Position != 1 {
		t.Errorf("cursor không được lưu, got %+v", store.group.ReviewProgress)
	}
}

func TestSaveReviewProgressDoesNotDemoteReadyGroup(t *testing.T) {
	store := newFakeGroupStore(reviewmodels.AdGroup{Status: reviewmodels.AdGroupStatusReady})
	svc := &AdGroupService{BaseServiceMongo: store}
	progress := &reviewmodels.ReviewProgress{Position: 2, Total: 4}

	if err := svc.SaveReviewProgress(context.Background(), store.group.ID, progress); err != nil {
		t.Fatalf("save progress lỗi: %v", err)
	}
	if store.group.Status != reviewmodels.AdGroupStatusReady {
		t.Errorf("lưu cursor không được kéo group ready về in review, got %q", store.group.Status)
	}
	if store.group.ReviewProgress == nil || store.group.ReviewProgress.Position != 2 {
		t.Errorf("cursor vẫn phải được lưu, got %+v", store.group.ReviewProgress)
	}
}

func TestSaveReviewProgressSkipsDoneGroup(t *testing.T) {
	store := newFakeGroupStore(reviewmodels.AdGroup{Status: reviewmodels.AdGroupStatusDone})
	svc := &AdGroupService{BaseServiceMongo: store}

	err := svc.SaveReviewProgress(context.Background(), store.group.ID, &reviewmodels.ReviewProgress{Position: 1, Total: 2})
	if err != nil {
		t.Fatalf("save progress trên group done phải là no-op, got %v", err)
	}
	if store.group.ReviewProgress != nil {
		t.Error("group done không được nhận cursor mới")
	}
	if store.writes != 0 {
		t.Errorf("group done không được nhận write nào, got %d", store.writes)
	}
}
