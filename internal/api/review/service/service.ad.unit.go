package reviewsvc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "github.com/ianwagner/campfire-sub002/internal/api/base/service"
	reviewmodels "github.com/ianwagner/campfire-sub002/internal/api/review/models"
	"github.com/ianwagner/campfire-sub002/internal/common"
	"github.com/ianwagner/campfire-sub002/internal/global"
	"github.com/ianwagner/campfire-sub002/internal/logger"
	"github.com/ianwagner/campfire-sub002/internal/utility"
)

// brandCodeChunkSize giới hạn số brand code trong một query $in.
// Document store giới hạn 10 phần tử cho query dạng này, service tự chunk.
const brandCodeChunkSize = 10

// AdUnitService là service quản lý ad unit và state machine review per-asset.
// Store được embed qua interface để test thay bằng store in-memory.
type AdUnitService struct {
	basesvc.BaseServiceMongo[reviewmodels.AdUnit]
}

// NewAdUnitService tạo mới AdUnitService
func NewAdUnitService() (*AdUnitService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.AdUnits)
	if !exist {
		return nil, fmt.Errorf("failed to get ad_units collection: %v", common.ErrNotFound)
	}
	return &AdUnitService{
		BaseServiceMongo: basesvc.NewBaseServiceMongo[reviewmodels.AdUnit](collection),
	}, nil
}

// Ingest thêm một ad unit mới từ pipeline render.
// Slot key được tính MỘT LẦN tại đây từ filename và lưu vào document,
// các bước sau không bao giờ parse lại filename.
// Nếu unit là revision đã render xong (có lineage), các version ready/pending
// cũ hơn trong cùng lineage bị archive (chỉ đổi visibility, version terminal giữ nguyên status).
func (s *AdUnitService) Ingest(ctx context.Context, unit reviewmodels.AdUnit) (reviewmodels.AdUnit, error) {
	// Tính slot key lúc ingest nếu chưa có
	if unit.SlotKey.IsZero() && unit.Filename != "" {
		slotKey, err := reviewmodels.ParseSlotKeyFromFilename(unit.Filename)
		if err != nil {
			return unit, common.NewError(common.ErrCodeValidationInput, err.Error(), common.StatusBadRequest, err)
		}
		unit.SlotKey = slotKey
	}
	if unit.BrandCode == "" {
		unit.BrandCode = unit.SlotKey.BrandCode
	}

	// Chuẩn hóa lineage phẳng: revision luôn trỏ về root
	if unit.ParentAdID != nil && unit.RootID == nil {
		root, err := s.resolveLineageRoot(ctx, *unit.ParentAdID)
		if err != nil {
			return unit, err
		}
		unit.ParentAdID = &root
		unit.RootID = &root
	}

	inserted, err := s.InsertOne(ctx, unit)
	if err != nil {
		return inserted, err
	}

	// Archive các version ready/pending cũ hơn bị version mới này thay thế
	if inserted.RootID != nil {
		if err := s.archiveSuperseded(ctx, *inserted.RootID, inserted.Version); err != nil {
			return inserted, err
		}
	}
	return inserted, nil
}

// archiveSuperseded archive các version cũ hơn newVersion trong lineage còn ở ready/pending.
// Các version đã có quyết định terminal (approved/rejected/edit_requested) giữ nguyên status,
// chúng không còn là active version nên tự động bị loại khỏi working set.
func (s *AdUnitService) archiveSuperseded(ctx context.Context, rootID primitive.ObjectID, newVersion int) error {
	filter := map[string]interface{}{
		"$or": []map[string]interface{}{
			{"rootId": rootID},
			{"_id": rootID},
		},
		"version": map[string]interface{}{"$lt": newVersion},
		"status":  map[string]interface{}{"$in": []string{reviewmodels.AdUnitStatusReady, reviewmodels.AdUnitStatusPending}},
	}
	updateData := &basesvc.UpdateData{Set: map[string]interface{}{
		"status":     reviewmodels.AdUnitStatusArchived,
		"isResolved": true,
	}}
	_, err := s.UpdateMany(ctx, filter, updateData, nil)
	return err
}

// resolveLineageRoot tìm root của lineage chứa unit có ID cho trước.
// Lineage lưu phẳng nên tối đa một lần lookup: nếu unit có RootID/ParentAdID thì đó là root,
// ngược lại chính nó là root.
func (s *AdUnitService) resolveLineageRoot(ctx context.Context, unitID primitive.ObjectID) (primitive.ObjectID, error) {
	unit, err := s.FindOneById(ctx, unitID)
	if err != nil {
		if err == common.ErrNotFound {
			// Root không tồn tại: coi chính ID này là root (chain length 1, soft edge case)
			return unitID, nil
		}
		return primitive.NilObjectID, err
	}
	return unit.LineageRootID(), nil
}

// FindPendingByGroup tải working set của một phiên review:
// các unit chưa resolved và chưa archive của group.
// Unit đã resolved KHÔNG BAO GIỜ xuất hiện lại trong working set,
// kể cả khi status còn là ready.
func (s *AdUnitService) FindPendingByGroup(ctx context.Context, groupID primitive.ObjectID) ([]reviewmodels.AdUnit, error) {
	filter := map[string]interface{}{
		"groupId":    groupID,
		"isResolved": false,
		"status":     map[string]interface{}{"$ne": reviewmodels.AdUnitStatusArchived},
	}
	opts := options.Find().SetSort(map[string]interface{}{"createdAt": 1})
	return s.Find(ctx, filter, opts)
}

// FindByGroup tải toàn bộ unit của một group (kể cả đã resolved, trừ khi excludeArchived).
func (s *AdUnitService) FindByGroup(ctx context.Context, groupID primitive.ObjectID, excludeArchived bool) ([]reviewmodels.AdUnit, error) {
	filter := map[string]interface{}{"groupId": groupID}
	if excludeArchived {
		filter["status"] = map[string]interface{}{"$ne": reviewmodels.AdUnitStatusArchived}
	}
	return s.Find(ctx, filter, nil)
}

// FindByBrandCodes tải unit cross-group theo tập brand code.
// Store giới hạn 10 code mỗi query $in nên service chia codes thành
// ceil(N/10) query và gộp kết quả, dedup theo unit id.
func (s *AdUnitService) FindByBrandCodes(ctx context.Context, brandCodes []string, onlyUnresolved bool) ([]reviewmodels.AdUnit, error) {
	brandCodes = utility.Dedup(brandCodes)
	if len(brandCodes) == 0 {
		return []reviewmodels.AdUnit{}, nil
	}

	var merged []reviewmodels.AdUnit
	seen := make(map[primitive.ObjectID]bool)
	for _, chunk := range utility.Chunk(brandCodes, brandCodeChunkSize) {
		filter := map[string]interface{}{
			"brandCode": map[string]interface{}{"$in": chunk},
		}
		if onlyUnresolved {
			filter["isResolved"] = false
			filter["status"] = map[string]interface{}{"$ne": reviewmodels.AdUnitStatusArchived}
		}
		units, err := s.Find(ctx, filter, nil)
		if err != nil {
			return nil, err
		}
		for _, unit := range units {
			if seen[unit.ID] {
				continue
			}
			seen[unit.ID] = true
			merged = append(merged, unit)
		}
	}
	if merged == nil {
		merged = []reviewmodels.AdUnit{}
	}
	return merged, nil
}

// Approve duyệt một ad unit: status = approved, isResolved = true, stamp audit.
// Không tạo unit mới. Chỉ unit đúng ID được ghi, không bao giờ đụng tới
// slot khác trong cùng group (kể cả aspect ratio khác của cùng recipe).
// Re-submission (đổi quyết định trên unit đã resolved trước khi group đóng) được phép
// và chỉ ghi đè status/audit, không tạo revision.
func (s *AdUnitService) Approve(ctx context.Context, unitID primitive.ObjectID, reviewer string) (reviewmodels.AdUnit, error) {
	return s.decide(ctx, unitID, reviewmodels.AdUnitStatusApproved, reviewer)
}

// Reject từ chối một ad unit: giống Approve nhưng status = rejected.
func (s *AdUnitService) Reject(ctx context.Context, unitID primitive.ObjectID, reviewer string) (reviewmodels.AdUnit, error) {
	return s.decide(ctx, unitID, reviewmodels.AdUnitStatusRejected, reviewer)
}

// decide ghi quyết định terminal (approved/rejected) lên đúng MỘT unit theo ID.
func (s *AdUnitService) decide(ctx context.Context, unitID primitive.ObjectID, status string, reviewer string) (reviewmodels.AdUnit, error) {
	var zero reviewmodels.AdUnit

	unit, err := s.FindOneById(ctx, unitID)
	if err != nil {
		return zero, err
	}
	if unit.Status == reviewmodels.AdUnitStatusArchived {
		return zero, common.NewError(
			common.ErrCodeBusinessState,
			"Không thể review version đã archive, chỉ version active mới nhận quyết định",
			common.StatusBadRequest,
			nil,
		)
	}

	updateData := &basesvc.UpdateData{Set: map[string]interface{}{
		"status":        status,
		"isResolved":    true,
		"lastUpdatedBy": reviewer,
		"lastUpdatedAt": time.Now().UnixMilli(),
	}}
	updated, err := s.UpdateById(ctx, unitID, updateData)
	if err != nil {
		return zero, err
	}

	logger.GetAuditLogger().WithFields(logrus.Fields{
		"resource_type": "ad_unit",
		"resource_id":   unitID.Hex(),
		"group_id":      unit.GroupID.Hex(),
		"decision":      status,
		"actor":         reviewer,
	}).Info("Review decision")
	return updated, nil
}

// RequestEdit yêu cầu chỉnh sửa một ad unit. Hai hiệu ứng được áp dụng cùng nhau:
// (a) unit hiện tại chuyển status = edit_requested, isResolved = true, lưu comment;
// (b) một revision mới được tạo với version = max(version trong lineage) + 1,
// parentAdId/rootId trỏ về ROOT của lineage (không phải unit hiện tại),
// giữ lineage phẳng để tra cứu tổ tiên luôn O(1).
//
// Comment rỗng hoặc toàn khoảng trắng bị chặn TRƯỚC khi đụng tới store
// (không ghi gì, không tạo unit nào).
// Nếu lineage đã có revision pending (re-submission của edit), chỉ cập nhật
// comment/audit, không tạo revision trùng.
func (s *AdUnitService) RequestEdit(ctx context.Context, unitID primitive.ObjectID, comment string, reviewer string) (reviewmodels.AdUnit, *reviewmodels.AdUnit, error) {
	var zero reviewmodels.AdUnit

	// Validation gate: chặn trước mọi tương tác với store
	if strings.TrimSpace(comment) == "" {
		return zero, nil, common.ErrCommentRequired
	}

	unit, err := s.FindOneById(ctx, unitID)
	if err != nil {
		return zero, nil, err
	}
	if unit.Status == reviewmodels.AdUnitStatusArchived {
		return zero, nil, common.NewError(
			common.ErrCodeBusinessState,
			"Không thể review version đã archive, chỉ version active mới nhận quyết định",
			common.StatusBadRequest,
			nil,
		)
	}

	rootID := unit.LineageRootID()

	// Tải lineage để tính max version và phát hiện revision pending đã tồn tại
	lineage, err := s.FindLineage(ctx, rootID)
	if err != nil {
		return zero, nil, err
	}

	maxVersion := unit.Version
	var existingPending *reviewmodels.AdUnit
	for i := range lineage {
		if lineage[i].Version > maxVersion {
			maxVersion = lineage[i].Version
		}
		if lineage[i].Status == reviewmodels.AdUnitStatusPending && !lineage[i].IsResolved && lineage[i].Version > unit.Version {
			existingPending = &lineage[i]
		}
	}

	// (a) cập nhật unit hiện tại
	now := time.Now().UnixMilli()
	updateData := &basesvc.UpdateData{Set: map[string]interface{}{
		"status":        reviewmodels.AdUnitStatusEditRequested,
		"isResolved":    true,
		"comment":       comment,
		"lastUpdatedBy": reviewer,
		"lastUpdatedAt": now,
	}}
	updated, err := s.UpdateById(ctx, unitID, updateData)
	if err != nil {
		return zero, nil, err
	}

	logger.GetAuditLogger().WithFields(logrus.Fields{
		"resource_type": "ad_unit",
		"resource_id":   unitID.Hex(),
		"group_id":      unit.GroupID.Hex(),
		"decision":      reviewmodels.AdUnitStatusEditRequested,
		"actor":         reviewer,
	}).Info("Review decision")

	// Re-submission: đã có revision pending trong lineage, không tạo trùng
	if existingPending != nil {
		return updated, existingPending, nil
	}

	// (b) spawn revision mới, trỏ phẳng về root.
	// Filename của revision theo đúng convention version kế tiếp; file render
	// sẽ được pipeline đẩy lên bucket tại đường dẫn này nên firebaseUrl
	// dựng được ngay lúc spawn.
	revisionFilename := reviewmodels.NextVersionFilename(unit.Filename, maxVersion+1)
	revision := reviewmodels.AdUnit{
		GroupID:     unit.GroupID,
		BrandCode:   unit.BrandCode,
		Filename:    revisionFilename,
		FirebaseURL: utility.FirebaseObjectURL(revisionFilename),
		SlotKey:     unit.SlotKey,
		Version:     maxVersion + 1,
		ParentAdID:  &rootID,
		RootID:      &rootID,
		Status:      reviewmodels.AdUnitStatusPending,
		IsResolved:  false,
	}
	created, err := s.InsertOne(ctx, revision)
	if err != nil {
		return updated, nil, err
	}
	return updated, &created, nil
}

// FindLineage tải toàn bộ version của một lineage theo root ID, sắp tăng dần theo version.
// Lineage phẳng nên một query là đủ: root (_id == rootID) + mọi revision (rootId == rootID).
func (s *AdUnitService) FindLineage(ctx context.Context, rootID primitive.ObjectID) ([]reviewmodels.AdUnit, error) {
	filter := map[string]interface{}{
		"$or": []map[string]interface{}{
			{"_id": rootID},
			{"rootId": rootID},
		},
	}
	opts := options.Find().SetSort(map[string]interface{}{"version": 1})
	return s.Find(ctx, filter, opts)
}
