package reviewsvc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	reviewmodels "github.com/ianwagner/campfire-sub002/internal/api/review/models"
	"github.com/ianwagner/campfire-sub002/internal/common"
)

func slotKey(recipeCode, aspectRatio string) reviewmodels.SlotKey {
	return reviewmodels.SlotKey{
		BrandCode:   "BR1",
		GroupID:     "G1",
		RecipeCode:  recipeCode,
		AspectRatio: aspectRatio,
	}
}

// Service không có store: nếu validation gate không chặn trước khi đụng store
// thì test sẽ panic vì nil pointer.
func TestRequestEditRejectsEmptyCommentBeforeStoreIO(t *testing.T) {
	svc := &AdUnitService{}
	cases := []string{"", "   ", "\t\n"}

	for _, comment := range cases {
		_, revision, err := svc.RequestEdit(context.Background(), primitive.NewObjectID(), comment, "reviewer@brand.vn")
		if err == nil {
			t.Fatalf("comment %q phải bị từ chối", comment)
		}
		if err != common.ErrCommentRequired {
			t.Errorf("comment %q: lỗi sai, got %v, want ErrCommentRequired", comment, err)
		}
		if revision != nil {
			t.Errorf("comment %q: không được tạo revision nào", comment)
		}
	}
}

func TestApproveWritesOnlyTargetUnit(t *testing.T) {
	groupID := primitive.NewObjectID()
	target := reviewmodels.AdUnit{
		ID:      primitive.NewObjectID(),
		GroupID: groupID,
		SlotKey: slotKey("RC1", "9x16"),
		Version: 1,
		Status:  reviewmodels.AdUnitStatusReady,
	}
	// Cùng recipe, aspect ratio khác: slot độc lập, không được đụng tới
	sibling := reviewmodels.AdUnit{
		ID:      primitive.NewObjectID(),
		GroupID: groupID,
		SlotKey: slotKey("RC1", "1x1"),
		Version: 1,
		Status:  reviewmodels.AdUnitStatusReady,
	}
	other := reviewmodels.AdUnit{
		ID:      primitive.NewObjectID(),
		GroupID: groupID,
		SlotKey: slotKey("RC2", "9x16"),
		Version: 1,
		Status:  reviewmodels.AdUnitStatusReady,
	}
	store := newFakeUnitStore(target, sibling, other)
	svc := &AdUnitService{BaseServiceMongo: store}

	updated, err := svc.Approve(context.Background(), target.ID, "reviewer@brand.vn")
	if err != nil {
		t.Fatalf("approve lỗi: %v", err)
	}
	if updated.Status != reviewmodels.AdUnitStatusApproved || !updated.IsResolved {
		t.Errorf("unit được duyệt phải approved + resolved, got status=%q resolved=%v", updated.Status, updated.IsResolved)
	}
	if updated.LastUpdatedBy != "reviewer@brand.vn" {
		t.Errorf("audit stamp sai: got %q", updated.LastUpdatedBy)
	}

	if len(store.writtenIDs) != 1 || store.writtenIDs[0] != target.ID {
		t.Fatalf("chỉ unit đích được ghi, got writes %v", store.writtenIDs)
	}
	for _, id := range []primitive.ObjectID{sibling.ID, other.ID} {
		u := store.unitByID(id)
		if u.Status != reviewmodels.AdUnitStatusReady || u.IsResolved {
			t.Errorf("slot khác bị đụng tới: %+v", u)
		}
	}
}

func TestDecisionsRejectArchivedVersion(t *testing.T) {
	archived := reviewmodels.AdUnit{
		ID:      primitive.NewObjectID(),
		GroupID: primitive.NewObjectID(),
		SlotKey: slotKey("RC1", "9x16"),
		Version: 1,
		Status:  reviewmodels.AdUnitStatusArchived,
	}
	store := newFakeUnitStore(archived)
	svc := &AdUnitService{BaseServiceMongo: store}
	ctx := context.Background()

	if _, err := svc.Approve(ctx, archived.ID, "reviewer@brand.vn"); err == nil {
		t.Error("approve version archived phải bị từ chối")
	}
	if _, err := svc.Reject(ctx, archived.ID, "reviewer@brand.vn"); err == nil {
		t.Error("reject version archived phải bị từ chối")
	}
	_, revision, err := svc.RequestEdit(ctx, archived.ID, "sửa lại màu", "reviewer@brand.vn")
	if err == nil {
		t.Fatal("request edit version archived phải bị từ chối")
	}
	var appErr *common.Error
	if !errors.As(err, &appErr) || appErr.Code.Code != common.ErrCodeBusinessState.Code {
		t.Errorf("lỗi phải mang mã business state, got %v", err)
	}
	if revision != nil {
		t.Error("không được spawn revision từ version archived")
	}

	if len(store.writtenIDs) != 0 {
		t.Errorf("version archived là immutable, không được có write nào, got %v", store.writtenIDs)
	}
	if len(store.units) != 1 {
		t.Errorf("không được insert unit mới, store có %d unit", len(store.units))
	}
}

func TestRequestEditSpawnsFlatRevision(t *testing.T) {
	rootID := primitive.NewObjectID()
	groupID := primitive.NewObjectID()
	root := reviewmodels.AdUnit{
		ID:         rootID,
		GroupID:    groupID,
		BrandCode:  "BR1",
		Filename:   "BR1_G1_RC1_9x16_V1.png",
		SlotKey:    slotKey("RC1", "9x16"),
		Version:    1,
		Status:     reviewmodels.AdUnitStatusEditRequested,
		IsResolved: true,
	}
	// Revision v2 đã render xong và đang chờ quyết định
	v2 := reviewmodels.AdUnit{
		ID:         primitive.NewObjectID(),
		GroupID:    groupID,
		BrandCode:  "BR1",
		Filename:   "BR1_G1_RC1_9x16_V2.png",
		SlotKey:    slotKey("RC1", "9x16"),
		Version:    2,
		ParentAdID: &rootID,
		RootID:     &rootID,
		Status:     reviewmodels.AdUnitStatusReady,
	}
	store := newFakeUnitStore(root, v2)
	svc := &AdUnitService{BaseServiceMongo: store}

	updated, revision, err := svc.RequestEdit(context.Background(), v2.ID, "đổi màu nền", "reviewer@brand.vn")
	if err != nil {
		t.Fatalf("request edit lỗi: %v", err)
	}
	if updated.Status != reviewmodels.AdUnitStatusEditRequested || !updated.IsResolved {
		t.Errorf("unit hiện tại phải edit_requested + resolved, got %+v", updated)
	}
	if updated.Comment != "đổi màu nền" {
		t.Errorf("comment không được lưu: got %q", updated.Comment)
	}
	if revision == nil {
		t.Fatal("phải spawn revision mới")
	}
	if revision.Version != 3 {
		t.Errorf("version revision phải là max+1 = 3, got %d", revision.Version)
	}
	// Lineage phẳng: revision của v2 vẫn trỏ về ROOT, không trỏ về v2
	if revision.ParentAdID == nil || *revision.ParentAdID != rootID {
		t.Errorf("parentAdId phải trỏ về root %s, got %v", rootID.Hex(), revision.ParentAdID)
	}
	if revision.RootID == nil || *revision.RootID != rootID {
		t.Errorf("rootId phải trỏ về root %s, got %v", rootID.Hex(), revision.RootID)
	}
	if revision.Status != reviewmodels.AdUnitStatusPending || revision.IsResolved {
		t.Errorf("revision mới phải pending + chưa resolved, got %+v", revision)
	}
	if revision.Filename != "BR1_G1_RC1_9x16_V3.png" {
		t.Errorf("filename revision sai convention: got %q", revision.Filename)
	}
	if !revision.SlotKey.Equal(v2.SlotKey) {
		t.Errorf("revision phải giữ nguyên slot key, got %+v", revision.SlotKey)
	}
}

func TestRequestEditReusesExistingPendingRevision(t *testing.T) {
	rootID := primitive.NewObjectID()
	root := reviewmodels.AdUnit{
		ID:       rootID,
		GroupID:  primitive.NewObjectID(),
		Filename: "BR1_G1_RC1_9x16_V1.png",
		SlotKey:  slotKey("RC1", "9x16"),
		Version:  1,
		Status:   reviewmodels.AdUnitStatusReady,
	}
	pending := reviewmodels.AdUnit{
		ID:         primitive.NewObjectID(),
		GroupID:    root.GroupID,
		Version:    2,
		ParentAdID: &rootID,
		RootID:     &rootID,
		Status:     reviewmodels.AdUnitStatusPending,
	}
	store := newFakeUnitStore(root, pending)
	svc := &AdUnitService{BaseServiceMongo: store}

	_, revision, err := svc.RequestEdit(context.Background(), root.ID, "góc bo tròn hơn", "reviewer@brand.vn")
	if err != nil {
		t.Fatalf("request edit lỗi: %v", err)
	}
	if revision == nil || revision.ID != pending.ID {
		t.Fatalf("phải trả về revision pending đã tồn tại, got %+v", revision)
	}
	if len(store.units) != 2 {
		t.Errorf("không được tạo revision trùng, store có %d unit", len(store.units))
	}
	if len(store.writtenIDs) != 1 || store.writtenIDs[0] != root.ID {
		t.Errorf("chỉ unit hiện tại được ghi, got writes %v", store.writtenIDs)
	}
}

func TestIngestFlattensLineageAndArchivesSuperseded(t *testing.T) {
	rootID := primitive.NewObjectID()
	groupID := primitive.NewObjectID()
	// v1 đã có quyết định terminal, v2 đang ready chờ review
	root := reviewmodels.AdUnit{
		ID:         rootID,
		GroupID:    groupID,
		BrandCode:  "BR1",
		SlotKey:    slotKey("RC1", "9x16"),
		Version:    1,
		Status:     reviewmodels.AdUnitStatusApproved,
		IsResolved: true,
	}
	v2 := reviewmodels.AdUnit{
		ID:         primitive.NewObjectID(),
		GroupID:    groupID,
		BrandCode:  "BR1",
		SlotKey:    slotKey("RC1", "9x16"),
		Version:    2,
		ParentAdID: &rootID,
		RootID:     &rootID,
		Status:     reviewmodels.AdUnitStatusReady,
	}
	store := newFakeUnitStore(root, v2)
	svc := &AdUnitService{BaseServiceMongo: store}

	// Pipeline render đẩy v3 lên, parent trỏ về v2 (chưa chuẩn hóa)
	v2ID := v2.ID
	inserted, err := svc.Ingest(context.Background(), reviewmodels.AdUnit{
		GroupID:    groupID,
		Filename:   "BR1_G1_RC1_9x16_V3.png",
		Version:    3,
		ParentAdID: &v2ID,
		Status:     reviewmodels.AdUnitStatusReady,
	})
	if err != nil {
		t.Fatalf("ingest lỗi: %v", err)
	}
	// Chuẩn hóa phẳng: parent của v3 là root, không phải v2
	if inserted.ParentAdID == nil || *inserted.ParentAdID != rootID {
		t.Errorf("parentAdId phải được chuẩn hóa về root, got %v", inserted.ParentAdID)
	}
	if inserted.RootID == nil || *inserted.RootID != rootID {
		t.Errorf("rootId phải được set về root, got %v", inserted.RootID)
	}
	if inserted.BrandCode != "BR1" {
		t.Errorf("brand code phải được lấy từ slot key, got %q", inserted.BrandCode)
	}

	// v2 (ready) bị version mới thay thế nên archive; v1 terminal giữ nguyên status
	if got := store.unitByID(v2.ID); got.Status != reviewmodels.AdUnitStatusArchived || !got.IsResolved {
		t.Errorf("version ready bị thay thế phải archived + resolved, got %+v", got)
	}
	if got := store.unitByID(rootID); got.Status != reviewmodels.AdUnitStatusApproved {
		t.Errorf("version terminal không được đổi status khi có version mới, got %q", got.Status)
	}
}

func TestFindPendingByGroupExcludesResolved(t *testing.T) {
	groupID := primitive.NewObjectID()
	active := reviewmodels.AdUnit{
		ID:      primitive.NewObjectID(),
		GroupID: groupID,
		Version: 1,
		Status:  reviewmodels.AdUnitStatusReady,
	}
	// Đã resolved nhưng status vẫn là ready: không bao giờ quay lại working set
	resolvedReady := reviewmodels.AdUnit{
		ID:         primitive.NewObjectID(),
		GroupID:    groupID,
		Version:    1,
		Status:     reviewmodels.AdUnitStatusReady,
		IsResolved: true,
	}
	archived := reviewmodels.AdUnit{
		ID:      primitive.NewObjectID(),
		GroupID: groupID,
		Version: 1,
		Status:  reviewmodels.AdUnitStatusArchived,
	}
	otherGroup := reviewmodels.AdUnit{
		ID:      primitive.NewObjectID(),
		GroupID: primitive.NewObjectID(),
		Version: 1,
		Status:  reviewmodels.AdUnitStatusReady,
	}
	store := newFakeUnitStore(active, resolvedReady, archived, otherGroup)
	svc := &AdUnitService{BaseServiceMongo: store}

	units, err := svc.FindPendingByGroup(context.Background(), groupID)
	if err != nil {
		t.Fatalf("find pending lỗi: %v", err)
	}
	if len(units) != 1 || units[0].ID != active.ID {
		t.Fatalf("working set chỉ được chứa unit chưa resolved của group, got %+v", units)
	}
}

func TestFindByBrandCodesChunksAndDedups(t *testing.T) {
	// 12 code đầu vào có trùng lặp: dedup còn 11 → 2 query (10 + 1)
	codes := []string{"BR1"}
	for i := 1; i <= 11; i++ {
		codes = append(codes, fmt.Sprintf("BR%d", i))
	}

	var seed []reviewmodels.AdUnit
	for i := 1; i <= 11; i++ {
		seed = append(seed, reviewmodels.AdUnit{
			ID:        primitive.NewObjectID(),
			GroupID:   primitive.NewObjectID(),
			BrandCode: fmt.Sprintf("BR%d", i),
			Version:   1,
			Status:    reviewmodels.AdUnitStatusReady,
		})
	}
	store := newFakeUnitStore(seed...)
	svc := &AdUnitService{BaseServiceMongo: store}

	units, err := svc.FindByBrandCodes(context.Background(), codes, false)
	if err != nil {
		t.Fatalf("find by brand codes lỗi: %v", err)
	}

	if len(store.findFilters) != 2 {
		t.Fatalf("11 brand code phải chia thành 2 query, got %d", len(store.findFilters))
	}
	for _, filter := range store.findFilters {
		in, _ := filter["brandCode"].(map[string]interface{})
		chunk, _ := in["$in"].([]string)
		if len(chunk) > 10 {
			t.Errorf("mỗi query $in tối đa 10 code, got %d", len(chunk))
		}
	}

	if len(units) != 11 {
		t.Fatalf("kết quả phải gộp đủ 11 unit không trùng, got %d", len(units))
	}
	seen := make(map[primitive.ObjectID]bool)
	for _, u := range units {
		if seen[u.ID] {
			t.Errorf("unit %s xuất hiện hai lần trong kết quả gộp", u.ID.Hex())
		}
		seen[u.ID] = true
	}
}
