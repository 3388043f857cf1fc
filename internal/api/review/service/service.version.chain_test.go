package reviewsvc

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	reviewmodels "github.com/ianwagner/campfire-sub002/internal/api/review/models"
)

func makeLineage(rootID primitive.ObjectID, statuses ...string) *VersionChain {
	chain := &VersionChain{
		RootID:  rootID,
		SlotKey: reviewmodels.SlotKey{BrandCode: "BR1", GroupID: "G1", RecipeCode: "RC1", AspectRatio: "9x16"},
	}
	for i, status := range statuses {
		unit := reviewmodels.AdUnit{
			ID:      primitive.NewObjectID(),
			Version: i + 1,
			Status:  status,
		}
		if i == 0 {
			unit.ID = rootID
		} else {
			unit.ParentAdID = &rootID
			unit.RootID = &rootID
		}
		chain.Versions = append(chain.Versions, unit)
	}
	return chain
}

func TestActiveIndexPicksHighestNonArchived(t *testing.T) {
	chain := makeLineage(primitive.NewObjectID(),
		reviewmodels.AdUnitStatusArchived,
		reviewmodels.AdUnitStatusEditRequested,
		reviewmodels.AdUnitStatusReady,
	)
	if idx := chain.ActiveIndex(); idx != 2 {
		t.Errorf("active index sai: got %d, want 2", idx)
	}
}

func TestActiveIndexAllArchived(t *testing.T) {
	chain := makeLineage(primitive.NewObjectID(),
		reviewmodels.AdUnitStatusArchived,
		reviewmodels.AdUnitStatusArchived,
	)
	if idx := chain.ActiveIndex(); idx != -1 {
		t.Errorf("lineage toàn archived phải trả về -1, got %d", idx)
	}
	if chain.Active() != nil {
		t.Error("lineage toàn archived không có version active")
	}
}

func TestChainCursorStartsAtActive(t *testing.T) {
	chain := makeLineage(primitive.NewObjectID(),
		reviewmodels.AdUnitStatusArchived,
		reviewmodels.AdUnitStatusEditRequested,
		reviewmodels.AdUnitStatusReady,
	)
	cur := NewChainCursor(chain)
	if got := cur.Current(); got == nil || got.Version != 3 {
		t.Fatalf("cursor phải bắt đầu tại version active (3), got %+v", got)
	}
}

func TestChainCursorNavigationBounds(t *testing.T) {
	chain := makeLineage(primitive.NewObjectID(),
		reviewmodels.AdUnitStatusEditRequested,
		reviewmodels.AdUnitStatusReady,
	)
	cur := NewChainCursor(chain)

	// Đang ở version cuối (active), không Next được
	if cur.Next() {
		t.Error("Next tại version cuối phải trả về false")
	}
	if !cur.Prev() {
		t.Error("Prev từ version 2 về version 1 phải thành công")
	}
	if got := cur.Current(); got.Version != 1 {
		t.Errorf("sau Prev cursor phải ở version 1, got %d", got.Version)
	}
	if cur.Prev() {
		t.Error("Prev tại version đầu phải trả về false")
	}
	if !cur.Next() {
		t.Error("Next từ version 1 lên version 2 phải thành công")
	}
}

func TestChainCursorSingleVersionHasNoNavigation(t *testing.T) {
	chain := makeLineage(primitive.NewObjectID(), reviewmodels.AdUnitStatusReady)
	cur := NewChainCursor(chain)
	if cur.Prev() || cur.Next() {
		t.Error("chain length 1 không được có navigation")
	}
}

func TestChainCursorDoesNotMutateChain(t *testing.T) {
	chain := makeLineage(primitive.NewObjectID(),
		reviewmodels.AdUnitStatusEditRequested,
		reviewmodels.AdUnitStatusReady,
	)
	before := make([]reviewmodels.AdUnit, len(chain.Versions))
	copy(before, chain.Versions)

	cur := NewChainCursor(chain)
	cur.Prev()
	cur.Next()

	for i := range before {
		if before[i].Status != chain.Versions[i].Status || before[i].Version != chain.Versions[i].Version {
			t.Fatal("di chuyển cursor không được thay đổi dữ liệu lineage")
		}
	}
}

func TestResolveChainsGroupsByLineageRoot(t *testing.T) {
	svc := &AdUnitService{}
	groupID := primitive.NewObjectID()
	rootA := primitive.NewObjectID()
	rootB := primitive.NewObjectID()

	slotA := reviewmodels.SlotKey{BrandCode: "BR1", GroupID: "G1", RecipeCode: "RC1", AspectRatio: "9x16"}
	slotB := reviewmodels.SlotKey{BrandCode: "BR1", GroupID: "G1", RecipeCode: "RC1", AspectRatio: "1x1"}

	units := []reviewmodels.AdUnit{
		{ID: rootA, GroupID: groupID, SlotKey: slotA, Version: 1, Status: reviewmodels.AdUnitStatusEditRequested},
		{ID: primitive.NewObjectID(), GroupID: groupID, SlotKey: slotA, Version: 2, ParentAdID: &rootA, RootID: &rootA, Status: reviewmodels.AdUnitStatusReady},
		{ID: rootB, GroupID: groupID, SlotKey: slotB, Version: 1, Status: reviewmodels.AdUnitStatusReady},
	}

	chains, err := svc.ResolveChains(context.Background(), units)
	if err != nil {
		t.Fatalf("ResolveChains lỗi: %v", err)
	}
	if len(chains) != 2 {
		t.Fatalf("phải có 2 lineage, got %d", len(chains))
	}

	byRoot := make(map[primitive.ObjectID]*VersionChain)
	for _, chain := range chains {
		byRoot[chain.RootID] = chain
	}

	chainA := byRoot[rootA]
	if chainA == nil || len(chainA.Versions) != 2 {
		t.Fatalf("lineage A phải có 2 version, got %+v", chainA)
	}
	if chainA.Versions[0].Version != 1 || chainA.Versions[1].Version != 2 {
		t.Error("lineage phải sắp tăng dần theo version")
	}
	if !chainA.SlotKey.Equal(slotA) {
		t.Errorf("slot key của lineage A sai: %+v", chainA.SlotKey)
	}

	chainB := byRoot[rootB]
	if chainB == nil || len(chainB.Versions) != 1 {
		t.Fatalf("lineage B phải có đúng 1 version, got %+v", chainB)
	}
}

func TestResolveChainsMergesMissingLinkBySlotKey(t *testing.T) {
	svc := &AdUnitService{}
	rootID := primitive.NewObjectID()
	slot := reviewmodels.SlotKey{BrandCode: "BR1", GroupID: "G1", RecipeCode: "RC2", AspectRatio: "3x5"}

	// Version 2 thiếu lineage link nhưng cùng slot key với root
	units := []reviewmodels.AdUnit{
		{ID: rootID, SlotKey: slot, Version: 1, Status: reviewmodels.AdUnitStatusEditRequested},
		{ID: primitive.NewObjectID(), SlotKey: slot, Version: 2, Status: reviewmodels.AdUnitStatusReady},
	}

	chains, err := svc.ResolveChains(context.Background(), units)
	if err != nil {
		t.Fatalf("ResolveChains lỗi: %v", err)
	}
	if len(chains) != 1 {
		t.Fatalf("hai unit cùng slot key phải gộp thành 1 lineage, got %d", len(chains))
	}
	if len(chains[0].Versions) != 2 {
		t.Errorf("lineage gộp phải có 2 version, got %d", len(chains[0].Versions))
	}
}
