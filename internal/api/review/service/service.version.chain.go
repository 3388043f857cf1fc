package reviewsvc

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	reviewmodels "github.com/ianwagner/campfire-sub002/internal/api/review/models"
	"github.com/ianwagner/campfire-sub002/internal/common"
)

// VersionChain là lineage của một slot: danh sách version sắp tăng dần.
// Đây là view dựng từ data đã load, không phải persisted entity.
type VersionChain struct {
	RootID   primitive.ObjectID     `json:"rootId"`   // ID root của lineage
	SlotKey  reviewmodels.SlotKey   `json:"slotKey"`  // Định danh slot của lineage
	Versions []reviewmodels.AdUnit  `json:"versions"` // Các version, sắp tăng dần theo version
}

// ActiveIndex trả về index của version active: version cao nhất có status != archived.
// Trả về -1 nếu mọi version đều archived (lineage chết).
func (c *VersionChain) ActiveIndex() int {
	for i := len(c.Versions) - 1; i >= 0; i-- {
		if c.Versions[i].Status != reviewmodels.AdUnitStatusArchived {
			return i
		}
	}
	return -1
}

// Active trả về version active của lineage, nil nếu mọi version đều archived.
func (c *VersionChain) Active() *reviewmodels.AdUnit {
	idx := c.ActiveIndex()
	if idx < 0 {
		return nil
	}
	return &c.Versions[idx]
}

// ChainCursor là cursor hiển thị EPHEMERAL trên một lineage.
// Cursor chỉ tồn tại trong phiên (view-state), di chuyển cursor không bao giờ
// ghi gì xuống store và không được trộn lẫn với status/version đã persist.
type ChainCursor struct {
	chain *VersionChain
	index int
}

// NewChainCursor tạo cursor cho một lineage, bắt đầu tại version active.
// Nếu mọi version đều archived, cursor đứng ở version cuối cùng.
func NewChainCursor(chain *VersionChain) *ChainCursor {
	idx := chain.ActiveIndex()
	if idx < 0 {
		idx = len(chain.Versions) - 1
	}
	return &ChainCursor{chain: chain, index: idx}
}

// Current trả về version đang hiển thị.
func (cur *ChainCursor) Current() *reviewmodels.AdUnit {
	if cur.index < 0 || cur.index >= len(cur.chain.Versions) {
		return nil
	}
	return &cur.chain.Versions[cur.index]
}

// Prev di chuyển cursor về version trước đó. Trả về false nếu đã ở version đầu
// (không có navigation affordance khi chain length 1).
func (cur *ChainCursor) Prev() bool {
	if cur.index <= 0 {
		return false
	}
	cur.index--
	return true
}

// Next di chuyển cursor tới version kế tiếp. Trả về false nếu đã ở version cuối.
func (cur *ChainCursor) Next() bool {
	if cur.index >= len(cur.chain.Versions)-1 {
		return false
	}
	cur.index++
	return true
}

// ResolveChains dựng các lineage từ tập ad unit đã load của một group.
//
// Thuật toán: gom unit theo root id (lineage phẳng: rootId của revision, _id của root).
// Nếu root của một lineage không có trong tập đã load, fetch trực tiếp theo id
// (đúng một point lookup mỗi lineage thiếu, không re-query cả group).
// Root lookup trả về not-found là soft edge case: chain giữ nguyên các version
// đã load (chain length có thể là 1, không hiển thị navigation).
// Khi unit không có liên kết lineage, fallback gom theo slot key.
func (s *AdUnitService) ResolveChains(ctx context.Context, units []reviewmodels.AdUnit) ([]*VersionChain, error) {
	loaded := make(map[primitive.ObjectID]bool, len(units))
	for _, u := range units {
		loaded[u.ID] = true
	}

	// Gom theo root id
	byRoot := make(map[primitive.ObjectID][]reviewmodels.AdUnit)
	// Unit không có lineage link và cũng không có slot key không thể gom, đứng một mình
	var orphanOrder []primitive.ObjectID
	// Fallback: gom theo slot key khi không có lineage link
	bySlot := make(map[reviewmodels.SlotKey]primitive.ObjectID)

	for _, u := range units {
		rootID := u.LineageRootID()

		if u.IsRoot() && !u.SlotKey.IsZero() {
			// Ghi nhận root của slot để các unit thiếu link gom vào đúng lineage
			bySlot[u.SlotKey] = u.ID
		}
		if _, ok := byRoot[rootID]; !ok {
			orphanOrder = append(orphanOrder, rootID)
		}
		byRoot[rootID] = append(byRoot[rootID], u)
	}

	// Gộp các lineage một-phần-tử thiếu link vào lineage cùng slot key (nếu có)
	for rootID, members := range byRoot {
		if len(members) != 1 || !members[0].IsRoot() {
			continue
		}
		u := members[0]
		if u.SlotKey.IsZero() {
			continue
		}
		if slotRoot, ok := bySlot[u.SlotKey]; ok && slotRoot != rootID {
			byRoot[slotRoot] = append(byRoot[slotRoot], u)
			delete(byRoot, rootID)
		}
	}

	chains := make([]*VersionChain, 0, len(byRoot))
	for _, rootID := range orphanOrder {
		members, ok := byRoot[rootID]
		if !ok {
			continue // đã gộp vào lineage khác theo slot key
		}

		// Lazy root fetch: root không nằm trong tập đã load
		if !loaded[rootID] {
			root, err := s.FindOneById(ctx, rootID)
			if err != nil {
				if err != common.ErrNotFound {
					return nil, err
				}
				// Soft: root không tồn tại, chain chỉ gồm các version đã load
			} else {
				members = append(members, root)
			}
		}

		sort.Slice(members, func(i, j int) bool {
			return members[i].Version < members[j].Version
		})

		slotKey := members[0].SlotKey
		for _, m := range members {
			if !m.SlotKey.IsZero() {
				slotKey = m.SlotKey
				break
			}
		}

		chains = append(chains, &VersionChain{
			RootID:   rootID,
			SlotKey:  slotKey,
			Versions: members,
		})
	}
	return chains, nil
}

// ResolveGroupChains tải toàn bộ unit của một group (trừ archived khỏi working set
// nhưng GIỮ archived trong lineage để hiển thị lịch sử) rồi dựng lineage.
func (s *AdUnitService) ResolveGroupChains(ctx context.Context, groupID primitive.ObjectID) ([]*VersionChain, error) {
	units, err := s.FindByGroup(ctx, groupID, false)
	if err != nil {
		return nil, err
	}
	return s.ResolveChains(ctx, units)
}
