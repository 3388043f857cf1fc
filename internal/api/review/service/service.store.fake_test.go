package reviewsvc

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "github.com/ianwagner/campfire-sub002/internal/api/base/service"
	reviewmodels "github.com/ianwagner/campfire-sub002/internal/api/review/models"
	"github.com/ianwagner/campfire-sub002/internal/common"
)

// Fake store in-memory cho test service, thay BaseServiceMongo bằng slice + map.
// Mọi write được ghi lại trong writtenIDs để test assert đúng document bị đụng tới.
// Các method không khai báo ở đây rơi vào interface embed (nil) và panic khi bị gọi,
// giúp phát hiện đường đi store ngoài dự kiến của flow đang test.
type fakeUnitStore struct {
	basesvc.BaseServiceMongo[reviewmodels.AdUnit]

	units       []reviewmodels.AdUnit
	writtenIDs  []primitive.ObjectID
	findFilters []map[string]interface{}
}

func newFakeUnitStore(units ...reviewmodels.AdUnit) *fakeUnitStore {
	store := &fakeUnitStore{}
	for _, u := range units {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		store.units = append(store.units, u)
	}
	return store
}

// unitByID tra cứu trực tiếp state hiện tại của một unit trong fake (dùng cho assert).
func (f *fakeUnitStore) unitByID(id primitive.ObjectID) *reviewmodels.AdUnit {
	for i := range f.units {
		if f.units[i].ID == id {
			return &f.units[i]
		}
	}
	return nil
}

func (f *fakeUnitStore) FindOneById(ctx context.Context, id primitive.ObjectID) (reviewmodels.AdUnit, error) {
	if u := f.unitByID(id); u != nil {
		return *u, nil
	}
	return reviewmodels.AdUnit{}, common.ErrNotFound
}

func (f *fakeUnitStore) InsertOne(ctx context.Context, data reviewmodels.AdUnit) (reviewmodels.AdUnit, error) {
	if data.ID.IsZero() {
		data.ID = primitive.NewObjectID()
	}
	f.units = append(f.units, data)
	f.writtenIDs = append(f.writtenIDs, data.ID)
	return data, nil
}

func (f *fakeUnitStore) UpdateById(ctx context.Context, id primitive.ObjectID, data interface{}) (reviewmodels.AdUnit, error) {
	update, err := basesvc.ToUpdateData(data)
	if err != nil {
		return reviewmodels.AdUnit{}, err
	}
	u := f.unitByID(id)
	if u == nil {
		return reviewmodels.AdUnit{}, common.ErrNotFound
	}
	applyUnitSet(u, update.Set)
	f.writtenIDs = append(f.writtenIDs, id)
	return *u, nil
}

func (f *fakeUnitStore) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (int64, error) {
	data, err := basesvc.ToUpdateData(update)
	if err != nil {
		return 0, err
	}
	fm := filterAsMap(filter)
	var count int64
	for i := range f.units {
		if !matchUnit(&f.units[i], fm) {
			continue
		}
		applyUnitSet(&f.units[i], data.Set)
		f.writtenIDs = append(f.writtenIDs, f.units[i].ID)
		count++
	}
	return count, nil
}

func (f *fakeUnitStore) Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]reviewmodels.AdUnit, error) {
	fm := filterAsMap(filter)
	f.findFilters = append(f.findFilters, fm)
	var out []reviewmodels.AdUnit
	for i := range f.units {
		if matchUnit(&f.units[i], fm) {
			out = append(out, f.units[i])
		}
	}
	// Sort theo version đủ cho các query lineage; các flow khác không phụ thuộc thứ tự
	sort.SliceStable(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func applyUnitSet(u *reviewmodels.AdUnit, set map[string]interface{}) {
	for key, value := range set {
		switch key {
		case "status":
			u.Status, _ = value.(string)
		case "isResolved":
			u.IsResolved, _ = value.(bool)
		case "comment":
			u.Comment, _ = value.(string)
		case "lastUpdatedBy":
			u.LastUpdatedBy, _ = value.(string)
		case "lastUpdatedAt":
			u.LastUpdatedAt, _ = value.(int64)
		}
	}
}

func filterAsMap(filter interface{}) map[string]interface{} {
	m, _ := filter.(map[string]interface{})
	return m
}

func matchUnit(u *reviewmodels.AdUnit, filter map[string]interface{}) bool {
	for key, cond := range filter {
		if key == "$or" {
			subs, _ := cond.([]map[string]interface{})
			matched := false
			for _, sub := range subs {
				if matchUnit(u, sub) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
			continue
		}
		if !matchField(unitFieldValue(u, key), cond) {
			return false
		}
	}
	return true
}

func unitFieldValue(u *reviewmodels.AdUnit, key string) interface{} {
	switch key {
	case "_id":
		return u.ID
	case "rootId":
		if u.RootID == nil {
			return primitive.NilObjectID
		}
		return *u.RootID
	case "groupId":
		return u.GroupID
	case "brandCode":
		return u.BrandCode
	case "status":
		return u.Status
	case "isResolved":
		return u.IsResolved
	case "version":
		return u.Version
	}
	return nil
}

// matchField xử lý đúng tập operator mà các service filter dùng tới:
// so sánh trực tiếp, $ne, $in, $nin, $lt.
func matchField(value interface{}, cond interface{}) bool {
	ops, isOp := cond.(map[string]interface{})
	if !isOp {
		return value == cond
	}
	for op, arg := range ops {
		switch op {
		case "$ne":
			if value == arg {
				return false
			}
		case "$in":
			if !inStringList(value, arg) {
				return false
			}
		case "$nin":
			if inStringList(value, arg) {
				return false
			}
		case "$lt":
			v, okValue := value.(int)
			a, okArg := arg.(int)
			if !okValue || !okArg || v >= a {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func inStringList(value interface{}, arg interface{}) bool {
	list, ok := arg.([]string)
	if !ok {
		return false
	}
	s, ok := value.(string)
	if !ok {
		return false
	}
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// fakeGroupStore giữ đúng một group document, đủ cho các flow lock/completion/progress.
type fakeGroupStore struct {
	basesvc.BaseServiceMongo[reviewmodels.AdGroup]

	group        reviewmodels.AdGroup
	writes       int
	lastLockOpts *options.FindOneAndUpdateOptions
}

func newFakeGroupStore(group reviewmodels.AdGroup) *fakeGroupStore {
	if group.ID.IsZero() {
		group.ID = primitive.NewObjectID()
	}
	return &fakeGroupStore{group: group}
}

func (f *fakeGroupStore) FindOneById(ctx context.Context, id primitive.ObjectID) (reviewmodels.AdGroup, error) {
	if f.group.ID == id {
		return f.group, nil
	}
	return reviewmodels.AdGroup{}, common.ErrNotFound
}

func (f *fakeGroupStore) UpdateById(ctx context.Context, id primitive.ObjectID, data interface{}) (reviewmodels.AdGroup, error) {
	if f.group.ID != id {
		return reviewmodels.AdGroup{}, common.ErrNotFound
	}
	update, err := basesvc.ToUpdateData(data)
	if err != nil {
		return reviewmodels.AdGroup{}, err
	}
	applyGroupSet(&f.group, update.Set)
	f.writes++
	return f.group, nil
}

func (f *fakeGroupStore) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (reviewmodels.AdGroup, error) {
	if !matchGroup(&f.group, filterAsMap(filter)) {
		return reviewmodels.AdGroup{}, common.ErrNotFound
	}
	data, err := basesvc.ToUpdateData(update)
	if err != nil {
		return reviewmodels.AdGroup{}, err
	}
	applyGroupSet(&f.group, data.Set)
	applyGroupUnset(&f.group, data.Unset)
	f.writes++
	return f.group, nil
}

// FindOneAndUpdate mô phỏng semantics của impl thật: filter không khớp
// document nào thì trả về ErrNotFound (mongo.ErrNoDocuments sau convert).
func (f *fakeGroupStore) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts *options.FindOneAndUpdateOptions) (reviewmodels.AdGroup, error) {
	f.lastLockOpts = opts
	if !matchGroup(&f.group, filterAsMap(filter)) {
		return reviewmodels.AdGroup{}, common.ErrNotFound
	}
	data, err := basesvc.ToUpdateData(update)
	if err != nil {
		return reviewmodels.AdGroup{}, err
	}
	before := f.group
	applyGroupSet(&f.group, data.Set)
	f.writes++
	if opts != nil && opts.ReturnDocument != nil && *opts.ReturnDocument == options.After {
		return f.group, nil
	}
	return before, nil
}

func (f *fakeGroupStore) DocumentExists(ctx context.Context, filter interface{}) (bool, error) {
	return matchGroup(&f.group, filterAsMap(filter)), nil
}

func applyGroupSet(g *reviewmodels.AdGroup, set map[string]interface{}) {
	for key, value := range set {
		switch key {
		case "status":
			g.Status, _ = value.(string)
		case "reviewProgress":
			if value == nil {
				g.ReviewProgress = nil
				continue
			}
			if progress, ok := value.(*reviewmodels.ReviewProgress); ok {
				g.ReviewProgress = progress
			}
		case "reviewLockedBy":
			g.ReviewLockedBy, _ = value.(string)
		case "reviewLockedAt":
			g.ReviewLockedAt, _ = value.(int64)
		case "archivedAt":
			g.ArchivedAt, _ = value.(int64)
		case "archivedBy":
			g.ArchivedBy, _ = value.(string)
		}
	}
}

func applyGroupUnset(g *reviewmodels.AdGroup, unset map[string]interface{}) {
	for key := range unset {
		switch key {
		case "reviewLockedBy":
			g.ReviewLockedBy = ""
		case "reviewLockedAt":
			g.ReviewLockedAt = 0
		}
	}
}

func matchGroup(g *reviewmodels.AdGroup, filter map[string]interface{}) bool {
	for key, cond := range filter {
		switch key {
		case "$or":
			subs, _ := cond.([]map[string]interface{})
			matched := false
			for _, sub := range subs {
				if matchGroup(g, sub) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		case "_id":
			if g.ID != cond {
				return false
			}
		case "status":
			if !matchField(g.Status, cond) {
				return false
			}
		case "reviewLockedBy":
			if ops, ok := cond.(map[string]interface{}); ok {
				exists, has := ops["$exists"]
				if !has {
					return false
				}
				if exists == false && g.ReviewLockedBy != "" {
					return false
				}
				if exists == true && g.ReviewLockedBy == "" {
					return false
				}
				continue
			}
			if g.ReviewLockedBy != cond {
				return false
			}
		default:
			return false
		}
	}
	return true
}
