package recipesvc

import (
	"context"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "github.com/ianwagner/campfire-sub002/internal/api/base/service"
	recipemodels "github.com/ianwagner/campfire-sub002/internal/api/recipe/models"
	"github.com/ianwagner/campfire-sub002/internal/common"
)

// Fake store in-memory cho test service recipe. Các method không khai báo
// rơi vào interface embed (nil) và panic khi bị gọi.
type fakeRecipeStore struct {
	basesvc.BaseServiceMongo[recipemodels.Recipe]

	recipes     []recipemodels.Recipe
	findFilters []map[string]interface{}
}

func newFakeRecipeStore(recipes ...recipemodels.Recipe) *fakeRecipeStore {
	store := &fakeRecipeStore{}
	for _, r := range recipes {
		if r.ID.IsZero() {
			r.ID = primitive.NewObjectID()
		}
		store.recipes = append(store.recipes, r)
	}
	return store
}

func (f *fakeRecipeStore) FindOneById(ctx context.Context, id primitive.ObjectID) (recipemodels.Recipe, error) {
	for i := range f.recipes {
		if f.recipes[i].ID == id {
			return f.recipes[i], nil
		}
	}
	return recipemodels.Recipe{}, common.ErrNotFound
}

func (f *fakeRecipeStore) UpdateById(ctx context.Context, id primitive.ObjectID, data interface{}) (recipemodels.Recipe, error) {
	update, err := basesvc.ToUpdateData(data)
	if err != nil {
		return recipemodels.Recipe{}, err
	}
	for i := range f.recipes {
		if f.recipes[i].ID != id {
			continue
		}
		r := &f.recipes[i]
		for key, value := range update.Set {
			switch key {
			case "status":
				r.Status, _ = value.(string)
			case "comment":
				r.Comment, _ = value.(string)
			case "lastUpdatedBy":
				r.LastUpdatedBy, _ = value.(string)
			case "lastUpdatedAt":
				r.LastUpdatedAt, _ = value.(int64)
			}
		}
		if entry, ok := update.Push["history"].(recipemodels.HistoryEntry); ok {
			r.History = append(r.History, entry)
		}
		return *r, nil
	}
	return recipemodels.Recipe{}, common.ErrNotFound
}

func (f *fakeRecipeStore) Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]recipemodels.Recipe, error) {
	fm, _ := filter.(map[string]interface{})
	f.findFilters = append(f.findFilters, fm)

	var out []recipemodels.Recipe
	for i := range f.recipes {
		r := &f.recipes[i]
		if status, has := fm["status"]; has && r.Status != status {
			continue
		}
		if cond, has := fm["brandCode"]; has {
			ops, _ := cond.(map[string]interface{})
			codes, _ := ops["$in"].([]string)
			matched := false
			for _, code := range codes {
				if code == r.BrandCode {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, *r)
	}
	return out, nil
}

// fakeDecisionStore chỉ cần nhận event, đủ cho log phẳng per-group.
type fakeDecisionStore struct {
	basesvc.BaseServiceMongo[recipemodels.RecipeDecision]

	events []recipemodels.RecipeDecision
}

func (f *fakeDecisionStore) InsertOne(ctx context.Context, data recipemodels.RecipeDecision) (recipemodels.RecipeDecision, error) {
	if data.ID.IsZero() {
		data.ID = primitive.NewObjectID()
	}
	f.events = append(f.events, data)
	return data, nil
}

func TestDecideAppliesStatusHistoryAndEvent(t *testing.T) {
	recipe := recipemodels.Recipe{
		ID:      primitive.NewObjectID(),
		GroupID: primitive.NewObjectID(),
		Status:  recipemodels.RecipeStatusReady,
	}
	store := newFakeRecipeStore(recipe)
	decisions := &fakeDecisionStore{}
	svc := &RecipeService{
		BaseServiceMongo: store,
		decisionService:  &RecipeDecisionService{BaseServiceMongo: decisions},
	}
	actor := DecisionActor{
		UserID:       "u1",
		UserEmail:    "reviewer@brand.vn",
		ReviewerName: "Reviewer",
		UserRole:     "agency",
	}

	updated, err := svc.Decide(context.Background(), recipe.ID, recipemodels.RecipeActionEdit, actor, "đổi headline")
	if err != nil {
		t.Fatalf("decide lỗi: %v", err)
	}
	if updated.Status != recipemodels.RecipeStatusEditRequested {
		t.Errorf("status sai: got %q", updated.Status)
	}
	if updated.Comment != "đổi headline" {
		t.Errorf("comment edit phải được lưu, got %q", updated.Comment)
	}
	if len(updated.History) != 1 {
		t.Fatalf("phải append đúng một mục history, got %d", len(updated.History))
	}
	entry := updated.History[0]
	if entry.Action != recipemodels.RecipeActionEdit || entry.UserEmail != actor.UserEmail || entry.Comment != "đổi headline" {
		t.Errorf("history entry thiếu actor context: %+v", entry)
	}

	if len(decisions.events) != 1 {
		t.Fatalf("phải ghi đúng một decision event, got %d", len(decisions.events))
	}
	event := decisions.events[0]
	if event.GroupID != recipe.GroupID || event.RecipeID != recipe.ID || event.Decision != recipemodels.RecipeActionEdit {
		t.Errorf("decision event sai: %+v", event)
	}
}

func TestDecideDropsCommentForNonEditActions(t *testing.T) {
	recipe := recipemodels.Recipe{
		ID:      primitive.NewObjectID(),
		GroupID: primitive.NewObjectID(),
		Status:  recipemodels.RecipeStatusReady,
	}
	store := newFakeRecipeStore(recipe)
	svc := &RecipeService{
		BaseServiceMongo: store,
		decisionService:  &RecipeDecisionService{BaseServiceMongo: &fakeDecisionStore{}},
	}

	updated, err := svc.Decide(context.Background(), recipe.ID, recipemodels.RecipeActionApprove, DecisionActor{ReviewerName: "Reviewer"}, "comment lạc loài")
	if err != nil {
		t.Fatalf("decide lỗi: %v", err)
	}
	if updated.Status != recipemodels.RecipeStatusApproved {
		t.Errorf("status sai: got %q", updated.Status)
	}
	if updated.Comment != "" {
		t.Errorf("comment chỉ đi kèm action edit, got %q", updated.Comment)
	}
}

func TestFindReadyByBrandCodesChunksAndDedups(t *testing.T) {
	// 12 code đầu vào có trùng lặp: dedup còn 11 → 2 query (10 + 1)
	codes := []string{"BR1"}
	var seed []recipemodels.Recipe
	for i := 1; i <= 11; i++ {
		codes = append(codes, fmt.Sprintf("BR%d", i))
		seed = append(seed, recipemodels.Recipe{
			ID:        primitive.NewObjectID(),
			GroupID:   primitive.NewObjectID(),
			BrandCode: fmt.Sprintf("BR%d", i),
			Status:    recipemodels.RecipeStatusReady,
		})
	}
	// Recipe chưa ready không được lọt vào kết quả
	seed = append(seed, recipemodels.Recipe{
		ID:        primitive.NewObjectID(),
		BrandCode: "BR1",
		Status:    recipemodels.RecipeStatusPending,
	})
	store := newFakeRecipeStore(seed...)
	svc := &RecipeService{BaseServiceMongo: store}

	recipes, err := svc.FindReadyByBrandCodes(context.Background(), codes)
	if err != nil {
		t.Fatalf("find ready lỗi: %v", err)
	}

	if len(store.findFilters) != 2 {
		t.Fatalf("11 brand code phải chia thành 2 query, got %d", len(store.findFilters))
	}
	for _, filter := range store.findFilters {
		ops, _ := filter["brandCode"].(map[string]interface{})
		chunk, _ := ops["$in"].([]string)
		if len(chunk) > 10 {
			t.Errorf("mỗi query $in tối đa 10 code, got %d", len(chunk))
		}
	}

	if len(recipes) != 11 {
		t.Fatalf("kết quả phải gộp đủ 11 recipe ready không trùng, got %d", len(recipes))
	}
	seen := make(map[primitive.ObjectID]bool)
	for _, r := range recipes {
		if seen[r.ID] {
			t.Errorf("recipe %s xuất hiện hai lần trong kết quả gộp", r.ID.Hex())
		}
		seen[r.ID] = true
		if r.Status != recipemodels.RecipeStatusReady {
			t.Errorf("recipe %s chưa ready nhưng lọt vào kết quả", r.ID.Hex())
		}
	}
}
