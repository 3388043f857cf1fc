package recipesvc

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ianwagner/campfire-sub002/internal/common"
)

// Service không có store: nếu validation gate không chặn trước khi đụng store
// thì test sẽ panic vì nil pointer.
func TestDecideRejectsUnknownActionBeforeStoreIO(t *testing.T) {
	svc := &RecipeService{}
	actor := DecisionActor{UserEmail: "agency@brand.vn", ReviewerName: "Agency"}

	for _, action := range []string{"", "delete", "APPROVE"} {
		_, err := svc.Decide(context.Background(), primitive.NewObjectID(), action, actor, "")
		if err != common.ErrInvalidDecision {
			t.Errorf("action %q: got %v, want ErrInvalidDecision", action, err)
		}
	}
}

func TestDecideEditRequiresComment(t *testing.T) {
	svc := &RecipeService{}
	actor := DecisionActor{UserEmail: "agency@brand.vn", ReviewerName: "Agency"}

	for _, comment := range []string{"", "   ", "\t"} {
		_, err := svc.Decide(context.Background(), primitive.NewObjectID(), "edit", actor, comment)
		if err != common.ErrCommentRequired {
			t.Errorf("comment %q: got %v, want ErrCommentRequired", comment, err)
		}
	}
}
