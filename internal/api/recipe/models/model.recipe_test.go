package models

import "testing"

func TestStatusForAction(t *testing.T) {
	cases := map[string]string{
		RecipeActionApprove: RecipeStatusApproved,
		RecipeActionReject:  RecipeStatusRejected,
		RecipeActionEdit:    RecipeStatusEditRequested,
	}
	for action, want := range cases {
		if got := StatusForAction(action); got != want {
			t.Errorf("action %q: got %q, want %q", action, got, want)
		}
	}
}

func TestStatusForActionRejectsUnknown(t *testing.T) {
	for _, action := range []string{"", "delete", "APPROVE", "ok"} {
		if got := StatusForAction(action); got != "" {
			t.Errorf("action %q không hợp lệ nhưng map ra %q", action, got)
		}
	}
}

func TestSortAssetsByAspectPriority(t *testing.T) {
	assets := []RecipeAsset{
		{AspectRatio: "1x1"},
		{AspectRatio: "9x16"},
		{AspectRatio: "3x5"},
	}
	SortAssetsByAspectPriority(assets)

	want := []string{"9x16", "3x5", "1x1"}
	for i, ratio := range want {
		if assets[i].AspectRatio != ratio {
			t.Errorf("vị trí %d: got %q, want %q", i, assets[i].AspectRatio, ratio)
		}
	}
}

func TestSortAssetsUnknownRatioGoesLast(t *testing.T) {
	assets := []RecipeAsset{
		{AspectRatio: "16x9"},
		{AspectRatio: "1x1"},
		{AspectRatio: "9x16"},
	}
	SortAssetsByAspectPriority(assets)

	if assets[0].AspectRatio != "9x16" {
		t.Errorf("hero phải là 9x16, got %q", assets[0].AspectRatio)
	}
	if assets[len(assets)-1].AspectRatio != "16x9" {
		t.Errorf("ratio lạ phải xếp cuối, got %q", assets[len(assets)-1].AspectRatio)
	}
}

func TestSortAssetsStableWithinSameRatio(t *testing.T) {
	assets := []RecipeAsset{
		{AspectRatio: "1x1", Filename: "a.png"},
		{AspectRatio: "1x1", Filename: "b.png"},
		{AspectRatio: "9x16", Filename: "c.png"},
	}
	SortAssetsByAspectPriority(assets)

	if assets[1].Filename != "a.png" || assets[2].Filename != "b.png" {
		t.Error("sort phải stable trong cùng một aspect ratio")
	}
}
