package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseSlotKeyFromFilename(t *testing.T) {
	key, err := ParseSlotKeyFromFilename("BR1_G1_RC1_9x16_V2.png")
	if err != nil {
		t.Fatalf("parse filename hợp lệ bị lỗi: %v", err)
	}
	want := SlotKey{BrandCode: "BR1", GroupID: "G1", RecipeCode: "RC1", AspectRatio: "9x16"}
	if !key.Equal(want) {
		t.Errorf("slot key sai: got %+v, want %+v", key, want)
	}
}

func TestParseSlotKeyIgnoresVersionSuffix(t *testing.T) {
	// Hai version khác nhau của cùng một slot phải cho ra cùng slot key
	k1, err := ParseSlotKeyFromFilename("BR1_G1_RC1_9x16_V1.png")
	if err != nil {
		t.Fatalf("parse V1 lỗi: %v", err)
	}
	k2, err := ParseSlotKeyFromFilename("BR1_G1_RC1_9x16_V3.jpg")
	if err != nil {
		t.Fatalf("parse V3 lỗi: %v", err)
	}
	if !k1.Equal(k2) {
		t.Errorf("cùng slot nhưng slot key khác nhau: %+v vs %+v", k1, k2)
	}
}

func TestParseSlotKeyWithoutExtension(t *testing.T) {
	key, err := ParseSlotKeyFromFilename("BR2_G5_RC9_1x1_V1")
	if err != nil {
		t.Fatalf("parse filename không có extension bị lỗi: %v", err)
	}
	if key.AspectRatio != "1x1" {
		t.Errorf("aspect ratio sai: got %q, want 1x1", key.AspectRatio)
	}
}

func TestParseSlotKeyRejectsMalformedFilename(t *testing.T) {
	cases := []string{
		"banner.png",
		"BR1_G1.png",
		"BR1_G1_RC1.png",
		"",
	}
	for _, filename := range cases {
		if _, err := ParseSlotKeyFromFilename(filename); err == nil {
			t.Errorf("filename %q sai convention nhưng không bị từ chối", filename)
		}
	}
}

func TestSlotKeyDistinguishesAspectRatio(t *testing.T) {
	// Hai aspect ratio của cùng recipe là hai slot độc lập
	k1, _ := ParseSlotKeyFromFilename("BR1_G1_RC1_9x16_V1.png")
	k2, _ := ParseSlotKeyFromFilename("BR1_G1_RC1_1x1_V1.png")
	if k1.Equal(k2) {
		t.Error("aspect ratio khác nhau nhưng slot key bằng nhau")
	}
}

func TestSlotKeyIsZero(t *testing.T) {
	if !(SlotKey{}).IsZero() {
		t.Error("slot key rỗng phải IsZero")
	}
	if (SlotKey{BrandCode: "BR1"}).IsZero() {
		t.Error("slot key có brand code không được IsZero")
	}
}

func TestNextVersionFilename(t *testing.T) {
	cases := []struct {
		filename string
		version  int
		want     string
	}{
		{"BR1_G1_RC1_9x16_V1.png", 3, "BR1_G1_RC1_9x16_V3.png"},
		{"BR1_G1_RC1_9x16_V2.jpg", 3, "BR1_G1_RC1_9x16_V3.jpg"},
		{"BR2_G5_RC9_1x1_V1", 2, "BR2_G5_RC9_1x1_V2"},     // không có extension
		{"BR1_G1_RC1_9x16.png", 2, "BR1_G1_RC1_9x16_V2.png"}, // thiếu token version
		{"", 5, ""},
	}
	for _, c := range cases {
		if got := NextVersionFilename(c.filename, c.version); got != c.want {
			t.Errorf("NextVersionFilename(%q, %d) = %q, want %q", c.filename, c.version, got, c.want)
		}
	}
}

func TestNextVersionFilenameKeepsSlotKey(t *testing.T) {
	// Filename của revision phải parse ra cùng slot key với version gốc
	original := "BR1_G1_RC1_9x16_V1.png"
	next := NextVersionFilename(original, 4)

	k1, err := ParseSlotKeyFromFilename(original)
	if err != nil {
		t.Fatalf("parse filename gốc lỗi: %v", err)
	}
	k2, err := ParseSlotKeyFromFilename(next)
	if err != nil {
		t.Fatalf("parse filename revision lỗi: %v", err)
	}
	if !k1.Equal(k2) {
		t.Errorf("revision đổi slot key: %+v vs %+v", k1, k2)
	}
}

func TestLineageRootID(t *testing.T) {
	rootID := primitive.NewObjectID()
	revisionID := primitive.NewObjectID()

	root := AdUnit{ID: rootID, Version: 1}
	if root.LineageRootID() != rootID {
		t.Error("root phải trỏ về chính nó")
	}
	if !root.IsRoot() {
		t.Error("unit không có parent phải là root")
	}

	revision := AdUnit{ID: revisionID, Version: 2, ParentAdID: &rootID, RootID: &rootID}
	if revision.LineageRootID() != rootID {
		t.Error("revision phải trỏ về root của lineage")
	}
	if revision.IsRoot() {
		t.Error("revision có parent không được là root")
	}

	// Data cũ chỉ có ParentAdID, chưa backfill RootID
	legacy := AdUnit{ID: revisionID, Version: 2, ParentAdID: &rootID}
	if legacy.LineageRootID() != rootID {
		t.Error("revision thiếu rootId phải fallback qua parentAdId")
	}
}
