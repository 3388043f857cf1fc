package middleware

import (
	"testing"
	"time"

	"github.com/ianwagner/campfire-sub002/config"
	"github.com/ianwagner/campfire-sub002/internal/common"
	"github.com/ianwagner/campfire-sub002/internal/global"
)

func setupTestConfig(t *testing.T) {
	t.Helper()
	old := global.ServerConfig
	global.ServerConfig = &config.Configuration{JwtSecret: "test-secret"}
	t.Cleanup(func() { global.ServerConfig = old })
}

func TestReviewLinkTokenRoundTrip(t *testing.T) {
	setupTestConfig(t)

	token, err := IssueReviewLinkToken("64f0c1a2b3c4d5e6f7a8b9c0", "reviewer@brand.vn", time.Hour)
	if err != nil {
		t.Fatalf("phát hành token lỗi: %v", err)
	}

	claims, err := ParseReviewLinkToken(token)
	if err != nil {
		t.Fatalf("parse token vừa phát hành lỗi: %v", err)
	}
	if claims.GroupID != "64f0c1a2b3c4d5e6f7a8b9c0" {
		t.Errorf("group id sai: got %q", claims.GroupID)
	}
	if claims.Reviewer != "reviewer@brand.vn" {
		t.Errorf("reviewer sai: got %q", claims.Reviewer)
	}
}

func TestExpiredTokenIsRejected(t *testing.T) {
	setupTestConfig(t)

	token, err := IssueReviewLinkToken("64f0c1a2b3c4d5e6f7a8b9c0", "reviewer@brand.vn", -time.Minute)
	if err != nil {
		t.Fatalf("phát hành token lỗi: %v", err)
	}

	_, err = ParseReviewLinkToken(token)
	if err != common.ErrTokenExpired {
		t.Errorf("token hết hạn phải trả về ErrTokenExpired, got %v", err)
	}
}

func TestMalformedTokenIsRejected(t *testing.T) {
	setupTestConfig(t)

	for _, token := range []string{"", "not-a-jwt", "aaa.bbb.ccc"} {
		if _, err := ParseReviewLinkToken(token); err != common.ErrTokenInvalid {
			t.Errorf("token %q phải trả về ErrTokenInvalid, got %v", token, err)
		}
	}
}

// Token của group A không được phép thao tác trên resource của group B,
// kể cả khi group chỉ biết được sau khi load resource (unit theo :id).
func TestCheckGroupScopeBlocksCrossGroup(t *testing.T) {
	groupA := "64f0c1a2b3c4d5e6f7a8b9c0"
	groupB := "64f0c1a2b3c4d5e6f7a8b9c1"

	if err := CheckGroupScope(groupA, groupB); err != ErrGroupScope {
		t.Errorf("token group A thao tác trên group B phải bị chặn, got %v", err)
	}
	if err := CheckGroupScope("", groupA); err != ErrGroupScope {
		t.Errorf("thiếu group trong token phải bị chặn, got %v", err)
	}
	if err := CheckGroupScope(groupA, ""); err != ErrGroupScope {
		t.Errorf("resource không có group phải bị chặn, got %v", err)
	}
	if err := CheckGroupScope(groupA, groupA); err != nil {
		t.Errorf("token đúng group phải được cho qua, got %v", err)
	}
}

func TestTokenSignedWithDifferentSecretIsRejected(t *testing.T) {
	setupTestConfig(t)
	token, err := IssueReviewLinkToken("64f0c1a2b3c4d5e6f7a8b9c0", "reviewer@brand.vn", time.Hour)
	if err != nil {
		t.Fatalf("phát hành token lỗi: %v", err)
	}

	// Đổi secret: token cũ phải bị từ chối
	global.ServerConfig = &config.Configuration{JwtSecret: "secret-khac"}
	if _, err := ParseReviewLinkToken(token); err != common.ErrTokenInvalid {
		t.Errorf("token ký bằng secret khác phải bị từ chối, got %v", err)
	}
}
