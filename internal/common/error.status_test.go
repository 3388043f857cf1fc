package common

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

// Conditional write không khớp filter (khóa đang bị giữ) phải ra ErrNotFound
// để caller của luồng lock dịch tiếp thành ErrGroupLocked,
// không được rơi vào lỗi DB generic 500.
func TestConvertMongoErrorNoDocumentsMapsToNotFound(t *testing.T) {
	got := ConvertMongoError(mongo.ErrNoDocuments)
	if got != ErrNotFound {
		t.Fatalf("mongo.ErrNoDocuments phải map thành ErrNotFound, got: %v", got)
	}

	var appErr *Error
	if !errors.As(got, &appErr) {
		t.Fatal("kết quả phải là *common.Error")
	}
	if appErr.StatusCode != StatusNotFound {
		t.Errorf("status phải là %d, got %d", StatusNotFound, appErr.StatusCode)
	}
}

func TestConvertMongoErrorPassthrough(t *testing.T) {
	if got := ConvertMongoError(nil); got != nil {
		t.Errorf("nil phải giữ nguyên nil, got %v", got)
	}

	// Lỗi nghiệp vụ đã phân loại không bị convert lại
	if got := ConvertMongoError(ErrGroupLocked); got != ErrGroupLocked {
		t.Errorf("ErrGroupLocked phải được giữ nguyên, got %v", got)
	}
	if got := ConvertMongoError(ErrNotFound); got != ErrNotFound {
		t.Errorf("ErrNotFound phải được giữ nguyên, got %v", got)
	}
}

func TestConvertMongoErrorPermissionDenied(t *testing.T) {
	cmdErr := mongo.CommandError{Code: 13, Message: "Unauthorized"}
	got := ConvertMongoError(cmdErr)
	if got != ErrMongoAuth {
		t.Fatalf("CommandError code 13 phải map thành ErrMongoAuth, got %v", got)
	}
	if !IsPermissionDenied(got) {
		t.Error("IsPermissionDenied phải nhận ra lỗi permission sau khi convert")
	}
	if !IsPermissionDenied(cmdErr) {
		t.Error("IsPermissionDenied phải nhận ra CommandError code 13 chưa convert")
	}
}
