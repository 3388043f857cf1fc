package utility

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// firebaseBucket là bucket mặc định sau khi InitFirebase xác nhận truy cập được
var firebaseBucket string

// findAPIDir tìm thư mục gốc của service (thư mục chứa config/env)
func findAPIDir() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	// Tìm thư mục có chứa config/env
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return currentDir, nil
		}

		// Đi lên thư mục cha
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", fmt.Errorf("không tìm thấy thư mục gốc của service")
		}
		currentDir = parentDir
	}
}

// InitFirebase khởi tạo Firebase Admin SDK cho object store (bucket chứa file render).
// Luồng review không upload file; SDK chỉ dùng để xác nhận bucket và dựng firebaseUrl
// cho revision mới spawn từ request-edit.
func InitFirebase(projectID, credentialsPath, storageBucket string) error {
	// Resolve đường dẫn credentials từ thư mục gốc nếu là đường dẫn relative
	if !filepath.IsAbs(credentialsPath) {
		apiDir, err := findAPIDir()
		if err != nil {
			return fmt.Errorf("không tìm thấy thư mục gốc của service: %v", err)
		}
		credentialsPath = filepath.Join(apiDir, credentialsPath)
	}

	// Kiểm tra file credentials tồn tại
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return fmt.Errorf("firebase credentials file not found: %s", credentialsPath)
	}

	// Tạo Firebase app
	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(context.Background(), &firebase.Config{
		ProjectID:     projectID,
		StorageBucket: storageBucket,
	}, opt)
	if err != nil {
		return fmt.Errorf("failed to initialize Firebase app: %v", err)
	}

	// Xác nhận bucket truy cập được
	storageClient, err := app.Storage(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get Firebase Storage client: %v", err)
	}
	if _, err := storageClient.DefaultBucket(); err != nil {
		return fmt.Errorf("failed to access storage bucket %s: %v", storageBucket, err)
	}

	firebaseBucket = storageBucket
	return nil
}

// FirebaseObjectURL dựng URL tải công khai cho một object trong bucket.
// Dùng khi spawn revision mới: file render của version mới sẽ xuất hiện tại
// đường dẫn có cùng quy ước tên với version cũ.
func FirebaseObjectURL(objectPath string) string {
	if firebaseBucket == "" || objectPath == "" {
		return ""
	}
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media",
		firebaseBucket, url.PathEscape(objectPath))
}
