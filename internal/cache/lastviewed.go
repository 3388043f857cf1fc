// Package cache cung cấp store Redis cho mốc "last viewed" của từng group.
// Đây không phải state chính thức: mất dữ liệu chỉ làm UI không lọc được
// "ad mới từ lần xem trước", nên mọi thao tác đều best-effort.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LastViewedStore lưu mốc thời gian xem gần nhất theo group id, có TTL
type LastViewedStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewLastViewedStore tạo store mới từ URL kết nối redis
func NewLastViewedStore(redisURL string, ttl time.Duration) (*LastViewedStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Kiểm tra kết nối
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &LastViewedStore{
		client: client,
		prefix: "lastviewed:",
		ttl:    ttl,
	}, nil
}

// NewLastViewedStoreWithClient tạo store từ một redis client có sẵn
func NewLastViewedStoreWithClient(client *redis.Client, ttl time.Duration) *LastViewedStore {
	return &LastViewedStore{
		client: client,
		prefix: "lastviewed:",
		ttl:    ttl,
	}
}

// key dựng redis key cho một cặp user/group
func (s *LastViewedStore) key(userID, groupID string) string {
	return s.prefix + userID + ":" + groupID
}

// Touch ghi nhận thời điểm user xem group, đặt lại TTL
func (s *LastViewedStore) Touch(ctx context.Context, userID, groupID string, at time.Time) error {
	key := s.key(userID, groupID)
	if err := s.client.Set(ctx, key, at.UnixMilli(), s.ttl).Err(); err != nil {
		return fmt.Errorf("touch last viewed: %w", err)
	}
	return nil
}

// Get trả về mốc xem gần nhất của user với group.
// Không có dữ liệu (chưa xem hoặc đã hết TTL) trả về zero time, không lỗi.
func (s *LastViewedStore) Get(ctx context.Context, userID, groupID string) (time.Time, error) {
	key := s.key(userID, groupID)
	millis, err := s.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get last viewed: %w", err)
	}
	return time.UnixMilli(millis), nil
}

// Close đóng kết nối redis
func (s *LastViewedStore) Close() error {
	return s.client.Close()
}

// Ping kiểm tra redis có truy cập được không
func (s *LastViewedStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
