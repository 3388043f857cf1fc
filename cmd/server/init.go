package main

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ianwagner/campfire-sub002/config"
	"github.com/ianwagner/campfire-sub002/internal/database"
	"github.com/ianwagner/campfire-sub002/internal/global"
	"github.com/ianwagner/campfire-sub002/internal/utility"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
	initFirebase()         // Khởi tạo Firebase (asset storage)
	initRedis()            // Khởi tạo Redis (cache last-viewed, optional)
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	global.MongoDB_ColNames.AdUnits = "ad_units"
	global.MongoDB_ColNames.AdGroups = "ad_groups"
	global.MongoDB_ColNames.Recipes = "recipes"
	global.MongoDB_ColNames.RecipeAssets = "recipe_assets"
	global.MongoDB_ColNames.RecipeDecisions = "recipe_decisions"

	logrus.Info("Initialized collection names") // Ghi log thông báo đã khởi tạo tên các collection
}

// Hàm khởi tạo validator (dùng global.InitValidator để đăng ký custom validators: no_xss, exists, aspect_ratio, review_decision, ...)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator") // Ghi log thông báo đã khởi tạo validator
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.ServerConfig = config.NewConfig()
	if global.ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil") // Ghi log lỗi nếu khởi tạo cấu hình thất bại
	}
	logrus.Info("Initialized server config") // Ghi log thông báo đã khởi tạo cấu hình server
}

// Hàm khởi tạo kết nối database
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err) // Ghi log lỗi nếu kết nối database thất bại
	}
	logrus.Info("Connected to MongoDB") // Ghi log thông báo đã kết nối database thành công

	// Khởi tạo các index cho các collection review (slot key, lineage, brand code, status)
	db := global.MongoDB_Session.Database(global.ServerConfig.MongoDB_DBName)
	if err := database.CreateReviewIndexes(context.TODO(), db); err != nil {
		logrus.Fatalf("Failed to create review indexes: %v", err)
	}
	logrus.Info("Ensured review indexes")
}

// initFirebase khởi tạo Firebase Admin SDK (storage chứa asset đã render).
// Không fatal khi thiếu config: server vẫn phục vụ review với URL đã ingest sẵn.
func initFirebase() {
	cfg := global.ServerConfig

	if cfg.FirebaseProjectID == "" || cfg.FirebaseCredentialsPath == "" {
		logrus.Warn("Firebase config không đầy đủ, bỏ qua khởi tạo Firebase")
		return
	}

	err := utility.InitFirebase(cfg.FirebaseProjectID, cfg.FirebaseCredentialsPath, cfg.FirebaseStorageBucket)
	if err != nil {
		logrus.Errorf("Failed to initialize Firebase: %v", err)
		return
	}

	logrus.Info("Firebase initialized successfully")
}

// initRedis khởi tạo kết nối Redis cho cache last-viewed.
// Redis là optional: không có URL hoặc ping lỗi thì chạy không cache.
func initRedis() {
	cfg := global.ServerConfig

	if cfg.RedisURL == "" {
		logrus.Info("Redis URL không được cấu hình, chạy không cache")
		return
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logrus.Errorf("Redis URL không hợp lệ, chạy không cache: %v", err)
		return
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.TODO()).Err(); err != nil {
		logrus.Errorf("Không kết nối được Redis, chạy không cache: %v", err)
		return
	}

	global.Redis_Session = client
	logrus.Info("Connected to Redis")
}
