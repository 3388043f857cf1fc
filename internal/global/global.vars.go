package global

import (
	"github.com/ianwagner/campfire-sub002/config"
	"github.com/ianwagner/campfire-sub002/internal/registry"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_Review_CollectionName chứa tên các collection trong MongoDB
type MongoDB_Review_CollectionName struct {
	AdUnits         string // Tên collection cho ad unit (từng asset theo aspect ratio, có version)
	AdGroups        string // Tên collection cho ad group
	Recipes         string // Tên collection cho recipe (bundle asset review ở phía agency)
	RecipeAssets    string // Tên collection cho asset của recipe (read-only trong luồng này)
	RecipeDecisions string // Tên collection cho log quyết định recipe (append-only, theo group)
}

// Các biến toàn cục
var Validate *validator.Validate               // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client              // Phiên kết nối tới MongoDB
var ServerConfig *config.Configuration         // Cấu hình của server
var MongoDB_ColNames MongoDB_Review_CollectionName = *new(MongoDB_Review_CollectionName) // Tên các collection
var Redis_Session *redis.Client                // Phiên kết nối tới Redis (nil nếu tắt cache)

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
