package utility

import (
	"encoding/json"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// P2Int64 chuyển đổi interface thành int64.
// Hỗ trợ json.Number (body parse với UseNumber) và chuỗi (query param).
func P2Int64(input interface{}) int64 {
	switch v := input.(type) {
	case json.Number:
		result, err := v.Int64()
		if err != nil {
			return 0
		}
		return result
	case string:
		result, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0
		}
		return result
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}

// String2ObjectID chuyển đổi chuỗi thành ObjectID
// @params - chuỗi cần chuyển đổi
// @returns - ObjectID
func String2ObjectID(id string) primitive.ObjectID {
	objectId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID
	}
	return objectId
}
