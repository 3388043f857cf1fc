package recipedto

// RecipeCreateInput dữ liệu đầu vào khi pipeline tạo recipe
type RecipeCreateInput struct {
	GroupID    string                 `json:"groupId" validate:"required" transform:"str_objectid"`
	BrandCode  string                 `json:"brandCode" validate:"required"`
	Type       string                 `json:"type,omitempty"`
	Components map[string]interface{} `json:"components,omitempty"`
	Status     string                 `json:"status,omitempty" validate:"omitempty,oneof=pending ready" transform:"string,default=pending"`
}

// RecipeUpdateInput dữ liệu đầu vào khi cập nhật recipe.
// status không đổi được qua CRUD, chỉ qua endpoint decide.
type RecipeUpdateInput struct {
	Type       string                 `json:"type,omitempty"`
	Components map[string]interface{} `json:"components,omitempty"`
}

// RecipeDecideInput body của một quyết định review recipe
type RecipeDecideInput struct {
	Action       string `json:"action" validate:"required,review_decision"` // approve, reject, edit
	Comment      string `json:"comment,omitempty"`                          // Bắt buộc khi action = edit
	UserID       string `json:"userId" validate:"required"`
	UserEmail    string `json:"userEmail" validate:"required,email"`
	ReviewerName string `json:"reviewerName" validate:"required"`
	UserRole     string `json:"userRole,omitempty"`
}

// RecipeAssetCreateInput dữ liệu đầu vào khi pipeline ingest asset của recipe
type RecipeAssetCreateInput struct {
	RecipeID    string `json:"recipeId" validate:"required" transform:"str_objectid"`
	AspectRatio string `json:"aspectRatio" validate:"required,aspect_ratio"`
	Filename    string `json:"filename,omitempty"`
	URL         string `json:"url,omitempty" transform:"string,optional"`
	FirebaseURL string `json:"firebaseUrl,omitempty" transform:"string,optional"`
}

// RecipeAssetUpdateInput dữ liệu đầu vào khi cập nhật asset của recipe
type RecipeAssetUpdateInput struct {
	URL         string `json:"url,omitempty"`
	FirebaseURL string `json:"firebaseUrl,omitempty"`
}
