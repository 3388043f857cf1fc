package reviewdto

// AdGroupCreateInput dữ liệu đầu vào khi tạo ad group
type AdGroupCreateInput struct {
	Name            string `json:"name" validate:"required,no_xss"`
	BrandCode       string `json:"brandCode" validate:"required"`
	Status          string `json:"status,omitempty" validate:"omitempty,oneof=pending ready" transform:"string,default=pending"`
	Visibility      string `json:"visibility,omitempty" validate:"omitempty,oneof=public private" transform:"string,default=public"`
	RequireAuth     bool   `json:"requireAuth,omitempty" transform:"str_bool,optional"`
	RequirePassword bool   `json:"requirePassword,omitempty" transform:"str_bool,optional"`
	Password        string `json:"password,omitempty" transform:"string,optional"`
}

// AdGroupUpdateInput dữ liệu đầu vào khi cập nhật ad group.
// status không đổi được qua CRUD, chỉ qua các action nghiệp vụ
// (completion, archive, restore, reopen).
type AdGroupUpdateInput struct {
	Name            string `json:"name,omitempty" validate:"omitempty,no_xss"`
	Visibility      string `json:"visibility,omitempty" validate:"omitempty,oneof=public private"`
	RequireAuth     bool   `json:"requireAuth,omitempty"`
	RequirePassword bool   `json:"requirePassword,omitempty"`
	Password        string `json:"password,omitempty"`
}

// ReviewLinkInput body khi xin token review-link cho một group
type ReviewLinkInput struct {
	Reviewer string `json:"reviewer" validate:"required"` // Tên hoặc email reviewer
	Password string `json:"password,omitempty"`           // Password của link (nếu group yêu cầu)
}

// ReviewProgressInput body khi lưu cursor resume của phiên review
type ReviewProgressInput struct {
	CurrentUnitID string `json:"currentUnitId,omitempty" transform:"str_objectid_ptr,optional"`
	Position      int    `json:"position"`
	Total         int    `json:"total"`
}
