package reviewdto

// AdUnitCreateInput dữ liệu đầu vào khi ingest ad unit từ pipeline render
type AdUnitCreateInput struct {
	GroupID     string `json:"groupId" validate:"required" transform:"str_objectid"`
	BrandCode   string `json:"brandCode,omitempty"`
	Filename    string `json:"filename" validate:"required"`
	URL         string `json:"url,omitempty" transform:"string,optional"`
	FirebaseURL string `json:"firebaseUrl,omitempty" transform:"string,optional"`
	Version     int    `json:"version,omitempty" transform:"str_int64,optional"`
	ParentAdID  string `json:"parentAdId,omitempty" transform:"str_objectid_ptr,optional"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=ready pending" transform:"string,default=ready"`
}

// AdUnitUpdateInput dữ liệu đầu vào khi cập nhật metadata của ad unit.
// Trạng thái review KHÔNG đổi được qua đây, chỉ qua các endpoint approve/reject/request-edit.
type AdUnitUpdateInput struct {
	URL         string `json:"url,omitempty"`
	FirebaseURL string `json:"firebaseUrl,omitempty"`
}

// RequestEditInput body của yêu cầu chỉnh sửa, comment là bắt buộc
type RequestEditInput struct {
	Comment string `json:"comment" validate:"required"`
}
