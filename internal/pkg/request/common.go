package request

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ListParams holds the offset/limit pair shared by list endpoints.
// Bounds are enforced here, services assume 0 <= From and 1 <= Size <= 100.
type ListParams struct {
	From int `form:"from,default=0" binding:"min=0"`
	Size int `form:"size,default=10" binding:"min=1,max=100"`
}
