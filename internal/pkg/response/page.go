package response

// RequestIDKey is the gin context key holding the per-request ID.
const RequestIDKey = "requestID"

// PageResponse is the standard wrapper for list endpoints.
// From and Size echo the offset/limit the page was cut with.
type PageResponse[T any] struct {
	Items []T `json:"items"`
	From  int `json:"from"`
	Size  int `json:"size"`
}

// NewPageResponse is a helper to quickly create a response
func NewPageResponse[T any](items []T, from, size int) PageResponse[T] {
	// Handle empty slice to avoid JSON outputting null
	if items == nil {
		items = make([]T, 0)
	}

	return PageResponse[T]{
		Items: items,
		From:  from,
		Size:  size,
	}
}
