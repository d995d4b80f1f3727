package model

// Page 分页结果
type Page[T any] struct {
	Items       []T   `json:"items"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int64 `json:"last_page"`
}

// NewPage 构造分页结果，LastPage 始终由 Total 与 PerPage 推导
func NewPage[T any](items []T, page, perPage int, total int64) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:       items,
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		LastPage:    LastPage(total, perPage),
	}
}

// LastPage ceil(total / perPage)
func LastPage(total int64, perPage int) int64 {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return (total + int64(perPage) - 1) / int64(perPage)
}
