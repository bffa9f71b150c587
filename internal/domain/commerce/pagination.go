package commerce

const (
	DefaultOrderPageSize   = 10
	DefaultProductPageSize = 12
	MaxPageSize            = 50
	// MaxPage keeps (page-1)*limit well inside int range.
	MaxPage                = 100000
)

type Pagination struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalCount  int64 `json:"total_count"`
	HasNextPage bool  `json:"has_next_page"`
	HasPrevPage bool  `json:"has_prev_page"`
}

// NormalizePage clamps page/limit: 1 <= page <= MaxPage, 1 <= limit <= MaxPageSize.
func NormalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

func Offset(page, limit int) int {
	if page < 1 || limit < 1 {
		return 0
	}
	return (page - 1) * limit
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  pages,
		TotalCount:  total,
		HasNextPage: page < pages,
		HasPrevPage: page > 1,
	}
}
