package shared

// DefaultPerPage is the page size used when a request names none.
const DefaultPerPage = 50

// MaxPerPage caps a requested page size.
const MaxPerPage = 500

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination clamps page and perPage and computes the page count.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	perPage = min(perPage, MaxPerPage)
	if page <= 0 {
		page = 1
	}
	totalPages := (total + perPage - 1) / perPage
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Window returns the [start, end) slice bounds of the page. Past the last
// page both are Total.
func (p Pagination) Window() (int, int) {
	start := (p.Page - 1) * p.PerPage
	if start >= p.Total {
		return p.Total, p.Total
	}
	return start, min(start+p.PerPage, p.Total)
}
