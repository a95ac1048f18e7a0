// Package listing holds the shared filter/sort/paginate types used by
// every list endpoint and repository.
package listing

// Params is the common set of list query parameters.
type Params struct {
	Page   int    // 1-based page number
	Limit  int    // page size
	Search string // substring match on the entity's designated text fields
	SortBy string // column to sort by; repositories whitelist valid values
	Desc   bool   // descending sort order
}

// Normalize clamps page and limit to sane values.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

// Offset returns the number of rows to skip for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination describes the page window of a list response.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// NewPagination computes the pagination block for a result set.
func NewPagination(total int, p Params) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Pagination{
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
		Pages: pages,
	}
}
