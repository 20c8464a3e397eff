// Package pagination implements the per_page/page list envelope used by
// every collection endpoint.
package pagination

import "strconv"

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

type Params struct {
	Page    int
	PerPage int
}

// FromQuery parses the raw page/per_page query values, falling back to
// page 1 and the default page size on anything unusable.
func FromQuery(page, perPage string) Params {
	p := Params{Page: 1, PerPage: DefaultPerPage}
	if n, err := strconv.Atoi(page); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(perPage); err == nil && n > 0 {
		p.PerPage = n
		if p.PerPage > MaxPerPage {
			p.PerPage = MaxPerPage
		}
	}
	return p
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Result is the JSON envelope around a paginated collection.
type Result struct {
	Data     interface{} `json:"data"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PerPage  int         `json:"per_page"`
	LastPage int         `json:"last_page"`
}

func NewResult(data interface{}, total int64, p Params) Result {
	lastPage := int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	if lastPage < 1 {
		lastPage = 1
	}
	return Result{
		Data:     data,
		Total:    total,
		Page:     p.Page,
		PerPage:  p.PerPage,
		LastPage: lastPage,
	}
}
