// Package pagination converts page/size query input into bounded
// offset/limit pairs and response metadata. Input is never rejected:
// unparseable or out-of-range values are clamped to safe defaults.
package pagination

import "strconv"

const (
	DefaultSize = 10
	MaxSize     = 50
)

type Params struct {
	Page int
	Size int
}

type Meta struct {
	Total        int64 `json:"total"`
	TotalPages   int   `json:"total_pages"`
	FirstPage    int   `json:"first_page"`
	LastPage     int   `json:"last_page"`
	Page         int   `json:"page"`
	PreviousPage *int  `json:"previous_page"`
	NextPage     *int  `json:"next_page"`
}

// Parse builds Params from raw query values. Missing or non-numeric
// input falls back to page 1 and defaultSize; size is clamped to
// [1, maxSize] and page to >= 1.
func Parse(pageStr, sizeStr string, defaultSize, maxSize int) Params {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}

	size, err := strconv.Atoi(sizeStr)
	if err != nil {
		size = defaultSize
	}
	if size < 1 {
		size = 1
	}
	if size > maxSize {
		size = maxSize
	}

	return Params{Page: page, Size: size}
}

// Offset is the number of records to skip. An out-of-range page yields
// an offset past the end, which produces an empty item set rather than
// an error.
func (p Params) Offset() int64 {
	return int64(p.Page-1) * int64(p.Size)
}

func (p Params) Limit() int {
	return p.Size
}

// PageMeta shapes the metadata for a list response over total records.
func (p Params) PageMeta(total int64) Meta {
	totalPages := 1
	if p.Size > 0 {
		totalPages = int((total + int64(p.Size) - 1) / int64(p.Size))
	}

	meta := Meta{
		Total:      total,
		TotalPages: totalPages,
		FirstPage:  1,
		LastPage:   totalPages,
		Page:       p.Page,
	}
	if p.Page > 1 {
		prev := p.Page - 1
		meta.PreviousPage = &prev
	}
	if p.Page < totalPages {
		next := p.Page + 1
		meta.NextPage = &next
	}
	return meta
}
