// Package models holds the server-side domain types shared by repositories,
// services and transports.
package models

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps Offset within int for any normalized request.
	MaxPage = math.MaxInt / MaxPageSize
)

// PageRequest selects one page of a listing. Page is 1-based.
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize clamps the request to sane bounds.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset is the number of rows to skip for this page. It assumes p has been
// normalized.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Meta describes where a page sits in the full result set.
type Meta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Pages    int   `json:"pages"`
	Total    int64 `json:"total"`
}

// NewMeta computes pagination metadata for total rows.
func NewMeta(p PageRequest, total int64) Meta {
	pages := 0
	if p.PageSize > 0 {
		pages = int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	}
	return Meta{Page: p.Page, PageSize: p.PageSize, Pages: pages, Total: total}
}

// Page is a slice of results plus its metadata.
type Page[T any] struct {
	Meta   Meta `json:"meta"`
	Result []T  `json:"result"`
}
