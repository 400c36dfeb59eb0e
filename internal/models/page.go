package models

import (
	"encoding/json"
	"math"
)

// Default pagination values applied when a caller omits page or size.
const (
	DefaultPage = 1
	DefaultSize = 10
)

// Page is one page of a listing. Page numbers are 1-based.
type Page[T any] struct {
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
	Items []T   `json:"items"`
}

// NewPage builds a page, normalising a nil item slice to an empty one so
// it encodes as [] rather than null.
func NewPage[T any](page, size int, total int64, items []T) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Page: page, Size: size, Total: total, Items: items}
}

// EmptyPage returns a page with no items and a zero total.
func EmptyPage[T any](page, size int) Page[T] {
	return NewPage[T](page, size, 0, nil)
}

// MarshalJSON adds the derived navigation fields to the encoded page.
func (p Page[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Page        int   `json:"page"`
		Size        int   `json:"size"`
		Total       int64 `json:"total"`
		TotalPages  int   `json:"total_pages"`
		HasNext     bool  `json:"has_next"`
		HasPrevious bool  `json:"has_previous"`
		Items       []T   `json:"items"`
	}{p.Page, p.Size, p.Total, p.TotalPages(), p.HasNext(), p.HasPrevious(), p.Items})
}

// TotalPages returns the number of pages needed for Total items.
func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool {
	return p.Page < p.TotalPages()
}

// HasPrevious reports whether a page precedes this one.
func (p Page[T]) HasPrevious() bool {
	return p.Page > 1
}

// PageOrDefault returns *page, or DefaultPage when page is nil or not positive.
func PageOrDefault(page *int) int {
	if page == nil || *page < 1 {
		return DefaultPage
	}
	return *page
}

// SizeOrDefault returns *size, or DefaultSize when size is nil or not positive.
func SizeOrDefault(size *int) int {
	if size == nil || *size < 1 {
		return DefaultSize
	}
	return *size
}

// Offset returns the zero-based index of the first item on page. It
// saturates at math.MaxInt instead of overflowing, so a page far past the
// end still reads as empty.
func Offset(page, size int) int {
	if page < 1 || size < 1 {
		return 0
	}
	if page-1 > math.MaxInt/size {
		return math.MaxInt
	}
	return (page - 1) * size
}

// Paginate slices an already sorted list into the requested page.
func Paginate[T any](items []T, page, size int) Page[T] {
	total := int64(len(items))
	start := Offset(page, size)
	if size < 1 || start < 0 || start >= len(items) {
		return NewPage[T](page, size, total, nil)
	}
	end := start + min(size, len(items)-start)
	return NewPage(page, size, total, items[start:end])
}
