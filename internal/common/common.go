package common

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// TranslateError maps driver-level gorm errors onto the repository sentinels.
func TranslateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// Status is the lifecycle state of a soft-deletable row.
type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusDeleted Status = "DELETED"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 1000
)

// Pagination selects a window of rows. A nil Page or PageSize disables paging.
type Pagination struct {
	Page     *int
	PageSize *int
}

// NewPagination is a convenience for callers that always page.
func NewPagination(page, pageSize int) Pagination {
	return Pagination{Page: &page, PageSize: &pageSize}
}

// Enabled reports whether both page and page size are set.
func (p Pagination) Enabled() bool {
	return p.Page != nil && p.PageSize != nil
}

// Limit returns the page size.
func (p Pagination) Limit() int {
	if p.PageSize == nil {
		return 0
	}
	return *p.PageSize
}

// Offset returns (page-1)*pageSize.
func (p Pagination) Offset() int {
	if !p.Enabled() || *p.Page < 1 {
		return 0
	}
	return (*p.Page - 1) * *p.PageSize
}

// Window slices items the same way a LIMIT/OFFSET query would.
func Window[T any](items []T, p Pagination) []T {
	if !p.Enabled() {
		return items
	}
	offset := p.Offset()
	if offset >= len(items) {
		return []T{}
	}
	end := offset + p.Limit()
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
