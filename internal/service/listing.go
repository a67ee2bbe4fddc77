package service

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"catalog-service/internal/apperr"
	"catalog-service/internal/models"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
	DefaultSortBy   = "id"

	listKeyPrefix = "products:"
)

// ListParams is a product listing request
type ListParams struct {
	Filter   models.ProductFilter
	SortBy   string
	Page     int
	PageSize int
}

// Normalize applies paging defaults and bounds and validates the sort column
func (p ListParams) Normalize() (ListParams, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PageSize == 0:
		p.PageSize = DefaultPageSize
	case p.PageSize < 1:
		p.PageSize = 1
	case p.PageSize > MaxPageSize:
		p.PageSize = MaxPageSize
	}

	p.SortBy = strings.TrimSpace(p.SortBy)
	if p.SortBy == "" {
		p.SortBy = DefaultSortBy
	}
	if !models.SortableColumns[p.SortBy] {
		return p, apperr.Validation(fmt.Sprintf("invalid sort_by: %q", p.SortBy))
	}
	return p, nil
}

func (p ListParams) offset() int {
	return (p.Page - 1) * p.PageSize
}

// totalPages is ceil(total / pageSize)
func totalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

func productKey(id int64) string {
	return "product:" + strconv.FormatInt(id, 10)
}

// listKey renders every parameter of the listing so each tuple maps to exactly one key.
// Filter values are free text and are escaped so none can contain the separator.
func listKey(p ListParams) string {
	return listKeyPrefix + strings.Join([]string{
		url.QueryEscape(p.Filter.ProductType),
		url.QueryEscape(p.Filter.BusinessUnit),
		url.QueryEscape(p.Filter.Location),
		url.QueryEscape(p.Filter.Category),
		p.SortBy,
		strconv.Itoa(p.Page),
		strconv.Itoa(p.PageSize),
	}, ":")
}
