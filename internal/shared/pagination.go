package shared

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pblonline/ops-dashboard/internal/types"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

type Page struct {
	Page     int
	PageSize int
}

// Bounds returns the slice bounds of the page within total items.
func (p Page) Bounds(total int) (start, end int) {
	if p.PageSize <= 0 || p.Page < 1 || p.Page-1 > total/p.PageSize {
		return total, total
	}
	start = (p.Page - 1) * p.PageSize
	if start > total {
		start = total
	}
	end = start + p.PageSize
	if end > total {
		end = total
	}
	return start, end
}

func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total == 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// ParsePage reads page (1-based, default 1) and pageSize (default 50, max 500).
func ParsePage(c *gin.Context) (Page, error) {
	p := Page{Page: 1, PageSize: DefaultPageSize}
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, fmt.Errorf("%w: page must be a positive integer", types.ErrValidation)
		}
		p.Page = n
	}
	if v := c.Query("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, fmt.Errorf("%w: pageSize must be a positive integer", types.ErrValidation)
		}
		if n > MaxPageSize {
			n = MaxPageSize
		}
		p.PageSize = n
	}
	return p, nil
}

// ParseSort reads a "field" or "-field" sort parameter, accepting only the
// listed fields.
func ParseSort(raw string, allowed ...string) (field string, desc bool, err error) {
	if raw == "" {
		return "", false, nil
	}
	field = raw
	if strings.HasPrefix(raw, "-") {
		field, desc = raw[1:], true
	}
	for _, a := range allowed {
		if a == field {
			return field, desc, nil
		}
	}
	return "", false, fmt.Errorf("%w: cannot sort by %q", types.ErrValidation, field)
}
