// Package pagination converts page-number requests into offset windows and
// offset results back into page metadata.
package pagination

import (
	"math"

	"github.com/dmitrijs2005/userkeeper/internal/common"
)

// Window is a validated page request expressed both ways.
type Window struct {
	Page  int
	Size  int
	Skip  int
	Limit int
}

// Meta describes where a result set sits within the whole collection.
type Meta struct {
	Total int64
	Page  int
	Size  int
	Pages int
}

// Calculator holds the default and maximum page sizes.
type Calculator struct {
	defaultSize int
	maxSize     int
}

func NewCalculator(defaultSize, maxSize int) *Calculator {
	return &Calculator{defaultSize: defaultSize, maxSize: maxSize}
}

func (c *Calculator) DefaultSize() int { return c.defaultSize }

func (c *Calculator) MaxSize() int { return c.maxSize }

// Window validates page (>= 1) and size (1..max) and returns the matching
// skip/limit pair. Pages whose offset does not fit an int are rejected.
func (c *Calculator) Window(page, size int) (Window, error) {
	if page < 1 {
		return Window{}, common.ErrInvalidPageNumber
	}
	if size < 1 || size > c.maxSize {
		return Window{}, common.Errorf(common.ErrInvalidArgument, "Page size must be between 1 and %d", c.maxSize)
	}
	if page-1 > math.MaxInt/size {
		return Window{}, common.Errorf(common.ErrInvalidArgument, "Page number must be at most %d", math.MaxInt/size+1)
	}
	return Window{Page: page, Size: size, Skip: (page - 1) * size, Limit: size}, nil
}

// Meta computes page metadata for a result fetched with skip/limit. A zero
// limit yields a single page.
func (c *Calculator) Meta(total int64, skip, limit int) Meta {
	if limit <= 0 {
		return Meta{Total: total, Page: 1, Size: limit, Pages: 1}
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Meta{Total: total, Page: skip/limit + 1, Size: limit, Pages: pages}
}
