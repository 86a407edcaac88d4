package search

import "fmt"

// StartingPage fixes the page numbering convention: pages are 1-based, so
// page 1 maps to skip 0. Observed variants disagree here; the convention is
// pinned and documented rather than configurable.
const StartingPage = 1

// Paging is skip/take arithmetic over a query. The zero value is not valid;
// construct via NewPaging or PagingFromPage.
type Paging struct {
	Skip int
	Take int
}

// NewPaging builds paging from raw skip/take. Invalid arguments are
// programmer errors and fail fast.
func NewPaging(skip, take int) (Paging, error) {
	if skip < 0 {
		return Paging{}, fmt.Errorf("%w: skip must be >= 0, got %d", ErrInvalidArgument, skip)
	}
	if take < 1 {
		return Paging{}, fmt.Errorf("%w: take must be >= 1, got %d", ErrInvalidArgument, take)
	}
	return Paging{Skip: skip, Take: take}, nil
}

// PagingFromPage builds paging from a page number and size, with
// Skip = (page - StartingPage) * pageSize.
func PagingFromPage(page, pageSize int) (Paging, error) {
	if page < StartingPage {
		return Paging{}, fmt.Errorf("%w: page must be >= %d, got %d", ErrInvalidArgument, StartingPage, page)
	}
	if pageSize < 1 {
		return Paging{}, fmt.Errorf("%w: pageSize must be >= 1, got %d", ErrInvalidArgument, pageSize)
	}
	return Paging{Skip: (page - StartingPage) * pageSize, Take: pageSize}, nil
}

// Page derives the current page number.
func (p Paging) Page() int { return p.Skip/p.Take + StartingPage }

// PageSize derives the page size.
func (p Paging) PageSize() int { return p.Take }

// Next shifts forward by n whole pages.
func (p Paging) Next(n int) Paging {
	p.Skip += p.Take * n
	if p.Skip < 0 {
		p.Skip = 0
	}
	return p
}

// Prev shifts backward by n whole pages, clamping at the first page.
func (p Paging) Prev(n int) Paging { return p.Next(-n) }
