package repository

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Pagination defaults for the movie listing.
const (
	DefaultPage  = 1
	DefaultLimit = 5
	MaxLimit     = 100
)

// MovieFilter is the store-independent form of a movie listing query.
type MovieFilter struct {
	Keyword    string // substring of name or description, case-insensitive
	CategoryID string // exact genre id; empty means any
}

// IsSearch reports whether the filter narrows the catalog.
func (f MovieFilter) IsSearch() bool {
	return f.Keyword != "" || f.CategoryID != ""
}

// Page selects a window of a filtered listing.  The zero Page selects
// everything.
type Page struct {
	Number int
	Limit  int
}

// ParsePage coerces query values into a Page.  Absent, non-numeric or
// non-positive values fall back to the defaults; limit is capped.
func ParsePage(page, limit string) Page {
	p, err := strconv.Atoi(strings.TrimSpace(page))
	if err != nil || p < 1 {
		p = DefaultPage
	}
	l, err := strconv.Atoi(strings.TrimSpace(limit))
	if err != nil || l < 1 {
		l = DefaultLimit
	}
	if l > MaxLimit {
		l = MaxLimit
	}
	return Page{Number: p, Limit: l}
}

// Offset is the number of matching documents skipped before this page.  It
// saturates at math.MaxInt64, which selects an empty page.
func (p Page) Offset() int64 {
	if p.Number < 1 || p.Limit < 1 {
		return 0
	}
	n, l := int64(p.Number-1), int64(p.Limit)
	if n > math.MaxInt64/l {
		return math.MaxInt64
	}
	return n * l
}

// TotalPages is ceil(total/limit).
func (p Page) TotalPages(total int64) int64 {
	if p.Limit < 1 {
		return 1
	}
	return int64(math.Ceil(float64(total) / float64(p.Limit)))
}

// BuildMovieFilter turns f into a document filter.  Keyword and category are
// combined conjunctively.
func BuildMovieFilter(f MovieFilter) bson.M {
	q := bson.M{}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		q["$or"] = bson.A{
			bson.M{"name": containsInsensitive(kw)},
			bson.M{"description": containsInsensitive(kw)},
		}
	}
	if f.CategoryID != "" {
		q["categoryId"] = f.CategoryID
	}
	return q
}

// containsInsensitive matches values containing s literally, ignoring case.
func containsInsensitive(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}
