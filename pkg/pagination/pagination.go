package pagination

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Page sizes are fixed per list.
const (
	AppointmentPageSize = 6
	InvoicePageSize     = 6
	PatientPageSize     = 8
)

// Params holds the search term and 1-based page number of a list request.
type Params struct {
	Query string
	Page  int
}

// FromContext reads ?query= and ?page=. A missing, malformed or non-positive
// page is page 1.
func FromContext(c echo.Context) Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	return Params{Query: c.QueryParam("query"), Page: Normalize(page)}
}

// MaxPage bounds requested pages so Offset cannot overflow. Any page this
// large is past the end of every list and yields no rows.
const MaxPage = math.MaxInt32

// Normalize clamps page into [1, MaxPage].
func Normalize(page int) int {
	if page < 1 {
		return 1
	}
	if page > MaxPage {
		return MaxPage
	}
	return page
}

// Offset is the number of rows before page.
func Offset(page, size int) int {
	return (Normalize(page) - 1) * size
}

// TotalPages returns ceil(count/size). Zero matches is zero pages.
func TotalPages(count int64, size int) int {
	if count <= 0 || size <= 0 {
		return 0
	}
	return int((count + int64(size) - 1) / int64(size))
}

// Response wraps one page of a list view.
type Response struct {
	Data       interface{} `json:"data"`
	Query      string      `json:"query"`
	Page       int         `json:"page"`
	TotalPages int         `json:"total_pages"`
	Links      []string    `json:"links"`
}

func NewResponse(data interface{}, p Params, totalPages int) *Response {
	return &Response{
		Data:       data,
		Query:      p.Query,
		Page:       p.Page,
		TotalPages: totalPages,
		Links:      Window(p.Page, totalPages),
	}
}

// Ellipsis marks a gap in a Window.
const Ellipsis = "..."

// Window lists the page links a pager shows: every page when there are at
// most 7, otherwise the first and last pages around the current one with
// gaps marked by Ellipsis.
func Window(current, total int) []string {
	if total <= 0 {
		return []string{}
	}
	if total <= 7 {
		return pageRange(1, total)
	}

	var pages []string
	switch {
	case current <= 3:
		pages = append(pageRange(1, 3), Ellipsis)
		pages = append(pages, pageRange(total-1, total)...)
	case current >= total-2:
		pages = append(pageRange(1, 2), Ellipsis)
		pages = append(pages, pageRange(total-2, total)...)
	default:
		pages = []string{"1", Ellipsis}
		pages = append(pages, pageRange(current-1, current+1)...)
		pages = append(pages, Ellipsis, strconv.Itoa(total))
	}
	return pages
}

func pageRange(from, to int) []string {
	out := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, strconv.Itoa(i))
	}
	return out
}
