package pagination

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestFromContext_Defaults(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/invoices", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	p := FromContext(c)
	if p.Page != 1 {
		t.Errorf("expected page 1, got %d", p.Page)
	}
	if p.Query != "" {
		t.Errorf("expected empty query, got %q", p.Query)
	}
}

func TestFromContext_Values(t *testing.T) {
	tests := []struct {
		target string
		query  string
		page   int
	}{
		{"/?query=Alice&page=3", "Alice", 3},
		{"/?page=0", "", 1},
		{"/?page=-4", "", 1},
		{"/?page=abc", "", 1},
		{"/?query=50%25", "50%", 1},
		{"/?page=1537228672809129303", "", MaxPage},
	}
	for _, tt := range tests {
		e := echo.New()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, tt.target, nil), httptest.NewRecorder())
		p := FromContext(c)
		if p.Query != tt.query || p.Page != tt.page {
			t.Errorf("%s: got %+v, want query=%q page=%d", tt.target, p, tt.query, tt.page)
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		count int64
		size  int
		want  int
	}{
		{0, 8, 0},
		{17, 8, 3},
		{16, 8, 2},
		{1, 6, 1},
		{6, 6, 1},
		{7, 6, 2},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.count, tt.size); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.count, tt.size, got, tt.want)
		}
	}
}

func TestOffset(t *testing.T) {
	if got := Offset(1, 6); got != 0 {
		t.Errorf("page 1 offset = %d", got)
	}
	if got := Offset(3, 8); got != 16 {
		t.Errorf("page 3 offset = %d", got)
	}
	if got := Offset(0, 6); got != 0 {
		t.Errorf("page 0 should clamp to offset 0, got %d", got)
	}
}

func TestOffset_HugePageStaysPositive(t *testing.T) {
	for _, size := range []int{AppointmentPageSize, PatientPageSize} {
		got := Offset(1537228672809129303, size)
		if got < 0 {
			t.Fatalf("offset overflowed: %d", got)
		}
		if want := (MaxPage - 1) * size; got != want {
			t.Errorf("size %d: offset = %d, want %d", size, got, want)
		}
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		current, total int
		want           []string
	}{
		{1, 0, []string{}},
		{1, 3, []string{"1", "2", "3"}},
		{2, 10, []string{"1", "2", "3", "...", "9", "10"}},
		{9, 10, []string{"1", "2", "...", "8", "9", "10"}},
		{5, 10, []string{"1", "...", "4", "5", "6", "...", "10"}},
	}
	for _, tt := range tests {
		if got := Window(tt.current, tt.total); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Window(%d, %d) = %v, want %v", tt.current, tt.total, got, tt.want)
		}
	}
}

func TestNewResponse(t *testing.T) {
	r := NewResponse([]int{1, 2}, Params{Query: "x", Page: 2}, 3)
	if r.TotalPages != 3 || r.Page != 2 || r.Query != "x" || len(r.Links) != 3 {
		t.Errorf("unexpected response %+v", r)
	}
}
